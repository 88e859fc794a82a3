package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type fakeWorker bool

func (f fakeWorker) Running() bool { return bool(f) }

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivezReportsWorkers(t *testing.T) {
	t.Parallel()
	started := time.Now().Add(-90 * time.Second)

	t.Run("all workers running", func(t *testing.T) {
		rec := serve(t, LivezHandler(started, "v1", map[string]Worker{
			"mail": fakeWorker(true), "housekeeping": fakeWorker(true),
		}), "/livez")
		require.Equal(t, http.StatusOK, rec.Code)

		var res alumnetsdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Equal(t, "ok", res.Status)
		require.Equal(t, "1m30s", res.Uptime)
		require.Equal(t, map[string]string{"mail": "ok", "housekeeping": "ok"}, res.Checks.Workers)
	})

	t.Run("stopped mail dispatcher fails the probe", func(t *testing.T) {
		rec := serve(t, LivezHandler(started, "v1", map[string]Worker{
			"mail": fakeWorker(false), "housekeeping": fakeWorker(true),
		}), "/livez")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var res alumnetsdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Equal(t, "degraded", res.Status)
		require.Equal(t, "stopped", res.Checks.Workers["mail"])
	})

	t.Run("no workers configured", func(t *testing.T) {
		rec := serve(t, LivezHandler(started, "v1", nil), "/livez")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})
}

func TestJWKSCachingAndEmptyKeySet(t *testing.T) {
	t.Parallel()

	rec := serve(t, JWKSHandler(jwtx.NewKeySet()), "/.well-known/jwks.json")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	km, err := jwtx.NewEphemeralKeyManager(testIssuer, 2)
	require.NoError(t, err)

	rec = serve(t, JWKSHandler(km.KeySet), "/.well-known/jwks.json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	var jwks alumnetsdk.JWKSResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jwks))
	require.Len(t, jwks.Keys, 2)
	for _, k := range jwks.Keys {
		require.Equal(t, "OKP", k.Kty)
		require.True(t, strings.HasPrefix(k.Kid, "alumnet-"))
	}
}
