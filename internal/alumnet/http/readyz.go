package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
)

// schemaVersioner is implemented by stores that track migrations.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (uint, error)
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database connection, that the schema is migrated and clean, and that a token signing key is loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	alumnetsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &alumnetsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if sv, ok := st.(schemaVersioner); ok {
			version, err := sv.SchemaVersion(r.Context())
			switch {
			case err != nil:
				checks.Schema = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			case version == 0:
				checks.Schema = "error: not migrated"
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			default:
				checks.Schema = fmt.Sprintf("v%d", version)
			}
		}

		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, alumnetsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
