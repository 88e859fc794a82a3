package alumnet_test

import (
	"testing"

	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies probes and the JWKS work before bootstrap.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := alumnetsdk.NewClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, map[string]string{"mail": "ok", "housekeeping": "ok"}, health.Checks.Workers)

	health, err = client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "v1", health.Checks.Schema)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
}

// TestBootstrapOnce verifies the bootstrap endpoint refuses a second use.
func TestBootstrapOnce(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := alumnetsdk.NewClient(baseURL)

	_, err := client.Bootstrap(t.Context(), "wrong-token", alumnetsdk.BootstrapRequest{
		Username: rootUsername, Email: rootEmail, Password: rootPassword,
	})
	requireStatus(t, err, 401)

	_, err = client.Bootstrap(t.Context(), bootstrapToken, alumnetsdk.BootstrapRequest{
		Username: "x", Email: "bad", Password: "short",
	})
	apiErr := requireStatus(t, err, 400)
	require.Contains(t, apiErr.Details, "username")
	require.Contains(t, apiErr.Details, "email")
	require.Contains(t, apiErr.Details, "password")

	bootstrapAndLogin(t, client)

	_, err = client.Bootstrap(t.Context(), bootstrapToken, alumnetsdk.BootstrapRequest{
		Username: "second", Email: "second@alumnet.test", Password: rootPassword,
	})
	requireStatus(t, err, 401)
}
