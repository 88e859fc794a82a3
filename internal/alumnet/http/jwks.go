package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
)

// jwksMaxAge bounds how long a verifier may cache keys. Signing keys are
// regenerated on every restart.
const jwksMaxAge = 5 * time.Minute

// JWKSHandler publishes the Ed25519 keys that verify access tokens.
//
//	@Summary		Get JWKS
//	@Description	Returns the Ed25519 public keys that verify access tokens. Keys change on every restart, so the response may be cached for five minutes only.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.JWKSResponse	"The JSON Web Key Set"
//	@Failure		503	{object}	alumnetsdk.ErrorResponse	"No signing keys loaded"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !keys.IsReady() {
			writeError(w, http.StatusServiceUnavailable, alumnetsdk.ErrorCodeServerError, "No signing keys loaded")
			return
		}
		httpx.WriteCacheableJSON(w, http.StatusOK, alumnetsdk.JWKSResponse(keys.PublicJWKS()), jwksMaxAge)
	}
}
