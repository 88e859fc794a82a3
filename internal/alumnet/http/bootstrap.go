package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first super admin.
//
//	@Summary		Bootstrap the platform
//	@Description	Creates the first super admin. Only available when a bootstrap token is configured and only while no user exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string								true	"Bootstrap token"
//	@Param			request				body		alumnetsdk.BootstrapRequest			true	"Super admin"
//	@Success		201					{object}	alumnetsdk.BootstrapResponse
//	@Failure		400					{object}	alumnetsdk.ValidationErrorResponse	"Invalid request body or validation failed"
//	@Failure		401					{object}	alumnetsdk.ErrorResponse			"Missing or invalid bootstrap token, or already bootstrapped"
//	@Failure		404					{object}	alumnetsdk.ErrorResponse			"Bootstrap not enabled"
//	@Failure		500					{object}	alumnetsdk.ErrorResponse
//	@Router			/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("Starting to bootstrap")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Bootstrap endpoint is not enabled")
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, alumnetsdk.ErrorCodeUnauthorized,
			"Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body and validate
	var req alumnetsdk.BootstrapRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Request body must be valid JSON")
		return
	}
	if errs := req.Validate(); errs != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, alumnetsdk.ValidationErrorResponse{
			Code:    "validation_error",
			Message: "validation failed for some fields",
			Details: errs,
		})
		return
	}

	// 4. Perform bootstrap
	admin, err := h.BootstrapService.Bootstrap(r.Context(), token, service.BootstrapRequest{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			writeError(w, http.StatusUnauthorized, alumnetsdk.ErrorCodeUnauthorized, "System has already been bootstrapped")
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			writeError(w, http.StatusUnauthorized, alumnetsdk.ErrorCodeUnauthorized, "Invalid bootstrap token")
		case errors.Is(err, service.ErrBootstrapInvalid), errors.Is(err, service.ErrPasswordTooShort):
			badRequest(w, describe(err))
		default:
			writeServiceError(w, r, err, "Failed to create admin user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, alumnetsdk.BootstrapResponse{AdminUserID: admin.ID})
}
