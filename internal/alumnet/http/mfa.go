package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

// MFAHandler handles TOTP enrollment for the signed-in user.
type MFAHandler struct {
	MFAService *service.MFAService
}

func (h *MFAHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		writeError(w, http.StatusBadRequest, "mfa_already_enabled", "MFA is already enabled for this user")
	case errors.Is(err, service.ErrMFANotEnrolled):
		writeError(w, http.StatusBadRequest, "mfa_not_enrolled", "Enroll before verifying a code")
	case errors.Is(err, service.ErrMFANotEnabled):
		writeError(w, http.StatusBadRequest, "mfa_not_enabled", "MFA is not enabled for this user")
	case errors.Is(err, service.ErrInvalidTOTPCode):
		writeError(w, http.StatusBadRequest, "invalid_code", "Invalid TOTP code")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "User not found")
	default:
		writeServiceError(w, r, err, fallback)
	}
}

// HandleEnroll handles POST /auth/mfa/enroll
//
//	@Summary		Enroll in TOTP MFA
//	@Description	Generates a TOTP secret for the signed-in user. MFA stays off until a code is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.TOTPEnrollResponse	"TOTP secret and otpauth URL"
//	@Failure		400	{object}	alumnetsdk.ErrorResponse		"MFA already enabled"
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Router			/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	enrollment, err := h.MFAService.Enroll(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err, "Failed to enroll MFA")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.TOTPEnrollResponse{
		Secret:     enrollment.Secret,
		OTPAuthURL: enrollment.URL,
		Issuer:     enrollment.Issuer,
		Account:    enrollment.Account,
	})
}

// HandleVerify handles POST /auth/mfa/verify
//
//	@Summary		Verify a TOTP code and enable MFA
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	alumnetsdk.TOTPCodeRequest	true	"TOTP code"
//	@Success		204
//	@Failure		400	{object}	alumnetsdk.ErrorResponse	"Invalid code, not enrolled or already enabled"
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Router			/auth/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	var req alumnetsdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	if err := h.MFAService.Verify(r.Context(), p.UserID, req.Code); err != nil {
		h.writeError(w, r, err, "Failed to verify MFA")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /auth/mfa
//
//	@Summary		Disable MFA
//	@Description	Turns MFA off after checking a current TOTP code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	alumnetsdk.TOTPCodeRequest	true	"TOTP code"
//	@Success		204
//	@Failure		400	{object}	alumnetsdk.ErrorResponse	"Invalid code or MFA not enabled"
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Router			/auth/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	var req alumnetsdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	if err := h.MFAService.Disable(r.Context(), p.UserID, req.Code); err != nil {
		h.writeError(w, r, err, "Failed to disable MFA")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
