package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

// AuthHandler serves login, the current user and the first-login password change.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges a username or email and password (plus otp_code when MFA is on) for an EdDSA access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	alumnetsdk.LoginResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		401		{object}	alumnetsdk.ErrorResponse	"Invalid credentials, or OTP code required or wrong"
//	@Failure		403		{object}	alumnetsdk.ErrorResponse	"Account or institution inactive"
//	@Failure		429		{object}	alumnetsdk.ErrorResponse
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req alumnetsdk.LoginRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginRequest{
		Login:    req.Login,
		Password: req.Password,
		OTPCode:  req.OTPCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			badRequest(w, "login and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, alumnetsdk.ErrorCodeInvalidGrant, "Invalid credentials")
		case errors.Is(err, service.ErrMFARequired):
			writeError(w, http.StatusUnauthorized, alumnetsdk.ErrorCodeMFARequired, "otp_code is required for this account")
		case errors.Is(err, service.ErrInvalidTOTPCode):
			writeError(w, http.StatusUnauthorized, alumnetsdk.ErrorCodeInvalidGrant, "Invalid TOTP code")
		case errors.Is(err, service.ErrAccountInactive):
			writeError(w, http.StatusForbidden, alumnetsdk.ErrorCodeAccessDenied, "Account is not active")
		case errors.Is(err, service.ErrInstitutionInactive), errors.Is(err, service.ErrInstitutionNotFound):
			writeError(w, http.StatusForbidden, alumnetsdk.ErrorCodeAccessDenied, "Institution is not active")
		default:
			writeServiceError(w, r, err, "Login failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   res.ExpiresIn,
		User:        userResponse(res.User),
	})
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the signed-in account and, for alumni and students, their profile.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.MeResponse
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	user, profile, err := h.AuthService.Me(r.Context(), p)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "User not found")
			return
		}
		writeServiceError(w, r, err, "Failed to load user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.MeResponse{
		User:    userResponse(user),
		Profile: profileJSON(profile),
	})
}

// HandleChangePassword godoc
//
//	@Summary		Change a temporary password
//	@Description	Replaces the generated password of an account that must change it on first login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.ChangePasswordRequest	true	"Passwords"
//	@Success		200		{object}	alumnetsdk.MessageResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		404		{object}	alumnetsdk.ErrorResponse
//	@Failure		429		{object}	alumnetsdk.ErrorResponse
//	@Router			/auth/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req alumnetsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), service.ChangePasswordRequest{
		Username:        req.Username,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			badRequest(w, "All fields are required")
		case errors.Is(err, service.ErrNewPasswordMismatch):
			badRequest(w, "New passwords do not match")
		case errors.Is(err, service.ErrPasswordTooShort):
			badRequest(w, "Password must be at least 8 characters")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "User not found")
		case errors.Is(err, service.ErrPasswordChangeNotNeeded):
			badRequest(w, "Password change not required")
		case errors.Is(err, service.ErrCurrentPassword):
			badRequest(w, "Current password is incorrect")
		default:
			writeServiceError(w, r, err, "Error updating password")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.MessageResponse{Message: "Password updated successfully"})
}
