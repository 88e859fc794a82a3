package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

// maxJSONBody caps every JSON request body.
const maxJSONBody = 1 << 20

// AccountHandler serves the public invitee flow: look at the invite, confirm
// the graduation year, create the account.
type AccountHandler struct {
	InviteService  *service.InviteService
	AccountService *service.AccountService
}

// HandleValidate godoc
//
//	@Summary		Validate an invite token
//	@Description	Resolves an invite token to the invitee's email, user type and institution without consuming it.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.ValidateInviteRequest	true	"Invite token"
//	@Success		200		{object}	alumnetsdk.ValidateInviteResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse	"Unknown, used or expired token, or inactive institution"
//	@Failure		429		{object}	alumnetsdk.ErrorResponse
//	@Router			/invite/validate [post].
func (h *AccountHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req alumnetsdk.ValidateInviteRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		badRequest(w, "Token is required")
		return
	}

	info, err := h.InviteService.Validate(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			badRequest(w, "Invalid or expired invite token")
		case errors.Is(err, service.ErrInviteExpired), errors.Is(err, service.ErrInviteAlreadyUsed):
			badRequest(w, "Token has expired or been used")
		case errors.Is(err, service.ErrInstitutionInactive):
			badRequest(w, "Institution is not active")
		default:
			writeServiceError(w, r, err, "Failed to validate invite")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.ValidateInviteResponse{
		InviteInfo: alumnetsdk.InviteInfo{
			Email:           info.Invite.Email,
			UserType:        string(info.Invite.UserType),
			GraduationYear:  info.Invite.GraduationYear,
			Department:      info.Invite.Department,
			InstitutionName: info.Institution.Name,
			TokenExpires:    info.Invite.ExpiresAt,
		},
	})
}

// HandleVerifyGraduation godoc
//
//	@Summary		Verify graduation year
//	@Description	Checks the graduation year the invitee typed against the one recorded on the invite.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.VerifyGraduationRequest	true	"Token and year"
//	@Success		200		{object}	alumnetsdk.MessageResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		429		{object}	alumnetsdk.ErrorResponse
//	@Router			/account/verify-graduation [post].
func (h *AccountHandler) HandleVerifyGraduation(w http.ResponseWriter, r *http.Request) {
	var req alumnetsdk.VerifyGraduationRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	err := h.AccountService.VerifyGraduation(r.Context(), req.Token, string(req.GraduationYear))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			badRequest(w, "Token and graduation year are required")
		case errors.Is(err, service.ErrInviteNotFound):
			badRequest(w, "Invalid or expired invite token")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			badRequest(w, "Token has expired or been used")
		case errors.Is(err, service.ErrGraduationMismatch):
			badRequest(w, "Graduation year does not match our records")
		default:
			writeServiceError(w, r, err, "Failed to verify graduation year")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.MessageResponse{
		Message: "Graduation year verified successfully",
	})
}

// HandleCreate godoc
//
//	@Summary		Create an account from an invite
//	@Description	Consumes the invite and creates an active account and profile. Identity fields come from the invite, not the request.
//	@Description	Checks run in order: fields present, passwords match, password length, token valid, graduation year, email free.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.CreateAccountRequest	true	"Account details"
//	@Success		201		{object}	alumnetsdk.CreateAccountResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		409		{object}	alumnetsdk.ErrorResponse	"Username allocation conflict"
//	@Failure		429		{object}	alumnetsdk.ErrorResponse
//	@Failure		500		{object}	alumnetsdk.ErrorResponse
//	@Router			/account/create [post].
func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req alumnetsdk.CreateAccountRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	user, err := h.AccountService.CreateAccount(r.Context(), service.CreateAccountRequest{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		GraduationYear:  string(req.GraduationYear),
		IPAddress:       httpx.IPKeyExtractor(r),
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			badRequest(w, "All fields are required")
		case errors.Is(err, service.ErrPasswordMismatch):
			badRequest(w, "Passwords do not match")
		case errors.Is(err, service.ErrPasswordTooShort):
			badRequest(w, "Password must be at least 8 characters")
		case errors.Is(err, service.ErrInviteNotFound):
			badRequest(w, "Invalid or expired invite token")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			badRequest(w, "Token has expired or been used")
		case errors.Is(err, service.ErrGraduationYearFormat):
			badRequest(w, "Invalid graduation year")
		case errors.Is(err, service.ErrEmailTaken):
			badRequest(w, "User with this email already exists")
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, alumnetsdk.ErrorCodeConflict, "Could not allocate a username, please try again")
		default:
			slogx.FromContext(r.Context()).Error("failed to create account", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, alumnetsdk.ErrorCodeServerError, "Error creating account")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, alumnetsdk.CreateAccountResponse{
		User:     userResponse(user),
		UserType: string(user.Role),
		Message:  "Account created successfully",
	})
}
