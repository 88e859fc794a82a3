package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

// InvitesHandler serves manual invites for admins.
type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleCreate godoc
//
//	@Summary		Create an invite
//	@Description	Issues a single invite and queues its invitation email. The raw token is only ever sent by mail.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.CreateInviteRequest	true	"Invitee"
//	@Success		201		{object}	alumnetsdk.InviteResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		401		{object}	alumnetsdk.ErrorResponse
//	@Failure		403		{object}	alumnetsdk.ErrorResponse
//	@Failure		409		{object}	alumnetsdk.ErrorResponse	"Email already has an account or an active invite"
//	@Failure		500		{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	var req alumnetsdk.CreateInviteRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	ut, err := domain.ParseUserType(req.UserType)
	if err != nil {
		badRequest(w, "Invalid user type. Must be 'alumni' or 'student'")
		return
	}
	profile, err := domain.ParseProfile(ut, req.Profile)
	if err != nil {
		badRequest(w, describe(err))
		return
	}

	inv, err := h.InviteService.CreateInvite(r.Context(), p, service.CreateInviteRequest{
		InstitutionID:  req.InstitutionID,
		Email:          req.Email,
		UserType:       ut,
		GraduationYear: req.GraduationYear,
		Identifier:     req.Identifier,
		Department:     req.Department,
		Profile:        profile,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteRequest),
			errors.Is(err, service.ErrProfileMismatch),
			errors.Is(err, domain.ErrInvalidProfile):
			badRequest(w, describe(err))
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, alumnetsdk.ErrorCodeConflict, "User with this email already exists")
		case errors.Is(err, service.ErrInviteExists):
			writeError(w, http.StatusConflict, alumnetsdk.ErrorCodeConflict, "An active invite already exists for this email")
		case errors.Is(err, service.ErrCapacityExceeded):
			badRequest(w, "Institution user limit reached")
		default:
			writeServiceError(w, r, err, "Failed to create invite")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inviteResponse(inv, time.Now()))
}

// HandleList godoc
//
//	@Summary		List invites
//	@Description	Lists an institution's invites, newest first, optionally filtered by state.
//	@Tags			Invites
//	@Produce		json
//	@Param			institution_id	query		string	false	"Institution (super admins only)"
//	@Param			state			query		string	false	"active, used or expired"
//	@Param			limit			query		int		false	"Maximum number of invites"	default(50)
//	@Success		200				{object}	alumnetsdk.InviteListResponse
//	@Failure		400				{object}	alumnetsdk.ErrorResponse
//	@Failure		401				{object}	alumnetsdk.ErrorResponse
//	@Failure		403				{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	limit, ok := parseLimit(r)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	q := r.URL.Query()
	invites, err := h.InviteService.ListInvites(r.Context(), p,
		q.Get("institution_id"), domain.InviteState(q.Get("state")), limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInviteRequest) {
			badRequest(w, "state must be one of active, used or expired")
			return
		}
		writeServiceError(w, r, err, "Failed to list invites")
		return
	}

	now := time.Now()
	out := alumnetsdk.InviteListResponse{Invites: make([]alumnetsdk.InviteResponse, 0, len(invites))}
	for _, inv := range invites {
		out.Invites = append(out.Invites, inviteResponse(inv, now))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleExpire godoc
//
//	@Summary		Expire an invite
//	@Description	Revokes an unused invite. Expiring an already expired invite is a no-op.
//	@Tags			Invites
//	@Param			id	path	string	true	"Invite ID"
//	@Success		204
//	@Failure		400	{object}	alumnetsdk.ErrorResponse	"Invite already used"
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/invites/{id}/expire [post].
func (h *InvitesHandler) HandleExpire(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	if err := h.InviteService.Expire(r.Context(), p, r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Invite not found")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			badRequest(w, "Invite has already been used")
		default:
			writeServiceError(w, r, err, "Failed to expire invite")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
