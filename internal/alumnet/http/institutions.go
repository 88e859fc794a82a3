package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

type InstitutionsHandler struct {
	InstitutionService *service.InstitutionService
}

func (h *InstitutionsHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInstitution):
		badRequest(w, describe(err))
	case errors.Is(err, service.ErrInstitutionCode):
		writeError(w, http.StatusConflict, alumnetsdk.ErrorCodeConflict, "Institution code already exists")
	case errors.Is(err, service.ErrAdminEmailTaken):
		writeError(w, http.StatusConflict, alumnetsdk.ErrorCodeConflict, "Admin email already exists")
	case errors.Is(err, service.ErrAdminNotFound):
		writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Institution admin not found")
	case errors.Is(err, service.ErrInvalidUserFilter):
		badRequest(w, describe(err))
	default:
		writeServiceError(w, r, err, fallback)
	}
}

// HandleCreate godoc
//
//	@Summary		Create an institution
//	@Description	Registers an institution and its admin account. The admin gets a generated temporary password by email and must change it on first login.
//	@Tags			Institutions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.CreateInstitutionRequest	true	"Institution"
//	@Success		201		{object}	alumnetsdk.CreateInstitutionResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		401		{object}	alumnetsdk.ErrorResponse
//	@Failure		403		{object}	alumnetsdk.ErrorResponse
//	@Failure		409		{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions [post].
func (h *InstitutionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	var req alumnetsdk.CreateInstitutionRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	created, err := h.InstitutionService.Create(r.Context(), p, service.CreateInstitutionRequest{
		Name:           req.Name,
		Code:           req.Code,
		EmailDomain:    req.EmailDomain,
		AdminEmail:     req.AdminEmail,
		Address:        req.Address,
		Phone:          req.Phone,
		Website:        req.Website,
		MaxUsers:       req.MaxUsers,
		AdminFirstName: req.AdminFirstName,
		AdminLastName:  req.AdminLastName,
	})
	if err != nil {
		h.writeError(w, r, err, "Failed to create institution")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, alumnetsdk.CreateInstitutionResponse{
		Institution: institutionResponse(created.Institution),
		Admin:       userResponse(created.Admin),
	})
}

// HandleList godoc
//
//	@Summary		List institutions
//	@Description	Super admins see every institution; institution admins see their own.
//	@Tags			Institutions
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.InstitutionListResponse
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions [get].
func (h *InstitutionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	list, err := h.InstitutionService.List(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err, "Failed to list institutions")
		return
	}

	out := alumnetsdk.InstitutionListResponse{Institutions: make([]alumnetsdk.InstitutionResponse, 0, len(list))}
	for _, inst := range list {
		out.Institutions = append(out.Institutions, institutionResponse(inst))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get an institution
//	@Tags			Institutions
//	@Produce		json
//	@Param			id	path		string	true	"Institution ID"
//	@Success		200	{object}	alumnetsdk.InstitutionResponse
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions/{id} [get].
func (h *InstitutionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	inst, err := h.InstitutionService.Get(r.Context(), p, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err, "Failed to load institution")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, institutionResponse(inst))
}

// HandleUpdate godoc
//
//	@Summary		Update an institution
//	@Description	Changes only the fields present. Institution admins may edit contact details; email_domain, admin_email and max_users are reserved for super admins.
//	@Tags			Institutions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Institution ID"
//	@Param			request	body		alumnetsdk.UpdateInstitutionRequest	true	"Fields to change"
//	@Success		200		{object}	alumnetsdk.InstitutionResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		401		{object}	alumnetsdk.ErrorResponse
//	@Failure		403		{object}	alumnetsdk.ErrorResponse
//	@Failure		404		{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions/{id} [patch].
func (h *InstitutionsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	var req alumnetsdk.UpdateInstitutionRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	inst, err := h.InstitutionService.Update(r.Context(), p, r.PathValue("id"), service.UpdateInstitutionRequest{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Website:     req.Website,
		EmailDomain: req.EmailDomain,
		AdminEmail:  req.AdminEmail,
		MaxUsers:    req.MaxUsers,
	})
	if err != nil {
		h.writeError(w, r, err, "Failed to update institution")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, institutionResponse(inst))
}

// HandleActivate godoc
//
//	@Summary		Activate an institution
//	@Tags			Institutions
//	@Param			id	path	string	true	"Institution ID"
//	@Success		204
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions/{id}/activate [post].
func (h *InstitutionsHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// HandleDeactivate godoc
//
//	@Summary		Deactivate an institution
//	@Description	Invites of an inactive institution cannot be redeemed and it cannot import rosters.
//	@Tags			Institutions
//	@Param			id	path	string	true	"Institution ID"
//	@Success		204
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions/{id}/deactivate [post].
func (h *InstitutionsHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *InstitutionsHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	p, _ := httpx.PrincipalFrom(r.Context())

	if err := h.InstitutionService.SetActive(r.Context(), p, r.PathValue("id"), active); err != nil {
		h.writeError(w, r, err, "Failed to change institution status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListUsers godoc
//
//	@Summary		List institution users
//	@Description	Returns the institution's accounts newest first. search matches username, email, first or last name.
//	@Tags			Institutions
//	@Produce		json
//	@Param			id		path		string	true	"Institution ID"
//	@Param			role	query		string	false	"institution_admin, alumni, student or all"
//	@Param			status	query		string	false	"active, inactive, suspended or all"
//	@Param			search	query		string	false	"Substring to match"
//	@Param			limit	query		int		false	"Max results (default 50, max 500)"
//	@Param			offset	query		int		false	"Results to skip"
//	@Success		200		{object}	alumnetsdk.UserListResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		401		{object}	alumnetsdk.ErrorResponse
//	@Failure		403		{object}	alumnetsdk.ErrorResponse
//	@Failure		404		{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/institutions/{id}/users [get].
func (h *InstitutionsHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	limit, ok := parseLimit(r)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	q := r.URL.Query()
	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	users, err := h.InstitutionService.ListUsers(r.Context(), p, r.PathValue("id"), service.UserQuery{
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.writeError(w, r, err, "Failed to list users")
		return
	}

	out := alumnetsdk.UserListResponse{Users: make([]alumnetsdk.UserResponse, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleResetAdminPassword godoc
//
//	@Summary		Reset the institution admin password
//	@Description	Generates a new temporary password for the institution admin and mails it. The admin must change it on next login.
//	@Tags			Institutions
//	@Produce		json
//	@Param			id	path		string	true	"Institution ID"
//	@Success		200	{object}	alumnetsdk.MessageResponse
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		403	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse	"Institution or admin not found"
//	@Security		BearerAuth
//	@Router			/institutions/{id}/reset-admin-password [post].
func (h *InstitutionsHandler) HandleResetAdminPassword(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	if _, err := h.InstitutionService.ResetAdminPassword(r.Context(), p, r.PathValue("id")); err != nil {
		h.writeError(w, r, err, "Failed to reset admin password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, alumnetsdk.MessageResponse{
		Message: "Admin password reset successfully. New credentials have been sent by email.",
	})
}
