package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet godoc
//
//	@Summary		Own profile
//	@Description	Returns the alumni or student profile created with the caller's account.
//	@Tags			Profile
//	@Produce		json
//	@Success		200	{object}	alumnetsdk.ProfileResponse
//	@Failure		401	{object}	alumnetsdk.ErrorResponse
//	@Failure		404	{object}	alumnetsdk.ErrorResponse	"Admin accounts have no profile"
//	@Security		BearerAuth
//	@Router			/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	profile, err := h.ProfileService.Get(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err, "Failed to load profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse(profile))
}

// HandleUpdate godoc
//
//	@Summary		Update own profile
//	@Description	Changes only the fields present. Names, email, department, years and identifiers come from the invite and cannot be edited. Alumni fields cannot be set on a student profile and the other way round.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Param			request	body		alumnetsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	alumnetsdk.ProfileResponse
//	@Failure		400		{object}	alumnetsdk.ErrorResponse
//	@Failure		401		{object}	alumnetsdk.ErrorResponse
//	@Failure		404		{object}	alumnetsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/profile [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFrom(r.Context())

	var req alumnetsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(r, maxJSONBody, &req); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	profile, err := h.ProfileService.Update(r.Context(), p, domain.ProfileUpdate{
		Major:           req.Major,
		Minor:           req.Minor,
		Phone:           req.Phone,
		Bio:             req.Bio,
		Skills:          req.Skills,
		GraduationMonth: req.GraduationMonth,
		DegreeType:      req.DegreeType,
		CurrentPosition: req.CurrentPosition,
		CurrentCompany:  req.CurrentCompany,
		Location:        req.Location,
		LinkedInURL:     req.LinkedInURL,
		CurrentYear:     req.CurrentYear,
		CurrentSemester: req.CurrentSemester,
		Address:         req.Address,
		Interests:       req.Interests,
		CareerInterests: req.CareerInterests,
	})
	if err != nil {
		h.writeError(w, r, err, "Failed to update profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Profile not found")
	case errors.Is(err, domain.ErrInvalidProfile):
		badRequest(w, describe(err))
	default:
		writeServiceError(w, r, err, fallback)
	}
}
