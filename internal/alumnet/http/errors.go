package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

func writeError(w http.ResponseWriter, status int, code, desc string) {
	httpx.WriteJSON(w, status, alumnetsdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

func badRequest(w http.ResponseWriter, desc string) {
	writeError(w, http.StatusBadRequest, alumnetsdk.ErrorCodeInvalidRequest, desc)
}

// writeServiceError maps the errors shared by the admin endpoints. Anything
// it does not recognise is logged and reported as a 500 with fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, alumnetsdk.ErrorCodeForbidden, "Unauthorized")
	case errors.Is(err, service.ErrInstitutionRequired):
		badRequest(w, "institution_id is required")
	case errors.Is(err, service.ErrInstitutionNotFound):
		writeError(w, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound, "Institution not found")
	case errors.Is(err, service.ErrInstitutionInactive):
		badRequest(w, "Institution is not active")
	case errors.Is(err, domain.ErrInvalidUserType):
		badRequest(w, "Invalid user type. Must be 'alumni' or 'student'")
	default:
		slogx.FromContext(r.Context()).Error(fallback, slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, alumnetsdk.ErrorCodeServerError, fallback)
	}
}

// describe turns a wrapped sentinel ("sentinel: detail") into a sentence for
// the response body.
func describe(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
