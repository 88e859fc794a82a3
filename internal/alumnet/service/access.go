package service

import (
	"errors"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
)

var (
	ErrForbidden           = errors.New("access denied")
	ErrInstitutionRequired = errors.New("institution_id is required")
)

// scopeInstitution resolves which institution an admin operation targets.
// Institution admins are pinned to their own institution; super admins must
// name one explicitly.
func scopeInstitution(p httpx.Principal, requested string) (string, error) {
	switch domain.Role(p.Role) {
	case domain.RoleSuperAdmin:
		if requested == "" {
			return "", ErrInstitutionRequired
		}
		return requested, nil
	case domain.RoleInstitutionAdmin:
		if p.InstitutionID == "" || (requested != "" && requested != p.InstitutionID) {
			return "", ErrForbidden
		}
		return p.InstitutionID, nil
	}
	return "", ErrForbidden
}

// canAccess reports whether p may read or act on records of institutionID.
func canAccess(p httpx.Principal, institutionID string) bool {
	switch domain.Role(p.Role) {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleInstitutionAdmin:
		return p.InstitutionID != "" && p.InstitutionID == institutionID
	}
	return false
}
