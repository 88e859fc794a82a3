package http

import (
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
)

func userResponse(u domain.User) alumnetsdk.UserResponse {
	return alumnetsdk.UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		Role:               string(u.Role),
		Status:             string(u.Status),
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		InstitutionID:      u.InstitutionID,
		MustChangePassword: u.MustChangePassword,
		MFAEnabled:         u.MFAEnabled != nil,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

func inviteResponse(inv domain.Invite, now time.Time) alumnetsdk.InviteResponse {
	return alumnetsdk.InviteResponse{
		ID:             inv.ID,
		InstitutionID:  inv.InstitutionID,
		Email:          inv.Email,
		UserType:       string(inv.UserType),
		GraduationYear: inv.GraduationYear,
		Identifier:     inv.Identifier,
		Department:     inv.Department,
		State:          string(inv.State(now)),
		ExpiresAt:      inv.ExpiresAt,
		CreatedAt:      inv.CreatedAt,
		UsedAt:         inv.UsedAt,
		CreatedBy:      inv.CreatedBy,
		UsedBy:         inv.UsedBy,
		BatchID:        inv.BatchID,
	}
}

func institutionResponse(i domain.Institution) alumnetsdk.InstitutionResponse {
	return alumnetsdk.InstitutionResponse{
		ID:          i.ID,
		Name:        i.Name,
		Code:        i.Code,
		EmailDomain: i.EmailDomain,
		Address:     i.Address,
		Phone:       i.Phone,
		Website:     i.Website,
		AdminEmail:  i.AdminEmail,
		IsActive:    i.IsActive,
		MaxUsers:    i.MaxUsers,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func batchResponse(b domain.Batch) alumnetsdk.BatchResponse {
	return alumnetsdk.BatchResponse{
		ID:                b.ID,
		InstitutionID:     b.InstitutionID,
		UserType:          string(b.UserType),
		Filename:          b.Filename,
		TotalRecords:      b.TotalRecords,
		ProcessedRecords:  b.ProcessedRecords,
		SuccessfulRecords: b.SuccessfulRecords,
		FailedRecords:     b.FailedRecords,
		Status:            string(b.Status),
		ErrorLog:          errorLog(b.ErrorLog),
		UploadedBy:        b.UploadedBy,
		UploadedAt:        b.UploadedAt,
		ProcessedAt:       b.ProcessedAt,
	}
}

func errorLog(l *domain.ErrorLog) *alumnetsdk.ErrorLog {
	if l == nil {
		return nil
	}
	out := &alumnetsdk.ErrorLog{
		DataValidationErrors: rowErrors(l.DataValidationErrors),
		InviteCreationErrors: make([]alumnetsdk.IssueError, 0, len(l.InviteCreationErrors)),
		Failure:              l.Failure,
	}
	for _, e := range l.InviteCreationErrors {
		out.InviteCreationErrors = append(out.InviteCreationErrors, alumnetsdk.IssueError(e))
	}
	return out
}

func rowErrors(in []domain.RowError) []alumnetsdk.RowError {
	out := make([]alumnetsdk.RowError, 0, len(in))
	for _, e := range in {
		out = append(out, alumnetsdk.RowError(e))
	}
	return out
}

func profileResponse(p domain.Profile) alumnetsdk.ProfileResponse {
	out := alumnetsdk.ProfileResponse{
		Profile:   profileJSON(&p),
		UpdatedAt: p.UpdatedAt,
	}
	if p.Data != nil {
		out.UserType = string(p.Data.UserType())
	}
	return out
}

// profileJSON renders profile data without its type envelope.
func profileJSON(p *domain.Profile) json.RawMessage {
	if p == nil || p.Data == nil {
		return nil
	}
	b, err := json.Marshal(p.Data)
	if err != nil {
		return nil
	}
	return b
}
