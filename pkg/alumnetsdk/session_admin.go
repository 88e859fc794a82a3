package alumnetsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// UploadRosterRequest is one spreadsheet for bulk import. InstitutionID is
// required for super admins only.
type UploadRosterRequest struct {
	InstitutionID string
	UserType      string
	Filename      string
	Data          []byte
}

// UploadRoster submits a .csv or .xlsx roster. An upload with no valid rows
// returns an *APIError whose Rows lists the first rejected rows.
func (s *Session) UploadRoster(ctx context.Context, req UploadRosterRequest) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if req.InstitutionID != "" {
		if err := mw.WriteField("institution_id", req.InstitutionID); err != nil {
			return nil, err
		}
	}
	if err := mw.WriteField("user_type", req.UserType); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(req.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/data-import/upload", &buf,
		map[string]string{"Content-Type": mw.FormDataContentType()})
	if err != nil {
		return nil, err
	}
	var out UploadResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadTemplate returns the CSV template for a user type.
func (s *Session) DownloadTemplate(ctx context.Context, userType string) ([]byte, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/data-import/template/"+url.PathEscape(userType), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}
	return body, nil
}

func (s *Session) GetBatch(ctx context.Context, batchID string) (*BatchResponse, error) {
	var out BatchStatusResponse
	if err := s.getJSON(ctx, "/data-import/batch/"+url.PathEscape(batchID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Batch, nil
}

// RetryBatch reprocesses a completed or failed batch from its stored file.
func (s *Session) RetryBatch(ctx context.Context, batchID string) (*UploadResponse, error) {
	var out UploadResponse
	path := "/data-import/batch/" + url.PathEscape(batchID) + "/retry"
	if err := s.sendJSON(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListBatches(ctx context.Context, institutionID string, limit int) ([]BatchResponse, error) {
	q := url.Values{}
	if institutionID != "" {
		q.Set("institution_id", institutionID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out BatchListResponse
	if err := s.getJSON(ctx, "/data-import/batches", q, &out); err != nil {
		return nil, err
	}
	return out.Batches, nil
}

// CreateInvite issues one invite and queues its invitation mail.
func (s *Session) CreateInvite(ctx context.Context, req CreateInviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := s.sendJSON(ctx, http.MethodPost, "/invites", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvites lists invites, optionally filtered by state (active, used or expired).
func (s *Session) ListInvites(ctx context.Context, institutionID, state string, limit int) ([]InviteResponse, error) {
	q := url.Values{}
	if institutionID != "" {
		q.Set("institution_id", institutionID)
	}
	if state != "" {
		q.Set("state", state)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out InviteListResponse
	if err := s.getJSON(ctx, "/invites", q, &out); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

func (s *Session) ExpireInvite(ctx context.Context, inviteID string) error {
	return s.sendJSON(ctx, http.MethodPost, "/invites/"+url.PathEscape(inviteID)+"/expire", nil, nil, http.StatusNoContent)
}

// CreateInstitution registers an institution and its admin (super admin only).
func (s *Session) CreateInstitution(ctx context.Context, req CreateInstitutionRequest) (*CreateInstitutionResponse, error) {
	var out CreateInstitutionResponse
	if err := s.sendJSON(ctx, http.MethodPost, "/institutions", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListInstitutions(ctx context.Context) ([]InstitutionResponse, error) {
	var out InstitutionListResponse
	if err := s.getJSON(ctx, "/institutions", nil, &out); err != nil {
		return nil, err
	}
	return out.Institutions, nil
}

func (s *Session) GetInstitution(ctx context.Context, id string) (*InstitutionResponse, error) {
	var out InstitutionResponse
	if err := s.getJSON(ctx, "/institutions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateInstitution(ctx context.Context, id string, req UpdateInstitutionRequest) (*InstitutionResponse, error) {
	var out InstitutionResponse
	if err := s.sendJSON(ctx, http.MethodPatch, "/institutions/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetInstitutionActive activates or deactivates an institution (super admin only).
func (s *Session) SetInstitutionActive(ctx context.Context, id string, active bool) error {
	action := "/deactivate"
	if active {
		action = "/activate"
	}
	return s.sendJSON(ctx, http.MethodPost, "/institutions/"+url.PathEscape(id)+action, nil, nil, http.StatusNoContent)
}

// ListUsersRequest filters ListInstitutionUsers. Empty fields match all.
type ListUsersRequest struct {
	Role   string
	Status string
	Search string
	Limit  int
	Offset int
}

// ListInstitutionUsers returns the accounts of an institution, newest first.
func (s *Session) ListInstitutionUsers(ctx context.Context, id string, req ListUsersRequest) ([]UserResponse, error) {
	q := url.Values{}
	if req.Role != "" {
		q.Set("role", req.Role)
	}
	if req.Status != "" {
		q.Set("status", req.Status)
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}

	var out UserListResponse
	if err := s.getJSON(ctx, "/institutions/"+url.PathEscape(id)+"/users", q, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ResetAdminPassword mails the institution admin a new temporary password
// (super admin only).
func (s *Session) ResetAdminPassword(ctx context.Context, id string) (*MessageResponse, error) {
	var out MessageResponse
	path := "/institutions/" + url.PathEscape(id) + "/reset-admin-password"
	if err := s.sendJSON(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
