package alumnetsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Session is an authenticated handle on the API. Tokens are not refreshed;
// log in again once the access token expires.
type Session struct {
	client      *Client
	accessToken string

	// User is filled in by Client.Login.
	User UserResponse
}

func (s *Session) AccessToken() string { return s.accessToken }

// doAuthRequest performs a request carrying the session's bearer token.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (s *Session) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// sendJSON encodes body (if any) and expects expectedStatus back. A nil
// target with 204 checks only the status.
func (s *Session) sendJSON(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	var (
		reader  io.Reader
		headers map[string]string
	)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
		headers = map[string]string{"Content-Type": "application/json"}
	}

	resp, err := s.doAuthRequest(ctx, method, path, reader, headers)
	if err != nil {
		return err
	}
	if expectedStatus == http.StatusNoContent {
		return checkStatusNoContent(resp)
	}
	return decodeJSON(resp, target, expectedStatus)
}

func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}
	return nil
}

// Me returns the signed-in user and their profile.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := s.getJSON(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the caller's own alumni or student profile.
func (s *Session) Profile(ctx context.Context) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := s.getJSON(ctx, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := s.sendJSON(ctx, http.MethodPatch, "/profile", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrollTOTP starts MFA enrollment. MFA stays off until VerifyTOTP succeeds.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := s.sendJSON(ctx, http.MethodPost, "/auth/mfa/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) VerifyTOTP(ctx context.Context, code string) error {
	return s.sendJSON(ctx, http.MethodPost, "/auth/mfa/verify", TOTPCodeRequest{Code: code}, nil, http.StatusNoContent)
}

func (s *Session) DisableTOTP(ctx context.Context, code string) error {
	return s.sendJSON(ctx, http.MethodDelete, "/auth/mfa", TOTPCodeRequest{Code: code}, nil, http.StatusNoContent)
}
