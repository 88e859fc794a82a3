package alumnetsdk

import (
	"context"
	"net/http"
)

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.getHealth(ctx, "/livez")
}

// GetReadiness checks if the service is ready to take traffic.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.getHealth(ctx, "/readyz")
}

func (c *Client) getHealth(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetJWKS fetches the public keys that verify access tokens.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return nil, err
	}
	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}

// ValidateInvite reports what an invite token is for without consuming it.
func (c *Client) ValidateInvite(ctx context.Context, token string) (*InviteInfo, error) {
	var out ValidateInviteResponse
	if err := c.postJSON(ctx, "/invite/validate", ValidateInviteRequest{Token: token}, &out, http.StatusOK, nil); err != nil {
		return nil, err
	}
	return &out.InviteInfo, nil
}

// VerifyGraduation checks a graduation year against the one on the invite.
func (c *Client) VerifyGraduation(ctx context.Context, token string, year Year) error {
	req := VerifyGraduationRequest{Token: token, GraduationYear: year}
	return c.postJSON(ctx, "/account/verify-graduation", req, nil, http.StatusOK, nil)
}

// CreateAccount redeems an invite for a new account.
func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CreateAccountResponse, error) {
	var out CreateAccountResponse
	if err := c.postJSON(ctx, "/account/create", req, &out, http.StatusCreated, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns a Session holding the access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, "/auth/login", req, &out, http.StatusOK, nil); err != nil {
		return nil, err
	}
	s := c.NewSession(out.AccessToken)
	s.User = out.User
	return s, nil
}

// ChangePassword replaces a temporary password on first login.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.postJSON(ctx, "/auth/change-password", req, nil, http.StatusOK, nil)
}

// Bootstrap creates the first super admin using the deployment's bootstrap token.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	headers := map[string]string{"X-Bootstrap-Token": token}
	if err := c.postJSON(ctx, "/bootstrap", req, &out, http.StatusCreated, headers); err != nil {
		return nil, err
	}
	return &out, nil
}
