package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL applies when the service is not configured otherwise.
const DefaultAccessTokenTTL = time.Hour

// Claims are the access-token claims every alumnet handler sees once the
// bearer token is verified. Role and InstitutionID drive tenant checks.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`

	// Role is one of super_admin, institution_admin, alumni, student.
	Role string `json:"role"`

	// InstitutionID is empty for super admins.
	InstitutionID string `json:"institution_id,omitempty"`

	// Authentication methods: "pwd", and "otp" when a TOTP code was checked.
	AMR []string `json:"amr,omitempty"`
}

// AccessClaimsParams groups the inputs for NewAccessClaims.
type AccessClaimsParams struct {
	Subject       string
	Username      string
	Role          string
	InstitutionID string
	AMR           []string
	Issuer        string
	TTL           time.Duration
	Now           time.Time
}

// NewAccessClaims builds claims valid from p.Now for p.TTL.
func NewAccessClaims(p AccessClaimsParams) Claims {
	if p.TTL <= 0 {
		p.TTL = DefaultAccessTokenTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(p.Now),
			NotBefore: jwt.NewNumericDate(p.Now),
			ExpiresAt: jwt.NewNumericDate(p.Now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		Username:      p.Username,
		Role:          p.Role,
		InstitutionID: p.InstitutionID,
		AMR:           p.AMR,
	}
}

// NewJTI returns a random URL-safe token identifier.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer is a no-op when expected is empty.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry checks exp and nbf against the current time.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
