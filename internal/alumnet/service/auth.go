package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrAccountInactive         = errors.New("account is not active")
	ErrMFARequired             = errors.New("otp_code is required")
	ErrUserNotFound            = errors.New("user not found")
	ErrNewPasswordMismatch     = errors.New("new passwords do not match")
	ErrPasswordChangeNotNeeded = errors.New("password change not required")
	ErrCurrentPassword         = errors.New("current password is incorrect")
)

type LoginRequest struct {
	Login    string // username or email
	Password string
	OTPCode  string
}

type LoginResult struct {
	AccessToken string
	ExpiresIn   int
	User        domain.User
}

type ChangePasswordRequest struct {
	Username        string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AuthService authenticates platform users and issues access tokens.
type AuthService struct {
	Store      store.Store
	KeyManager *jwtx.KeyManager
	Issuer     string
	AccessTTL  time.Duration
}

// Login checks a password (and a TOTP code when MFA is on) and returns a
// signed access token. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return LoginResult{}, ErrMissingFields
	}

	// 1. Resolve the user by username, then by email.
	user, err := s.Store.Users().GetUserByUsername(ctx, login)
	if errors.Is(err, store.ErrNotFound) && strings.Contains(login, "@") {
		user, err = s.Store.Users().GetUserByEmail(ctx, login)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	// 2. Password.
	if err := cryptox.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		l.Info("login rejected", slog.String("user_id", user.ID), slog.String("reason", "password"))
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		return LoginResult{}, ErrAccountInactive
	}

	// 3. Second factor.
	amr := []string{"pwd"}
	if user.MFAEnabled != nil {
		if req.OTPCode == "" {
			return LoginResult{}, ErrMFARequired
		}
		if !totp.Validate(req.OTPCode, user.MFASecret) {
			l.Info("login rejected", slog.String("user_id", user.ID), slog.String("reason", "otp"))
			return LoginResult{}, ErrInvalidTOTPCode
		}
		amr = append(amr, "otp")
	}

	// 4. Institution must still be active for tenant users.
	if user.InstitutionID != "" {
		if _, err := loadActiveInstitution(ctx, s.Store, user.InstitutionID); err != nil {
			return LoginResult{}, err
		}
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	token, err := s.KeyManager.GetSigner().Sign(jwtx.NewAccessClaims(jwtx.AccessClaimsParams{
		Subject:       user.ID,
		Username:      user.Username,
		Role:          string(user.Role),
		InstitutionID: user.InstitutionID,
		AMR:           amr,
		Issuer:        s.Issuer,
		TTL:           ttl,
		Now:           now,
	}))
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		l.Warn("failed to record last login", slog.String("user_id", user.ID), slog.Any("error", err))
	}
	user.LastLoginAt = &now

	l.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.Any("amr", amr),
	)
	return LoginResult{AccessToken: token, ExpiresIn: int(ttl.Seconds()), User: user}, nil
}

// Me returns the caller's account and, for alumni and students, their profile.
func (s *AuthService) Me(ctx context.Context, p httpx.Principal) (domain.User, *domain.Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, nil, ErrUserNotFound
		}
		return domain.User{}, nil, err
	}

	profile, err := s.Store.Profiles().GetProfileByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return user, nil, nil
	case err != nil:
		return domain.User{}, nil, err
	}
	return user, &profile, nil
}

// ChangePassword replaces the generated password of an account flagged to
// change it on first login.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if req.Username == "" || req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrNewPasswordMismatch
	}
	if len(req.NewPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.MustChangePassword {
		return ErrPasswordChangeNotNeeded
	}
	if err := cryptox.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		return ErrCurrentPassword
	}

	hash, err := cryptox.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash, false); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("first login password changed", slog.String("user_id", user.ID))
	return nil
}
