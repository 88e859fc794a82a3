package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnabled     = errors.New("MFA not enabled for this user")
	ErrMFANotEnrolled    = errors.New("MFA not enrolled")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this user")
)

// MFAEnrollment is the pending TOTP secret shown to the user once.
type MFAEnrollment struct {
	Secret  string `json:"secret"`
	URL     string `json:"otpauth_url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps
}

// Enroll generates a TOTP secret. MFA stays off until Verify sees a valid
// code, and enrolling again replaces an unverified secret.
func (s *MFAService) Enroll(ctx context.Context, userID string) (MFAEnrollment, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return MFAEnrollment{}, err
	}
	if user.MFAEnabled != nil {
		return MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return MFAEnrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}
	if err := s.Store.Users().UpdateMFASecret(ctx, user.ID, key.Secret()); err != nil {
		return MFAEnrollment{}, fmt.Errorf("store MFA secret: %w", err)
	}

	return MFAEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: user.Username,
	}, nil
}

// Verify enables MFA once the user proves they hold the enrolled secret.
func (s *MFAService) Verify(ctx context.Context, userID, code string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.MFAEnabled != nil {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(code, user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableMFA(ctx, user.ID, time.Now()); err != nil {
		return fmt.Errorf("enable MFA: %w", err)
	}
	slogx.FromContext(ctx).Info("MFA enabled", slog.String("user_id", user.ID))
	return nil
}

// Disable turns MFA off after checking a current code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.MFAEnabled == nil || user.MFASecret == "" {
		return ErrMFANotEnabled
	}
	if !totp.Validate(code, user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().DisableMFA(ctx, user.ID); err != nil {
		return fmt.Errorf("disable MFA: %w", err)
	}
	slogx.FromContext(ctx).Info("MFA disabled", slog.String("user_id", user.ID))
	return nil
}

func (s *MFAService) user(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}
