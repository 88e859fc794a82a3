package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/telemetry"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

// MinPasswordLength applies to every password a user chooses.
const MinPasswordLength = 8

const usernameAttempts = 3

var (
	ErrMissingFields        = errors.New("all fields are required")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrGraduationMismatch   = errors.New("graduation year does not match our records")
	ErrGraduationYearFormat = errors.New("invalid graduation year")
	ErrUsernameTaken        = errors.New("username already taken")
)

// CreateAccountRequest is what an invitee submits from the invite link.
type CreateAccountRequest struct {
	Token           string
	Password        string
	ConfirmPassword string
	GraduationYear  string
	IPAddress       string
	UserAgent       string
}

type AccountService struct {
	Store   store.Store
	Invites *InviteService
}

// VerifyGraduation confirms the year the invitee typed matches the invite.
func (s *AccountService) VerifyGraduation(ctx context.Context, raw, year string) error {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(year) == "" {
		return ErrMissingFields
	}

	inv, err := s.Invites.Lookup(ctx, raw)
	if err != nil {
		return err
	}
	ok, err := s.Invites.CheckValid(ctx, &inv)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInviteNotFound
	}

	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || !matchesGraduation(inv, y) {
		return ErrGraduationMismatch
	}
	return nil
}

// CreateAccount turns a valid invite into an active account and profile. The
// invite is consumed in the same transaction, so either both happen or
// neither does, and a concurrent second request sees ErrInviteAlreadyUsed.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. All inputs present.
	if req.Token == "" || req.Password == "" || req.ConfirmPassword == "" || strings.TrimSpace(req.GraduationYear) == "" {
		return domain.User{}, ErrMissingFields
	}

	// 2. Passwords match.
	if req.Password != req.ConfirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}

	// 3. Password length.
	if len(req.Password) < MinPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}

	// 4. Token resolves and is still valid.
	inv, err := s.Invites.Lookup(ctx, req.Token)
	if err != nil {
		return domain.User{}, err
	}
	ok, err := s.Invites.CheckValid(ctx, &inv)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrInviteNotFound
	}

	// 5. Graduation year re-check.
	year, err := strconv.Atoi(strings.TrimSpace(req.GraduationYear))
	if err != nil || !matchesGraduation(inv, year) {
		return domain.User{}, ErrGraduationYearFormat
	}

	// 6. No account for this email yet.
	taken, err := s.Store.Users().EmailExists(ctx, inv.Email)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		// A concurrent redemption of this same invite may have created it.
		if cur, err := s.Store.Invites().GetInviteByTokenHash(ctx, inv.TokenHash); err == nil && cur.Used {
			return domain.User{}, ErrInviteAlreadyUsed
		}
		return domain.User{}, ErrEmailTaken
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Invites.now()
	profile := pinnedProfile(inv, now)
	ident := profile.Identity()

	user := domain.User{
		ID:            idx.New().String(),
		Email:         inv.Email,
		PasswordHash:  hash,
		Role:          inv.UserType.Role(),
		Status:        domain.UserStatusActive,
		FirstName:     ident.FirstName,
		LastName:      ident.LastName,
		InstitutionID: inv.InstitutionID,
		InvitedBy:     inv.CreatedBy,
		InviteID:      inv.ID,
	}

	// A username picked inside the transaction can still collide with one
	// committed by a concurrent request, so a collision is retried.
	for attempt := 1; ; attempt++ {
		err = s.createWithInvite(ctx, inv, &user, profile, req, now)
		if !errors.Is(err, ErrUsernameTaken) || attempt == usernameAttempts {
			break
		}
	}
	if err != nil {
		if !errors.Is(err, ErrInviteAlreadyUsed) && !errors.Is(err, ErrEmailTaken) {
			log.Error("account creation failed",
				slog.String("invite_id", inv.ID),
				slog.Any("error", err),
			)
		}
		return domain.User{}, err
	}

	user.LastLoginAt = &now
	user.CreatedAt = now
	user.UpdatedAt = now
	telemetry.InvitesConsumedTotal.Inc()
	log.Info("account created from invite",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("invite_id", inv.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// createWithInvite consumes inv and writes user and profile in one transaction.
func (s *AccountService) createWithInvite(
	ctx context.Context,
	inv domain.Invite,
	user *domain.User,
	profile domain.ProfileData,
	req CreateAccountRequest,
	now time.Time,
) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		local, _, _ := strings.Cut(inv.Email, "@")
		username, err := uniqueUsername(ctx, tx, local)
		if err != nil {
			return err
		}
		user.Username = username

		// invites.used_by is a deferred foreign key, so the invite can be
		// claimed before the user row exists. Claiming first means the
		// losing request of a race aborts before writing anything.
		if err := s.Invites.Consume(ctx, tx, inv.ID, domain.ConsumeAudit{
			UserID:    user.ID,
			IPAddress: req.IPAddress,
			UserAgent: req.UserAgent,
			At:        now,
		}); err != nil {
			return err
		}

		if err := tx.Users().CreateUser(ctx, *user); err != nil {
			if !errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("create user: %w", err)
			}
			// Email and username are both unique; tell them apart.
			taken, err := tx.Users().EmailExists(ctx, user.Email)
			if err != nil {
				return fmt.Errorf("check email: %w", err)
			}
			if taken {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		if err := tx.Profiles().CreateProfile(ctx, domain.Profile{
			UserID:        user.ID,
			InstitutionID: inv.InstitutionID,
			Data:          profile,
		}); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return tx.Users().UpdateLastLogin(ctx, user.ID, now)
	})
}

func matchesGraduation(inv domain.Invite, year int) bool {
	return inv.GraduationYear != nil && *inv.GraduationYear == year
}

// uniqueUsername returns base, or base with 1, 2, ... appended until it is
// free.
func uniqueUsername(ctx context.Context, st store.Store, base string) (string, error) {
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := st.Users().UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

// pinnedProfile builds the profile to persist for inv. The invite's own
// email, department and graduation year override whatever the pre-filled
// profile carries.
func pinnedProfile(inv domain.Invite, now time.Time) domain.ProfileData {
	year := 0
	if inv.GraduationYear != nil {
		year = *inv.GraduationYear
	}

	switch p := inv.Profile.(type) {
	case domain.AlumniProfile:
		p.Email = inv.Email
		p.GraduationYear = year
		p.Department = firstNonEmpty(inv.Department, p.Department)
		p.AlumniID = firstNonEmpty(inv.Identifier, p.AlumniID)
		return p
	case domain.StudentProfile:
		p.Email = inv.Email
		p.ExpectedGraduationYear = year
		p.Department = firstNonEmpty(inv.Department, p.Department)
		p.StudentID = firstNonEmpty(inv.Identifier, p.StudentID)
		if p.EnrollmentYear == 0 {
			p.EnrollmentYear = now.Year()
		}
		return p
	}

	if inv.UserType == domain.UserTypeStudent {
		return domain.StudentProfile{
			Email:                  inv.Email,
			StudentID:              inv.Identifier,
			EnrollmentYear:         now.Year(),
			ExpectedGraduationYear: year,
			Department:             inv.Department,
		}
	}
	return domain.AlumniProfile{
		AlumniID:       inv.Identifier,
		Email:          inv.Email,
		GraduationYear: year,
		Department:     inv.Department,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
