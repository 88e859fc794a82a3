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
	"github.com/aussiebroadwan/alumnet/internal/alumnet/telemetry"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

var (
	ErrInvalidInviteRequest = errors.New("invalid invite request")
	ErrProfileMismatch      = errors.New("profile data does not match user type")
	ErrInviteNotFound       = errors.New("invalid or expired invite token")
	ErrInviteExpired        = errors.New("token has expired or been used")
	ErrInviteAlreadyUsed    = errors.New("invite has already been used")
	ErrInviteExists         = errors.New("an active invite already exists for this email")
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrInstitutionInactive  = errors.New("institution is not active")
	ErrInstitutionNotFound  = errors.New("institution not found")
	ErrCapacityExceeded     = errors.New("institution user limit reached")
)

// IssueParams describes one invite to mint.
type IssueParams struct {
	InstitutionID  string
	Email          string
	UserType       domain.UserType
	GraduationYear *int
	Identifier     string
	Department     string
	Profile        domain.ProfileData
	CreatedBy      string
	BatchID        string
	TTL            time.Duration // zero uses the service default
}

// InviteInfo is what an invitee sees before creating an account.
type InviteInfo struct {
	Invite      domain.Invite
	Institution domain.Institution
}

type InviteService struct {
	Store store.Store
	Mail  *MailService // nil disables invitation mail
	TTL   time.Duration
	Now   func() time.Time
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *InviteService) ttl(override time.Duration) time.Duration {
	switch {
	case override > 0:
		return override
	case s.TTL > 0:
		return s.TTL
	}
	return domain.DefaultInviteTTL
}

// Issue mints an invite and its raw token. Nothing is persisted; the raw
// token is returned exactly once and only its fingerprint is kept on the
// record. Duplicate emails are the caller's concern.
func (s *InviteService) Issue(ctx context.Context, p IssueParams) (domain.Invite, string, error) {
	now := s.now()

	// 1. Validate the target.
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if p.InstitutionID == "" || !strings.Contains(email, "@") {
		return domain.Invite{}, "", fmt.Errorf("%w: institution and a valid email are required", ErrInvalidInviteRequest)
	}
	if _, err := domain.ParseUserType(string(p.UserType)); err != nil {
		return domain.Invite{}, "", err
	}

	// 2. Validate the pre-filled profile against the user type schema.
	if p.Profile != nil {
		if p.Profile.UserType() != p.UserType {
			return domain.Invite{}, "", ErrProfileMismatch
		}
		if err := p.Profile.Validate(now); err != nil {
			return domain.Invite{}, "", err
		}
	}

	// 3. Generate the token and keep only its fingerprint.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Invite{}, "", err
	}

	return domain.Invite{
		ID:             idx.New().String(),
		TokenHash:      cryptox.FingerprintToken(token),
		InstitutionID:  p.InstitutionID,
		Email:          email,
		UserType:       p.UserType,
		GraduationYear: p.GraduationYear,
		Identifier:     strings.TrimSpace(p.Identifier),
		Department:     strings.TrimSpace(p.Department),
		Profile:        p.Profile,
		ExpiresAt:      now.Add(s.ttl(p.TTL)),
		CreatedAt:      now,
		CreatedBy:      p.CreatedBy,
		BatchID:        p.BatchID,
	}, token, nil
}

// Lookup finds the unused, unexpired invite for raw by re-fingerprinting it.
// A token that was already redeemed yields ErrInviteAlreadyUsed; anything
// else that does not match yields ErrInviteNotFound.
func (s *InviteService) Lookup(ctx context.Context, raw string) (domain.Invite, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Invite{}, ErrInviteNotFound
	}
	hash := cryptox.FingerprintToken(raw)
	inv, err := s.Store.Invites().GetActiveInviteByTokenHash(ctx, hash)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Invite{}, err
	}

	spent, err := s.Store.Invites().GetInviteByTokenHash(ctx, hash)
	switch {
	case err == nil && spent.Used:
		return domain.Invite{}, ErrInviteAlreadyUsed
	case err == nil, errors.Is(err, store.ErrNotFound):
		return domain.Invite{}, ErrInviteNotFound
	default:
		return domain.Invite{}, err
	}
}

// CheckValid reports whether inv can still be consumed. An invite past its
// expiry timestamp is flagged expired as a side effect of the check.
func (s *InviteService) CheckValid(ctx context.Context, inv *domain.Invite) (bool, error) {
	if inv.Used || inv.Expired {
		return false, nil
	}
	if s.now().Before(inv.ExpiresAt) {
		return true, nil
	}

	err := s.Store.Invites().MarkInviteExpired(ctx, inv.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	inv.Expired = true
	telemetry.InvitesExpiredTotal.WithLabelValues("lazy").Inc()

	slogx.FromContext(ctx).Info("invite expired on access",
		slog.String("invite_id", inv.ID),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return false, nil
}

// Consume claims inv for userID on st, which must be the transaction that
// creates the account. The update only matches a still-consumable row, so of
// two concurrent claims exactly one succeeds.
func (s *InviteService) Consume(ctx context.Context, st store.Store, inviteID string, audit domain.ConsumeAudit) error {
	if audit.At.IsZero() {
		audit.At = s.now()
	}
	err := st.Invites().ConsumeInvite(ctx, inviteID, audit)
	if errors.Is(err, store.ErrNotFound) {
		telemetry.InviteConsumeConflictsTotal.Inc()
		return ErrInviteAlreadyUsed
	}
	return err
}

// Validate resolves a raw token for the invitee landing page.
func (s *InviteService) Validate(ctx context.Context, raw string) (InviteInfo, error) {
	inv, err := s.Lookup(ctx, raw)
	if err != nil {
		return InviteInfo{}, err
	}

	ok, err := s.CheckValid(ctx, &inv)
	if err != nil {
		return InviteInfo{}, err
	}
	if !ok {
		return InviteInfo{}, ErrInviteExpired
	}

	inst, err := s.Store.Institutions().GetInstitutionByID(ctx, inv.InstitutionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InviteInfo{}, ErrInstitutionInactive
		}
		return InviteInfo{}, err
	}
	if !inst.IsActive {
		return InviteInfo{}, ErrInstitutionInactive
	}
	return InviteInfo{Invite: inv, Institution: inst}, nil
}

// CreateInviteRequest is a manual single invite from an admin.
type CreateInviteRequest struct {
	InstitutionID  string
	Email          string
	UserType       domain.UserType
	GraduationYear *int
	Identifier     string
	Department     string
	Profile        domain.ProfileData
}

// CreateInvite issues and stores one invite and queues its mail.
func (s *InviteService) CreateInvite(ctx context.Context, p httpx.Principal, req CreateInviteRequest) (domain.Invite, error) {
	log := slogx.FromContext(ctx)

	// 1. Resolve and check the institution.
	institutionID, err := scopeInstitution(p, req.InstitutionID)
	if err != nil {
		return domain.Invite{}, err
	}
	inst, err := loadActiveInstitution(ctx, s.Store, institutionID)
	if err != nil {
		return domain.Invite{}, err
	}

	// 2. Mint the invite (validates email, type and profile).
	inv, raw, err := s.Issue(ctx, IssueParams{
		InstitutionID:  inst.ID,
		Email:          req.Email,
		UserType:       req.UserType,
		GraduationYear: req.GraduationYear,
		Identifier:     req.Identifier,
		Department:     req.Department,
		Profile:        req.Profile,
		CreatedBy:      p.UserID,
	})
	if err != nil {
		return domain.Invite{}, err
	}

	// 3. Persist with duplicate and capacity guards and queue the mail.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkNewInvitee(ctx, tx, inv.Email, s.now()); err != nil {
			return err
		}
		remaining, err := remainingSeats(ctx, tx, inst, s.now())
		if err != nil {
			return err
		}
		if remaining < 1 {
			return ErrCapacityExceeded
		}
		return s.persist(ctx, tx, inv, raw, inst.Name)
	})
	if err != nil {
		return domain.Invite{}, err
	}

	telemetry.InvitesIssuedTotal.WithLabelValues("manual", string(inv.UserType)).Inc()
	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("institution_id", inst.ID),
		slog.String("user_type", string(inv.UserType)),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	if s.Mail != nil {
		s.Mail.Kick()
	}
	return inv, nil
}

// persist stores inv and queues its invitation on st.
func (s *InviteService) persist(ctx context.Context, st store.Store, inv domain.Invite, raw, institutionName string) error {
	if err := st.Invites().CreateInvite(ctx, inv); err != nil {
		return fmt.Errorf("create invite: %w", err)
	}
	if s.Mail == nil {
		return nil
	}
	_, err := s.Mail.EnqueueInvitation(ctx, st, inv, raw, institutionName)
	return err
}

// ListInvites returns invites of an institution, optionally by state.
func (s *InviteService) ListInvites(
	ctx context.Context,
	p httpx.Principal,
	institutionID string,
	state domain.InviteState,
	limit int,
) ([]domain.Invite, error) {
	institutionID, err := scopeInstitution(p, institutionID)
	if err != nil {
		return nil, err
	}
	switch state {
	case "", domain.InviteActive, domain.InviteUsed, domain.InviteExpired:
	default:
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidInviteRequest, state)
	}
	return s.Store.Invites().ListInvites(ctx, store.InviteFilter{
		InstitutionID: institutionID,
		State:         state,
		Now:           s.now(),
		Limit:         limit,
	})
}

// Expire revokes an unused invite.
func (s *InviteService) Expire(ctx context.Context, p httpx.Principal, inviteID string) error {
	inv, err := s.Store.Invites().GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if !canAccess(p, inv.InstitutionID) {
		return ErrForbidden
	}
	if inv.Used {
		return ErrInviteAlreadyUsed
	}
	if inv.Expired {
		return nil
	}

	if err := s.Store.Invites().MarkInviteExpired(ctx, inv.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteAlreadyUsed
		}
		return err
	}
	telemetry.InvitesExpiredTotal.WithLabelValues("admin").Inc()
	slogx.FromContext(ctx).Info("invite expired by admin",
		slog.String("invite_id", inv.ID),
		slog.String("expired_by", p.UserID),
	)
	return nil
}

func loadActiveInstitution(ctx context.Context, st store.Store, id string) (domain.Institution, error) {
	inst, err := st.Institutions().GetInstitutionByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Institution{}, ErrInstitutionNotFound
		}
		return domain.Institution{}, err
	}
	if !inst.IsActive {
		return domain.Institution{}, ErrInstitutionInactive
	}
	return inst, nil
}

// checkNewInvitee rejects emails that already have an account or a
// consumable invite.
func checkNewInvitee(ctx context.Context, st store.Store, email string, now time.Time) error {
	taken, err := st.Users().EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	pending, err := st.Invites().HasActiveInviteForEmail(ctx, email, now)
	if err != nil {
		return err
	}
	if pending {
		return ErrInviteExists
	}
	return nil
}

// remainingSeats counts accounts plus consumable invites against max_users.
func remainingSeats(ctx context.Context, st store.Store, inst domain.Institution, now time.Time) (int, error) {
	users, err := st.Users().CountUsersByInstitution(ctx, inst.ID)
	if err != nil {
		return 0, err
	}
	invites, err := st.Invites().CountActiveInvitesByInstitution(ctx, inst.ID, now)
	if err != nil {
		return 0, err
	}
	return inst.Remaining(users + invites), nil
}
