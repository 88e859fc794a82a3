package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers expose sub-repositories
// instead of one wide interface so that code inside WithTx can only reach the
// transaction-scoped repos it was handed.
type Store interface {
	Institutions() Institutions
	Users() Users
	Profiles() Profiles
	Invites() Invites
	Batches() Batches
	MailJobs() MailJobs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Institutions interface {
	CreateInstitution(ctx context.Context, inst domain.Institution) error
	GetInstitutionByID(ctx context.Context, id string) (domain.Institution, error)
	GetInstitutionByCode(ctx context.Context, code string) (domain.Institution, error)

	// ListInstitutions returns every institution ordered by name.
	ListInstitutions(ctx context.Context) ([]domain.Institution, error)

	// UpdateInstitution overwrites the mutable fields and bumps updated_at.
	UpdateInstitution(ctx context.Context, inst domain.Institution) error

	SetInstitutionActive(ctx context.Context, id string, active bool) error
}

type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// CountUsersByInstitution counts every account bound to the institution.
	CountUsersByInstitution(ctx context.Context, institutionID string) (int, error)

	// ListUsers returns matching users newest first.
	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)

	UpdatePasswordHash(ctx context.Context, userID, hash string, mustChange bool) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	UpdateMFASecret(ctx context.Context, userID, secret string) error
	EnableMFA(ctx context.Context, userID string, at time.Time) error
	DisableMFA(ctx context.Context, userID string) error
}

// UserFilter narrows ListUsers. Empty fields match everything; Search is a
// case-insensitive substring of username, email, first or last name.
type UserFilter struct {
	InstitutionID string
	Role          domain.Role
	Status        domain.UserStatus
	Search        string
	Limit         int
	Offset        int
}

type Profiles interface {
	CreateProfile(ctx context.Context, p domain.Profile) error
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)

	// UpdateProfile replaces the profile data of p.UserID and bumps
	// updated_at. Returns ErrNotFound if the user has no profile.
	UpdateProfile(ctx context.Context, p domain.Profile) error
}

// InviteFilter narrows ListInvites. Empty fields match everything.
type InviteFilter struct {
	InstitutionID string
	BatchID       string
	State         domain.InviteState
	Now           time.Time
	Limit         int
}

type Invites interface {
	// CreateInvite stores an invite; only the token hash is persisted.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)

	// GetActiveInviteByTokenHash matches an unused, unexpired invite by hash.
	// An invite past its expiry timestamp but not yet flagged still matches,
	// so the caller can observe and record the expiry.
	GetActiveInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// GetInviteByTokenHash matches an invite by hash in any state.
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// HasActiveInviteForEmail reports whether a consumable invite exists for email at now.
	HasActiveInviteForEmail(ctx context.Context, email string, now time.Time) (bool, error)

	// CountActiveInvitesByInstitution counts consumable invites at now.
	CountActiveInvitesByInstitution(ctx context.Context, institutionID string, now time.Time) (int, error)

	ListInvites(ctx context.Context, f InviteFilter) ([]domain.Invite, error)

	// MarkInviteExpired flags an unused invite expired. Returns ErrNotFound
	// if no unused invite has that id.
	MarkInviteExpired(ctx context.Context, id string) error

	// ConsumeInvite marks the invite used only if it is still consumable at
	// audit.At. Returns ErrNotFound when no row matched.
	ConsumeInvite(ctx context.Context, id string, audit domain.ConsumeAudit) error

	// ExpireStaleInvites flags every unused invite past its expiry.
	ExpireStaleInvites(ctx context.Context, now time.Time) (int64, error)
}

type Batches interface {
	CreateBatch(ctx context.Context, b domain.Batch) error
	GetBatchByID(ctx context.Context, id string) (domain.Batch, error)

	// UpdateBatch persists status, counters, error log and processed_at.
	UpdateBatch(ctx context.Context, b domain.Batch) error

	// ListBatches returns batches newest first; empty institutionID lists all.
	ListBatches(ctx context.Context, institutionID string, limit int) ([]domain.Batch, error)
}

type MailJobs interface {
	CreateMailJob(ctx context.Context, j domain.MailJob) error
	GetMailJobByID(ctx context.Context, id string) (domain.MailJob, error)

	// ListPendingMailJobs returns pending jobs, fewest attempts then oldest first.
	ListPendingMailJobs(ctx context.Context, limit int) ([]domain.MailJob, error)

	// MarkMailJobSent records delivery and clears the body.
	MarkMailJobSent(ctx context.Context, id string, at time.Time) error

	// RecordMailJobFailure bumps attempts; the job becomes failed once
	// attempts reaches maxAttempts, otherwise it stays pending.
	RecordMailJobFailure(ctx context.Context, id, lastErr string, maxAttempts int) error

	MailStatsByBatch(ctx context.Context, batchID string) (domain.MailStats, error)

	// PruneMailJobs deletes sent jobs older than before.
	PruneMailJobs(ctx context.Context, before time.Time) (int64, error)
}
