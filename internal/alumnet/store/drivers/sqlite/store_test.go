package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store/drivers/sqlite"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedInstitution(t *testing.T, s store.Store, code string) domain.Institution {
	t.Helper()

	inst := domain.Institution{
		ID:       idx.New().String(),
		Name:     "University " + code,
		Code:     code,
		IsActive: true,
		MaxUsers: domain.DefaultMaxUsers,
	}
	require.NoError(t, s.Institutions().CreateInstitution(context.Background(), inst))
	return inst
}

func seedUser(t *testing.T, s store.Store, username, email, institutionID string) domain.User {
	t.Helper()

	u := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		Email:         email,
		PasswordHash:  "$argon2id$dummy",
		Role:          domain.RoleInstitutionAdmin,
		InstitutionID: institutionID,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func newInvite(inst domain.Institution, email, hash string, expiresAt time.Time) domain.Invite {
	year := 2020
	return domain.Invite{
		ID:             idx.New().String(),
		TokenHash:      hash,
		InstitutionID:  inst.ID,
		Email:          email,
		UserType:       domain.UserTypeAlumni,
		GraduationYear: &year,
		Department:     "Engineering",
		Profile: domain.AlumniProfile{
			FirstName:      "Alice",
			LastName:       "Smith",
			Email:          email,
			GraduationYear: 2020,
			Department:     "Engineering",
			Skills:         []string{"go", "sql"},
		},
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

func TestInstitutions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	inst := seedInstitution(t, s, "UNSW")

	t.Run("duplicate code", func(t *testing.T) {
		dup := inst
		dup.ID = idx.New().String()
		err := s.Institutions().CreateInstitution(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update and deactivate", func(t *testing.T) {
		inst.Website = "https://unsw.example"
		inst.MaxUsers = 50
		require.NoError(t, s.Institutions().UpdateInstitution(ctx, inst))
		require.NoError(t, s.Institutions().SetInstitutionActive(ctx, inst.ID, false))

		got, err := s.Institutions().GetInstitutionByCode(ctx, "UNSW")
		require.NoError(t, err)
		require.Equal(t, "https://unsw.example", got.Website)
		require.Equal(t, 50, got.MaxUsers)
		require.False(t, got.IsActive)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Institutions().GetInstitutionByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Institutions().SetInstitutionActive(ctx, "nope", true), store.ErrNotFound)
	})
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	inst := seedInstitution(t, s, "UTS")

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := seedUser(t, s, "alice", "Alice@Example.edu", inst.ID)

	t.Run("email lookup ignores case", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "alice@example.edu")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, domain.UserStatusActive, got.Status)

		exists, err := s.Users().EmailExists(ctx, "ALICE@example.edu")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		dup.Email = "other@example.edu"
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("mfa lifecycle", func(t *testing.T) {
		require.ErrorIs(t, s.Users().EnableMFA(ctx, u.ID, time.Now()), store.ErrNotFound)
		require.NoError(t, s.Users().UpdateMFASecret(ctx, u.ID, "SECRET"))
		require.NoError(t, s.Users().EnableMFA(ctx, u.ID, time.Now()))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.MFAEnabled)
		require.Equal(t, "SECRET", got.MFASecret)

		require.NoError(t, s.Users().DisableMFA(ctx, u.ID))
		got, err = s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Nil(t, got.MFAEnabled)
		require.Empty(t, got.MFASecret)
	})

	n, err := s.Users().CountUsersByInstitution(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	inst := seedInstitution(t, s, "UNSW")
	other := seedInstitution(t, s, "USYD")

	admin := seedUser(t, s, "admin_unsw", "admin@unsw.example", inst.ID)
	seedUser(t, s, "admin_usyd", "admin@usyd.example", other.ID)
	for _, u := range []domain.User{
		{Username: "alice", Email: "alice@unsw.example", FirstName: "Alice", LastName: "Smith", Role: domain.RoleAlumni},
		{Username: "bob_50", Email: "bob@unsw.example", FirstName: "Bob", LastName: "Jones", Role: domain.RoleStudent, Status: domain.UserStatusSuspended},
	} {
		u.ID = idx.New().String()
		u.PasswordHash = "$argon2id$dummy"
		u.InstitutionID = inst.ID
		require.NoError(t, s.Users().CreateUser(ctx, u))
	}

	list := func(f store.UserFilter) []string {
		t.Helper()
		users, err := s.Users().ListUsers(ctx, f)
		require.NoError(t, err)
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Username)
		}
		return names
	}

	require.ElementsMatch(t, []string{"admin_unsw", "alice", "bob_50"}, list(store.UserFilter{InstitutionID: inst.ID}))
	require.Equal(t, []string{"admin_unsw"}, list(store.UserFilter{InstitutionID: inst.ID, Role: domain.RoleInstitutionAdmin}))
	require.Equal(t, []string{"bob_50"}, list(store.UserFilter{InstitutionID: inst.ID, Status: domain.UserStatusSuspended}))
	require.Len(t, list(store.UserFilter{InstitutionID: inst.ID, Limit: 2}), 2)
	require.Len(t, list(store.UserFilter{InstitutionID: inst.ID, Limit: 2, Offset: 2}), 1)

	t.Run("search ignores case", func(t *testing.T) {
		require.Equal(t, []string{"alice"}, list(store.UserFilter{InstitutionID: inst.ID, Search: "SMITH"}))
		require.Equal(t, []string{"admin_unsw"}, list(store.UserFilter{Search: admin.Email}))
	})

	t.Run("search wildcards match literally", func(t *testing.T) {
		require.Equal(t, []string{"bob_50"}, list(store.UserFilter{InstitutionID: inst.ID, Search: "_5"}))
		require.Empty(t, list(store.UserFilter{InstitutionID: inst.ID, Search: "b_b"}))
		require.Empty(t, list(store.UserFilter{InstitutionID: inst.ID, Search: "%"}))
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	inst := seedInstitution(t, s, "MQ")
	u := seedUser(t, s, "erin", "erin@mq.example", inst.ID)

	profile := domain.Profile{
		UserID:        u.ID,
		InstitutionID: inst.ID,
		Data: domain.AlumniProfile{
			FirstName: "Erin", LastName: "Ng", Email: u.Email, GraduationYear: 2018, Department: "Law",
		},
	}
	require.ErrorIs(t, s.Profiles().UpdateProfile(ctx, profile), store.ErrNotFound)
	require.NoError(t, s.Profiles().CreateProfile(ctx, profile))

	profile.Data = domain.AlumniProfile{
		FirstName: "Erin", LastName: "Ng", Email: u.Email, GraduationYear: 2018, Department: "Law",
		CurrentCompany: "Quay Partners",
	}
	require.NoError(t, s.Profiles().UpdateProfile(ctx, profile))

	got, err := s.Profiles().GetProfileByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Quay Partners", got.Data.(domain.AlumniProfile).CurrentCompany)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestInvites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	inst := seedInstitution(t, s, "ANU")
	now := time.Now()

	inv := newInvite(inst, "alice@inst.edu", "hash-1", now.Add(time.Hour))
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	t.Run("lookup by hash decodes profile", func(t *testing.T) {
		got, err := s.Invites().GetActiveInviteByTokenHash(ctx, "hash-1")
		require.NoError(t, err)
		require.Equal(t, inv.ID, got.ID)
		require.Equal(t, 2020, *got.GraduationYear)

		profile, ok := got.Profile.(domain.AlumniProfile)
		require.True(t, ok)
		require.Equal(t, []string{"go", "sql"}, profile.Skills)

		_, err = s.Invites().GetActiveInviteByTokenHash(ctx, "hash-2")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("consume is conditional", func(t *testing.T) {
		u := seedUser(t, s, "alice", "alice@inst.edu", inst.ID)
		audit := domain.ConsumeAudit{UserID: u.ID, IPAddress: "10.0.0.1", UserAgent: "test", At: now}

		require.NoError(t, s.Invites().ConsumeInvite(ctx, inv.ID, audit))
		require.ErrorIs(t, s.Invites().ConsumeInvite(ctx, inv.ID, audit), store.ErrNotFound)

		got, err := s.Invites().GetInviteByID(ctx, inv.ID)
		require.NoError(t, err)
		require.True(t, got.Used)
		require.Equal(t, u.ID, got.UsedBy)
		require.Equal(t, "10.0.0.1", got.IPAddress)
		require.NotNil(t, got.UsedAt)
		require.Equal(t, domain.InviteUsed, got.State(now))

		_, err = s.Invites().GetActiveInviteByTokenHash(ctx, "hash-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("past expiry cannot be consumed", func(t *testing.T) {
		stale := newInvite(inst, "bob@inst.edu", "hash-stale", now.Add(-time.Minute))
		require.NoError(t, s.Invites().CreateInvite(ctx, stale))

		err := s.Invites().ConsumeInvite(ctx, stale.ID, domain.ConsumeAudit{At: now})
		require.ErrorIs(t, err, store.ErrNotFound)

		n, err := s.Invites().ExpireStaleInvites(ctx, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		expired, err := s.Invites().ListInvites(ctx, store.InviteFilter{InstitutionID: inst.ID, State: domain.InviteExpired, Now: now})
		require.NoError(t, err)
		require.Len(t, expired, 1)
		require.True(t, expired[0].Expired)
	})

	t.Run("active invite per email", func(t *testing.T) {
		pending := newInvite(inst, "carol@inst.edu", "hash-carol", now.Add(time.Hour))
		require.NoError(t, s.Invites().CreateInvite(ctx, pending))

		has, err := s.Invites().HasActiveInviteForEmail(ctx, "CAROL@inst.edu", now)
		require.NoError(t, err)
		require.True(t, has)

		n, err := s.Invites().CountActiveInvitesByInstitution(ctx, inst.ID, now)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		require.NoError(t, s.Invites().MarkInviteExpired(ctx, pending.ID))
		has, err = s.Invites().HasActiveInviteForEmail(ctx, "carol@inst.edu", now)
		require.NoError(t, err)
		require.False(t, has)
	})

	t.Run("lookup by hash in any state", func(t *testing.T) {
		got, err := s.Invites().GetInviteByTokenHash(ctx, "hash-1")
		require.NoError(t, err)
		require.True(t, got.Used)

		_, err = s.Invites().GetInviteByTokenHash(ctx, "hash-missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate hash", func(t *testing.T) {
		dup := newInvite(inst, "dup@inst.edu", "hash-1", now.Add(time.Hour))
		require.ErrorIs(t, s.Invites().CreateInvite(ctx, dup), store.ErrAlreadyExists)
	})
}

func TestBatchesAndMailJobs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	inst := seedInstitution(t, s, "USYD")

	b := domain.Batch{
		ID:            idx.New().String(),
		InstitutionID: inst.ID,
		UserType:      domain.UserTypeStudent,
		Filename:      "students.csv",
		Status:        domain.BatchPending,
		UploadedAt:    time.Now(),
		Source:        []byte("first_name\n"),
	}
	require.NoError(t, s.Batches().CreateBatch(ctx, b))

	require.NoError(t, b.Start(3))
	log := &domain.ErrorLog{
		DataValidationErrors: []domain.RowError{{RowNumber: 3, Errors: []string{"Last name is required"}}},
	}
	require.NoError(t, b.Complete(2, 1, log, time.Now()))
	require.NoError(t, s.Batches().UpdateBatch(ctx, b))

	got, err := s.Batches().GetBatchByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BatchCompleted, got.Status)
	require.Equal(t, 3, got.ProcessedRecords)
	require.NotNil(t, got.ProcessedAt)
	require.NotNil(t, got.ErrorLog)
	require.Equal(t, 3, got.ErrorLog.DataValidationErrors[0].RowNumber)
	require.Equal(t, []byte("first_name\n"), got.Source)

	list, err := s.Batches().ListBatches(ctx, inst.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].Source)

	jobs := make([]domain.MailJob, 2)
	for i := range jobs {
		jobs[i] = domain.MailJob{
			ID:        idx.New().String(),
			BatchID:   b.ID,
			Recipient: "user@inst.edu",
			Subject:   "You're invited",
			Body:      "secret link",
		}
		require.NoError(t, s.MailJobs().CreateMailJob(ctx, jobs[i]))
	}

	pending, err := s.MailJobs().ListPendingMailJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, s.MailJobs().MarkMailJobSent(ctx, jobs[0].ID, time.Now()))
	sent, err := s.MailJobs().GetMailJobByID(ctx, jobs[0].ID)
	require.NoError(t, err)
	require.Empty(t, sent.Body)
	require.Equal(t, domain.MailSent, sent.Status)

	require.NoError(t, s.MailJobs().RecordMailJobFailure(ctx, jobs[1].ID, "dial tcp: refused", 2))
	stats, err := s.MailJobs().MailStatsByBatch(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MailStats{Queued: 1, Sent: 1}, stats)

	require.NoError(t, s.MailJobs().RecordMailJobFailure(ctx, jobs[1].ID, "dial tcp: refused", 2))
	stats, err = s.MailJobs().MailStatsByBatch(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MailStats{Sent: 1, Failed: 1}, stats)

	pruned, err := s.MailJobs().PruneMailJobs(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)
}

func TestMigrationsAndSchemaVersion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alumnet.db")

	s, err := sqlite.NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations(), "re-applying is a no-op")

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, version)

	// Simulate a migration that crashed halfway.
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = s.SchemaVersion(ctx)
	require.ErrorIs(t, err, sqlite.ErrDirtySchema)
	require.ErrorIs(t, s.ApplyMigrations(), sqlite.ErrDirtySchema)
}

func TestWithTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		seedInstitution(t, tx, "ROLLBACK")
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Institutions().GetInstitutionByCode(ctx, "ROLLBACK")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		seedInstitution(t, tx, "COMMIT")
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.ErrorIs(t, err, sql.ErrTxDone)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		seedInstitution(t, tx, "COMMIT")
		return nil
	}))
	_, err = s.Institutions().GetInstitutionByCode(ctx, "COMMIT")
	require.NoError(t, err)
}

func TestConsumeBeforeUserInsertInTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	inst := seedInstitution(t, s, "QUT")
	now := time.Now()

	inv := newInvite(inst, "dana@inst.edu", "hash-dana", now.Add(time.Hour))
	require.NoError(t, s.Invites().CreateInvite(ctx, inv))

	userID := idx.New().String()
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().ConsumeInvite(ctx, inv.ID, domain.ConsumeAudit{UserID: userID, At: now}); err != nil {
			return err
		}
		return tx.Users().CreateUser(ctx, domain.User{
			ID:            userID,
			Username:      "dana",
			Email:         "dana@inst.edu",
			PasswordHash:  "x",
			Role:          domain.RoleAlumni,
			InstitutionID: inst.ID,
			InviteID:      inv.ID,
		})
	}))

	got, err := s.Invites().GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, userID, got.UsedBy)
}
