package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/roster"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/stretchr/testify/require"
)

const alumniCSV = `first_name,last_name,email,graduation_year,department,skills
Alice,Smith,alice@hu.example,2020,Engineering,"go, sql"
Bob,,bob@hu.example,2019,Law,
Carol,Jones,carol@hu.example,2018,Arts,
`

func TestUploadStatusRetry(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.imports.Upload(ctx, e.admin, UploadRequest{
		UserType: "alumni",
		Filename: "alumni.csv",
		Data:     []byte(alumniCSV),
	})
	require.NoError(t, err)
	require.Equal(t, UploadSummary{
		TotalRecords:         3,
		SuccessfulRecords:    2,
		FailedRecords:        1,
		InvitationEmailsSent: 2,
	}, res.Summary)
	require.Len(t, res.Errors, 1)
	require.Equal(t, 3, res.Errors[0].RowNumber)
	require.Equal(t, []string{"Last name is required"}, res.Errors[0].Errors)

	batchID := res.Batch.ID

	t.Run("batch is terminal with consistent counts", func(t *testing.T) {
		b, err := e.st.Batches().GetBatchByID(ctx, batchID)
		require.NoError(t, err)
		require.Equal(t, domain.BatchCompleted, b.Status)
		require.Equal(t, b.TotalRecords, b.ProcessedRecords)
		require.Equal(t, b.ProcessedRecords, b.SuccessfulRecords+b.FailedRecords)
		require.NotNil(t, b.ProcessedAt)
		require.NotNil(t, b.ErrorLog)
		require.Len(t, b.ErrorLog.DataValidationErrors, 1)

		invites, err := e.invites.ListInvites(ctx, e.admin, "", domain.InviteActive, 0)
		require.NoError(t, err)
		require.Len(t, invites, 2)
		for _, inv := range invites {
			require.Equal(t, batchID, inv.BatchID)
			require.NotNil(t, inv.GraduationYear)
		}
	})

	t.Run("status reports mail delivery", func(t *testing.T) {
		st, err := e.imports.Status(ctx, e.admin, batchID)
		require.NoError(t, err)
		require.Equal(t, domain.MailStats{Queued: 2}, st.Mail)

		res, err := e.mail.DispatchPending(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, res.Sent)

		st, err = e.imports.Status(ctx, e.admin, batchID)
		require.NoError(t, err)
		require.Equal(t, domain.MailStats{Sent: 2}, st.Mail)
		require.Nil(t, st.Batch.Source)
	})

	t.Run("other institution admins are refused", func(t *testing.T) {
		other := httpx.Principal{UserID: idx.New().String(), Role: string(domain.RoleInstitutionAdmin), InstitutionID: idx.New().String()}
		_, err := e.imports.Status(ctx, other, batchID)
		require.ErrorIs(t, err, ErrForbidden)
		_, err = e.imports.Retry(ctx, other, batchID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("retry reprocesses the stored file", func(t *testing.T) {
		res, err := e.imports.Retry(ctx, e.super, batchID)
		require.NoError(t, err)
		require.Equal(t, batchID, res.Batch.ID)
		require.Equal(t, domain.BatchCompleted, res.Batch.Status)

		// The first run's invites are still active, so only the invalid row
		// and two duplicate issuances remain.
		require.Equal(t, 0, res.Summary.SuccessfulRecords)
		require.Equal(t, 3, res.Summary.FailedRecords)
		require.Len(t, res.Batch.ErrorLog.InviteCreationErrors, 2)
		require.Equal(t, "An active invite already exists for this email", res.Batch.ErrorLog.InviteCreationErrors[0].Error)
	})

	t.Run("listing", func(t *testing.T) {
		batches, err := e.imports.ListBatches(ctx, e.admin, "", 10)
		require.NoError(t, err)
		require.Len(t, batches, 1)

		_, err = e.imports.ListBatches(ctx, e.super, "", 10)
		require.ErrorIs(t, err, ErrInstitutionRequired)
	})
}

func TestRetryRequiresTerminalBatch(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	b := domain.Batch{
		ID:            idx.New().String(),
		InstitutionID: e.inst.ID,
		UserType:      domain.UserTypeAlumni,
		Filename:      "pending.csv",
		Status:        domain.BatchPending,
		UploadedBy:    e.admin.UserID,
		UploadedAt:    e.invites.now(),
	}
	require.NoError(t, e.st.Batches().CreateBatch(ctx, b))

	_, err := e.imports.Retry(ctx, e.admin, b.ID)
	require.ErrorIs(t, err, ErrBatchNotRetryable)

	_, err = e.imports.Retry(ctx, e.admin, "missing")
	require.ErrorIs(t, err, ErrBatchNotFound)
}

func TestRetryOfUnreadableSourceFailsBatch(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	b := domain.Batch{
		ID:            idx.New().String(),
		InstitutionID: e.inst.ID,
		UserType:      domain.UserTypeAlumni,
		Filename:      "broken.csv",
		Status:        domain.BatchCompleted,
		UploadedBy:    e.admin.UserID,
		UploadedAt:    e.invites.now(),
		Source:        []byte("first_name,last_name\nA,B\n"),
	}
	require.NoError(t, e.st.Batches().CreateBatch(ctx, b))

	_, err := e.imports.Retry(ctx, e.admin, b.ID)
	require.ErrorIs(t, err, roster.ErrMissingColumns)

	stored, err := e.st.Batches().GetBatchByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BatchFailed, stored.Status)
	require.NotNil(t, stored.ErrorLog)
	require.Contains(t, stored.ErrorLog.Failure, "missing required columns")
}

func TestUploadRejections(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	upload := func(p httpx.Principal, userType, filename, data string) (UploadResult, error) {
		return e.imports.Upload(ctx, p, UploadRequest{UserType: userType, Filename: filename, Data: []byte(data)})
	}

	t.Run("unknown user type", func(t *testing.T) {
		_, err := upload(e.admin, "staff", "a.csv", alumniCSV)
		require.ErrorIs(t, err, domain.ErrInvalidUserType)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := upload(e.admin, "alumni", "a.txt", alumniCSV)
		require.ErrorIs(t, err, roster.ErrUnsupportedFormat)
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := upload(e.admin, "student", "s.csv", alumniCSV)
		require.ErrorIs(t, err, roster.ErrMissingColumns)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := upload(e.admin, "alumni", "a.csv", "first_name,last_name,email,graduation_year,department\n")
		require.ErrorIs(t, err, roster.ErrEmptyFile)
	})

	t.Run("no valid rows", func(t *testing.T) {
		res, err := upload(e.admin, "alumni", "a.csv",
			"first_name,last_name,email,graduation_year,department\nA,B,nope,1800,X\n")
		require.ErrorIs(t, err, ErrNoValidRecords)
		require.Len(t, res.Errors, 1)
		require.Contains(t, res.Errors[0].Errors, "Invalid email format")
		require.Contains(t, res.Errors[0].Errors, "Invalid graduation year")

		batches, err := e.imports.ListBatches(ctx, e.admin, "", 10)
		require.NoError(t, err)
		require.Empty(t, batches)
	})

	t.Run("existing account is an issuance error", func(t *testing.T) {
		res, err := upload(e.admin, "alumni", "a.csv",
			"first_name,last_name,email,graduation_year,department\nAd,Min,admin@hu.example,2000,Ops\nNew,Person,new@hu.example,2001,Ops\n")
		require.NoError(t, err)
		require.Equal(t, 1, res.Summary.SuccessfulRecords)
		require.Equal(t, 1, res.Summary.FailedRecords)
		require.Equal(t, "User with this email already exists", res.Batch.ErrorLog.InviteCreationErrors[0].Error)
	})

	t.Run("capacity", func(t *testing.T) {
		maxUsers := 3
		inst := e.inst
		inst.MaxUsers = maxUsers
		require.NoError(t, e.st.Institutions().UpdateInstitution(ctx, inst))

		_, err := upload(e.admin, "alumni", "a.csv", alumniCSV)
		require.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("inactive institution", func(t *testing.T) {
		require.NoError(t, e.st.Institutions().SetInstitutionActive(ctx, e.inst.ID, false))
		_, err := upload(e.admin, "alumni", "a.csv", alumniCSV)
		require.ErrorIs(t, err, ErrInstitutionInactive)
	})
}

func TestUploadCapsReportedErrors(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	data := "first_name,last_name,email,graduation_year,department\nGood,Row,good@hu.example,2010,Arts\n"
	for range 12 {
		data += ",,,,\n" + "Bad,,bad@hu.example,2010,Arts\n"
	}

	res, err := e.imports.Upload(ctx, e.admin, UploadRequest{UserType: "alumni", Filename: "a.csv", Data: []byte(data)})
	require.NoError(t, err)
	require.Equal(t, 13, res.Summary.TotalRecords)
	require.Equal(t, 12, res.Summary.FailedRecords)
	require.Len(t, res.Errors, maxReportedErrors)

	b, err := e.st.Batches().GetBatchByID(ctx, res.Batch.ID)
	require.NoError(t, err)
	require.Len(t, b.ErrorLog.DataValidationErrors, 12)
}

// brokenTxStore fails every transaction while plain reads and writes work.
type brokenTxStore struct {
	store.Store
}

func (brokenTxStore) WithTx(context.Context, func(store.Tx) error) error {
	return errors.New("disk I/O error")
}

func TestFailedIssuanceKeepsValidationErrors(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	imports := &ImportService{Store: brokenTxStore{Store: e.st}, Invites: e.invites, Mail: e.mail}
	_, err := imports.Upload(ctx, e.admin, UploadRequest{
		UserType: "alumni",
		Filename: "alumni.csv",
		Data:     []byte(alumniCSV),
	})
	require.ErrorContains(t, err, "disk I/O error")

	batches, err := e.imports.ListBatches(ctx, e.admin, "", 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	b := batches[0]
	require.Equal(t, domain.BatchFailed, b.Status)
	require.Equal(t, 3, b.TotalRecords)
	require.Equal(t, 3, b.FailedRecords)
	require.NotNil(t, b.ErrorLog)
	require.Equal(t, "disk I/O error", b.ErrorLog.Failure)
	require.Len(t, b.ErrorLog.DataValidationErrors, 1)
	require.Equal(t, 3, b.ErrorLog.DataValidationErrors[0].RowNumber)
	require.Equal(t, []string{"Last name is required"}, b.ErrorLog.DataValidationErrors[0].Errors)

	invites, err := e.invites.ListInvites(ctx, e.admin, "", domain.InviteActive, 0)
	require.NoError(t, err)
	require.Empty(t, invites)
}
