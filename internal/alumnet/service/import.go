package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/roster"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/telemetry"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

// maxReportedErrors caps the row errors echoed back to the uploader. The full
// set is kept in the batch error log.
const maxReportedErrors = 10

var (
	ErrNoValidRecords    = errors.New("no valid records found in the uploaded file")
	ErrBatchNotFound     = errors.New("batch not found")
	ErrBatchNotRetryable = errors.New("batch cannot be retried")
)

// UploadRequest is one spreadsheet submitted for bulk import.
type UploadRequest struct {
	InstitutionID string
	UserType      string
	Filename      string
	Data          []byte
}

type UploadSummary struct {
	TotalRecords         int `json:"total_records"`
	SuccessfulRecords    int `json:"successful_records"`
	FailedRecords        int `json:"failed_records"`
	InvitationEmailsSent int `json:"invitation_emails_sent"`
}

// UploadResult reports a processed batch. Errors holds at most the first ten
// row validation errors.
type UploadResult struct {
	Batch   domain.Batch
	Summary UploadSummary
	Errors  []domain.RowError
}

// BatchStatus is a batch plus the delivery state of its invitation mail.
type BatchStatus struct {
	Batch domain.Batch
	Mail  domain.MailStats
}

type ImportService struct {
	Store   store.Store
	Invites *InviteService
	Mail    *MailService // nil disables invitation mail
}

// Upload validates a roster, records a batch and issues one invite per valid
// row. File-level problems (unsupported type, unreadable, missing columns,
// capacity) reject the upload before any batch exists.
func (s *ImportService) Upload(ctx context.Context, p httpx.Principal, req UploadRequest) (UploadResult, error) {
	log := slogx.FromContext(ctx)
	now := s.Invites.now()

	// 1. Resolve the target institution and user type.
	institutionID, err := scopeInstitution(p, req.InstitutionID)
	if err != nil {
		return UploadResult{}, err
	}
	ut, err := domain.ParseUserType(req.UserType)
	if err != nil {
		return UploadResult{}, err
	}
	inst, err := loadActiveInstitution(ctx, s.Store, institutionID)
	if err != nil {
		return UploadResult{}, err
	}

	// 2. Parse and check the header.
	table, err := roster.Parse(req.Filename, bytes.NewReader(req.Data))
	if err != nil {
		return UploadResult{}, err
	}
	if err := roster.CheckColumns(table, ut); err != nil {
		return UploadResult{}, err
	}

	// 3. Capacity, counting every row the file could add.
	remaining, err := remainingSeats(ctx, s.Store, inst, now)
	if err != nil {
		return UploadResult{}, err
	}
	if len(table.Rows) > remaining {
		return UploadResult{}, fmt.Errorf("%w: adding %d users would exceed institution limit of %d",
			ErrCapacityExceeded, len(table.Rows), inst.MaxUsers)
	}

	// 4. Validate rows.
	cleaned, rejected := roster.Validate(table, ut, now)
	if len(cleaned) == 0 {
		return UploadResult{Errors: firstErrors(rejected)}, ErrNoValidRecords
	}

	// 5. Record the batch.
	batch := domain.Batch{
		ID:            idx.New().String(),
		InstitutionID: inst.ID,
		UserType:      ut,
		Filename:      req.Filename,
		TotalRecords:  len(table.Rows),
		Status:        domain.BatchPending,
		UploadedBy:    p.UserID,
		UploadedAt:    now,
		Source:        req.Data,
	}
	if err := s.Store.Batches().CreateBatch(ctx, batch); err != nil {
		return UploadResult{}, fmt.Errorf("create batch: %w", err)
	}
	log.Info("import batch created",
		slog.String("batch_id", batch.ID),
		slog.String("institution_id", inst.ID),
		slog.String("user_type", string(ut)),
		slog.String("filename", req.Filename),
		slog.Int("total_records", batch.TotalRecords),
	)

	// 6. Issue invites.
	return s.process(ctx, &batch, inst, cleaned, rejected)
}

// Retry resets a finished batch and reprocesses its stored file.
func (s *ImportService) Retry(ctx context.Context, p httpx.Principal, batchID string) (UploadResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("batch_id", batchID))

	batch, err := s.getBatch(ctx, p, batchID)
	if err != nil {
		return UploadResult{}, err
	}
	if err := batch.Reset(); err != nil {
		return UploadResult{}, ErrBatchNotRetryable
	}
	if err := s.Store.Batches().UpdateBatch(ctx, batch); err != nil {
		return UploadResult{}, fmt.Errorf("reset batch: %w", err)
	}
	log.Info("import batch reset for retry")

	inst, err := loadActiveInstitution(ctx, s.Store, batch.InstitutionID)
	if err != nil {
		return UploadResult{}, s.fail(ctx, &batch, err, nil)
	}
	table, err := roster.Parse(batch.Filename, bytes.NewReader(batch.Source))
	if err != nil {
		return UploadResult{}, s.fail(ctx, &batch, err, nil)
	}
	if err := roster.CheckColumns(table, batch.UserType); err != nil {
		return UploadResult{}, s.fail(ctx, &batch, err, nil)
	}

	batch.TotalRecords = len(table.Rows)
	cleaned, rejected := roster.Validate(table, batch.UserType, s.Invites.now())
	return s.process(ctx, &batch, inst, cleaned, rejected)
}

// process takes a pending batch to a terminal state. Invites, their mail and
// the final counters commit together; if that transaction fails nothing is
// issued and the batch is marked failed instead.
func (s *ImportService) process(
	ctx context.Context,
	batch *domain.Batch,
	inst domain.Institution,
	cleaned []roster.Record,
	rejected []domain.RowError,
) (UploadResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("batch_id", batch.ID))
	begin := time.Now()

	if err := batch.Start(batch.TotalRecords); err != nil {
		return UploadResult{}, err
	}
	if err := s.Store.Batches().UpdateBatch(ctx, *batch); err != nil {
		return UploadResult{}, fmt.Errorf("start batch: %w", err)
	}

	var (
		issued    int
		issueErrs []domain.IssueError
		started   = *batch
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		issued, issueErrs = 0, nil
		now := s.Invites.now()
		seen := make(map[string]struct{}, len(cleaned))

		for _, rec := range cleaned {
			rowErr := func(msg string) {
				issueErrs = append(issueErrs, domain.IssueError{RowNumber: rec.RowNumber, Email: rec.Email, Error: msg})
			}

			if _, dup := seen[rec.Email]; dup {
				rowErr("Duplicate email in file")
				continue
			}
			seen[rec.Email] = struct{}{}

			switch err := checkNewInvitee(ctx, tx, rec.Email, now); {
			case errors.Is(err, ErrEmailTaken):
				rowErr("User with this email already exists")
				continue
			case errors.Is(err, ErrInviteExists):
				rowErr("An active invite already exists for this email")
				continue
			case err != nil:
				return err
			}

			year := rec.GraduationYear
			inv, raw, err := s.Invites.Issue(ctx, IssueParams{
				InstitutionID:  inst.ID,
				Email:          rec.Email,
				UserType:       batch.UserType,
				GraduationYear: &year,
				Identifier:     rec.Identifier,
				Department:     rec.Department,
				Profile:        rec.Profile,
				CreatedBy:      batch.UploadedBy,
				BatchID:        batch.ID,
			})
			if err != nil {
				rowErr(err.Error())
				continue
			}
			if err := s.Invites.persist(ctx, tx, inv, raw, inst.Name); err != nil {
				return err
			}
			issued++
		}

		errLog := &domain.ErrorLog{DataValidationErrors: rejected, InviteCreationErrors: issueErrs}
		if err := batch.Complete(issued, len(issueErrs)+len(rejected), errLog, s.Invites.now()); err != nil {
			return err
		}
		return tx.Batches().UpdateBatch(ctx, *batch)
	})
	if err != nil {
		*batch = started
		return UploadResult{}, s.fail(ctx, batch, err, &domain.ErrorLog{DataValidationErrors: rejected})
	}

	telemetry.ImportBatchesTotal.WithLabelValues(string(batch.UserType), string(batch.Status)).Inc()
	telemetry.ImportRowsTotal.WithLabelValues("issued").Add(float64(issued))
	telemetry.ImportRowsTotal.WithLabelValues("invalid").Add(float64(len(rejected)))
	telemetry.ImportRowsTotal.WithLabelValues("issue_failed").Add(float64(len(issueErrs)))
	telemetry.InvitesIssuedTotal.WithLabelValues("import", string(batch.UserType)).Add(float64(issued))
	telemetry.ImportDuration.Observe(time.Since(begin).Seconds())

	log.Info("import batch completed",
		slog.Int("total_records", batch.TotalRecords),
		slog.Int("successful_records", batch.SuccessfulRecords),
		slog.Int("failed_records", batch.FailedRecords),
	)

	mailed := 0
	if s.Mail != nil {
		mailed = issued
		if issued > 0 {
			s.Mail.Kick()
		}
	}
	return UploadResult{
		Batch: *batch,
		Summary: UploadSummary{
			TotalRecords:         batch.TotalRecords,
			SuccessfulRecords:    batch.SuccessfulRecords,
			FailedRecords:        batch.FailedRecords,
			InvitationEmailsSent: mailed,
		},
		Errors: firstErrors(rejected),
	}, nil
}

// fail marks batch failed, recording cause next to whatever row errors are
// already known, and returns cause.
func (s *ImportService) fail(ctx context.Context, batch *domain.Batch, cause error, errLog *domain.ErrorLog) error {
	log := slogx.FromContext(ctx).With(slog.String("batch_id", batch.ID))

	if err := batch.Fail(cause.Error(), errLog, s.Invites.now()); err != nil {
		log.Error("cannot mark batch failed", slog.Any("error", err))
		return cause
	}
	if err := s.Store.Batches().UpdateBatch(ctx, *batch); err != nil {
		log.Error("failed to persist batch failure", slog.Any("error", err))
		return cause
	}
	telemetry.ImportBatchesTotal.WithLabelValues(string(batch.UserType), string(domain.BatchFailed)).Inc()
	log.Error("import batch failed", slog.Any("error", cause))
	return cause
}

// Status returns a batch with its mail delivery counts.
func (s *ImportService) Status(ctx context.Context, p httpx.Principal, batchID string) (BatchStatus, error) {
	batch, err := s.getBatch(ctx, p, batchID)
	if err != nil {
		return BatchStatus{}, err
	}
	stats, err := s.Store.MailJobs().MailStatsByBatch(ctx, batch.ID)
	if err != nil {
		return BatchStatus{}, err
	}
	batch.Source = nil
	return BatchStatus{Batch: batch, Mail: stats}, nil
}

// ListBatches returns recent batches of an institution, newest first.
func (s *ImportService) ListBatches(ctx context.Context, p httpx.Principal, institutionID string, limit int) ([]domain.Batch, error) {
	institutionID, err := scopeInstitution(p, institutionID)
	if err != nil {
		return nil, err
	}
	return s.Store.Batches().ListBatches(ctx, institutionID, limit)
}

func (s *ImportService) getBatch(ctx context.Context, p httpx.Principal, id string) (domain.Batch, error) {
	batch, err := s.Store.Batches().GetBatchByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Batch{}, ErrBatchNotFound
		}
		return domain.Batch{}, err
	}
	if !canAccess(p, batch.InstitutionID) {
		return domain.Batch{}, ErrForbidden
	}
	return batch, nil
}

func firstErrors(errs []domain.RowError) []domain.RowError {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}
