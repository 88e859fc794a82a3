package domain

import (
	"fmt"
	"time"
)

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// RowError is one spreadsheet row rejected by validation. RowNumber is the
// row as the admin sees it in the file (header is row 1).
type RowError struct {
	RowNumber int      `json:"row_number"`
	Email     string   `json:"email,omitempty"`
	Errors    []string `json:"errors"`
}

// IssueError is a validated row for which no invite could be issued.
type IssueError struct {
	RowNumber int    `json:"row_number"`
	Email     string `json:"email"`
	Error     string `json:"error"`
}

// ErrorLog is the serialised outcome kept on the batch.
type ErrorLog struct {
	DataValidationErrors []RowError   `json:"data_validation_errors"`
	InviteCreationErrors []IssueError `json:"invite_creation_errors"`
	Failure              string       `json:"failure,omitempty"`
}

func (l *ErrorLog) Empty() bool {
	return l == nil || (len(l.DataValidationErrors) == 0 && len(l.InviteCreationErrors) == 0 && l.Failure == "")
}

// Batch is the audit record of one bulk import. Counters only move through
// the transition methods below so that processed never exceeds total and a
// terminal batch always satisfies successful+failed == processed.
type Batch struct {
	ID                string
	InstitutionID     string
	UserType          UserType
	Filename          string
	TotalRecords      int
	ProcessedRecords  int
	SuccessfulRecords int
	FailedRecords     int
	Status            BatchStatus
	ErrorLog          *ErrorLog
	UploadedBy        string
	UploadedAt        time.Time
	ProcessedAt       *time.Time

	// Source is the uploaded file, kept so a batch can be retried.
	Source []byte
}

// Start moves pending to processing with the row count known.
func (b *Batch) Start(total int) error {
	if b.Status != BatchPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, BatchProcessing)
	}
	if total < 0 {
		return fmt.Errorf("%w: negative total", ErrInvalidTransition)
	}
	b.Status = BatchProcessing
	b.TotalRecords = total
	b.ProcessedRecords = 0
	b.SuccessfulRecords = 0
	b.FailedRecords = 0
	return nil
}

// Complete records the outcome: every row was either issued an invite or failed.
func (b *Batch) Complete(successful, failed int, log *ErrorLog, at time.Time) error {
	if b.Status != BatchProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, BatchCompleted)
	}
	if successful < 0 || failed < 0 || successful+failed != b.TotalRecords {
		return fmt.Errorf("%w: %d successful + %d failed != %d total",
			ErrInvalidTransition, successful, failed, b.TotalRecords)
	}
	b.Status = BatchCompleted
	b.SuccessfulRecords = successful
	b.FailedRecords = failed
	b.ProcessedRecords = b.TotalRecords
	if log.Empty() {
		log = nil
	}
	b.ErrorLog = log
	b.ProcessedAt = &at
	return nil
}

// Fail aborts the batch after a structural error. Nothing was issued, so
// every processed row counts as failed.
func (b *Batch) Fail(reason string, log *ErrorLog, at time.Time) error {
	if b.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, BatchFailed)
	}
	if log == nil {
		log = &ErrorLog{}
	}
	log.Failure = reason
	b.Status = BatchFailed
	b.SuccessfulRecords = 0
	b.ProcessedRecords = b.TotalRecords
	b.FailedRecords = b.TotalRecords
	b.ErrorLog = log
	b.ProcessedAt = &at
	return nil
}

// Reset returns a terminal batch to pending for a retry.
func (b *Batch) Reset() error {
	if !b.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, BatchPending)
	}
	b.Status = BatchPending
	b.ProcessedRecords = 0
	b.SuccessfulRecords = 0
	b.FailedRecords = 0
	b.ProcessedAt = nil
	b.ErrorLog = nil
	return nil
}
