package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

type mailJobsRepo struct {
	db dbtx
}

const mailJobColumns = `id, batch_id, invite_id, recipient, subject, body, status, attempts,
	last_error, created_at, sent_at`

func (r *mailJobsRepo) CreateMailJob(ctx context.Context, j domain.MailJob) error {
	createdAt := j.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	status := j.Status
	if status == "" {
		status = domain.MailPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mail_jobs (`+mailJobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, mapStringNull(j.BatchID), mapStringNull(j.InviteID), j.Recipient, j.Subject, j.Body,
		string(status), j.Attempts, mapStringNull(j.LastError), formatTime(createdAt),
		mapOptionalTime(j.SentAt),
	)
	return mapConstraint(err)
}

func (r *mailJobsRepo) GetMailJobByID(ctx context.Context, id string) (domain.MailJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mailJobColumns+` FROM mail_jobs WHERE id = ?`, id)
	j, err := scanMailJob(row)
	return j, mapNotFound(err)
}

func (r *mailJobsRepo) ListPendingMailJobs(ctx context.Context, limit int) ([]domain.MailJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mailJobColumns+` FROM mail_jobs
		WHERE status = 'pending'
		ORDER BY attempts, created_at, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MailJob
	for rows.Next() {
		j, err := scanMailJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *mailJobsRepo) MarkMailJobSent(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE mail_jobs
		SET status = 'sent', body = '', attempts = attempts + 1, last_error = NULL, sent_at = ?
		WHERE id = ? AND status = 'pending'`,
		formatTime(at), id,
	))
}

func (r *mailJobsRepo) RecordMailJobFailure(ctx context.Context, id, lastErr string, maxAttempts int) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE mail_jobs
		SET attempts = attempts + 1,
		    last_error = ?,
		    status = CASE WHEN attempts + 1 >= ? THEN 'failed' ELSE 'pending' END
		WHERE id = ? AND status = 'pending'`,
		lastErr, maxAttempts, id,
	))
}

func (r *mailJobsRepo) MailStatsByBatch(ctx context.Context, batchID string) (domain.MailStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM mail_jobs WHERE batch_id = ? GROUP BY status`, batchID)
	if err != nil {
		return domain.MailStats{}, err
	}
	defer rows.Close()

	var stats domain.MailStats
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return domain.MailStats{}, err
		}
		switch domain.MailStatus(status) {
		case domain.MailPending:
			stats.Queued = n
		case domain.MailSent:
			stats.Sent = n
		case domain.MailFailed:
			stats.Failed = n
		}
	}
	return stats, rows.Err()
}

func (r *mailJobsRepo) PruneMailJobs(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM mail_jobs WHERE status = 'sent' AND sent_at < ?`, formatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMailJob(s scanner) (domain.MailJob, error) {
	var (
		j                 domain.MailJob
		batchID, inviteID sql.NullString
		status            string
		lastError, sentAt sql.NullString
		createdAt         string
	)
	err := s.Scan(
		&j.ID, &batchID, &inviteID, &j.Recipient, &j.Subject, &j.Body, &status, &j.Attempts,
		&lastError, &createdAt, &sentAt,
	)
	if err != nil {
		return domain.MailJob{}, err
	}
	j.BatchID = mapNullString(batchID)
	j.InviteID = mapNullString(inviteID)
	j.Status = domain.MailStatus(status)
	j.LastError = mapNullString(lastError)
	j.CreatedAt = parseTime(createdAt)
	j.SentAt = mapNullTimePtr(sentAt)
	return j, nil
}
