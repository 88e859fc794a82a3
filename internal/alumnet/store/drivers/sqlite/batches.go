package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

type batchesRepo struct {
	db dbtx
}

const batchColumns = `id, institution_id, user_type, filename, total_records, processed_records,
	successful_records, failed_records, status, error_log, uploaded_by, uploaded_at, processed_at, source`

func (r *batchesRepo) CreateBatch(ctx context.Context, b domain.Batch) error {
	errorLog, err := encodeErrorLog(b.ErrorLog)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO data_upload_batches (`+batchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.InstitutionID, string(b.UserType), b.Filename,
		b.TotalRecords, b.ProcessedRecords, b.SuccessfulRecords, b.FailedRecords,
		string(b.Status), errorLog, mapStringNull(b.UploadedBy), formatTime(b.UploadedAt),
		mapOptionalTime(b.ProcessedAt), b.Source,
	)
	return mapConstraint(err)
}

func (r *batchesRepo) GetBatchByID(ctx context.Context, id string) (domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM data_upload_batches WHERE id = ?`, id)
	b, err := scanBatch(row)
	return b, mapNotFound(err)
}

func (r *batchesRepo) UpdateBatch(ctx context.Context, b domain.Batch) error {
	errorLog, err := encodeErrorLog(b.ErrorLog)
	if err != nil {
		return err
	}
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE data_upload_batches
		SET status = ?, total_records = ?, processed_records = ?, successful_records = ?,
		    failed_records = ?, error_log = ?, processed_at = ?
		WHERE id = ?`,
		string(b.Status), b.TotalRecords, b.ProcessedRecords, b.SuccessfulRecords,
		b.FailedRecords, errorLog, mapOptionalTime(b.ProcessedAt), b.ID,
	))
}

func (r *batchesRepo) ListBatches(ctx context.Context, institutionID string, limit int) ([]domain.Batch, error) {
	// The source file is not needed for listings.
	query := `SELECT ` + batchColumns + ` FROM data_upload_batches`
	var args []any
	if institutionID != "" {
		query += ` WHERE institution_id = ?`
		args = append(args, institutionID)
	}
	query += ` ORDER BY uploaded_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		b.Source = nil
		out = append(out, b)
	}
	return out, rows.Err()
}

func encodeErrorLog(l *domain.ErrorLog) (sql.NullString, error) {
	if l.Empty() {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func scanBatch(s scanner) (domain.Batch, error) {
	var (
		b                    domain.Batch
		userType, status     string
		errorLog, uploadedBy sql.NullString
		uploadedAt           string
		processedAt          sql.NullString
	)
	err := s.Scan(
		&b.ID, &b.InstitutionID, &userType, &b.Filename, &b.TotalRecords, &b.ProcessedRecords,
		&b.SuccessfulRecords, &b.FailedRecords, &status, &errorLog, &uploadedBy, &uploadedAt,
		&processedAt, &b.Source,
	)
	if err != nil {
		return domain.Batch{}, err
	}

	if errorLog.Valid && errorLog.String != "" {
		b.ErrorLog = &domain.ErrorLog{}
		if err := json.Unmarshal([]byte(errorLog.String), b.ErrorLog); err != nil {
			return domain.Batch{}, err
		}
	}
	b.UserType = domain.UserType(userType)
	b.Status = domain.BatchStatus(status)
	b.UploadedBy = mapNullString(uploadedBy)
	b.UploadedAt = parseTime(uploadedAt)
	b.ProcessedAt = mapNullTimePtr(processedAt)
	return b, nil
}
