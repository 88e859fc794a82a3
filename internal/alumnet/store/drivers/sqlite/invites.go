package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, token_hash, institution_id, email, user_type, graduation_year, identifier,
	department, profile, used, expired, expires_at, created_at, used_at, created_by, used_by,
	batch_id, ip_address, user_agent`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	profile, err := domain.EncodeProfile(inv.Profile)
	if err != nil {
		return err
	}
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO invites (id, token_hash, institution_id, email, user_type, graduation_year,
		                     identifier, department, profile, expires_at, created_at, created_by, batch_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.InstitutionID, inv.Email, string(inv.UserType),
		mapOptionalInt(inv.GraduationYear), mapStringNull(inv.Identifier), mapStringNull(inv.Department),
		mapStringNull(string(profile)), formatTime(inv.ExpiresAt), formatTime(createdAt),
		mapStringNull(inv.CreatedBy), mapStringNull(inv.BatchID),
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id)
	inv, err := scanInvite(row)
	return inv, mapNotFound(err)
}

func (r *invitesRepo) GetActiveInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+inviteColumns+` FROM invites
		WHERE token_hash = ? AND used = 0 AND expired = 0`, hash)
	inv, err := scanInvite(row)
	return inv, mapNotFound(err)
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token_hash = ?`, hash)
	inv, err := scanInvite(row)
	return inv, mapNotFound(err)
}

func (r *invitesRepo) HasActiveInviteForEmail(ctx context.Context, email string, now time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invites
		WHERE email = ? AND used = 0 AND expired = 0 AND expires_at > ?`,
		email, formatTime(now),
	).Scan(&n)
	return n > 0, err
}

func (r *invitesRepo) CountActiveInvitesByInstitution(ctx context.Context, institutionID string, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invites
		WHERE institution_id = ? AND used = 0 AND expired = 0 AND expires_at > ?`,
		institutionID, formatTime(now),
	).Scan(&n)
	return n, err
}

func (r *invitesRepo) ListInvites(ctx context.Context, f store.InviteFilter) ([]domain.Invite, error) {
	var (
		where []string
		args  []any
	)
	if f.InstitutionID != "" {
		where = append(where, "institution_id = ?")
		args = append(args, f.InstitutionID)
	}
	if f.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, f.BatchID)
	}

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	switch f.State {
	case domain.InviteActive:
		where = append(where, "used = 0 AND expired = 0 AND expires_at > ?")
		args = append(args, formatTime(now))
	case domain.InviteUsed:
		where = append(where, "used = 1")
	case domain.InviteExpired:
		where = append(where, "used = 0 AND (expired = 1 OR expires_at <= ?)")
		args = append(args, formatTime(now))
	}

	query := `SELECT ` + inviteColumns + ` FROM invites`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitesRepo) MarkInviteExpired(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE invites SET expired = 1 WHERE id = ? AND used = 0`, id,
	))
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, id string, audit domain.ConsumeAudit) error {
	at := formatTime(audit.At)
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE invites
		SET used = 1, used_at = ?, used_by = ?, ip_address = ?, user_agent = ?
		WHERE id = ? AND used = 0 AND expired = 0 AND expires_at > ?`,
		at, mapStringNull(audit.UserID), mapStringNull(audit.IPAddress), mapStringNull(audit.UserAgent),
		id, at,
	))
}

func (r *invitesRepo) ExpireStaleInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invites SET expired = 1 WHERE used = 0 AND expired = 0 AND expires_at <= ?`,
		formatTime(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanInvite(s scanner) (domain.Invite, error) {
	var (
		inv                                domain.Invite
		userType                           string
		gradYear                           sql.NullInt64
		identifier, department, profile    sql.NullString
		expiresAt, createdAt               string
		usedAt, createdBy, usedBy, batchID sql.NullString
		ipAddress, userAgent               sql.NullString
	)
	err := s.Scan(
		&inv.ID, &inv.TokenHash, &inv.InstitutionID, &inv.Email, &userType, &gradYear, &identifier,
		&department, &profile, &inv.Used, &inv.Expired, &expiresAt, &createdAt, &usedAt, &createdBy,
		&usedBy, &batchID, &ipAddress, &userAgent,
	)
	if err != nil {
		return domain.Invite{}, err
	}

	inv.Profile, err = domain.DecodeProfile([]byte(mapNullString(profile)))
	if err != nil {
		return domain.Invite{}, err
	}
	inv.UserType = domain.UserType(userType)
	inv.GraduationYear = mapNullIntPtr(gradYear)
	inv.Identifier = mapNullString(identifier)
	inv.Department = mapNullString(department)
	inv.ExpiresAt = parseTime(expiresAt)
	inv.CreatedAt = parseTime(createdAt)
	inv.UsedAt = mapNullTimePtr(usedAt)
	inv.CreatedBy = mapNullString(createdBy)
	inv.UsedBy = mapNullString(usedBy)
	inv.BatchID = mapNullString(batchID)
	inv.IPAddress = mapNullString(ipAddress)
	inv.UserAgent = mapNullString(userAgent)
	return inv, nil
}
