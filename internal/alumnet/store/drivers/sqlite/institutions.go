package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

type institutionsRepo struct {
	db dbtx
}

const institutionColumns = `id, name, code, email_domain, address, phone, website, admin_email,
	is_active, max_users, created_at, updated_at`

func (r *institutionsRepo) CreateInstitution(ctx context.Context, inst domain.Institution) error {
	now := formatTime(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO institutions (`+institutionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID, inst.Name, inst.Code,
		mapStringNull(inst.EmailDomain), mapStringNull(inst.Address), mapStringNull(inst.Phone),
		mapStringNull(inst.Website), mapStringNull(inst.AdminEmail),
		boolToInt(inst.IsActive), inst.MaxUsers, now, now,
	)
	return mapConstraint(err)
}

func (r *institutionsRepo) GetInstitutionByID(ctx context.Context, id string) (domain.Institution, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+institutionColumns+` FROM institutions WHERE id = ?`, id)
	inst, err := scanInstitution(row)
	return inst, mapNotFound(err)
}

func (r *institutionsRepo) GetInstitutionByCode(ctx context.Context, code string) (domain.Institution, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+institutionColumns+` FROM institutions WHERE code = ?`, code)
	inst, err := scanInstitution(row)
	return inst, mapNotFound(err)
}

func (r *institutionsRepo) ListInstitutions(ctx context.Context) ([]domain.Institution, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+institutionColumns+` FROM institutions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (r *institutionsRepo) UpdateInstitution(ctx context.Context, inst domain.Institution) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE institutions
		SET name = ?, email_domain = ?, address = ?, phone = ?, website = ?,
		    admin_email = ?, max_users = ?, updated_at = ?
		WHERE id = ?`,
		inst.Name, mapStringNull(inst.EmailDomain), mapStringNull(inst.Address),
		mapStringNull(inst.Phone), mapStringNull(inst.Website), mapStringNull(inst.AdminEmail),
		inst.MaxUsers, formatTime(time.Now()), inst.ID,
	))
}

func (r *institutionsRepo) SetInstitutionActive(ctx context.Context, id string, active bool) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE institutions SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), formatTime(time.Now()), id,
	))
}

func scanInstitution(s scanner) (domain.Institution, error) {
	var (
		inst                                        domain.Institution
		emailDomain, address, phone, website, admin sql.NullString
		createdAt, updatedAt                        string
	)
	err := s.Scan(
		&inst.ID, &inst.Name, &inst.Code, &emailDomain, &address, &phone, &website, &admin,
		&inst.IsActive, &inst.MaxUsers, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Institution{}, err
	}
	inst.EmailDomain = mapNullString(emailDomain)
	inst.Address = mapNullString(address)
	inst.Phone = mapNullString(phone)
	inst.Website = mapNullString(website)
	inst.AdminEmail = mapNullString(admin)
	inst.CreatedAt = parseTime(createdAt)
	inst.UpdatedAt = parseTime(updatedAt)
	return inst, nil
}
