package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	data, err := domain.EncodeProfile(p.Data)
	if err != nil {
		return err
	}
	id := p.Data.Identity()
	var gradYear *int
	if id.GraduationYear != 0 {
		gradYear = &id.GraduationYear
	}

	now := formatTime(time.Now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, institution_id, user_type, first_name, last_name,
		                      department, graduation_year, identifier, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, mapStringNull(p.InstitutionID), string(p.Data.UserType()),
		id.FirstName, id.LastName, id.Department, mapOptionalInt(gradYear),
		mapStringNull(id.Identifier), string(data), now, now,
	)
	return mapConstraint(err)
}

func (r *profilesRepo) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var (
		p                    domain.Profile
		institutionID        sql.NullString
		data                 string
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, institution_id, data, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &institutionID, &data, &createdAt, &updatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}

	p.Data, err = domain.DecodeProfile([]byte(data))
	if err != nil {
		return domain.Profile{}, err
	}
	p.InstitutionID = mapNullString(institutionID)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, p domain.Profile) error {
	data, err := domain.EncodeProfile(p.Data)
	if err != nil {
		return err
	}
	id := p.Data.Identity()

	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE profiles
		SET first_name = ?, last_name = ?, department = ?, data = ?, updated_at = ?
		WHERE user_id = ?`,
		id.FirstName, id.LastName, id.Department, string(data), formatTime(time.Now()), p.UserID,
	))
}
