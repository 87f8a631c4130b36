package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fakturo/internal/domain"
	"fakturo/internal/port"
)

type profileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo creates a new PostgreSQL-backed ProfileRepository.
func NewProfileRepo(db *sqlx.DB) port.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.GetContext(ctx, &profile,
		"SELECT * FROM profiles WHERE owner_id = $1", ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("profileRepo.Get: %w", err)
	}
	return &profile, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (owner_id, name, street, postal_code, city, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.OwnerID, profile.Name, profile.Street, profile.PostalCode,
		profile.City, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("profileRepo.Create: %w", err)
	}
	return nil
}

func (r *profileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET name = $1, street = $2, postal_code = $3, city = $4, updated_at = $5
		 WHERE owner_id = $6`,
		profile.Name, profile.Street, profile.PostalCode, profile.City,
		profile.UpdatedAt, profile.OwnerID)
	if err != nil {
		return fmt.Errorf("profileRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
