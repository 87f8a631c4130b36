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

type clientRepo struct {
	db *sqlx.DB
}

// NewClientRepo creates a new PostgreSQL-backed ClientRepository.
func NewClientRepo(db *sqlx.DB) port.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if client.DedupKey == "" {
		client.DedupKey = domain.ClientDedupKey(client.Name, client.Street, client.PostalCode)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, owner_id, name, street, postal_code, city, email, dedup_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		client.ID, client.OwnerID, client.Name, client.Street, client.PostalCode,
		client.City, client.Email, client.DedupKey, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, ownerID, clientID uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE id = $1 AND owner_id = $2", clientID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	return &client, nil
}

func (r *clientRepo) GetByDedupKey(ctx context.Context, ownerID uuid.UUID, key string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client,
		"SELECT * FROM clients WHERE owner_id = $1 AND dedup_key = $2 ORDER BY created_at LIMIT 1",
		ownerID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByDedupKey: %w", err)
	}
	return &client, nil
}

func (r *clientRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Client, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM clients WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.ListByOwner count: %w", err)
	}

	var clients []domain.Client
	err = r.db.SelectContext(ctx, &clients,
		`SELECT * FROM clients WHERE owner_id = $1
		 ORDER BY name, created_at LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("clientRepo.ListByOwner: %w", err)
	}
	return clients, total, nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	client.UpdatedAt = time.Now().UTC()
	client.DedupKey = domain.ClientDedupKey(client.Name, client.Street, client.PostalCode)
	result, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = $1, street = $2, postal_code = $3, city = $4,
			email = $5, dedup_key = $6, updated_at = $7
		 WHERE id = $8 AND owner_id = $9`,
		client.Name, client.Street, client.PostalCode, client.City,
		client.Email, client.DedupKey, client.UpdatedAt,
		client.ID, client.OwnerID)
	if err != nil {
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, ownerID, clientID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM clients WHERE id = $1 AND owner_id = $2", clientID, ownerID)
	if err != nil {
		return fmt.Errorf("clientRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
