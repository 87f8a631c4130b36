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

type bankAccountRepo struct {
	db *sqlx.DB
}

// NewBankAccountRepo creates a new PostgreSQL-backed BankAccountRepository.
func NewBankAccountRepo(db *sqlx.DB) port.BankAccountRepository {
	return &bankAccountRepo{db: db}
}

func (r *bankAccountRepo) Create(ctx context.Context, account *domain.BankAccount) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.IBAN = domain.NormalizeIBAN(account.IBAN)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bank_accounts (id, owner_id, label, iban, is_default, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.OwnerID, account.Label, account.IBAN,
		account.IsDefault, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.Create: %w", err)
	}
	return nil
}

func (r *bankAccountRepo) GetByID(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := r.db.GetContext(ctx, &account,
		"SELECT * FROM bank_accounts WHERE id = $1 AND owner_id = $2", accountID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("bankAccountRepo.GetByID: %w", err)
	}
	return &account, nil
}

func (r *bankAccountRepo) GetByIBAN(ctx context.Context, ownerID uuid.UUID, normalizedIBAN string) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := r.db.GetContext(ctx, &account,
		"SELECT * FROM bank_accounts WHERE owner_id = $1 AND iban = $2 ORDER BY created_at LIMIT 1",
		ownerID, normalizedIBAN)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("bankAccountRepo.GetByIBAN: %w", err)
	}
	return &account, nil
}

func (r *bankAccountRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.BankAccount, error) {
	var accounts []domain.BankAccount
	err := r.db.SelectContext(ctx, &accounts,
		"SELECT * FROM bank_accounts WHERE owner_id = $1 ORDER BY created_at", ownerID)
	if err != nil {
		return nil, fmt.Errorf("bankAccountRepo.ListByOwner: %w", err)
	}
	return accounts, nil
}

// SetDefault clears any previous default for the owner and marks the given
// account, inside one transaction.
func (r *bankAccountRepo) SetDefault(ctx context.Context, ownerID, accountID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.SetDefault begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE bank_accounts SET is_default = FALSE, updated_at = $1 WHERE owner_id = $2 AND is_default",
		now, ownerID); err != nil {
		return fmt.Errorf("bankAccountRepo.SetDefault clear: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE bank_accounts SET is_default = TRUE, updated_at = $1 WHERE id = $2 AND owner_id = $3",
		now, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.SetDefault set: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBankAccountNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bankAccountRepo.SetDefault commit: %w", err)
	}
	return nil
}

func (r *bankAccountRepo) Delete(ctx context.Context, ownerID, accountID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM bank_accounts WHERE id = $1 AND owner_id = $2", accountID, ownerID)
	if err != nil {
		return fmt.Errorf("bankAccountRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBankAccountNotFound
	}
	return nil
}
