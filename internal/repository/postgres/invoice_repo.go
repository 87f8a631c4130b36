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

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (
			id, owner_id, client_id, bank_account_id, number, status, currency,
			items, discount_percent, subtotal, discount_amount, tax_amount, total,
			payment_terms, issued_on, due_on, payment_code, payment_code_kind,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20
		)`,
		invoice.ID, invoice.OwnerID, invoice.ClientID, invoice.BankAccountID,
		invoice.Number, invoice.Status, invoice.Currency,
		invoice.Items, invoice.DiscountPercent, invoice.Subtotal,
		invoice.DiscountAmount, invoice.TaxAmount, invoice.Total,
		invoice.PaymentTerms, invoice.IssuedOn, invoice.DueOn,
		invoice.PaymentCode, invoice.PaymentCodeKind,
		invoice.CreatedAt, invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, ownerID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE id = $1 AND owner_id = $2", invoiceID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByOwner count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices WHERE owner_id = $1
		 ORDER BY issued_on DESC, created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByOwner: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			client_id = $1, bank_account_id = $2, number = $3, status = $4,
			currency = $5, items = $6, discount_percent = $7, subtotal = $8,
			discount_amount = $9, tax_amount = $10, total = $11,
			payment_terms = $12, issued_on = $13, due_on = $14,
			payment_code = $15, payment_code_kind = $16, updated_at = $17
		 WHERE id = $18 AND owner_id = $19`,
		invoice.ClientID, invoice.BankAccountID, invoice.Number, invoice.Status,
		invoice.Currency, invoice.Items, invoice.DiscountPercent, invoice.Subtotal,
		invoice.DiscountAmount, invoice.TaxAmount, invoice.Total,
		invoice.PaymentTerms, invoice.IssuedOn, invoice.DueOn,
		invoice.PaymentCode, invoice.PaymentCodeKind, invoice.UpdatedAt,
		invoice.ID, invoice.OwnerID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND owner_id = $2", invoiceID, ownerID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
