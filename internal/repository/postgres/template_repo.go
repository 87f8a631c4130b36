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

type templateRepo struct {
	db *sqlx.DB
}

// NewRecurringTemplateRepo creates a new PostgreSQL-backed RecurringTemplateRepository.
func NewRecurringTemplateRepo(db *sqlx.DB) port.RecurringTemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *domain.RecurringTemplate) error {
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_templates (
			id, owner_id, client_id, bank_account_id, name, currency,
			items, discount_percent, subtotal, discount_amount, tax_amount, total,
			payment_terms, frequency, next_run_on, last_run_on, end_on,
			is_active, auto_send, run_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22
		)`,
		tpl.ID, tpl.OwnerID, tpl.ClientID, tpl.BankAccountID, tpl.Name, tpl.Currency,
		tpl.Items, tpl.DiscountPercent, tpl.Subtotal, tpl.DiscountAmount, tpl.TaxAmount, tpl.Total,
		tpl.PaymentTerms, tpl.Frequency, tpl.NextRunOn, tpl.LastRunOn, tpl.EndOn,
		tpl.IsActive, tpl.AutoSend, tpl.RunCount, tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("templateRepo.Create: %w", err)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.RecurringTemplate, error) {
	var tpl domain.RecurringTemplate
	err := r.db.GetContext(ctx, &tpl,
		"SELECT * FROM recurring_templates WHERE id = $1 AND owner_id = $2", templateID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("templateRepo.GetByID: %w", err)
	}
	return &tpl, nil
}

func (r *templateRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM recurring_templates WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("templateRepo.ListByOwner count: %w", err)
	}

	var tpls []domain.RecurringTemplate
	err = r.db.SelectContext(ctx, &tpls,
		`SELECT * FROM recurring_templates WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("templateRepo.ListByOwner: %w", err)
	}
	return tpls, total, nil
}

func (r *templateRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringTemplate, error) {
	var tpls []domain.RecurringTemplate
	err := r.db.SelectContext(ctx, &tpls,
		`SELECT * FROM recurring_templates
		 WHERE is_active AND next_run_on <= $1
		 ORDER BY next_run_on, created_at`,
		asOf)
	if err != nil {
		return nil, fmt.Errorf("templateRepo.ListDue: %w", err)
	}
	return tpls, nil
}

func (r *templateRepo) Update(ctx context.Context, tpl *domain.RecurringTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET
			client_id = $1, bank_account_id = $2, name = $3, currency = $4,
			items = $5, discount_percent = $6, subtotal = $7, discount_amount = $8,
			tax_amount = $9, total = $10, payment_terms = $11, frequency = $12,
			next_run_on = $13, last_run_on = $14, end_on = $15,
			is_active = $16, auto_send = $17, run_count = $18, updated_at = $19
		 WHERE id = $20 AND owner_id = $21`,
		tpl.ClientID, tpl.BankAccountID, tpl.Name, tpl.Currency,
		tpl.Items, tpl.DiscountPercent, tpl.Subtotal, tpl.DiscountAmount,
		tpl.TaxAmount, tpl.Total, tpl.PaymentTerms, tpl.Frequency,
		tpl.NextRunOn, tpl.LastRunOn, tpl.EndOn,
		tpl.IsActive, tpl.AutoSend, tpl.RunCount, tpl.UpdatedAt,
		tpl.ID, tpl.OwnerID)
	if err != nil {
		return fmt.Errorf("templateRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepo) Deactivate(ctx context.Context, ownerID, templateID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE recurring_templates SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND owner_id = $3",
		time.Now().UTC(), templateID, ownerID)
	if err != nil {
		return fmt.Errorf("templateRepo.Deactivate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
