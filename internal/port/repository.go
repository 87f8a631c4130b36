package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fakturo/internal/domain"
)

// ClientRepository defines the contract for counterparty persistence.
// All query methods include ownerID to enforce owner isolation at the data layer.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, ownerID, clientID uuid.UUID) (*domain.Client, error)
	GetByDedupKey(ctx context.Context, ownerID uuid.UUID, key string) (*domain.Client, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, ownerID, clientID uuid.UUID) error
}

// BankAccountRepository defines the contract for payment identifier persistence.
type BankAccountRepository interface {
	Create(ctx context.Context, account *domain.BankAccount) error
	GetByID(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.BankAccount, error)
	GetByIBAN(ctx context.Context, ownerID uuid.UUID, normalizedIBAN string) (*domain.BankAccount, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.BankAccount, error)
	// SetDefault marks one account as the owner's default, clearing any
	// previous default for the same owner first.
	SetDefault(ctx context.Context, ownerID, accountID uuid.UUID) error
	Delete(ctx context.Context, ownerID, accountID uuid.UUID) error
}

// InvoiceRepository defines the contract for invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, ownerID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error
}

// RecurringTemplateRepository defines the contract for recurring template persistence.
type RecurringTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.RecurringTemplate) error
	GetByID(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.RecurringTemplate, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error)
	// ListDue returns every active template across owners with next_run_on <= asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringTemplate, error)
	Update(ctx context.Context, tpl *domain.RecurringTemplate) error
	Deactivate(ctx context.Context, ownerID, templateID uuid.UUID) error
}

// ProfileRepository defines the contract for owner profile persistence.
type ProfileRepository interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, profile *domain.Profile) error
}
