package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fakturo/internal/billing"
	"fakturo/internal/domain"
	"fakturo/internal/payment"
	"fakturo/internal/port"
)

// CreateInvoiceInput is the DTO for creating an invoice.
type CreateInvoiceInput struct {
	OwnerID         uuid.UUID
	ClientID        *uuid.UUID
	BankAccountID   *uuid.UUID
	Number          string
	Currency        string
	Items           domain.LineItems
	DiscountPercent decimal.Decimal
	PaymentTerms    string
	IssuedOn        time.Time
}

// InvoiceService defines the invoice management contract.
type InvoiceService interface {
	Preview(items domain.LineItems, discountPercent decimal.Decimal) domain.Snapshot
	Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, ownerID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	clientRepo  port.ClientRepository
	accountRepo port.BankAccountRepository
	profileRepo port.ProfileRepository
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	accountRepo port.BankAccountRepository,
	profileRepo port.ProfileRepository,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
	}
}

// Preview computes totals for an item list without persisting anything.
func (s *invoiceService) Preview(items domain.LineItems, discountPercent decimal.Decimal) domain.Snapshot {
	return billing.Calculate(items, discountPercent)
}

func (s *invoiceService) Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error) {
	snapshot := billing.Calculate(input.Items, input.DiscountPercent)

	issuedOn := input.IssuedOn
	if issuedOn.IsZero() {
		issuedOn = today()
	}
	dueOn := issuedOn.AddDate(0, 0, billing.ParseTermsDays(input.PaymentTerms))

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "CHF"
	}

	inv := &domain.Invoice{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		ClientID:        input.ClientID,
		BankAccountID:   input.BankAccountID,
		Number:          input.Number,
		Status:          domain.InvoiceStatusOpen,
		Currency:        currency,
		Items:           input.Items,
		DiscountPercent: input.DiscountPercent,
		Subtotal:        snapshot.Subtotal,
		DiscountAmount:  snapshot.DiscountAmount,
		TaxAmount:       snapshot.TaxAmount,
		Total:           snapshot.GrandTotal,
		PaymentTerms:    input.PaymentTerms,
		IssuedOn:        issuedOn,
		DueOn:           dueOn,
	}

	code := assemblePaymentCode(ctx, inv, s.profileRepo, s.accountRepo, s.clientRepo)
	inv.PaymentCode = code.Payload
	inv.PaymentCodeKind = string(code.Kind)

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}
	return inv, nil
}

// assemblePaymentCode builds the cached payment code for an invoice from the
// owner profile and linked bank account. Missing collaborators degrade to the
// fallback payload instead of failing the invoice.
func assemblePaymentCode(
	ctx context.Context,
	inv *domain.Invoice,
	profiles port.ProfileRepository,
	accounts port.BankAccountRepository,
	clients port.ClientRepository,
) payment.Code {
	in := payment.CodeInput{
		Currency:      inv.Currency,
		Amount:        inv.Total,
		InvoiceNumber: inv.Number,
		Message:       inv.Number,
		DueOn:         &inv.DueOn,
	}

	if profile, err := profiles.Get(ctx, inv.OwnerID); err == nil {
		in.Creditor = payment.Party{
			Name:       profile.Name,
			Street:     profile.Street,
			PostalCode: profile.PostalCode,
			City:       profile.City,
		}
	}
	if inv.BankAccountID != nil {
		if account, err := accounts.GetByID(ctx, inv.OwnerID, *inv.BankAccountID); err == nil {
			in.IBAN = account.IBAN
		}
	}
	if inv.ClientID != nil {
		if client, err := clients.GetByID(ctx, inv.OwnerID, *inv.ClientID); err == nil {
			in.Debtor = &payment.Party{
				Name:       client.Name,
				Street:     client.Street,
				PostalCode: client.PostalCode,
				City:       client.City,
			}
		}
	}

	return payment.BuildCode(in)
}

func (s *invoiceService) GetByID(ctx context.Context, ownerID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, ownerID, invoiceID)
}

func (s *invoiceService) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *invoiceService) Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	return s.invoiceRepo.Delete(ctx, ownerID, invoiceID)
}

// today returns the current UTC date truncated to midnight. Scheduling and
// due-date math work on whole days.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
