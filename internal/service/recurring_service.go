package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fakturo/internal/billing"
	"fakturo/internal/domain"
	"fakturo/internal/port"
)

// CreateTemplateInput is the DTO for creating a recurring template.
type CreateTemplateInput struct {
	OwnerID         uuid.UUID
	ClientID        *uuid.UUID
	BankAccountID   *uuid.UUID
	Name            string
	Currency        string
	Items           domain.LineItems
	DiscountPercent decimal.Decimal
	PaymentTerms    string
	Frequency       domain.Frequency
	StartOn         time.Time
	EndOn           *time.Time
	AutoSend        bool
}

// RecurringService governs recurring invoice templates: due checks, one-shot
// firing, and schedule advancement.
type RecurringService interface {
	Create(ctx context.Context, input *CreateTemplateInput) (*domain.RecurringTemplate, error)
	Update(ctx context.Context, ownerID, templateID uuid.UUID, input *CreateTemplateInput) (*domain.RecurringTemplate, error)
	GetByID(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.RecurringTemplate, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error)
	Deactivate(ctx context.Context, ownerID, templateID uuid.UUID) error
	CheckDue(ctx context.Context, ownerID, templateID uuid.UUID) (bool, error)
	Fire(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.Invoice, error)
	RunDue(ctx context.Context) int
}

type recurringService struct {
	templateRepo port.RecurringTemplateRepository
	invoiceRepo  port.InvoiceRepository
	clientRepo   port.ClientRepository
	accountRepo  port.BankAccountRepository
	profileRepo  port.ProfileRepository
	email        port.EmailSender
}

// NewRecurringService creates a new RecurringService implementation.
func NewRecurringService(
	templateRepo port.RecurringTemplateRepository,
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	accountRepo port.BankAccountRepository,
	profileRepo port.ProfileRepository,
	email port.EmailSender,
) RecurringService {
	return &recurringService{
		templateRepo: templateRepo,
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		accountRepo:  accountRepo,
		profileRepo:  profileRepo,
		email:        email,
	}
}

func (s *recurringService) Create(ctx context.Context, input *CreateTemplateInput) (*domain.RecurringTemplate, error) {
	if !domain.ValidFrequencies[input.Frequency] {
		return nil, domain.ErrInvalidFrequency
	}

	snapshot := billing.Calculate(input.Items, input.DiscountPercent)

	startOn := input.StartOn
	if startOn.IsZero() {
		startOn = today()
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "CHF"
	}

	tpl := &domain.RecurringTemplate{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		ClientID:        input.ClientID,
		BankAccountID:   input.BankAccountID,
		Name:            input.Name,
		Currency:        currency,
		Items:           input.Items,
		DiscountPercent: input.DiscountPercent,
		Subtotal:        snapshot.Subtotal,
		DiscountAmount:  snapshot.DiscountAmount,
		TaxAmount:       snapshot.TaxAmount,
		Total:           snapshot.GrandTotal,
		PaymentTerms:    input.PaymentTerms,
		Frequency:       input.Frequency,
		NextRunOn:       startOn,
		EndOn:           input.EndOn,
		IsActive:        true,
		AutoSend:        input.AutoSend,
	}

	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("creating recurring template: %w", err)
	}
	return tpl, nil
}

// Update replaces the template's invoice blueprint. Scheduling state
// (next-run, last-run, run-count, active flag) is left untouched; only the
// end date can be moved.
func (s *recurringService) Update(ctx context.Context, ownerID, templateID uuid.UUID, input *CreateTemplateInput) (*domain.RecurringTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}
	if input.Frequency != "" {
		if !domain.ValidFrequencies[input.Frequency] {
			return nil, domain.ErrInvalidFrequency
		}
		tpl.Frequency = input.Frequency
	}

	snapshot := billing.Calculate(input.Items, input.DiscountPercent)

	if c := strings.ToUpper(strings.TrimSpace(input.Currency)); c != "" {
		tpl.Currency = c
	}
	tpl.Name = input.Name
	tpl.Items = input.Items
	tpl.DiscountPercent = input.DiscountPercent
	tpl.Subtotal = snapshot.Subtotal
	tpl.DiscountAmount = snapshot.DiscountAmount
	tpl.TaxAmount = snapshot.TaxAmount
	tpl.Total = snapshot.GrandTotal
	tpl.PaymentTerms = input.PaymentTerms
	tpl.ClientID = input.ClientID
	tpl.BankAccountID = input.BankAccountID
	tpl.EndOn = input.EndOn
	tpl.AutoSend = input.AutoSend

	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("updating recurring template: %w", err)
	}
	return tpl, nil
}

func (s *recurringService) GetByID(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.templateRepo.GetByID(ctx, ownerID, templateID)
}

func (s *recurringService) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error) {
	return s.templateRepo.ListByOwner(ctx, ownerID, offset, limit)
}

// Deactivate switches a template off. The engine never deletes templates.
func (s *recurringService) Deactivate(ctx context.Context, ownerID, templateID uuid.UUID) error {
	return s.templateRepo.Deactivate(ctx, ownerID, templateID)
}

// CheckDue reports whether the template would fire right now. Side-effect free.
func (s *recurringService) CheckDue(ctx context.Context, ownerID, templateID uuid.UUID) (bool, error) {
	tpl, err := s.templateRepo.GetByID(ctx, ownerID, templateID)
	if err != nil {
		return false, err
	}
	return tpl.IsActive && !tpl.NextRunOn.After(today()), nil
}

// Fire generates one invoice from a due template and advances the schedule.
// The scheduling fields are only mutated after the invoice has been created,
// so a persistence failure leaves the template exactly as it was.
func (s *recurringService) Fire(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.Invoice, error) {
	tpl, err := s.templateRepo.GetByID(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, domain.ErrTemplateInactive
	}
	now := today()
	if tpl.NextRunOn.After(now) {
		return nil, domain.ErrTemplateNotDue
	}

	inv := &domain.Invoice{
		ID:              uuid.New(),
		OwnerID:         tpl.OwnerID,
		ClientID:        tpl.ClientID,
		BankAccountID:   tpl.BankAccountID,
		Number:          templateInvoiceNumber(tpl),
		Status:          domain.InvoiceStatusOpen,
		Currency:        tpl.Currency,
		Items:           tpl.Items,
		DiscountPercent: tpl.DiscountPercent,
		Subtotal:        tpl.Subtotal,
		DiscountAmount:  tpl.DiscountAmount,
		TaxAmount:       tpl.TaxAmount,
		Total:           tpl.Total,
		PaymentTerms:    tpl.PaymentTerms,
		IssuedOn:        now,
		DueOn:           now.AddDate(0, 0, billing.ParseTermsDays(tpl.PaymentTerms)),
	}

	code := assemblePaymentCode(ctx, inv, s.profileRepo, s.accountRepo, s.clientRepo)
	inv.PaymentCode = code.Payload
	inv.PaymentCodeKind = string(code.Kind)

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice from template %s: %w", tpl.ID, err)
	}

	tpl.LastRunOn = &now
	tpl.NextRunOn = tpl.Frequency.NextRun(now)
	tpl.RunCount++
	if tpl.EndOn != nil && tpl.NextRunOn.After(*tpl.EndOn) {
		tpl.IsActive = false
	}
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return inv, fmt.Errorf("advancing template %s: %w", tpl.ID, err)
	}

	s.maybeSend(ctx, tpl, inv)

	return inv, nil
}

// maybeSend requests delivery when the template is marked for automatic
// sending and the client has a contact address. Delivery failure never rolls
// back the created invoice or the advanced schedule.
func (s *recurringService) maybeSend(ctx context.Context, tpl *domain.RecurringTemplate, inv *domain.Invoice) {
	if !tpl.AutoSend || s.email == nil || tpl.ClientID == nil {
		return
	}
	client, err := s.clientRepo.GetByID(ctx, tpl.OwnerID, *tpl.ClientID)
	if err != nil || client.Email == "" {
		return
	}
	sendErr := s.email.SendInvoice(ctx, &port.InvoiceEmail{
		ToEmail:       client.Email,
		ToName:        client.Name,
		InvoiceNumber: inv.Number,
		Amount:        inv.Total.StringFixed(2),
		Currency:      inv.Currency,
		DueDate:       inv.DueOn.Format("02.01.2006"),
		PaymentCode:   inv.PaymentCode,
	})
	if sendErr != nil {
		log.Printf("recurringService.Fire: delivery for invoice %s failed: %v", inv.ID, sendErr)
	}
}

// RunDue fires every due template sequentially and returns the number of
// invoices created. Per-template failures are logged and skipped; the sweep
// never aborts.
func (s *recurringService) RunDue(ctx context.Context) int {
	due, err := s.templateRepo.ListDue(ctx, today())
	if err != nil {
		log.Printf("recurringService.RunDue: listing due templates: %v", err)
		return 0
	}

	fired := 0
	for i := range due {
		tpl := &due[i]
		if _, err := s.Fire(ctx, tpl.OwnerID, tpl.ID); err != nil {
			log.Printf("recurringService.RunDue: template %s: %v", tpl.ID, err)
			continue
		}
		fired++
	}
	return fired
}

func templateInvoiceNumber(tpl *domain.RecurringTemplate) string {
	short := strings.SplitN(tpl.ID.String(), "-", 2)[0]
	return fmt.Sprintf("REC-%s-%d", strings.ToUpper(short), tpl.RunCount+1)
}
