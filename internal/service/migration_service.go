package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fakturo/internal/billing"
	"fakturo/internal/domain"
	"fakturo/internal/port"
)

// MigrationService transfers locally-held guest drafts into an owner's
// durable store once they register.
type MigrationService interface {
	Migrate(ctx context.Context, ownerID uuid.UUID, drafts []domain.GuestDraft) (*domain.MigrationResult, error)
}

type migrationService struct {
	invoiceRepo port.InvoiceRepository
	clientRepo  port.ClientRepository
	accountRepo port.BankAccountRepository
	profileRepo port.ProfileRepository
}

// NewMigrationService creates a new MigrationService implementation.
func NewMigrationService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	accountRepo port.BankAccountRepository,
	profileRepo port.ProfileRepository,
) MigrationService {
	return &migrationService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
	}
}

// migrationRun holds the transient, run-scoped dedup mappings. Drafts are
// processed strictly sequentially: the maps are single-writer and exist only
// for the duration of one run.
type migrationRun struct {
	clientByKey  map[string]uuid.UUID
	accountByKey map[string]uuid.UUID
	defaultSet   bool
}

// Migrate processes the drafts in order and reports aggregate counts. A
// failure on one draft is logged and the run continues with the next; a
// partial migration is a reportable outcome, not an error. Note that invoices
// carry no dedup key, so re-running with uncleared drafts creates duplicate
// invoices even though client and account dedup holds.
func (s *migrationService) Migrate(ctx context.Context, ownerID uuid.UUID, drafts []domain.GuestDraft) (*domain.MigrationResult, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrMissingOwner
	}

	result := &domain.MigrationResult{}
	run := &migrationRun{
		clientByKey:  map[string]uuid.UUID{},
		accountByKey: map[string]uuid.UUID{},
	}

	s.prefillProfile(ctx, ownerID, drafts)

	for i := range drafts {
		draft := &drafts[i]
		if err := s.migrateDraft(ctx, ownerID, draft, run, result); err != nil {
			log.Printf("migrationService.Migrate: draft %d (%s) skipped: %v", i, draft.Number, err)
			result.Skipped++
		}
	}

	log.Printf("migrationService.Migrate: owner %s: %d invoices, %d clients, %d accounts, %d skipped",
		ownerID, result.Invoices, result.Clients, result.BankAccounts, result.Skipped)
	return result, nil
}

func (s *migrationService) migrateDraft(
	ctx context.Context,
	ownerID uuid.UUID,
	draft *domain.GuestDraft,
	run *migrationRun,
	result *domain.MigrationResult,
) error {
	clientID, err := s.resolveClient(ctx, ownerID, draft, run, result)
	if err != nil {
		return err
	}

	accountID, err := s.resolveAccount(ctx, ownerID, draft, run, result)
	if err != nil {
		return err
	}

	inv := &domain.Invoice{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		ClientID:        clientID,
		BankAccountID:   accountID,
		Number:          draft.Number,
		Status:          domain.InvoiceStatusOpen,
		Currency:        draft.Currency,
		Items:           draft.Items,
		DiscountPercent: draft.DiscountPercent,
		Subtotal:        draft.Subtotal,
		DiscountAmount:  draft.DiscountAmount,
		TaxAmount:       draft.TaxAmount,
		Total:           draft.Total,
		PaymentTerms:    billing.TermsFromSpan(draft.IssuedOn, draft.DueOn),
		IssuedOn:        draft.IssuedOn,
		DueOn:           draft.DueOn,
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}
	result.Invoices++
	return nil
}

// resolveClient create-or-reuses the draft's debtor as a durable client,
// first through the run map, then through the store's dedup key.
func (s *migrationService) resolveClient(
	ctx context.Context,
	ownerID uuid.UUID,
	draft *domain.GuestDraft,
	run *migrationRun,
	result *domain.MigrationResult,
) (*uuid.UUID, error) {
	if draft.Debtor.Name == "" && draft.Debtor.Street == "" && draft.Debtor.PostalCode == "" {
		return nil, nil
	}

	key := domain.ClientDedupKey(draft.Debtor.Name, draft.Debtor.Street, draft.Debtor.PostalCode)
	if id, ok := run.clientByKey[key]; ok {
		return &id, nil
	}

	if existing, err := s.clientRepo.GetByDedupKey(ctx, ownerID, key); err == nil {
		run.clientByKey[key] = existing.ID
		return &existing.ID, nil
	} else if !errors.Is(err, domain.ErrClientNotFound) {
		return nil, fmt.Errorf("looking up client: %w", err)
	}

	client := &domain.Client{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       draft.Debtor.Name,
		Street:     draft.Debtor.Street,
		PostalCode: draft.Debtor.PostalCode,
		City:       draft.Debtor.City,
		Email:      draft.DebtorEmail,
		DedupKey:   key,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	run.clientByKey[key] = client.ID
	result.Clients++
	return &client.ID, nil
}

// resolveAccount create-or-reuses the draft's payment identifier. The first
// account created in a run becomes the owner's default.
func (s *migrationService) resolveAccount(
	ctx context.Context,
	ownerID uuid.UUID,
	draft *domain.GuestDraft,
	run *migrationRun,
	result *domain.MigrationResult,
) (*uuid.UUID, error) {
	key := domain.NormalizeIBAN(draft.IBAN)
	if key == "" {
		return nil, nil
	}

	if id, ok := run.accountByKey[key]; ok {
		return &id, nil
	}

	if existing, err := s.accountRepo.GetByIBAN(ctx, ownerID, key); err == nil {
		run.accountByKey[key] = existing.ID
		return &existing.ID, nil
	} else if !errors.Is(err, domain.ErrBankAccountNotFound) {
		return nil, fmt.Errorf("looking up bank account: %w", err)
	}

	account := &domain.BankAccount{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Label:   draft.Creditor.Name,
		IBAN:    key,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("creating bank account: %w", err)
	}
	run.accountByKey[key] = account.ID
	result.BankAccounts++

	if !run.defaultSet {
		if err := s.accountRepo.SetDefault(ctx, ownerID, account.ID); err != nil {
			log.Printf("migrationService.resolveAccount: setting default account %s: %v", account.ID, err)
		}
		run.defaultSet = true
	}
	return &account.ID, nil
}

// prefillProfile seeds the owner profile from the first draft's creditor
// identity, but only when no profile exists yet. Failure is non-fatal.
func (s *migrationService) prefillProfile(ctx context.Context, ownerID uuid.UUID, drafts []domain.GuestDraft) {
	if len(drafts) == 0 {
		return
	}
	if _, err := s.profileRepo.Get(ctx, ownerID); !errors.Is(err, domain.ErrProfileNotFound) {
		return
	}
	creditor := drafts[0].Creditor
	if creditor.Name == "" {
		return
	}
	profile := &domain.Profile{
		OwnerID:    ownerID,
		Name:       creditor.Name,
		Street:     creditor.Street,
		PostalCode: creditor.PostalCode,
		City:       creditor.City,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		log.Printf("migrationService.prefillProfile: %v", err)
	}
}
