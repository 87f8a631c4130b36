package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fakturo/internal/domain"
	"fakturo/internal/service"
	"fakturo/mocks"
)

type migrationFixture struct {
	invoiceRepo *mocks.MockInvoiceRepo
	clientRepo  *mocks.MockClientRepo
	accountRepo *mocks.MockBankAccountRepo
	profileRepo *mocks.MockProfileRepo
	svc         service.MigrationService
}

func newMigrationFixture() *migrationFixture {
	f := &migrationFixture{
		invoiceRepo: new(mocks.MockInvoiceRepo),
		clientRepo:  new(mocks.MockClientRepo),
		accountRepo: new(mocks.MockBankAccountRepo),
		profileRepo: new(mocks.MockProfileRepo),
	}
	f.svc = service.NewMigrationService(f.invoiceRepo, f.clientRepo, f.accountRepo, f.profileRepo)
	return f
}

func guestDraft(number string) domain.GuestDraft {
	issued := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.GuestDraft{
		Number:   number,
		Currency: "CHF",
		Creditor: domain.Identity{Name: "Freelancer GmbH", Street: "Seestrasse 9", PostalCode: "8810", City: "Horgen"},
		Debtor:   domain.Identity{Name: "Muster AG", Street: "Bahnhofstrasse 1", PostalCode: "8001", City: "Zürich"},
		IBAN:     "CH93 0076 2011 6238 5295 7",
		Items:    domain.LineItems{{Description: "Work", Quantity: "1", UnitPrice: "100"}},
		Subtotal: decimal.RequireFromString("100"),
		Total:    decimal.RequireFromString("100"),
		IssuedOn: issued,
		DueOn:    issued.AddDate(0, 0, 30),
	}
}

func TestMigrationService_Migrate_DedupsWithinRun(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	drafts := []domain.GuestDraft{guestDraft("G-1"), guestDraft("G-2")}

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(nil, domain.ErrProfileNotFound)
	f.profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

	// Both drafts share one debtor and one IBAN: one store lookup, one create each
	f.clientRepo.On("GetByDedupKey", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrClientNotFound).Once()
	f.clientRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Client")).Return(nil).Once()
	f.accountRepo.On("GetByIBAN", mock.Anything, ownerID, "CH9300762011623852957").
		Return(nil, domain.ErrBankAccountNotFound).Once()
	f.accountRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BankAccount")).Return(nil).Once()
	f.accountRepo.On("SetDefault", mock.Anything, ownerID, mock.AnythingOfType("uuid.UUID")).Return(nil).Once()
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil).Times(2)

	result, err := f.svc.Migrate(context.Background(), ownerID, drafts)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Invoices)
	assert.Equal(t, 1, result.Clients)
	assert.Equal(t, 1, result.BankAccounts)
	assert.Equal(t, 0, result.Skipped)
	f.clientRepo.AssertExpectations(t)
	f.accountRepo.AssertExpectations(t)
	f.profileRepo.AssertExpectations(t)
}

func TestMigrationService_Migrate_SecondRunReusesCounterparties(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	drafts := []domain.GuestDraft{guestDraft("G-1")}

	existingClient := &domain.Client{ID: uuid.New(), OwnerID: ownerID, Name: "Muster AG"}
	existingAccount := &domain.BankAccount{ID: uuid.New(), OwnerID: ownerID, IBAN: "CH9300762011623852957"}

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(&domain.Profile{OwnerID: ownerID, Name: "Freelancer GmbH"}, nil)
	f.clientRepo.On("GetByDedupKey", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(existingClient, nil)
	f.accountRepo.On("GetByIBAN", mock.Anything, ownerID, "CH9300762011623852957").
		Return(existingAccount, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	result, err := f.svc.Migrate(context.Background(), ownerID, drafts)

	require.NoError(t, err)
	// Counterparties are reused, but the invoice itself has no dedup key and
	// is created again on a re-run.
	assert.Equal(t, 1, result.Invoices)
	assert.Equal(t, 0, result.Clients)
	assert.Equal(t, 0, result.BankAccounts)
	f.clientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.accountRepo.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestMigrationService_Migrate_LinksExistingClientToInvoice(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	drafts := []domain.GuestDraft{guestDraft("G-1")}

	existingClient := &domain.Client{ID: uuid.New(), OwnerID: ownerID, Name: "Muster AG"}
	existingAccount := &domain.BankAccount{ID: uuid.New(), OwnerID: ownerID, IBAN: "CH9300762011623852957"}

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(&domain.Profile{OwnerID: ownerID}, nil)
	f.clientRepo.On("GetByDedupKey", mock.Anything, ownerID, mock.AnythingOfType("string")).Return(existingClient, nil)
	f.accountRepo.On("GetByIBAN", mock.Anything, ownerID, mock.AnythingOfType("string")).Return(existingAccount, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.ClientID != nil && *inv.ClientID == existingClient.ID &&
			inv.BankAccountID != nil && *inv.BankAccountID == existingAccount.ID &&
			inv.PaymentTerms == "30 days"
	})).Return(nil)

	_, err := f.svc.Migrate(context.Background(), ownerID, drafts)

	require.NoError(t, err)
	f.invoiceRepo.AssertExpectations(t)
}

func TestMigrationService_Migrate_PartialFailureContinues(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	bad := guestDraft("G-BAD")
	good := guestDraft("G-GOOD")
	drafts := []domain.GuestDraft{bad, good}

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(&domain.Profile{OwnerID: ownerID}, nil)
	f.clientRepo.On("GetByDedupKey", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrClientNotFound).Once()
	f.clientRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Client")).Return(nil)
	f.accountRepo.On("GetByIBAN", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrBankAccountNotFound).Once()
	f.accountRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BankAccount")).Return(nil)
	f.accountRepo.On("SetDefault", mock.Anything, ownerID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Number == "G-BAD"
	})).Return(errors.New("db down"))
	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Number == "G-GOOD"
	})).Return(nil)

	result, err := f.svc.Migrate(context.Background(), ownerID, drafts)

	require.NoError(t, err, "a failing draft is skipped, not fatal")
	assert.Equal(t, 1, result.Invoices)
	assert.Equal(t, 1, result.Skipped)
}

func TestMigrationService_Migrate_ProfilePrefillOnlyWhenMissing(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	drafts := []domain.GuestDraft{guestDraft("G-1")}

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(&domain.Profile{OwnerID: ownerID, Name: "Already here"}, nil)
	f.clientRepo.On("GetByDedupKey", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrClientNotFound)
	f.clientRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Client")).Return(nil)
	f.accountRepo.On("GetByIBAN", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrBankAccountNotFound)
	f.accountRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BankAccount")).Return(nil)
	f.accountRepo.On("SetDefault", mock.Anything, ownerID, mock.AnythingOfType("uuid.UUID")).Return(nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	_, err := f.svc.Migrate(context.Background(), ownerID, drafts)

	require.NoError(t, err)
	f.profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMigrationService_Migrate_ProfilePrefillFromFirstDraft(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	drafts := []domain.GuestDraft{guestDraft("G-1")}

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(nil, domain.ErrProfileNotFound)
	f.profileRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.OwnerID == ownerID && p.Name == "Freelancer GmbH" && p.City == "Horgen"
	})).Return(nil)
	f.clientRepo.On("GetByDedupKey", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrClientNotFound)
	f.clientRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Client")).Return(nil)
	f.accountRepo.On("GetByIBAN", mock.Anything, ownerID, mock.AnythingOfType("string")).
		Return(nil, domain.ErrBankAccountNotFound)
	f.accountRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BankAccount")).Return(nil)
	f.accountRepo.On("SetDefault", mock.Anything, ownerID, mock.AnythingOfType("uuid.UUID")).Return(nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	_, err := f.svc.Migrate(context.Background(), ownerID, drafts)

	require.NoError(t, err)
	f.profileRepo.AssertExpectations(t)
}

func TestMigrationService_Migrate_DraftWithoutDebtorOrIBAN(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()
	draft := guestDraft("G-1")
	draft.Debtor = domain.Identity{}
	draft.IBAN = ""

	f.profileRepo.On("Get", mock.Anything, ownerID).Return(&domain.Profile{OwnerID: ownerID}, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.ClientID == nil && inv.BankAccountID == nil
	})).Return(nil)

	result, err := f.svc.Migrate(context.Background(), ownerID, []domain.GuestDraft{draft})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Invoices)
	assert.Equal(t, 0, result.Clients)
	assert.Equal(t, 0, result.BankAccounts)
	f.clientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMigrationService_Migrate_MissingOwner(t *testing.T) {
	f := newMigrationFixture()

	result, err := f.svc.Migrate(context.Background(), uuid.Nil, []domain.GuestDraft{guestDraft("G-1")})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMissingOwner)
}

func TestMigrationService_Migrate_EmptyDrafts(t *testing.T) {
	f := newMigrationFixture()
	ownerID := uuid.New()

	result, err := f.svc.Migrate(context.Background(), ownerID, nil)

	require.NoError(t, err)
	assert.Equal(t, &domain.MigrationResult{}, result)
}
