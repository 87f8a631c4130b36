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

type recurringFixture struct {
	templateRepo *mocks.MockTemplateRepo
	invoiceRepo  *mocks.MockInvoiceRepo
	clientRepo   *mocks.MockClientRepo
	accountRepo  *mocks.MockBankAccountRepo
	profileRepo  *mocks.MockProfileRepo
	email        *mocks.MockEmailSender
	svc          service.RecurringService
}

func newRecurringFixture() *recurringFixture {
	f := &recurringFixture{
		templateRepo: new(mocks.MockTemplateRepo),
		invoiceRepo:  new(mocks.MockInvoiceRepo),
		clientRepo:   new(mocks.MockClientRepo),
		accountRepo:  new(mocks.MockBankAccountRepo),
		profileRepo:  new(mocks.MockProfileRepo),
		email:        new(mocks.MockEmailSender),
	}
	f.svc = service.NewRecurringService(
		f.templateRepo, f.invoiceRepo, f.clientRepo, f.accountRepo, f.profileRepo, f.email)
	return f
}

func dueTemplate(ownerID uuid.UUID) *domain.RecurringTemplate {
	return &domain.RecurringTemplate{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         "Monthly hosting",
		Currency:     "CHF",
		Items:        domain.LineItems{{Description: "Hosting", Quantity: "1", UnitPrice: "25"}},
		Subtotal:     decimal.RequireFromString("25"),
		Total:        decimal.RequireFromString("25"),
		PaymentTerms: "14 days",
		Frequency:    domain.FrequencyMonthly,
		NextRunOn:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}
}

func TestRecurringService_Create_Success(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()

	f.templateRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.RecurringTemplate")).Return(nil)

	tpl, err := f.svc.Create(context.Background(), &service.CreateTemplateInput{
		OwnerID:   ownerID,
		Name:      "Monthly hosting",
		Items:     domain.LineItems{{Description: "Hosting", Quantity: "1", UnitPrice: "25", TaxRate: decimal.RequireFromString("8.1")}},
		Frequency: domain.FrequencyMonthly,
	})

	require.NoError(t, err)
	assert.True(t, tpl.IsActive)
	assert.Equal(t, "CHF", tpl.Currency)
	assert.Equal(t, "25.00", tpl.Subtotal.StringFixed(2))
	assert.Equal(t, "27.03", tpl.Total.StringFixed(2))
	assert.False(t, tpl.NextRunOn.IsZero())
	f.templateRepo.AssertExpectations(t)
}

func TestRecurringService_Create_InvalidFrequency(t *testing.T) {
	f := newRecurringFixture()

	tpl, err := f.svc.Create(context.Background(), &service.CreateTemplateInput{
		OwnerID:   uuid.New(),
		Name:      "Bad",
		Frequency: domain.Frequency("daily"),
	})

	assert.Nil(t, tpl)
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
	f.templateRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecurringService_CheckDue(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)

	due, err := f.svc.CheckDue(context.Background(), ownerID, tpl.ID)

	require.NoError(t, err)
	assert.True(t, due)
}

func TestRecurringService_CheckDue_FutureTemplate(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)
	tpl.NextRunOn = time.Now().UTC().AddDate(0, 0, 2)

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)

	due, err := f.svc.CheckDue(context.Background(), ownerID, tpl.ID)

	require.NoError(t, err)
	assert.False(t, due)
}

func TestRecurringService_Fire_Success(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)
	previousNext := tpl.NextRunOn

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)
	f.profileRepo.On("Get", mock.Anything, ownerID).Return(nil, domain.ErrProfileNotFound)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.templateRepo.On("Update", mock.Anything, tpl).Return(nil)

	inv, err := f.svc.Fire(context.Background(), ownerID, tpl.ID)

	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, domain.InvoiceStatusOpen, inv.Status)
	assert.Contains(t, inv.Number, "REC-")
	assert.Equal(t, "CHF", inv.Currency)
	// Due date follows the template's terms from today
	assert.Equal(t, inv.IssuedOn.AddDate(0, 0, 14), inv.DueOn)
	// No profile and no account: the payload degrades to the fallback form
	assert.Equal(t, "fallback", inv.PaymentCodeKind)

	// Schedule advanced
	assert.Equal(t, 1, tpl.RunCount)
	require.NotNil(t, tpl.LastRunOn)
	assert.True(t, tpl.NextRunOn.After(previousNext))
	assert.True(t, tpl.IsActive)
	f.templateRepo.AssertExpectations(t)
}

func TestRecurringService_Fire_NotDue(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)
	tpl.NextRunOn = time.Now().UTC().AddDate(0, 0, 5)

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)

	inv, err := f.svc.Fire(context.Background(), ownerID, tpl.ID)

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, domain.ErrTemplateNotDue)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecurringService_Fire_Inactive(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)
	tpl.IsActive = false

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)

	inv, err := f.svc.Fire(context.Background(), ownerID, tpl.ID)

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, domain.ErrTemplateInactive)
}

func TestRecurringService_Fire_NotFound(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	templateID := uuid.New()

	f.templateRepo.On("GetByID", mock.Anything, ownerID, templateID).Return(nil, domain.ErrTemplateNotFound)

	inv, err := f.svc.Fire(context.Background(), ownerID, templateID)

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestRecurringService_Fire_CreateFailureLeavesScheduleUntouched(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)
	previousNext := tpl.NextRunOn

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)
	f.profileRepo.On("Get", mock.Anything, ownerID).Return(nil, domain.ErrProfileNotFound)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(errors.New("db down"))

	inv, err := f.svc.Fire(context.Background(), ownerID, tpl.ID)

	assert.Nil(t, inv)
	assert.Error(t, err)
	assert.Equal(t, 0, tpl.RunCount)
	assert.Nil(t, tpl.LastRunOn)
	assert.Equal(t, previousNext, tpl.NextRunOn)
	f.templateRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRecurringService_Fire_EndDateDeactivates(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	tpl := dueTemplate(ownerID)
	end := time.Now().UTC()
	tpl.EndOn = &end

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)
	f.profileRepo.On("Get", mock.Anything, ownerID).Return(nil, domain.ErrProfileNotFound)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.templateRepo.On("Update", mock.Anything, tpl).Return(nil)

	_, err := f.svc.Fire(context.Background(), ownerID, tpl.ID)

	require.NoError(t, err)
	assert.False(t, tpl.IsActive, "template whose next run exceeds its end date must deactivate")
}

func TestRecurringService_Fire_EmailFailureIsNonFatal(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	clientID := uuid.New()
	tpl := dueTemplate(ownerID)
	tpl.AutoSend = true
	tpl.ClientID = &clientID

	client := &domain.Client{ID: clientID, OwnerID: ownerID, Name: "Muster AG", Email: "billing@muster.ch"}

	f.templateRepo.On("GetByID", mock.Anything, ownerID, tpl.ID).Return(tpl, nil)
	f.profileRepo.On("Get", mock.Anything, ownerID).Return(nil, domain.ErrProfileNotFound)
	f.clientRepo.On("GetByID", mock.Anything, ownerID, clientID).Return(client, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.templateRepo.On("Update", mock.Anything, tpl).Return(nil)
	f.email.On("SendInvoice", mock.Anything, mock.AnythingOfType("*port.InvoiceEmail")).Return(errors.New("smtp down"))

	inv, err := f.svc.Fire(context.Background(), ownerID, tpl.ID)

	require.NoError(t, err, "delivery failure must not fail the fire")
	require.NotNil(t, inv)
	assert.Equal(t, 1, tpl.RunCount)
	f.email.AssertExpectations(t)
}

func TestRecurringService_RunDue(t *testing.T) {
	f := newRecurringFixture()
	ownerA := uuid.New()
	ownerB := uuid.New()
	tplA := dueTemplate(ownerA)
	tplB := dueTemplate(ownerB)

	f.templateRepo.On("ListDue", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]domain.RecurringTemplate{*tplA, *tplB}, nil)
	f.templateRepo.On("GetByID", mock.Anything, ownerA, tplA.ID).Return(tplA, nil)
	f.templateRepo.On("GetByID", mock.Anything, ownerB, tplB.ID).Return(nil, domain.ErrTemplateNotFound)
	f.profileRepo.On("Get", mock.Anything, ownerA).Return(nil, domain.ErrProfileNotFound)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.templateRepo.On("Update", mock.Anything, tplA).Return(nil)

	fired := f.svc.RunDue(context.Background())

	assert.Equal(t, 1, fired, "one fires, the vanished one is skipped")
}

func TestRecurringService_RunDue_ListFailure(t *testing.T) {
	f := newRecurringFixture()

	f.templateRepo.On("ListDue", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("db down"))

	assert.Equal(t, 0, f.svc.RunDue(context.Background()))
}

func TestRecurringService_Deactivate(t *testing.T) {
	f := newRecurringFixture()
	ownerID := uuid.New()
	templateID := uuid.New()

	f.templateRepo.On("Deactivate", mock.Anything, ownerID, templateID).Return(nil)

	require.NoError(t, f.svc.Deactivate(context.Background(), ownerID, templateID))
	f.templateRepo.AssertExpectations(t)
}
