package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fakturo/internal/domain"
)

// MockBankAccountRepo is a mock implementation of port.BankAccountRepository.
type MockBankAccountRepo struct {
	mock.Mock
}

func (m *MockBankAccountRepo) Create(ctx context.Context, account *domain.BankAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankAccountRepo) GetByID(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.BankAccount, error) {
	args := m.Called(ctx, ownerID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) GetByIBAN(ctx context.Context, ownerID uuid.UUID, normalizedIBAN string) (*domain.BankAccount, error) {
	args := m.Called(ctx, ownerID, normalizedIBAN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.BankAccount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) SetDefault(ctx context.Context, ownerID, accountID uuid.UUID) error {
	args := m.Called(ctx, ownerID, accountID)
	return args.Error(0)
}

func (m *MockBankAccountRepo) Delete(ctx context.Context, ownerID, accountID uuid.UUID) error {
	args := m.Called(ctx, ownerID, accountID)
	return args.Error(0)
}
