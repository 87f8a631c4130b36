package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fakturo/internal/domain"
)

// MockTemplateRepo is a mock implementation of port.RecurringTemplateRepository.
type MockTemplateRepo struct {
	mock.Mock
}

func (m *MockTemplateRepo) Create(ctx context.Context, tpl *domain.RecurringTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, ownerID, templateID uuid.UUID) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, ownerID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.RecurringTemplate, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Int(1), args.Error(2)
}

func (m *MockTemplateRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringTemplate, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepo) Update(ctx context.Context, tpl *domain.RecurringTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepo) Deactivate(ctx context.Context, ownerID, templateID uuid.UUID) error {
	args := m.Called(ctx, ownerID, templateID)
	return args.Error(0)
}
