package services

import (
	"context"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/notify"
	"github.com/stretchr/testify/mock"
)

type MockSessionLookup struct {
	mock.Mock
}

func (m *MockSessionLookup) LookupUserByTokenHash(ctx context.Context, tokenHash string) (*models.Identity, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, msg notify.EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
