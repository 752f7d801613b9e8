package edit

import (
	"context"

	"github.com/rocjay1/finpulse/internal/models"
)

// MockUpdater is a mock implementation of Updater
type MockUpdater struct {
	UpdateTransactionFunc func(ctx context.Context, id string, update models.TransactionUpdate) error
}

func (m *MockUpdater) UpdateTransaction(ctx context.Context, id string, update models.TransactionUpdate) error {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, id, update)
	}
	return nil
}
