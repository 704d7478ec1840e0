package ledger

import (
	"context"

	"github.com/stretchr/testify/mock"

	"transaksi/internal/core"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) List(ctx context.Context) ([]core.Transaction, error) {
	args := m.Called(ctx)
	txs, _ := args.Get(0).([]core.Transaction)
	return txs, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, t core.Transaction) (string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id string, t core.Transaction) error {
	return m.Called(ctx, id, t).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
