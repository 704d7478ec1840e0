package adapters

import (
	"context"
	"errors"
	"fmt"

	"transaksi/internal/core"
	"transaksi/internal/ports"
	"transaksi/internal/storage"
)

var (
	_ ports.Store        = (*SQLiteAdapter)(nil)
	_ ports.PeriodLister = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter exposes SQLiteRepository as a ports.Store and maps storage
// failures onto the ledger's error taxonomy.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage}
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLiteAdapter, error) {
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteAdapter(repo), nil
}

// List implements ports.TransactionLister
func (a *SQLiteAdapter) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := a.storage.ListTransactions(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return txs, nil
}

// ListByPeriod implements ports.PeriodLister
func (a *SQLiteAdapter) ListByPeriod(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	txs, err := a.storage.ListTransactionsByPeriod(ctx, p)
	if err != nil {
		return nil, classify(err)
	}
	return txs, nil
}

// Create implements ports.TransactionWriter
func (a *SQLiteAdapter) Create(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", fmt.Errorf("%w: missing id", core.ErrValidationRejected)
	}
	if err := a.storage.InsertTransaction(ctx, t.Normalize()); err != nil {
		return "", classify(err)
	}
	return t.ID, nil
}

// Update implements ports.TransactionWriter
func (a *SQLiteAdapter) Update(ctx context.Context, id string, t core.Transaction) error {
	if err := a.storage.UpdateTransaction(ctx, id, t.Normalize()); err != nil {
		return classify(err)
	}
	return nil
}

// Delete implements ports.TransactionDeleter
func (a *SQLiteAdapter) Delete(ctx context.Context, id string) error {
	if err := a.storage.DeleteTransaction(ctx, id); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases the underlying database.
func (a *SQLiteAdapter) Close() error {
	return a.storage.Close()
}

// classify keeps NotFound and ValidationRejected, everything else is a storage failure.
func classify(err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrValidationRejected) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
}
