package ports

import (
	"context"

	"transaksi/internal/core"
)

// Ports for outbound persistence adapters. Errors are reported with the
// sentinels in core (ErrBackendUnavailable, ErrValidationRejected, ErrNotFound).
type (
	TransactionLister interface {
		// List returns every stored transaction or fails without a partial result.
		List(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		// Create stores t under t.ID and returns the id it was stored under.
		Create(ctx context.Context, t core.Transaction) (id string, err error)
		// Update replaces every field except the id.
		Update(ctx context.Context, id string, t core.Transaction) error
	}

	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// Store is the full persistence capability used by the ledger.
	Store interface {
		TransactionLister
		TransactionWriter
		TransactionDeleter
	}

	// PeriodLister is implemented by stores that can filter by month on their side.
	PeriodLister interface {
		ListByPeriod(ctx context.Context, p core.Period) ([]core.Transaction, error)
	}
)
