package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"transaksi/internal/amqp"
	"transaksi/internal/core"
	"transaksi/internal/ledger"
	applog "transaksi/internal/log"
)

// ChangeSource delivers change messages published by writers.
type ChangeSource interface {
	ConsumeChanges(ctx context.Context, handler func(*amqp.TransactionChangeMessage) error) error
}

// Refresher reloads the displayed period. *ledger.Controller satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (ledger.View, error)
}

// RefreshWorker keeps a front-end's view current when another client changes
// a transaction.
type RefreshWorker struct {
	source ChangeSource
	target Refresher
	logger *slog.Logger

	handled atomic.Int64
	failed  atomic.Int64
}

func NewRefreshWorker(source ChangeSource, target Refresher, logger *slog.Logger) *RefreshWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshWorker{
		source: source,
		target: target,
		logger: logger.With(applog.FieldComponent, applog.ComponentAMQP),
	}
}

// HandleChangeMessage reloads the view for one change. A refresh overtaken by
// a newer one is not a failure.
func (w *RefreshWorker) HandleChangeMessage(ctx context.Context, msg *amqp.TransactionChangeMessage) error {
	w.logger.DebugContext(ctx, "Processing change message",
		applog.FieldTransactionID, msg.ID,
		"op", msg.Op,
		"timestamp", msg.Timestamp)

	if _, err := w.target.Refresh(ctx); err != nil && !errors.Is(err, core.ErrStale) {
		w.failed.Add(1)
		return fmt.Errorf("refresh after %s %s: %w", msg.Op, msg.ID, err)
	}
	w.handled.Add(1)
	return nil
}

// Run consumes changes until ctx is cancelled. Cancellation is a clean stop.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting refresh worker")
	err := w.source.ConsumeChanges(ctx, func(msg *amqp.TransactionChangeMessage) error {
		return w.HandleChangeMessage(ctx, msg)
	})
	handled, failed := w.Stats()
	w.logger.InfoContext(ctx, "Refresh worker stopped", "handled", handled, "failed", failed)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stats reports how many messages were handled and how many failed.
func (w *RefreshWorker) Stats() (handled, failed int64) {
	return w.handled.Load(), w.failed.Load()
}
