package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"transaksi/internal/amqp"
	"transaksi/internal/core"
	applog "transaksi/internal/log"
	"transaksi/internal/ports"
)

// ChangePublisher announces committed writes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, id string, op amqp.ChangeOp) error
	Close() error
}

var (
	_ ports.Store        = (*TransactionService)(nil)
	_ ports.PeriodLister = (*TransactionService)(nil)
)

// TransactionService orchestrates transaction writes across a store and AMQP.
// The store is the source of truth: a failed publish is logged and never
// fails the write.
type TransactionService struct {
	store     ports.Store
	publisher ChangePublisher
	logger    *slog.Logger
}

func NewTransactionService(store ports.Store, publisher ChangePublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    slog.Default().With(applog.FieldComponent, applog.ComponentAMQP),
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

// ListByPeriod uses the store's own period query when it has one.
func (s *TransactionService) ListByPeriod(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	if pl, ok := s.store.(ports.PeriodLister); ok {
		return pl.ListByPeriod(ctx, p)
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterPeriod(all, p), nil
}

// Create saves the transaction and publishes a created message
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (string, error) {
	id, err := s.store.Create(ctx, t)
	if err != nil {
		return "", err
	}
	s.publish(ctx, id, amqp.OpCreated)
	return id, nil
}

func (s *TransactionService) Update(ctx context.Context, id string, t core.Transaction) error {
	if err := s.store.Update(ctx, id, t); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.OpUpdated)
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.OpDeleted)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id string, op amqp.ChangeOp) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping change message",
			applog.FieldTransactionID, id)
		return
	}
	if err := s.publisher.PublishChange(ctx, id, op); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change message",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	}
}

// Close closes both the store (when it holds resources) and the publisher
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}

	return nil
}
