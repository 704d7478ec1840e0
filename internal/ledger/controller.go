// Package ledger mediates between a front-end and a persistence port. It owns
// the selected-transaction pointer, validates drafts before any backend call,
// serializes mutations and republishes the filtered view after each change.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"transaksi/internal/core"
	applog "transaksi/internal/log"
	"transaksi/internal/ports"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// View is what the front-end renders for the current period.
type View struct {
	Period       core.Period
	Transactions []core.Transaction // date descending
	Totals       core.Totals
}

// ConfirmFunc is asked before a delete is executed. Returning false cancels it.
type ConfirmFunc func(core.Transaction) bool

type Option func(*Controller)

func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

type Controller struct {
	store   ports.Store
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	busy    *semaphore.Weighted
	running atomic.Bool // set while a mutation holds busy

	mu          sync.Mutex
	state       State
	selected    string
	period      core.Period
	view        View
	gen         uint64
	cancelList  context.CancelFunc
	subscribers map[int]func(View)
	nextSub     int
}

// New creates an idle controller showing the current month. Nothing is
// loaded until Refresh or SetPeriod is called.
func New(store ports.Store, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,
		busy:        semaphore.NewWeighted(1),
		subscribers: make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(applog.FieldComponent, applog.ComponentLedger)
	c.period = core.CurrentPeriod(c.now())
	c.view = View{Period: c.period, Transactions: []core.Transaction{}, Totals: core.Aggregate(nil)}
	return c
}

// Subscribe registers fn to receive every refreshed view. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(View)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selected returns the id that the next Update or Delete will target.
func (c *Controller) Selected() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.state == Editing
}

// View returns the last successfully loaded view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Period returns the period the next refresh will load.
func (c *Controller) Period() core.Period {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

// Busy reports whether a mutation is in flight. Front-ends use it to
// disable their submit controls.
func (c *Controller) Busy() bool {
	return c.running.Load()
}

// acquire takes the mutation slot or fails with core.ErrBusy.
func (c *Controller) acquire() error {
	if !c.busy.TryAcquire(1) {
		return core.ErrBusy
	}
	c.running.Store(true)
	return nil
}

func (c *Controller) release() {
	c.running.Store(false)
	c.busy.Release(1)
}

// Select loads a displayed transaction into a draft and enters Editing.
func (c *Controller) Select(id string) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.lookupLocked(id)
	if !ok {
		return Draft{}, fmt.Errorf("select %s: %w", id, core.ErrNotFound)
	}
	c.state = Editing
	c.selected = id
	return DraftFrom(t), nil
}

// Reset clears the selection and returns to Idle.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// SetPeriod changes the reporting period and reloads it.
func (c *Controller) SetPeriod(ctx context.Context, p core.Period) (View, error) {
	if err := p.Validate(); err != nil {
		return c.View(), err
	}
	c.mu.Lock()
	c.period = p
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh lists the backend, filters to the current period and aggregates.
// On failure the previous view is kept. A refresh overtaken by a newer one is
// cancelled and reports core.ErrStale.
func (c *Controller) Refresh(ctx context.Context) (View, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	if c.cancelList != nil {
		c.cancelList()
	}
	c.gen++
	gen := c.gen
	c.cancelList = cancel
	p := c.period
	c.mu.Unlock()

	all, err := c.store.List(ctx)

	c.mu.Lock()
	if gen != c.gen {
		current := c.view
		c.mu.Unlock()
		return current, core.ErrStale
	}
	c.cancelList = nil
	if err != nil {
		current := c.view
		c.mu.Unlock()
		err = classify("list", err)
		c.logger.WarnContext(ctx, "Failed to load transactions",
			applog.FieldOperation, applog.OpList,
			applog.FieldMonth, p.Month,
			applog.FieldYear, p.Year,
			applog.FieldError, err)
		return current, err
	}
	rows := core.FilterPeriod(all, p)
	v := View{Period: p, Transactions: rows, Totals: core.Aggregate(rows)}
	c.view = v
	subs := make([]func(View), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return v, nil
}

// Create validates d, assigns a fresh id and stores it. It does not need a
// selection and returns to Idle on success.
func (c *Controller) Create(ctx context.Context, d Draft) (string, error) {
	t, err := d.Build()
	if err != nil {
		return "", err
	}
	if err := c.acquire(); err != nil {
		return "", err
	}
	defer c.release()

	t.ID = c.newID()
	id, err := c.call(ctx, func(ctx context.Context) (string, error) {
		return c.store.Create(ctx, t)
	})
	if err != nil {
		return "", c.failed(ctx, applog.OpCreate, t.ID, err)
	}

	c.logger.InfoContext(ctx, "Transaction created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldTransactionID, id,
		applog.FieldType, t.Kind,
		applog.FieldAmount, t.Amount.String(),
		applog.FieldDate, t.Date.String())

	c.Reset()
	return id, c.refreshAfter(ctx, applog.OpCreate)
}

// Update replaces the selected transaction with d.
func (c *Controller) Update(ctx context.Context, d Draft) error {
	id, ok := c.Selected()
	if !ok {
		return core.ErrNoSelection
	}
	t, err := d.Build()
	if err != nil {
		return err
	}
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	t.ID = id
	_, err = c.call(ctx, func(ctx context.Context) (string, error) {
		return id, c.store.Update(ctx, id, t)
	})
	if err != nil {
		return c.failed(ctx, applog.OpUpdate, id, err)
	}

	c.logger.InfoContext(ctx, "Transaction updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldTransactionID, id,
		applog.FieldType, t.Kind,
		applog.FieldAmount, t.Amount.String())

	c.resetIfSelected(id)
	return c.refreshAfter(ctx, applog.OpUpdate)
}

// Delete removes the selected transaction after confirm approves it. A
// declined (or nil) confirmation is a no-op.
func (c *Controller) Delete(ctx context.Context, confirm ConfirmFunc) error {
	c.mu.Lock()
	id, editing := c.selected, c.state == Editing
	t, ok := c.lookupLocked(id)
	c.mu.Unlock()
	if !ok {
		t = core.Transaction{ID: id}
	}
	if !editing {
		return core.ErrNoSelection
	}
	if confirm == nil || !confirm(t) {
		return nil
	}
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	_, err := c.call(ctx, func(ctx context.Context) (string, error) {
		return id, c.store.Delete(ctx, id)
	})
	if err != nil {
		return c.failed(ctx, applog.OpDelete, id, err)
	}

	c.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)

	c.resetIfSelected(id)
	return c.refreshAfter(ctx, applog.OpDelete)
}

func (c *Controller) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

func (c *Controller) failed(ctx context.Context, op, id string, err error) error {
	err = classify(op, err)
	c.logger.WarnContext(ctx, "Transaction operation failed",
		applog.FieldOperation, op,
		applog.FieldTransactionID, id,
		applog.FieldError, err)
	return err
}

// refreshAfter reloads the view after a successful mutation. A refresh
// superseded by a newer one is not an error for the mutation.
func (c *Controller) refreshAfter(ctx context.Context, op string) error {
	if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, core.ErrStale) {
		return fmt.Errorf("refresh after %s: %w", op, err)
	}
	return nil
}

func (c *Controller) resetIfSelected(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == id {
		c.resetLocked()
	}
}

func (c *Controller) resetLocked() {
	c.state = Idle
	c.selected = ""
}

func (c *Controller) lookupLocked(id string) (core.Transaction, bool) {
	for _, t := range c.view.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// classify keeps the backend taxonomy and turns anything unrecognised, such
// as an expired deadline, into core.ErrBackendUnavailable.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrValidationRejected),
		errors.Is(err, core.ErrBackendUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, core.ErrBackendUnavailable, err)
	}
}
