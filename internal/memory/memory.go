// Package memory provides an in-process transaction store used for demos and
// tests. It honours the same contract as the persistent backends.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"transaksi/internal/core"
	"transaksi/internal/ports"
)

var (
	_ ports.Store        = (*Store)(nil)
	_ ports.PeriodLister = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	items []core.Transaction
}

func New(seed ...core.Transaction) *Store {
	s := &Store{now: time.Now}
	for _, t := range seed {
		t = t.Normalize()
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = s.now()
		}
		s.items = append(s.items, t)
	}
	return s
}

// NewFromFiles seeds the store from base/seed_transactions.txt when present.
// Each line is "YYYY-MM-DD;type;amount;description"; blank lines and lines
// starting with '#' are skipped, malformed lines are logged and skipped.
func NewFromFiles(base string) *Store {
	var seed []core.Transaction
	for i, line := range readLines(filepath.Join(base, "seed_transactions.txt")) {
		t, err := parseSeedLine(line)
		if err != nil {
			slog.Warn("Skipping seed line", "line", i+1, "error", err)
			continue
		}
		seed = append(seed, t)
	}
	return New(seed...)
}

// SetClock replaces the clock used for UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// List returns all transactions, most recently updated first.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.items...)
	s.mu.Unlock()
	core.SortByRecency(out)
	return out, nil
}

func (s *Store) ListByPeriod(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterPeriod(all, p), nil
}

func (s *Store) Create(_ context.Context, t core.Transaction) (string, error) {
	if strings.TrimSpace(t.ID) == "" {
		return "", fmt.Errorf("%w: missing id", core.ErrValidationRejected)
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrValidationRejected, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(t.ID) >= 0 {
		return "", fmt.Errorf("%w: duplicate id %s", core.ErrValidationRejected, t.ID)
	}
	t = t.Normalize()
	t.UpdatedAt = s.now()
	s.items = append(s.items, t)
	return t.ID, nil
}

func (s *Store) Update(_ context.Context, id string, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrValidationRejected, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	t = t.Normalize()
	t.ID = id
	t.UpdatedAt = s.now()
	s.items[i] = t
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func parseSeedLine(line string) (core.Transaction, error) {
	parts := strings.SplitN(line, ";", 4)
	if len(parts) < 3 {
		return core.Transaction{}, fmt.Errorf("expected at least 3 fields, got %d", len(parts))
	}
	date, err := core.ParseDate(parts[0])
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(parts[1])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(parts[2])
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{ID: uuid.NewString(), Kind: kind, Amount: amount, Date: date}
	if len(parts) == 4 {
		t.Description = parts[3]
	}
	return t, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
