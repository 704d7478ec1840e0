package core

import (
	"fmt"
	"sort"
	"time"
)

// Period is a reporting month.
type Period struct {
	Month int // 1-12
	Year  int
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Month: int(now.Month()), Year: now.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Contains reports whether d falls in the period's calendar month.
func (p Period) Contains(d Date) bool {
	return d.Month() == p.Month && d.Year() == p.Year
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// FilterPeriod returns the transactions dated inside p, newest date first.
// Equal dates keep their input order, so callers pass the most recently
// updated records first.
func FilterPeriod(txs []Transaction, p Period) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// SortByRecency orders transactions by UpdatedAt, newest first. Records
// without a stamp go last in their original order.
func SortByRecency(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].UpdatedAt.After(txs[j].UpdatedAt)
	})
}
