package core

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodValidate(t *testing.T) {
	if err := (Period{Month: 3, Year: 2024}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, p := range []Period{{Month: 0, Year: 2024}, {Month: 13, Year: 2024}, {Month: 1, Year: 0}} {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("%+v: expected ErrInvalidPeriod, got %v", p, err)
		}
	}
}

func TestFilterPeriod(t *testing.T) {
	all := []Transaction{
		tx("feb", KindIncome, 1, NewDate(2024, 2, 29)),
		tx("mar-5", KindIncome, 1, NewDate(2024, 3, 5)),
		tx("mar-20", KindExpense, 1, NewDate(2024, 3, 20)),
		tx("mar-2023", KindIncome, 1, NewDate(2023, 3, 10)),
		tx("mar-1", KindExpense, 1, NewDate(2024, 3, 1)),
		tx("apr", KindExpense, 1, NewDate(2024, 4, 1)),
	}
	p := Period{Month: 3, Year: 2024}

	got := FilterPeriod(all, p)
	wantIDs := []string{"mar-20", "mar-5", "mar-1"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len got=%d want=%d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d got=%s want=%s", i, got[i].ID, id)
		}
	}

	inResult := map[string]bool{}
	for _, x := range got {
		if !p.Contains(x.Date) {
			t.Fatalf("%s does not belong to %s", x.ID, p)
		}
		inResult[x.ID] = true
	}
	for _, x := range all {
		if !inResult[x.ID] && p.Contains(x.Date) {
			t.Fatalf("%s was dropped", x.ID)
		}
	}
}

func TestFilterPeriodTiesKeepInputOrder(t *testing.T) {
	d := NewDate(2024, 3, 5)
	got := FilterPeriod([]Transaction{tx("newer", KindIncome, 1, d), tx("older", KindIncome, 1, d)}, Period{Month: 3, Year: 2024})
	if got[0].ID != "newer" || got[1].ID != "older" {
		t.Fatalf("tie order changed: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFilterPeriodEmpty(t *testing.T) {
	got := FilterPeriod([]Transaction{tx("a", KindIncome, 1, NewDate(2024, 1, 1))}, Period{Month: 6, Year: 2024})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestSortByRecency(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: "old", UpdatedAt: base},
		{ID: "unknown"},
		{ID: "new", UpdatedAt: base.Add(time.Hour)},
	}
	SortByRecency(txs)
	if txs[0].ID != "new" || txs[1].ID != "old" || txs[2].ID != "unknown" {
		t.Fatalf("unexpected order: %s %s %s", txs[0].ID, txs[1].ID, txs[2].ID)
	}
}
