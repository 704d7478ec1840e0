package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-05", NewDate(2024, 3, 5), true},
		{"2024-03-05T00:00:00Z", NewDate(2024, 3, 5), true},
		{"2024-03-31T23:30:00-05:00", NewDate(2024, 3, 31), true},
		{"2024-02-30", Date{}, false},
		{"05/03/2024", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if err != ErrInvalidDate {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 12, 31).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"Pemasukan":   KindIncome,
		"pemasukan":   KindIncome,
		"income":      KindIncome,
		"PENGELUARAN": KindExpense,
		"expense":     KindExpense,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionNormalize(t *testing.T) {
	contact := &Contact{Buyer: " Ani ", Phone: "0812", Address: "Jl. Mawar"}

	income := Transaction{Kind: KindIncome, Description: "  nasi  ", Contact: contact}.Normalize()
	if income.Contact == nil || income.Contact.Buyer != "Ani" {
		t.Fatalf("income contact not kept: %+v", income.Contact)
	}
	if income.Description != "nasi" {
		t.Fatalf("description not trimmed: %q", income.Description)
	}
	if contact.Buyer != " Ani " {
		t.Fatalf("Normalize modified the caller's contact")
	}

	expense := Transaction{Kind: KindExpense, Contact: contact}.Normalize()
	if expense.Contact != nil {
		t.Fatalf("expense should not carry contact fields")
	}

	blank := Transaction{Kind: KindIncome, Contact: &Contact{Buyer: " "}}.Normalize()
	if blank.Contact != nil {
		t.Fatalf("blank contact should be dropped")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Kind: KindIncome, Amount: decimal.NewFromInt(0), Date: NewDate(2024, 3, 5)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Kind: "Transfer", Amount: decimal.NewFromInt(1), Date: NewDate(2024, 1, 1)}, ErrInvalidKind},
		{Transaction{Kind: KindExpense, Amount: decimal.NewFromInt(-1), Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{Transaction{Kind: KindExpense, Amount: decimal.NewFromInt(1)}, ErrInvalidDate},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); err != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}
