package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "Pemasukan"
	KindExpense Kind = "Pengeluaran"
)

// DateLayout is the machine form of a Date, used for storage and sorting.
const DateLayout = "2006-01-02"

type (
	Kind string

	// Date is a calendar day. The wrapped time is always midnight UTC.
	Date struct {
		time.Time
	}

	// Contact holds the buyer details recorded for income (sales).
	Contact struct {
		Buyer   string
		Phone   string
		Address string
	}

	Transaction struct {
		ID          string
		Kind        Kind
		Amount      decimal.Decimal
		Date        Date
		Description string
		Contact     *Contact  // income only
		UpdatedAt   time.Time // zero when the backend does not track it
	}
)

// IsValid returns true for the two known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the stored labels case-insensitively, plus the english names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pemasukan", "income":
		return KindIncome, nil
	case "pengeluaran", "expense":
		return KindExpense, nil
	default:
		return "", ErrInvalidKind
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf keeps the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate reads either YYYY-MM-DD or an RFC 3339 date-time. For date-times
// the calendar day is taken as written, without converting the offset.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the machine form YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty reports whether every contact field is blank.
func (c *Contact) IsEmpty() bool {
	if c == nil {
		return true
	}
	return strings.TrimSpace(c.Buyer) == "" &&
		strings.TrimSpace(c.Phone) == "" &&
		strings.TrimSpace(c.Address) == ""
}

func (t Transaction) IsIncome() bool {
	return t.Kind == KindIncome
}

// Normalize trims free text and drops contact details that do not belong to
// the record's kind.
func (t Transaction) Normalize() Transaction {
	t.Description = strings.TrimSpace(t.Description)
	if t.Kind != KindIncome || t.Contact.IsEmpty() {
		t.Contact = nil
		return t
	}
	c := Contact{
		Buyer:   strings.TrimSpace(t.Contact.Buyer),
		Phone:   strings.TrimSpace(t.Contact.Phone),
		Address: strings.TrimSpace(t.Contact.Address),
	}
	t.Contact = &c
	return t
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}
