package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"transaksi/internal/core"
)

// wireDateSuffix turns a calendar day into the date-time form the service expects.
const wireDateSuffix = "T00:00:00Z"

// Amount encodes a decimal as a bare JSON number and accepts either a number
// or a quoted string when decoding.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

// TransactionJSON is the wire shape of a transaction. Contact fields are
// pointers so that expense records can omit them entirely; Amount is a
// pointer so a missing or null amount is told apart from zero.
type TransactionJSON struct {
	ID          string  `json:"id,omitempty" validate:"omitempty,max=64,printascii"`
	Type        string  `json:"type" validate:"required"`
	Amount      *Amount `json:"amount" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Description string  `json:"description" validate:"max=1024"`
	Buyer       *string `json:"buyer,omitempty" validate:"omitempty,max=256"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=64"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=512"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// ListResponse is the body of GET /transaksi.
type ListResponse struct {
	Data []TransactionJSON `json:"data"`
}

// FromTransaction builds the wire form. Contact fields are only set for income.
func FromTransaction(t core.Transaction) TransactionJSON {
	t = t.Normalize()
	amount := Amount(t.Amount)
	out := TransactionJSON{
		ID:          t.ID,
		Type:        t.Kind.String(),
		Amount:      &amount,
		Date:        t.Date.String() + wireDateSuffix,
		Description: t.Description,
	}
	if t.Contact != nil {
		out.Buyer = &t.Contact.Buyer
		out.Phone = &t.Contact.Phone
		out.Address = &t.Contact.Address
	}
	if !t.UpdatedAt.IsZero() {
		out.UpdatedAt = t.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// ToTransaction validates the wire form and converts it. Errors wrap the
// matching core input error.
func (j TransactionJSON) ToTransaction() (core.Transaction, error) {
	kind, err := core.ParseKind(j.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type %q: %w", j.Type, err)
	}
	date, err := core.ParseDate(j.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", j.Date, err)
	}
	if j.Amount == nil {
		return core.Transaction{}, fmt.Errorf("amount missing: %w", core.ErrInvalidAmount)
	}
	amount := decimal.Decimal(*j.Amount)
	if amount.IsNegative() {
		return core.Transaction{}, fmt.Errorf("amount %s: %w", amount, core.ErrInvalidAmount)
	}
	t := core.Transaction{
		ID:          strings.TrimSpace(j.ID),
		Kind:        kind,
		Amount:      amount,
		Date:        date,
		Description: j.Description,
		Contact: &core.Contact{
			Buyer:   deref(j.Buyer),
			Phone:   deref(j.Phone),
			Address: deref(j.Address),
		},
	}
	if j.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, j.UpdatedAt); err == nil {
			t.UpdatedAt = ts
		}
	}
	return t.Normalize(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
