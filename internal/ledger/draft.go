package ledger

import (
	"time"

	"transaksi/internal/core"
)

// Draft is the editable form state of a transaction. Amount holds the text
// as typed; it is only validated by Build.
type Draft struct {
	Kind        core.Kind
	Amount      string
	Date        core.Date
	Description string
	Buyer       string
	Phone       string
	Address     string
}

// NewDraft returns an empty income form dated today.
func NewDraft(now time.Time) Draft {
	return Draft{Kind: core.KindIncome, Date: core.DateOf(now)}
}

// DraftFrom loads a stored transaction verbatim. Contact fields are only
// filled for income.
func DraftFrom(t core.Transaction) Draft {
	d := Draft{
		Kind:        t.Kind,
		Amount:      core.FormatAmount(t.Amount),
		Date:        t.Date,
		Description: t.Description,
	}
	if t.IsIncome() && t.Contact != nil {
		d.Buyer = t.Contact.Buyer
		d.Phone = t.Contact.Phone
		d.Address = t.Contact.Address
	}
	return d
}

// ShowsContact reports whether the buyer fields apply to the draft's kind.
func (d Draft) ShowsContact() bool {
	return d.Kind == core.KindIncome
}

// Build validates the draft and returns the normalised transaction without an id.
func (d Draft) Build() (core.Transaction, error) {
	if !d.Kind.IsValid() {
		return core.Transaction{}, core.ErrInvalidKind
	}
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := d.Date.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		Kind:        d.Kind,
		Amount:      amount,
		Date:        d.Date,
		Description: d.Description,
		Contact:     &core.Contact{Buyer: d.Buyer, Phone: d.Phone, Address: d.Address},
	}
	return t.Normalize(), nil
}
