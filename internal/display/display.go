// Package display renders transactions for people. Machine values stay in
// core; everything here is a reversible presentation of them.
package display

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"transaksi/internal/core"
)

const currencyPrefix = "Rp. "

var (
	weekdaysID = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	weekdaysEN = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	monthsID   = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"}
	monthsEN   = [...]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
)

// Formatter formats amounts, dates and kinds for one locale.
type Formatter struct {
	Tag language.Tag

	indonesian bool
	groupSep   string
	decimalSep string
}

// New derives separators for tag from golang.org/x/text number formatting.
func New(tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	base, _ := tag.Base()
	return &Formatter{
		Tag:        tag,
		indonesian: base.String() == "id",
		groupSep:   firstSeparator(p.Sprintf("%d", 1234567)),
		decimalSep: firstSeparator(p.Sprintf("%.1f", 1.5)),
	}
}

func firstSeparator(s string) string {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return string(r)
		}
	}
	return ""
}

// Amount renders d as "Rp. 150.000" (id) or "Rp. 150,000" (en). Integral
// amounts have no decimal places; fractional amounts keep all their digits.
func (f *Formatter) Amount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	text := d.String()
	intPart, frac, _ := strings.Cut(text, ".")
	out := sign + currencyPrefix + group(intPart, f.groupSep)
	if frac != "" {
		out += f.decimalSep + frac
	}
	return out
}

func group(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseAmount reads an amount shown by Amount, or typed in the same locale,
// back into its machine value.
func (f *Formatter) ParseAmount(s string) (decimal.Decimal, error) {
	return core.ParseAmount(f.machineForm(s))
}

// SanitizeAmount is the locale-aware counterpart of core.SanitizeAmount: it
// drops the currency prefix and grouping, maps the decimal separator to '.'
// and then keeps only digits and '.'. The result is not validated.
func (f *Formatter) SanitizeAmount(s string) string {
	return core.SanitizeAmount(f.machineForm(s))
}

func (f *Formatter) machineForm(s string) string {
	s = strings.TrimSpace(s)
	if lower := strings.ToLower(s); strings.HasPrefix(lower, "rp") {
		s = strings.TrimPrefix(strings.TrimSpace(s[2:]), ".")
	}
	s = strings.ReplaceAll(s, " ", "")
	if f.groupSep != "" {
		s = strings.ReplaceAll(s, f.groupSep, "")
	}
	if f.decimalSep != "" && f.decimalSep != "." {
		s = strings.ReplaceAll(s, f.decimalSep, ".")
	}
	return s
}

// Date renders d as "Selasa, 5 Maret 2024" (id) or "Tuesday, 5 March 2024".
func (f *Formatter) Date(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	weekdays, months := f.tables()
	return fmt.Sprintf("%s, %d %s %d", weekdays[d.Weekday()], d.Day(), months[d.Month()-1], d.Year())
}

// ParseDate accepts the Date form in either language, with or without the
// weekday, as well as the machine form YYYY-MM-DD.
func (f *Formatter) ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := core.ParseDate(s); err == nil {
		return d, nil
	}
	if _, rest, ok := strings.Cut(s, ","); ok {
		s = rest
	}
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: day %q", core.ErrInvalidDate, fields[0])
	}
	month := monthNumber(fields[1])
	if month == 0 {
		return core.Date{}, fmt.Errorf("%w: month %q", core.ErrInvalidDate, fields[1])
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: year %q", core.ErrInvalidDate, fields[2])
	}
	d := core.NewDate(year, month, day)
	if d.Day() != day || d.Month() != month {
		return core.Date{}, fmt.Errorf("%w: no day %d in %s", core.ErrInvalidDate, day, fields[1])
	}
	return d, nil
}

func monthNumber(name string) int {
	for i := range monthsID {
		if strings.EqualFold(name, monthsID[i]) || strings.EqualFold(name, monthsEN[i]) {
			return i + 1
		}
	}
	return 0
}

// Kind returns the label of k in the formatter's language.
func (f *Formatter) Kind(k core.Kind) string {
	if f.indonesian {
		return k.String()
	}
	switch k {
	case core.KindIncome:
		return "Income"
	case core.KindExpense:
		return "Expense"
	default:
		return k.String()
	}
}

// Period renders p as "Maret 2024".
func (f *Formatter) Period(p core.Period) string {
	_, months := f.tables()
	if p.Month < 1 || p.Month > 12 {
		return p.String()
	}
	return fmt.Sprintf("%s %d", months[p.Month-1], p.Year)
}

func (f *Formatter) tables() ([7]string, [12]string) {
	if f.indonesian {
		return weekdaysID, monthsID
	}
	return weekdaysEN, monthsEN
}
