package display

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"transaksi/internal/core"
)

func TestAmount(t *testing.T) {
	id := New(language.Indonesian)
	en := New(language.English)

	tests := []struct {
		in     string
		wantID string
		wantEN string
	}{
		{"0", "Rp. 0", "Rp. 0"},
		{"999", "Rp. 999", "Rp. 999"},
		{"150000", "Rp. 150.000", "Rp. 150,000"},
		{"1234567", "Rp. 1.234.567", "Rp. 1,234,567"},
		{"1234.5", "Rp. 1.234,5", "Rp. 1,234.5"},
		{"-50000", "-Rp. 50.000", "-Rp. 50,000"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		assert.Equal(t, tt.wantID, id.Amount(d), "id %s", tt.in)
		assert.Equal(t, tt.wantEN, en.Amount(d), "en %s", tt.in)
	}
}

func TestParseAmountInvertsAmount(t *testing.T) {
	for _, tag := range []language.Tag{language.Indonesian, language.English} {
		f := New(tag)
		for _, in := range []string{"0", "150000", "1234567", "1234.5", "0.25"} {
			want := decimal.RequireFromString(in)
			got, err := f.ParseAmount(f.Amount(want))
			require.NoError(t, err, "%v %s", tag, in)
			assert.True(t, want.Equal(got), "%v: %s != %s", tag, got, want)
		}
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	f := New(language.Indonesian)
	for _, in := range []string{"", "Rp. ", "12a.000", "-Rp. 5"} {
		_, err := f.ParseAmount(in)
		assert.ErrorIs(t, err, core.ErrInvalidAmount, in)
	}
}

func TestSanitizeAmount(t *testing.T) {
	id := New(language.Indonesian)
	assert.Equal(t, "150000", id.SanitizeAmount("Rp. 150.000"))
	assert.Equal(t, "1234.5", id.SanitizeAmount("1.234,5"))
	assert.Equal(t, "12000", id.SanitizeAmount("12a.000"))
	assert.Equal(t, "", id.SanitizeAmount("abc"))

	en := New(language.English)
	assert.Equal(t, "150000.5", en.SanitizeAmount("Rp. 150,000.5"))
	assert.Equal(t, "5", en.SanitizeAmount("-5"))
}

func TestDate(t *testing.T) {
	d := core.NewDate(2024, 3, 5)
	assert.Equal(t, "Selasa, 5 Maret 2024", New(language.Indonesian).Date(d))
	assert.Equal(t, "Tuesday, 5 March 2024", New(language.English).Date(d))
	assert.Empty(t, New(language.English).Date(core.Date{}))
}

func TestParseDate(t *testing.T) {
	f := New(language.Indonesian)
	want := core.NewDate(2024, 3, 5)

	for _, in := range []string{
		"Selasa, 5 Maret 2024",
		"5 maret 2024",
		"Tuesday, 5 March 2024",
		"2024-03-05",
	} {
		got, err := f.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"31 Februari 2024", "5 Maret", "x Maret 2024", "5 Marzo 2024"} {
		_, err := f.ParseDate(in)
		assert.ErrorIs(t, err, core.ErrInvalidDate, in)
	}
}

func TestDateRoundTrip(t *testing.T) {
	for _, tag := range []language.Tag{language.Indonesian, language.English} {
		f := New(tag)
		for _, d := range []core.Date{core.NewDate(2024, 2, 29), core.NewDate(1999, 12, 31), core.NewDate(2025, 1, 1)} {
			got, err := f.ParseDate(f.Date(d))
			require.NoError(t, err)
			assert.Equal(t, d, got)
		}
	}
}

func TestKindAndPeriod(t *testing.T) {
	id := New(language.Indonesian)
	en := New(language.English)
	assert.Equal(t, "Pemasukan", id.Kind(core.KindIncome))
	assert.Equal(t, "Expense", en.Kind(core.KindExpense))
	assert.Equal(t, "Maret 2024", id.Period(core.Period{Month: 3, Year: 2024}))
	assert.Equal(t, "March 2024", en.Period(core.Period{Month: 3, Year: 2024}))
}
