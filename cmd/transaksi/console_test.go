package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"transaksi/internal/core"
	"transaksi/internal/display"
	"transaksi/internal/ledger"
	"transaksi/internal/memory"
)

func march2024() time.Time {
	return time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)
}

func runScript(t *testing.T, store *memory.Store, script string) string {
	t.Helper()
	ctl := ledger.New(store, ledger.WithClock(march2024))
	var out bytes.Buffer
	con := newConsole(ctl, display.New(language.Indonesian), strings.NewReader(script), &out, march2024)
	require.NoError(t, con.run(context.Background()))
	return out.String()
}

func TestConsoleCreateEditDelete(t *testing.T) {
	store := memory.New()
	script := strings.Join([]string{
		"new", "pemasukan", "150000", "2024-03-05", "sale", "Budi", "0812", "Jl. Mawar",
		"list",
		"select 1",
		"edit", "pengeluaran", "50000", "", "",
		"select 1",
		"delete", "y",
		"quit",
	}, "\n") + "\n"

	out := runScript(t, store, script)

	assert.Contains(t, out, "Maret 2024")
	assert.Contains(t, out, "Selasa, 5 Maret 2024")
	assert.Contains(t, out, "Rp. 150.000")
	assert.Contains(t, out, "(Budi)")
	assert.Contains(t, out, "-Rp. 50.000")
	assert.NotContains(t, out, "error:")
	assert.Equal(t, 0, store.Len())
}

func TestConsoleRejectsInvalidAmountLocally(t *testing.T) {
	store := memory.New()
	out := runScript(t, store, "new\npemasukan\nabc\n\n\n\n\n\nquit\n")

	assert.Contains(t, out, "error:")
	assert.Contains(t, out, core.ErrInvalidAmount.Error())
	assert.Equal(t, 0, store.Len())
}

func TestConsoleSanitizesLocalisedAmount(t *testing.T) {
	store := memory.New()
	runScript(t, store, "new\npengeluaran\nRp. 1.250.000\n2024-03-02\nsewa\nquit\n")

	all, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, decimal.NewFromInt(1250000).Equal(all[0].Amount), all[0].Amount.String())
}

func TestConsoleRequiresSelection(t *testing.T) {
	out := runScript(t, memory.New(), "edit\ndelete\nquit\n")
	assert.Equal(t, 2, strings.Count(out, core.ErrNoSelection.Error()))
}

func TestConsoleDeclinedDeleteKeepsRow(t *testing.T) {
	store := memory.New(core.Transaction{
		ID: "a", Kind: core.KindExpense, Amount: decimal.NewFromInt(2000), Date: core.NewDate(2024, 3, 1), Description: "ink",
	})
	out := runScript(t, store, "select a\ndelete\nn\nquit\n")

	assert.Contains(t, out, "delete ink (Rp. 2.000)? [y/N]")
	assert.Equal(t, 1, store.Len())
}

func TestConsolePeriod(t *testing.T) {
	store := memory.New(core.Transaction{
		ID: "a", Kind: core.KindIncome, Amount: decimal.NewFromInt(10), Date: core.NewDate(2024, 4, 2),
	})
	out := runScript(t, store, "period 4 2024\nperiod 13 2024\nperiod x\nbogus\nquit\n")

	assert.Contains(t, out, "April 2024")
	assert.Contains(t, out, "Rp. 10")
	assert.Equal(t, 3, strings.Count(out, "error:"))
	assert.Contains(t, out, `unknown command "bogus"`)
}
