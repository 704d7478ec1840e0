package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"transaksi/internal/core"
	"transaksi/internal/display"
	"transaksi/internal/ledger"
)

const helpText = `commands:
  list                 show the current period
  refresh              reload from the backend
  period <month> <year>
  select <n|id>        pick a row for edit or delete
  new                  record a transaction
  edit                 change the selected transaction
  delete               remove the selected transaction
  reset                clear the selection
  help
  quit
`

// console is a line-oriented front-end for the ledger controller.
type console struct {
	ctl *ledger.Controller
	f   *display.Formatter
	in  *bufio.Scanner
	now func() time.Time

	mu    sync.Mutex // guards out
	out   io.Writer
	draft ledger.Draft
}

func newConsole(ctl *ledger.Controller, f *display.Formatter, in io.Reader, out io.Writer, now func() time.Time) *console {
	c := &console{
		ctl: ctl,
		f:   f,
		in:  bufio.NewScanner(in),
		out: out,
		now: now,
	}
	ctl.Subscribe(c.render)
	return c
}

// run reads commands until quit or end of input.
func (c *console) run(ctx context.Context) error {
	c.printf("%s", helpText)
	if _, err := await(ctx, func() (ledger.View, error) { return c.ctl.Refresh(ctx) }); err != nil {
		c.printf("error: %v\n", err)
	}

	for {
		c.printf("> ")
		line, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "quit" || cmd == "exit" || cmd == "q" {
			return nil
		}
		if err := c.dispatch(ctx, cmd, args); err != nil {
			c.printf("error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *console) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		c.printf("%s", helpText)
	case "list", "ls":
		c.render(c.ctl.View())
	case "refresh":
		_, err := await(ctx, func() (ledger.View, error) { return c.ctl.Refresh(ctx) })
		return err
	case "period":
		return c.setPeriod(ctx, args)
	case "select":
		return c.selectRow(args)
	case "new":
		return c.create(ctx)
	case "edit":
		return c.update(ctx)
	case "delete", "rm":
		_, err := await(ctx, func() (struct{}, error) {
			return struct{}{}, c.ctl.Delete(ctx, c.confirm)
		})
		return err
	case "reset":
		c.ctl.Reset()
		c.printf("selection cleared\n")
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (c *console) setPeriod(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: usage: period <month> <year>", core.ErrInvalidPeriod)
	}
	month, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: month %q", core.ErrInvalidPeriod, args[0])
	}
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: year %q", core.ErrInvalidPeriod, args[1])
	}
	_, err = await(ctx, func() (ledger.View, error) {
		return c.ctl.SetPeriod(ctx, core.Period{Month: month, Year: year})
	})
	return err
}

// selectRow accepts a 1-based row number from the last listing or an id.
func (c *console) selectRow(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select <n|id>")
	}
	id := args[0]
	rows := c.ctl.View().Transactions
	if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(rows) {
		id = rows[n-1].ID
	}
	d, err := c.ctl.Select(id)
	if err != nil {
		return err
	}
	c.draft = d
	c.printf("selected %s: %s %s %s\n", id, c.f.Kind(d.Kind), d.Amount, c.f.Date(d.Date))
	return nil
}

func (c *console) create(ctx context.Context) error {
	d := ledger.NewDraft(c.now())
	if err := c.fill(&d); err != nil {
		return err
	}
	id, err := await(ctx, func() (string, error) { return c.ctl.Create(ctx, d) })
	if id != "" {
		c.printf("created %s\n", id)
	}
	return err
}

func (c *console) update(ctx context.Context) error {
	if _, ok := c.ctl.Selected(); !ok {
		return core.ErrNoSelection
	}
	d := c.draft
	if err := c.fill(&d); err != nil {
		return err
	}
	_, err := await(ctx, func() (struct{}, error) { return struct{}{}, c.ctl.Update(ctx, d) })
	return err
}

// fill prompts for every field of d. An empty answer keeps the shown value
// and "-" clears a text field.
func (c *console) fill(d *ledger.Draft) error {
	answer, err := c.ask("type", c.f.Kind(d.Kind))
	if err != nil {
		return err
	}
	if answer != "" {
		if d.Kind, err = core.ParseKind(answer); err != nil {
			return fmt.Errorf("type %q: %w", answer, err)
		}
	}

	if answer, err = c.ask("amount", d.Amount); err != nil {
		return err
	}
	if answer != "" {
		// Only digits and '.' reach the draft; Build validates them.
		d.Amount = c.f.SanitizeAmount(answer)
	}

	if answer, err = c.ask("date", c.f.Date(d.Date)); err != nil {
		return err
	}
	if answer != "" {
		if d.Date, err = c.f.ParseDate(answer); err != nil {
			return err
		}
	}

	if d.Description, err = c.askText("description", d.Description); err != nil {
		return err
	}
	if !d.ShowsContact() {
		return nil
	}
	if d.Buyer, err = c.askText("buyer", d.Buyer); err != nil {
		return err
	}
	if d.Phone, err = c.askText("phone", d.Phone); err != nil {
		return err
	}
	d.Address, err = c.askText("address", d.Address)
	return err
}

func (c *console) confirm(t core.Transaction) bool {
	label := t.Description
	if label == "" {
		label = t.ID
	}
	answer, err := c.ask(fmt.Sprintf("delete %s (%s)? [y/N]", label, c.f.Amount(t.Amount)), "")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes" || answer == "ya"
}

func (c *console) askText(label, current string) (string, error) {
	answer, err := c.ask(label, current)
	switch {
	case err != nil:
		return current, err
	case answer == "":
		return current, nil
	case answer == "-":
		return "", nil
	default:
		return answer, nil
	}
}

func (c *console) ask(label, current string) (string, error) {
	if current != "" {
		c.printf("%s [%s]: ", label, current)
	} else {
		c.printf("%s: ", label)
	}
	line, ok := c.readLine()
	if !ok {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(line), nil
}

func (c *console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

// render prints a view as a table followed by its totals.
func (c *console) render(v ledger.View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\n%s\n", c.f.Period(v.Period))
	if len(v.Transactions) == 0 {
		fmt.Fprintln(c.out, "  (no transactions)")
	} else {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for i, t := range v.Transactions {
			buyer := ""
			if t.Contact != nil && t.Contact.Buyer != "" {
				buyer = "(" + t.Contact.Buyer + ")"
			}
			fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s\t%s %s\n", i+1,
				c.f.Date(t.Date), c.f.Kind(t.Kind), c.f.Amount(t.Amount), t.Description, buyer)
		}
		tw.Flush()
	}
	fmt.Fprintf(c.out, "  %s: %s  %s: %s  net: %s\n\n",
		c.f.Kind(core.KindIncome), c.f.Amount(v.Totals.Income),
		c.f.Kind(core.KindExpense), c.f.Amount(v.Totals.Expense),
		c.f.Amount(v.Totals.Net))
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// await runs fn through ledger.Async and stops waiting when ctx ends.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	select {
	case r := <-ledger.Async(fn):
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
