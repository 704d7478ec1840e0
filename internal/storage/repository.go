package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"transaksi/internal/core"
	applog "transaksi/internal/log"

	_ "modernc.org/sqlite"
)

// updatedAtLayout is fixed-width so updated_at sorts correctly as text.
const updatedAtLayout = "2006-01-02 15:04:05.000000000"

// connPragmas apply to every pooled connection: writers wait for the lock
// instead of failing with SQLITE_BUSY, and WAL lets readers run during writes.
const connPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

const selectColumns = `SELECT id, type, amount, date, description, buyer, phone, address, updated_at FROM transaksi`

// SQLiteRepository stores transactions in a single SQLite table. Every
// operation checks out its own connection and returns it before exiting;
// the pool keeps no idle connections, so nothing stays open between calls.
type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxIdleConns(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		now:    time.Now,
		logger: slog.Default().With(applog.FieldComponent, applog.ComponentStorage),
	}, nil
}

// DSN is the driver connection string for the database file at path.
func DSN(path string) string {
	return "file:" + path + connPragmas
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SetClock replaces the clock used for updated_at stamps.
func (r *SQLiteRepository) SetClock(now func() time.Time) {
	r.now = now
}

// OpenConnections reports connections currently held by the pool.
func (r *SQLiteRepository) OpenConnections() int {
	return r.db.Stats().OpenConnections
}

func (r *SQLiteRepository) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// ListTransactions returns every row ordered by date, newest first, ties by
// most recent update.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		out, err = queryTransactions(ctx, conn, selectColumns+` ORDER BY date DESC, updated_at DESC`)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// ListTransactionsByPeriod filters on the calendar month and year of the stored date.
func (r *SQLiteRepository) ListTransactionsByPeriod(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		out, err = queryTransactions(ctx, conn,
			selectColumns+` WHERE strftime('%m', date) = ? AND strftime('%Y', date) = ? ORDER BY date DESC, updated_at DESC`,
			fmt.Sprintf("%02d", p.Month), fmt.Sprintf("%04d", p.Year))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", p, err)
	}
	return out, nil
}

// InsertTransaction stores t. A duplicate id yields core.ErrValidationRejected.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	buyer, phone, address := contactColumns(t.Contact)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO transaksi (id, type, amount, date, description, buyer, phone, address, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			t.ID, string(t.Kind), t.Amount.String(), t.Date.String(), t.Description,
			buyer, phone, address, r.stamp())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: duplicate id %s", core.ErrValidationRejected, t.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldTransactionID, t.ID,
		applog.FieldType, t.Kind,
		applog.FieldAmount, t.Amount.String(),
		applog.FieldDate, t.Date.String())
	return nil
}

// UpdateTransaction replaces every column except id. A missing row yields core.ErrNotFound.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, t core.Transaction) error {
	buyer, phone, address := contactColumns(t.Contact)
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`UPDATE transaksi SET type = ?, amount = ?, date = ?, description = ?,
			 buyer = ?, phone = ?, address = ?, updated_at = ? WHERE id = ?`,
			string(t.Kind), t.Amount.String(), t.Date.String(), t.Description,
			buyer, phone, address, r.stamp(), id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes the row. A missing row yields core.ErrNotFound.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM transaksi WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction deleted from SQLite",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	return nil
}

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(updatedAtLayout)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return nil
}

func queryTransactions(ctx context.Context, conn *sql.Conn, query string, args ...any) ([]core.Transaction, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t                     core.Transaction
			kind, date, updatedAt string
			amount                decimal.Decimal
			buyer, phone, address sql.NullString
		)
		if err := rows.Scan(&t.ID, &kind, &amount, &date, &t.Description, &buyer, &phone, &address, &updatedAt); err != nil {
			return nil, err
		}
		if t.Kind, err = core.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("row %s: %w", t.ID, err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("row %s: %w", t.ID, err)
		}
		t.Amount = amount
		if ts, err := time.Parse(updatedAtLayout, updatedAt); err == nil {
			t.UpdatedAt = ts
		}
		if t.Kind == core.KindIncome {
			t.Contact = &core.Contact{Buyer: buyer.String, Phone: phone.String, Address: address.String}
		}
		out = append(out, t.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func contactColumns(c *core.Contact) (buyer, phone, address sql.NullString) {
	if c == nil {
		return
	}
	return sql.NullString{String: c.Buyer, Valid: true},
		sql.NullString{String: c.Phone, Valid: true},
		sql.NullString{String: c.Address, Valid: true}
}
