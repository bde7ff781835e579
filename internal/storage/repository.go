package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"

	_ "modernc.org/sqlite"
)

// ErrStoreUnavailable is returned when a connection to the store cannot be acquired.
var ErrStoreUnavailable = errors.New("store unavailable")

// SQLiteRepository is the persistent ledger of the authenticated account.
type SQLiteRepository struct {
	db  *sql.DB
	dsn string
}

var (
	_ ledger.Opener = (*SQLiteRepository)(nil)
	_ ledger.Pinger = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository opens a handle on dsn. No connection is made until the
// first request, and the schema is not touched; see Init.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	if path := dsnPath(dsn); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return &SQLiteRepository{db: db, dsn: dsn}, nil
}

// Init creates the transactions table when missing.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return RunMigrations(r.dsn)
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Open pins one connection for the caller. The returned Release must be
// called on every exit path; deferring it right after the error check is
// the intended use.
func (r *SQLiteRepository) Open(ctx context.Context) (ledger.Ledger, ledger.Release, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	l := &ConnLedger{conn: conn}
	return l, l.Close, nil
}

// ConnLedger runs every ledger operation on a single pinned connection.
type ConnLedger struct {
	conn     *sql.Conn
	once     sync.Once
	closeErr error
}

var _ ledger.Ledger = (*ConnLedger)(nil)

// Close returns the connection to the pool. Later calls are no-ops.
func (c *ConnLedger) Close() error {
	c.once.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// Record inserts the entry and reads back the id and date assigned by the store.
func (c *ConnLedger) Record(ctx context.Context, e core.Entry) (core.Transaction, error) {
	if err := e.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var (
		id   int64
		date string
	)
	err := c.conn.QueryRowContext(ctx,
		`INSERT INTO transactions (type, category, amount) VALUES (?, ?, ?) RETURNING id, date`,
		string(e.Type), e.Category, core.ToMinorUnits(e.Amount),
	).Scan(&id, &date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	at, err := parseStoredDate(date)
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		ID:       id,
		Type:     e.Type,
		Category: e.Category,
		Amount:   e.Amount,
		Date:     at,
	}, nil
}

func (c *ConnLedger) Sum(ctx context.Context, t core.TransactionType) (decimal.Decimal, error) {
	var units int64
	err := c.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = ?`, string(t),
	).Scan(&units)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s: %w", t, err)
	}
	return core.FromMinorUnits(units), nil
}

// ListAll scans the whole table, newest first. There is no paging.
func (c *ConnLedger) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT id, type, category, amount, date FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx    core.Transaction
			typ   string
			units int64
			date  string
		)
		if err := rows.Scan(&tx.ID, &typ, &tx.Category, &units, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		tx.Amount = core.FromMinorUnits(units)
		if tx.Date, err = parseStoredDate(date); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

var storedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseStoredDate(s string) (time.Time, error) {
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse stored date %q", s)
}

// dsnPath extracts the file path from a sqlite dsn, or "" for in-memory databases.
func dsnPath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return path
}
