package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/raiyan37/Centinel/internal/core"
)

// DSN builds the connection string used for both the main pool and the
// migration connection. Transactions start with BEGIN IMMEDIATE so the
// database write lock is taken before the first read inside a transaction.
func DSN(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	clock   core.Clock
}

type Option func(*SQLiteRepository)

// WithClock sets the clock used for timestamps and for the statement period.
func WithClock(clock core.Clock) Option {
	return func(r *SQLiteRepository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		clock:   core.SystemClock(time.UTC),
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) now() time.Time {
	return r.clock()
}

// period returns the statement period at the current instant.
func (r *SQLiteRepository) period() core.Period {
	return core.PeriodAt(r.now())
}

// withTx runs fn inside a single database transaction, committing when fn
// returns nil and rolling back otherwise. The DSN makes it BEGIN IMMEDIATE,
// so it holds the write lock from the start.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	return r.runTx(ctx, nil, fn)
}

// readTx runs fn in a deferred transaction. Under WAL it reads one snapshot
// without taking the write lock; fn must not write.
func (r *SQLiteRepository) readTx(ctx context.Context, fn func(q *Queries) error) error {
	return r.runTx(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (r *SQLiteRepository) runTx(ctx context.Context, opts *sql.TxOptions, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateAccount provisions the single account of userID with a zero balance.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID string) (core.Account, error) {
	if userID == "" {
		return core.Account{}, &core.ValidationError{Field: "userId", Message: "is required"}
	}
	now := formatTimestamp(r.now())
	row := AccountRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.queries.CreateAccount(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, fmt.Errorf("%w: account for user %s already exists", core.ErrValidation, userID)
		}
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", row.ID, "user_id", userID)
	return row.toCore(), nil
}

// EnsureAccount returns the account of userID, creating it when missing.
func (r *SQLiteRepository) EnsureAccount(ctx context.Context, userID string) (core.Account, error) {
	acc, err := r.AccountByUser(ctx, userID)
	if err == nil || !errors.Is(err, core.ErrNotFound) {
		return acc, err
	}
	acc, err = r.CreateAccount(ctx, userID)
	if errors.Is(err, core.ErrValidation) {
		// Lost a race with a concurrent create.
		return r.AccountByUser(ctx, userID)
	}
	return acc, err
}

// AccountByUser looks up the account owned by userID.
func (r *SQLiteRepository) AccountByUser(ctx context.Context, userID string) (core.Account, error) {
	row, err := r.queries.GetAccountByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, core.NotFoundf("account for user", userID)
		}
		return core.Account{}, fmt.Errorf("get account by user: %w", err)
	}
	return row.toCore(), nil
}

// Scope returns the handle through which every transaction, budget and pot
// of accountID is read and written.
func (r *SQLiteRepository) Scope(accountID string) *AccountScope {
	return &AccountScope{repo: r, q: r.queries, accountID: accountID}
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// notFound converts sql.ErrNoRows into a domain not-found error and wraps
// anything else with the failed operation.
func notFound(err error, entity, id, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFoundf(entity, id)
	}
	return fmt.Errorf("%s: %w", op, err)
}
