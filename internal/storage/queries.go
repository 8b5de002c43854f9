package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/raiyan37/Centinel/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the raw SQL for the ledger tables. Every method touching
// transactions, budgets or pots takes the owning account id and filters on it.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const timestampLayout = time.RFC3339Nano

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(timestampLayout, s)
	return t
}

func parseStoredDate(s string) core.Date {
	d, _ := core.ParseDate(s)
	return d
}

// Accounts

type AccountRow struct {
	ID           string
	UserID       string
	BalanceCents int64
	CreatedAt    string
	UpdatedAt    string
}

func (r AccountRow) toCore() core.Account {
	return core.Account{
		ID:        r.ID,
		UserID:    r.UserID,
		Balance:   core.FromCents(r.BalanceCents),
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

const accountColumns = `id, user_id, balance_cents, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (AccountRow, error) {
	var a AccountRow
	err := row.Scan(&a.ID, &a.UserID, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (q *Queries) CreateAccount(ctx context.Context, a AccountRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.BalanceCents, a.CreatedAt, a.UpdatedAt)
	return err
}

func (q *Queries) GetAccountByUser(ctx context.Context, userID string) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ?`, userID))
}

func (q *Queries) GetAccount(ctx context.Context, accountID string) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, accountID))
}

func (q *Queries) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM accounts WHERE id = ?`, accountID).Scan(&cents)
	return cents, err
}

// AddToBalance applies a signed delta to the account balance.
func (q *Queries) AddToBalance(ctx context.Context, accountID string, deltaCents int64, now string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
		deltaCents, now, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DebitBalanceIfSufficient subtracts amountCents only when the balance covers
// it. Zero rows affected means the balance was insufficient.
func (q *Queries) DebitBalanceIfSufficient(ctx context.Context, accountID string, amountCents int64, now string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents - ?, updated_at = ?
		 WHERE id = ? AND balance_cents >= ?`,
		amountCents, now, accountID, amountCents)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Transactions

type TransactionRow struct {
	ID          string
	AccountID   string
	Name        string
	Category    string
	Date        string
	AmountCents int64
	Recurring   bool
	CreatedAt   string
	UpdatedAt   string
}

func (r TransactionRow) toCore() core.Transaction {
	return core.Transaction{
		ID:        r.ID,
		AccountID: r.AccountID,
		Name:      r.Name,
		Category:  core.Category(r.Category),
		Date:      parseStoredDate(r.Date),
		Amount:    core.FromCents(r.AmountCents),
		Recurring: r.Recurring,
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

func transactionRowFrom(t core.Transaction) TransactionRow {
	return TransactionRow{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Name:        t.Name,
		Category:    string(t.Category),
		Date:        t.Date.String(),
		AmountCents: core.ToCents(t.Amount),
		Recurring:   t.Recurring,
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
}

const transactionColumns = `id, account_id, name, category, date, amount_cents, recurring, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(&t.ID, &t.AccountID, &t.Name, &t.Category, &t.Date,
		&t.AmountCents, &t.Recurring, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanTransactions(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var out []TransactionRow
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) CreateTransaction(ctx context.Context, t TransactionRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Name, t.Category, t.Date, t.AmountCents, t.Recurring, t.CreatedAt, t.UpdatedAt)
	return err
}

func (q *Queries) GetTransaction(ctx context.Context, accountID, id string) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND account_id = ?`, id, accountID))
}

func (q *Queries) UpdateTransaction(ctx context.Context, t TransactionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET name = ?, category = ?, date = ?, amount_cents = ?, recurring = ?, updated_at = ?
		 WHERE id = ? AND account_id = ?`,
		t.Name, t.Category, t.Date, t.AmountCents, t.Recurring, t.UpdatedAt, t.ID, t.AccountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteTransaction(ctx context.Context, accountID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var transactionOrder = map[core.SortOption]string{
	core.SortLatest:  `date DESC, created_at DESC, id`,
	core.SortOldest:  `date ASC, created_at ASC, id`,
	core.SortAToZ:    `name COLLATE ` + foldCollation + ` ASC, date DESC, created_at DESC, id`,
	core.SortZToA:    `name COLLATE ` + foldCollation + ` DESC, date DESC, created_at DESC, id`,
	core.SortHighest: `ABS(amount_cents) DESC, date DESC, created_at DESC, id`,
	core.SortLowest:  `ABS(amount_cents) ASC, date DESC, created_at DESC, id`,
}

func transactionFilter(accountID string, query core.TransactionQuery) (string, []any) {
	clauses := []string{"account_id = ?"}
	args := []any{accountID}
	if query.Search != "" {
		clauses = append(clauses, "instr("+foldFunction+"(name), ?) > 0")
		args = append(args, core.FoldName(query.Search))
	}
	if query.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(query.Category))
	}
	return strings.Join(clauses, " AND "), args
}

func (q *Queries) CountTransactions(ctx context.Context, accountID string, query core.TransactionQuery) (int, error) {
	where, args := transactionFilter(accountID, query)
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&n)
	return n, err
}

func (q *Queries) ListTransactions(ctx context.Context, accountID string, query core.TransactionQuery) ([]TransactionRow, error) {
	order, ok := transactionOrder[query.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort option %q", query.Sort)
	}
	where, args := transactionFilter(accountID, query)
	args = append(args, query.Limit, query.Offset())
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+
			` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (q *Queries) RecentTransactions(ctx context.Context, accountID string, limit int) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_id = ?
		 ORDER BY date DESC, created_at DESC, id LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

// LatestExpenses returns the most recent expense transactions in a category.
func (q *Queries) LatestExpenses(ctx context.Context, accountID, category string, limit int) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? AND category = ? AND amount_cents < 0
		 ORDER BY date DESC, created_at DESC, id LIMIT ?`, accountID, category, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

// RecurringExpenses returns every recurring expense of the account.
func (q *Queries) RecurringExpenses(ctx context.Context, accountID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? AND recurring = 1 AND amount_cents < 0
		 ORDER BY date DESC, created_at DESC, id`, accountID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

// SumInPeriod returns the sum of amounts dated in [start, end).
func (q *Queries) SumInPeriod(ctx context.Context, accountID, start, end string) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE account_id = ? AND date >= ? AND date < ?`, accountID, start, end).Scan(&sum)
	return sum, err
}

type CategorySpendRow struct {
	Category   string
	SpentCents int64
}

// SpentByCategory sums abs(amount) of expenses dated in [start, end) per category.
func (q *Queries) SpentByCategory(ctx context.Context, accountID, start, end string) ([]CategorySpendRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category, COALESCE(SUM(-amount_cents), 0) FROM transactions
		 WHERE account_id = ? AND amount_cents < 0 AND date >= ? AND date < ?
		 GROUP BY category`, accountID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategorySpendRow
	for rows.Next() {
		var r CategorySpendRow
		if err := rows.Scan(&r.Category, &r.SpentCents); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LifetimeTotals returns lifetime income and expenses (as a positive figure).
func (q *Queries) LifetimeTotals(ctx context.Context, accountID string) (income, expenses int64, err error) {
	err = q.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN amount_cents < 0 THEN -amount_cents ELSE 0 END), 0)
		 FROM transactions WHERE account_id = ?`, accountID).Scan(&income, &expenses)
	return income, expenses, err
}

// Budgets

type BudgetRow struct {
	ID           string
	AccountID    string
	Category     string
	MaximumCents int64
	Theme        string
	CreatedAt    string
	UpdatedAt    string
}

func (r BudgetRow) toCore() core.Budget {
	return core.Budget{
		ID:        r.ID,
		AccountID: r.AccountID,
		Category:  core.Category(r.Category),
		Maximum:   core.FromCents(r.MaximumCents),
		Theme:     core.Theme(r.Theme),
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

func budgetRowFrom(b core.Budget) BudgetRow {
	return BudgetRow{
		ID:           b.ID,
		AccountID:    b.AccountID,
		Category:     string(b.Category),
		MaximumCents: core.ToCents(b.Maximum),
		Theme:        string(b.Theme),
		CreatedAt:    formatTimestamp(b.CreatedAt),
		UpdatedAt:    formatTimestamp(b.UpdatedAt),
	}
}

const budgetColumns = `id, account_id, category, maximum_cents, theme, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (BudgetRow, error) {
	var b BudgetRow
	err := row.Scan(&b.ID, &b.AccountID, &b.Category, &b.MaximumCents, &b.Theme, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (q *Queries) CreateBudget(ctx context.Context, b BudgetRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.AccountID, b.Category, b.MaximumCents, b.Theme, b.CreatedAt, b.UpdatedAt)
	return err
}

func (q *Queries) GetBudget(ctx context.Context, accountID, id string) (BudgetRow, error) {
	return scanBudget(q.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND account_id = ?`, id, accountID))
}

func (q *Queries) ListBudgets(ctx context.Context, accountID string) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE account_id = ? ORDER BY rowid`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BudgetRow
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateBudget(ctx context.Context, b BudgetRow) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, maximum_cents = ?, theme = ?, updated_at = ?
		 WHERE id = ? AND account_id = ?`,
		b.Category, b.MaximumCents, b.Theme, b.UpdatedAt, b.ID, b.AccountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteBudget(ctx context.Context, accountID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Pots

type PotRow struct {
	ID          string
	AccountID   string
	Name        string
	TargetCents int64
	TotalCents  int64
	Theme       string
	CreatedAt   string
	UpdatedAt   string
}

func (r PotRow) toCore() core.Pot {
	return core.Pot{
		ID:        r.ID,
		AccountID: r.AccountID,
		Name:      r.Name,
		Target:    core.FromCents(r.TargetCents),
		Total:     core.FromCents(r.TotalCents),
		Theme:     core.Theme(r.Theme),
		CreatedAt: parseTimestamp(r.CreatedAt),
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

func potRowFrom(p core.Pot) PotRow {
	return PotRow{
		ID:          p.ID,
		AccountID:   p.AccountID,
		Name:        p.Name,
		TargetCents: core.ToCents(p.Target),
		TotalCents:  core.ToCents(p.Total),
		Theme:       string(p.Theme),
		CreatedAt:   formatTimestamp(p.CreatedAt),
		UpdatedAt:   formatTimestamp(p.UpdatedAt),
	}
}

const potColumns = `id, account_id, name, target_cents, total_cents, theme, created_at, updated_at`

func scanPot(row interface{ Scan(...any) error }) (PotRow, error) {
	var p PotRow
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.TargetCents, &p.TotalCents, &p.Theme, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) CreatePot(ctx context.Context, p PotRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO pots (`+potColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.Name, p.TargetCents, p.TotalCents, p.Theme, p.CreatedAt, p.UpdatedAt)
	return err
}

func (q *Queries) GetPot(ctx context.Context, accountID, id string) (PotRow, error) {
	return scanPot(q.db.QueryRowContext(ctx,
		`SELECT `+potColumns+` FROM pots WHERE id = ? AND account_id = ?`, id, accountID))
}

// ListPots returns pots in insertion order; limit <= 0 means all.
func (q *Queries) ListPots(ctx context.Context, accountID string, limit int) ([]PotRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+potColumns+` FROM pots WHERE account_id = ? ORDER BY rowid LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PotRow
	for rows.Next() {
		p, err := scanPot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) TotalSaved(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_cents), 0) FROM pots WHERE account_id = ?`, accountID).Scan(&sum)
	return sum, err
}

func (q *Queries) UpdatePot(ctx context.Context, p PotRow) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE pots SET name = ?, target_cents = ?, theme = ?, updated_at = ?
		 WHERE id = ? AND account_id = ?`,
		p.Name, p.TargetCents, p.Theme, p.UpdatedAt, p.ID, p.AccountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AddToPotTotal applies a signed delta to the pot total, refusing to take it
// below zero. Zero rows affected means the pot is missing or short.
func (q *Queries) AddToPotTotal(ctx context.Context, accountID, id string, deltaCents int64, now string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE pots SET total_cents = total_cents + ?, updated_at = ?
		 WHERE id = ? AND account_id = ? AND total_cents + ? >= 0`,
		deltaCents, now, id, accountID, deltaCents)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeletePot(ctx context.Context, accountID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM pots WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
