package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raiyan37/Centinel/internal/core"
)

// AccountScope reads and writes the rows of a single account. Every query it
// issues filters on the account id, so rows of other accounts are invisible.
type AccountScope struct {
	repo      *SQLiteRepository
	q         *Queries
	tx        bool
	accountID string
}

func (s *AccountScope) AccountID() string {
	return s.accountID
}

// write runs fn in a database transaction, or directly when the scope is
// already bound to one.
func (s *AccountScope) write(ctx context.Context, fn func(q *Queries) error) error {
	if s.tx {
		return fn(s.q)
	}
	return s.repo.withTx(ctx, fn)
}

// Snapshot runs fn against a scope bound to one read transaction so that
// every read inside it observes the same database state. Writers are not
// blocked meanwhile. fn must only read.
func (s *AccountScope) Snapshot(ctx context.Context, fn func(view *AccountScope) error) error {
	if s.tx {
		return fn(s)
	}
	return s.repo.readTx(ctx, func(q *Queries) error {
		return fn(&AccountScope{repo: s.repo, q: q, tx: true, accountID: s.accountID})
	})
}

// Account

func (s *AccountScope) Account(ctx context.Context) (core.Account, error) {
	row, err := s.q.GetAccount(ctx, s.accountID)
	if err != nil {
		return core.Account{}, notFound(err, "account", s.accountID, "get account")
	}
	return row.toCore(), nil
}

func (s *AccountScope) Balance(ctx context.Context) (decimal.Decimal, error) {
	cents, err := s.q.GetBalance(ctx, s.accountID)
	if err != nil {
		return decimal.Zero, notFound(err, "account", s.accountID, "get balance")
	}
	return core.FromCents(cents), nil
}

// applyDelta adds delta to the balance; it is the write side of the accrual
// engine and always runs in the caller's transaction.
func (s *AccountScope) applyDelta(ctx context.Context, q *Queries, delta decimal.Decimal, now string) error {
	if delta.IsZero() {
		return nil
	}
	n, err := q.AddToBalance(ctx, s.accountID, core.ToCents(delta), now)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	if n == 0 {
		return core.NotFoundf("account", s.accountID)
	}
	return nil
}

// Transactions

// CreateTransaction persists t and accrues its amount into the balance when
// it falls in the current statement period.
func (s *AccountScope) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := s.repo.now()
	t.ID = uuid.NewString()
	t.AccountID = s.accountID
	t.CreatedAt = now.UTC()
	t.UpdatedAt = now.UTC()

	err := s.write(ctx, func(q *Queries) error {
		if err := q.CreateTransaction(ctx, transactionRowFrom(t)); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return s.applyDelta(ctx, q, core.BalanceDelta(nil, &t, core.PeriodAt(now)), formatTimestamp(now))
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"account_id", s.accountID,
		"transaction_id", t.ID,
		"amount_cents", core.ToCents(t.Amount),
		"date", t.Date.String())
	return t, nil
}

func (s *AccountScope) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := s.q.GetTransaction(ctx, s.accountID, id)
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id, "get transaction")
	}
	return row.toCore(), nil
}

// UpdateTransaction merges patch into the stored transaction and reconciles
// the balance against the old and new versions.
func (s *AccountScope) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	var updated core.Transaction
	err := s.write(ctx, func(q *Queries) error {
		row, err := q.GetTransaction(ctx, s.accountID, id)
		if err != nil {
			return notFound(err, "transaction", id, "get transaction")
		}
		old := row.toCore()
		updated = patch.Apply(old)
		if err := updated.Validate(); err != nil {
			return err
		}
		now := s.repo.now()
		updated.UpdatedAt = now.UTC()

		n, err := q.UpdateTransaction(ctx, transactionRowFrom(updated))
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("transaction", id)
		}
		return s.applyDelta(ctx, q, core.BalanceDelta(&old, &updated, core.PeriodAt(now)), formatTimestamp(now))
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return updated, nil
}

// DeleteTransaction removes the transaction and reverses its contribution to
// the balance.
func (s *AccountScope) DeleteTransaction(ctx context.Context, id string) error {
	return s.write(ctx, func(q *Queries) error {
		row, err := q.GetTransaction(ctx, s.accountID, id)
		if err != nil {
			return notFound(err, "transaction", id, "get transaction")
		}
		old := row.toCore()

		n, err := q.DeleteTransaction(ctx, s.accountID, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("transaction", id)
		}
		now := s.repo.now()
		return s.applyDelta(ctx, q, core.BalanceDelta(&old, nil, core.PeriodAt(now)), formatTimestamp(now))
	})
}

// ListTransactions returns one page of transactions matching query.
func (s *AccountScope) ListTransactions(ctx context.Context, query core.TransactionQuery) (core.TransactionPage, error) {
	query, err := query.Normalize()
	if err != nil {
		return core.TransactionPage{}, err
	}

	page := core.TransactionPage{Page: query.Page, Limit: query.Limit, Items: []core.Transaction{}}
	err = s.Snapshot(ctx, func(view *AccountScope) error {
		total, err := view.q.CountTransactions(ctx, s.accountID, query)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		rows, err := view.q.ListTransactions(ctx, s.accountID, query)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		page.Total = total
		for _, r := range rows {
			page.Items = append(page.Items, r.toCore())
		}
		return nil
	})
	if err != nil {
		return core.TransactionPage{}, err
	}
	page.Pages = core.PageCount(page.Total, page.Limit)
	return page, nil
}

// RecentTransactions returns the n most recent transactions by date.
func (s *AccountScope) RecentTransactions(ctx context.Context, n int) ([]core.Transaction, error) {
	rows, err := s.q.RecentTransactions(ctx, s.accountID, n)
	if err != nil {
		return nil, fmt.Errorf("get recent transactions: %w", err)
	}
	return toTransactions(rows), nil
}

// LatestExpenses returns the n most recent expenses in category, from any period.
func (s *AccountScope) LatestExpenses(ctx context.Context, category core.Category, n int) ([]core.Transaction, error) {
	rows, err := s.q.LatestExpenses(ctx, s.accountID, string(category), n)
	if err != nil {
		return nil, fmt.Errorf("get latest expenses: %w", err)
	}
	return toTransactions(rows), nil
}

// RecurringExpenses returns every recurring transaction with a negative amount.
func (s *AccountScope) RecurringExpenses(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.q.RecurringExpenses(ctx, s.accountID)
	if err != nil {
		return nil, fmt.Errorf("get recurring expenses: %w", err)
	}
	return toTransactions(rows), nil
}

// LifetimeTotals returns all-time income and expenses, both non-negative.
func (s *AccountScope) LifetimeTotals(ctx context.Context) (income, expenses decimal.Decimal, err error) {
	in, out, err := s.q.LifetimeTotals(ctx, s.accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("get lifetime totals: %w", err)
	}
	return core.FromCents(in), core.FromCents(out), nil
}

// PeriodNet returns the sum of amounts dated inside period. With the accrual
// engine in place it equals the stored balance less pot transfers.
func (s *AccountScope) PeriodNet(ctx context.Context, period core.Period) (decimal.Decimal, error) {
	sum, err := s.q.SumInPeriod(ctx, s.accountID, period.Start.String(), period.End.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum period transactions: %w", err)
	}
	return core.FromCents(sum), nil
}

func toTransactions(rows []TransactionRow) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCore())
	}
	return out
}

// Budgets

func (s *AccountScope) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	now := s.repo.now().UTC()
	b.ID = uuid.NewString()
	b.AccountID = s.accountID
	b.CreatedAt = now
	b.UpdatedAt = now

	err := s.write(ctx, func(q *Queries) error {
		if err := q.CreateBudget(ctx, budgetRowFrom(b)); err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateCategoryOrTheme
			}
			return fmt.Errorf("create budget: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *AccountScope) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row, err := s.q.GetBudget(ctx, s.accountID, id)
	if err != nil {
		return core.Budget{}, notFound(err, "budget", id, "get budget")
	}
	return row.toCore(), nil
}

func (s *AccountScope) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := s.q.ListBudgets(ctx, s.accountID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCore())
	}
	return out, nil
}

func (s *AccountScope) UpdateBudget(ctx context.Context, id string, patch core.BudgetPatch) (core.Budget, error) {
	var updated core.Budget
	err := s.write(ctx, func(q *Queries) error {
		row, err := q.GetBudget(ctx, s.accountID, id)
		if err != nil {
			return notFound(err, "budget", id, "get budget")
		}
		updated = patch.Apply(row.toCore())
		if err := updated.Validate(); err != nil {
			return err
		}
		updated.UpdatedAt = s.repo.now().UTC()

		n, err := q.UpdateBudget(ctx, budgetRowFrom(updated))
		if err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateCategoryOrTheme
			}
			return fmt.Errorf("update budget: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("budget", id)
		}
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}
	return updated, nil
}

func (s *AccountScope) DeleteBudget(ctx context.Context, id string) error {
	return s.write(ctx, func(q *Queries) error {
		n, err := q.DeleteBudget(ctx, s.accountID, id)
		if err != nil {
			return fmt.Errorf("delete budget: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("budget", id)
		}
		return nil
	})
}

// SpentByCategory returns, per category, the absolute sum of expenses dated
// inside period. Categories without expenses are absent.
func (s *AccountScope) SpentByCategory(ctx context.Context, period core.Period) (map[core.Category]decimal.Decimal, error) {
	rows, err := s.q.SpentByCategory(ctx, s.accountID, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("get spent by category: %w", err)
	}
	out := make(map[core.Category]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[core.Category(r.Category)] = core.FromCents(r.SpentCents)
	}
	return out, nil
}
