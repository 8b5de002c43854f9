package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/core"
	"github.com/raiyan37/Centinel/internal/storage"
)

// latestSpendingLimit is how many recent expenses accompany each budget.
const latestSpendingLimit = 3

// BudgetService manages budgets and computes their live spend.
type BudgetService struct {
	*Ledger
}

func NewBudgetService(l *Ledger) *BudgetService {
	return &BudgetService{Ledger: l}
}

// List returns every budget with spent and remaining for the current period
// and its latest matching expenses.
func (s *BudgetService) List(ctx context.Context) ([]core.BudgetSummary, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	return budgetSummaries(ctx, sc, s.period(), true)
}

func (s *BudgetService) Get(ctx context.Context, id string) (core.BudgetSummary, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	b, err := sc.GetBudget(ctx, id)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	return summarizeBudget(ctx, sc, b, s.period())
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.BudgetSummary, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	created, err := sc.CreateBudget(ctx, b)
	if err != nil {
		return core.BudgetSummary{}, err
	}

	slog.InfoContext(ctx, "Budget created",
		"account_id", sc.AccountID(), "budget_id", created.ID, "category", created.Category)
	s.notifier.Notify(ctx, amqp.BudgetCreated, sc.AccountID(), created.ID)
	return summarizeBudget(ctx, sc, created, s.period())
}

func (s *BudgetService) Update(ctx context.Context, id string, patch core.BudgetPatch) (core.BudgetSummary, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	updated, err := sc.UpdateBudget(ctx, id, patch)
	if err != nil {
		return core.BudgetSummary{}, err
	}

	slog.InfoContext(ctx, "Budget updated", "account_id", sc.AccountID(), "budget_id", id)
	s.notifier.Notify(ctx, amqp.BudgetUpdated, sc.AccountID(), id)
	return summarizeBudget(ctx, sc, updated, s.period())
}

func (s *BudgetService) Delete(ctx context.Context, id string) error {
	sc, err := s.scope(ctx)
	if err != nil {
		return err
	}
	if err := sc.DeleteBudget(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget deleted", "account_id", sc.AccountID(), "budget_id", id)
	s.notifier.Notify(ctx, amqp.BudgetDeleted, sc.AccountID(), id)
	return nil
}

func summarizeBudget(ctx context.Context, sc *storage.AccountScope, b core.Budget, period core.Period) (core.BudgetSummary, error) {
	spent, err := sc.SpentByCategory(ctx, period)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	latest, err := sc.LatestExpenses(ctx, b.Category, latestSpendingLimit)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	return core.NewBudgetSummary(b, spentOrZero(spent, b.Category), latest), nil
}

// budgetSummaries derives spent and remaining for every budget from one
// grouped query over the period.
func budgetSummaries(ctx context.Context, sc *storage.AccountScope, period core.Period, withLatest bool) ([]core.BudgetSummary, error) {
	budgets, err := sc.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	spent, err := sc.SpentByCategory(ctx, period)
	if err != nil {
		return nil, err
	}

	out := make([]core.BudgetSummary, 0, len(budgets))
	for _, b := range budgets {
		var latest []core.Transaction
		if withLatest {
			if latest, err = sc.LatestExpenses(ctx, b.Category, latestSpendingLimit); err != nil {
				return nil, err
			}
		}
		out = append(out, core.NewBudgetSummary(b, spentOrZero(spent, b.Category), latest))
	}
	return out, nil
}

func spentOrZero(spent map[core.Category]decimal.Decimal, c core.Category) decimal.Decimal {
	if v, ok := spent[c]; ok {
		return v
	}
	return decimal.Zero
}
