package services

import (
	"context"
	"log/slog"

	"github.com/raiyan37/Centinel/internal/cache"
	"github.com/raiyan37/Centinel/internal/core"
	"github.com/raiyan37/Centinel/internal/storage"
)

const (
	overviewView = "overview"

	overviewPots         = 4
	overviewTransactions = 5
)

// OverviewService composes the dashboard snapshot of the caller's account.
type OverviewService struct {
	*Ledger
	cache cache.Cache[core.Overview]
}

// NewOverviewService accepts a nil cache, in which case every call reads
// through to the store.
func NewOverviewService(l *Ledger, c cache.Cache[core.Overview]) *OverviewService {
	return &OverviewService{Ledger: l, cache: c}
}

func (s *OverviewService) Get(ctx context.Context) (core.Overview, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.Overview{}, err
	}

	key := cache.Key(overviewView, sc.AccountID())
	gen := s.notifier.generation(sc.AccountID())
	if s.cache != nil {
		if ov, ok := s.cache.Get(ctx, key); ok {
			slog.DebugContext(ctx, "Overview cache hit", "account_id", sc.AccountID())
			return ov, nil
		}
	}

	var ov core.Overview
	err = sc.Snapshot(ctx, func(view *storage.AccountScope) error {
		var err error
		ov, err = s.compose(ctx, view)
		return err
	})
	if err != nil {
		return core.Overview{}, err
	}

	if s.cache != nil && !s.notifier.fill(ctx, s.cache, sc.AccountID(), gen, ov) {
		slog.DebugContext(ctx, "Overview changed while composing, not cached", "account_id", sc.AccountID())
	}
	return ov, nil
}

func (s *OverviewService) compose(ctx context.Context, view *storage.AccountScope) (core.Overview, error) {
	var (
		ov  core.Overview
		err error
	)
	if ov.Balance, err = view.Balance(ctx); err != nil {
		return ov, err
	}
	if ov.Income, ov.Expenses, err = view.LifetimeTotals(ctx); err != nil {
		return ov, err
	}

	pots, err := view.ListPots(ctx, overviewPots)
	if err != nil {
		return ov, err
	}
	ov.Pots = potViews(pots)
	if ov.TotalSaved, err = view.TotalSaved(ctx); err != nil {
		return ov, err
	}

	if ov.Budgets, err = budgetSummaries(ctx, view, s.period(), false); err != nil {
		return ov, err
	}
	if ov.RecentTransactions, err = view.RecentTransactions(ctx, overviewTransactions); err != nil {
		return ov, err
	}

	recurring, err := view.RecurringExpenses(ctx)
	if err != nil {
		return ov, err
	}
	ov.RecurringBills = core.Summarize(ClassifyBills(recurring, s.clock()))
	return ov, nil
}
