package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/raiyan37/Centinel/internal/core"
)

// DueSoonWindow is how many days ahead an unpaid bill counts as due soon.
const DueSoonWindow = 5

// RecurringBillService lists the bills inferred from recurring expenses.
type RecurringBillService struct {
	*Ledger
}

func NewRecurringBillService(l *Ledger) *RecurringBillService {
	return &RecurringBillService{Ledger: l}
}

// List classifies the caller's bills against today, then applies search and
// sort. The summary always covers the unfiltered set.
func (s *RecurringBillService) List(ctx context.Context, search string, sortBy core.SortOption) (core.RecurringBills, error) {
	sc, err := s.scope(ctx)
	if err != nil {
		return core.RecurringBills{}, err
	}
	if sortBy == "" {
		sortBy = core.SortLatest
	}
	txns, err := sc.RecurringExpenses(ctx)
	if err != nil {
		return core.RecurringBills{}, err
	}

	bills := ClassifyBills(txns, s.clock())
	return core.RecurringBills{
		Bills:   FilterAndSortBills(bills, search, sortBy),
		Summary: core.Summarize(bills),
	}, nil
}

// ClassifyBills groups recurring expenses by exact name and classifies each
// group from its latest transaction. Non-recurring or non-expense entries
// are ignored. The result is ordered by name.
func ClassifyBills(txns []core.Transaction, now time.Time) []core.RecurringBill {
	latest := make(map[string]core.Transaction)
	for _, t := range txns {
		if !t.Recurring || !t.IsExpense() {
			continue
		}
		cur, ok := latest[t.Name]
		if !ok || isLater(t, cur) {
			latest[t.Name] = t
		}
	}

	today := core.DateOf(now)
	bills := make([]core.RecurringBill, 0, len(latest))
	for _, rep := range latest {
		bills = append(bills, core.RecurringBill{
			Name:     rep.Name,
			Category: rep.Category,
			Amount:   rep.Amount,
			DueDay:   rep.Date.Day(),
			LastPaid: rep.Date,
			Status:   billStatus(rep.Date, today),
		})
	}
	sort.Slice(bills, func(i, j int) bool { return bills[i].Name < bills[j].Name })
	return bills
}

func isLater(a, b core.Transaction) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.After(b.Date.Time)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// billStatus decides paid, due-soon or upcoming for a bill last paid on
// lastPaid, as seen on today.
func billStatus(lastPaid, today core.Date) core.BillStatus {
	if lastPaid.Year() == today.Year() && lastPaid.Month() == today.Month() {
		return core.BillPaid
	}
	dueDay := lastPaid.Day()
	if dueDay > today.Day() && dueDay <= today.Day()+DueSoonWindow {
		return core.BillDueSoon
	}
	return core.BillUpcoming
}

// FilterAndSortBills keeps bills whose name contains search (ignoring case)
// and orders them by sortBy, breaking ties by name.
func FilterAndSortBills(bills []core.RecurringBill, search string, sortBy core.SortOption) []core.RecurringBill {
	needle := strings.TrimSpace(search)
	out := make([]core.RecurringBill, 0, len(bills))
	for _, b := range bills {
		if needle == "" || core.NameContains(b.Name, needle) {
			out = append(out, b)
		}
	}

	less := billOrder(sortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if c := less(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// billOrder returns a three-way comparison for the primary sort key.
func billOrder(sortBy core.SortOption) func(a, b core.RecurringBill) int {
	switch sortBy {
	case core.SortOldest:
		return func(a, b core.RecurringBill) int { return a.DueDay - b.DueDay }
	case core.SortAToZ:
		return func(a, b core.RecurringBill) int { return core.CompareNames(a.Name, b.Name) }
	case core.SortZToA:
		return func(a, b core.RecurringBill) int { return core.CompareNames(b.Name, a.Name) }
	case core.SortHighest:
		return func(a, b core.RecurringBill) int { return b.Amount.Abs().Cmp(a.Amount.Abs()) }
	case core.SortLowest:
		return func(a, b core.RecurringBill) int { return a.Amount.Abs().Cmp(b.Amount.Abs()) }
	default:
		return func(a, b core.RecurringBill) int { return b.DueDay - a.DueDay }
	}
}
