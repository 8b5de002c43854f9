package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SortOption is one of the six orderings offered for transactions and bills.
type SortOption string

const (
	SortLatest  SortOption = "Latest"
	SortOldest  SortOption = "Oldest"
	SortAToZ    SortOption = "A to Z"
	SortZToA    SortOption = "Z to A"
	SortHighest SortOption = "Highest"
	SortLowest  SortOption = "Lowest"
)

var sortOptions = []SortOption{SortLatest, SortOldest, SortAToZ, SortZToA, SortHighest, SortLowest}

// ParseSortOption maps a client value to a SortOption. Empty selects Latest;
// matching ignores case.
func ParseSortOption(s string) (SortOption, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortLatest, nil
	}
	for _, o := range sortOptions {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", invalid("sort", "is not a known sort option")
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// maxPage keeps Offset inside int32 for every limit.
	maxPage = math.MaxInt32 / MaxPageLimit
)

// FoldName is the case folding used wherever names are searched or sorted,
// in SQL and in Go alike.
func FoldName(s string) string {
	return strings.ToLower(s)
}

// CompareNames orders names ignoring case.
func CompareNames(a, b string) int {
	return strings.Compare(FoldName(a), FoldName(b))
}

// NameContains reports whether needle occurs in name ignoring case.
func NameContains(name, needle string) bool {
	return strings.Contains(FoldName(name), FoldName(needle))
}

// TransactionQuery selects one page of an account's transactions.
type TransactionQuery struct {
	Page     int
	Limit    int
	Search   string
	Sort     SortOption
	Category Category
}

// Normalize fills defaults and clamps paging values.
func (q TransactionQuery) Normalize() (TransactionQuery, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > maxPage {
		q.Page = maxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Sort == "" {
		q.Sort = SortLatest
	}
	q.Search = strings.TrimSpace(q.Search)
	if q.Category != "" && !q.Category.Valid() {
		return q, invalid("category", "is not a known category")
	}
	return q, nil
}

// Offset is the number of rows skipped before the requested page.
func (q TransactionQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type TransactionPage struct {
	Items []Transaction `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Limit int           `json:"limit"`
}

// PageCount returns ceil(total/limit).
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// BudgetSummary is a budget with its live spend for the current period.
type BudgetSummary struct {
	Budget
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	LatestSpending []Transaction   `json:"latestSpending,omitempty"`
}

// NewBudgetSummary derives remaining = maximum - spent without clamping.
func NewBudgetSummary(b Budget, spent decimal.Decimal, latest []Transaction) BudgetSummary {
	return BudgetSummary{
		Budget:         b,
		Spent:          spent,
		Remaining:      b.Maximum.Sub(spent),
		LatestSpending: latest,
	}
}

// PotView is a pot with its derived progress fields.
type PotView struct {
	Pot
	Percentage decimal.Decimal `json:"percentage"`
	Remaining  decimal.Decimal `json:"remaining"`
}

func NewPotView(p Pot) PotView {
	return PotView{
		Pot:        p,
		Percentage: Percentage(p.Total, p.Target),
		Remaining:  p.Target.Sub(p.Total),
	}
}

// TransferResult is returned by pot deposits, withdrawals and deletes.
type TransferResult struct {
	Pot     *PotView        `json:"pot,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// BillStatus classifies a recurring bill against the current date.
type BillStatus string

const (
	BillPaid     BillStatus = "paid"
	BillUpcoming BillStatus = "upcoming"
	BillDueSoon  BillStatus = "due-soon"
)

// RecurringBill is a vendor inferred from recurring expense transactions.
type RecurringBill struct {
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	DueDay   int             `json:"dueDay"`
	LastPaid Date            `json:"lastPaid"`
	Status   BillStatus      `json:"status"`
}

type BillBucket struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func (b *BillBucket) add(amount decimal.Decimal) {
	b.Count++
	b.Total = b.Total.Add(amount.Abs())
}

// BillsSummary rolls up bills by status. Total and TotalAmount cover
// outstanding bills only and exclude paid ones.
type BillsSummary struct {
	Paid        BillBucket      `json:"paid"`
	Upcoming    BillBucket      `json:"upcoming"`
	DueSoon     BillBucket      `json:"dueSoon"`
	Total       int             `json:"total"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Summarize computes the rollup for bills.
func Summarize(bills []RecurringBill) BillsSummary {
	s := BillsSummary{
		Paid:        BillBucket{Total: decimal.Zero},
		Upcoming:    BillBucket{Total: decimal.Zero},
		DueSoon:     BillBucket{Total: decimal.Zero},
		TotalAmount: decimal.Zero,
	}
	for _, b := range bills {
		switch b.Status {
		case BillPaid:
			s.Paid.add(b.Amount)
		case BillDueSoon:
			s.DueSoon.add(b.Amount)
			s.Upcoming.add(b.Amount)
		default:
			s.Upcoming.add(b.Amount)
		}
	}
	s.Total = s.Upcoming.Count
	s.TotalAmount = s.Upcoming.Total
	return s
}

type RecurringBills struct {
	Bills   []RecurringBill `json:"bills"`
	Summary BillsSummary    `json:"summary"`
}

// Overview is the composed dashboard snapshot.
type Overview struct {
	Balance            decimal.Decimal `json:"balance"`
	Income             decimal.Decimal `json:"income"`
	Expenses           decimal.Decimal `json:"expenses"`
	Pots               []PotView       `json:"pots"`
	TotalSaved         decimal.Decimal `json:"totalSaved"`
	Budgets            []BudgetSummary `json:"budgets"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
	RecurringBills     BillsSummary    `json:"recurringBills"`
}
