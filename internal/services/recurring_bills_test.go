package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raiyan37/Centinel/internal/core"
)

func TestBillStatus(t *testing.T) {
	today := core.NewDate(2025, 6, 15)

	tests := []struct {
		name     string
		lastPaid core.Date
		want     core.BillStatus
	}{
		{"paid this month before today", core.NewDate(2025, 6, 3), core.BillPaid},
		{"paid this month after today", core.NewDate(2025, 6, 28), core.BillPaid},
		{"due tomorrow", core.NewDate(2025, 5, 16), core.BillDueSoon},
		{"due at the edge of the window", core.NewDate(2025, 5, 20), core.BillDueSoon},
		{"due just past the window", core.NewDate(2025, 5, 21), core.BillUpcoming},
		{"due today counts as upcoming", core.NewDate(2025, 5, 15), core.BillUpcoming},
		{"due earlier in the month", core.NewDate(2025, 5, 2), core.BillUpcoming},
		{"same month of an earlier year", core.NewDate(2024, 6, 10), core.BillUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := billStatus(tt.lastPaid, today); got != tt.want {
				t.Errorf("billStatus(%s) = %v, want %v", tt.lastPaid, got, tt.want)
			}
		})
	}
}

func bill(name string, amount string, date core.Date, createdAt time.Time) core.Transaction {
	return core.Transaction{
		Name:      name,
		Category:  core.CategoryBills,
		Amount:    decimal.RequireFromString(amount),
		Date:      date,
		Recurring: true,
		CreatedAt: createdAt,
	}
}

func TestClassifyBills(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	salary := bill("Salary", "3000", core.NewDate(2025, 6, 1), created)
	oneOff := bill("Plumber", "-90", core.NewDate(2025, 5, 17), created)
	oneOff.Recurring = false

	txns := []core.Transaction{
		bill("Netflix", "-15.00", core.NewDate(2025, 4, 10), created),
		bill("Netflix", "-15.99", core.NewDate(2025, 5, 10), created),
		bill("Gym", "-40", core.NewDate(2025, 5, 18), created),
		bill("Rent", "-1200", core.NewDate(2025, 6, 1), created),
		// Same date: the later insert wins.
		bill("Spotify", "-9.99", core.NewDate(2025, 5, 30), created),
		bill("Spotify", "-10.99", core.NewDate(2025, 5, 30), created.Add(time.Hour)),
		salary,
		oneOff,
	}

	bills := ClassifyBills(txns, now)
	require.Len(t, bills, 4)

	byName := make(map[string]core.RecurringBill, len(bills))
	for _, b := range bills {
		byName[b.Name] = b
	}

	assert.Equal(t, []string{"Gym", "Netflix", "Rent", "Spotify"},
		[]string{bills[0].Name, bills[1].Name, bills[2].Name, bills[3].Name})

	assert.Equal(t, "-15.99", byName["Netflix"].Amount.StringFixed(2))
	assert.Equal(t, 10, byName["Netflix"].DueDay)
	assert.Equal(t, core.BillUpcoming, byName["Netflix"].Status)

	assert.Equal(t, core.BillDueSoon, byName["Gym"].Status)
	assert.Equal(t, core.BillPaid, byName["Rent"].Status)
	assert.Equal(t, "-10.99", byName["Spotify"].Amount.StringFixed(2))
	assert.Equal(t, 30, byName["Spotify"].DueDay)

	summary := core.Summarize(bills)
	assert.Equal(t, 1, summary.Paid.Count)
	assert.Equal(t, "1200.00", summary.Paid.Total.StringFixed(2))
	assert.Equal(t, 1, summary.DueSoon.Count)
	assert.Equal(t, "40.00", summary.DueSoon.Total.StringFixed(2))
	assert.Equal(t, 3, summary.Upcoming.Count)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, "66.98", summary.TotalAmount.StringFixed(2))
}

func TestFilterAndSortBills(t *testing.T) {
	bills := []core.RecurringBill{
		{Name: "Rent", Amount: decimal.RequireFromString("-1200"), DueDay: 1},
		{Name: "netflix", Amount: decimal.RequireFromString("-15.99"), DueDay: 10},
		{Name: "Gym", Amount: decimal.RequireFromString("-40"), DueDay: 10},
		{Name: "Phone", Amount: decimal.RequireFromString("-40"), DueDay: 25},
	}

	names := func(bs []core.RecurringBill) []string {
		out := make([]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, b.Name)
		}
		return out
	}

	tests := []struct {
		sort   core.SortOption
		search string
		want   []string
	}{
		{core.SortLatest, "", []string{"Phone", "Gym", "netflix", "Rent"}},
		{core.SortOldest, "", []string{"Rent", "Gym", "netflix", "Phone"}},
		{core.SortAToZ, "", []string{"Gym", "netflix", "Phone", "Rent"}},
		{core.SortZToA, "", []string{"Rent", "Phone", "netflix", "Gym"}},
		{core.SortHighest, "", []string{"Rent", "Gym", "Phone", "netflix"}},
		{core.SortLowest, "", []string{"netflix", "Gym", "Phone", "Rent"}},
		{core.SortLatest, "NET", []string{"netflix"}},
		{core.SortAToZ, "  e ", []string{"netflix", "Phone", "Rent"}},
		{core.SortLatest, "nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort)+"/"+tt.search, func(t *testing.T) {
			got := FilterAndSortBills(bills, tt.search, tt.sort)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		accented := append([]core.RecurringBill{{Name: "Électricité", DueDay: 3}}, bills...)
		assert.Equal(t, []string{"Électricité"}, names(FilterAndSortBills(accented, "ÉLEC", core.SortLatest)))
		assert.Equal(t, []string{"Électricité"}, names(FilterAndSortBills(accented, "électricité", core.SortLatest)))
	})

	// Input order is untouched.
	assert.Equal(t, "Rent", bills[0].Name)
}
