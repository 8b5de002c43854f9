package core

import (
	"errors"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodAtLocalZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	cases := []struct {
		name  string
		now   time.Time
		start Date
		end   Date
	}{
		{"mid month", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), NewDate(2025, 6, 1), NewDate(2025, 7, 1)},
		{"december rolls the year", time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), NewDate(2025, 12, 1), NewDate(2026, 1, 1)},
		// 2025-06-30 20:00 UTC is already July in Tokyo
		{"local time zone", time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC).In(tokyo), NewDate(2025, 7, 1), NewDate(2025, 8, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := PeriodAt(tc.now)
			assert.Equal(t, tc.start.String(), p.Start.String())
			assert.Equal(t, tc.end.String(), p.End.String())
		})
	}
}

func TestParseSortOptionIgnoresCaseAndSpace(t *testing.T) {
	cases := []struct {
		in   string
		want SortOption
		ok   bool
	}{
		{"", SortLatest, true},
		{"Latest", SortLatest, true},
		{"a to z", SortAToZ, true},
		{" HIGHEST ", SortHighest, true},
		{"Z to A", SortZToA, true},
		{"newest", "", false},
	}
	for _, tc := range cases {
		got, err := ParseSortOption(tc.in)
		if !tc.ok {
			assert.True(t, errors.Is(err, ErrValidation), "%q: %v", tc.in, err)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestTransactionQueryNormalize(t *testing.T) {
	q, err := TransactionQuery{Page: -1, Limit: 500, Search: "  rent "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageLimit, q.Limit)
	assert.Equal(t, SortLatest, q.Sort)
	assert.Equal(t, "rent", q.Search)
	assert.Equal(t, 0, q.Offset())

	q, err = TransactionQuery{Page: 3}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultPageLimit, q.Limit)
	assert.Equal(t, 20, q.Offset())

	_, err = TransactionQuery{Category: "Gadgets"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTransactionQueryClampsHugePages(t *testing.T) {
	for _, page := range []int{maxPage, maxPage + 1, math.MaxInt32, math.MaxInt} {
		q, err := TransactionQuery{Page: page, Limit: MaxPageLimit}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, maxPage, q.Page, page)
		assert.Positive(t, q.Offset(), page)
		assert.LessOrEqual(t, q.Offset(), math.MaxInt32, page)
	}
}

func TestNameFolding(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		cmp    int
		inside bool
	}{
		{name: "ascii", a: "Rent", b: "rent", cmp: 0, inside: true},
		{name: "accented capital", a: "Électricité", b: "électricité", cmp: 0, inside: true},
		{name: "different", a: "Gym", b: "rent", cmp: -1, inside: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cmp, CompareNames(tt.a, tt.b))
			assert.Equal(t, tt.inside, NameContains(tt.a, tt.b))
		})
	}
}

func TestSummarize(t *testing.T) {
	bill := func(status BillStatus, amount string) RecurringBill {
		return RecurringBill{Status: status, Amount: decimal.RequireFromString(amount)}
	}
	s := Summarize([]RecurringBill{
		bill(BillPaid, "-1200"),
		bill(BillDueSoon, "-15.99"),
		bill(BillUpcoming, "-40"),
		bill(BillUpcoming, "-10.50"),
	})

	assert.Equal(t, 1, s.Paid.Count)
	assert.Equal(t, "1200.00", s.Paid.Total.StringFixed(2))
	assert.Equal(t, 1, s.DueSoon.Count)
	assert.Equal(t, "15.99", s.DueSoon.Total.StringFixed(2))
	assert.Equal(t, 3, s.Upcoming.Count, "due-soon bills are also upcoming")
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, "66.49", s.TotalAmount.StringFixed(2))

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Total)
	assert.True(t, empty.TotalAmount.IsZero())
}
