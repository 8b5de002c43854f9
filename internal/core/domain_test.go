package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 3, 9))
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-09T18:30:00Z"`), &d))
	assert.Equal(t, "2025-03-09", d.String())

	err = json.Unmarshal([]byte(`"09/03/2025"`), &d)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Name:     "Spark Electric",
		Category: CategoryBills,
		Date:     NewDate(2025, 1, 1),
		Amount:   dec("-100.50"),
	}
	require.NoError(t, good.Validate())

	bads := []Transaction{
		{Name: "", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: dec("1")},
		{Name: "a", Category: "Crypto", Date: NewDate(2025, 1, 1), Amount: dec("1")},
		{Name: "a", Category: CategoryBills, Amount: dec("1")},
		{Name: "a", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: decimal.Zero},
		{Name: "a", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: dec("1.001")},
		{Name: "a", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: dec("184467440737095516.17")},
		{Name: "a", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: dec("-92233720368547758.08")},
	}
	for i, tx := range bads {
		err := tx.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestBudgetAndPotValidate(t *testing.T) {
	require.NoError(t, Budget{Category: CategoryDiningOut, Maximum: decimal.Zero, Theme: "green"}.Validate())
	assert.Error(t, Budget{Category: CategoryDiningOut, Maximum: dec("-1"), Theme: "green"}.Validate())
	assert.Error(t, Budget{Category: CategoryDiningOut, Maximum: dec("1"), Theme: "chartreuse"}.Validate())

	require.NoError(t, Pot{Name: "Holiday", Target: dec("1000"), Theme: "navy"}.Validate())
	assert.Error(t, Pot{Name: "", Target: dec("1000"), Theme: "navy"}.Validate())
	assert.Error(t, Pot{Name: "Holiday", Target: dec("-5"), Theme: "navy"}.Validate())
	assert.Error(t, Pot{Name: "A name that is well over thirty characters", Target: dec("5"), Theme: "navy"}.Validate())
}

func TestAmountsOutsideRangeAreRejected(t *testing.T) {
	over := dec("10000000000000.01")
	atBound := dec("10000000000000")

	tests := []struct {
		name string
		ok   error
		bad  error
	}{
		{
			name: "budget maximum",
			ok:   Budget{Category: CategoryBills, Maximum: atBound, Theme: "green"}.Validate(),
			bad:  Budget{Category: CategoryBills, Maximum: over, Theme: "green"}.Validate(),
		},
		{
			name: "pot target",
			ok:   Pot{Name: "Holiday", Target: atBound, Theme: "navy"}.Validate(),
			bad:  Pot{Name: "Holiday", Target: over, Theme: "navy"}.Validate(),
		},
		{
			name: "transfer amount",
			ok:   ValidateTransferAmount(atBound),
			bad:  ValidateTransferAmount(over),
		},
		{
			name: "transaction amount",
			ok:   Transaction{Name: "a", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: atBound}.Validate(),
			bad:  Transaction{Name: "a", Category: CategoryBills, Date: NewDate(2025, 1, 1), Amount: over}.Validate(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.ok)
			assert.ErrorIs(t, tt.bad, ErrValidation)
		})
	}
}

func TestValidateTransferAmount(t *testing.T) {
	assert.NoError(t, ValidateTransferAmount(dec("0.01")))
	for _, s := range []string{"0", "-5", "1.234"} {
		err := ValidateTransferAmount(dec(s))
		assert.ErrorIs(t, err, ErrInvalidAmount, s)
		assert.ErrorIs(t, err, ErrValidation, s)
	}
}

func TestPatchApply(t *testing.T) {
	tx := Transaction{Name: "Old", Category: CategoryGeneral, Date: NewDate(2025, 1, 2), Amount: dec("5")}
	name := "  New  "
	amount := dec("-7.25")
	got := TransactionPatch{Name: &name, Amount: &amount}.Apply(tx)
	assert.Equal(t, "New", got.Name)
	assert.True(t, got.Amount.Equal(amount))
	assert.Equal(t, CategoryGeneral, got.Category)
	assert.Equal(t, tx.Date, got.Date)
}

func TestParseSortOption(t *testing.T) {
	o, err := ParseSortOption("")
	require.NoError(t, err)
	assert.Equal(t, SortLatest, o)

	o, err = ParseSortOption("a to z")
	require.NoError(t, err)
	assert.Equal(t, SortAToZ, o)

	_, err = ParseSortOption("random")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 2, PageCount(15, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 0, PageCount(5, 0))
}

func TestPotViewDerivedFields(t *testing.T) {
	v := NewPotView(Pot{Target: dec("200"), Total: dec("50")})
	assert.Equal(t, "25", v.Percentage.String())
	assert.Equal(t, "150", v.Remaining.String())

	v = NewPotView(Pot{Target: decimal.Zero, Total: dec("10")})
	assert.True(t, v.Percentage.IsZero())
	assert.Equal(t, "-10", v.Remaining.String())
}

func TestBudgetSummaryRemainingGoesNegative(t *testing.T) {
	s := NewBudgetSummary(Budget{Maximum: dec("50")}, dec("75.5"), nil)
	assert.Equal(t, "-25.5", s.Remaining.String())
}
