package core

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Category is the fixed set of transaction and budget categories.
type Category string

const (
	CategoryEntertainment  Category = "Entertainment"
	CategoryBills          Category = "Bills"
	CategoryGroceries      Category = "Groceries"
	CategoryDiningOut      Category = "Dining Out"
	CategoryTransportation Category = "Transportation"
	CategoryPersonalCare   Category = "Personal Care"
	CategoryEducation      Category = "Education"
	CategoryLifestyle      Category = "Lifestyle"
	CategoryShopping       Category = "Shopping"
	CategoryGeneral        Category = "General"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryEntertainment, CategoryBills, CategoryGroceries, CategoryDiningOut,
	CategoryTransportation, CategoryPersonalCare, CategoryEducation,
	CategoryLifestyle, CategoryShopping, CategoryGeneral,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Theme is a display colour key for budgets and pots.
type Theme string

// Themes is the palette budgets and pots choose from.
var Themes = []Theme{
	"green", "yellow", "cyan", "navy", "red", "purple", "turquoise", "brown",
	"magenta", "blue", "navy-grey", "army-green", "pink", "gold", "orange",
}

func (t Theme) Valid() bool {
	for _, v := range Themes {
		if t == v {
			return true
		}
	}
	return false
}

const (
	maxTransactionName = 100
	maxPotName         = 30
)

type (
	// Date is a calendar date without time of day.
	Date struct {
		time.Time
	}

	// Account is a user's single financial profile.
	Account struct {
		ID        string          `json:"id"`
		UserID    string          `json:"userId"`
		Balance   decimal.Decimal `json:"balance"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	Transaction struct {
		ID        string          `json:"id"`
		AccountID string          `json:"-"`
		Name      string          `json:"name"`
		Category  Category        `json:"category"`
		Date      Date            `json:"date"`
		Amount    decimal.Decimal `json:"amount"`
		Recurring bool            `json:"recurring"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	// TransactionPatch carries the fields of a partial update; nil means unchanged.
	TransactionPatch struct {
		Name      *string
		Category  *Category
		Date      *Date
		Amount    *decimal.Decimal
		Recurring *bool
	}

	Budget struct {
		ID        string          `json:"id"`
		AccountID string          `json:"-"`
		Category  Category        `json:"category"`
		Maximum   decimal.Decimal `json:"maximum"`
		Theme     Theme           `json:"theme"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	BudgetPatch struct {
		Category *Category
		Maximum  *decimal.Decimal
		Theme    *Theme
	}

	Pot struct {
		ID        string          `json:"id"`
		AccountID string          `json:"-"`
		Name      string          `json:"name"`
		Target    decimal.Decimal `json:"target"`
		Total     decimal.Decimal `json:"total"`
		Theme     Theme           `json:"theme"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	PotPatch struct {
		Name   *string
		Target *decimal.Decimal
		Theme  *Theme
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, invalid("date", "must be YYYY-MM-DD")
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD, the storage representation.
func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return invalid("date", "must be a string")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

func (t Transaction) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxTransactionName {
		return invalid("name", "is too long (max 100 characters)")
	}
	if !t.Category.Valid() {
		return invalid("category", "is not a known category")
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.IsZero() || !ValidMoney(t.Amount) {
		return invalid("amount", "must be non-zero with at most two decimals and within the supported range")
	}
	return nil
}

// Apply merges the present fields of p into t.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Recurring != nil {
		t.Recurring = *p.Recurring
	}
	return t
}

// IsExpense reports whether the transaction moves money out of the account.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return invalid("category", "is not a known category")
	}
	if b.Maximum.IsNegative() || !ValidMoney(b.Maximum) {
		return invalid("maximum", "must be non-negative with at most two decimals and within the supported range")
	}
	if !b.Theme.Valid() {
		return invalid("theme", "is not a known theme")
	}
	return nil
}

func (p BudgetPatch) Apply(b Budget) Budget {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Maximum != nil {
		b.Maximum = *p.Maximum
	}
	if p.Theme != nil {
		b.Theme = *p.Theme
	}
	return b
}

func (p Pot) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxPotName {
		return invalid("name", "is too long (max 30 characters)")
	}
	if p.Target.IsNegative() || !ValidMoney(p.Target) {
		return invalid("target", "must be non-negative with at most two decimals and within the supported range")
	}
	if p.Total.IsNegative() {
		return invalid("total", "must be non-negative")
	}
	if !p.Theme.Valid() {
		return invalid("theme", "is not a known theme")
	}
	return nil
}

func (p PotPatch) Apply(pot Pot) Pot {
	if p.Name != nil {
		pot.Name = strings.TrimSpace(*p.Name)
	}
	if p.Target != nil {
		pot.Target = *p.Target
	}
	if p.Theme != nil {
		pot.Theme = *p.Theme
	}
	return pot
}

// ValidateTransferAmount rejects non-positive, sub-cent or out-of-range pot
// transfer amounts.
func ValidateTransferAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !ValidMoney(amount) {
		return ErrInvalidAmount
	}
	return nil
}
