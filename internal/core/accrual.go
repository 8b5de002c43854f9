package core

import "github.com/shopspring/decimal"

// BalanceDelta returns the change a transaction write makes to the account
// balance. old is nil for an insert, updated is nil for a delete. Only
// transactions dated inside period contribute, so an edit that moves a
// transaction into or out of the period reverses or applies it accordingly.
func BalanceDelta(old, updated *Transaction, period Period) decimal.Decimal {
	delta := decimal.Zero
	if old != nil && period.Contains(old.Date) {
		delta = delta.Sub(old.Amount)
	}
	if updated != nil && period.Contains(updated.Date) {
		delta = delta.Add(updated.Amount)
	}
	return delta
}
