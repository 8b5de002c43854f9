package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raiyan37/Centinel/internal/core"
)

func (s *AccountScope) CreatePot(ctx context.Context, p core.Pot) (core.Pot, error) {
	p.Total = decimal.Zero
	if err := p.Validate(); err != nil {
		return core.Pot{}, err
	}
	now := s.repo.now().UTC()
	p.ID = uuid.NewString()
	p.AccountID = s.accountID
	p.CreatedAt = now
	p.UpdatedAt = now

	err := s.write(ctx, func(q *Queries) error {
		if err := q.CreatePot(ctx, potRowFrom(p)); err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateCategoryOrTheme
			}
			return fmt.Errorf("create pot: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Pot{}, err
	}
	return p, nil
}

func (s *AccountScope) GetPot(ctx context.Context, id string) (core.Pot, error) {
	row, err := s.q.GetPot(ctx, s.accountID, id)
	if err != nil {
		return core.Pot{}, notFound(err, "pot", id, "get pot")
	}
	return row.toCore(), nil
}

// ListPots returns pots in insertion order; limit <= 0 returns all of them.
func (s *AccountScope) ListPots(ctx context.Context, limit int) ([]core.Pot, error) {
	rows, err := s.q.ListPots(ctx, s.accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pots: %w", err)
	}
	out := make([]core.Pot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCore())
	}
	return out, nil
}

// TotalSaved is the sum of every pot total of the account.
func (s *AccountScope) TotalSaved(ctx context.Context) (decimal.Decimal, error) {
	cents, err := s.q.TotalSaved(ctx, s.accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get total saved: %w", err)
	}
	return core.FromCents(cents), nil
}

// UpdatePot changes name, target or theme. The total only moves through
// Deposit, Withdraw and DeletePot.
func (s *AccountScope) UpdatePot(ctx context.Context, id string, patch core.PotPatch) (core.Pot, error) {
	var updated core.Pot
	err := s.write(ctx, func(q *Queries) error {
		row, err := q.GetPot(ctx, s.accountID, id)
		if err != nil {
			return notFound(err, "pot", id, "get pot")
		}
		updated = patch.Apply(row.toCore())
		if err := updated.Validate(); err != nil {
			return err
		}
		updated.UpdatedAt = s.repo.now().UTC()

		n, err := q.UpdatePot(ctx, potRowFrom(updated))
		if err != nil {
			if isUniqueViolation(err) {
				return core.ErrDuplicateCategoryOrTheme
			}
			return fmt.Errorf("update pot: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("pot", id)
		}
		return nil
	})
	if err != nil {
		return core.Pot{}, err
	}
	return updated, nil
}

// Deposit moves amount from the account balance into the pot. Both writes
// commit together or not at all.
func (s *AccountScope) Deposit(ctx context.Context, potID string, amount decimal.Decimal) (core.Pot, decimal.Decimal, error) {
	if err := core.ValidateTransferAmount(amount); err != nil {
		return core.Pot{}, decimal.Zero, err
	}
	cents := core.ToCents(amount)

	var (
		pot     core.Pot
		balance decimal.Decimal
	)
	err := s.write(ctx, func(q *Queries) error {
		if _, err := q.GetPot(ctx, s.accountID, potID); err != nil {
			return notFound(err, "pot", potID, "get pot")
		}
		current, err := q.GetBalance(ctx, s.accountID)
		if err != nil {
			return notFound(err, "account", s.accountID, "get balance")
		}
		if current < cents {
			return core.ErrInsufficientBalance
		}

		now := formatTimestamp(s.repo.now())
		n, err := q.DebitBalanceIfSufficient(ctx, s.accountID, cents, now)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}
		if n == 0 {
			return core.ErrInsufficientBalance
		}
		if n, err = q.AddToPotTotal(ctx, s.accountID, potID, cents, now); err != nil {
			return fmt.Errorf("credit pot: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("pot", potID)
		}

		pot, balance, err = s.readPotAndBalance(ctx, q, potID)
		return err
	})
	if err != nil {
		return core.Pot{}, decimal.Zero, err
	}

	slog.InfoContext(ctx, "Deposited to pot",
		"account_id", s.accountID, "pot_id", potID, "amount_cents", cents)
	return pot, balance, nil
}

// Withdraw moves amount from the pot back to the account balance.
func (s *AccountScope) Withdraw(ctx context.Context, potID string, amount decimal.Decimal) (core.Pot, decimal.Decimal, error) {
	if err := core.ValidateTransferAmount(amount); err != nil {
		return core.Pot{}, decimal.Zero, err
	}
	cents := core.ToCents(amount)

	var (
		pot     core.Pot
		balance decimal.Decimal
	)
	err := s.write(ctx, func(q *Queries) error {
		row, err := q.GetPot(ctx, s.accountID, potID)
		if err != nil {
			return notFound(err, "pot", potID, "get pot")
		}
		if row.TotalCents < cents {
			return core.ErrInsufficientPotBalance
		}

		now := formatTimestamp(s.repo.now())
		n, err := q.AddToPotTotal(ctx, s.accountID, potID, -cents, now)
		if err != nil {
			return fmt.Errorf("debit pot: %w", err)
		}
		if n == 0 {
			return core.ErrInsufficientPotBalance
		}
		if n, err = q.AddToBalance(ctx, s.accountID, cents, now); err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("account", s.accountID)
		}

		pot, balance, err = s.readPotAndBalance(ctx, q, potID)
		return err
	})
	if err != nil {
		return core.Pot{}, decimal.Zero, err
	}

	slog.InfoContext(ctx, "Withdrew from pot",
		"account_id", s.accountID, "pot_id", potID, "amount_cents", cents)
	return pot, balance, nil
}

// DeletePot returns any saved funds to the balance and removes the pot.
func (s *AccountScope) DeletePot(ctx context.Context, potID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.write(ctx, func(q *Queries) error {
		row, err := q.GetPot(ctx, s.accountID, potID)
		if err != nil {
			return notFound(err, "pot", potID, "get pot")
		}

		if row.TotalCents > 0 {
			n, err := q.AddToBalance(ctx, s.accountID, row.TotalCents, formatTimestamp(s.repo.now()))
			if err != nil {
				return fmt.Errorf("refund pot total: %w", err)
			}
			if n == 0 {
				return core.NotFoundf("account", s.accountID)
			}
		}

		n, err := q.DeletePot(ctx, s.accountID, potID)
		if err != nil {
			return fmt.Errorf("delete pot: %w", err)
		}
		if n == 0 {
			return core.NotFoundf("pot", potID)
		}

		cents, err := q.GetBalance(ctx, s.accountID)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}
		balance = core.FromCents(cents)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	slog.InfoContext(ctx, "Pot deleted", "account_id", s.accountID, "pot_id", potID)
	return balance, nil
}

func (s *AccountScope) readPotAndBalance(ctx context.Context, q *Queries, potID string) (core.Pot, decimal.Decimal, error) {
	row, err := q.GetPot(ctx, s.accountID, potID)
	if err != nil {
		return core.Pot{}, decimal.Zero, fmt.Errorf("reload pot: %w", err)
	}
	cents, err := q.GetBalance(ctx, s.accountID)
	if err != nil {
		return core.Pot{}, decimal.Zero, fmt.Errorf("reload balance: %w", err)
	}
	return row.toCore(), core.FromCents(cents), nil
}
