package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/raiyan37/Centinel/internal/core"
)

func fundedScope(t *testing.T, balance string) (*AccountScope, core.Pot) {
	t.Helper()
	repo := newTestRepo(t)
	s := newTestScope(t, repo, "saver")
	mustCreateTx(t, s, "Salary", core.CategoryGeneral, core.NewDate(2025, 6, 1), balance, false)
	pot, err := s.CreatePot(context.Background(), core.Pot{Name: "Holiday", Target: dec("1000"), Theme: "navy"})
	require.NoError(t, err)
	return s, pot
}

func TestPotCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	s := newTestScope(t, repo, "user-1")

	first, err := s.CreatePot(ctx, core.Pot{Name: "Holiday", Target: dec("1000"), Theme: "navy", Total: dec("999")})
	require.NoError(t, err)
	assert.True(t, first.Total.IsZero(), "new pots start empty")

	_, err = s.CreatePot(ctx, core.Pot{Name: "Car", Target: dec("5000"), Theme: "navy"})
	assert.ErrorIs(t, err, core.ErrDuplicateCategoryOrTheme)

	second, err := s.CreatePot(ctx, core.Pot{Name: "Car", Target: dec("5000"), Theme: "gold"})
	require.NoError(t, err)

	name := "Summer trip"
	updated, err := s.UpdatePot(ctx, first.ID, core.PotPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Summer trip", updated.Name)

	navy := core.Theme("navy")
	_, err = s.UpdatePot(ctx, second.ID, core.PotPatch{Theme: &navy})
	assert.ErrorIs(t, err, core.ErrDuplicateCategoryOrTheme)

	pots, err := s.ListPots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pots, 2)
	assert.Equal(t, first.ID, pots[0].ID)
	assert.Equal(t, second.ID, pots[1].ID)

	pots, err = s.ListPots(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pots, 1)
}

func TestDepositAndWithdraw(t *testing.T) {
	ctx := context.Background()
	s, pot := fundedScope(t, "100")

	got, balance, err := s.Deposit(ctx, pot.ID, dec("40"))
	require.NoError(t, err)
	assert.Equal(t, "40.00", got.Total.StringFixed(2))
	assert.Equal(t, "60.00", balance.StringFixed(2))

	_, _, err = s.Deposit(ctx, pot.ID, dec("60.01"))
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)

	_, _, err = s.Withdraw(ctx, pot.ID, dec("40.01"))
	assert.ErrorIs(t, err, core.ErrInsufficientPotBalance)

	got, balance, err = s.Withdraw(ctx, pot.ID, dec("15.50"))
	require.NoError(t, err)
	assert.Equal(t, "24.50", got.Total.StringFixed(2))
	assert.Equal(t, "75.50", balance.StringFixed(2))

	for _, amount := range []string{"0", "-5", "0.001"} {
		_, _, err = s.Deposit(ctx, pot.ID, dec(amount))
		assert.ErrorIs(t, err, core.ErrInvalidAmount, amount)
		_, _, err = s.Withdraw(ctx, pot.ID, dec(amount))
		assert.ErrorIs(t, err, core.ErrInvalidAmount, amount)
	}

	_, _, err = s.Deposit(ctx, "missing", dec("1"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Failed operations leave both sides untouched.
	assertBalance(t, s, "75.50")
	reloaded, err := s.GetPot(ctx, pot.ID)
	require.NoError(t, err)
	assert.Equal(t, "24.50", reloaded.Total.StringFixed(2))
}

func TestDeletePotReturnsFunds(t *testing.T) {
	tests := []struct {
		name        string
		deposit     string
		wantBalance string
	}{
		{name: "funded pot", deposit: "30", wantBalance: "100.00"},
		{name: "empty pot", wantBalance: "100.00"},
		{name: "whole balance in pot", deposit: "100", wantBalance: "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, pot := fundedScope(t, "100")

			if tt.deposit != "" {
				_, _, err := s.Deposit(ctx, pot.ID, dec(tt.deposit))
				require.NoError(t, err)
			}

			balance, err := s.DeletePot(ctx, pot.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, balance.StringFixed(2))
			assertBalance(t, s, tt.wantBalance)

			_, err = s.GetPot(ctx, pot.ID)
			assert.ErrorIs(t, err, core.ErrNotFound)

			saved, err := s.TotalSaved(ctx)
			require.NoError(t, err)
			assert.True(t, saved.IsZero())

			_, err = s.DeletePot(ctx, pot.ID)
			assert.ErrorIs(t, err, core.ErrNotFound)
			assertBalance(t, s, tt.wantBalance)
		})
	}
}

// Concurrent transfers must never overdraw either side, and the sum of the
// balance and pot totals is conserved.
func TestConcurrentTransfersConserveFunds(t *testing.T) {
	ctx := context.Background()
	s, pot := fundedScope(t, "100")

	var deposits, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			_, _, err := s.Deposit(ctx, pot.ID, dec("10"))
			switch {
			case err == nil:
				deposits.Add(1)
			case errors.Is(err, core.ErrInsufficientBalance):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(10), deposits.Load())
	assert.Equal(t, int32(15), rejected.Load())
	assertBalance(t, s, "0")

	for i := 0; i < 12; i++ {
		g.Go(func() error {
			_, _, err := s.Withdraw(ctx, pot.ID, dec("10"))
			if err != nil && !errors.Is(err, core.ErrInsufficientPotBalance) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assertBalance(t, s, "100")
	saved, err := s.TotalSaved(ctx)
	require.NoError(t, err)
	assert.True(t, saved.IsZero())
}
