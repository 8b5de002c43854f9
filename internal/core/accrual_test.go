package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodAt(t *testing.T) {
	p := PeriodAt(time.Date(2025, 2, 14, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2025-02-01", p.Start.String())
	assert.Equal(t, "2025-03-01", p.End.String())

	assert.True(t, p.Contains(NewDate(2025, 2, 1)))
	assert.True(t, p.Contains(NewDate(2025, 2, 28)))
	assert.False(t, p.Contains(NewDate(2025, 3, 1)))
	assert.False(t, p.Contains(NewDate(2025, 1, 31)))

	dec := PeriodAt(time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-01", dec.End.String())
}

func TestBalanceDelta(t *testing.T) {
	period := PeriodAt(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	in := func(amount string) *Transaction {
		return &Transaction{Date: NewDate(2025, 6, 5), Amount: decimal.RequireFromString(amount)}
	}
	out := func(amount string) *Transaction {
		return &Transaction{Date: NewDate(2025, 5, 5), Amount: decimal.RequireFromString(amount)}
	}

	tests := []struct {
		name     string
		old, new *Transaction
		want     string
	}{
		{"insert in period", nil, in("-20"), "-20"},
		{"insert out of period", nil, out("-20"), "0"},
		{"update within period", in("-20"), in("-35"), "-15"},
		{"update moves into period", out("100"), in("100"), "100"},
		{"update moves out of period", in("100"), out("100"), "-100"},
		{"update outside period", out("5"), out("50"), "0"},
		{"delete in period", in("-20"), nil, "20"},
		{"delete out of period", out("-20"), nil, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceDelta(tt.old, tt.new, period)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

// Replaying random writes through BalanceDelta must match a from-scratch sum
// of the surviving in-period transactions.
func TestBalanceDeltaReplayMatchesRecomputation(t *testing.T) {
	period := PeriodAt(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	rng := rand.New(rand.NewSource(7))
	randomTx := func() Transaction {
		month := 5 + rng.Intn(3) // May, June or July
		return Transaction{
			Date:   NewDate(2025, month, 1+rng.Intn(28)),
			Amount: FromCents(int64(rng.Intn(20001) - 10000)),
		}
	}

	live := map[int]Transaction{}
	balance := decimal.Zero
	next := 0
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			tx := randomTx()
			live[next] = tx
			next++
			balance = balance.Add(BalanceDelta(nil, &tx, period))
		case op == 1:
			for k, old := range live {
				updated := randomTx()
				live[k] = updated
				balance = balance.Add(BalanceDelta(&old, &updated, period))
				break
			}
		default:
			for k, old := range live {
				delete(live, k)
				balance = balance.Add(BalanceDelta(&old, nil, period))
				break
			}
		}
	}

	want := decimal.Zero
	for _, tx := range live {
		if period.Contains(tx.Date) {
			want = want.Add(tx.Amount)
		}
	}
	assert.True(t, want.Equal(balance), "incremental %s, recomputed %s", balance, want)
}
