package ledger

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npomfret/splitifyd-sub010/currency"
)

func testAllocator() *Allocator {
	return NewAllocator(ResolverFunc(currency.Decimals))
}

func participants(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1))
	}
	return ids
}

func TestEqualSplits(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		currency string
		n        int
		amounts  []float64
	}{
		{"zero-decimal three way", 100, "JPY", 3, []float64{33, 33, 34}},
		{"two-decimal three way", 100, "USD", 3, []float64{33.33, 33.33, 33.34}},
		{"three-decimal three way", 100, "BHD", 3, []float64{33.333, 33.333, 33.334}},
		{"even division", 90, "USD", 3, []float64{30, 30, 30}},
		{"single participant", 42.5, "USD", 1, []float64{42.5}},
		{"rounding up leaves smaller residual", 100, "USD", 6, []float64{16.67, 16.67, 16.67, 16.67, 16.67, 16.65}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := testAllocator().EqualSplits(tt.total, tt.currency, participants(tt.n))
			require.Len(t, splits, tt.n)

			var sum float64
			for i, s := range splits {
				assert.InDelta(t, tt.amounts[i], s.Amount, 1e-9)
				sum += s.Amount
			}
			assert.InDelta(t, tt.total, sum, 1e-9, "splits must reconcile to the total")
		})
	}
}

func TestEqualSplitsDegenerateInput(t *testing.T) {
	a := testAllocator()

	assert.Empty(t, a.EqualSplits(100, "USD", nil))
	assert.Empty(t, a.EqualSplits(0, "USD", participants(3)))
	assert.Empty(t, a.EqualSplits(-5, "USD", participants(3)))
}

func TestExactSplitsSeedEqualsEqualSplit(t *testing.T) {
	a := testAllocator()
	ids := participants(4)

	assert.Equal(t, a.EqualSplits(77.77, "EUR", ids), a.ExactSplits(77.77, "EUR", ids))
}

func TestPercentageSplits(t *testing.T) {
	splits := testAllocator().PercentageSplits(100, "USD", participants(3))
	require.Len(t, splits, 3)

	var amountSum, pctSum float64
	for _, s := range splits {
		amountSum += s.Amount
		pctSum += s.Percentage
	}

	assert.InDelta(t, 33.33, splits[0].Percentage, 1e-9)
	assert.InDelta(t, 33.34, splits[2].Percentage, 1e-9)
	assert.InDelta(t, 100, pctSum, 1e-9, "percentages must sum to exactly 100")
	assert.InDelta(t, 100, amountSum, 1e-9, "amounts must sum to exactly the total")
}

func TestPercentageSplitsZeroDecimalCurrency(t *testing.T) {
	splits := testAllocator().PercentageSplits(1000, "JPY", participants(3))
	require.Len(t, splits, 3)

	var sum float64
	for _, s := range splits {
		assert.Equal(t, s.Amount, RoundTo(s.Amount, 0), "yen amounts must be whole")
		sum += s.Amount
	}
	assert.InDelta(t, 1000, sum, 1e-9)
}

func TestWeightedSplits(t *testing.T) {
	ids := participants(3)
	splits := testAllocator().WeightedSplits(100, "USD", ids, []float64{2, 1, 1})
	require.Len(t, splits, 3)

	assert.InDelta(t, 50, splits[0].Amount, 1e-9)
	assert.InDelta(t, 25, splits[1].Amount, 1e-9)
	assert.InDelta(t, 25, splits[2].Amount, 1e-9)
}

func TestWeightedSplitsMismatchFallsBackToEqual(t *testing.T) {
	a := testAllocator()
	ids := participants(3)

	assert.Equal(t, a.EqualSplits(90, "USD", ids), a.WeightedSplits(90, "USD", ids, nil))
	assert.Empty(t, a.WeightedSplits(90, "USD", ids, []float64{0, 0, 0}))
}

func TestSplitConservationAcrossCurrencies(t *testing.T) {
	a := testAllocator()
	totals := []float64{0.01, 1, 7, 99.99, 100, 1234.567, 100000}
	codes := []string{"USD", "JPY", "BHD", "INR", "XXX"}

	for _, total := range totals {
		for _, code := range codes {
			for n := 1; n <= 9; n++ {
				splits := a.EqualSplits(total, code, participants(n))
				require.Len(t, splits, n)

				var sum float64
				for _, s := range splits {
					sum += s.Amount
				}
				assert.InDeltaf(t, total, sum, 1e-9, "split(%v, %s, %d)", total, code, n)
			}
		}
	}
}
