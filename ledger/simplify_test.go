package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func owe(sheet BalanceSheet, from, to uuid.UUID, amount float64) {
	sheet.user(from).Owes[to] += amount
	sheet.user(to).OwedBy[from] += amount
}

func TestSimplifyReciprocalDebtsCancel(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheet := make(BalanceSheet)
	owe(sheet, a, b, 50)
	owe(sheet, b, a, 30)

	txns := SimplifyDebts("USD", sheet, resolver)
	require.Len(t, txns, 1)
	assert.Equal(t, a, txns[0].From)
	assert.Equal(t, b, txns[0].To)
	assert.InDelta(t, 20, txns[0].Amount, 1e-9)
	assert.Equal(t, "USD", txns[0].Currency)
}

func TestSimplifyPerfectCycleNetsToNothing(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8} {
		ids := participants(n)
		sheet := make(BalanceSheet)
		for i := range ids {
			owe(sheet, ids[i], ids[(i+1)%n], 25)
		}

		assert.Emptyf(t, SimplifyDebts("USD", sheet, resolver), "%d-user ring", n)
	}
}

func TestSimplifyIgnoresCachedNetBalance(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheet := make(BalanceSheet)
	owe(sheet, a, b, 40)

	// A stale denormalized net must never influence the output.
	sheet[a].NetBalance = 9999
	sheet[b].NetBalance = 0

	txns := SimplifyDebts("USD", sheet, resolver)
	require.Len(t, txns, 1)
	assert.Equal(t, a, txns[0].From)
	assert.Equal(t, b, txns[0].To)
	assert.InDelta(t, 40, txns[0].Amount, 1e-9)
}

func TestSimplifyRejectsEpsilonNoise(t *testing.T) {
	ids := participants(2)
	sheet := make(BalanceSheet)
	owe(sheet, ids[0], ids[1], 0.005)

	assert.Empty(t, SimplifyDebts("USD", sheet, resolver))
}

func TestSimplifyChainCollapses(t *testing.T) {
	ids := participants(3)
	a, b, c := ids[0], ids[1], ids[2]

	sheet := make(BalanceSheet)
	owe(sheet, a, b, 10)
	owe(sheet, b, c, 10)

	// A's 10 should flow straight to C; B is flat.
	txns := SimplifyDebts("USD", sheet, resolver)
	require.Len(t, txns, 1)
	assert.Equal(t, a, txns[0].From)
	assert.Equal(t, c, txns[0].To)
	assert.InDelta(t, 10, txns[0].Amount, 1e-9)
}

func TestSimplifyConservation(t *testing.T) {
	ids := participants(5)
	sheet := make(BalanceSheet)
	owe(sheet, ids[0], ids[1], 37.52)
	owe(sheet, ids[0], ids[2], 12.48)
	owe(sheet, ids[3], ids[1], 5)
	owe(sheet, ids[3], ids[2], 80.25)
	owe(sheet, ids[4], ids[0], 14.99)
	owe(sheet, ids[1], ids[4], 6.5)

	txns := SimplifyDebts("USD", sheet, resolver)

	inflow := make(map[uuid.UUID]float64)
	for _, txn := range txns {
		require.NotEqual(t, txn.From, txn.To)
		require.GreaterOrEqual(t, txn.Amount, Epsilon)
		inflow[txn.To] += txn.Amount
		inflow[txn.From] -= txn.Amount
	}

	nonZero := 0
	for id, ub := range sheet {
		net := ub.Net()
		if net > Epsilon || net < -Epsilon {
			nonZero++
		}
		assert.InDeltaf(t, net, inflow[id], Epsilon, "user %s must end up flat", id)
	}
	assert.LessOrEqual(t, len(txns), nonZero-1, "at most n-1 transactions")
}

func TestSimplifyTransactionBound(t *testing.T) {
	ids := participants(7)
	sheet := make(BalanceSheet)
	for i := 1; i < len(ids); i++ {
		owe(sheet, ids[i], ids[0], float64(i)*11.11)
	}

	txns := SimplifyDebts("USD", sheet, resolver)
	assert.LessOrEqual(t, len(txns), len(ids)-1)
	assert.Len(t, txns, 6, "pure star graph settles pairwise")
}

func TestSimplifyCurrencyIsolation(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	usd := make(BalanceSheet)
	owe(usd, a, b, 10)
	jpy := make(BalanceSheet)
	owe(jpy, b, a, 500)

	usdTxns := SimplifyDebts("USD", usd, resolver)
	jpyTxns := SimplifyDebts("JPY", jpy, resolver)

	require.Len(t, usdTxns, 1)
	require.Len(t, jpyTxns, 1)
	assert.Equal(t, "USD", usdTxns[0].Currency)
	assert.Equal(t, "JPY", jpyTxns[0].Currency)
	assert.Equal(t, a, usdTxns[0].From)
	assert.Equal(t, b, jpyTxns[0].From)
}

func TestSimplifyDeterministicOnTies(t *testing.T) {
	ids := participants(4)
	build := func() BalanceSheet {
		sheet := make(BalanceSheet)
		owe(sheet, ids[0], ids[2], 25)
		owe(sheet, ids[1], ids[3], 25)
		return sheet
	}

	first := SimplifyDebts("USD", build(), resolver)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SimplifyDebts("USD", build(), resolver))
	}
}

func TestSimplifySelfLoopIsInert(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheet := make(BalanceSheet)
	owe(sheet, a, a, 100) // malformed upstream input
	owe(sheet, a, b, 10)

	txns := SimplifyDebts("USD", sheet, resolver)
	require.Len(t, txns, 1)
	for _, txn := range txns {
		assert.NotEqual(t, txn.From, txn.To)
	}
	assert.InDelta(t, 10, txns[0].Amount, 1e-9)
}

func TestSimplifyEmptySheet(t *testing.T) {
	assert.Empty(t, SimplifyDebts("USD", make(BalanceSheet), resolver))
}
