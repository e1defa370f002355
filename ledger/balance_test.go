package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npomfret/splitifyd-sub010/currency"
)

var resolver = ResolverFunc(currency.Decimals)

func expense(payer uuid.UUID, code string, shares map[uuid.UUID]float64) ExpenseRecord {
	rec := ExpenseRecord{PaidBy: payer, Currency: code}
	for id, amt := range shares {
		rec.Splits = append(rec.Splits, Split{ParticipantID: id, Amount: amt})
	}
	return rec
}

func TestAggregateSingleExpense(t *testing.T) {
	ids := participants(3)
	a, b, c := ids[0], ids[1], ids[2]

	sheets := AggregateBalances([]ExpenseRecord{
		expense(a, "USD", map[uuid.UUID]float64{a: 30, b: 30, c: 30}),
	}, nil, resolver)

	require.Contains(t, sheets, "USD")
	sheet := sheets["USD"]
	require.Len(t, sheet, 3)

	assert.InDelta(t, 30, sheet[b].Owes[a], 1e-9)
	assert.InDelta(t, 30, sheet[c].Owes[a], 1e-9)
	assert.InDelta(t, 30, sheet[a].OwedBy[b], 1e-9)
	assert.InDelta(t, 30, sheet[a].OwedBy[c], 1e-9)
	assert.Empty(t, sheet[a].Owes, "the payer's own share creates no obligation")

	assert.InDelta(t, 60, sheet[a].Net(), 1e-9)
	assert.InDelta(t, -30, sheet[b].Net(), 1e-9)
	assert.InDelta(t, 60, sheet[a].NetBalance, 1e-9)
}

func TestAggregateAccumulatesAcrossExpenses(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances([]ExpenseRecord{
		expense(a, "USD", map[uuid.UUID]float64{a: 10, b: 10}),
		expense(a, "USD", map[uuid.UUID]float64{a: 5, b: 5}),
	}, nil, resolver)

	assert.InDelta(t, 15, sheets["USD"][b].Owes[a], 1e-9)
	assert.InDelta(t, 15, sheets["USD"][a].OwedBy[b], 1e-9)
}

func TestSettlementReducesObligation(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances(
		[]ExpenseRecord{expense(a, "USD", map[uuid.UUID]float64{a: 30, b: 30})},
		[]SettlementRecord{{PaidBy: b, PaidTo: a, Currency: "USD", Amount: 20}},
		resolver,
	)

	sheet := sheets["USD"]
	assert.InDelta(t, 10, sheet[b].Owes[a], 1e-9)
	assert.InDelta(t, 10, sheet[a].OwedBy[b], 1e-9)
	assert.Empty(t, sheet[a].Owes)
}

func TestSettlementExactPayoffClearsEntry(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances(
		[]ExpenseRecord{expense(a, "USD", map[uuid.UUID]float64{a: 30, b: 30})},
		[]SettlementRecord{{PaidBy: b, PaidTo: a, Currency: "USD", Amount: 30}},
		resolver,
	)

	sheet := sheets["USD"]
	assert.Empty(t, sheet[b].Owes)
	assert.Empty(t, sheet[a].OwedBy)
	assert.InDelta(t, 0, sheet[a].Net(), 1e-9)
}

func TestSettlementOverpaymentFlipsDirection(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances(
		[]ExpenseRecord{expense(a, "USD", map[uuid.UUID]float64{a: 30, b: 30})},
		[]SettlementRecord{{PaidBy: b, PaidTo: a, Currency: "USD", Amount: 50}},
		resolver,
	)

	sheet := sheets["USD"]
	assert.Empty(t, sheet[b].Owes, "original obligation is extinguished")
	assert.InDelta(t, 20, sheet[a].Owes[b], 1e-9, "payee owes the overage back")
	assert.InDelta(t, 20, sheet[b].OwedBy[a], 1e-9)
}

func TestAggregateKeepsCurrenciesApart(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances([]ExpenseRecord{
		expense(a, "USD", map[uuid.UUID]float64{a: 10, b: 10}),
		expense(b, "JPY", map[uuid.UUID]float64{a: 500, b: 500}),
	}, nil, resolver)

	require.Len(t, sheets, 2)
	assert.InDelta(t, 10, sheets["USD"][b].Owes[a], 1e-9)
	assert.InDelta(t, 500, sheets["JPY"][a].Owes[b], 1e-9)
	assert.Empty(t, sheets["USD"][a].Owes)
	assert.Empty(t, sheets["JPY"][b].Owes)
}

func TestAggregateDropsSubMinorUnitResidue(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances([]ExpenseRecord{
		expense(a, "USD", map[uuid.UUID]float64{a: 0.005, b: 0.005}),
	}, nil, resolver)

	sheet := sheets["USD"]
	assert.Empty(t, sheet[b].Owes, "half a cent is noise, not a debt")
	assert.Empty(t, sheet[a].OwedBy)
}

func TestAggregateKeepsSingleMinorUnitDebt(t *testing.T) {
	ids := participants(2)
	a, b := ids[0], ids[1]

	sheets := AggregateBalances([]ExpenseRecord{
		expense(a, "USD", map[uuid.UUID]float64{a: 0.01, b: 0.01}),
	}, nil, resolver)

	assert.InDelta(t, 0.01, sheets["USD"][b].Owes[a], 1e-9, "one cent is a real debt")
}
