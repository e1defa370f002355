package ledger

import (
	"math"

	"github.com/google/uuid"
)

// ExpenseRecord is one expense as the aggregator sees it: who paid, in
// what currency, and every participant's share (the payer's own share
// included; it creates no obligation).
type ExpenseRecord struct {
	PaidBy   uuid.UUID
	Currency string
	Splits   []Split
}

// SettlementRecord is a direct payer→payee transfer.
type SettlementRecord struct {
	PaidBy   uuid.UUID
	PaidTo   uuid.UUID
	Currency string
	Amount   float64
}

// UserBalance holds one user's pairwise position in one currency.
// Owes[x] is what this user owes x; OwedBy[x] is what x owes this user.
// NetBalance is a denormalized display convenience; the netting algorithm
// re-derives net positions from the maps and never reads it.
type UserBalance struct {
	UserID     uuid.UUID             `json:"user_id"`
	Owes       map[uuid.UUID]float64 `json:"owes"`
	OwedBy     map[uuid.UUID]float64 `json:"owed_by"`
	NetBalance float64               `json:"net_balance"`
}

// BalanceSheet is one currency's pairwise obligation graph.
type BalanceSheet map[uuid.UUID]*UserBalance

func (s BalanceSheet) user(id uuid.UUID) *UserBalance {
	ub, ok := s[id]
	if !ok {
		ub = &UserBalance{
			UserID: id,
			Owes:   make(map[uuid.UUID]float64),
			OwedBy: make(map[uuid.UUID]float64),
		}
		s[id] = ub
	}
	return ub
}

// Net derives this user's net position from the pairwise maps:
// total owed to them minus total they owe.
func (ub *UserBalance) Net() float64 {
	var net float64
	for _, amt := range ub.OwedBy {
		net += amt
	}
	for _, amt := range ub.Owes {
		net -= amt
	}
	return net
}

// AggregateBalances folds a group's full expense and settlement history
// into per-currency balance sheets. Currencies never mix: a record only
// ever touches the sheet of its own currency.
func AggregateBalances(expenses []ExpenseRecord, settlements []SettlementRecord, currencies CurrencyResolver) map[string]BalanceSheet {
	sheets := make(map[string]BalanceSheet)

	sheet := func(code string) BalanceSheet {
		s, ok := sheets[code]
		if !ok {
			s = make(BalanceSheet)
			sheets[code] = s
		}
		return s
	}

	for _, exp := range expenses {
		s := sheet(exp.Currency)
		payer := s.user(exp.PaidBy)
		for _, split := range exp.Splits {
			if split.ParticipantID == exp.PaidBy {
				s.user(split.ParticipantID)
				continue
			}
			participant := s.user(split.ParticipantID)
			participant.Owes[exp.PaidBy] += split.Amount
			payer.OwedBy[split.ParticipantID] += split.Amount
		}
	}

	for _, st := range settlements {
		applySettlement(sheet(st.Currency), st)
	}

	for code, s := range sheets {
		minor := math.Pow(10, -float64(currencies.Decimals(code)))
		for _, ub := range s {
			dropResidue(ub.Owes, minor)
			dropResidue(ub.OwedBy, minor)
			ub.NetBalance = ub.Net()
		}
	}

	return sheets
}

// applySettlement reduces the payer's existing obligation towards the
// payee. An overpayment flips the excess into the reverse direction: the
// payee now owes the payer the overage.
func applySettlement(s BalanceSheet, st SettlementRecord) {
	payer := s.user(st.PaidBy)
	payee := s.user(st.PaidTo)

	remaining := payer.Owes[st.PaidTo] - st.Amount
	if remaining >= 0 {
		payer.Owes[st.PaidTo] = remaining
		payee.OwedBy[st.PaidBy] = remaining
		return
	}

	delete(payer.Owes, st.PaidTo)
	delete(payee.OwedBy, st.PaidBy)
	payee.Owes[st.PaidBy] += -remaining
	payer.OwedBy[st.PaidTo] += -remaining
}

// dropResidue removes entries smaller than one currency minor unit so the
// graph doesn't accumulate rounding noise. The slack keeps a legitimate
// single-minor-unit debt from being discarded over float drift.
func dropResidue(m map[uuid.UUID]float64, minorUnit float64) {
	for id, amt := range m {
		if amt < minorUnit-1e-9 {
			delete(m, id)
		}
	}
}
