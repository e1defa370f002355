package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// Epsilon is the smallest financially significant amount, in a currency's
// major unit. Residues below it are rounding noise and are discarded.
const Epsilon = 0.01

// SettlingTransaction is one suggested payment that moves net positions
// toward zero.
type SettlingTransaction struct {
	From     uuid.UUID `json:"from"`
	To       uuid.UUID `json:"to"`
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"`
}

type position struct {
	userID uuid.UUID
	amount float64 // magnitude of surplus or deficit
}

// SimplifyDebts reduces one currency's pairwise obligation graph to a
// short list of settling transactions using a greedy
// largest-debtor/largest-creditor match. The result is a heuristic, not a
// provably minimal set (exact minimization is NP-hard), but it never
// exceeds n-1 transactions for n users with non-zero net positions, and
// it conserves every user's derived net position exactly.
//
// Net positions are always re-derived from the Owes/OwedBy maps; the
// cached NetBalance field is display-only state and is never read here.
func SimplifyDebts(currencyCode string, sheet BalanceSheet, currencies CurrencyResolver) []SettlingTransaction {
	var creditors, debtors []position
	for id, ub := range sheet {
		net := ub.Net()
		switch {
		case net > Epsilon:
			creditors = append(creditors, position{id, net})
		case net < -Epsilon:
			debtors = append(debtors, position{id, -net})
		}
	}

	sortPositions(creditors)
	sortPositions(debtors)

	decimals := currencies.Decimals(currencyCode)
	var result []SettlingTransaction

	for len(debtors) > 0 && len(creditors) > 0 {
		debtor, creditor := &debtors[0], &creditors[0]
		if debtor.userID == creditor.userID {
			// Structurally impossible after the partition, but a
			// self-transaction must never be emitted.
			debtors = debtors[1:]
			continue
		}

		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		// Emit the rounded figure but reduce both sides by the exact
		// match so at least one side always reaches zero and the loop
		// terminates even when rounding collapses the payment.
		if emit := RoundTo(amount, decimals); emit >= Epsilon {
			result = append(result, SettlingTransaction{
				From:     debtor.userID,
				To:       creditor.userID,
				Amount:   emit,
				Currency: currencyCode,
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount < Epsilon {
			debtors = debtors[1:]
		} else {
			siftDown(debtors)
		}
		if creditor.amount < Epsilon {
			creditors = creditors[1:]
		} else {
			siftDown(creditors)
		}
	}

	return result
}

// sortPositions orders by descending magnitude; equal magnitudes fall
// back to user ID order so matching is deterministic.
func sortPositions(ps []position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].amount != ps[j].amount {
			return ps[i].amount > ps[j].amount
		}
		return ps[i].userID.String() < ps[j].userID.String()
	})
}

// siftDown restores descending order after the head was reduced.
func siftDown(ps []position) {
	head := ps[0]
	i := 1
	for i < len(ps) && (ps[i].amount > head.amount ||
		(ps[i].amount == head.amount && ps[i].userID.String() < head.userID.String())) {
		ps[i-1] = ps[i]
		i++
	}
	ps[i-1] = head
}
