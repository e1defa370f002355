package ledger

import (
	"math"

	"github.com/google/uuid"
)

// SplitType selects how an expense is divided among participants.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitExact      SplitType = "exact"
	SplitPercentage SplitType = "percentage"
	SplitShares     SplitType = "shares"
)

// CurrencyResolver supplies the minor-unit digit count (0-3) for an ISO
// 4217 code. The engine consults it for every rounding decision and never
// computes precision on its own.
type CurrencyResolver interface {
	Decimals(code string) int
}

// ResolverFunc adapts a plain function to CurrencyResolver.
type ResolverFunc func(code string) int

func (f ResolverFunc) Decimals(code string) int { return f(code) }

// Split is one participant's share of one expense, in the expense's
// currency. Percentage is only set by percentage allocation.
type Split struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Amount        float64   `json:"amount"`
	Percentage    float64   `json:"percentage,omitempty"`
}

// Allocator turns an expense total into per-participant splits that sum
// to the total exactly at the currency's precision.
type Allocator struct {
	currencies CurrencyResolver
}

func NewAllocator(currencies CurrencyResolver) *Allocator {
	return &Allocator{currencies: currencies}
}

// RoundTo rounds half away from zero at the given digit count, scaling to
// integers first so binary floating point can't smear the result.
func RoundTo(amount float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(amount*scale) / scale
}

// EqualSplits divides total evenly. Every participant but the last gets
// the rounded per-head amount; the last absorbs the residual so the sum
// reconciles exactly regardless of rounding direction. 100 JPY across
// three people is [33 33 34]; 100 USD is [33.33 33.33 33.34].
func (a *Allocator) EqualSplits(total float64, currencyCode string, participants []uuid.UUID) []Split {
	if len(participants) == 0 || total <= 0 {
		return nil
	}

	decimals := a.currencies.Decimals(currencyCode)
	base := RoundTo(total/float64(len(participants)), decimals)

	splits := make([]Split, 0, len(participants))
	for _, id := range participants[:len(participants)-1] {
		splits = append(splits, Split{ParticipantID: id, Amount: base})
	}

	residual := RoundTo(total-base*float64(len(participants)-1), decimals)
	splits = append(splits, Split{
		ParticipantID: participants[len(participants)-1],
		Amount:        residual,
	})

	return splits
}

// ExactSplits seeds a manual split with the equal division as a starting
// point for editing. The seed satisfies the conservation invariant; edits
// are validated by the caller.
func (a *Allocator) ExactSplits(total float64, currencyCode string, participants []uuid.UUID) []Split {
	return a.EqualSplits(total, currencyCode, participants)
}

// PercentageSplits gives every participant but the last 100/n percent
// (rounded to two places) and the matching rounded amount; the last
// participant's percentage and amount are forced to the residuals so
// percentages sum to exactly 100 and amounts to exactly total.
func (a *Allocator) PercentageSplits(total float64, currencyCode string, participants []uuid.UUID) []Split {
	if len(participants) == 0 || total <= 0 {
		return nil
	}

	decimals := a.currencies.Decimals(currencyCode)
	basePct := RoundTo(100/float64(len(participants)), 2)
	baseAmount := RoundTo(total*basePct/100, decimals)

	splits := make([]Split, 0, len(participants))
	for _, id := range participants[:len(participants)-1] {
		splits = append(splits, Split{ParticipantID: id, Amount: baseAmount, Percentage: basePct})
	}

	n := float64(len(participants) - 1)
	splits = append(splits, Split{
		ParticipantID: participants[len(participants)-1],
		Amount:        RoundTo(total-baseAmount*n, decimals),
		Percentage:    RoundTo(100-basePct*n, 2),
	})

	return splits
}

// WeightedSplits divides total in proportion to per-participant share
// counts, residual to the last participant.
// Participants and shares are matched by index; a nil or mismatched
// shares slice falls back to an equal division.
func (a *Allocator) WeightedSplits(total float64, currencyCode string, participants []uuid.UUID, shares []float64) []Split {
	if len(participants) == 0 || total <= 0 {
		return nil
	}
	if len(shares) != len(participants) {
		return a.EqualSplits(total, currencyCode, participants)
	}

	var totalShares float64
	for _, s := range shares {
		totalShares += s
	}
	if totalShares <= 0 {
		return nil
	}

	decimals := a.currencies.Decimals(currencyCode)
	splits := make([]Split, 0, len(participants))

	var allocated float64
	for i, id := range participants[:len(participants)-1] {
		amount := RoundTo(total*shares[i]/totalShares, decimals)
		allocated += amount
		splits = append(splits, Split{ParticipantID: id, Amount: amount})
	}

	splits = append(splits, Split{
		ParticipantID: participants[len(participants)-1],
		Amount:        RoundTo(total-allocated, decimals),
	})

	return splits
}
