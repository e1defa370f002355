package models

import "github.com/google/uuid"

// SuggestedPayment is one settling transaction the netting engine
// recommends, decorated with display names.
type SuggestedPayment struct {
	From     uuid.UUID `json:"from"`
	FromName string    `json:"from_name"`
	To       uuid.UUID `json:"to"`
	ToName   string    `json:"to_name"`
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"`
}

// MemberNetPosition is one member's derived net in one currency:
// positive means the group owes them, negative means they owe the group.
type MemberNetPosition struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Net    float64   `json:"net"`
}

// CurrencyBalances carries one currency's view of a group: every
// member's net position plus the suggested payments that flatten them.
// Currencies are never netted against each other.
type CurrencyBalances struct {
	Currency          string              `json:"currency"`
	NetPositions      []MemberNetPosition `json:"net_positions"`
	SuggestedPayments []SuggestedPayment  `json:"suggested_payments"`
}

// GroupBalanceSummary is returned for GET /api/groups/:id/balances
type GroupBalanceSummary struct {
	GroupID    uuid.UUID          `json:"group_id"`
	GroupName  string             `json:"group_name"`
	Currencies []CurrencyBalances `json:"currencies"`
	TotalSpent map[string]float64 `json:"total_spent"` // per currency
}

// FriendBalance is the overall position with a single friend in one
// currency, aggregated across shared groups.
type FriendBalance struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Amount    float64   `json:"amount"` // positive = they owe you, negative = you owe them
	Currency  string    `json:"currency"`
}

// OverallBalanceSummary is returned for GET /api/balances
type OverallBalanceSummary struct {
	TotalOwed  map[string]float64 `json:"total_owed"`  // per currency, others → you
	TotalOwing map[string]float64 `json:"total_owing"` // per currency, you → others
	Friends    []FriendBalance    `json:"friends"`
}
