package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/npomfret/splitifyd-sub010/currency"
	"github.com/npomfret/splitifyd-sub010/database"
	"github.com/npomfret/splitifyd-sub010/ledger"
	"github.com/npomfret/splitifyd-sub010/models"
	"github.com/npomfret/splitifyd-sub010/utils"
)

var currencyResolver = ledger.ResolverFunc(currency.Decimals)

// GET /api/groups/:id/balances
func GetGroupBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Unauthorized(c, "You are not a member of this group")
		return
	}

	var summary models.GroupBalanceSummary
	if database.GetCachedBalances(c.Request.Context(), groupID, &summary) {
		utils.SuccessResponse(c, http.StatusOK, "", summary)
		return
	}

	summary = buildGroupBalanceSummary(groupID)
	database.CacheBalances(c.Request.Context(), groupID, summary)

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// GET /api/balances — overall balances across all groups for current user
func GetOverallBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.GroupMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	// friend → currency → signed amount (positive: they owe me)
	friendBalances := make(map[uuid.UUID]map[string]float64)

	for _, m := range memberships {
		for _, cb := range buildGroupBalanceSummary(m.GroupID).Currencies {
			for _, p := range cb.SuggestedPayments {
				switch userID {
				case p.From:
					// I owe this person
					addFriendAmount(friendBalances, p.To, cb.Currency, -p.Amount)
				case p.To:
					// This person owes me
					addFriendAmount(friendBalances, p.From, cb.Currency, p.Amount)
				}
			}
		}
	}

	totalOwed := make(map[string]float64)
	totalOwing := make(map[string]float64)
	var friends []models.FriendBalance

	for friendID, perCurrency := range friendBalances {
		var user models.User
		database.DB.First(&user, friendID)

		for code, amount := range perCurrency {
			if amount > -ledger.Epsilon && amount < ledger.Epsilon {
				continue
			}

			friends = append(friends, models.FriendBalance{
				UserID:    friendID,
				Name:      user.Name,
				Email:     user.Email,
				AvatarURL: user.AvatarURL,
				Amount:    ledger.RoundTo(amount, currency.Decimals(code)),
				Currency:  code,
			})

			if amount > 0 {
				totalOwed[code] += amount
			} else {
				totalOwing[code] += -amount
			}
		}
	}

	sort.Slice(friends, func(i, j int) bool {
		if friends[i].UserID != friends[j].UserID {
			return friends[i].UserID.String() < friends[j].UserID.String()
		}
		return friends[i].Currency < friends[j].Currency
	})

	for code := range totalOwed {
		totalOwed[code] = ledger.RoundTo(totalOwed[code], currency.Decimals(code))
	}
	for code := range totalOwing {
		totalOwing[code] = ledger.RoundTo(totalOwing[code], currency.Decimals(code))
	}

	utils.SuccessResponse(c, http.StatusOK, "", models.OverallBalanceSummary{
		TotalOwed:  totalOwed,
		TotalOwing: totalOwing,
		Friends:    friends,
	})
}

func addFriendAmount(m map[uuid.UUID]map[string]float64, friendID uuid.UUID, code string, amount float64) {
	if m[friendID] == nil {
		m[friendID] = make(map[string]float64)
	}
	m[friendID][code] += amount
}

// buildGroupBalanceSummary rebuilds the group's ledger from the full
// expense and settlement history and runs the netting engine per
// currency. Balances are always derived from scratch; nothing
// incremental is maintained.
func buildGroupBalanceSummary(groupID uuid.UUID) models.GroupBalanceSummary {
	var group models.Group
	database.DB.First(&group, groupID)

	expenses, settlements := loadLedger(groupID)
	sheets := ledger.AggregateBalances(expenses, settlements, currencyResolver)

	codes := make([]string, 0, len(sheets))
	for code := range sheets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	names := newNameCache()
	currencies := make([]models.CurrencyBalances, 0, len(codes))

	for _, code := range codes {
		sheet := sheets[code]

		nets := make([]models.MemberNetPosition, 0, len(sheet))
		for id, ub := range sheet {
			nets = append(nets, models.MemberNetPosition{
				UserID: id,
				Name:   names.lookup(id),
				Net:    ledger.RoundTo(ub.Net(), currency.Decimals(code)),
			})
		}
		sort.Slice(nets, func(i, j int) bool {
			return nets[i].UserID.String() < nets[j].UserID.String()
		})

		payments := make([]models.SuggestedPayment, 0)
		for _, txn := range ledger.SimplifyDebts(code, sheet, currencyResolver) {
			payments = append(payments, models.SuggestedPayment{
				From:     txn.From,
				FromName: names.lookup(txn.From),
				To:       txn.To,
				ToName:   names.lookup(txn.To),
				Amount:   txn.Amount,
				Currency: txn.Currency,
			})
		}

		currencies = append(currencies, models.CurrencyBalances{
			Currency:          code,
			NetPositions:      nets,
			SuggestedPayments: payments,
		})
	}

	totalSpent := make(map[string]float64)
	type spentRow struct {
		Currency string
		Total    float64
	}
	var rows []spentRow
	database.DB.Model(&models.Expense{}).
		Where("group_id = ?", groupID).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Group("currency").
		Scan(&rows)
	for _, row := range rows {
		totalSpent[row.Currency] = ledger.RoundTo(row.Total, currency.Decimals(row.Currency))
	}

	return models.GroupBalanceSummary{
		GroupID:    groupID,
		GroupName:  group.Name,
		Currencies: currencies,
		TotalSpent: totalSpent,
	}
}

// loadLedger maps the stored expense and settlement rows into the
// engine's input records.
func loadLedger(groupID uuid.UUID) ([]ledger.ExpenseRecord, []ledger.SettlementRecord) {
	var expenses []models.Expense
	database.DB.Where("group_id = ?", groupID).Order("created_at ASC").Find(&expenses)

	records := make([]ledger.ExpenseRecord, 0, len(expenses))
	for _, exp := range expenses {
		var splits []models.ExpenseSplit
		database.DB.Where("expense_id = ?", exp.ID).Find(&splits)

		rec := ledger.ExpenseRecord{PaidBy: exp.PaidBy, Currency: exp.Currency}
		for _, s := range splits {
			rec.Splits = append(rec.Splits, ledger.Split{
				ParticipantID: s.UserID,
				Amount:        s.OwedAmount,
				Percentage:    s.Percentage,
			})
		}
		records = append(records, rec)
	}

	var settlements []models.Settlement
	database.DB.Where("group_id = ?", groupID).Order("created_at ASC").Find(&settlements)

	settlementRecords := make([]ledger.SettlementRecord, 0, len(settlements))
	for _, s := range settlements {
		settlementRecords = append(settlementRecords, ledger.SettlementRecord{
			PaidBy:   s.PaidBy,
			PaidTo:   s.PaidTo,
			Currency: s.Currency,
			Amount:   s.Amount,
		})
	}

	return records, settlementRecords
}

// nameCache avoids one user query per transaction endpoint.
type nameCache map[uuid.UUID]string

func newNameCache() nameCache { return make(nameCache) }

func (n nameCache) lookup(id uuid.UUID) string {
	if name, ok := n[id]; ok {
		return name
	}

	var user models.User
	database.DB.First(&user, id)
	n[id] = user.Name
	return user.Name
}
