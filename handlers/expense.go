package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/npomfret/splitifyd-sub010/currency"
	"github.com/npomfret/splitifyd-sub010/database"
	"github.com/npomfret/splitifyd-sub010/ledger"
	"github.com/npomfret/splitifyd-sub010/models"
	"github.com/npomfret/splitifyd-sub010/services"
	"github.com/npomfret/splitifyd-sub010/utils"
)

// The allocator is stateless; one instance serves all requests.
var allocator = ledger.NewAllocator(ledger.ResolverFunc(currency.Decimals))

// POST /api/groups/:id/expenses
func CreateExpense(c *gin.Context) {
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

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Parse expense date
	expenseDate := time.Now()
	if req.ExpenseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err == nil {
			expenseDate = parsed
		}
	}

	code := req.Currency
	if code == "" {
		code = currency.DefaultCode
	}
	if !currency.IsValid(code) {
		utils.BadRequest(c, "Unsupported currency code: "+code)
		return
	}

	expense := models.Expense{
		GroupID:     groupID,
		PaidBy:      userID,
		Description: req.Description,
		Amount:      ledger.RoundTo(req.Amount, currency.Decimals(code)),
		Currency:    code,
		Category:    req.Category,
		SplitType:   req.SplitType,
		Notes:       req.Notes,
		ExpenseDate: expenseDate,
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		utils.InternalError(c, "Failed to create expense")
		return
	}

	// Calculate and create splits
	splits, err := calculateSplits(expense, req.Splits, groupID)
	if err != nil {
		// Rollback expense
		database.DB.Delete(&expense)
		utils.BadRequest(c, err.Error())
		return
	}

	for _, split := range splits {
		split.ExpenseID = expense.ID
		database.DB.Create(&split)
	}

	database.InvalidateBalances(c.Request.Context(), groupID)

	// Log activity
	var payer models.User
	database.DB.First(&payer, userID)
	var group models.Group
	database.DB.First(&group, groupID)

	database.DB.Create(&models.Activity{
		GroupID:     groupID,
		UserID:      userID,
		Type:        models.ActivityExpenseAdded,
		ReferenceID: expense.ID,
		Description: fmt.Sprintf("%s added \"%s\" (%s %.2f)", payer.Name, expense.Description, expense.Currency, expense.Amount),
	})

	// Send notifications asynchronously
	go services.GetNotificationService().NotifyExpenseAdded(expense, splits, payer, group)

	// Build response
	response := buildExpenseResponse(expense.ID)
	utils.SuccessResponse(c, http.StatusCreated, "Expense added", response)
}

// GET /api/groups/:id/expenses
func GetGroupExpenses(c *gin.Context) {
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

	var pagination utils.PaginationQuery
	c.ShouldBindQuery(&pagination)

	var expenses []models.Expense
	database.DB.Where("group_id = ?", groupID).
		Order("expense_date DESC, created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&expenses)

	var responses []models.ExpenseResponse
	for _, e := range expenses {
		responses = append(responses, buildExpenseResponse(e.ID))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/expenses/:id
func GetExpense(c *gin.Context) {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	response := buildExpenseResponse(expenseID)
	if response.ID == uuid.Nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", response)
}

// PUT /api/expenses/:id
func UpdateExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if !isMember(expense.GroupID, userID) {
		utils.Unauthorized(c, "You are not a member of this group")
		return
	}

	var req models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Amount > 0 {
		updates["amount"] = ledger.RoundTo(req.Amount, currency.Decimals(expense.Currency))
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	database.DB.Model(&expense).Updates(updates)

	// Splits are replaced wholesale when the amount or split type
	// changes; they are never edited in place.
	if req.Amount > 0 || req.SplitType != "" || len(req.Splits) > 0 {
		database.DB.Where("expense_id = ?", expenseID).Delete(&models.ExpenseSplit{})

		// Reload expense
		database.DB.First(&expense, expenseID)

		splitType := req.SplitType
		if splitType == "" {
			splitType = expense.SplitType
		}
		expense.SplitType = splitType

		splits, err := calculateSplits(expense, req.Splits, expense.GroupID)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}

		for _, split := range splits {
			split.ExpenseID = expense.ID
			database.DB.Create(&split)
		}
	}

	database.InvalidateBalances(c.Request.Context(), expense.GroupID)

	// Log activity
	var editor models.User
	database.DB.First(&editor, userID)

	database.DB.Create(&models.Activity{
		GroupID:     expense.GroupID,
		UserID:      userID,
		Type:        models.ActivityExpenseUpdated,
		ReferenceID: expense.ID,
		Description: fmt.Sprintf("%s updated \"%s\"", editor.Name, expense.Description),
	})

	response := buildExpenseResponse(expense.ID)
	utils.SuccessResponse(c, http.StatusOK, "Expense updated", response)
}

// DELETE /api/expenses/:id
func DeleteExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if !isMember(expense.GroupID, userID) {
		utils.Unauthorized(c, "You are not a member of this group")
		return
	}

	// Log before deleting
	var deleter models.User
	database.DB.First(&deleter, userID)

	database.DB.Create(&models.Activity{
		GroupID:     expense.GroupID,
		UserID:      userID,
		Type:        models.ActivityExpenseDeleted,
		Description: fmt.Sprintf("%s deleted \"%s\" (%s %.2f)", deleter.Name, expense.Description, expense.Currency, expense.Amount),
	})

	// Delete splits and expense
	database.DB.Where("expense_id = ?", expenseID).Delete(&models.ExpenseSplit{})
	database.DB.Delete(&expense)

	database.InvalidateBalances(c.Request.Context(), expense.GroupID)

	utils.SuccessResponse(c, http.StatusOK, "Expense deleted", nil)
}

// calculateSplits turns a request into currency-exact splits via the
// netting engine's allocator. Every path reconciles to the expense total
// at the currency's precision.
func calculateSplits(expense models.Expense, splitInputs []models.SplitInput, groupID uuid.UUID) ([]models.ExpenseSplit, error) {
	decimals := currency.Decimals(expense.Currency)

	paidAmount := func(userID uuid.UUID) float64 {
		if userID == expense.PaidBy {
			return expense.Amount
		}
		return 0
	}

	fromLedger := func(splits []ledger.Split) []models.ExpenseSplit {
		out := make([]models.ExpenseSplit, 0, len(splits))
		for _, s := range splits {
			out = append(out, models.ExpenseSplit{
				UserID:     s.ParticipantID,
				OwedAmount: s.Amount,
				Percentage: s.Percentage,
				PaidAmount: paidAmount(s.ParticipantID),
			})
		}
		return out
	}

	memberIDs := func() []uuid.UUID {
		var members []models.GroupMember
		database.DB.Where("group_id = ?", groupID).Order("joined_at ASC").Find(&members)
		ids := make([]uuid.UUID, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserID)
		}
		return ids
	}

	parseInputs := func() ([]uuid.UUID, []float64, error) {
		ids := make([]uuid.UUID, 0, len(splitInputs))
		values := make([]float64, 0, len(splitInputs))
		for _, s := range splitInputs {
			uid, err := uuid.Parse(s.UserID)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid user ID: %s", s.UserID)
			}
			ids = append(ids, uid)
			values = append(values, s.Value)
		}
		return ids, values, nil
	}

	switch expense.SplitType {
	case "equal":
		ids := memberIDs()
		if len(ids) == 0 {
			return nil, fmt.Errorf("no members in group")
		}
		return fromLedger(allocator.EqualSplits(expense.Amount, expense.Currency, ids)), nil

	case "exact":
		if len(splitInputs) == 0 {
			// Seed an editable starting point across all members.
			ids := memberIDs()
			if len(ids) == 0 {
				return nil, fmt.Errorf("no members in group")
			}
			return fromLedger(allocator.ExactSplits(expense.Amount, expense.Currency, ids)), nil
		}

		ids, values, err := parseInputs()
		if err != nil {
			return nil, err
		}

		var total float64
		for i, v := range values {
			values[i] = ledger.RoundTo(v, decimals)
			total += values[i]
		}
		if ledger.RoundTo(total, decimals) != ledger.RoundTo(expense.Amount, decimals) {
			return nil, fmt.Errorf("split amounts (%.2f) don't add up to total (%.2f)", total, expense.Amount)
		}

		splits := make([]models.ExpenseSplit, 0, len(ids))
		for i, uid := range ids {
			splits = append(splits, models.ExpenseSplit{
				UserID:     uid,
				OwedAmount: values[i],
				PaidAmount: paidAmount(uid),
			})
		}
		return splits, nil

	case "percentage":
		if len(splitInputs) == 0 {
			ids := memberIDs()
			if len(ids) == 0 {
				return nil, fmt.Errorf("no members in group")
			}
			return fromLedger(allocator.PercentageSplits(expense.Amount, expense.Currency, ids)), nil
		}

		ids, percentages, err := parseInputs()
		if err != nil {
			return nil, err
		}

		var totalPercent float64
		for _, p := range percentages {
			totalPercent += p
		}
		if ledger.RoundTo(totalPercent, 2) != 100.0 {
			return nil, fmt.Errorf("percentages must add up to 100, got %.2f", totalPercent)
		}

		// Round each share, residual to the last participant so the
		// amounts still reconcile to the total.
		splits := make([]models.ExpenseSplit, 0, len(ids))
		var allocated float64
		for i, uid := range ids {
			var owed float64
			if i == len(ids)-1 {
				owed = ledger.RoundTo(expense.Amount-allocated, decimals)
			} else {
				owed = ledger.RoundTo(expense.Amount*percentages[i]/100, decimals)
				allocated += owed
			}
			splits = append(splits, models.ExpenseSplit{
				UserID:     uid,
				OwedAmount: owed,
				Percentage: ledger.RoundTo(percentages[i], 2),
				PaidAmount: paidAmount(uid),
			})
		}
		return splits, nil

	case "shares":
		if len(splitInputs) == 0 {
			return nil, fmt.Errorf("splits required for shares split type")
		}

		ids, shares, err := parseInputs()
		if err != nil {
			return nil, err
		}

		result := allocator.WeightedSplits(expense.Amount, expense.Currency, ids, shares)
		if len(result) == 0 {
			return nil, fmt.Errorf("total shares must be greater than 0")
		}
		return fromLedger(result), nil

	default:
		return nil, fmt.Errorf("invalid split type: %s", expense.SplitType)
	}
}

// Build expense response with payer name and split details
func buildExpenseResponse(expenseID uuid.UUID) models.ExpenseResponse {
	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		return models.ExpenseResponse{}
	}

	var payer models.User
	database.DB.First(&payer, expense.PaidBy)

	var dbSplits []models.ExpenseSplit
	database.DB.Where("expense_id = ?", expenseID).Find(&dbSplits)

	var splitResponses []models.SplitResponse
	for _, s := range dbSplits {
		var user models.User
		database.DB.First(&user, s.UserID)
		splitResponses = append(splitResponses, models.SplitResponse{
			UserID:     s.UserID,
			UserName:   user.Name,
			OwedAmount: s.OwedAmount,
			PaidAmount: s.PaidAmount,
			Percentage: s.Percentage,
		})
	}

	return models.ExpenseResponse{
		ID:          expense.ID,
		GroupID:     expense.GroupID,
		PaidBy:      expense.PaidBy,
		PayerName:   payer.Name,
		Description: expense.Description,
		Amount:      expense.Amount,
		Currency:    expense.Currency,
		Category:    expense.Category,
		SplitType:   expense.SplitType,
		Notes:       expense.Notes,
		ExpenseDate: expense.ExpenseDate,
		Splits:      splitResponses,
		CreatedAt:   expense.CreatedAt,
	}
}
