package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/npomfret/splitifyd-sub010/currency"
	"github.com/npomfret/splitifyd-sub010/database"
	"github.com/npomfret/splitifyd-sub010/ledger"
	"github.com/npomfret/splitifyd-sub010/models"
	"github.com/npomfret/splitifyd-sub010/services"
	"github.com/npomfret/splitifyd-sub010/utils"
)

// POST /api/groups/:id/settle
func CreateSettlement(c *gin.Context) {
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

	var req models.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	paidTo, err := uuid.Parse(req.PaidTo)
	if err != nil {
		utils.BadRequest(c, "Invalid paid_to user ID")
		return
	}
	if paidTo == userID {
		utils.BadRequest(c, "Cannot settle with yourself")
		return
	}

	code := req.Currency
	if code == "" {
		code = currency.DefaultCode
	}
	if !currency.IsValid(code) {
		utils.BadRequest(c, "Unsupported currency code: "+code)
		return
	}

	settlement := models.Settlement{
		GroupID:  groupID,
		PaidBy:   userID,
		PaidTo:   paidTo,
		Amount:   ledger.RoundTo(req.Amount, currency.Decimals(code)),
		Currency: code,
		Notes:    req.Notes,
	}

	if err := database.DB.Create(&settlement).Error; err != nil {
		utils.InternalError(c, "Failed to create settlement")
		return
	}

	database.InvalidateBalances(c.Request.Context(), groupID)

	// Log activity
	var payer, payee models.User
	database.DB.First(&payer, userID)
	database.DB.First(&payee, paidTo)
	var group models.Group
	database.DB.First(&group, groupID)

	database.DB.Create(&models.Activity{
		GroupID:     groupID,
		UserID:      userID,
		Type:        models.ActivitySettlement,
		ReferenceID: settlement.ID,
		Description: fmt.Sprintf("%s paid %s %s %.2f", payer.Name, payee.Name, settlement.Currency, settlement.Amount),
	})

	// Notify the payee
	go services.GetNotificationService().NotifySettlement(settlement, payer, payee, group)

	utils.SuccessResponse(c, http.StatusCreated, "Settlement recorded", settlement)
}

// GET /api/groups/:id/settlements
func GetGroupSettlements(c *gin.Context) {
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

	var settlements []models.Settlement
	database.DB.Where("group_id = ?", groupID).
		Preload("Payer").Preload("Payee").
		Order("created_at DESC").
		Find(&settlements)

	utils.SuccessResponse(c, http.StatusOK, "", settlements)
}
