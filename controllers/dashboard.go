package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streampro-backend/config"
	"streampro-backend/models"
	"streampro-backend/utils"
)

// DashboardController summarizes the client base and today's delivery
// activity for the overview screen.
type DashboardController struct {
	Clock *utils.Clock
}

func (ctl *DashboardController) GetOverview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	today := ctl.Clock.Today()
	startOfDayUTC := ctl.Clock.StartOfTodayUTC()

	var activeClients int64
	if err := config.DB.Model(&models.Client{}).
		Where("user_id = ? AND status = ?", userID, models.ClientStatusActive).
		Count(&activeClients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var dueToday int64
	if err := config.DB.Model(&models.Client{}).
		Where("user_id = ? AND status = ? AND due_date = ?",
			userID, models.ClientStatusActive, today.Format("2006-01-02")).
		Count(&dueToday).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var overdue int64
	if err := config.DB.Model(&models.Client{}).
		Where("user_id = ? AND status = ? AND due_date < ?",
			userID, models.ClientStatusActive, today.Format("2006-01-02")).
		Count(&overdue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var dueSoon int64
	if err := config.DB.Model(&models.Client{}).
		Where("user_id = ? AND status = ? AND due_date > ? AND due_date <= ?",
			userID, models.ClientStatusActive,
			today.Format("2006-01-02"), today.AddDate(0, 0, 2).Format("2006-01-02")).
		Count(&dueSoon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var sentToday, failedToday int64
	if err := config.DB.Model(&models.MessageLog{}).
		Where("user_id = ? AND status = ? AND sent_at >= ?",
			userID, models.LogStatusSent, startOfDayUTC).
		Count(&sentToday).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	if err := config.DB.Model(&models.MessageLog{}).
		Where("user_id = ? AND status = ? AND sent_at >= ?",
			userID, models.LogStatusFailed, startOfDayUTC).
		Count(&failedToday).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var monthlyRevenue float64
	if err := config.DB.Model(&models.Client{}).
		Where("user_id = ? AND status = ?", userID, models.ClientStatusActive).
		Select("COALESCE(SUM(plan_price), 0)").Scan(&monthlyRevenue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activeClients":  activeClients,
		"dueToday":       dueToday,
		"dueSoon":        dueSoon,
		"overdue":        overdue,
		"messagesSent":   sentToday,
		"messagesFailed": failedToday,
		"monthlyRevenue": monthlyRevenue,
		"referenceDate":  today.Format("2006-01-02"),
	})
}
