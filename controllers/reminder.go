package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"streampro-backend/config"
	"streampro-backend/models"
	"streampro-backend/services"
	"streampro-backend/utils"
)

// ReminderController exposes the reminder engine over HTTP: a manual
// trigger, the delivery log, and the per-user schedule settings.
type ReminderController struct {
	Reminders *services.ReminderService
	Store     services.Store
}

type UpdateScheduleInput struct {
	MorningReminderTime *string `json:"morningReminderTime"`
	DailyReportTime     *string `json:"dailyReportTime"`
	AutoSendEnabled     *bool   `json:"autoSendEnabled"`
}

// RunNow triggers a reminder pass for the authenticated user outside the
// regular schedule. Dedup still applies, so repeating it is safe.
func (ctl *ReminderController) RunNow(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	queued, warnings := ctl.Reminders.RunNow(userID)

	c.JSON(http.StatusOK, gin.H{
		"queued":   queued,
		"warnings": warnings,
	})
}

// GetLogs returns the most recent delivery log entries, newest first.
func (ctl *ReminderController) GetLogs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	query := config.DB.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var logs []models.MessageLog
	if err := query.Order("sent_at desc").Limit(limit).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (ctl *ReminderController) GetScheduleSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	settings, err := ctl.Store.ScheduleSettingsFor(userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (ctl *ReminderController) UpdateScheduleSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	settings, err := ctl.Store.ScheduleSettingsFor(userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule settings")
		return
	}

	if input.MorningReminderTime != nil {
		if !utils.ValidateClockTime(*input.MorningReminderTime) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid morning reminder time (want HH:MM)")
			return
		}
		settings.MorningReminderTime = *input.MorningReminderTime
	}
	if input.DailyReportTime != nil {
		if !utils.ValidateClockTime(*input.DailyReportTime) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid daily report time (want HH:MM)")
			return
		}
		settings.DailyReportTime = *input.DailyReportTime
	}
	if input.AutoSendEnabled != nil {
		settings.AutoSendEnabled = *input.AutoSendEnabled
	}

	if err := config.DB.Save(settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update schedule settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}
