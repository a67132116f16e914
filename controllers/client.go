package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/config"
	"streampro-backend/models"
	"streampro-backend/services"
	"streampro-backend/utils"
)

// ClientController carries the job sink so client lifecycle events
// (welcome, renewal) go out through the same rate-limited sender pool as
// the scheduled reminders.
type ClientController struct {
	Sink services.JobSink
}

type CreateClientInput struct {
	Name        string  `json:"name" binding:"required"`
	PhoneNumber string  `json:"phoneNumber" binding:"required"`
	PlanName    string  `json:"planName" binding:"required"`
	PlanPrice   float64 `json:"planPrice" binding:"required,gt=0"`
	Server      string  `json:"server"`
	OtherInfo   string  `json:"otherInfo"`
	DueDate     string  `json:"dueDate" binding:"required"` // YYYY-MM-DD
}

type UpdateClientInput struct {
	Name                 *string  `json:"name"`
	PhoneNumber          *string  `json:"phoneNumber"`
	PlanName             *string  `json:"planName"`
	PlanPrice            *float64 `json:"planPrice"`
	Server               *string  `json:"server"`
	OtherInfo            *string  `json:"otherInfo"`
	DueDate              *string  `json:"dueDate"`
	Status               *string  `json:"status"`
	AutoRemindersEnabled *bool    `json:"autoRemindersEnabled"`
}

type RenewClientInput struct {
	Months int `json:"months"`
}

func (ctl *ClientController) CreateClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.PhoneNumber) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	dueDate, err := time.Parse("2006-01-02", input.DueDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid due date (want YYYY-MM-DD)")
		return
	}

	var existingClient models.Client
	if err := config.DB.Where("user_id = ? AND phone_number = ?", userID, input.PhoneNumber).
		First(&existingClient).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Client with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	client := models.Client{
		UserID:               userID,
		Name:                 input.Name,
		PhoneNumber:          input.PhoneNumber,
		PlanName:             input.PlanName,
		PlanPrice:            input.PlanPrice,
		Server:               input.Server,
		OtherInfo:            input.OtherInfo,
		DueDate:              dueDate,
		Status:               models.ClientStatusActive,
		AutoRemindersEnabled: true,
	}

	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	ctl.sendLifecycleMessage(userID, client, models.TemplateTypeWelcome)

	c.JSON(http.StatusCreated, client)
}

func (ctl *ClientController) GetClients(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := config.DB.Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var clients []models.Client
	if err := query.Order("due_date asc").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

func (ctl *ClientController) GetClient(c *gin.Context) {
	client, ok := ctl.loadClient(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client)
}

func (ctl *ClientController) UpdateClient(c *gin.Context) {
	client, ok := ctl.loadClient(c)
	if !ok {
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.PhoneNumber != nil {
		if !utils.ValidatePhone(*input.PhoneNumber) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		client.PhoneNumber = *input.PhoneNumber
	}
	if input.PlanName != nil {
		client.PlanName = *input.PlanName
	}
	if input.PlanPrice != nil {
		client.PlanPrice = *input.PlanPrice
	}
	if input.Server != nil {
		client.Server = *input.Server
	}
	if input.OtherInfo != nil {
		client.OtherInfo = *input.OtherInfo
	}
	if input.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *input.DueDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid due date (want YYYY-MM-DD)")
			return
		}
		client.DueDate = dueDate
	}
	if input.Status != nil {
		if *input.Status != models.ClientStatusActive && *input.Status != models.ClientStatusInactive {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
			return
		}
		client.Status = *input.Status
	}
	if input.AutoRemindersEnabled != nil {
		client.AutoRemindersEnabled = *input.AutoRemindersEnabled
	}

	if err := config.DB.Save(client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}

func (ctl *ClientController) DeleteClient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	result := config.DB.Where("user_id = ? AND id = ?", userID, clientID).
		Delete(&models.Client{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

// RenewClient advances the due date by N months, reactivates the client,
// and sends the renewal confirmation.
func (ctl *ClientController) RenewClient(c *gin.Context) {
	client, ok := ctl.loadClient(c)
	if !ok {
		return
	}

	// Body is optional; default to one month.
	var input RenewClientInput
	_ = c.ShouldBindJSON(&input)
	if input.Months <= 0 {
		input.Months = 1
	}

	client.DueDate = client.DueDate.AddDate(0, input.Months, 0)
	client.Status = models.ClientStatusActive

	if err := config.DB.Save(client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to renew client")
		return
	}

	ctl.sendLifecycleMessage(client.UserID, *client, models.TemplateTypeRenewal)

	c.JSON(http.StatusOK, client)
}

func (ctl *ClientController) loadClient(c *gin.Context) (*models.Client, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return nil, false
	}

	var client models.Client
	if err := config.DB.Where("user_id = ? AND id = ?", userID, clientID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &client, true
}

// sendLifecycleMessage enqueues a welcome or renewal message when an active
// template exists. Lifecycle sends are best effort and never fail the
// request.
func (ctl *ClientController) sendLifecycleMessage(userID uuid.UUID, client models.Client, templateType string) {
	if ctl.Sink == nil {
		return
	}

	var template models.MessageTemplate
	err := config.DB.Where("user_id = ? AND template_type = ? AND is_active = ?",
		userID, templateType, true).First(&template).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User %s: failed to load %s template: %v", userID, templateType, err)
		}
		return
	}

	job := services.SendJob{
		UserID:       userID,
		ClientID:     client.ID,
		TemplateID:   template.ID,
		TemplateType: template.TemplateType,
		To:           client.PhoneNumber,
		Body:         services.RenderTemplate(template.Content, client),
	}
	if !ctl.Sink.Enqueue(job) {
		log.Printf("User %s: send queue full; dropped %s message for client %s",
			userID, templateType, client.ID)
	}
}
