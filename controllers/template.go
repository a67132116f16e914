package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"streampro-backend/config"
	"streampro-backend/models"
	"streampro-backend/services"
	"streampro-backend/utils"
)

type CreateTemplateInput struct {
	Name         string `json:"name" binding:"required"`
	TemplateType string `json:"templateType" binding:"required"`
	Subject      string `json:"subject"`
	Content      string `json:"content" binding:"required"`
}

type UpdateTemplateInput struct {
	Name     *string `json:"name"`
	Subject  *string `json:"subject"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
}

func validTemplateType(t string) bool {
	for _, b := range models.AllBuckets {
		if t == b.CanonicalTemplateType() {
			return true
		}
	}
	return t == models.TemplateTypeWelcome || t == models.TemplateTypeRenewal
}

func CreateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !validTemplateType(input.TemplateType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown template type")
		return
	}

	var existing models.MessageTemplate
	if err := config.DB.Where("user_id = ? AND template_type = ?", userID, input.TemplateType).
		First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Template of this type already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	template := models.MessageTemplate{
		UserID:       userID,
		Name:         input.Name,
		TemplateType: input.TemplateType,
		Subject:      input.Subject,
		Content:      input.Content,
		IsActive:     true,
	}
	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

func GetTemplates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var templates []models.MessageTemplate
	if err := config.DB.Where("user_id = ?", userID).
		Order("template_type asc").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	c.JSON(http.StatusOK, templates)
}

func UpdateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var template models.MessageTemplate
	if err := config.DB.Where("user_id = ? AND id = ?", userID, templateID).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Subject != nil {
		template.Subject = *input.Subject
	}
	if input.Content != nil {
		template.Content = *input.Content
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}

	c.JSON(http.StatusOK, template)
}

func DeleteTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	result := config.DB.Where("user_id = ? AND id = ?", userID, templateID).
		Delete(&models.MessageTemplate{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// RestoreDefaultTemplates puts the stock template set back, recreating any
// defaults the user deleted and resetting edited ones.
func RestoreDefaultTemplates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := services.RestoreDefaultTemplates(config.DB, userID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to restore default templates")
		return
	}

	var templates []models.MessageTemplate
	if err := config.DB.Where("user_id = ?", userID).
		Order("template_type asc").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Default templates restored",
		"templates": templates,
	})
}
