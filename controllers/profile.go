// controllers/profile.go
package controllers

import (
	"net/http"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Region  *string `json:"region"`
}

type UpdateNotificationsInput struct {
	SMSNotifications   *bool `json:"smsNotifications"`
	EmailNotifications *bool `json:"emailNotifications"`
	BirthdayReminders  *bool `json:"birthdayReminders"`
}

type UpdateTemplateInput struct {
	Type     string `json:"type" binding:"required,oneof=appointment birthday"`
	Message  string `json:"message" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

func GetProfile(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	var business models.Business
	if err := config.DB.First(&business, "id = ?", businessID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Business not found")
		return
	}

	var templates []models.NotificationTemplate
	config.DB.Where("business_id = ?", businessID).Find(&templates)

	c.JSON(http.StatusOK, gin.H{
		"name":               business.Name,
		"slug":               business.Slug,
		"address":            business.Address,
		"phone":              business.Phone,
		"email":              business.Email,
		"region":             business.Region,
		"smsNotifications":   business.SMSNotifications,
		"emailNotifications": business.EmailNotifications,
		"birthdayReminders":  business.BirthdayReminders,
		"templates":          templates,
	})
}

func UpdateProfile(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var business models.Business
	if err := config.DB.First(&business, "id = ?", businessID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Business not found")
		return
	}

	if input.Name != nil {
		business.Name = *input.Name
	}
	if input.Address != nil {
		business.Address = *input.Address
	}
	if input.Phone != nil {
		business.Phone = *input.Phone
	}
	if input.Email != nil {
		business.Email = *input.Email
	}
	if input.Region != nil {
		business.Region = *input.Region
	}

	if err := config.DB.Save(&business).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

func UpdateNotifications(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	var input UpdateNotificationsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	updates := map[string]interface{}{}
	if input.SMSNotifications != nil {
		updates["sms_notifications"] = *input.SMSNotifications
	}
	if input.EmailNotifications != nil {
		updates["email_notifications"] = *input.EmailNotifications
	}
	if input.BirthdayReminders != nil {
		updates["birthday_reminders"] = *input.BirthdayReminders
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := config.DB.Model(&models.Business{}).Where("id = ?", businessID).
		Updates(updates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated"})
}

// UpdateTemplate creates or replaces the template for a type.
func UpdateTemplate(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	var template models.NotificationTemplate
	err := config.DB.Where("business_id = ? AND type = ?", businessID, input.Type).
		First(&template).Error
	if err == nil {
		template.Message = input.Message
		template.IsActive = isActive
		if err := config.DB.Save(&template).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
			return
		}
		c.JSON(http.StatusOK, template)
		return
	}

	template = models.NotificationTemplate{
		BusinessID: businessID,
		Type:       input.Type,
		Message:    input.Message,
		IsActive:   isActive,
	}
	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}
