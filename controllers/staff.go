// controllers/staff.go
package controllers

import (
	"errors"
	"net/http"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateStaffInput struct {
	Name         string              `json:"name" binding:"required"`
	Phone        string              `json:"phone"`
	Email        string              `json:"email" binding:"omitempty,email"`
	WorkingHours models.WeekSchedule `json:"workingHours"`
	ServiceIDs   []uuid.UUID         `json:"serviceIds"`
}

type UpdateStaffInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" binding:"omitempty,email"`
	IsActive *bool   `json:"isActive"`
}

type UpdateStaffHoursInput struct {
	WorkingHours models.WeekSchedule `json:"workingHours" binding:"required"`
}

type UpdateStaffServicesInput struct {
	ServiceIDs []uuid.UUID `json:"serviceIds" binding:"required"`
}

func CreateStaff(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	var input CreateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := validateWeekSchedule(input.WorkingHours); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	staff := models.Staff{
		BusinessID:   businessID,
		Name:         input.Name,
		Phone:        input.Phone,
		Email:        input.Email,
		WorkingHours: input.WorkingHours,
		IsActive:     true,
	}
	if staff.WorkingHours == nil {
		staff.WorkingHours = models.WeekSchedule{}
	}

	services, err := resolveServices(businessID, input.ServiceIDs)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	staff.Services = services

	if err := config.DB.Create(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create staff member")
		return
	}

	c.JSON(http.StatusCreated, staff)
}

func GetStaff(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	var staff []models.Staff
	if err := config.DB.Preload("Services").
		Where("business_id = ?", businessID).
		Order("name").Find(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}

	c.JSON(http.StatusOK, staff)
}

func GetStaffMember(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	staffUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	var staff models.Staff
	if err := config.DB.Preload("Services").
		Where("business_id = ? AND id = ?", businessID, staffUUID).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, staff)
}

func UpdateStaffMember(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	staffUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	var input UpdateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var staff models.Staff
	if err := config.DB.Where("business_id = ? AND id = ?", businessID, staffUUID).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		staff.Name = *input.Name
	}
	if input.Phone != nil {
		staff.Phone = *input.Phone
	}
	if input.Email != nil {
		staff.Email = *input.Email
	}
	if input.IsActive != nil {
		staff.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update staff member")
		return
	}

	c.JSON(http.StatusOK, staff)
}

// UpdateStaffHours replaces the weekly schedule wholesale.
func UpdateStaffHours(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	staffUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	var input UpdateStaffHoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := validateWeekSchedule(input.WorkingHours); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result := config.DB.Model(&models.Staff{}).
		Where("business_id = ? AND id = ?", businessID, staffUUID).
		Update("working_hours", input.WorkingHours)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update working hours")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Working hours updated"})
}

// UpdateStaffServices replaces the staff member's qualified service list.
func UpdateStaffServices(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	staffUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	var input UpdateStaffServicesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var staff models.Staff
	if err := config.DB.Where("business_id = ? AND id = ?", businessID, staffUUID).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	services, err := resolveServices(businessID, input.ServiceIDs)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := config.DB.Model(&staff).Association("Services").Replace(services); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update services")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Services updated"})
}

// DeleteStaffMember soft deletes a staff member
func DeleteStaffMember(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	staffUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	result := config.DB.Where("business_id = ? AND id = ?", businessID, staffUUID).
		Delete(&models.Staff{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete staff member")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}

func resolveServices(businessID uuid.UUID, ids []uuid.UUID) ([]*models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var services []*models.Service
	if err := config.DB.Where("business_id = ? AND id IN ?", businessID, ids).
		Find(&services).Error; err != nil {
		return nil, errors.New("failed to resolve services")
	}
	if len(services) != len(ids) {
		return nil, errors.New("one or more services not found")
	}
	return services, nil
}

// validateWeekSchedule rejects malformed range strings up front so
// availability generation never sees them.
func validateWeekSchedule(schedule models.WeekSchedule) error {
	for day, ranges := range schedule {
		for _, r := range ranges {
			if _, err := utils.ParseClockRange(r); err != nil {
				return errors.New("invalid working hours for " + day + ": " + r)
			}
		}
	}
	return nil
}
