// controllers/appointment.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAppointments lists bookings, optionally filtered by ?from=YYYY-MM-DD
// and ?to=YYYY-MM-DD and ?staffId=...
func GetAppointments(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("business_id = ?", businessID)

	if from := c.Query("from"); from != "" {
		day, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("start_time >= ?", day)
	}
	if to := c.Query("to"); to != "" {
		day, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("start_time < ?", day.AddDate(0, 0, 1))
	}
	if staffID := c.Query("staffId"); staffID != "" {
		staffUUID, err := uuid.Parse(staffID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
			return
		}
		query = query.Where("staff_id = ?", staffUUID)
	}

	var appointments []models.Appointment
	if err := query.Order("start_time").Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func GetAppointment(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	apptUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.Where("business_id = ? AND id = ?", businessID, apptUUID).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// CancelAppointment frees the slot; the row is kept for history.
func CancelAppointment(c *gin.Context) {
	updateAppointmentStatus(c, models.AppointmentCancelled, "Appointment cancelled")
}

func CompleteAppointment(c *gin.Context) {
	updateAppointmentStatus(c, models.AppointmentCompleted, "Appointment completed")
}

func updateAppointmentStatus(c *gin.Context, status, message string) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	apptUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	result := config.DB.Model(&models.Appointment{}).
		Where("business_id = ? AND id = ? AND status = ?", businessID, apptUUID, models.AppointmentBooked).
		Update("status", status)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Appointment not found or not in booked state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
