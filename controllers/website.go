// controllers/website.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/services"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// WebsiteController serves the public booking microsite: no auth, tenant
// resolved from the URL slug.
type WebsiteController struct {
	db           *gorm.DB
	availability *services.AvailabilityGenerator
	billing      *services.BillingCalculator
	payments     *services.PaymentService
	lock         *services.BookingLock
}

func NewWebsiteController(db *gorm.DB, taxes config.TaxTable, rdb *redis.Client) *WebsiteController {
	lock := services.NewBookingLock(rdb)
	return &WebsiteController{
		db:           db,
		availability: services.NewAvailabilityGenerator(db),
		billing:      services.NewBillingCalculator(db, taxes),
		payments:     services.NewPaymentService(db, lock),
		lock:         lock,
	}
}

// Payments exposes the payment service so main can swap the charge
// function in dev environments.
func (w *WebsiteController) Payments() *services.PaymentService {
	return w.payments
}

type selectionInput struct {
	ServiceID uuid.UUID  `json:"serviceId" binding:"required"`
	StaffID   *uuid.UUID `json:"staffId"` // omitted = any qualified staff
}

type AvailabilityInput struct {
	StartDate string           `json:"startDate"` // YYYY-MM-DD, defaults to today
	Items     []selectionInput `json:"items" binding:"required,min=1"`
}

type proposedInput struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
	StaffID   uuid.UUID `json:"staffId" binding:"required"`
	Start     time.Time `json:"start" binding:"required"`
}

type BookInput struct {
	CustomerName  string          `json:"customerName" binding:"required"`
	CustomerPhone string          `json:"customerPhone" binding:"required"`
	CustomerEmail string          `json:"customerEmail" binding:"omitempty,email"`
	Appointments  []proposedInput `json:"appointments" binding:"required,min=1"`
}

type PayInput struct {
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
}

// GetBusiness returns the public profile with the active catalog and
// bookable staff.
func (w *WebsiteController) GetBusiness(c *gin.Context) {
	business, ok := w.resolveBusiness(c)
	if !ok {
		return
	}

	var serviceList []models.Service
	w.db.Where("business_id = ? AND is_active = ?", business.ID, true).
		Order("category, name").Find(&serviceList)

	var staffList []models.Staff
	w.db.Preload("Services").
		Where("business_id = ? AND is_active = ?", business.ID, true).
		Order("name").Find(&staffList)

	staff := make([]gin.H, 0, len(staffList))
	for _, st := range staffList {
		serviceIDs := make([]uuid.UUID, 0, len(st.Services))
		for _, svc := range st.Services {
			serviceIDs = append(serviceIDs, svc.ID)
		}
		staff = append(staff, gin.H{
			"id":           st.ID,
			"name":         st.Name,
			"serviceIds":   serviceIDs,
			"workingHours": st.WorkingHours,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"name":     business.Name,
		"address":  business.Address,
		"phone":    business.Phone,
		"region":   business.Region,
		"services": serviceList,
		"staff":    staff,
	})
}

// GetAvailability runs the slot generator for the requested services.
func (w *WebsiteController) GetAvailability(c *gin.Context) {
	business, ok := w.resolveBusiness(c)
	if !ok {
		return
	}

	var input AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	startDate := time.Now()
	if input.StartDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.StartDate, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		startDate = parsed
	}

	selections := make([]services.ServiceSelection, 0, len(input.Items))
	for _, item := range input.Items {
		choice := services.AnyQualified()
		if item.StaffID != nil {
			choice = services.ForStaff(*item.StaffID)
		}
		selections = append(selections, services.ServiceSelection{
			ServiceID: item.ServiceID,
			Staff:     choice,
		})
	}

	slots, err := w.availability.DailySlots(business.ID, selections, startDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, slots)
}

// Book validates the proposed appointment set under the booking lock and
// prices it into an unpaid bill. All validation problems come back in
// one response.
func (w *WebsiteController) Book(c *gin.Context) {
	business, ok := w.resolveBusiness(c)
	if !ok {
		return
	}

	var input BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.CustomerPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	proposed := make([]services.ProposedAppointment, 0, len(input.Appointments))
	for _, p := range input.Appointments {
		proposed = append(proposed, services.ProposedAppointment{
			ServiceID: p.ServiceID,
			StaffID:   p.StaffID,
			Start:     p.Start,
		})
	}

	release, err := w.lock.Acquire(c.Request.Context(), proposed)
	if err != nil {
		if errors.Is(err, services.ErrSlotContended) {
			utils.RespondWithError(c, http.StatusConflict, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to acquire booking lock")
		}
		return
	}
	defer release()

	problems, err := w.billing.ValidateAppointments(business.ID, proposed)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if len(problems) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": problems})
		return
	}

	bill, err := w.billing.PriceAppointments(business.ID, services.CustomerContact{
		Name:  input.CustomerName,
		Phone: input.CustomerPhone,
		Email: input.CustomerEmail,
	}, proposed)
	if err != nil {
		if errors.Is(err, services.ErrMissingBusinessContext) {
			utils.RespondWithError(c, http.StatusInternalServerError, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create bill")
		}
		return
	}

	c.JSON(http.StatusCreated, bill)
}

// PayBill captures payment for an unpaid bill and confirms its
// appointments.
func (w *WebsiteController) PayBill(c *gin.Context) {
	business, ok := w.resolveBusiness(c)
	if !ok {
		return
	}

	billUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid bill ID format")
		return
	}

	var input PayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	bill, err := w.payments.CaptureBill(c.Request.Context(), business.ID, billUUID, input.PaymentMethodID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBillNotFound):
			utils.RespondWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrBillAlreadyPaid),
			errors.Is(err, services.ErrBillExpired),
			errors.Is(err, services.ErrSlotTaken),
			errors.Is(err, services.ErrSlotContended):
			utils.RespondWithError(c, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(c, http.StatusBadGateway, "Payment failed: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (w *WebsiteController) resolveBusiness(c *gin.Context) (*models.Business, bool) {
	var business models.Business
	err := w.db.Where("slug = ?", c.Param("slug")).First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Business not found")
		return nil, false
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return &business, true
}
