// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalCustomers       int64             `json:"totalCustomers"`
	MonthlyRevenue       float64           `json:"monthlyRevenue"`
	TotalBills           int64             `json:"totalBills"`
	UpcomingAppointments []UpcomingBooking `json:"upcomingAppointments"`
	LowStockProducts     []LowStockProduct `json:"lowStockProducts"`
}

type UpcomingBooking struct {
	CustomerName string    `json:"customerName"`
	StartTime    time.Time `json:"startTime"`
	Status       string    `json:"status"`
}

type LowStockProduct struct {
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
}

func GetDashboardOverview(c *gin.Context) {
	businessID, ok := businessIDFromContext(c)
	if !ok {
		return
	}

	overview := DashboardOverview{}

	config.DB.Model(&models.Customer{}).
		Where("business_id = ?", businessID).
		Count(&overview.TotalCustomers)

	// This month's paid revenue
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	config.DB.Model(&models.Bill{}).
		Where("business_id = ? AND paid = ? AND paid_at >= ?", businessID, true, firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&overview.MonthlyRevenue)

	config.DB.Model(&models.Bill{}).
		Where("business_id = ?", businessID).
		Count(&overview.TotalBills)

	// Next 7 days of bookings
	var upcoming []models.Appointment
	config.DB.Where(
		"business_id = ? AND status = ? AND start_time >= ? AND start_time < ?",
		businessID, models.AppointmentBooked, now, now.AddDate(0, 0, 7),
	).Order("start_time").Limit(10).Find(&upcoming)
	for _, appt := range upcoming {
		overview.UpcomingAppointments = append(overview.UpcomingAppointments, UpcomingBooking{
			CustomerName: appt.CustomerName,
			StartTime:    appt.StartTime,
			Status:       appt.Status,
		})
	}

	var lowStock []models.Product
	config.DB.Where(
		"business_id = ? AND is_active = ? AND stock_quantity <= low_stock_threshold",
		businessID, true,
	).Order("stock_quantity").Limit(10).Find(&lowStock)
	for _, product := range lowStock {
		overview.LowStockProducts = append(overview.LowStockProducts, LowStockProduct{
			Name:          product.Name,
			StockQuantity: product.StockQuantity,
		})
	}

	c.JSON(http.StatusOK, overview)
}
