package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory sqlite database. cache=shared keeps
// every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicestest%d?mode=memory&cache=shared&_loc=auto", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Business{},
		&models.User{},
		&models.Staff{},
		&models.Customer{},
		&models.Service{},
		&models.Product{},
		&models.Appointment{},
		&models.Bill{},
		&models.BillItem{},
		&models.NotificationTemplate{},
		&models.NotificationLog{},
	))
	return db
}

func testTaxTable() config.TaxTable {
	return config.TaxTable{
		"ON": {"HST": 0.13},
		"BC": {"GST": 0.05, "PST": 0.07},
	}
}

func createBusiness(t *testing.T, db *gorm.DB, region string) models.Business {
	t.Helper()
	business := models.Business{
		Name:   "Test Salon",
		Slug:   fmt.Sprintf("test-salon-%d", atomic.AddInt64(&testDBCounter, 1)),
		Region: region,
	}
	require.NoError(t, db.Create(&business).Error)
	return business
}

func createService(t *testing.T, db *gorm.DB, businessID uuid.UUID, name string, price float64, duration int) models.Service {
	t.Helper()
	svc := models.Service{
		BusinessID: businessID,
		Name:       name,
		Price:      price,
		Duration:   duration,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&svc).Error)
	return svc
}

func createStaff(t *testing.T, db *gorm.DB, businessID uuid.UUID, name string, hours models.WeekSchedule, qualified ...models.Service) models.Staff {
	t.Helper()
	staff := models.Staff{
		BusinessID:   businessID,
		Name:         name,
		WorkingHours: hours,
		IsActive:     true,
	}
	for i := range qualified {
		staff.Services = append(staff.Services, &qualified[i])
	}
	require.NoError(t, db.Create(&staff).Error)
	return staff
}

// monday is a fixed reference day so weekday-keyed schedules are
// deterministic.
func monday(t *testing.T) time.Time {
	t.Helper()
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	require.Equal(t, time.Monday, day.Weekday())
	return day
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
