package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AppointmentBooked    = "booked"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a confirmed booking. Rows are created only after the
// owning bill is paid; conflict checks ignore cancelled rows.
type Appointment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null"`
	StaffID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null"`
	BillID     uuid.UUID `gorm:"type:uuid;index"`

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	StartTime time.Time `gorm:"index;not null"`
	EndTime   time.Time `gorm:"not null"`

	Status string `gorm:"type:varchar(20);default:'booked'"`

	Price     float64 `gorm:"type:decimal(10,2)"`
	TaxAmount float64 `gorm:"type:decimal(10,2)"`
	Total     float64 `gorm:"type:decimal(10,2)"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Overlaps applies the half-open interval test against [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime) && end.After(a.StartTime)
}
