package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill is created unpaid by the billing calculator and flips to paid on
// payment capture. Unpaid bills past ExpiresAt are swept by a cron job.
type Bill struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null"`

	BillNumber string `gorm:"uniqueIndex;not null"`

	CustomerName  string `gorm:"not null"`
	CustomerPhone string
	CustomerEmail string

	Subtotal  float64   `gorm:"type:decimal(10,2);not null"`
	TaxTotals TaxTotals `gorm:"type:jsonb;default:'{}'"`
	Total     float64   `gorm:"type:decimal(10,2);not null"`

	Paid      bool `gorm:"default:false"`
	PaidAt    *time.Time
	ExpiresAt time.Time `gorm:"index;not null"`

	PaymentReference string // provider-side id once captured

	Items []BillItem `gorm:"foreignKey:BillID"`

	gorm.Model
}

func (b *Bill) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// Expired reports whether an unpaid bill is past its expiry.
func (b *Bill) Expired(now time.Time) bool {
	return !b.Paid && now.After(b.ExpiresAt)
}

// BillItem is one itemized service line with its full tax breakdown.
type BillItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	BillID uuid.UUID `gorm:"type:uuid;index;not null"`

	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceName string    `gorm:"not null"`
	StaffID     uuid.UUID `gorm:"type:uuid;index;not null"`

	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`

	Price float64  `gorm:"type:decimal(10,2);not null"`
	Taxes TaxLines `gorm:"type:jsonb;default:'[]'"`
	Total float64  `gorm:"type:decimal(10,2);not null"`
}

func (i *BillItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
