package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Business struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	Slug    string    `gorm:"uniqueIndex;not null"` // public microsite key
	Address string
	Phone   string
	Email   string

	// Region is the jurisdiction code used to look up tax rates (e.g. "ON").
	Region string `gorm:"type:varchar(10);not null"`

	SMSNotifications   bool `gorm:"default:true"`
	EmailNotifications bool `gorm:"default:true"`
	BirthdayReminders  bool `gorm:"default:true"`

	Users     []User     `gorm:"foreignKey:BusinessID"`
	Staff     []Staff    `gorm:"foreignKey:BusinessID"`
	Customers []Customer `gorm:"foreignKey:BusinessID"`
	Services  []Service  `gorm:"foreignKey:BusinessID"`
	Products  []Product  `gorm:"foreignKey:BusinessID"`
	Bills     []Bill     `gorm:"foreignKey:BusinessID"`

	gorm.Model
}

func (b *Business) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
