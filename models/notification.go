package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationTemplate struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null"`
	Type       string    `gorm:"type:varchar(20);not null"` // appointment, birthday
	Message    string    `gorm:"type:text;not null"`
	IsActive   bool      `gorm:"default:true"`
	gorm.Model
}

func (t *NotificationTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

type NotificationLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	BusinessID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	TemplateID   uuid.UUID  `gorm:"type:uuid;index"`
	Type         string     `gorm:"type:varchar(20)"` // appointment, birthday
	Message      string     `gorm:"type:text"`
	Status       string     `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string     `gorm:"type:text"`
	Channel      string     `gorm:"type:varchar(20)"` // sms, whatsapp, email
	Recipient    string
	SentAt       time.Time
	gorm.Model
}

func (l *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
