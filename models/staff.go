package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff is a bookable operator. WorkingHours holds wall-clock ranges per
// weekday; Services lists what this staff member is qualified to perform.
type Staff struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name  string `gorm:"not null"`
	Phone string
	Email string

	WorkingHours WeekSchedule `gorm:"type:jsonb;default:'{}'"`

	Services []*Service `gorm:"many2many:staff_services"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (s *Staff) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// QualifiedFor reports whether the service is in this staff member's list.
func (s *Staff) QualifiedFor(serviceID uuid.UUID) bool {
	for _, svc := range s.Services {
		if svc.ID == serviceID {
			return true
		}
	}
	return false
}

// RangesFor returns the declared working-hour ranges for a weekday name.
func (s *Staff) RangesFor(weekday string) []string {
	if s.WorkingHours == nil {
		return nil
	}
	return s.WorkingHours[weekday]
}
