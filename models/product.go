package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	SKU         string `gorm:"index"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2);not null"`

	StockQuantity     int `gorm:"default:0"`
	LowStockThreshold int `gorm:"default:5"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}
