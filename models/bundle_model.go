package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BundleAccessPermanent = "permanent"
	BundleAccessLimited   = "limited"
)

type Bundle struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	Price            float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	AccessType       string    `gorm:"size:20;not null;default:'permanent'" json:"access_type"`
	AccessPeriodDays int       `gorm:"default:0" json:"access_period_days"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`

	Courses []Course `gorm:"many2many:bundle_courses;" json:"courses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bundle) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
