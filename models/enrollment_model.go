package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentTypeManual = "manual"
	EnrollmentTypeAuto   = "auto"
)

// EnrolledCourse is a per-user course access grant. BundleID points at the
// bundle purchase that produced it, nil for direct purchases; a grant derived
// from a bundle always carries the same expiry as the bundle grant.
type EnrolledCourse struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID  `gorm:"not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID       uuid.UUID  `gorm:"not null;uniqueIndex:idx_user_course" json:"course_id"`
	EnrollmentType string     `gorm:"size:10;not null;default:'auto'" json:"enrollment_type"`
	EnrolledAt     time.Time  `gorm:"not null" json:"enrolled_at"`
	Progress       int        `gorm:"default:0" json:"progress"`
	BundleID       *uuid.UUID `gorm:"index" json:"bundle_id"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *EnrolledCourse) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type EnrolledBundle struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID  `gorm:"not null;uniqueIndex:idx_user_bundle" json:"user_id"`
	BundleID       uuid.UUID  `gorm:"not null;uniqueIndex:idx_user_bundle" json:"bundle_id"`
	EnrollmentType string     `gorm:"size:10;not null;default:'auto'" json:"enrollment_type"`
	EnrolledAt     time.Time  `gorm:"not null" json:"enrolled_at"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *EnrolledBundle) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
