package services

import (
	"errors"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/metrics"
	"github.com/mridulaoc/life_academy/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplyGrant derives and applies the access grants a paid line item entitles
// the user to. Called inside the order-completion transaction.
func ApplyGrant(tx *gorm.DB, userID uuid.UUID, item models.OrderItem, enrollmentType string, now time.Time) error {
	switch item.ItemType {
	case models.ItemTypeCourse:
		return applyCourseGrant(tx, userID, item.ItemID, enrollmentType, nil, nil, now)
	case models.ItemTypeBundle:
		var bundle models.Bundle
		if err := tx.Preload("Courses").First(&bundle, "id = ?", item.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return applyBundleGrant(tx, userID, bundle, enrollmentType, now)
	}
	return nil
}

// applyCourseGrant creates a course grant, or merges into an existing one.
// A direct purchase of an already-held permanent grant is a no-op; a lapsed or
// time-boxed grant is converted into a fresh permanent direct grant, since a
// deactivated grant only comes back through a new purchase. A bundle-derived
// grant re-points the existing record at the bundle and aligns its expiry.
func applyCourseGrant(tx *gorm.DB, userID, courseID uuid.UUID, enrollmentType string, bundleID *uuid.UUID, expiry *time.Time, now time.Time) error {
	var existing models.EnrolledCourse
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		if bundleID == nil {
			if existing.IsActive && existing.ExpiryDate == nil {
				return nil
			}
			return tx.Model(&existing).Updates(map[string]interface{}{
				"bundle_id":   nil,
				"expiry_date": nil,
				"is_active":   true,
				"enrolled_at": now,
			}).Error
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"bundle_id":   bundleID,
			"expiry_date": expiry,
			"is_active":   true,
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	grant := models.EnrolledCourse{
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentType: enrollmentType,
		EnrolledAt:     now,
		BundleID:       bundleID,
		ExpiryDate:     expiry,
		IsActive:       true,
	}
	return tx.Create(&grant).Error
}

// applyBundleGrant creates or refreshes the bundle grant and fans the same
// expiry out to a grant for every course in the bundle.
func applyBundleGrant(tx *gorm.DB, userID uuid.UUID, bundle models.Bundle, enrollmentType string, now time.Time) error {
	var expiry *time.Time
	if bundle.AccessType == models.BundleAccessLimited && bundle.AccessPeriodDays > 0 {
		e := now.AddDate(0, 0, bundle.AccessPeriodDays)
		expiry = &e
	}

	var existing models.EnrolledBundle
	err := tx.Where("user_id = ? AND bundle_id = ?", userID, bundle.ID).First(&existing).Error
	switch {
	case err == nil:
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"expiry_date": expiry,
			"is_active":   true,
		}).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		grant := models.EnrolledBundle{
			UserID:         userID,
			BundleID:       bundle.ID,
			EnrollmentType: enrollmentType,
			EnrolledAt:     now,
			ExpiryDate:     expiry,
			IsActive:       true,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}
	default:
		return err
	}

	for _, course := range bundle.Courses {
		if err := applyCourseGrant(tx, userID, course.ID, enrollmentType, &bundle.ID, expiry, now); err != nil {
			return err
		}
	}
	return nil
}

// ManualEnroll is the administrative enrollment path. Unlike the purchase
// path it refuses outright when the user already holds the grant.
func ManualEnroll(userID, itemID uuid.UUID, itemType string) error {
	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		switch itemType {
		case models.ItemTypeCourse:
			var count int64
			if err := tx.Model(&models.EnrolledCourse{}).
				Where("user_id = ? AND course_id = ? AND is_active = ?", userID, itemID, true).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrAlreadyEnrolled
			}
			var course models.Course
			if err := tx.First(&course, "id = ?", itemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return applyCourseGrant(tx, userID, itemID, models.EnrollmentTypeManual, nil, nil, now)
		case models.ItemTypeBundle:
			var count int64
			if err := tx.Model(&models.EnrolledBundle{}).
				Where("user_id = ? AND bundle_id = ? AND is_active = ?", userID, itemID, true).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrAlreadyEnrolled
			}
			var bundle models.Bundle
			if err := tx.Preload("Courses").First(&bundle, "id = ?", itemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return applyBundleGrant(tx, userID, bundle, models.EnrollmentTypeManual, now)
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}
	metrics.GrantsApplied.WithLabelValues(itemType).Inc()
	return nil
}

// RevokeBundleGrants deactivates the bundle grant and every course grant that
// back-references it. Grants are never deleted.
func RevokeBundleGrants(tx *gorm.DB, userID, bundleID uuid.UUID) (int64, error) {
	var revoked int64

	result := tx.Model(&models.EnrolledBundle{}).
		Where("user_id = ? AND bundle_id = ? AND is_active = ?", userID, bundleID, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	revoked += result.RowsAffected

	result = tx.Model(&models.EnrolledCourse{}).
		Where("user_id = ? AND bundle_id = ? AND is_active = ?", userID, bundleID, true).
		Update("is_active", false)
	if result.Error != nil {
		return revoked, result.Error
	}
	revoked += result.RowsAffected
	return revoked, nil
}

type UserEnrollments struct {
	Courses []models.EnrolledCourse `json:"courses"`
	Bundles []models.EnrolledBundle `json:"bundles"`
}

func ListUserEnrollments(userID uuid.UUID) (*UserEnrollments, error) {
	var enrollments UserEnrollments
	if err := database.DB.
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&enrollments.Courses).Error; err != nil {
		return nil, err
	}
	if err := database.DB.
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&enrollments.Bundles).Error; err != nil {
		return nil, err
	}
	return &enrollments, nil
}
