package jobs

import (
	"log"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/metrics"
	"github.com/mridulaoc/life_academy/models"
)

// DeactivateExpiredEnrollments flips lapsed grants inactive. Both updates are
// conditional on is_active, so re-running the sweep (or running it from
// several replicas) deactivates each grant exactly once. Returns the number
// of grants deactivated.
func DeactivateExpiredEnrollments() int64 {
	log.Println("Running job: DeactivateExpiredEnrollments...")

	now := time.Now()
	var deactivated int64

	result := database.DB.Model(&models.EnrolledCourse{}).
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("🔥 Error deactivating expired course enrollments: %v", result.Error)
	} else {
		deactivated += result.RowsAffected
	}

	result = database.DB.Model(&models.EnrolledBundle{}).
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("🔥 Error deactivating expired bundle enrollments: %v", result.Error)
	} else {
		deactivated += result.RowsAffected
	}

	if deactivated > 0 {
		log.Printf("Deactivated %d expired enrollment(s).", deactivated)
	}
	metrics.ExpiredGrantsSwept.Add(float64(deactivated))
	return deactivated
}
