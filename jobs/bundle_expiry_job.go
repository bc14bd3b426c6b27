package jobs

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/mridulaoc/life_academy/notifications"
	"github.com/google/uuid"
)

// NotifyExpiringBundles warns users whose bundle access lapses on the day
// exactly seven days ahead. One notification per user, listing every
// expiring bundle title. The window query is point-in-time: running the job
// more than once inside the same day (or on several replicas) repeats the
// warning.
func NotifyExpiringBundles() int {
	log.Println("Running job: NotifyExpiringBundles...")

	now := time.Now()
	target := now.AddDate(0, 0, 7)
	dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var grants []models.EnrolledBundle
	err := database.DB.
		Where("is_active = ? AND expiry_date >= ? AND expiry_date < ?", true, dayStart, dayEnd).
		Find(&grants).Error
	if err != nil {
		log.Printf("🔥 Error querying expiring bundle enrollments: %v", err)
		return 0
	}
	if len(grants) == 0 {
		return 0
	}

	titlesByUser := map[uuid.UUID][]string{}
	for _, grant := range grants {
		var bundle models.Bundle
		if err := database.DB.First(&bundle, "id = ?", grant.BundleID).Error; err != nil {
			log.Printf("🔥 Bundle %s missing for expiring grant: %v", grant.BundleID, err)
			continue
		}
		titlesByUser[grant.UserID] = append(titlesByUser[grant.UserID], bundle.Title)
	}

	notified := 0
	for userID, titles := range titlesByUser {
		message := fmt.Sprintf("Your access to the following bundle(s) expires in 7 days: %s. Renew by purchasing again to keep your courses.", strings.Join(titles, ", "))

		notification := models.Notification{
			UserID:  userID,
			Title:   "Bundle Access Expiring Soon",
			Message: message,
		}
		if err := database.DB.Create(&notification).Error; err != nil {
			log.Printf("🔥 Failed to create expiry notification for user %s: %v", userID, err)
			continue
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
			go notifications.SendEmail(user.FullName, user.Email, "Your Bundle Access Expires in 7 Days",
				"<h1>Heads up!</h1><p>"+message+"</p>")
		}
		notified++
	}

	log.Printf("Sent bundle expiry warnings to %d user(s).", notified)
	return notified
}
