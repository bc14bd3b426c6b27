package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
)

func TestApplyCourseGrantNoDuplicate(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	item := models.OrderItem{ItemID: course.ID, ItemType: models.ItemTypeCourse, Title: course.Title, Price: course.Price}

	now := time.Now()
	if err := ApplyGrant(database.DB, user.ID, item, models.EnrollmentTypeAuto, now); err != nil {
		t.Fatalf("first ApplyGrant failed: %v", err)
	}
	if err := ApplyGrant(database.DB, user.ID, item, models.EnrollmentTypeAuto, now); err != nil {
		t.Fatalf("repeat ApplyGrant failed: %v", err)
	}

	var grants int64
	database.DB.Model(&models.EnrolledCourse{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&grants)
	if grants != 1 {
		t.Fatalf("expected 1 grant, got %d", grants)
	}
}

func TestLimitedBundleFanOut(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	courses := []models.Course{
		createTestCourse(t, "Course 1", 100),
		createTestCourse(t, "Course 2", 100),
		createTestCourse(t, "Course 3", 100),
	}
	bundle := createTestBundle(t, "Limited Trio", 250, models.BundleAccessLimited, 30, courses...)
	item := models.OrderItem{ItemID: bundle.ID, ItemType: models.ItemTypeBundle, Title: bundle.Title, Price: bundle.Price}

	t0 := time.Now()
	if err := ApplyGrant(database.DB, user.ID, item, models.EnrollmentTypeAuto, t0); err != nil {
		t.Fatalf("ApplyGrant failed: %v", err)
	}
	wantExpiry := t0.AddDate(0, 0, 30)

	var bundleGrant models.EnrolledBundle
	if err := database.DB.First(&bundleGrant, "user_id = ? AND bundle_id = ?", user.ID, bundle.ID).Error; err != nil {
		t.Fatalf("bundle grant missing: %v", err)
	}
	if bundleGrant.ExpiryDate == nil {
		t.Fatal("expected bundle expiry")
	}
	approxSameTime(t, wantExpiry, *bundleGrant.ExpiryDate)

	var courseGrants []models.EnrolledCourse
	database.DB.Where("user_id = ?", user.ID).Find(&courseGrants)
	if len(courseGrants) != 3 {
		t.Fatalf("expected 3 course grants, got %d", len(courseGrants))
	}
	for _, grant := range courseGrants {
		if grant.ExpiryDate == nil {
			t.Fatal("expected course grant expiry")
		}
		approxSameTime(t, wantExpiry, *grant.ExpiryDate)
		if grant.BundleID == nil || *grant.BundleID != bundle.ID {
			t.Error("course grant missing bundle back-reference")
		}
	}
}

func TestPermanentBundleMergesExistingCourseGrant(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Shared Course", 100)
	bundle := createTestBundle(t, "Forever Pack", 500, models.BundleAccessPermanent, 0, course)

	// Direct purchase first, with a limited expiry left over from an old
	// limited bundle.
	oldExpiry := time.Now().AddDate(0, 0, 5)
	direct := models.EnrolledCourse{
		UserID:         user.ID,
		CourseID:       course.ID,
		EnrollmentType: models.EnrollmentTypeAuto,
		EnrolledAt:     time.Now(),
		ExpiryDate:     &oldExpiry,
		IsActive:       true,
	}
	if err := database.DB.Create(&direct).Error; err != nil {
		t.Fatalf("failed to seed course grant: %v", err)
	}

	item := models.OrderItem{ItemID: bundle.ID, ItemType: models.ItemTypeBundle, Title: bundle.Title, Price: bundle.Price}
	if err := ApplyGrant(database.DB, user.ID, item, models.EnrollmentTypeAuto, time.Now()); err != nil {
		t.Fatalf("ApplyGrant failed: %v", err)
	}

	var grants []models.EnrolledCourse
	database.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&grants)
	if len(grants) != 1 {
		t.Fatalf("expected the existing grant to be merged, got %d rows", len(grants))
	}
	if grants[0].BundleID == nil || *grants[0].BundleID != bundle.ID {
		t.Error("expected grant re-pointed at the bundle")
	}
	if grants[0].ExpiryDate != nil {
		t.Errorf("expected expiry cleared for permanent bundle, got %v", grants[0].ExpiryDate)
	}
}

func seedLapsedCourseGrant(t *testing.T, userID, courseID uuid.UUID) models.EnrolledCourse {
	t.Helper()
	expired := time.Now().Add(-time.Hour)
	grant := models.EnrolledCourse{
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentType: models.EnrollmentTypeAuto,
		EnrolledAt:     time.Now().AddDate(0, 0, -31),
		ExpiryDate:     &expired,
		IsActive:       true,
	}
	if err := database.DB.Create(&grant).Error; err != nil {
		t.Fatalf("failed to seed course grant: %v", err)
	}
	// Deactivated the way the expiry sweep would.
	if err := database.DB.Model(&grant).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate grant: %v", err)
	}
	return grant
}

func TestDirectRepurchaseReactivatesLapsedGrant(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	seedLapsedCourseGrant(t, user.ID, course.ID)

	item := models.OrderItem{ItemID: course.ID, ItemType: models.ItemTypeCourse, Title: course.Title, Price: course.Price}
	if err := ApplyGrant(database.DB, user.ID, item, models.EnrollmentTypeAuto, time.Now()); err != nil {
		t.Fatalf("ApplyGrant failed: %v", err)
	}

	var grants []models.EnrolledCourse
	database.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&grants)
	if len(grants) != 1 {
		t.Fatalf("expected the lapsed grant to be reused, got %d rows", len(grants))
	}
	if !grants[0].IsActive {
		t.Error("expected re-purchase to reactivate the grant")
	}
	if grants[0].ExpiryDate != nil {
		t.Errorf("expected direct re-purchase to clear expiry, got %v", grants[0].ExpiryDate)
	}
	if grants[0].BundleID != nil {
		t.Error("expected direct re-purchase to detach the bundle reference")
	}
}

func TestManualEnrollReactivatesLapsedGrant(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	seedLapsedCourseGrant(t, user.ID, course.ID)

	if err := ManualEnroll(user.ID, course.ID, models.ItemTypeCourse); err != nil {
		t.Fatalf("ManualEnroll on lapsed grant failed: %v", err)
	}

	var grant models.EnrolledCourse
	if err := database.DB.First(&grant, "user_id = ? AND course_id = ?", user.ID, course.ID).Error; err != nil {
		t.Fatalf("grant missing: %v", err)
	}
	if !grant.IsActive {
		t.Error("expected manual re-enrollment to reactivate the grant")
	}
	if grant.ExpiryDate != nil {
		t.Errorf("expected expiry cleared, got %v", grant.ExpiryDate)
	}
}

func TestManualEnrollRejectsExistingGrant(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 100)

	if err := ManualEnroll(user.ID, course.ID, models.ItemTypeCourse); err != nil {
		t.Fatalf("first ManualEnroll failed: %v", err)
	}
	if err := ManualEnroll(user.ID, course.ID, models.ItemTypeCourse); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	var grant models.EnrolledCourse
	if err := database.DB.First(&grant, "user_id = ? AND course_id = ?", user.ID, course.ID).Error; err != nil {
		t.Fatalf("grant missing: %v", err)
	}
	if grant.EnrollmentType != models.EnrollmentTypeManual {
		t.Errorf("expected manual enrollment type, got %s", grant.EnrollmentType)
	}
}

func TestRevokeBundleGrantsLeavesDirectGrants(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	inBundle := createTestCourse(t, "In Bundle", 100)
	standalone := createTestCourse(t, "Standalone", 100)
	bundle := createTestBundle(t, "Pack", 300, models.BundleAccessPermanent, 0, inBundle)

	bundleItem := models.OrderItem{ItemID: bundle.ID, ItemType: models.ItemTypeBundle}
	courseItem := models.OrderItem{ItemID: standalone.ID, ItemType: models.ItemTypeCourse}
	now := time.Now()
	if err := ApplyGrant(database.DB, user.ID, bundleItem, models.EnrollmentTypeAuto, now); err != nil {
		t.Fatalf("ApplyGrant bundle failed: %v", err)
	}
	if err := ApplyGrant(database.DB, user.ID, courseItem, models.EnrollmentTypeAuto, now); err != nil {
		t.Fatalf("ApplyGrant course failed: %v", err)
	}

	revoked, err := RevokeBundleGrants(database.DB, user.ID, bundle.ID)
	if err != nil {
		t.Fatalf("RevokeBundleGrants failed: %v", err)
	}
	if revoked != 2 {
		t.Errorf("expected 2 revocations (bundle + course), got %d", revoked)
	}

	var bundleGrant models.EnrolledBundle
	database.DB.First(&bundleGrant, "user_id = ? AND bundle_id = ?", user.ID, bundle.ID)
	if bundleGrant.IsActive {
		t.Error("expected bundle grant deactivated")
	}
	var derived models.EnrolledCourse
	database.DB.First(&derived, "user_id = ? AND course_id = ?", user.ID, inBundle.ID)
	if derived.IsActive {
		t.Error("expected derived course grant deactivated")
	}
	var direct models.EnrolledCourse
	database.DB.First(&direct, "user_id = ? AND course_id = ?", user.ID, standalone.ID)
	if !direct.IsActive {
		t.Error("expected direct course grant untouched")
	}
}
