package repository

import (
	"testing"
	"time"

	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/models"

	"github.com/shopspring/decimal"
)

func TestEntitlementUpsertMergesAndKeepsProgress(t *testing.T) {
	db := setupRepositoryTestDB(t, "entitlement_upsert")
	repo := NewEntitlementRepository(db)

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	if err := repo.Upsert(&models.Entitlement{
		UserID:          "u1",
		CourseID:        "c1",
		Paid:            true,
		PaymentDate:     &first,
		StripeSessionID: "cs_old",
		Progress:        constants.EntitlementProgressStarted,
		CourseTitle:     "ML 101",
		CostPaid:        models.NewMoneyFromDecimal(decimal.RequireFromString("49.99")),
		Currency:        "usd",
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := db.Model(&models.Entitlement{}).Where("user_id = ? AND course_id = ?", "u1", "c1").Update("progress", "module-3").Error; err != nil {
		t.Fatalf("update progress failed: %v", err)
	}

	second := time.Now().UTC().Truncate(time.Second)
	if err := repo.Upsert(&models.Entitlement{
		UserID:          "u1",
		CourseID:        "c1",
		Paid:            true,
		PaymentDate:     &second,
		StripeSessionID: "cs_new",
		Progress:        constants.EntitlementProgressStarted,
		CourseTitle:     "ML 101 (2nd ed.)",
		CostPaid:        models.NewMoneyFromDecimal(decimal.RequireFromString("59")),
		Currency:        "usd",
	}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Entitlement{}).Count(&count).Error; err != nil {
		t.Fatalf("count entitlements failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("entitlement count want 1 got %d", count)
	}

	got, err := repo.GetByUserAndCourse("u1", "c1")
	if err != nil || got == nil {
		t.Fatalf("get entitlement failed: %v", err)
	}
	if got.Progress != "module-3" {
		t.Fatalf("progress should be preserved, got %q", got.Progress)
	}
	if got.StripeSessionID != "cs_new" || got.CourseTitle != "ML 101 (2nd ed.)" {
		t.Fatalf("merge fields not updated: %+v", got)
	}
	if !got.CostPaid.Equal(decimal.NewFromInt(59)) {
		t.Fatalf("cost paid want 59 got %s", got.CostPaid.String())
	}
}

func TestEntitlementListByUser(t *testing.T) {
	db := setupRepositoryTestDB(t, "entitlement_list")
	repo := NewEntitlementRepository(db)
	for _, courseID := range []string{"c1", "c2"} {
		if err := repo.Upsert(&models.Entitlement{UserID: "u1", CourseID: courseID, Paid: true, Progress: constants.EntitlementProgressStarted}); err != nil {
			t.Fatalf("upsert %s failed: %v", courseID, err)
		}
	}
	if err := repo.Upsert(&models.Entitlement{UserID: "u2", CourseID: "c1", Paid: true}); err != nil {
		t.Fatalf("upsert other user failed: %v", err)
	}

	list, err := repo.ListByUser("u1")
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length want 2 got %d", len(list))
	}
	missing, err := repo.GetByUserAndCourse("u3", "c1")
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing entitlement should be nil")
	}
}
