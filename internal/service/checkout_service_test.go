package service

import (
	"errors"
	"testing"

	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/repository"

	"gorm.io/gorm"
)

type failingUserRepo struct{}

func (failingUserRepo) GetByID(string) (*models.User, error) {
	return nil, errors.New("identity store offline")
}

func (failingUserRepo) Upsert(*models.User) error {
	return errors.New("identity store offline")
}

func newCheckoutTestService(t *testing.T, name string) (*CheckoutService, *fakeCheckoutGateway, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t, name)
	gateway := &fakeCheckoutGateway{}
	svc := NewCheckoutService(repository.NewCourseRepository(db), repository.NewUserRepository(db), gateway, "USD", "https://app.example/")
	return svc, gateway, db
}

func TestCreateCheckoutSessionExampleCourse(t *testing.T) {
	svc, gateway, db := newCheckoutTestService(t, "checkout_example")
	seedCourse(t, db, mlCourse())
	if err := repository.NewUserRepository(db).Upsert(&models.User{ID: "u1", Email: "u1@example.com"}); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	result, err := svc.CreateCheckoutSession(CreateCheckoutSessionInput{
		CourseID:   "c1",
		UserID:     "u1",
		ReferrerID: "r1",
	})
	if err != nil {
		t.Fatalf("create checkout session failed: %v", err)
	}
	if result.URL == "" {
		t.Fatalf("expected redirect url")
	}
	if result.UnitAmount != 4999 || result.Currency != "usd" {
		t.Fatalf("unexpected amount: %d %s", result.UnitAmount, result.Currency)
	}
	if gateway.calls != 1 {
		t.Fatalf("expected one provider call, got %d", gateway.calls)
	}

	input := gateway.inputs[0]
	if input.Item.Name != "ML 101" || input.Item.ImageURL != "https://cdn.example/ml101.png" || input.Item.Quantity != 1 {
		t.Fatalf("unexpected line item: %+v", input.Item)
	}
	if input.SuccessURL != "https://app.example/checkout?success=true&session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("unexpected success url: %s", input.SuccessURL)
	}
	if input.CancelURL != "https://app.example/checkout?canceled=true" {
		t.Fatalf("unexpected cancel url: %s", input.CancelURL)
	}
	if input.CustomerEmail != "u1@example.com" {
		t.Fatalf("expected email from user store, got %q", input.CustomerEmail)
	}
	meta := input.Metadata.ToMap()
	if meta["courseId"] != "c1" || meta["userId"] != "u1" || meta["referrerId"] != "r1" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
	if got := countRows(t, db, &models.Entitlement{}); got != 0 {
		t.Fatalf("checkout must not write entitlements, got %d", got)
	}
}

func TestCreateCheckoutSessionMissingFieldsSkipsProvider(t *testing.T) {
	svc, gateway, db := newCheckoutTestService(t, "checkout_missing")
	seedCourse(t, db, mlCourse())

	cases := []CreateCheckoutSessionInput{
		{UserID: "u1"},
		{CourseID: "c1"},
		{CourseID: "  ", UserID: "u1"},
		{},
	}
	for _, input := range cases {
		_, err := svc.CreateCheckoutSession(input)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}
	if gateway.calls != 0 {
		t.Fatalf("provider must not be called, got %d calls", gateway.calls)
	}
}

func TestCreateCheckoutSessionUnknownCourse(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_unknown")
	hidden := mlCourse()
	hidden.ID = "c2"
	seedCourse(t, db, hidden)
	if err := db.Model(&models.Course{}).Where("id = ?", "c2").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate course failed: %v", err)
	}
	gateway := &fakeCheckoutGateway{}
	svc := NewCheckoutService(repository.NewCourseRepository(db), repository.NewUserRepository(db), gateway, "usd", "https://app.example")

	for _, courseID := range []string{"missing", "c2"} {
		_, err := svc.CreateCheckoutSession(CreateCheckoutSessionInput{CourseID: courseID, UserID: "u1"})
		if !errors.Is(err, ErrCourseNotFound) || !errors.Is(err, ErrNotFound) {
			t.Fatalf("course %s: expected not found, got %v", courseID, err)
		}
	}
	if gateway.calls != 0 {
		t.Fatalf("provider must not be called, got %d calls", gateway.calls)
	}
}

func TestCreateCheckoutSessionWithoutCostChargesZero(t *testing.T) {
	svc, gateway, db := newCheckoutTestService(t, "checkout_free")
	seedCourse(t, db, models.Course{ID: "free", IsActive: true})

	result, err := svc.CreateCheckoutSession(CreateCheckoutSessionInput{
		CourseID:  "free",
		UserID:    "u1",
		UserEmail: "explicit@example.com",
	})
	if err != nil {
		t.Fatalf("create checkout session failed: %v", err)
	}
	if result.UnitAmount != 0 || gateway.inputs[0].Item.UnitAmount != 0 {
		t.Fatalf("expected zero amount, got %d", result.UnitAmount)
	}
	if gateway.inputs[0].Item.Name != "Unknown Course" {
		t.Fatalf("expected default title, got %q", gateway.inputs[0].Item.Name)
	}
	if gateway.inputs[0].Metadata.ReferrerID != "" {
		t.Fatalf("expected empty referrer")
	}
	if gateway.inputs[0].CustomerEmail != "explicit@example.com" {
		t.Fatalf("expected explicit email, got %q", gateway.inputs[0].CustomerEmail)
	}
}

func TestCreateCheckoutSessionEmailLookupFailureIsNotFatal(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_email_failure")
	seedCourse(t, db, mlCourse())
	gateway := &fakeCheckoutGateway{}
	svc := NewCheckoutService(repository.NewCourseRepository(db), failingUserRepo{}, gateway, "", "https://app.example")

	result, err := svc.CreateCheckoutSession(CreateCheckoutSessionInput{
		CourseID:      "c1",
		UserID:        "u1",
		ReturnBaseURL: "https://preview.example/",
	})
	if err != nil {
		t.Fatalf("email lookup failure must not abort checkout: %v", err)
	}
	if result.URL == "" || gateway.inputs[0].CustomerEmail != "" {
		t.Fatalf("unexpected result: %+v email=%q", result, gateway.inputs[0].CustomerEmail)
	}
	if gateway.inputs[0].SuccessURL != "https://preview.example/checkout?success=true&session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("expected request origin in success url, got %s", gateway.inputs[0].SuccessURL)
	}
}

func TestCreateCheckoutSessionProviderFailure(t *testing.T) {
	svc, gateway, db := newCheckoutTestService(t, "checkout_provider_failure")
	seedCourse(t, db, mlCourse())
	gateway.err = errors.New("stripe unavailable")

	_, err := svc.CreateCheckoutSession(CreateCheckoutSessionInput{CourseID: "c1", UserID: "u1"})
	if !errors.Is(err, ErrCheckoutProviderFailed) || !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected provider failure, got %v", err)
	}
}
