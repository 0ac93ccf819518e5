package public

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/payment/stripe"
	"github.com/aipath-api/internal/provider"
	"github.com/aipath-api/internal/repository"
	"github.com/aipath-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_handler_test"

type stubCheckoutGateway struct {
	mu     sync.Mutex
	calls  int
	inputs []stripe.CheckoutInput
	err    error
}

func (g *stubCheckoutGateway) CreateCheckoutSession(_ context.Context, input stripe.CheckoutInput) (*stripe.CheckoutResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.inputs = append(g.inputs, input)
	if g.err != nil {
		return nil, g.err
	}
	return &stripe.CheckoutResult{SessionID: "cs_test_handler", URL: "https://checkout.stripe.com/c/pay/cs_test_handler"}, nil
}

type publicFixture struct {
	handler *Handler
	db      *gorm.DB
	gateway *stubCheckoutGateway
}

func setupPublicHandlerTest(t *testing.T) *publicFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	verifier, err := stripe.NewGateway(stripe.Config{SecretKey: "sk_test_handler", WebhookSecret: testWebhookSecret})
	if err != nil {
		t.Fatalf("new gateway failed: %v", err)
	}
	courseRepo := repository.NewCourseRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)
	gateway := &stubCheckoutGateway{}
	reconciler := service.NewReconcileService(entitlementRepo, repository.NewAffiliatePayoutRepository(db), courseRepo, decimal.RequireFromString("0.10"))

	h := New(&provider.Container{
		Config:             &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*", "https://learn.example"}}},
		CheckoutService:    service.NewCheckoutService(courseRepo, repository.NewUserRepository(db), gateway, "usd", "https://aipath.example"),
		WebhookService:     service.NewWebhookService(verifier, repository.NewPaymentEventRepository(db), reconciler, nil),
		EntitlementService: service.NewEntitlementService(entitlementRepo),
		CourseService:      service.NewCourseService(courseRepo, time.Minute),
	})
	return &publicFixture{handler: h, db: db, gateway: gateway}
}

func (f *publicFixture) seedCourse(t *testing.T) {
	t.Helper()
	course := models.Course{
		ID:            "c1",
		Title:         "ML 101",
		Cost:          models.NewNullMoney(decimal.RequireFromString("49.99")),
		AffiliateLink: "https://partner.example/ml101",
		Level:         "beginner",
		IsActive:      true,
	}
	if err := f.db.Create(&course).Error; err != nil {
		t.Fatalf("seed course failed: %v", err)
	}
}

func signedStripeEvent(t *testing.T, secret string, event map[string]interface{}) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event failed: %v", err)
	}
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return body, signed.Header
}

func completedSessionEvent(eventID string) map[string]interface{} {
	return map[string]interface{}{
		"id":     eventID,
		"object": "event",
		"type":   "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":         "checkout.session",
				"id":             "cs_" + eventID,
				"amount_total":   4999,
				"currency":       "usd",
				"payment_status": "paid",
				"metadata": map[string]string{
					"courseId":   "c1",
					"referrerId": "r1",
					"userId":     "u1",
				},
			},
		},
	}
}
