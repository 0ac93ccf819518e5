package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/payment/stripe"
	"github.com/aipath-api/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, course models.Course) *models.Course {
	t.Helper()
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course failed: %v", err)
	}
	return &course
}

func mlCourse() models.Course {
	return models.Course{
		ID:            "c1",
		Title:         "ML 101",
		Cost:          models.NewNullMoney(decimal.RequireFromString("49.99")),
		AffiliateLink: "https://partner.example/ml101",
		ImageURL:      "https://cdn.example/ml101.png",
		IsActive:      true,
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}

type fakeCheckoutGateway struct {
	mu     sync.Mutex
	calls  int
	inputs []stripe.CheckoutInput
	err    error
}

func (g *fakeCheckoutGateway) CreateCheckoutSession(_ context.Context, input stripe.CheckoutInput) (*stripe.CheckoutResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.inputs = append(g.inputs, input)
	if g.err != nil {
		return nil, g.err
	}
	id := fmt.Sprintf("cs_test_%d", g.calls)
	return &stripe.CheckoutResult{SessionID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

type fakeReconcileQueue struct {
	mu       sync.Mutex
	enabled  bool
	err      error
	payloads []queue.EntitlementReconcilePayload
}

func (q *fakeReconcileQueue) Enabled() bool {
	return q != nil && q.enabled
}

func (q *fakeReconcileQueue) EnqueueEntitlementReconcile(payload queue.EntitlementReconcilePayload, _ time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

type spyReconciler struct {
	calls int
	err   error
	next  Reconciler
}

func (r *spyReconciler) Reconcile(input ReconcileInput) (*ReconcileResult, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.next == nil {
		return &ReconcileResult{EntitlementWritten: true}, nil
	}
	return r.next.Reconcile(input)
}
