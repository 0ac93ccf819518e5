package public

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aipath-api/internal/models"

	"github.com/gin-gonic/gin"
)

func newWebhookRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/stripeWebhook", h.StripeWebhook)
	return r
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookRejectsForgedSignature(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	r := newWebhookRouter(f.handler)

	body, header := signedStripeEvent(t, "whsec_someone_else", completedSessionEvent("evt_forged"))
	w := postWebhook(r, body, header)
	if w.Code != http.StatusBadRequest || !strings.HasPrefix(w.Body.String(), "Webhook Error: ") {
		t.Fatalf("want 400 Webhook Error got %d %q", w.Code, w.Body.String())
	}

	var count int64
	if err := f.db.Model(&models.Entitlement{}).Count(&count).Error; err != nil {
		t.Fatalf("count entitlements failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("forged event must not write entitlements, got %d", count)
	}
}

func TestStripeWebhookAcknowledgesCompletedAndReplay(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	r := newWebhookRouter(f.handler)

	body, header := signedStripeEvent(t, testWebhookSecret, completedSessionEvent("evt_ok"))
	for i := 0; i < 2; i++ {
		w := postWebhook(r, body, header)
		if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"received":true}` {
			t.Fatalf("delivery %d: want 200 received got %d %q", i, w.Code, w.Body.String())
		}
	}

	var entitlement models.Entitlement
	if err := f.db.Where("user_id = ? AND course_id = ?", "u1", "c1").First(&entitlement).Error; err != nil {
		t.Fatalf("load entitlement failed: %v", err)
	}
	if !entitlement.Paid || entitlement.CostPaid.String() != "49.99" || entitlement.CourseAffiliateLink != "https://partner.example/ml101" {
		t.Fatalf("unexpected entitlement: %+v", entitlement)
	}
	var payouts int64
	if err := f.db.Model(&models.AffiliatePayout{}).Count(&payouts).Error; err != nil {
		t.Fatalf("count payouts failed: %v", err)
	}
	if payouts != 1 {
		t.Fatalf("replay must keep a single payout, got %d", payouts)
	}
}

func TestStripeWebhookAcknowledgesOtherEvents(t *testing.T) {
	f := setupPublicHandlerTest(t)
	r := newWebhookRouter(f.handler)

	body, header := signedStripeEvent(t, testWebhookSecret, map[string]interface{}{
		"id":     "evt_intent",
		"object": "event",
		"type":   "payment_intent.succeeded",
		"data":   map[string]interface{}{"object": map[string]interface{}{"id": "pi_1", "object": "payment_intent"}},
	})
	w := postWebhook(r, body, header)
	if w.Code != http.StatusOK {
		t.Fatalf("unhandled types should be acknowledged, got %d %q", w.Code, w.Body.String())
	}
}
