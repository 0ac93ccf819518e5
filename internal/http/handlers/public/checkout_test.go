package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCheckoutRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Any("/createCheckoutSession", h.CreateCheckoutSession)
	return r
}

func TestCreateCheckoutSessionReturnsURL(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	r := newCheckoutRouter(f.handler)

	req := httptest.NewRequest(http.MethodPost, "/createCheckoutSession", strings.NewReader(`{"courseId":"c1","referrerId":"r1","userId":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://learn.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard allow origin")
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["url"] != "https://checkout.stripe.com/c/pay/cs_test_handler" {
		t.Fatalf("unexpected url %q", resp["url"])
	}
	if f.gateway.calls != 1 {
		t.Fatalf("expected one provider call, got %d", f.gateway.calls)
	}
	input := f.gateway.inputs[0]
	if input.Item.UnitAmount != 4999 || !strings.HasPrefix(input.SuccessURL, "https://learn.example/checkout?success=true") {
		t.Fatalf("unexpected checkout input: %+v", input)
	}
}

func TestCreateCheckoutSessionUserIDFromHeader(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	r := newCheckoutRouter(f.handler)

	req := httptest.NewRequest(http.MethodPost, "/createCheckoutSession", strings.NewReader(`{"courseId":"c1"}`))
	req.Header.Set("X-User-Id", "u9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	if f.gateway.inputs[0].Metadata.UserID != "u9" {
		t.Fatalf("user id should come from header, got %q", f.gateway.inputs[0].Metadata.UserID)
	}
}

func TestCreateCheckoutSessionClientErrors(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	r := newCheckoutRouter(f.handler)

	cases := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "missing user", body: `{"courseId":"c1"}`, status: http.StatusBadRequest, want: "Missing courseId or userId"},
		{name: "missing course", body: `{"userId":"u1"}`, status: http.StatusBadRequest, want: "Missing courseId or userId"},
		{name: "malformed json", body: `{"courseId":`, status: http.StatusBadRequest, want: "Missing courseId or userId"},
		{name: "unknown course", body: `{"courseId":"nope","userId":"u1"}`, status: http.StatusNotFound, want: "Course not found"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/createCheckoutSession", strings.NewReader(tc.body)))
		if w.Code != tc.status || w.Body.String() != tc.want {
			t.Fatalf("%s: want %d %q got %d %q", tc.name, tc.status, tc.want, w.Code, w.Body.String())
		}
	}
	if f.gateway.calls != 0 {
		t.Fatalf("provider must not be called on client errors, got %d", f.gateway.calls)
	}
}

func TestCreateCheckoutSessionProviderFailure(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	f.gateway.err = errors.New("card_declined")
	r := newCheckoutRouter(f.handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/createCheckoutSession", strings.NewReader(`{"courseId":"c1","userId":"u1"}`)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Internal Server Error: ") || !strings.Contains(w.Body.String(), "card_declined") {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestCreateCheckoutSessionPreflightAndMethod(t *testing.T) {
	f := setupPublicHandlerTest(t)
	r := newCheckoutRouter(f.handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/createCheckoutSession", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST",
		"Access-Control-Allow-Headers": "Content-Type, X-User-Id",
		"Access-Control-Max-Age":       "3600",
	}
	for key, want := range headers {
		if got := w.Header().Get(key); got != want {
			t.Fatalf("header %s want %q got %q", key, want, got)
		}
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/createCheckoutSession", nil))
	if w.Code != http.StatusMethodNotAllowed || w.Body.String() != "Method Not Allowed" {
		t.Fatalf("want 405 Method Not Allowed got %d %q", w.Code, w.Body.String())
	}
	if f.gateway.calls != 0 {
		t.Fatalf("provider must not be called, got %d", f.gateway.calls)
	}
}

func TestCreateCheckoutSessionIgnoresUnlistedOrigin(t *testing.T) {
	f := setupPublicHandlerTest(t)
	f.seedCourse(t)
	r := newCheckoutRouter(f.handler)

	req := httptest.NewRequest(http.MethodPost, "/createCheckoutSession", strings.NewReader(`{"courseId":"c1","userId":"u1"}`))
	req.Header.Set("Origin", "https://phish.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	input := f.gateway.inputs[0]
	if input.SuccessURL != "https://aipath.example/checkout?success=true&session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("success url should fall back to frontend url, got %q", input.SuccessURL)
	}
	if input.CancelURL != "https://aipath.example/checkout?canceled=true" {
		t.Fatalf("cancel url should fall back to frontend url, got %q", input.CancelURL)
	}
}
