package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aipath-api/internal/config"
	"github.com/aipath-api/internal/models"
	"github.com/aipath-api/internal/provider"

	"github.com/gin-gonic/gin"
)

type routerFixture struct {
	engine    *gin.Engine
	container *provider.Container
}

func setupRouterTest(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := models.InitDB("sqlite", dsn, models.DBPoolConfig{MaxOpenConns: 1}); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := models.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "router-admin-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "router-user-secret", ExpireHours: 1},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"https://learn.example"}},
		Stripe: config.StripeConfig{
			SecretKey:     "sk_test_router",
			WebhookSecret: "whsec_router",
			Currency:      "usd",
			FrontendURL:   "https://aipath.example",
		},
	}
	container, err := provider.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	return &routerFixture{engine: SetupRouter(cfg, container), container: container}
}

func (f *routerFixture) createAdmin(t *testing.T, username string, isSuper bool) string {
	t.Helper()
	hash, err := f.container.AuthService.HashPassword("router-pass-1")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := models.Admin{Username: username, PasswordHash: hash}
	if err := f.container.AdminRepo.Create(&admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if isSuper {
		if err := models.DB.Model(&admin).Update("is_super", true).Error; err != nil {
			t.Fatalf("mark super admin failed: %v", err)
		}
		admin.IsSuper = true
	}
	token, _, err := f.container.AuthService.GenerateJWT(&admin)
	if err != nil {
		t.Fatalf("generate admin jwt failed: %v", err)
	}
	return token
}

func (f *routerFixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func envelopeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope failed: %v body=%s", err, w.Body.String())
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	f := setupRouterTest(t)
	w := f.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestCheckoutPreflightBypassesGlobalCORS(t *testing.T) {
	f := setupRouterTest(t)
	for _, path := range []string{"/createCheckoutSession", "/api/v1/checkout/sessions"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://learn.example")
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("%s preflight want 204 got %d", path, w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("%s allow origin want * got %q", path, w.Header().Get("Access-Control-Allow-Origin"))
		}
		if w.Header().Get("Access-Control-Allow-Methods") != "POST" {
			t.Fatalf("%s allow methods want POST got %q", path, w.Header().Get("Access-Control-Allow-Methods"))
		}
		if w.Header().Get("Access-Control-Max-Age") != "3600" {
			t.Fatalf("%s max age want 3600 got %q", path, w.Header().Get("Access-Control-Max-Age"))
		}
	}

	w := f.do(http.MethodGet, "/createCheckoutSession", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET checkout want 405 got %d", w.Code)
	}
	w = f.do(http.MethodPost, "/api/v1/checkout/sessions", "")
	if w.Code != http.StatusBadRequest || w.Body.String() != "Missing courseId or userId" {
		t.Fatalf("empty checkout want 400 got %d %s", w.Code, w.Body.String())
	}
}

func TestStripeWebhookRoutesRejectUnsigned(t *testing.T) {
	f := setupRouterTest(t)
	for _, path := range []string{"/stripeWebhook", "/api/v1/payments/webhook/stripe"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"id":"evt_1"}`))
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || !strings.HasPrefix(w.Body.String(), "Webhook Error: ") {
			t.Fatalf("%s unsigned webhook want 400 got %d %s", path, w.Code, w.Body.String())
		}
	}
}

func TestUserCoursesRequireMatchingToken(t *testing.T) {
	f := setupRouterTest(t)

	w := f.do(http.MethodGet, "/api/v1/users/u1/courses", "")
	if code := envelopeCode(t, w); code != 401 {
		t.Fatalf("missing token want 401 got %d", code)
	}

	token, _, err := f.container.UserAuthService.GenerateUserJWT("u2", "", 1)
	if err != nil {
		t.Fatalf("generate user jwt failed: %v", err)
	}
	w = f.do(http.MethodGet, "/api/v1/users/u1/courses", token)
	if code := envelopeCode(t, w); code != 403 {
		t.Fatalf("mismatched token want 403 got %d", code)
	}

	token, _, err = f.container.UserAuthService.GenerateUserJWT("u1", "", 1)
	if err != nil {
		t.Fatalf("generate user jwt failed: %v", err)
	}
	w = f.do(http.MethodGet, "/api/v1/users/u1/courses", token)
	if code := envelopeCode(t, w); code != 0 {
		t.Fatalf("own entitlements want 0 got %d", code)
	}
}

func TestAdminRoutesEnforceRBAC(t *testing.T) {
	f := setupRouterTest(t)
	superToken := f.createAdmin(t, "root", true)
	plainToken := f.createAdmin(t, "viewer", false)

	if code := envelopeCode(t, f.do(http.MethodGet, "/api/v1/admin/payouts", "")); code != 401 {
		t.Fatalf("missing token want 401 got %d", code)
	}
	if code := envelopeCode(t, f.do(http.MethodGet, "/api/v1/admin/payouts", "not-a-jwt")); code != 401 {
		t.Fatalf("invalid token want 401 got %d", code)
	}
	if code := envelopeCode(t, f.do(http.MethodGet, "/api/v1/admin/payouts", plainToken)); code != 403 {
		t.Fatalf("admin without roles want 403 got %d", code)
	}
	if code := envelopeCode(t, f.do(http.MethodGet, "/api/v1/admin/payouts", superToken)); code != 0 {
		t.Fatalf("super admin want 0 got %d", code)
	}

	viewer, err := f.container.AdminRepo.GetByUsername("viewer")
	if err != nil || viewer == nil {
		t.Fatalf("load viewer failed: %v", err)
	}
	if err := f.container.AuthzService.SetAdminRoles(viewer.ID, []string{"readonly_auditor"}); err != nil {
		t.Fatalf("assign auditor role failed: %v", err)
	}
	if code := envelopeCode(t, f.do(http.MethodGet, "/api/v1/admin/payment-events", plainToken)); code != 0 {
		t.Fatalf("auditor read want 0 got %d", code)
	}
	if code := envelopeCode(t, f.do(http.MethodDelete, "/api/v1/admin/courses/c1", plainToken)); code != 403 {
		t.Fatalf("auditor delete want 403 got %d", code)
	}
}

func TestAdminPermissionCatalog(t *testing.T) {
	f := setupRouterTest(t)
	items := buildAdminPermissionCatalog(f.engine)
	found := false
	for _, item := range items {
		if item.Object == "/admin/login" {
			t.Fatalf("login route must not appear in permission catalog")
		}
		if item.Method == "PATCH" && item.Object == "/admin/payouts/:id/status" {
			found = true
			if item.Module != "payouts" {
				t.Fatalf("module want payouts got %s", item.Module)
			}
		}
	}
	if !found {
		t.Fatalf("payout status permission missing from catalog")
	}
}
