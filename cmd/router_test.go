package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pos-backend/internal/config"
	"pos-backend/internal/database/memdb"
	"pos-backend/internal/handlers"
	"pos-backend/internal/notify"
	"pos-backend/internal/sequence"
	"pos-backend/internal/service"
)

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memdb.New()
	hub := notify.NewHub()
	deps := service.Deps{
		Estimates:       store.Estimates(),
		Orders:          store.Orders(),
		Tx:              store,
		EstimateNumbers: sequence.NewCounterAllocator(sequence.Estimates, store.Estimates(), store.Counters()),
		SaleNumbers:     sequence.NewCounterAllocator(sequence.Orders, store.Orders(), store.Counters()),
		Notifier:        hub,
	}
	api := handlers.API{
		Estimates: service.NewEstimateService(deps),
		Orders:    service.NewOrderService(deps),
		Reports:   service.NewReportService(deps),
		Clients:   hub,
	}
	return corsHandler(cfg).Handler(newRouter(cfg, api, hub, nil))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterOpenWithoutSecret(t *testing.T) {
	h := testRouter(t, &config.Config{StaticDir: t.TempDir(), CORSOrigins: "*"})

	for _, path := range []string{"/", "/healthz", "/metrics", "/api/", "/api/estimates/all"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRouterGuardsAPIWithSecret(t *testing.T) {
	const secret = "router-test-secret"
	h := testRouter(t, &config.Config{StaticDir: t.TempDir(), JWTSecret: secret})

	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/orders/all", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("health must stay public, got %d", rec.Code)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "asha"}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/orders/all", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	if rec := serve(h, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h := testRouter(t, &config.Config{StaticDir: t.TempDir(), CORSOrigins: "http://till.local, http://office.local"})

	req := httptest.NewRequest(http.MethodOptions, "/api/estimates/create", nil)
	req.Header.Set("Origin", "http://office.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://office.local" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials to be allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/estimates/create", nil)
	req.Header.Set("Origin", "http://elsewhere.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	if got := serve(h, req).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin must not be allowed, got %q", got)
	}
}
