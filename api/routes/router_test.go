package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	inventorysvc "github.com/tillpoint/tillpoint-backend/internal/inventory"
	"github.com/tillpoint/tillpoint-backend/internal/ledger"
	salesvc "github.com/tillpoint/tillpoint-backend/internal/sales"
	pkgAuth "github.com/tillpoint/tillpoint-backend/pkg/auth"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/db/models"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSalesService struct{}

func (stubSalesService) Create(context.Context, salesvc.CreateSaleInput) (*models.Sale, error) {
	return &models.Sale{ID: uuid.New()}, nil
}

func (stubSalesService) Refund(context.Context, salesvc.RefundSaleInput) (*models.Sale, error) {
	return &models.Sale{ID: uuid.New()}, nil
}

func (stubSalesService) Get(_ context.Context, id uuid.UUID) (*models.Sale, error) {
	return &models.Sale{ID: id}, nil
}

func (stubSalesService) List(context.Context, salesvc.ListSalesInput) ([]models.Sale, string, error) {
	return nil, "", nil
}

type stubInventoryService struct{}

func (stubInventoryService) Adjust(context.Context, inventorysvc.AdjustStockInput) (*inventorysvc.AdjustResult, error) {
	return &inventorysvc.AdjustResult{}, nil
}

func (stubInventoryService) History(context.Context, ledger.ListFilter) ([]models.StockLedgerEntry, string, error) {
	return nil, "", nil
}

func (stubInventoryService) LowStock(context.Context) ([]models.Product, error) {
	return nil, nil
}

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()

	jwtCfg := config.JWTConfig{Secret: "router-test-secret", Issuer: "tillpoint", ExpirationMinutes: 15}
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: jwtCfg,
	}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	handler := NewRouter(Dependencies{
		Config:           cfg,
		Logger:           logg,
		DBPinger:         stubPinger{},
		RedisPinger:      stubPinger{},
		SalesService:     stubSalesService{},
		InventoryService: stubInventoryService{},
	})
	return handler, jwtCfg
}

func bearerToken(t *testing.T, cfg config.JWTConfig, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestPublicPingNoAuth(t *testing.T) {
	handler, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	handler, _ := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/sales"},
		{http.MethodGet, "/api/v1/inventory/history"},
		{http.MethodGet, "/api/v1/inventory/low-stock"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestAuthedSalesListing(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtCfg, enums.UserRoleCashier))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data) == 0 {
		t.Fatalf("expected data envelope, got %s", rec.Body.String())
	}
}

func TestAdjustStockRequiresManagerRole(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjust", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtCfg, enums.UserRoleCashier))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier, got %d", rec.Code)
	}
}
