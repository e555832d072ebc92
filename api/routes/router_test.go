package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tomasvidal/stockpilot-backend/internal/audits"
	"github.com/tomasvidal/stockpilot-backend/internal/catalog"
	"github.com/tomasvidal/stockpilot-backend/internal/inventory"
	"github.com/tomasvidal/stockpilot-backend/internal/ledger"
	"github.com/tomasvidal/stockpilot-backend/internal/locations"
	"github.com/tomasvidal/stockpilot-backend/internal/transfers"
	pkgauth "github.com/tomasvidal/stockpilot-backend/pkg/auth"
	"github.com/tomasvidal/stockpilot-backend/pkg/config"
	"github.com/tomasvidal/stockpilot-backend/pkg/db/models"
	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
	"github.com/tomasvidal/stockpilot-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubInventoryService struct{}

func (stubInventoryService) CreateRecord(context.Context, inventory.CreateRecordInput) (*models.InventoryRecord, error) {
	return &models.InventoryRecord{}, nil
}

func (stubInventoryService) ApplyAdjustment(context.Context, inventory.AdjustmentInput) (*inventory.AdjustmentResult, error) {
	return &inventory.AdjustmentResult{}, nil
}

func (stubInventoryService) ApplyAdjustmentTx(context.Context, *gorm.DB, inventory.AdjustmentInput) (*inventory.AdjustmentResult, error) {
	return &inventory.AdjustmentResult{}, nil
}

func (stubInventoryService) Reserve(context.Context, *gorm.DB, uuid.UUID, uuid.UUID, int) error {
	return nil
}

func (stubInventoryService) Release(context.Context, *gorm.DB, uuid.UUID, uuid.UUID, int) error {
	return nil
}

func (stubInventoryService) Get(context.Context, uuid.UUID) (*models.InventoryRecord, error) {
	return &models.InventoryRecord{}, nil
}

func (stubInventoryService) GetByProductLocation(context.Context, uuid.UUID, uuid.UUID) (*models.InventoryRecord, error) {
	return &models.InventoryRecord{}, nil
}

func (stubInventoryService) List(context.Context, inventory.ListFilter) (*inventory.ListResult, error) {
	return &inventory.ListResult{}, nil
}

func (stubInventoryService) ListByLocationTx(context.Context, *gorm.DB, uuid.UUID) ([]models.InventoryRecord, error) {
	return nil, nil
}

func (stubInventoryService) ListLowStock(context.Context, *uuid.UUID) ([]inventory.LowStockRow, error) {
	return nil, nil
}

type stubLedgerService struct{}

func (stubLedgerService) List(context.Context, uuid.UUID, pagination.Params) (*ledger.ListResult, error) {
	return &ledger.ListResult{}, nil
}

func (stubLedgerService) ListByReference(context.Context, uuid.UUID) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (stubLedgerService) Replay(context.Context, uuid.UUID) (*ledger.ReplayResult, error) {
	return &ledger.ReplayResult{}, nil
}

type stubTransferService struct{}

func (stubTransferService) Create(context.Context, transfers.CreateInput) (*models.Transfer, error) {
	return &models.Transfer{}, nil
}

func (stubTransferService) Get(context.Context, uuid.UUID) (*models.Transfer, error) {
	return &models.Transfer{}, nil
}

func (stubTransferService) List(context.Context, transfers.ListFilter) (*transfers.ListResult, error) {
	return &transfers.ListResult{}, nil
}

func (stubTransferService) AddItem(context.Context, transfers.AddItemInput) (*models.Transfer, error) {
	return &models.Transfer{}, nil
}

func (stubTransferService) UpdateItem(context.Context, transfers.UpdateItemInput) (*models.Transfer, error) {
	return &models.Transfer{}, nil
}

func (stubTransferService) RemoveItem(context.Context, transfers.RemoveItemInput) (*models.Transfer, error) {
	return &models.Transfer{}, nil
}

func (stubTransferService) Transition(context.Context, transfers.TransitionInput) (*models.Transfer, error) {
	return &models.Transfer{}, nil
}

type stubAuditService struct{}

func (stubAuditService) Create(context.Context, audits.CreateInput) (*models.Audit, error) {
	return &models.Audit{}, nil
}

func (stubAuditService) Get(context.Context, uuid.UUID) (*models.Audit, error) {
	return &models.Audit{}, nil
}

func (stubAuditService) List(context.Context, audits.ListFilter) (*audits.ListResult, error) {
	return &audits.ListResult{}, nil
}

func (stubAuditService) Start(context.Context, uuid.UUID, uuid.UUID) (*models.Audit, error) {
	return &models.Audit{}, nil
}

func (stubAuditService) RecordCount(context.Context, audits.CountInput) (*models.AuditItem, error) {
	return &models.AuditItem{}, nil
}

func (stubAuditService) Complete(context.Context, audits.CompleteInput) (*models.Audit, error) {
	return &models.Audit{}, nil
}

func (stubAuditService) Cancel(context.Context, uuid.UUID, uuid.UUID) (*models.Audit, error) {
	return &models.Audit{}, nil
}

type stubLocationService struct{}

func (stubLocationService) Get(context.Context, uuid.UUID) (*models.Location, error) {
	return &models.Location{}, nil
}

func (stubLocationService) List(context.Context, locations.ListFilter) ([]models.Location, error) {
	return nil, nil
}

type stubCatalogService struct{}

func (stubCatalogService) Get(context.Context, uuid.UUID) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) GetBySKU(context.Context, string) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) List(context.Context, catalog.ListFilter) (*catalog.ListResult, error) {
	return &catalog.ListResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "stockpilot-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		nil,
		stubInventoryService{},
		stubLedgerService{},
		stubTransferService{},
		stubAuditService{},
		stubLocationService{},
		stubCatalogService{},
	)
}

func mintToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, testConfig())

	paths := []string{
		"/api/v1/inventory",
		"/api/v1/transfers",
		"/api/v1/audits",
		"/api/v1/locations",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestAuthenticatedReadSucceeds(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleClerk))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdjustmentsAreRoleGuarded(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjustments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleClerk))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
