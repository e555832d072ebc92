package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomasvidal/stockpilot-backend/api/controllers"
	"github.com/tomasvidal/stockpilot-backend/api/middleware"
	auditsvc "github.com/tomasvidal/stockpilot-backend/internal/audits"
	catalogsvc "github.com/tomasvidal/stockpilot-backend/internal/catalog"
	inventorysvc "github.com/tomasvidal/stockpilot-backend/internal/inventory"
	ledgersvc "github.com/tomasvidal/stockpilot-backend/internal/ledger"
	locationsvc "github.com/tomasvidal/stockpilot-backend/internal/locations"
	transfersvc "github.com/tomasvidal/stockpilot-backend/internal/transfers"
	"github.com/tomasvidal/stockpilot-backend/pkg/config"
	"github.com/tomasvidal/stockpilot-backend/pkg/db"
	"github.com/tomasvidal/stockpilot-backend/pkg/logger"
	"github.com/tomasvidal/stockpilot-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	inventoryService inventorysvc.Service,
	ledgerService ledgersvc.Service,
	transferService transfersvc.Service,
	auditService auditsvc.Service,
	locationService locationsvc.Service,
	catalogService catalogsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Idempotency.TTL, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(inventoryService, logg))
			r.Get("/low-stock", controllers.InventoryLowStock(inventoryService, logg))
			r.Get("/{recordID}", controllers.InventoryDetail(inventoryService, logg))
			r.Get("/{recordID}/ledger", controllers.InventoryLedger(ledgerService, logg))
			r.Get("/{recordID}/replay", controllers.InventoryReplay(ledgerService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, "admin", "warehouse_manager", "store_manager"))
				r.Post("/records", controllers.InventoryCreateRecord(inventoryService, logg))
				r.Post("/adjustments", controllers.InventoryAdjust(inventoryService, logg))
			})
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", controllers.TransferList(transferService, logg))
			r.Post("/", controllers.TransferCreate(transferService, logg))
			r.Get("/{transferID}", controllers.TransferDetail(transferService, logg))
			r.Post("/{transferID}/items", controllers.TransferAddItem(transferService, logg))
			r.Put("/{transferID}/items/{itemID}", controllers.TransferUpdateItem(transferService, logg))
			r.Delete("/{transferID}/items/{itemID}", controllers.TransferRemoveItem(transferService, logg))
			r.Post("/{transferID}/transition", controllers.TransferTransition(transferService, logg))
		})

		r.Route("/audits", func(r chi.Router) {
			r.Get("/", controllers.AuditList(auditService, logg))
			r.Get("/{auditID}", controllers.AuditDetail(auditService, logg))
			r.Post("/{auditID}/counts", controllers.AuditRecordCount(auditService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, "admin", "warehouse_manager", "auditor"))
				r.Post("/", controllers.AuditCreate(auditService, logg))
				r.Post("/{auditID}/start", controllers.AuditStart(auditService, logg))
				r.Post("/{auditID}/complete", controllers.AuditComplete(auditService, logg))
				r.Post("/{auditID}/cancel", controllers.AuditCancel(auditService, logg))
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(locationService, logg))
			r.Get("/{locationID}", controllers.LocationDetail(locationService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogService, logg))
			r.Get("/{productID}", controllers.ProductDetail(catalogService, logg))
		})
	})

	return r
}
