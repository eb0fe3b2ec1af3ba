package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillpoint/tillpoint-backend/api/controllers"
	"github.com/tillpoint/tillpoint-backend/api/middleware"
	"github.com/tillpoint/tillpoint-backend/internal/inventory"
	"github.com/tillpoint/tillpoint-backend/internal/sales"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/metrics"
	pkgredis "github.com/tillpoint/tillpoint-backend/pkg/redis"
)

// Dependencies carries everything the router needs to wire its handlers.
type Dependencies struct {
	Config           *config.Config
	Logger           *logger.Logger
	DBPinger         controllers.Pinger
	RedisPinger      controllers.Pinger
	IdempotencyStore pkgredis.IdempotencyStore
	MetricsGatherer  prometheus.Gatherer
	HTTPMetrics      *metrics.HTTPMetrics
	SalesService     sales.Service
	InventoryService inventory.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/sales", func(r chi.Router) {
			r.Post("/", controllers.CreateSale(deps.SalesService, logg))
			r.Get("/", controllers.ListSales(deps.SalesService, logg))
			r.Get("/{saleID}", controllers.SaleDetail(deps.SalesService, logg))
			r.Post("/{saleID}/refund", controllers.RefundSale(deps.SalesService, logg))
		})

		r.Route("/v1/inventory", func(r chi.Router) {
			r.With(middleware.RequireRoles(logg, string(enums.UserRoleAdmin), string(enums.UserRoleManager))).
				Post("/adjust", controllers.AdjustStock(deps.InventoryService, logg))
			r.Get("/history", controllers.InventoryHistory(deps.InventoryService, logg))
			r.Get("/low-stock", controllers.LowStock(deps.InventoryService, logg))
		})
	})

	return r
}
