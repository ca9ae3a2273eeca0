package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medimartid/medimart-gateway/api/controllers"
	cartcontrollers "github.com/medimartid/medimart-gateway/api/controllers/cart"
	checkoutcontrollers "github.com/medimartid/medimart-gateway/api/controllers/checkout"
	ordercontrollers "github.com/medimartid/medimart-gateway/api/controllers/orders"
	"github.com/medimartid/medimart-gateway/api/middleware"
	"github.com/medimartid/medimart-gateway/internal/cart"
	checkoutsvc "github.com/medimartid/medimart-gateway/internal/checkout"
	"github.com/medimartid/medimart-gateway/internal/notify"
	orderssvc "github.com/medimartid/medimart-gateway/internal/orders"
	"github.com/medimartid/medimart-gateway/pkg/config"
	"github.com/medimartid/medimart-gateway/pkg/enums"
	"github.com/medimartid/medimart-gateway/pkg/logger"
	"github.com/medimartid/medimart-gateway/pkg/metrics"
	pkgredis "github.com/medimartid/medimart-gateway/pkg/redis"
)

// Deps bundles everything the router needs. Optional entries (redis,
// metrics) may be nil; the affected middleware then passes through.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *pkgredis.Client
	Upstream controllers.Pinger

	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orderssvc.Service
	Notifier        *notify.Memory

	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	readiness := map[string]controllers.Pinger{
		"marketplace": deps.Upstream,
	}
	if deps.Redis != nil {
		readiness["redis"] = pingerFunc(deps.Redis.Ping)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(idemStore, logg),
		)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(deps.CartService, logg))
			r.Post("/", cartcontrollers.Refresh(deps.CartService, logg))
			r.Patch("/items", cartcontrollers.UpdateQuantity(deps.CartService, logg))
			r.Delete("/items/{pharmacyId}/{productId}", cartcontrollers.RemoveItem(deps.CartService, logg))
			r.Post("/selection/product", cartcontrollers.ToggleProduct(deps.CartService, logg))
			r.Post("/selection/pharmacy", cartcontrollers.TogglePharmacy(deps.CartService, logg))
			r.Post("/selection/all", cartcontrollers.ToggleSelectAll(deps.CartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutcontrollers.Enter(deps.CheckoutService, logg))
			r.Get("/", checkoutcontrollers.Fetch(deps.CheckoutService, logg))
			r.Post("/address", checkoutcontrollers.SetAddress(deps.CheckoutService, logg))
			r.Put("/{pharmacyId}/note", checkoutcontrollers.SetNote(deps.CheckoutService, logg))
			r.Get("/{pharmacyId}/options", checkoutcontrollers.Options(deps.CheckoutService, logg))
			r.Put("/{pharmacyId}/ship-cost", checkoutcontrollers.SetShipCost(deps.CheckoutService, logg))
			r.Post("/submit", checkoutcontrollers.Submit(deps.CheckoutService, logg))
		})

		if deps.Notifier != nil {
			r.Get("/notifications", controllers.Notifications(deps.Notifier, logg))
		}

		r.With(middleware.RequireRole(enums.MemberRolePharmacist, logg)).
			Post("/orders/bulk/{action}", ordercontrollers.Bulk(deps.OrdersService, logg))
	})

	return r
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
