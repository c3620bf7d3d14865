package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/orgshop-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/orgshop-backend/api/controllers/webhooks"
	"github.com/angelmondragon/orgshop-backend/api/middleware"
	cartsvc "github.com/angelmondragon/orgshop-backend/internal/cart"
	catalogsvc "github.com/angelmondragon/orgshop-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/orgshop-backend/internal/checkout"
	stripewebhook "github.com/angelmondragon/orgshop-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/orgshop-backend/pkg/config"
	"github.com/angelmondragon/orgshop-backend/pkg/db"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
	"github.com/angelmondragon/orgshop-backend/pkg/redis"
	"github.com/angelmondragon/orgshop-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
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

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))

		r.Post("/checkout", controllers.CheckoutCreate(checkoutService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, cfg.FeatureFlags, logg))
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Post("/", controllers.CartReplace(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Delete("/{itemID}", controllers.CartDeleteItem(cartService, logg))
		})
	})

	return r
}
