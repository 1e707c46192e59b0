package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shophub-backend/api/controllers"
	"github.com/angelmondragon/shophub-backend/api/middleware"
	"github.com/angelmondragon/shophub-backend/internal/auth"
	"github.com/angelmondragon/shophub-backend/internal/cart"
	"github.com/angelmondragon/shophub-backend/internal/catalog"
	"github.com/angelmondragon/shophub-backend/internal/checkout"
	"github.com/angelmondragon/shophub-backend/internal/orders"
	"github.com/angelmondragon/shophub-backend/pkg/auth/session"
	"github.com/angelmondragon/shophub-backend/pkg/config"
	"github.com/angelmondragon/shophub-backend/pkg/db"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
	"github.com/angelmondragon/shophub-backend/pkg/metrics"
	"github.com/angelmondragon/shophub-backend/pkg/redis"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Redis and Sessions may be nil, in which case rate limiting, idempotency
// and session revocation are disabled.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(nil),
		deps.HTTP.Middleware,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return passthrough
		}
		return middleware.AuthRateLimit(policy, deps.Redis, logg)
	}
	idempotent := passthrough
	if deps.Redis != nil {
		idempotent = middleware.Idempotency(deps.Redis, logg)
	}
	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)

	readiness := map[string]controllers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(registerPolicy), idempotent).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/profile", controllers.AuthProfile(deps.Auth, logg))
			r.Put("/change-password", controllers.AuthChangePassword(deps.Auth, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Catalog, logg))
		r.Get("/categories/all", controllers.CategoriesList(deps.Catalog, logg))
		r.Get("/category/{slug}", controllers.ProductsByCategory(deps.Catalog, logg))
		r.Get("/search/{query}", controllers.ProductsSearch(deps.Catalog, logg))
		r.Get("/{id}", controllers.ProductDetail(deps.Catalog, logg))
	})

	r.Route("/api/v1/home", func(r chi.Router) {
		r.Get("/featured-products", controllers.HomeFeatured(deps.Catalog, logg))
		r.Get("/categories", controllers.CategoriesList(deps.Catalog, logg))
		r.Get("/promotions", controllers.HomePromotions(deps.Catalog))
		r.Get("/stats", controllers.HomeStats(deps.Catalog, logg))
		r.Get("/search-suggestions", controllers.HomeSuggestions(deps.Catalog, logg))
		r.Get("/home-data", controllers.HomeData(deps.Catalog, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.With(optionalAuth).Get("/", controllers.CartFetch(deps.Cart, logg))
		r.With(optionalAuth).Get("/summary", controllers.CartSummary(deps.Cart, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.With(idempotent).Post("/add", controllers.CartAdd(deps.Cart, logg))
			r.Put("/update/{lineId}", controllers.CartUpdate(deps.Cart, logg))
			r.Delete("/remove/{lineId}", controllers.CartRemove(deps.Cart, logg))
			r.Delete("/clear", controllers.CartClear(deps.Cart, logg))
		})
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.With(optionalAuth).Get("/summary", controllers.CheckoutSummary(deps.Checkout, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.With(idempotent).Post("/process", controllers.CheckoutProcess(deps.Checkout, logg))
			r.Get("/orders", controllers.OrdersList(deps.Orders, logg))
			r.Get("/orders/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.With(idempotent).Put("/orders/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
