package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/angelmondragon/gocart-backend/api/controllers"
	authcontrollers "github.com/angelmondragon/gocart-backend/api/controllers/auth"
	cartcontrollers "github.com/angelmondragon/gocart-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/gocart-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/gocart-backend/api/controllers/webhooks"
	"github.com/angelmondragon/gocart-backend/api/middleware"
	"github.com/angelmondragon/gocart-backend/api/responses"
	"github.com/angelmondragon/gocart-backend/internal/address"
	"github.com/angelmondragon/gocart-backend/internal/auth"
	"github.com/angelmondragon/gocart-backend/internal/cart"
	"github.com/angelmondragon/gocart-backend/internal/orders"
	product "github.com/angelmondragon/gocart-backend/internal/products"
	"github.com/angelmondragon/gocart-backend/internal/ratings"
	"github.com/angelmondragon/gocart-backend/internal/stores"
	"github.com/angelmondragon/gocart-backend/pkg/auth/session"
	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/gocart-backend/pkg/redis"
)

// RedisStore is the Redis surface the HTTP layer touches directly.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	RateLimitKey(scope string) string
	Ping(ctx context.Context) error
}

type StoreLookup interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

type StripeSigner interface {
	SigningSecret() string
}

type StripeEventLedger interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type HTTPObserver interface {
	Observe(route, method string, status int, elapsed time.Duration)
}

// Dependencies is everything the router wires into handlers. Optional members are
// left nil: Stripe* when payments are disabled, Metrics/MetricsHandler in tests.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Limiter  *middleware.IPLimiter

	StoreLookup StoreLookup
	Auth        auth.Service
	Products    product.Service
	Stores      stores.Service
	Orders      orders.Service
	Cart        cart.Service
	Addresses   address.Service
	Ratings     ratings.Service

	StripeSigner StripeSigner
	StripeEvents webhookcontrollers.StripeEventHandler
	StripeLedger StripeEventLedger

	Metrics        HTTPObserver
	MetricsHandler http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.SecureHeaders,
		middleware.CORS(cfg.CORS),
		middleware.Metrics(deps.Metrics),
		chimw.Compress(5, "application/json"),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Route %s not found", r.URL.Path)))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessDeps(deps), logg))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authed := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	activeStore := middleware.RequireActiveStore(deps.StoreLookup, logg)

	loginLimit := middleware.WindowRateLimit(middleware.WindowPolicy{
		Name:           "login",
		Window:         cfg.RateLimit.LoginWindow,
		Limit:          cfg.RateLimit.LoginLimit,
		Message:        middleware.LoginLimitMessage,
		SkipSuccessful: true,
	}, deps.Redis, logg)
	registerLimit := middleware.WindowRateLimit(middleware.WindowPolicy{
		Name:    "register",
		Window:  cfg.RateLimit.RegisterWindow,
		Limit:   cfg.RateLimit.RegisterLimit,
		Message: middleware.RegisterLimitMessage,
	}, deps.Redis, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(deps.StripeEvents, deps.StripeSigner, deps.StripeLedger, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(deps.Limiter, logg))

			r.Route("/auth", func(r chi.Router) {
				r.With(registerLimit).Post("/register", authcontrollers.Register(deps.Auth, logg))
				r.With(loginLimit).Post("/login", authcontrollers.Login(deps.Auth, logg))
				r.Post("/refresh", authcontrollers.Refresh(deps.Auth, logg))
				r.With(authed).Get("/me", authcontrollers.Me(deps.Auth, logg))
				r.With(authed).Post("/logout", authcontrollers.Logout(deps.Auth, logg))
				r.With(authed).Patch("/change-password", authcontrollers.ChangePassword(deps.Auth, logg))
			})
			r.With(authed).Get("/users/profile", authcontrollers.Me(deps.Auth, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ProductList(deps.Products, logg))
				r.Get("/categories", controllers.ProductCategories(deps.Products, logg))
				r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))

				r.Group(func(r chi.Router) {
					r.Use(authed, activeStore)
					r.Post("/", controllers.ProductCreate(deps.Products, logg))
					r.Put("/{productId}", controllers.ProductUpdate(deps.Products, logg))
					r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
					r.Patch("/{productId}/stock", controllers.ProductToggleStock(deps.Products, logg))
					r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
				})
			})

			r.Route("/stores", func(r chi.Router) {
				r.Get("/", controllers.StoreList(deps.Stores, logg))
				r.Get("/username/{username}", controllers.StoreByUsername(deps.Stores, logg))
				r.With(authed).Get("/me", controllers.StoreMine(deps.Stores, logg))
				r.Get("/{storeId}", controllers.StoreDetail(deps.Stores, logg))
				r.Get("/{storeId}/products", controllers.StoreProducts(deps.Stores, deps.Products, logg))

				r.Group(func(r chi.Router) {
					r.Use(authed)
					r.Post("/", controllers.StoreCreate(deps.Stores, logg))
					r.Put("/{storeId}", controllers.StoreUpdate(deps.Stores, logg))
					r.Patch("/{storeId}", controllers.StoreUpdate(deps.Stores, logg))
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(authed, middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Patch("/stores/{storeId}/status", controllers.AdminStoreStatus(deps.Stores, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(authed)
				r.Get("/", ordercontrollers.ListMine(deps.Orders, logg))
				r.With(middleware.Idempotency(deps.Redis, cfg.Orders.IdempotencyTTL, logg)).
					Post("/", ordercontrollers.Create(deps.Orders, logg))
				r.With(activeStore).Get("/store", ordercontrollers.ListStore(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, deps.StoreLookup, logg))
				r.With(activeStore).Patch("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(authed)
				r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
				r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
				r.Post("/items/{productId}", cartcontrollers.CartAddItem(deps.Cart, logg))
				r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Use(authed)
				r.Get("/", controllers.AddressList(deps.Addresses, logg))
				r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
				r.Get("/{addressId}", controllers.AddressDetail(deps.Addresses, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(deps.Addresses, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
			})

			r.Route("/ratings", func(r chi.Router) {
				r.Get("/product/{productId}", controllers.RatingListForProduct(deps.Ratings, logg))
				r.With(authed).Get("/", controllers.RatingListMine(deps.Ratings, logg))
				r.With(authed).Post("/", controllers.RatingCreate(deps.Ratings, logg))
			})
		})
	})

	return r
}

func readinessDeps(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{"postgres": deps.DB, "redis": nil}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}
