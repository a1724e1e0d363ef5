package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-shop-api/internal/config"
	"go-shop-api/internal/handler"
	"go-shop-api/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	Health  *handler.HealthHandler
	Metrics http.Handler
}

type httpObserver interface {
	ObserveHTTP(method string, route string, status int, elapsed time.Duration)
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, observer httpObserver) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(observer))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", h.Health.Health)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Group(func(api chi.Router) {
		api.Use(rateLimitMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/signup", h.Auth.Signup)
		api.Post("/login", h.Auth.Login)
		api.Post("/refresh", h.Auth.Refresh)

		api.Group(func(authed chi.Router) {
			authed.Use(authMiddleware.RequireAuth)

			authed.Get("/user", h.Auth.User)
			authed.Post("/cart", h.Cart.Add)
			authed.Get("/cart/{user_id}", h.Cart.List)
			authed.Post("/checkout", h.Cart.Checkout)
		})
	})

	return r
}
