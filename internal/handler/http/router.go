package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/internal/service"
	"github.com/sostak/Bakalauras/pkg/health"
	"github.com/sostak/Bakalauras/pkg/middleware"
)

// NewRouter creates a chi router with all identity service routes registered.
func NewRouter(
	identityService *service.IdentityService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("identity"))
	r.Use(middleware.PrometheusMetrics("identity"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the service's JWT validation.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := identityService.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			IdentityID: claims.Subject,
			Email:      claims.Email,
			Roles:      claims.Roles,
		}, nil
	}

	authHandler := NewAuthHandler(identityService, logger)
	userHandler := NewUserHandler(identityService, logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})

	// Identity endpoints (auth required)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.GetCurrentUser)
		r.Put("/me", userHandler.UpdateProfile)

		// Admin-only identity management
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))

			r.Get("/", userHandler.ListUsers)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Put("/{id}/role", userHandler.ChangeRole)
		})
	})

	// Customer profile endpoints (auth required)
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		// Ownership is checked in the service: non-admins may only read
		// their own record.
		r.Get("/{id}", userHandler.GetCustomer)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			r.Get("/", userHandler.ListCustomers)
		})
	})

	// Mechanic profile endpoints (auth required)
	r.Route("/api/v1/mechanics", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/{id}", userHandler.GetMechanic)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			r.Get("/", userHandler.ListMechanics)
		})
	})

	return r
}
