package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/calisthenics-hub/api/app"
	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/handlers"
	"github.com/calisthenics-hub/api/internal/observability"
	"github.com/calisthenics-hub/api/middleware"
)

const loginRateWindow = time.Minute

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) *chi.Mux {
	cfg := deps.Config
	t := deps.Translator
	authn := deps.AuthMiddleware.Authenticate
	adminOnly := deps.AuthMiddleware.RequireRoles(auth.RoleAdmin)

	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.Middleware(deps.Logger, deps.Metrics))
	r.Use(t.Recoverer)
	r.Use(middleware.SecureHeaders(cfg.IsProduction(), cfg.Server.ForceHTTPS, deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.RequestSize(cfg.Server.MaxBodyBytes))
	r.Use(t.Timeout(cfg.Server.RequestTimeout))

	r.NotFound(t.NotFound)
	r.MethodNotAllowed(t.MethodNotAllowed)

	health := handlers.NewHealthHandler(healthChecker(deps), deps.Logger)
	r.Get("/health", t.Handle(health.HandleHealth))
	r.Get("/health/ready", t.Handle(health.HandleReadiness))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	authH := handlers.NewAuthHandler(deps.AuthService)
	users := handlers.NewUserHandler(deps.UserService)
	catalog := handlers.NewCatalogHandler(deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(cfg.Auth.LoginRateLimit, loginRateWindow, t))
				r.Post("/register", t.Handle(authH.HandleRegister))
				r.Post("/login", t.Handle(authH.HandleLogin))
			})
			r.With(authn).Get("/me", t.Handle(authH.HandleMe))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn)
			r.With(adminOnly).Get("/", t.Handle(users.HandleList))
			r.Get("/{id}", t.Handle(users.HandleGet))
			r.Put("/{id}", t.Handle(users.HandleUpdate))
		})

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", t.Handle(catalog.ListExercises))
			r.Get("/{id}", t.Handle(catalog.GetExercise))
		})

		r.Route("/training", func(r chi.Router) {
			r.Use(authn)
			r.Get("/reports", t.Handle(catalog.ListTrainingReports))
			r.Post("/reports", t.Handle(catalog.CreateTrainingReport))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", t.Handle(catalog.ListProducts))
			r.Get("/{id}", t.Handle(catalog.GetProduct))
			r.With(authn, adminOnly).Post("/", t.Handle(catalog.CreateProduct))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", t.Handle(catalog.ListOrders))
			r.Post("/", t.Handle(catalog.CreateOrder))
			r.Get("/{id}", t.Handle(catalog.GetOrder))
		})
	})

	return r
}

// healthChecker avoids handing the readiness probe a typed nil.
func healthChecker(deps *app.Dependencies) handlers.HealthChecker {
	if deps.DB == nil {
		return nil
	}
	return deps.DB
}
