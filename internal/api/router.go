package api

import (
	"net/http"

	"github.com/gisoinvest/auth-service/internal/api/handlers"
	"github.com/gisoinvest/auth-service/internal/api/middleware"
	"github.com/gisoinvest/auth-service/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(services *service.Services, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", handlers.Health)

	authHandler := handlers.NewAuthHandler(services.Auth, services.Sessions)
	profileHandler := handlers.NewProfileHandler(services.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Logout and refresh read the bearer token themselves: logout
			// must stay idempotent for dead tokens, refresh reports its own
			// failure code.
			r.Post("/logout", authHandler.Logout)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Sessions))
				r.Get("/validate", authHandler.Validate)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Auth(services.Sessions))
			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)
			r.Put("/password", profileHandler.ChangePassword)
		})
	})

	return r
}
