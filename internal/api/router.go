package api

import (
	"net/http"

	"github.com/ewright/todo-backend/internal/api/handlers"
	"github.com/ewright/todo-backend/internal/api/middleware"
	"github.com/ewright/todo-backend/internal/config"
	"github.com/ewright/todo-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	todoHandler := handlers.NewTodoHandler(services.Todo)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Round-trip delay emulating a real network backend; a no-op at 0
		r.Use(middleware.Latency(cfg.SimulatedLatency))

		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/logout", authHandler.Logout)
				r.Get("/profile", authHandler.Profile)
			})
		})

		// Protected todo routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", todoHandler.List)
				r.Post("/", todoHandler.Create)
				r.Put("/{id}", todoHandler.Update)
				r.Delete("/{id}", todoHandler.Delete)
				r.Patch("/{id}/toggle", todoHandler.Toggle)
			})
		})
	})

	return r
}
