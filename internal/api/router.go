package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rafaeltorres/user-registry/internal/api/handlers"
	"github.com/rafaeltorres/user-registry/internal/api/middleware"
	"github.com/rafaeltorres/user-registry/internal/config"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/ws"
)

func NewRouter(services *service.Services, hub *ws.Hub, cfg *config.Config) http.Handler {
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

	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User)
	eventsHandler := handlers.NewEventsHandler(hub, services.Auth)

	authRoutes := func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/me", authHandler.Me)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", authRoutes)

		r.Route("/users", func(r chi.Router) {
			// Registration is public
			r.Post("/", userHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/", userHandler.List)
				r.Get("/search", userHandler.Search)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})

		// User-event feed
		r.Get("/events", eventsHandler.Handle)
	})

	// v2 adds mandatory address and password on create and carries the
	// address in responses.
	r.Route("/api/v2", func(r chi.Router) {
		r.Route("/auth", authRoutes)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateV2)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/", userHandler.ListV2)
				r.Get("/search", userHandler.SearchV2)
				r.Get("/{id}", userHandler.GetV2)
				r.Put("/{id}", userHandler.UpdateV2)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return r
}
