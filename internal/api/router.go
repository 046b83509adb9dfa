package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/marcus/code-playground/internal/api/handlers"
	"github.com/marcus/code-playground/internal/api/middleware"
	"github.com/marcus/code-playground/internal/config"
	"github.com/marcus/code-playground/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	admissionHandler := handlers.NewAdmissionHandler(services.Admission)
	profileHandler := handlers.NewProfileHandler(services.Profile)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/github/url", authHandler.GithubURL)
			r.Get("/github/callback", authHandler.GithubCallback)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/admin/admitted", func(r chi.Router) {
				r.Get("/", admissionHandler.List)
				r.Post("/", admissionHandler.Admit)
				r.Delete("/{email}", admissionHandler.Revoke)
			})

			r.Put("/users/me/nickname", profileHandler.UpdateNickname)
		})
	})

	// Popup-handshake client and demo page
	r.Handle("/*", http.FileServer(http.Dir("web/static")))

	return r
}
