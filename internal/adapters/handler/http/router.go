package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
	"github.com/vncsmyrnk/sketchbook/internal/ratelimit"
)

type RouterConfig struct {
	Service        ports.SketchbookService
	Auth           *Authenticator
	Limiter        *ratelimit.KeyedRateLimiter
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewHandler(cfg RouterConfig) http.Handler {
	sketchbooks := NewSketchbookHandler(cfg.Service, cfg.Logger)
	memberships := NewMembershipHandler(cfg.Service, cfg.Logger)
	posts := NewPostHandler(cfg.Service, cfg.Logger)
	polls := NewPollHandler(cfg.Service, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(rateLimit(cfg.Limiter, cfg.Logger))
		}

		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.OptionalAuth)

			r.Get("/brands/{brandID}/sketchbook", sketchbooks.GetSketchbook)
			r.Get("/brands/{brandID}/sketchbook/view", sketchbooks.GetSketchbookView)
			r.Get("/sketchbooks/{id}/membership", memberships.CheckMembership)
			r.Post("/posts/{id}/views", posts.RecordView)
			r.Get("/posts/{id}/poll", polls.Results)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.RequireAuth)

			r.Put("/brands/{brandID}/sketchbook", sketchbooks.UpdateSettings)
			r.Put("/brands/{brandID}/follow", sketchbooks.Follow)
			r.Delete("/brands/{brandID}/follow", sketchbooks.Unfollow)
			r.Post("/brands/{brandID}/posts", posts.CreatePost)
			r.Get("/brands/{brandID}/spend-eligibility", sketchbooks.SpendEligibility)
			r.Get("/brands/{brandID}/analytics", sketchbooks.Analytics)

			r.Post("/sketchbooks/{id}/membership", memberships.Join)
			r.Delete("/sketchbooks/{id}/membership", memberships.Revoke)
			r.Post("/sketchbooks/{id}/membership/request", memberships.RequestAccess)
			r.Post("/sketchbooks/{id}/unlock", memberships.Unlock)

			r.Get("/feed", posts.Feed)
			r.Delete("/posts/{id}", posts.DeletePost)
			r.Post("/posts/{id}/reactions", posts.React)
			r.Post("/posts/{id}/votes", polls.Vote)
		})
	})

	return r
}
