package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/gym_client/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type routerConfig struct {
	statuses map[string]func() string
}

type RouterOption func(*routerConfig)

// WithComponentStatus adds name to the /health payload, reported by fn.
func WithComponentStatus(name string, fn func() string) RouterOption {
	return func(c *routerConfig) { c.statuses[name] = fn }
}

// NewRouter exposes the session state to the local UI.
func NewRouter(s *session.Session, requestTimeout time.Duration, log *slog.Logger, opts ...RouterOption) http.Handler {
	cfg := &routerConfig{statuses: make(map[string]func() string)}
	for _, opt := range opts {
		opt(cfg)
	}

	cartHandler := NewCartHandler(s.Cart(), log)
	notificationsHandler := NewNotificationsHandler(s, requestTimeout, log)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{
			"status":     "ok",
			"connection": s.ConnectionState().String(),
		}
		for name, fn := range cfg.statuses {
			payload[name] = fn()
		}
		respondJSON(w, http.StatusOK, payload)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationsHandler.List)
			r.Delete("/", notificationsHandler.ClearAll)
			r.Post("/read-all", notificationsHandler.MarkAllAsRead)
			r.Post("/{id}/read", notificationsHandler.MarkAsRead)
			r.Delete("/{id}", notificationsHandler.Clear)
		})
		r.Route("/connection", func(r chi.Router) {
			r.Get("/", notificationsHandler.Connection)
			r.Post("/reconnect", notificationsHandler.Reconnect)
		})
	})

	return r
}
