package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/gym_client/internal/domain"
	"github.com/fjod/gym_client/internal/realtime"
	"github.com/fjod/gym_client/internal/session"
	"github.com/fjod/gym_client/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type NotificationsHandler struct {
	session *session.Session
	timeout time.Duration
	log     *slog.Logger
}

func NewNotificationsHandler(s *session.Session, timeout time.Duration, log *slog.Logger) *NotificationsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationsHandler{session: s, timeout: timeout, log: log}
}

type NotificationsResponse struct {
	Notifications   []domain.Notification `json:"notifications"`
	UnreadCount     int                   `json:"unreadCount"`
	IsConnected     bool                  `json:"isConnected"`
	ConnectionState string                `json:"connectionState"`
}

type ConnectionResponse struct {
	IsConnected     bool   `json:"isConnected"`
	ConnectionState string `json:"connectionState"`
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respondNotifications(w)
}

func (h *NotificationsHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	h.session.Notifications().MarkAsRead(chi.URLParam(r, "id"))
	h.respondNotifications(w)
}

func (h *NotificationsHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	h.session.Notifications().MarkAllAsRead()
	h.respondNotifications(w)
}

func (h *NotificationsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.session.Notifications().ClearNotification(chi.URLParam(r, "id"))
	h.respondNotifications(w)
}

func (h *NotificationsHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.session.Notifications().ClearAllNotifications()
	h.respondNotifications(w)
}

func (h *NotificationsHandler) Connection(w http.ResponseWriter, r *http.Request) {
	h.respondConnection(w, http.StatusOK)
}

// Reconnect lets the UI retry after the connection gave up reconnecting.
func (h *NotificationsHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.session.Reconnect(ctx); err != nil {
		logger.WithTrace(r.Context(), h.log).Warn("manual reconnect failed", "error", err, "request_id", getRequestID(r.Context()))
		status, code := http.StatusBadGateway, "hub_unavailable"
		if errors.Is(err, realtime.ErrUnauthenticated) {
			status, code = http.StatusUnauthorized, "unauthenticated"
		}
		respondError(w, status, code, err.Error())
		return
	}
	h.respondConnection(w, http.StatusOK)
}

func (h *NotificationsHandler) respondNotifications(w http.ResponseWriter) {
	store := h.session.Notifications()
	respondJSON(w, http.StatusOK, NotificationsResponse{
		Notifications:   store.Notifications(),
		UnreadCount:     store.UnreadCount(),
		IsConnected:     h.session.IsConnected(),
		ConnectionState: h.session.ConnectionState().String(),
	})
}

func (h *NotificationsHandler) respondConnection(w http.ResponseWriter, status int) {
	respondJSON(w, status, ConnectionResponse{
		IsConnected:     h.session.IsConnected(),
		ConnectionState: h.session.ConnectionState().String(),
	})
}
