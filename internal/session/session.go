// Package session ties the push connection and the client stores to one
// authenticated session. Init runs on login, Teardown on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/gym_client/internal/cache"
	"github.com/fjod/gym_client/internal/cart"
	"github.com/fjod/gym_client/internal/credentials"
	"github.com/fjod/gym_client/internal/domain"
	"github.com/fjod/gym_client/internal/notifications"
	"github.com/fjod/gym_client/internal/realtime"
)

const cacheTimeout = time.Second

// Connection is the part of realtime.Manager a session drives.
type Connection interface {
	Start(ctx context.Context, userID string) error
	Stop(ctx context.Context) error
	On(kind realtime.EventKind, handler func(json.RawMessage))
	OnNotification(handler func(domain.Notification))
	OffAllHandlers()
	IsConnected() bool
	State() realtime.State
}

type Session struct {
	creds         credentials.Provider
	conn          Connection
	notifications *notifications.Store
	cart          *cart.Store
	cache         cache.CartCache
	handlers      map[realtime.EventKind]func(json.RawMessage)
	log           *slog.Logger
}

type Option func(*Session)

func WithCartCache(c cache.CartCache) Option {
	return func(s *Session) { s.cache = c }
}

func WithNotificationStore(store *notifications.Store) Option {
	return func(s *Session) { s.notifications = store }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithEventHandler forwards the opaque payloads of kind to fn.
func WithEventHandler(kind realtime.EventKind, fn func(json.RawMessage)) Option {
	return func(s *Session) { s.handlers[kind] = fn }
}

func New(creds credentials.Provider, conn Connection, opts ...Option) *Session {
	s := &Session{
		creds:    creds,
		conn:     conn,
		handlers: make(map[realtime.EventKind]func(json.RawMessage)),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifications == nil {
		s.notifications = notifications.NewStore()
	}
	s.log = s.log.With("component", "session")
	s.cart = cart.NewStore(creds.UserID(), s.log)
	return s
}

// Init restores the cached cart, subscribes the stores and starts the push
// connection. A connection error is returned, but the stores stay usable.
func (s *Session) Init(ctx context.Context) error {
	userID := s.creds.UserID()
	if userID == "" {
		return realtime.ErrUnauthenticated
	}

	s.restoreCart(ctx, userID)
	s.cart.OnChange(s.persistCart)

	return s.Reconnect(ctx)
}

// Reconnect re-subscribes the handlers and starts the connection if it is
// not already up.
func (s *Session) Reconnect(ctx context.Context) error {
	s.subscribe()
	if err := s.conn.Start(ctx, s.creds.UserID()); err != nil {
		s.log.Warn("push connection unavailable", "error", err)
		return err
	}
	return nil
}

// Teardown stops the connection and forgets the session state. The cached
// cart is left to expire.
func (s *Session) Teardown(ctx context.Context) error {
	s.conn.OffAllHandlers()
	err := s.conn.Stop(ctx)

	s.cart.OnChange(nil)
	s.cart.ClearCart()
	s.notifications.ClearAllNotifications()
	return err
}

// CompleteCheckout empties the cart once the checkout of userID succeeded.
// Checkouts of other users are ignored.
func (s *Session) CompleteCheckout(_ context.Context, userID string) error {
	if userID == "" || userID != s.creds.UserID() {
		return nil
	}
	s.cart.ClearCart()
	s.log.Info("cart cleared after checkout", "user_id", userID)
	return nil
}

func (s *Session) UserID() string                      { return s.creds.UserID() }
func (s *Session) Cart() *cart.Store                   { return s.cart }
func (s *Session) Notifications() *notifications.Store { return s.notifications }
func (s *Session) IsConnected() bool                   { return s.conn.IsConnected() }
func (s *Session) ConnectionState() realtime.State     { return s.conn.State() }

func (s *Session) subscribe() {
	s.conn.OnNotification(s.notifications.AddNotification)

	for _, kind := range realtime.EventKinds() {
		if kind == realtime.EventNotification {
			continue
		}
		if fn, ok := s.handlers[kind]; ok {
			s.conn.On(kind, fn)
			continue
		}
		s.conn.On(kind, func(payload json.RawMessage) {
			s.log.Debug("push event", "event", kind.String(), "bytes", len(payload))
		})
	}
}

func (s *Session) restoreCart(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	snap, err := s.cache.Get(ctx, userID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return
	}
	if err != nil {
		s.log.Warn("cart cache get failed", "error", err)
		return
	}
	s.cart.Restore(*snap)
}

func (s *Session) persistCart(snap domain.CartSnapshot) {
	if s.cache == nil || snap.UserID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	var err error
	if len(snap.Items) == 0 {
		err = s.cache.Delete(ctx, snap.UserID)
	} else {
		err = s.cache.Set(ctx, snap.UserID, snap)
	}
	if err != nil {
		s.log.Warn("cart cache write failed", "error", err)
	}
}
