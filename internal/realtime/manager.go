package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/gym_client/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Manager owns the single push connection of an authenticated session.
// It hides reconnection from callers and fans server events out to one
// handler per event kind.
type Manager struct {
	url          string
	creds        CredentialProvider
	newTransport TransportFactory
	policy       ReconnectPolicy
	log          *slog.Logger

	sfg singleflight.Group // collapses concurrent Start calls into one handshake

	mu        sync.Mutex
	state     State
	userID    string
	transport Transport
	// generation changes on every Start and Stop; work started under an older
	// generation must not touch manager state.
	generation uint64
	// dropped records a close of the current transport that arrived while a
	// handshake was still running.
	dropped     bool
	handlers    [eventKindCount]func(json.RawMessage)
	cancelRetry context.CancelFunc
	retryDone   chan struct{}
}

type Option func(*Manager)

func WithReconnectPolicy(p ReconnectPolicy) Option {
	return func(m *Manager) {
		if p != nil {
			m.policy = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func NewManager(url string, creds CredentialProvider, factory TransportFactory, opts ...Option) *Manager {
	m := &Manager{
		url:          url,
		creds:        creds,
		newTransport: factory,
		policy:       DefaultBackoffPolicy(),
		log:          slog.Default(),
		state:        StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "realtime")
	return m
}

// Start connects and registers userID with the hub. It returns nil without
// doing anything when already connected. A close that arrives before the
// handshake finishes hands the connection to the reconnect loop.
func (m *Manager) Start(ctx context.Context, userID string) error {
	if m.State() == StateConnected {
		return nil
	}
	if userID == "" || m.creds == nil || m.creds.Token() == "" {
		return ErrUnauthenticated
	}

	_, err, _ := m.sfg.Do("start", func() (interface{}, error) {
		return nil, m.start(ctx, userID)
	})
	return err
}

func (m *Manager) start(ctx context.Context, userID string) error {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return nil
	}

	old := m.transport
	cancel, done := m.detachRetryLocked()
	m.generation++
	gen := m.generation

	t := m.newTransport(m.url, m.token)
	m.attachLocked(t, gen)
	m.transport = t
	m.userID = userID
	m.state = StateConnecting
	m.dropped = false
	m.mu.Unlock()

	// A manual start while reconnecting takes over from the retry loop.
	if cancel != nil {
		cancel()
		<-done
	}
	if old != nil {
		m.stopTransport(ctx, old)
	}

	err := m.handshake(ctx, t, userID)

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.stopTransport(ctx, t)
		return ErrStopped
	}
	if err != nil {
		m.state = StateDisconnected
		m.transport = nil
		m.mu.Unlock()
		m.stopTransport(ctx, t)
		return err
	}
	if m.dropped {
		// the hub closed the socket right after accepting the registration
		m.beginReconnectLocked(t, gen, errDroppedDuringHandshake)
		m.mu.Unlock()
		return nil
	}
	m.state = StateConnected
	m.mu.Unlock()

	m.log.Info("push connection established", "user_id", userID)
	return nil
}

// Stop tears the connection down from any state. Handlers are removed
// first; transport errors are logged and never returned.
func (m *Manager) Stop(ctx context.Context) error {
	m.OffAllHandlers()

	m.mu.Lock()
	m.generation++
	t := m.transport
	m.transport = nil
	m.state = StateDisconnected
	cancel, done := m.detachRetryLocked()
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if t != nil {
		m.stopTransport(ctx, t)
	}
	return nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// On registers the handler for kind, replacing any previous one.
// A nil handler removes it.
func (m *Manager) On(kind EventKind, handler func(json.RawMessage)) {
	if !kind.valid() {
		return
	}
	m.mu.Lock()
	m.handlers[kind] = handler
	m.mu.Unlock()
}

func (m *Manager) OnNotification(handler func(domain.Notification)) {
	if handler == nil {
		m.On(EventNotification, nil)
		return
	}
	m.On(EventNotification, func(payload json.RawMessage) {
		var n domain.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			m.log.Warn("dropping malformed notification", "error", err)
			return
		}
		handler(n)
	})
}

func (m *Manager) OnMessage(handler func(json.RawMessage)) { m.On(EventMessage, handler) }

func (m *Manager) OnBookingUpdate(handler func(json.RawMessage)) {
	m.On(EventBookingUpdate, handler)
}

func (m *Manager) OnDietPlanUpdate(handler func(json.RawMessage)) {
	m.On(EventDietPlanUpdate, handler)
}

func (m *Manager) OnWorkoutPlanUpdate(handler func(json.RawMessage)) {
	m.On(EventWorkoutPlanUpdate, handler)
}

func (m *Manager) OnProgressUpdate(handler func(json.RawMessage)) {
	m.On(EventProgressUpdate, handler)
}

func (m *Manager) OnClassUpdate(handler func(json.RawMessage)) { m.On(EventClassUpdate, handler) }

func (m *Manager) OnMembershipUpdate(handler func(json.RawMessage)) {
	m.On(EventMembershipUpdate, handler)
}

func (m *Manager) OnOrderUpdate(handler func(json.RawMessage)) { m.On(EventOrderUpdate, handler) }

// OffAllHandlers removes every registered handler.
func (m *Manager) OffAllHandlers() {
	m.mu.Lock()
	m.handlers = [eventKindCount]func(json.RawMessage){}
	m.mu.Unlock()
}

func (m *Manager) token() (string, error) {
	tok := m.creds.Token()
	if tok == "" {
		return "", ErrUnauthenticated
	}
	return tok, nil
}

func (m *Manager) handshake(ctx context.Context, t Transport, userID string) error {
	if err := t.Start(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}
	if err := t.Invoke(ctx, methodRegisterUser, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	return nil
}

// attachLocked subscribes t to every event kind and to its close hook.
func (m *Manager) attachLocked(t Transport, gen uint64) {
	for _, kind := range EventKinds() {
		t.On(kind.ServerName(), func(payload json.RawMessage) {
			m.dispatch(gen, kind, payload)
		})
	}
	t.OnClose(func(err error) {
		m.handleClose(t, gen, err)
	})
}

func (m *Manager) dispatch(gen uint64, kind EventKind, payload json.RawMessage) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	h := m.handlers[kind]
	m.mu.Unlock()

	if h != nil {
		h(payload)
	}
}

func (m *Manager) handleClose(t Transport, gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || t != m.transport {
		return
	}

	switch m.state {
	case StateConnecting, StateReconnecting:
		m.dropped = true
	case StateConnected:
		m.beginReconnectLocked(t, gen, err)
	}
}

func (m *Manager) beginReconnectLocked(t Transport, gen uint64, err error) {
	m.log.Warn("push connection lost, reconnecting", "error", err)
	m.state = StateReconnecting
	m.dropped = false

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancelRetry = cancel
	m.retryDone = done
	go m.reconnect(ctx, cancel, done, t, gen, m.userID)
}

func (m *Manager) reconnect(ctx context.Context, cancel context.CancelFunc, done chan struct{}, t Transport, gen uint64, userID string) {
	defer close(done)
	defer cancel()

	for attempt := 0; ; attempt++ {
		delay, ok := m.policy.NextDelay(attempt)
		if !ok {
			m.mu.Lock()
			current := gen == m.generation
			if current {
				m.state = StateDisconnected
				m.transport = nil
				m.cancelRetry, m.retryDone = nil, nil
			}
			m.mu.Unlock()

			if current {
				m.log.Error("push connection lost for good", "attempts", attempt)
				m.stopTransport(context.Background(), t)
			}
			return
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		m.mu.Lock()
		if gen == m.generation {
			m.dropped = false
		}
		m.mu.Unlock()

		err := m.handshake(ctx, t, userID)

		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			m.stopTransport(context.Background(), t)
			return
		}
		if err == nil && m.dropped {
			err = errDroppedDuringHandshake
		}
		if err == nil {
			m.state = StateConnected
			m.cancelRetry, m.retryDone = nil, nil
			m.mu.Unlock()
			m.log.Info("push connection restored", "attempt", attempt+1)
			return
		}
		m.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		m.log.Warn("reconnect attempt failed", "attempt", attempt+1, "error", err)
		m.stopTransport(ctx, t)
	}
}

func (m *Manager) detachRetryLocked() (context.CancelFunc, chan struct{}) {
	cancel, done := m.cancelRetry, m.retryDone
	m.cancelRetry, m.retryDone = nil, nil
	return cancel, done
}

func (m *Manager) stopTransport(ctx context.Context, t Transport) {
	if err := t.Stop(ctx); err != nil {
		m.log.Warn("error stopping push transport", "error", err)
	}
}
