// Package wsclient is a push-hub transport over a WebSocket connection.
//
// Frames are JSON objects. The client sends invocations and waits for the
// matching completion; the hub pushes named events whose first argument is
// handed to the registered handler untouched.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fjod/gym_client/internal/realtime"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	frameInvocation = "invocation"
	frameCompletion = "completion"
	frameEvent      = "event"
)

var (
	ErrNotConnected     = errors.New("wsclient: not connected")
	ErrClosed           = errors.New("wsclient: connection closed")
	ErrInvocationFailed = errors.New("wsclient: invocation failed")
)

type frame struct {
	Type         string            `json:"type"`
	InvocationID string            `json:"invocationId,omitempty"`
	Target       string            `json:"target,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type Config struct {
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
}

func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 15 * time.Second,
		PingInterval:     54 * time.Second,
		PongWait:         60 * time.Second,
		WriteWait:        10 * time.Second,
	}
}

// Client implements realtime.Transport.
type Client struct {
	url   string
	token realtime.TokenFunc
	cfg   Config

	mu       sync.Mutex
	current  *wsConn
	handlers map[string]func(json.RawMessage)
	pending  map[string]chan error
	onClose  func(error)
}

// wsConn is one dialed connection; a Client dials a new one on every Start.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	stop    chan struct{}
}

func New(hubURL string, token realtime.TokenFunc, cfg Config) *Client {
	return &Client{
		url:      hubURL,
		token:    token,
		cfg:      cfg,
		handlers: make(map[string]func(json.RawMessage)),
		pending:  make(map[string]chan error),
	}
}

// Factory adapts New to realtime.TransportFactory.
func Factory(cfg Config) realtime.TransportFactory {
	return func(hubURL string, token realtime.TokenFunc) realtime.Transport {
		return New(hubURL, token, cfg)
	}
}

func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	tok, err := c.token()
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	target, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("parse hub url: %w", err)
	}
	q := target.Query()
	q.Set("access_token", tok)
	target.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tok)

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial hub: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial hub: %w", err)
	}

	s := &wsConn{conn: conn, stop: make(chan struct{})}

	c.mu.Lock()
	if c.current != nil {
		// lost a race with a concurrent Start
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.current = s
	c.mu.Unlock()

	conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	go c.readPump(s)
	go c.pingPump(s)
	return nil
}

// Stop closes the current connection. It does not fire the close hook.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.failPendingLocked(ErrClosed)
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	close(s.stop)

	deadline := time.Now().Add(c.cfg.WriteWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	s.writeMu.Unlock()

	return s.conn.Close()
}

// Invoke calls method on the hub and waits for its completion.
func (c *Client) Invoke(ctx context.Context, method string, args ...any) error {
	rawArgs := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal %s argument: %w", method, err)
		}
		rawArgs = append(rawArgs, b)
	}

	id := uuid.NewString()
	result := make(chan error, 1)

	c.mu.Lock()
	s := c.current
	if s == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.pending[id] = result
	c.mu.Unlock()

	err := c.write(s, frame{
		Type:         frameInvocation,
		InvocationID: id,
		Target:       method,
		Arguments:    rawArgs,
	})
	if err != nil {
		c.dropPending(id)
		return fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		c.dropPending(id)
		return ctx.Err()
	}
}

func (c *Client) On(event string, handler func(payload json.RawMessage)) {
	c.mu.Lock()
	c.handlers[event] = handler
	c.mu.Unlock()
}

func (c *Client) Off(event string) {
	c.mu.Lock()
	delete(c.handlers, event)
	c.mu.Unlock()
}

func (c *Client) OnClose(fn func(err error)) {
	c.mu.Lock()
	c.onClose = fn
	c.mu.Unlock()
}

func (c *Client) readPump(s *wsConn) {
	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			c.connectionLost(s, err)
			return
		}

		switch f.Type {
		case frameCompletion:
			c.complete(f)
		case frameEvent:
			c.deliver(f)
		}
	}
}

func (c *Client) pingPump(s *wsConn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) write(s *wsConn, f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(f)
}

func (c *Client) complete(f frame) {
	c.mu.Lock()
	result, ok := c.pending[f.InvocationID]
	delete(c.pending, f.InvocationID)
	c.mu.Unlock()
	if !ok {
		return
	}

	if f.Error != "" {
		result <- fmt.Errorf("%w: %s", ErrInvocationFailed, f.Error)
		return
	}
	result <- nil
}

func (c *Client) deliver(f frame) {
	c.mu.Lock()
	h := c.handlers[f.Target]
	c.mu.Unlock()
	if h == nil {
		return
	}

	payload := json.RawMessage("null")
	if len(f.Arguments) > 0 {
		payload = f.Arguments[0]
	}
	h(payload)
}

func (c *Client) connectionLost(s *wsConn, err error) {
	c.mu.Lock()
	if c.current != s {
		// closed by Stop
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.failPendingLocked(err)
	onClose := c.onClose
	c.mu.Unlock()

	close(s.stop)
	_ = s.conn.Close()

	if onClose != nil {
		onClose(err)
	}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) failPendingLocked(err error) {
	for id, result := range c.pending {
		result <- err
		delete(c.pending, id)
	}
}
