package realtime

import (
	"context"
	"encoding/json"
)

// TokenFunc returns the bearer token for a (re)connect attempt.
type TokenFunc func() (string, error)

// Transport is a persistent push connection to the notification hub.
//
// Start may be called again after an unexpected close to redial.
// Event handlers registered with On survive redials. OnClose fires for
// drops the transport did not initiate through Stop.
type Transport interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Invoke(ctx context.Context, method string, args ...any) error
	On(event string, handler func(payload json.RawMessage))
	Off(event string)
	OnClose(func(err error))
}

// TransportFactory builds a transport for the hub URL.
type TransportFactory func(url string, token TokenFunc) Transport

// CredentialProvider supplies the bearer token. An empty token means unauthenticated.
type CredentialProvider interface {
	Token() string
}
