package realtime

import "errors"

var (
	ErrUnauthenticated    = errors.New("realtime: no credentials for connection")
	ErrHandshakeFailed    = errors.New("realtime: transport handshake failed")
	ErrRegistrationFailed = errors.New("realtime: user registration failed")
	ErrStopped            = errors.New("realtime: connection stopped during start")

	errDroppedDuringHandshake = errors.New("realtime: connection closed during handshake")
)
