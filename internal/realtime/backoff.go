package realtime

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 30 * time.Second
	DefaultMaxRetries   = 5
)

// ReconnectPolicy decides the delay before reconnect attempt n (0-indexed).
// ok=false means no further automatic attempt is made.
type ReconnectPolicy interface {
	NextDelay(attempt int) (delay time.Duration, ok bool)
}

// BackoffPolicy doubles the delay from InitialDelay up to MaxDelay, without jitter,
// and gives up after MaxRetries attempts.
type BackoffPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxRetries   int
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		MaxRetries:   DefaultMaxRetries,
	}
}

func (p BackoffPolicy) NextDelay(attempt int) (time.Duration, bool) {
	if attempt < 0 || attempt >= p.MaxRetries {
		return 0, false
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.MaxDelay,
	}
	b.Reset()

	var delay time.Duration
	for i := 0; i <= attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay, true
}
