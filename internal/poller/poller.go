package poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// CheckoutCompleter clears client state once a user's checkout succeeded.
type CheckoutCompleter interface {
	CompleteCheckout(ctx context.Context, userID string) error
}

// MessageReader is the subset of *kafka.Reader the poller uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type checkoutEvent struct {
	CheckoutID string `json:"checkout_id"`
	UserID     string `json:"user_id"`
}

type Poller struct {
	reader MessageReader
	target CheckoutCompleter
	log    *slog.Logger
}

func NewPoller(target CheckoutCompleter, log *slog.Logger, topic, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return New(reader, target, log)
}

func New(reader MessageReader, target CheckoutCompleter, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{reader: reader, target: target, log: log.With("component", "poller")}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := p.processMessage(ctx); err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warn("error closing reader", "error", err)
	}
}

// processMessage returns an error only when reading from the broker failed.
func (p *Poller) processMessage(ctx context.Context) error {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("error reading message", "error", err)
		}
		return err
	}

	var event checkoutEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.log.Warn("error parsing message", "error", err, "offset", m.Offset)
		return nil
	}
	if event.UserID == "" {
		p.log.Warn("missing user_id", "checkout_id", event.CheckoutID)
		return nil
	}

	if err := p.target.CompleteCheckout(ctx, event.UserID); err != nil {
		p.log.Warn("failed to clear cart", "user_id", event.UserID, "error", err)
	}
	return nil
}
