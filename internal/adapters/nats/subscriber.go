package natsadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

// Subscriber delivers entity events from core NATS subjects. It is used for
// live fan-out, so delivery is at-most-once and nothing is acknowledged.
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber creates a subscriber sharing conn.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubjectFor builds the subscription subject for an entity kind; an empty kind
// matches every kind.
func SubjectFor(kind domain.EntityKind) string {
	if kind == "" {
		return SubjectPrefix + ".>"
	}
	return SubjectPrefix + "." + string(kind) + ".>"
}

// SubscribeEntityEvents calls handler for each event on the subject of kind.
// The returned func unsubscribes.
func (s *Subscriber) SubscribeEntityEvents(kind domain.EntityKind, handler func(domain.EntityEvent)) (func(), error) {
	subject := SubjectFor(kind)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var ev domain.EntityEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("dropping malformed entity event", "subject", msg.Subject, "error", err)
			return
		}
		handler(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
