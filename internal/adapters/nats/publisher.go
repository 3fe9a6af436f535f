package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
)

const (
	// StreamName is the JetStream stream holding entity events.
	StreamName = "CITRUSFIELD_EVENTS"
	// SubjectPrefix starts every entity event subject.
	SubjectPrefix = "citrusfield"
)

// Subject returns the subject an event is published on: citrusfield.<kind>.<action>.
func Subject(ev domain.EntityEvent) string {
	return SubjectPrefix + "." + string(ev.Kind) + "." + ev.Action
}

// Connect opens a NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("citrusfield"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher enables JetStream on conn and ensures the event stream exists.
func NewPublisher(conn *nats.Conn) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectPrefix + ".>"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishEntityEvent publishes ev as JSON. Retried publishes of the same event
// are deduplicated by the stream.
func (p *Publisher) PublishEntityEvent(ctx context.Context, ev domain.EntityEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msgID := fmt.Sprintf("%s:%s:%s:%s", ev.Kind, ev.EntityID, ev.Action, ev.At)
	if _, err := p.js.Publish(Subject(ev), data, nats.Context(ctx), nats.MsgId(msgID)); err != nil {
		return fmt.Errorf("publish %s: %w", Subject(ev), err)
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Kind)).Inc()
	return nil
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}
