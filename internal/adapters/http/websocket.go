package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to entity kinds.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Kind   string `json:"kind"`   // surveys | land-changes | civil-requests; "" = all
}

// wsWriter serializes writes to a websocket connection.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) json(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsWriter) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// keepAlive pings every 30s until done is closed.
func (w *wsWriter) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func validKind(kind string) bool {
	switch domain.EntityKind(kind) {
	case "", domain.KindSurvey, domain.KindLandChange, domain.KindCivilRequest:
		return true
	}
	return false
}

// EventsSocketHandler relays entity-changed events to connected clients.
// The ?kind= query picks the initial subscription (all kinds when empty).
// Clients send JSON: {"action":"subscribe","kind":"surveys"}.
func EventsSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr, "stream", "events")

		w := &wsWriter{conn: c}
		if deps.Events == nil {
			_ = w.json(map[string]string{"error": "event stream not configured"})
			return
		}

		subs := make(map[string]func()) // kind -> unsubscribe
		subscribe := func(kind string) error {
			if _, ok := subs[kind]; ok {
				return nil
			}
			unsub, err := deps.Events.SubscribeEntityEvents(domain.EntityKind(kind), func(ev domain.EntityEvent) {
				_ = w.json(ev)
			})
			if err != nil {
				return err
			}
			subs[kind] = unsub
			return nil
		}

		initial := c.Query("kind")
		if !validKind(initial) {
			_ = w.json(map[string]string{"error": "unknown kind: " + initial})
			return
		}
		if err := subscribe(initial); err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}

		done := make(chan struct{})
		go w.keepAlive(done)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = w.json(map[string]string{"error": "invalid JSON"})
				continue
			}
			if !validKind(m.Kind) {
				_ = w.json(map[string]string{"error": "unknown kind: " + m.Kind})
				continue
			}

			switch m.Action {
			case "subscribe":
				if err := subscribe(m.Kind); err != nil {
					_ = w.json(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = w.json(map[string]string{"status": "subscribed", "kind": m.Kind})
			case "unsubscribe":
				unsub, ok := subs[m.Kind]
				if !ok {
					_ = w.json(map[string]string{"error": "not subscribed to " + m.Kind})
					continue
				}
				unsub()
				delete(subs, m.Kind)
				_ = w.json(map[string]string{"status": "unsubscribed", "kind": m.Kind})
			default:
				_ = w.json(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, unsub := range subs {
			unsub()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr, "stream", "events")
	}
}

// mapFrame is one animation frame of a map session.
type mapFrame struct {
	Time   int             `json:"time"`
	Layers []mapview.Layer `json:"layers"`
}

// MapSocketHandler streams the composed layers of a map session on every
// clock tick. The clock stops when the client goes away or the session expires.
func MapSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		id := c.Params("id")
		w := &wsWriter{conn: c}
		if _, err := deps.Maps.Get(id); err != nil {
			_ = w.json(map[string]string{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// The client never sends frames; reading only detects the close.
		go func() {
			defer cancel()
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		clock := mapview.StartClock(ctx, deps.mapTick())
		defer clock.Stop()

		for t := range clock.Frames() {
			layers, err := deps.Maps.Layers(id, float64(t))
			if err != nil {
				_ = w.json(map[string]string{"error": err.Error()})
				return
			}
			if err := w.json(mapFrame{Time: t, Layers: layers}); err != nil {
				return
			}
		}
	}
}
