package http

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/eiremap/internal/adapters/nats"
	"github.com/samirrijal/eiremap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to event kinds.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Kind   string `json:"kind"`   // "marker.added", "loaded.*", ... ("" = all)
}

// wsHello is the first frame on every connection.
type wsHello struct {
	Type   string        `json:"type"`
	Status CatalogStatus `json:"status"`
}

// WebSocketHandler relays catalog events from NATS to connected map clients.
// Every connection starts with all events; the first
// {"action":"subscribe","kind":"marker.>"} narrows to that kind and later
// subscribes widen again. Each event is sent at most once.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote", remoteAddr)
		log.Info("ws client connected")

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if err := writeJSON(wsHello{Type: "hello", Status: statusOf(deps.Catalog.Snapshot())}); err != nil {
			return
		}

		nc := deps.NATS
		if nc == nil {
			_ = writeJSON(map[string]string{"error": "live events are disabled"})
			return
		}

		filter := newEventFilter()
		sub, err := nc.Subscribe(natsadapter.AllSubjects, func(msg *nats.Msg) {
			if filter.allows(msg.Subject) {
				_ = writeJSON(json.RawMessage(msg.Data))
			}
		})
		if err != nil {
			log.Warn("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := subjectFor(m.Kind)
			if !ok {
				_ = writeJSON(map[string]string{"error": "invalid kind: " + m.Kind})
				continue
			}

			switch m.Action {
			case "subscribe":
				if !filter.add(subject) {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if filter.remove(subject) {
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		log.Info("ws client disconnected")
	}
}

// subjectFor maps an event kind filter onto a NATS subject. Wildcards are
// allowed as whole tokens only, and ">" only at the end.
func subjectFor(kind string) (string, bool) {
	if kind == "" || kind == ">" {
		return natsadapter.AllSubjects, true
	}
	toks := strings.Split(kind, ".")
	for i, tok := range toks {
		switch {
		case tok == "", strings.ContainsAny(tok, " \t"):
			return "", false
		case strings.ContainsAny(tok, "*>") && len(tok) > 1:
			return "", false
		case tok == ">" && i != len(toks)-1:
			return "", false
		}
	}
	return natsadapter.Subject(kind), true
}

// eventFilter holds the subject patterns one connection asked for. Until the
// client subscribes explicitly it passes everything.
type eventFilter struct {
	mu       sync.Mutex
	patterns map[string]bool
	implicit bool
}

func newEventFilter() *eventFilter {
	return &eventFilter{patterns: map[string]bool{natsadapter.AllSubjects: true}, implicit: true}
}

// add reports false when pattern is already held explicitly.
func (f *eventFilter) add(pattern string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.implicit {
		f.implicit = false
		f.patterns = map[string]bool{pattern: true}
		return true
	}
	if f.patterns[pattern] {
		return false
	}
	f.patterns[pattern] = true
	return true
}

func (f *eventFilter) remove(pattern string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.patterns[pattern] {
		return false
	}
	delete(f.patterns, pattern)
	f.implicit = false
	return true
}

func (f *eventFilter) allows(subject string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p := range f.patterns {
		if subjectMatches(p, subject) {
			return true
		}
	}
	return false
}

// subjectMatches applies NATS wildcard rules: "*" matches one token, a
// trailing ">" matches one or more.
func subjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == ">" {
			return len(st) > i
		}
		if i >= len(st) || (p != "*" && p != st[i]) {
			return false
		}
	}
	return len(pt) == len(st)
}
