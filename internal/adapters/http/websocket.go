package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/pkg/metrics"
)

// wsEnvelope is every message sent to a WebSocket client.
type wsEnvelope struct {
	Type    string          `json:"type"` // "snapshot" | "error"
	Session json.RawMessage `json:"session,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

// WebSocketHandler returns a handler bound to one session. Clients send
// command JSON, e.g. {"type":"add_point","point":{"lat":1,"lon":2}}, and
// receive the resulting snapshot. Snapshots produced by other connections
// (on this or another instance) are relayed when an event subscriber is set.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Params("id")
		logger := slog.Default().With("session", id, "remote", c.RemoteAddr().String())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var (
			mu          sync.Mutex
			lastVersion int64 = -1
		)

		write := func(env wsEnvelope) error {
			data, err := json.Marshal(env)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Snapshots may arrive twice (direct reply and relay); only newer
		// versions are forwarded.
		writeSnapshot := func(raw []byte, version int64) error {
			mu.Lock()
			defer mu.Unlock()
			if version <= lastVersion {
				return nil
			}
			lastVersion = version
			data, err := json.Marshal(wsEnvelope{Type: "snapshot", Session: raw})
			if err != nil {
				return err
			}
			return c.WriteMessage(websocket.TextMessage, data)
		}

		writeErr := func(err error) {
			e := classify(err)
			_ = write(wsEnvelope{Type: "error", Error: &e})
		}

		sendSession := func(sess *domain.Session) {
			raw, err := json.Marshal(sess)
			if err != nil {
				writeErr(err)
				return
			}
			_ = writeSnapshot(raw, sess.Version)
		}

		if deps.Events != nil {
			unsubscribe, err := deps.Events.SubscribeSession(ctx, id, func(raw []byte) {
				var head struct {
					Version int64 `json:"version"`
				}
				if err := json.Unmarshal(raw, &head); err != nil {
					logger.Warn("ws relay: bad snapshot", "error", err)
					return
				}
				_ = writeSnapshot(raw, head.Version)
			})
			if err != nil {
				logger.Error("ws subscribe failed", "error", err)
			} else {
				defer unsubscribe()
			}
		}

		sess, err := deps.Sessions.Get(ctx, id)
		if err != nil {
			writeErr(err)
			return
		}
		sendSession(sess)
		logger.Info("ws client connected")

		// Keep-alive ping
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
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var cmd domain.Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				_ = write(wsEnvelope{Type: "error", Error: &APIError{Status: 400, Code: "bad_request", Message: "invalid JSON"}})
				continue
			}

			dctx, dcancel := context.WithTimeout(ctx, requestTimeout)
			next, err := deps.Sessions.Dispatch(dctx, id, cmd)
			dcancel()
			if err != nil {
				writeErr(err)
				continue
			}
			sendSession(next)
		}

		logger.Info("ws client disconnected")
	}
}
