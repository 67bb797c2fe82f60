package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

const (
	sessionStream  = "MEASURE_SESSIONS"
	sessionSubject = "measure.session."
)

// SessionSubject returns the subject session snapshots are published on.
func SessionSubject(id string) string {
	return sessionSubject + id
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Only the latest snapshot per session matters to late joiners.
	cfg := nats.StreamConfig{
		Name:              sessionStream,
		Subjects:          []string{sessionSubject + ">"},
		Retention:         nats.LimitsPolicy,
		MaxMsgsPerSubject: 1,
		MaxAge:            2 * time.Hour,
		Storage:           nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSession broadcasts the full session snapshot.
func (p *Publisher) PublishSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SessionSubject(session.ID), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("pinmeasure"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
