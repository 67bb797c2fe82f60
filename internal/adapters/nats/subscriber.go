package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
)

// subscription is the part of *nats.Subscription the subscriber needs.
type subscription interface {
	Unsubscribe() error
}

type subscribeFunc func(subject string, handler func([]byte)) (subscription, error)

// Subscriber implements ports.EventSubscriber with core NATS subscriptions.
// Every API instance receives every snapshot, which is what the WebSocket
// relay needs.
type Subscriber struct {
	subscribe subscribeFunc
}

// NewSubscriber creates a subscriber on an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{subscribe: func(subject string, handler func([]byte)) (subscription, error) {
		sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
			handler(msg.Data)
		})
		if err != nil {
			return nil, err
		}
		return sub, nil
	}}
}

// SubscribeSession delivers raw snapshot payloads for one session until the
// returned cancel func is called or ctx is done.
func (s *Subscriber) SubscribeSession(ctx context.Context, id string, handler func([]byte)) (func(), error) {
	sub, err := s.subscribe(SessionSubject(id), handler)
	if err != nil {
		return nil, fmt.Errorf("subscribe session %s: %w", id, err)
	}

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
				slog.Warn("nats unsubscribe failed", "session", id, "error", err)
			}
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return cancel, nil
}
