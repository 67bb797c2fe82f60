package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pinmeasure/internal/adapters/valkey"
	"github.com/samirrijal/pinmeasure/internal/core/ports"
	"github.com/samirrijal/pinmeasure/internal/core/usecases"
	"github.com/samirrijal/pinmeasure/internal/pkg/config"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions *usecases.SessionService
	Events   ports.EventSubscriber // nil disables cross-instance relay
	NATS     *nats.Conn
	Cache    *valkey.Cache
	Map      config.MapConfig
}
