package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/pinmeasure/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP. Dragging a pin sends a
	// burst of move commands.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/map/config", MapConfigHandler(deps))
	v1.Post("/measure", timeout.NewWithContext(MeasureHandler(deps), requestTimeout))

	// Measurement sessions
	sessions := v1.Group("/sessions")
	sessions.Post("/", timeout.NewWithContext(CreateSessionHandler(deps), requestTimeout))
	sessions.Get("/:id", timeout.NewWithContext(GetSessionHandler(deps), requestTimeout))
	sessions.Delete("/:id", timeout.NewWithContext(DeleteSessionHandler(deps), requestTimeout))
	sessions.Get("/:id/points", timeout.NewWithContext(ListPointsHandler(deps), requestTimeout))
	sessions.Post("/:id/points", timeout.NewWithContext(AddPointHandler(deps), requestTimeout))
	sessions.Put("/:id/points/:index", timeout.NewWithContext(MovePointHandler(deps), requestTimeout))
	sessions.Delete("/:id/points/:index", timeout.NewWithContext(RemovePointHandler(deps), requestTimeout))
	sessions.Put("/:id/mode", timeout.NewWithContext(SetModeHandler(deps), requestTimeout))
	sessions.Post("/:id/clear", timeout.NewWithContext(ClearHandler(deps), requestTimeout))
	sessions.Put("/:id/view", timeout.NewWithContext(ViewHandler(deps), requestTimeout))
	sessions.Post("/:id/commands", timeout.NewWithContext(CommandHandler(deps), requestTimeout))
	sessions.Get("/:id/geojson", timeout.NewWithContext(GeoJSONHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", websocket.New(WebSocketHandler(deps)))
}
