package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/pinmeasure/internal/adapters/http"
	"github.com/samirrijal/pinmeasure/internal/adapters/memory"
	natsadapter "github.com/samirrijal/pinmeasure/internal/adapters/nats"
	"github.com/samirrijal/pinmeasure/internal/adapters/valkey"
	"github.com/samirrijal/pinmeasure/internal/core/ports"
	"github.com/samirrijal/pinmeasure/internal/core/usecases"
	"github.com/samirrijal/pinmeasure/internal/pkg/config"
	"github.com/samirrijal/pinmeasure/internal/pkg/logging"
	"github.com/samirrijal/pinmeasure/internal/pkg/telemetry"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load("pinmeasure-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{Map: cfg.Map}

	// Session store
	var store ports.SessionStore
	switch cfg.Session.Store {
	case "valkey":
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer cache.Close()
		deps.Cache = cache
		store = valkey.NewSessionStore(cache)
	default:
		mem := memory.NewSessionStore()
		go mem.Run(ctx, time.Minute)
		store = mem
	}
	slog.Info("session store ready", "backend", cfg.Session.Store, "ttl", cfg.Session.TTL().String())

	// NATS: snapshot fan-out across instances
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, session events disabled", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.NATS = pub.Conn()
			deps.Events = natsadapter.NewSubscriber(pub.Conn())
		}
	}

	deps.Sessions = usecases.NewSessionService(store, publisher, cfg.Session.TTL())

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "PinMeasure API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
