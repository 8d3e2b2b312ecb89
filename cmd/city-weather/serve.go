package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/city-weather/internal/api/http"
	"github.com/i474232898/city-weather/internal/config"
	"github.com/i474232898/city-weather/internal/scheduler"
	"github.com/i474232898/city-weather/internal/telemetry"
	"github.com/i474232898/city-weather/internal/transport"
	"github.com/i474232898/city-weather/internal/weather"
)

func newServeCommand(loadConfig func() (*config.AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			log.Errorf("error flushing traces: %v", err)
		}
	}()

	// One provider client for all lookups, so the breaker sees every call.
	client := newTransport(cfg)
	service := weather.NewService(client, cfg.WeatherOptions())

	// Periodic provider probe.
	probe := scheduler.New(cfg.ProbeCity, cfg.ProbeInterval, service)
	if err := probe.Start(); err != nil {
		return err
	}
	defer probe.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "city-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2*cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}?${queryParams}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, service, healthReporter{client: client, probe: probe})

	go func() {
		log.Infof("city-weather listening on :%s (units=%s)", cfg.Port, cfg.Units)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	return nil
}

// healthReporter combines breaker state and the last probe for /health.
type healthReporter struct {
	client *transport.Client
	probe  *scheduler.Scheduler
}

func (h healthReporter) Status() httpapi.ProviderStatus {
	last := h.probe.Last()
	st := httpapi.ProviderStatus{
		Breaker:   h.client.State(),
		Probed:    last.Probed,
		OK:        last.OK,
		CheckedAt: last.CheckedAt,
	}
	if last.Err != nil {
		st.LastError = last.Err.Error()
	}
	return st
}
