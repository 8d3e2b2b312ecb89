package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/i474232898/city-weather/internal/cli"
	"github.com/i474232898/city-weather/internal/config"
	"github.com/i474232898/city-weather/internal/transport"
	"github.com/i474232898/city-weather/internal/weather"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "city-weather",
		Short:         "Current weather and forecasts for a city from OpenWeatherMap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")

	loadConfig := func() (*config.AppConfig, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		log.SetLevel(cfg.FiberLogLevel())
		return cfg, nil
	}

	newLookup := func(cmd *cobra.Command) (cli.Lookup, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		return newService(cfg), nil
	}

	root.AddCommand(
		newServeCommand(loadConfig),
		cli.NewLookupCommand(newLookup),
		cli.NewForecastCommand(newLookup),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// newTransport builds the provider client shared by every lookup.
func newTransport(cfg *config.AppConfig) *transport.Client {
	return transport.New(transport.Config{
		Name:    "openweathermap",
		Timeout: cfg.HTTPTimeout,
		Breaker: transport.BreakerConfig{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
		},
	})
}

func newService(cfg *config.AppConfig) *weather.Service {
	return weather.NewService(newTransport(cfg), cfg.WeatherOptions())
}
