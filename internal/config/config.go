package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/city-weather/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey  string `yaml:"openweather_api_key"`
	OpenWeatherBaseURL string `yaml:"openweather_base_url" validate:"required,url"`

	// Units is used for every provider request.
	Units string `yaml:"units" validate:"required,oneof=standard metric imperial"`

	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	// Circuit breaker around the provider.
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures" validate:"gt=0"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout" validate:"gt=0"`

	// Provider probe; disabled when ProbeCity is empty.
	ProbeCity     string        `yaml:"probe_city"`
	ProbeInterval time.Duration `yaml:"probe_interval" validate:"gte=0"`

	// Tracing; disabled when OTLPEndpoint is empty.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name" validate:"required"`

	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	Port     string `yaml:"port" validate:"required,numeric"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		OpenWeatherBaseURL: weather.DefaultBaseURL,
		Units:              string(weather.UnitsMetric),
		HTTPTimeout:        10 * time.Second,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 2 * time.Minute,
		ProbeInterval:      5 * time.Minute,
		ServiceName:        "city-weather",
		LogLevel:           "info",
		Port:               "8080",
	}
}

// Load reads configuration from an optional YAML file, then from the
// environment (and .env), with sensible defaults. Environment values win.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file found or error loading it: %v", err)
	}

	cfg := Defaults()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.OpenWeatherAPIKey == "" {
		log.Warn("OPENWEATHER_API_KEY is not set; provider requests will be rejected")
	}

	return cfg, nil
}

// WeatherOptions converts the config into the lookup service options.
func (c *AppConfig) WeatherOptions() weather.Options {
	return weather.Options{
		BaseURL: c.OpenWeatherBaseURL,
		APIKey:  c.OpenWeatherAPIKey,
		Units:   weather.Units(c.Units),
	}
}

// FiberLogLevel maps LogLevel onto the fiber logger levels.
func (c *AppConfig) FiberLogLevel() log.Level {
	switch c.LogLevel {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", cfg.OpenWeatherAPIKey)
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", cfg.OpenWeatherBaseURL)
	cfg.Units = getenvDefault("WEATHER_UNITS", cfg.Units)
	cfg.ProbeCity = getenvDefault("PROBE_CITY", cfg.ProbeCity)
	cfg.OTLPEndpoint = getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.ServiceName = getenvDefault("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.BreakerMaxFailures = uint32(getenvInt("BREAKER_MAX_FAILURES", int(cfg.BreakerMaxFailures)))

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.BreakerOpenTimeout, err = getenvDuration("BREAKER_OPEN_TIMEOUT", cfg.BreakerOpenTimeout); err != nil {
		return err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", cfg.ProbeInterval); err != nil {
		return err
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
