package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/city-weather/internal/transport"
	"github.com/i474232898/city-weather/internal/weather"
)

var validate = validator.New()

// HealthReporter reports the provider status shown on /health.
type HealthReporter interface {
	Status() ProviderStatus
}

// ProviderStatus is the provider section of the health response.
type ProviderStatus struct {
	Breaker   string    `json:"breaker,omitempty"`
	Probed    bool      `json:"probed"`
	OK        bool      `json:"ok"`
	CheckedAt time.Time `json:"checkedAt"`
	LastError string    `json:"lastError,omitempty"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// health may be nil, in which case /health only reports liveness.
func RegisterRoutes(app *fiber.App, service *weather.Service, health HealthReporter) {
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": "city-weather",
		}
		if health != nil {
			st := health.Status()
			if (st.Probed && !st.OK) || st.Breaker == "open" {
				resp["status"] = "degraded"
			}
			resp["provider"] = st
		}
		return c.JSON(resp)
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		w, err := service.GetWeather(c.UserContext(), q.City)
		if err != nil {
			return lookupError(err)
		}

		return c.JSON(w)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		points, err := service.GetForecast(c.UserContext(), q.City, q.Count)
		if err != nil {
			return lookupError(err)
		}

		return c.JSON(fiber.Map{
			"city":   q.City,
			"units":  service.Units(),
			"points": points,
		})
	})
}

// ErrorHandler renders every error as a JSON body with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// lookupError maps a lookup failure onto an HTTP error.
func lookupError(err error) error {
	switch {
	case errors.Is(err, weather.ErrEmptyCity):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, "city not found")
	case errors.Is(err, transport.ErrCircuitOpen):
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather provider temporarily unavailable")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
}

// cityQuery holds query parameters identifying a city.
type cityQuery struct {
	City string `query:"city" validate:"required"`
}

func (q *cityQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	return validate.Struct(q)
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	City  string `query:"city" validate:"required"`
	Count int    `query:"count" validate:"gte=0,lte=40"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	if err := c.QueryParser(q); err != nil {
		return err
	}
	return validate.Struct(q)
}
