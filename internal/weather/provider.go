package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Fetcher issues a GET for an absolute URL and returns the response body.
// Implementations return the body for any provider answer, error or not;
// only transport-level failures are reported as errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// codeOK is the provider's success value for the cod field.
const codeOK = 200

// statusCode decodes the provider's cod field, which is a number on most
// successful responses and a string on errors and on the forecast endpoint.
type statusCode int

func (c *statusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid cod %q: %w", s, err)
		}
		*c = statusCode(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid cod %s: %w", data, err)
	}
	*c = statusCode(n)
	return nil
}

// dataPoint is the part of a provider reading that maps onto Weather.
type dataPoint struct {
	Dt      int64 `json:"dt"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (p dataPoint) toWeather() Weather {
	var description string
	if len(p.Weather) > 0 {
		description = p.Weather[0].Description
	}
	return Weather{
		Description: description,
		Temperature: p.Main.Temp,
		Humidity:    p.Main.Humidity,
		Pressure:    p.Main.Pressure,
		WindSpeed:   p.Wind.Speed,
	}
}

// currentResponse is the payload of the weather endpoint.
type currentResponse struct {
	dataPoint
	Coord   Coordinates `json:"coord"`
	Cod     statusCode  `json:"cod"`
	Message string      `json:"message"`
}

// forecastResponse is the payload of the forecast endpoint.
type forecastResponse struct {
	Cod     statusCode      `json:"cod"`
	Message json.RawMessage `json:"message"`
	List    []dataPoint     `json:"list"`
}

// messageText returns the message field when the provider sent text.
// On success the forecast endpoint sends a number there instead.
func (r forecastResponse) messageText() string {
	var s string
	if err := json.Unmarshal(r.Message, &s); err != nil {
		return ""
	}
	return s
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
