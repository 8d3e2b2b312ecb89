package weather

import (
	"fmt"
	"time"
)

// Units selects the unit system the provider reports values in.
type Units string

const (
	UnitsStandard Units = "standard"
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits validates a unit system name.
func ParseUnits(s string) (Units, error) {
	switch u := Units(s); u {
	case UnitsStandard, UnitsMetric, UnitsImperial:
		return u, nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// Coordinates is the geographic position a city name resolves to.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Weather is a single point-in-time observation, either current conditions
// or one forecast slot.
type Weather struct {
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"windSpeed"`
}

// ForecastPoint is one slot of a multi-point forecast.
// Points are ordered by Time ascending, as the provider returns them.
type ForecastPoint struct {
	Time time.Time `json:"time"` // always UTC
	Weather
}
