package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrCityNotFound is returned when the provider cannot geocode a city name.
	ErrCityNotFound = errors.New("city not found")

	// ErrFetchFailed is returned when the provider rejects a weather or forecast query.
	ErrFetchFailed = errors.New("failed to fetch weather data")

	// ErrEmptyCity is returned before any request is made for a blank city name.
	ErrEmptyCity = errors.New("city name is required")
)

// LookupError wraps any failure of a city lookup together with the city name.
type LookupError struct {
	City string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("error fetching weather for the city %s: %v", e.City, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// statusError attaches the provider's cod and message to one of the sentinels above.
func statusError(kind error, code int, message string) error {
	if message == "" {
		return fmt.Errorf("%w (cod %d)", kind, code)
	}
	return fmt.Errorf("%w (cod %d: %s)", kind, code, message)
}
