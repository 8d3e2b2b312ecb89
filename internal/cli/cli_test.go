package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/city-weather/internal/weather"
)

type fakeLookup struct {
	units     weather.Units
	err       error
	lastCount int
}

func (f *fakeLookup) GetWeather(ctx context.Context, city string) (weather.Weather, error) {
	if f.err != nil {
		return weather.Weather{}, &weather.LookupError{City: city, Err: f.err}
	}
	return weather.Weather{Description: "clear sky", Temperature: 15.2, Humidity: 60, Pressure: 1012, WindSpeed: 3.1}, nil
}

func (f *fakeLookup) GetForecast(ctx context.Context, city string, count int) ([]weather.ForecastPoint, error) {
	f.lastCount = count
	return []weather.ForecastPoint{
		{Time: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), Weather: weather.Weather{Description: "light rain", Temperature: 10}},
		{Time: time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC), Weather: weather.Weather{Description: "overcast clouds", Temperature: 9}},
	}, nil
}

func (f *fakeLookup) Units() weather.Units { return f.units }

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func factory(l Lookup) Factory {
	return func(*cobra.Command) (Lookup, error) { return l, nil }
}

func TestLookupCommand(t *testing.T) {
	out, err := run(t, NewLookupCommand(factory(&fakeLookup{units: weather.UnitsMetric})), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"London", "clear sky", "15.2 °C", "60 %", "1012 hPa", "3.1 m/s"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLookupCommandError(t *testing.T) {
	_, err := run(t, NewLookupCommand(factory(&fakeLookup{err: weather.ErrCityNotFound})), "Atlantis")
	if !errors.Is(err, weather.ErrCityNotFound) {
		t.Fatalf("expected ErrCityNotFound, got %v", err)
	}
}

func TestLookupCommandRequiresCity(t *testing.T) {
	if _, err := run(t, NewLookupCommand(factory(&fakeLookup{}))); err == nil {
		t.Fatal("expected error without a city argument")
	}
}

func TestForecastCommand(t *testing.T) {
	lookup := &fakeLookup{units: weather.UnitsImperial}

	out, err := run(t, NewForecastCommand(factory(lookup)), "London", "--count", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookup.lastCount != 2 {
		t.Fatalf("expected count 2, got %d", lookup.lastCount)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "°F") {
		t.Errorf("expected imperial header, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "2026-10-18 12:00") || !strings.Contains(lines[1], "light rain") {
		t.Errorf("unexpected first row %q", lines[1])
	}
}
