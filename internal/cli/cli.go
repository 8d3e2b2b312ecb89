package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/i474232898/city-weather/internal/weather"
)

// Lookup is what the lookup commands need from the weather service.
type Lookup interface {
	GetWeather(ctx context.Context, city string) (weather.Weather, error)
	GetForecast(ctx context.Context, city string, count int) ([]weather.ForecastPoint, error)
	Units() weather.Units
}

// Factory builds the lookup once flags and config are known.
type Factory func(cmd *cobra.Command) (Lookup, error)

// NewLookupCommand returns the `lookup CITY` command.
func NewLookupCommand(newLookup Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup CITY",
		Args:  cobra.ExactArgs(1),
		Short: "Print the current weather for a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := newLookup(cmd)
			if err != nil {
				return err
			}

			city := args[0]
			w, err := lookup.GetWeather(cmd.Context(), city)
			if err != nil {
				return err
			}

			temp, speed := unitLabels(lookup.Units())
			cmd.Printf("CITY\t\t %s\n", city)
			cmd.Printf("CONDITIONS\t %s\n", w.Description)
			cmd.Printf("TEMP\t\t %.1f %s\n", w.Temperature, temp)
			cmd.Printf("HUMIDITY\t %.0f %%\n", w.Humidity)
			cmd.Printf("PRESSURE\t %.0f hPa\n", w.Pressure)
			cmd.Printf("WIND\t\t %.1f %s\n", w.WindSpeed, speed)
			return nil
		},
	}
}

// NewForecastCommand returns the `forecast CITY` command.
func NewForecastCommand(newLookup Factory) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "forecast CITY",
		Args:  cobra.ExactArgs(1),
		Short: "Print the 3-hourly forecast for a city",
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := newLookup(cmd)
			if err != nil {
				return err
			}

			points, err := lookup.GetForecast(cmd.Context(), args[0], count)
			if err != nil {
				return err
			}

			temp, speed := unitLabels(lookup.Units())
			cmd.Printf("TIME (UTC)\t\tTEMP %s\tHUM\tWIND %s\tCONDITIONS\n", temp, speed)
			for _, p := range points {
				cmd.Printf("%s\t%6.1f\t%3.0f\t%6.1f\t%s\n",
					p.Time.Format("2006-01-02 15:04"),
					p.Temperature,
					p.Humidity,
					p.WindSpeed,
					p.Description,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of 3-hour slots (1-40, 0 for all)")
	return cmd
}

func unitLabels(u weather.Units) (temp, speed string) {
	switch u {
	case weather.UnitsImperial:
		return "°F", "mph"
	case weather.UnitsStandard:
		return "K", "m/s"
	default:
		return "°C", "m/s"
	}
}
