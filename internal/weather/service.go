package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/"

// MaxForecastPoints is the number of 3-hour slots the forecast endpoint can return.
const MaxForecastPoints = 40

const tracerName = "github.com/i474232898/city-weather/internal/weather"

// Options configures a Service. It is read-only once the Service is built.
type Options struct {
	BaseURL string
	APIKey  string
	Units   Units
}

// Service resolves city names and fetches weather for them from OpenWeatherMap.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	fetcher Fetcher
	opts    Options
	tracer  trace.Tracer
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, opts Options) *Service {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Units == "" {
		opts.Units = UnitsMetric
	}
	return &Service{
		fetcher: fetcher,
		opts:    opts,
		tracer:  otel.Tracer(tracerName),
	}
}

// Units reports the unit system every request is made in.
func (s *Service) Units() Units {
	return s.opts.Units
}

// GetWeather resolves the city and returns its current conditions.
// Every failure is returned as a *LookupError.
func (s *Service) GetWeather(ctx context.Context, city string) (Weather, error) {
	ctx, span, lookupID := s.startLookup(ctx, "weather: get-weather", city)
	defer span.End()

	coords, err := s.ResolveCoordinates(ctx, city)
	if err != nil {
		return Weather{}, s.fail(span, lookupID, city, err)
	}
	log.Debugf("lookup %s: %q resolved to %+v", lookupID, city, coords)

	w, err := s.FetchConditions(ctx, coords)
	if err != nil {
		return Weather{}, s.fail(span, lookupID, city, err)
	}
	log.Debugf("lookup %s: %q conditions %+v", lookupID, city, w)

	span.SetStatus(codes.Ok, "")
	return w, nil
}

// GetForecast resolves the city and returns up to count forecast points.
// A count of zero asks for the provider's default length.
func (s *Service) GetForecast(ctx context.Context, city string, count int) ([]ForecastPoint, error) {
	ctx, span, lookupID := s.startLookup(ctx, "weather: get-forecast", city)
	defer span.End()

	coords, err := s.ResolveCoordinates(ctx, city)
	if err != nil {
		return nil, s.fail(span, lookupID, city, err)
	}

	points, err := s.FetchForecast(ctx, coords, count)
	if err != nil {
		return nil, s.fail(span, lookupID, city, err)
	}
	log.Debugf("lookup %s: %q forecast with %d points", lookupID, city, len(points))

	span.SetStatus(codes.Ok, "")
	return points, nil
}

// ResolveCoordinates geocodes a city name through the weather-by-name endpoint.
func (s *Service) ResolveCoordinates(ctx context.Context, city string) (Coordinates, error) {
	if strings.TrimSpace(city) == "" {
		return Coordinates{}, ErrEmptyCity
	}

	ctx, span := s.tracer.Start(ctx, "weather: resolve-coordinates")
	defer span.End()
	span.SetAttributes(attribute.String("city", city))

	body, err := s.fetcher.Fetch(ctx, s.GeocodeURL(city))
	if err != nil {
		recordError(span, err)
		return Coordinates{}, err
	}

	var payload currentResponse
	if err := decode(body, &payload); err != nil {
		recordError(span, err)
		return Coordinates{}, err
	}
	if payload.Cod != codeOK {
		err := statusError(ErrCityNotFound, int(payload.Cod), payload.Message)
		recordError(span, err)
		return Coordinates{}, err
	}

	span.SetStatus(codes.Ok, "")
	return payload.Coord, nil
}

// FetchConditions returns the current conditions at coords.
func (s *Service) FetchConditions(ctx context.Context, coords Coordinates) (Weather, error) {
	ctx, span := s.tracer.Start(ctx, "weather: fetch-conditions")
	defer span.End()
	span.SetAttributes(attribute.Float64("lat", coords.Lat), attribute.Float64("lon", coords.Lon))

	body, err := s.fetcher.Fetch(ctx, s.WeatherURL(coords))
	if err != nil {
		recordError(span, err)
		return Weather{}, err
	}

	var payload currentResponse
	if err := decode(body, &payload); err != nil {
		recordError(span, err)
		return Weather{}, err
	}
	if payload.Cod != codeOK {
		err := statusError(ErrFetchFailed, int(payload.Cod), payload.Message)
		recordError(span, err)
		return Weather{}, err
	}

	span.SetStatus(codes.Ok, "")
	return payload.toWeather(), nil
}

// FetchForecast returns the forecast slots at coords.
func (s *Service) FetchForecast(ctx context.Context, coords Coordinates, count int) ([]ForecastPoint, error) {
	if count < 0 || count > MaxForecastPoints {
		return nil, fmt.Errorf("forecast count must be between 0 and %d, got %d", MaxForecastPoints, count)
	}

	ctx, span := s.tracer.Start(ctx, "weather: fetch-forecast")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("lat", coords.Lat),
		attribute.Float64("lon", coords.Lon),
		attribute.Int("count", count),
	)

	body, err := s.fetcher.Fetch(ctx, s.ForecastURL(coords, count))
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	var payload forecastResponse
	if err := decode(body, &payload); err != nil {
		recordError(span, err)
		return nil, err
	}
	if payload.Cod != codeOK {
		err := statusError(ErrFetchFailed, int(payload.Cod), payload.messageText())
		recordError(span, err)
		return nil, err
	}

	points := make([]ForecastPoint, 0, len(payload.List))
	for _, p := range payload.List {
		points = append(points, ForecastPoint{
			Time:    time.Unix(p.Dt, 0).UTC(),
			Weather: p.toWeather(),
		})
	}

	span.SetStatus(codes.Ok, "")
	return points, nil
}

// GeocodeURL builds the weather-by-name request used for geocoding.
func (s *Service) GeocodeURL(city string) string {
	values := url.Values{}
	values.Set("q", city)
	return s.endpoint("weather", values)
}

// WeatherURL builds the weather-by-coordinates request.
func (s *Service) WeatherURL(coords Coordinates) string {
	return s.endpoint("weather", coordValues(coords))
}

// ForecastURL builds the forecast-by-coordinates request.
func (s *Service) ForecastURL(coords Coordinates, count int) string {
	values := coordValues(coords)
	if count > 0 {
		values.Set("cnt", strconv.Itoa(count))
	}
	return s.endpoint("forecast", values)
}

func (s *Service) endpoint(path string, values url.Values) string {
	values.Set("appid", s.opts.APIKey)
	values.Set("units", string(s.opts.Units))
	return fmt.Sprintf("%s%s?%s", s.opts.BaseURL, path, values.Encode())
}

func coordValues(coords Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	return values
}

func (s *Service) startLookup(ctx context.Context, name, city string) (context.Context, trace.Span, string) {
	lookupID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("city", city),
		attribute.String("lookup.id", lookupID),
		attribute.String("units", string(s.opts.Units)),
	)
	log.Debugf("lookup %s: start %s for %q", lookupID, name, city)
	return ctx, span, lookupID
}

func (s *Service) fail(span trace.Span, lookupID, city string, err error) error {
	log.Warnf("lookup %s: %q failed: %v", lookupID, city, err)
	recordError(span, err)
	return &LookupError{City: city, Err: err}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
