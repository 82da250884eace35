package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap current weather endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

var (
	errMissingAPIKey     = errors.New("openweather api key is not configured")
	errMissingMain       = errors.New("malformed weather response: missing main readings")
	errMissingConditions = errors.New("malformed weather response: missing weather conditions")
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	units   string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// Option configures an OpenWeatherProvider.
type Option func(*OpenWeatherProvider)

// WithBaseURL points the provider at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithUnits overrides the unit system parameter.
func WithUnits(units string) Option {
	return func(p *OpenWeatherProvider) {
		if units != "" {
			p.units = units
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *OpenWeatherProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: DefaultOpenWeatherURL,
		units:   "metric",
		client:  client,
		circuit: newCircuitBreaker("openweather"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// currentWeatherResponse is the subset of the current weather payload we read.
type currentWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch queries the current weather for city. Any non-2xx status is
// reported as weather.ErrNotFound; every other failure is a
// *weather.TransportError.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, &weather.TransportError{Op: "configure", Err: errMissingAPIKey}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", p.units)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, &weather.TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Debug("openweather returned non-success status",
			zap.String("city", city),
			zap.Int("status", resp.StatusCode),
		)
		return weather.Snapshot{}, fmt.Errorf("%w (status %d)", weather.ErrNotFound, resp.StatusCode)
	}

	var payload currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, &weather.TransportError{Op: "decode", Err: err}
	}

	return normalizeOpenWeather(payload)
}

// normalizeOpenWeather maps the payload onto a snapshot. Only the first
// weather condition is used.
func normalizeOpenWeather(payload currentWeatherResponse) (weather.Snapshot, error) {
	if payload.Main == nil {
		return weather.Snapshot{}, &weather.TransportError{Op: "decode", Err: errMissingMain}
	}
	if len(payload.Weather) == 0 {
		return weather.Snapshot{}, &weather.TransportError{Op: "decode", Err: errMissingConditions}
	}
	cond := payload.Weather[0]

	snap := weather.Snapshot{
		LocationName:         payload.Name,
		CountryCode:          payload.Sys.Country,
		TemperatureC:         payload.Main.Temp,
		FeelsLikeC:           payload.Main.FeelsLike,
		HumidityPct:          payload.Main.Humidity,
		WindSpeedMps:         payload.Wind.Speed,
		ConditionLabel:       strings.ToLower(strings.TrimSpace(cond.Main)),
		ConditionDescription: cond.Description,
	}
	if err := snap.Validate(); err != nil {
		return weather.Snapshot{}, &weather.TransportError{
			Op:  "validate",
			Err: fmt.Errorf("malformed weather response: %w", err),
		}
	}
	return snap, nil
}
