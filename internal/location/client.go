// Package location implements the routing and weather collaborator over
// HTTP. The client throttles, retries with exponential backoff, and
// surfaces every terminal failure as an error; the optimizer's fallback
// tables absorb those errors, so a dead collaborator degrades plans
// instead of breaking them.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lifeboard/shopping-service/internal/optimizer"
)

// Config holds the location client configuration.
type Config struct {
	BaseURL           string        `mapstructure:"base_url" env:"LOCATION_BASE_URL"`
	APIKey            string        `mapstructure:"api_key" env:"LOCATION_API_KEY"`
	Timeout           time.Duration `mapstructure:"timeout" env:"LOCATION_TIMEOUT" default:"10s"`
	MaxRetries        int           `mapstructure:"max_retries" env:"LOCATION_MAX_RETRIES" default:"2"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff" env:"LOCATION_INITIAL_BACKOFF" default:"200ms"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff" env:"LOCATION_MAX_BACKOFF" default:"2s"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" env:"LOCATION_RPS" default:"5"`
	Burst             int           `mapstructure:"burst" env:"LOCATION_BURST" default:"10"`
}

// DefaultConfig returns the default client settings.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		MaxRetries:        2,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

// RequestError is returned when all retry attempts are exhausted.
type RequestError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *RequestError) Error() string {
	msg := "location request to " + e.URL + " failed after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

// Client is an HTTP LocationService with throttling and retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// NewClient creates a location client.
func NewClient(config Config, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:     config,
		logger:     logger.With().Str("component", "location_client").Logger(),
	}
}

type routeResponse struct {
	DurationMinutes float64 `json:"durationMinutes"`
	DistanceMeters  int64   `json:"distanceMeters"`
	CostPence       int64   `json:"costPence"`
}

// EstimateTravel fetches a travel estimate between two coordinates.
func (c *Client) EstimateTravel(ctx context.Context, from, to optimizer.Location, method optimizer.TravelMethod) (optimizer.TravelFact, error) {
	query := url.Values{}
	query.Set("fromLat", formatCoord(from.Latitude))
	query.Set("fromLon", formatCoord(from.Longitude))
	query.Set("toLat", formatCoord(to.Latitude))
	query.Set("toLon", formatCoord(to.Longitude))
	query.Set("mode", string(method))

	body, err := c.get(ctx, "/v1/route", query)
	if err != nil {
		return optimizer.TravelFact{}, err
	}

	var route routeResponse
	if err := json.Unmarshal(body, &route); err != nil {
		return optimizer.TravelFact{}, fmt.Errorf("decode route response: %w", err)
	}
	return optimizer.TravelFact{
		DurationMin: route.DurationMinutes,
		DistanceM:   route.DistanceMeters,
		CostPence:   route.CostPence,
	}, nil
}

type forecastResponse struct {
	Days []struct {
		Date            string  `json:"date"`
		TempC           float64 `json:"tempC"`
		PrecipitationMM float64 `json:"precipitationMm"`
		Summary         string  `json:"summary"`
	} `json:"days"`
}

// ForecastWeather fetches up to days of forecast for a location.
func (c *Client) ForecastWeather(ctx context.Context, loc optimizer.Location, days int) ([]optimizer.WeatherDay, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(loc.Latitude))
	query.Set("lon", formatCoord(loc.Longitude))
	query.Set("days", strconv.Itoa(days))

	body, err := c.get(ctx, "/v1/forecast", query)
	if err != nil {
		return nil, err
	}

	var forecast forecastResponse
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}
	out := make([]optimizer.WeatherDay, len(forecast.Days))
	for i, day := range forecast.Days {
		out[i] = optimizer.WeatherDay{
			Date:            day.Date,
			TempC:           day.TempC,
			PrecipitationMM: day.PrecipitationMM,
			Summary:         day.Summary,
		}
	}
	return out, nil
}

// get performs a throttled GET with retry on transient failures.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.config.BaseURL + path + "?" + query.Encode()

	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "Lifeboard-ShoppingService/1.0")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.config.MaxRetries {
				c.sleep(ctx, c.backoff(attempt))
				continue
			}
			break
		}

		lastStatus = resp.StatusCode
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, fmt.Errorf("read response body: %w", readErr)
			}
			return body, nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		retryAfter := resp.Header.Get("Retry-After")
		resp.Body.Close()

		if !retryable || attempt == c.config.MaxRetries {
			break
		}

		delay := c.backoff(attempt)
		if retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		c.logger.Debug().Int("status", lastStatus).Dur("backoff", delay).
			Str("url", target).Msg("Retrying location request")
		c.sleep(ctx, delay)
	}

	return nil, &RequestError{
		URL:        target,
		Attempts:   c.config.MaxRetries + 1,
		LastStatus: lastStatus,
		LastError:  lastErr,
	}
}

// backoff computes the exponential delay with up to 25% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	exponential := float64(c.config.InitialBackoff) * math.Pow(2, float64(attempt))
	capped := math.Min(exponential, float64(c.config.MaxBackoff))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped + jitter)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
