package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/weather-pipeline/internal/models"
	"github.com/kjstillabower/weather-pipeline/internal/observability"
	"github.com/kjstillabower/weather-pipeline/internal/validation"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// HourlyVariables is the fixed set of hourly series requested from Open-Meteo.
var HourlyVariables = []string{"temperature_2m", "relative_humidity_2m", "wind_speed_10m"}

type WeatherClient interface {
	FetchHourly(ctx context.Context, q Query) (models.ForecastResponse, error)
}

var (
	ErrFetchFailure = errors.New("failed to fetch data")
	ErrInvalidURL   = errors.New("invalid API URL")
)

// Query selects the point and trailing window to fetch.
type Query struct {
	Latitude  float64
	Longitude float64
	PastDays  int
}

type OpenMeteoClient struct {
	baseURL *url.URL
	client  *http.Client
}

// NewOpenMeteoClient returns a client for baseURL. A zero timeout leaves the
// http.Client without a deadline.
func NewOpenMeteoClient(baseURL string, timeout time.Duration) (*OpenMeteoClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	return &OpenMeteoClient{
		baseURL: u,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchHourly issues exactly one GET. Any status other than 200 yields
// ErrFetchFailure; there is no retry. A 200 body is decoded and its hourly
// block validated before it is returned.
func (c *OpenMeteoClient) FetchHourly(ctx context.Context, q Query) (models.ForecastResponse, error) {
	if err := validation.ValidateCoordinates(q.Latitude, q.Longitude); err != nil {
		return models.ForecastResponse{}, err
	}

	start := time.Now()

	req, err := c.buildRequest(ctx, q)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.ForecastResponse{}, fmt.Errorf("build request: %w", err)
	}

	if corrID := CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.Canceled) {
			return models.ForecastResponse{}, fmt.Errorf("request canceled: %w", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.ForecastResponse{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.ForecastResponse{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode != http.StatusOK {
		return models.ForecastResponse{}, fmt.Errorf("%w: HTTP %d", ErrFetchFailure, resp.StatusCode)
	}

	var apiResp models.ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return models.ForecastResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if _, err := validation.ValidateResponse(apiResp); err != nil {
		return models.ForecastResponse{}, fmt.Errorf("parse response: %w", err)
	}

	return apiResp, nil
}

func (c *OpenMeteoClient) buildRequest(ctx context.Context, q Query) (*http.Request, error) {
	u := *c.baseURL

	params := u.Query()
	params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("past_days", strconv.Itoa(q.PastDays))
	params.Set("hourly", strings.Join(HourlyVariables, ","))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

type correlationIDKey struct{}

// WithCorrelationID stores id for the X-Correlation-ID request header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
