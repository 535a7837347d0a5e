// Package weatherapi implements a weatherapi.com client that maps provider
// responses onto domain types. Each call performs exactly one HTTP request,
// no retries and no caching.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/internal/domain"
)

// Client talks to weatherapi.com.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client with the configured timeout.
func NewClient(cfg Config) *Client {
	cfg.Normalize()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout()},
	}
}

type locationPayload struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type currentPayload struct {
	TempC float64 `json:"temp_c"`
	TempF float64 `json:"temp_f"`
}

type forecastDayPayload struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC float64 `json:"maxtemp_c"`
		MinTempC float64 `json:"mintemp_c"`
		AvgTempC float64 `json:"avgtemp_c"`
	} `json:"day"`
}

type currentResponse struct {
	Location locationPayload `json:"location"`
	Current  currentPayload  `json:"current"`
}

type forecastResponse struct {
	Location locationPayload `json:"location"`
	Forecast struct {
		ForecastDay []forecastDayPayload `json:"forecastday"`
	} `json:"forecast"`
}

// Current fetches a snapshot of conditions in the given city.
func (c *Client) Current(ctx context.Context, city string) (*domain.CurrentWeather, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("q", city)
	params.Set("aqi", "no")

	var resp currentResponse
	if err := c.getJSON(ctx, "current.json", params, &resp); err != nil {
		return nil, err
	}

	return &domain.CurrentWeather{
		City:    resp.Location.Name,
		Country: resp.Location.Country,
		TempC:   resp.Current.TempC,
		TempF:   resp.Current.TempF,
	}, nil
}

// Forecast fetches a forecast for up to days days. The provider may return
// fewer days than requested; the result carries what came back.
func (c *Client) Forecast(ctx context.Context, city string, days int) (*domain.Forecast, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("q", city)
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	var resp forecastResponse
	if err := c.getJSON(ctx, "forecast.json", params, &resp); err != nil {
		return nil, err
	}

	out := &domain.Forecast{
		City:    resp.Location.Name,
		Country: resp.Location.Country,
	}
	for _, d := range resp.Forecast.ForecastDay {
		out.Days = append(out.Days, domain.ForecastDay{
			Date: d.Date,
			MaxC: d.Day.MaxTempC,
			MinC: d.Day.MinTempC,
			AvgC: d.Day.AvgTempC,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dst any) error {
	start := time.Now()

	reqURL := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &domain.ProviderError{Op: endpoint, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(ctx, "weatherapi", "request.fail",
			slog.String("operation", endpoint),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return &domain.ProviderError{Op: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		logger.Debug(ctx, "weatherapi", "city.not_found",
			slog.String("operation", endpoint),
			slog.Int("http_code", resp.StatusCode),
		)
		return domain.ErrCityNotFound
	case resp.StatusCode >= 500:
		logger.Warn(ctx, "weatherapi", "request.fail",
			slog.String("operation", endpoint),
			slog.Int("http_code", resp.StatusCode),
		)
		return &domain.ProviderError{Op: endpoint, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		logger.Warn(ctx, "weatherapi", "decode.fail",
			slog.String("operation", endpoint),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return &domain.ProviderError{Op: endpoint, Err: fmt.Errorf("decode: %w", err)}
	}

	logger.Debug(ctx, "weatherapi", "request.ok",
		slog.String("operation", endpoint),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return nil
}
