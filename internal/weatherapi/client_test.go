package weatherapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m3rciful/weatherbot/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, TimeoutSeconds: 2})
}

func TestCurrentMapsProviderPayload(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"key": q.Get("key"),
			"q":   q.Get("q"),
			"aqi": q.Get("aqi"),
		}
		_, _ = w.Write([]byte(`{
			"location": {"name": "Berlin", "country": "Germany"},
			"current": {"temp_c": 21.5, "temp_f": 70.7}
		}`))
	})

	got, err := c.Current(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.City != "Berlin" || got.Country != "Germany" {
		t.Errorf("location = %q/%q, want Berlin/Germany", got.City, got.Country)
	}
	if got.TempC != 21.5 || got.TempF != 70.7 {
		t.Errorf("temps = %v/%v, want 21.5/70.7", got.TempC, got.TempF)
	}
	if gotQuery["key"] != "test-key" || gotQuery["q"] != "Berlin" || gotQuery["aqi"] != "no" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestForecastPassesDaysAndKeepsReturnedSpan(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("days"); got != "10" {
			t.Errorf("days = %q, want 10", got)
		}
		if got := r.URL.Query().Get("alerts"); got != "no" {
			t.Errorf("alerts = %q, want no", got)
		}
		// Provider capped the span at 3 days.
		_, _ = w.Write([]byte(`{
			"location": {"name": "Oslo", "country": "Norway"},
			"forecast": {"forecastday": [
				{"date": "2026-08-31", "day": {"maxtemp_c": 18, "mintemp_c": 9, "avgtemp_c": 13.5}},
				{"date": "2026-09-01", "day": {"maxtemp_c": 17, "mintemp_c": 8, "avgtemp_c": 12.0}},
				{"date": "2026-09-02", "day": {"maxtemp_c": 16, "mintemp_c": 7, "avgtemp_c": 11.0}}
			]}
		}`))
	})

	got, err := c.Forecast(context.Background(), "Oslo", 10)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(got.Days) != 3 {
		t.Fatalf("len(Days) = %d, want 3", len(got.Days))
	}
	first := got.Days[0]
	if first.Date != "2026-08-31" || first.MaxC != 18 || first.MinC != 9 || first.AvgC != 13.5 {
		t.Errorf("unexpected first day: %+v", first)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{
			name:    "bad request means unknown city",
			status:  http.StatusBadRequest,
			body:    `{"error": {"code": 1006, "message": "No matching location found."}}`,
			wantErr: func(err error) bool { return errors.Is(err, domain.ErrCityNotFound) },
		},
		{
			name:    "unauthorized also surfaces as unknown city",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"code": 2006}}`,
			wantErr: func(err error) bool { return errors.Is(err, domain.ErrCityNotFound) },
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "oops",
			wantErr: func(err error) bool {
				var pe *domain.ProviderError
				return errors.As(err, &pe)
			},
		},
		{
			name:   "malformed payload",
			status: http.StatusOK,
			body:   `{"location": `,
			wantErr: func(err error) bool {
				var pe *domain.ProviderError
				return errors.As(err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Current(context.Background(), "Nowhere")
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTransportErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, TimeoutSeconds: 1})
	_, err := c.Forecast(context.Background(), "Berlin", 3)
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if pe.Code() != "PROVIDER_ERROR" {
		t.Errorf("Code() = %q", pe.Code())
	}
}
