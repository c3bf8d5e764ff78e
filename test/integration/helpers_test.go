// Package integration provides integration tests for the booking API.
//
// Tests run against a real HTTP server backed by an in-memory store, a
// local identity provider, and a mock weather backend, all started
// in-process using net/http/httptest.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rhuss/buchung/pkg/auth"
	"github.com/rhuss/buchung/pkg/booking"
	"github.com/rhuss/buchung/pkg/identity/local"
	"github.com/rhuss/buchung/pkg/storage/memory"
	transporthttp "github.com/rhuss/buchung/pkg/transport/http"
	"github.com/rhuss/buchung/pkg/weather"
)

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the API server and mock weather backend.
type TestEnvironment struct {
	APIServer      *httptest.Server
	WeatherBackend *httptest.Server
}

// TestMain starts the weather backend and the API server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

// setupTestEnvironment wires a full server against in-process dependencies.
func setupTestEnvironment() *TestEnvironment {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	weatherBackend := startMockWeatherBackend()

	store := memory.New()

	idp := local.New(local.Config{
		PoolName:   "booking-userpool",
		ClientName: "booking-client-app",
		SigningKey: "integration-signing-key",
	})

	authSvc, err := auth.NewService(context.Background(), idp, auth.Config{
		PoolNameFragment: "userpool",
	}, logger)
	if err != nil {
		panic(fmt.Sprintf("creating auth service: %v", err))
	}

	bookingSvc, err := booking.NewService(store, booking.Config{}, logger)
	if err != nil {
		panic(fmt.Sprintf("creating booking service: %v", err))
	}

	weatherSvc, err := weather.NewService(weather.Config{
		BackendURL: weatherBackend.URL + "/v1/forecast",
	}, store, logger)
	if err != nil {
		panic(fmt.Sprintf("creating weather service: %v", err))
	}

	// Metrics stay off: the prometheus default registry is process-global.
	cfg := transporthttp.DefaultConfig()
	cfg.EnableMetrics = false

	adapter := transporthttp.NewAdapter(authSvc, bookingSvc, weatherSvc, store, cfg, logger)

	return &TestEnvironment{
		APIServer:      httptest.NewServer(adapter.Handler()),
		WeatherBackend: weatherBackend,
	}
}

// Teardown stops both servers.
func (env *TestEnvironment) Teardown() {
	if env.APIServer != nil {
		env.APIServer.Close()
	}
	if env.WeatherBackend != nil {
		env.WeatherBackend.Close()
	}
}

// BaseURL returns the API server base URL.
func (env *TestEnvironment) BaseURL() string {
	return env.APIServer.URL
}

// --- HTTP helpers ---

// postJSON sends a POST request with JSON body and returns the response.
func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

// getURL sends a GET request and returns the response.
func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(body)
}

// decodeJSON reads the response body and decodes it into the target.
func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

// signUpUser registers a user and fails the test on any error response.
func signUpUser(t *testing.T, email, password string) {
	t.Helper()
	resp := postJSON(t, testEnv.BaseURL()+"/signup", map[string]any{
		"email":     email,
		"firstName": "Anna",
		"lastName":  "Schmidt",
		"password":  password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup got %d: %s", resp.StatusCode, readBody(t, resp))
	}
}

// --- Mock weather backend ---

// startMockWeatherBackend creates an httptest server shaped like the
// Open-Meteo forecast API.
func startMockWeatherBackend() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"latitude":  52.52,
			"longitude": 13.42,
			"timezone":  "Europe/Berlin",
			"current_units": map[string]any{
				"temperature_2m": "°C",
			},
			"current": map[string]any{
				"temperature_2m": 21.3,
			},
			"hourly_units": map[string]any{
				"time":                 "iso8601",
				"temperature_2m":       "°C",
				"relative_humidity_2m": "%",
				"wind_speed_10m":       "km/h",
			},
			"hourly": map[string]any{
				"time":                 []string{"2026-08-31T00:00", "2026-08-31T01:00"},
				"temperature_2m":       []float64{18.2, 17.9},
				"relative_humidity_2m": []int{61, 64},
				"wind_speed_10m":       []float64{9.3, 8.1},
			},
		})
	})

	return httptest.NewServer(mux)
}
