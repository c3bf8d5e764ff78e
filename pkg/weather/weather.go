// Package weather proxies the public forecast API and archives every
// fetched forecast as a snapshot record.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/buchung/pkg/api"
	"github.com/rhuss/buchung/pkg/storage"
)

// Config holds weather service settings.
type Config struct {
	// BackendURL is the full forecast URL including query parameters,
	// e.g. an Open-Meteo forecast endpoint with latitude and longitude.
	BackendURL string

	// Timeout bounds the forecast fetch. Default: 10 seconds.
	Timeout time.Duration
}

// Service fetches, simplifies, and archives forecasts.
type Service struct {
	httpClient *http.Client
	backendURL string
	store      storage.Store
	logger     *slog.Logger
}

// NewService creates a weather service. The store may be nil to disable
// snapshot archiving.
func NewService(cfg Config, store storage.Store, logger *slog.Logger) (*Service, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("weather: backend URL must not be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		backendURL: cfg.BackendURL,
		store:      store,
		logger:     logger,
	}, nil
}

// GetForecast fetches the current forecast, strips the fields the API
// contract omits, and archives the result. Archiving is best effort: a
// failed snapshot write is logged but does not fail the request.
func (s *Service) GetForecast(ctx context.Context) (map[string]any, error) {
	forecast, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	simplified := simplifyForecast(forecast)

	if s.store != nil {
		key := uuid.New().String()
		if err := s.store.Put(ctx, storage.CollectionWeather, key, simplified); err != nil {
			s.logger.Warn("weather snapshot not archived", "error", err)
		}
	}

	return simplified, nil
}

// fetch performs the backend round-trip.
func (s *Service) fetch(ctx context.Context) (map[string]any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.backendURL, nil)
	if err != nil {
		return nil, api.NewUpstreamError(fmt.Sprintf("creating forecast request: %s", err.Error()))
	}

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, api.NewUpstreamError(fmt.Sprintf("fetching forecast: %s", err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, api.NewUpstreamError(fmt.Sprintf("forecast backend returned status %d", httpResp.StatusCode))
	}

	var forecast map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&forecast); err != nil {
		return nil, api.NewUpstreamError(fmt.Sprintf("parsing forecast response: %s", err.Error()))
	}
	return forecast, nil
}

// simplifyForecast removes the current-conditions block and the humidity
// and wind series from the hourly data, leaving temperature and time.
func simplifyForecast(forecast map[string]any) map[string]any {
	simplified := make(map[string]any, len(forecast))
	for k, v := range forecast {
		switch k {
		case "current", "current_units":
			continue
		case "hourly", "hourly_units":
			if block, ok := v.(map[string]any); ok {
				trimmed := make(map[string]any, len(block))
				for bk, bv := range block {
					if bk == "relative_humidity_2m" || bk == "wind_speed_10m" {
						continue
					}
					trimmed[bk] = bv
				}
				simplified[k] = trimmed
				continue
			}
			simplified[k] = v
		default:
			simplified[k] = v
		}
	}
	return simplified
}
