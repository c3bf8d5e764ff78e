// Package http binds the transport router to net/http. The adapter owns
// the mux, translates http.Request into the router's request shape, and
// serializes every dispatch result as JSON.
package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/buchung/pkg/api"
	"github.com/rhuss/buchung/pkg/auth"
	"github.com/rhuss/buchung/pkg/booking"
	"github.com/rhuss/buchung/pkg/observability"
	"github.com/rhuss/buchung/pkg/storage"
	"github.com/rhuss/buchung/pkg/transport"
	"github.com/rhuss/buchung/pkg/weather"
)

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64

	// EnableMetrics mounts GET /metrics and wraps the handler with the
	// request metrics middleware.
	EnableMetrics bool
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:   1 << 20, // 1 MB
		EnableMetrics: true,
	}
}

// AdapterDeps bundles the services the adapter serves. Weather and Store
// are optional.
type AdapterDeps struct {
	Auth    *auth.Service
	Booking *booking.Service
	Weather *weather.Service
	Store   storage.Store
}

// Adapter serves the booking API over HTTP.
type Adapter struct {
	router *transport.Router
	mux    *http.ServeMux
	store  storage.Store // nil disables /health store probing
	config Config
	logger *slog.Logger
}

// NewAdapter creates an HTTP adapter over the given services. The weather
// service may be nil to disable the forecast route; the store is used only
// for health checks and may be nil. Middleware is applied to every
// dispatched handler in the given order.
func NewAdapter(authSvc *auth.Service, bookingSvc *booking.Service, weatherSvc *weather.Service, store storage.Store, cfg Config, logger *slog.Logger, middlewares ...transport.Middleware) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		router: transport.NewRouter(),
		mux:    http.NewServeMux(),
		store:  store,
		config: cfg,
		logger: logger,
	}

	a.router.Use(middlewares...)
	a.router.Collapse("/tables/", "/tables_id", "tableId")

	a.router.Register("POST", "/signup", transport.HandlerFunc(a.handleSignUp(authSvc)))
	a.router.Register("POST", "/signin", transport.HandlerFunc(a.handleSignIn(authSvc)))
	a.router.Register("POST", "/tables", transport.HandlerFunc(a.handleCreateTable(bookingSvc)))
	a.router.Register("GET", "/tables", transport.HandlerFunc(a.handleListTables(bookingSvc)))
	a.router.Register("GET", "/tables_id", transport.HandlerFunc(a.handleGetTable(bookingSvc)))
	a.router.Register("POST", "/reservations", transport.HandlerFunc(a.handleCreateReservation(bookingSvc)))
	a.router.Register("GET", "/reservations", transport.HandlerFunc(a.handleListReservations(bookingSvc)))
	a.router.Register("GET", "/hello", transport.HandlerFunc(a.handleHello))
	if weatherSvc != nil {
		a.router.Register("GET", "/weather", transport.HandlerFunc(a.handleWeather(weatherSvc)))
	}

	a.mux.HandleFunc("GET /health", a.handleHealth)
	if cfg.EnableMetrics {
		a.mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Known paths get explicit mux patterns so the metrics middleware
	// sees a bounded route label. The patterns carry no method: a matching
	// path with an unsupported method must still reach the router, which
	// renders the bad-route envelope instead of the mux's plain 405.
	for _, pattern := range []string{
		"/signup",
		"/signin",
		"/tables",
		"/tables/{tableId}",
		"/reservations",
		"/hello",
		"/weather",
	} {
		a.mux.HandleFunc(pattern, a.dispatch)
	}
	a.mux.HandleFunc("/", a.dispatch)

	return a
}

// Handler returns the http.Handler for this adapter, including request ID
// propagation and, when enabled, request metrics.
func (a *Adapter) Handler() http.Handler {
	var h http.Handler = a.mux
	if a.config.EnableMetrics {
		h = observability.MetricsMiddleware(h)
	}
	return httpRequestIDMiddleware(h)
}

// dispatch translates the HTTP request and hands it to the router.
func (a *Adapter) dispatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		env := api.NewErrorEnvelope(http.StatusBadRequest, "Request body unreadable or too large")
		writeJSON(w, a.logger, env.StatusCode, env)
		return
	}

	resp := a.router.Dispatch(r.Context(), &transport.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   body,
	})

	writeJSON(w, a.logger, resp.StatusCode, resp.Body)
}

// handleHealth reports liveness and, when a store is attached, the store
// connection state.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	state := "ok"
	if a.store != nil {
		if err := a.store.HealthCheck(r.Context()); err != nil {
			a.logger.Warn("health check failed", "error", err)
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
	}
	writeJSON(w, a.logger, status, map[string]string{"status": state})
}

func (a *Adapter) handleHello(_ context.Context, _ *transport.Request) (*transport.Response, error) {
	return transport.OK(api.MessageEnvelope{StatusCode: 200, Message: "Hello from API"}), nil
}

func (a *Adapter) handleSignUp(svc *auth.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		var body api.SignUpRequest
		if err := unmarshalBody(req.Body, &body); err != nil {
			return nil, err
		}
		if err := svc.SignUp(ctx, &body); err != nil {
			return nil, err
		}
		return transport.OK(api.MessageEnvelope{StatusCode: 200, Message: "OK"}), nil
	}
}

func (a *Adapter) handleSignIn(svc *auth.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		var body api.SignInRequest
		if err := unmarshalBody(req.Body, &body); err != nil {
			return nil, err
		}
		resp, err := svc.SignIn(ctx, &body)
		if err != nil {
			return nil, err
		}
		return transport.OK(resp), nil
	}
}

func (a *Adapter) handleCreateTable(svc *booking.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		var body api.CreateTableRequest
		if err := unmarshalBody(req.Body, &body); err != nil {
			return nil, api.NewValidationError("Invalid table info")
		}
		id, err := svc.CreateTable(ctx, &body)
		if err != nil {
			return nil, err
		}
		return transport.OK(map[string]int{"id": id}), nil
	}
}

func (a *Adapter) handleListTables(svc *booking.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, _ *transport.Request) (*transport.Response, error) {
		list, err := svc.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		return transport.OK(list), nil
	}
}

func (a *Adapter) handleGetTable(svc *booking.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		id, err := strconv.Atoi(req.PathParams["tableId"])
		if err != nil {
			return nil, api.NewValidationError("Invalid table info")
		}
		table, err := svc.GetTable(ctx, id)
		if err != nil {
			return nil, err
		}
		return transport.OK(table), nil
	}
}

func (a *Adapter) handleCreateReservation(svc *booking.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		var body api.CreateReservationRequest
		if err := unmarshalBody(req.Body, &body); err != nil {
			return nil, api.NewValidationError("Invalid reservation")
		}
		id, err := svc.CreateReservation(ctx, &body)
		if err != nil {
			return nil, err
		}
		return transport.OK(map[string]string{"reservationId": id}), nil
	}
}

func (a *Adapter) handleListReservations(svc *booking.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, _ *transport.Request) (*transport.Response, error) {
		list, err := svc.ListReservations(ctx)
		if err != nil {
			return nil, err
		}
		return transport.OK(list), nil
	}
}

func (a *Adapter) handleWeather(svc *weather.Service) func(context.Context, *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, _ *transport.Request) (*transport.Response, error) {
		forecast, err := svc.GetForecast(ctx)
		if err != nil {
			return nil, err
		}
		return transport.OK(forecast), nil
	}
}

// unmarshalBody decodes a JSON request body, treating an empty body and
// malformed JSON alike as validation failures.
func unmarshalBody(body []byte, dst any) error {
	if len(body) == 0 {
		return api.NewValidationError("Request body must not be empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return api.NewValidationError("Request body is not valid JSON")
	}
	return nil
}

// writeJSON serializes a response body with the given status code.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("writing response body", "error", err)
	}
}

// httpRequestIDMiddleware propagates the X-Request-ID header: an incoming
// value is stored in the context and echoed on the response.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}
