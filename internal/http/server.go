package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-net-uptime-dashboard/internal/calendar"
	"go-net-uptime-dashboard/internal/charts"
	"go-net-uptime-dashboard/internal/config"
	"go-net-uptime-dashboard/internal/connectors/events"
	"go-net-uptime-dashboard/internal/connectors/uptimeapi"
)

const requestIDHeader = "X-Request-ID"

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer *nethttp.Server
	store      events.Store
	logger     *zap.Logger
}

// deps is what the handlers share. Tests build it directly.
type deps struct {
	store         events.Store
	backend       string
	upstream      *uptimeapi.Client
	loader        *charts.Loader
	catalog       calendar.MonthCatalog
	showMoreAfter int
	logger        *zap.Logger
	now           func() time.Time
}

// NewServer creates a configured HTTP server with the dashboard pages and v1
// endpoints.
func NewServer(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := OpenEventStore(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := LoadMonthCatalog(cfg.MonthCatalogFile)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	upstream := uptimeapi.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
	d := deps{
		store:         store,
		backend:       cfg.EventsBackend,
		upstream:      upstream,
		loader:        charts.NewLoader(upstream, logger.Named("charts"), recordExternalProbe),
		catalog:       catalog,
		showMoreAfter: cfg.ShowMoreAfter,
		logger:        logger,
		now:           time.Now,
	}

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(logger, observabilityMiddleware(newMux(d))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("server configured",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("events_backend", cfg.EventsBackend),
		zap.Bool("upstream_enabled", upstream.Enabled()),
		zap.Int("months", catalog.Len()),
	)
	return &Server{httpServer: httpServer, store: store, logger: logger}, nil
}

func newMux(d deps) *nethttp.ServeMux {
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.catalog.Len() == 0 {
		d.catalog = calendar.DefaultBSCatalog()
	}

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/", dashboardHandler(d))
	mux.HandleFunc("/host/", hostHandler(d))
	mux.HandleFunc("/monthview/", monthViewHandler(d))
	mux.HandleFunc("/api/v1/calendar/view", calendarViewHandler(d))
	mux.HandleFunc("/api/v1/events/summary", eventSummaryHandler(d))
	mux.HandleFunc("/static/dashboard.js", staticScriptHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(d))
	return mux
}

// OpenEventStore opens the configured events backend. A nil store with a nil
// error means the backend is disabled.
func OpenEventStore(cfg config.Config) (events.Store, error) {
	switch cfg.EventsBackend {
	case config.EventsMySQL:
		store, err := events.NewMySQLStore(cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql events store: %w", err)
		}
		return store, nil
	case config.EventsSQLite:
		store, err := events.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite events store: %w", err)
		}
		return store, nil
	case config.EventsNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

// LoadMonthCatalog reads a month catalog JSON file, or returns the built-in
// Bikram Sambat catalog when path is empty.
func LoadMonthCatalog(path string) (calendar.MonthCatalog, error) {
	if path == "" {
		return calendar.DefaultBSCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return calendar.MonthCatalog{}, fmt.Errorf("read month catalog: %w", err)
	}
	catalog, err := calendar.ParseMonthCatalogJSON(raw)
	if err != nil {
		return calendar.MonthCatalog{}, fmt.Errorf("month catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.store != nil {
		_ = s.store.Close()
	}
	return err
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// readyHandler reports each dependency; the service is ready when every
// enabled one answers.
func readyHandler(d deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]any{}
		ready := true

		if d.store == nil {
			checks["events"] = map[string]any{"enabled": false, "ok": false, "error": "event database integration disabled"}
		} else {
			start := time.Now()
			err := d.store.Ping(ctx)
			recordDBQuery(d.backend, "Ping", time.Since(start).Seconds(), err)
			checks["events"] = dependencyStatus(err)
			ready = ready && err == nil
		}

		if d.upstream == nil || !d.upstream.Enabled() {
			checks["upstream"] = map[string]any{"enabled": false, "ok": false, "error": uptimeapi.ErrUpstreamDisabled.Error()}
		} else {
			start := time.Now()
			err := d.upstream.Ping(ctx)
			recordExternalProbe("Ping", time.Since(start).Seconds(), err)
			checks["upstream"] = dependencyStatus(err)
			ready = ready && err == nil
		}

		status, code := "ready", nethttp.StatusOK
		if !ready {
			status, code = "degraded", nethttp.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{"status": status, "checks": checks})
	}
}

func dependencyStatus(err error) map[string]any {
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true}
}

func loggingMiddleware(logger *zap.Logger, next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
