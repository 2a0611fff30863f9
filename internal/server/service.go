// Package server exposes the amortization engine over HTTP: JSON
// calculation endpoints, a live SSE stream of calculations, and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/model"
	"github.com/theirongolddev/emicalc/internal/ratelimit"
	"github.com/theirongolddev/emicalc/internal/store"
)

// Catalog resolves scheme names for requests.
type Catalog interface {
	Lookup(name string) (model.LoanScheme, bool)
	Keys() []string
}

// HistoryStore persists calculations. It is optional.
type HistoryStore interface {
	Save(ctx context.Context, c model.Calculation) error
	List(ctx context.Context, limit int) ([]model.Calculation, error)
}

// Config controls the service runtime behavior.
type Config struct {
	Addr          string
	EventsBuffer  int
	DefaultScheme string

	Engine  *amortization.Engine
	Catalog Catalog
	History HistoryStore      // nil disables /v1/history and persistence
	Limiter ratelimit.Limiter // nil disables rate limiting
	Logger  *zap.Logger
}

// Event is emitted for every calculation served.
type Event struct {
	ID          int64              `json:"id"`
	Type        string             `json:"type"`
	Timestamp   time.Time          `json:"timestamp"`
	Calculation *model.Calculation `json:"calculation,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Calculations    int64     `json:"calculations"`
	LastError       string    `json:"last_error,omitempty"`
	HistoryEnabled  bool      `json:"history_enabled"`
	RateLimited     bool      `json:"rate_limited"`
	Schemes         int       `json:"schemes"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the HTTP API.
type Service struct {
	cfg     Config
	engine  *amortization.Engine
	logger  *zap.Logger
	metrics *metrics

	mu           sync.RWMutex
	startedAt    time.Time
	calculations int64
	lastError    string
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8790"
	}
	if cfg.DefaultScheme == "" {
		cfg.DefaultScheme = "sbi"
	}
	engine := cfg.Engine
	if engine == nil {
		engine = amortization.New(amortization.DefaultPolicy())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		engine:    engine,
		logger:    logger,
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		shutdown:  make(chan struct{}),
	}
}

// Handler returns the full route table with middleware applied.
func (s *Service) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/emi", s.handleEMI)
	api.HandleFunc("POST /v1/schedule", s.handleSchedule)
	api.HandleFunc("POST /v1/compare", s.handleCompare)
	api.HandleFunc("POST /v1/afford", s.handleAfford)
	api.HandleFunc("GET /v1/schemes", s.handleSchemes)
	api.HandleFunc("GET /v1/history", s.handleHistory)
	api.HandleFunc("GET /v1/recent", s.handleRecent)
	api.HandleFunc("GET /v1/status", s.handleStatus)
	api.HandleFunc("GET /v1/stream", s.handleStream)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	mux.Handle("/v1/", s.rateLimit(api))

	return s.instrument(mux)
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	server.RegisterOnShutdown(s.closeStreams)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) closeStreams() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

// record counts, persists and publishes a finished calculation. Persistence
// failures are logged and never fail the request.
func (s *Service) record(ctx context.Context, in model.LoanInput, res model.AmortizationResult) model.Calculation {
	calc := store.NewCalculation("http", in, res)

	s.metrics.calculations.WithLabelValues(in.Scheme.Name, string(res.Affordability)).Inc()

	if s.cfg.History != nil {
		if err := s.cfg.History.Save(ctx, calc); err != nil {
			s.logger.Warn("saving calculation failed", zap.String("id", calc.ID), zap.Error(err))
			s.mu.Lock()
			s.lastError = err.Error()
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	s.calculations++
	s.nextEventID++
	ev := Event{
		ID:          s.nextEventID,
		Type:        "calculation",
		Timestamp:   calc.CreatedAt,
		Calculation: &calc,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
	return calc
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		Calculations:    s.calculations,
		LastError:       s.lastError,
		HistoryEnabled:  s.cfg.History != nil,
		RateLimited:     s.cfg.Limiter != nil,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.cfg.Catalog != nil {
		st.Schemes = len(s.cfg.Catalog.Keys())
	}
	return st
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	s.writeSSE(w, Event{Type: "ready", Timestamp: time.Now()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.shutdown:
			return
		case ev := <-ch:
			s.writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func (s *Service) writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("encoding event failed", zap.Int64("id", ev.ID), zap.String("type", ev.Type), zap.Error(err))
		_, _ = fmt.Fprint(w, "event: error\ndata: {\"error\":\"internal error\"}\n\n")
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.metrics.subscribers.Inc()
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.metrics.subscribers.Dec()
}
