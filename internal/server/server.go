// Package server exposes the cost dashboard as a JSON API and optionally keeps
// the upload store in sync with a directory of XER files.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"
	"github.com/theirongolddev/xercost/internal/store"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr          string
	CacheTTL      time.Duration
	UploadsTTL    time.Duration
	WatchDir      string
	WatchInterval time.Duration
	EventsBuffer  int
	Currency      string
}

// ImportEvent is published after every import run of the watch loop.
type ImportEvent struct {
	ID          int64          `json:"id"`
	Type        string         `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Imported    int            `json:"imported"`
	Skipped     int            `json:"skipped"`
	FileErrors  int            `json:"file_errors"`
	ParseErrors int            `json:"parse_errors"`
	Uploads     []model.Upload `json:"uploads,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Event types.
const (
	EventImport      = "import"
	EventImportError = "import_error"
	EventHello       = "hello"
)

// Status is served at /api/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	LastImportAt     time.Time `json:"last_import_at,omitempty"`
	WatchDir         string    `json:"watch_dir,omitempty"`
	WatchIntervalSec int       `json:"watch_interval_sec,omitempty"`
	ImportCount      int64     `json:"import_count"`
	Uploads          int       `json:"uploads"`
	LastError        string    `json:"last_error,omitempty"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
}

// Server serves the dashboard API.
type Server struct {
	cfg   Config
	store *store.Store
	svc   *dashboard.Service
	cache *responseCache

	// importMu serialises import runs; mu guards everything below.
	importMu     sync.Mutex
	mu           sync.RWMutex
	startedAt    time.Time
	lastImportAt time.Time
	importCount  int64
	lastError    string
	nextEventID  int64
	events       []ImportEvent

	nextSubID int
	subs      map[int]chan ImportEvent
}

// New returns a server over st with the provided config.
func New(cfg Config, st *store.Store) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.UploadsTTL <= 0 {
		cfg.UploadsTTL = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.WatchInterval > 0 && cfg.WatchInterval < 2*time.Second {
		cfg.WatchInterval = 2 * time.Second
	}

	return &Server{
		cfg:       cfg,
		store:     st,
		svc:       dashboard.New(st, cfg.Currency),
		cache:     newResponseCache(),
		startedAt: time.Now(),
		subs:      make(map[int]chan ImportEvent),
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Get("/uploads", s.cached(s.cfg.UploadsTTL, s.handleUploads))
		r.Get("/projects", s.cached(s.cfg.UploadsTTL, s.handleProjects))
		r.Get("/graph", s.cached(s.cfg.CacheTTL, s.handleGraph))
		r.Get("/gantt_data", s.cached(s.cfg.CacheTTL, s.handleGantt))
		r.Get("/movement_comparison", s.cached(s.cfg.CacheTTL, s.handleMovement))
		r.Get("/movement_comparison/export", s.cached(s.cfg.CacheTTL, s.handleMovementExport))

		r.Route("/cost_dashboard", func(r chi.Router) {
			r.Get("/overall", s.cached(s.cfg.CacheTTL, s.handleOverall))
			r.Get("/tasks", s.cached(s.cfg.CacheTTL, s.handleTasks))
			r.Get("/resources", s.cached(s.cfg.CacheTTL, s.handleResources))
			r.Get("/forecast", s.cached(s.cfg.CacheTTL, s.handleForecast))
			r.Get("/export_forecast", s.cached(s.cfg.CacheTTL, s.handleExportForecast))
			r.Get("/forecast_chart", s.cached(s.cfg.CacheTTL, s.handleForecastChart))
		})
	})
	return r
}

// Run serves HTTP and, when a watch directory is configured, re-imports it on
// every interval until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Str("addr", s.cfg.Addr).Str("watch", s.cfg.WatchDir).Msg("serving dashboard API")

	var tick <-chan time.Time
	if s.cfg.WatchDir != "" {
		s.ImportOnce()
		if s.cfg.WatchInterval > 0 {
			ticker := time.NewTicker(s.cfg.WatchInterval)
			defer ticker.Stop()
			tick = ticker.C
		}
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-tick:
			s.ImportOnce()
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

// ImportOnce imports the watch directory, purges cached responses when
// anything changed and publishes the outcome.
func (s *Server) ImportOnce() ImportEvent {
	s.importMu.Lock()
	defer s.importMu.Unlock()

	res, err := pipeline.Import(s.cfg.WatchDir, s.store, nil)
	now := time.Now()

	ev := ImportEvent{Type: EventImport, Timestamp: now}
	if res != nil {
		ev.Imported = res.Imported
		ev.Skipped = res.Skipped
		ev.FileErrors = res.FileErrors
		ev.ParseErrors = res.ParseErrors
		ev.Uploads = res.Uploads
	}

	s.mu.Lock()
	s.lastImportAt = now
	s.importCount++
	if err != nil {
		ev.Type = EventImportError
		ev.Error = err.Error()
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("dir", s.cfg.WatchDir).Msg("import failed")
	} else if ev.Imported > 0 {
		log.Info().Int("imported", ev.Imported).Int("skipped", ev.Skipped).Msg("imported XER files")
	}

	if ev.Imported > 0 {
		s.cache.purge()
	}
	if err != nil || ev.Imported > 0 || ev.FileErrors > 0 {
		s.publishEvent(ev)
	}
	return ev
}

func (s *Server) publishEvent(ev ImportEvent) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
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

func (s *Server) status() Status {
	uploads, err := s.store.UploadCount()
	if err != nil {
		log.Warn().Err(err).Msg("counting uploads")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:        s.startedAt,
		LastImportAt:     s.lastImportAt,
		WatchDir:         s.cfg.WatchDir,
		WatchIntervalSec: int(s.cfg.WatchInterval.Seconds()),
		ImportCount:      s.importCount,
		Uploads:          uploads,
		LastError:        s.lastError,
		EventCount:       len(s.events),
		SubscriberCount:  len(s.subs),
	}
}

func (s *Server) addSubscriber(ch chan ImportEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Server) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
