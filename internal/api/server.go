// Package api exposes the randomizer pipeline over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/store"
)

// DefaultMaxROMBytes bounds uploaded cartridges when no limit is configured.
const DefaultMaxROMBytes = 8 << 20

// Server handles HTTP requests
type Server struct {
	db           store.DB
	errorHandler *ErrorHandler
	logger       *log.Logger
	maxROMBytes  int64
	startTime    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default stdout logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxROMBytes sets the upload limit.
func WithMaxROMBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxROMBytes = int64(n)
		}
	}
}

// NewServer creates a new API server. db may be nil to run without history.
func NewServer(db store.DB, opts ...Option) *Server {
	s := &Server{
		db:          db,
		logger:      log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		maxROMBytes: DefaultMaxROMBytes,
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorHandler = NewErrorHandler(s.logger)

	s.logger.Printf("server_startup generations=%d games=%d history=%t max_rom_bytes=%d engine_version=%s",
		len(codec.ListCodecs()), len(game.ListGames()), db != nil, s.maxROMBytes, EngineVersion)
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/randomize", s.handleRandomize)
		r.Post("/inspect", s.handleInspect)
		r.Get("/games", s.handleListGames)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed status=%d err=%v", status, err)
	}
}
