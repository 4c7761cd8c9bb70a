package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/reelquiz/reelquiz/internal/cache"
	"github.com/reelquiz/reelquiz/internal/library"
	"github.com/reelquiz/reelquiz/internal/logging"
	"github.com/reelquiz/reelquiz/internal/session"
	"github.com/reelquiz/reelquiz/internal/trivia"
)

// Server exposes the game API over HTTP.
type Server struct {
	engine   *trivia.Engine
	sessions *session.Registry
	lib      library.Client

	// stores indexes every cache domain by name; stills additionally backs
	// the frame artifact route.
	stores map[string]*cache.Store
	stills *cache.Store

	log    zerolog.Logger
	router chi.Router
	server *http.Server
}

type Option func(*Server)

// WithLibrary enables the library listing route.
func WithLibrary(lib library.Client) Option {
	return func(s *Server) {
		s.lib = lib
	}
}

func NewServer(engine *trivia.Engine, sessions *session.Registry, stores map[string]*cache.Store, stills *cache.Store, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		stores:   stores,
		stills:   stills,
		log:      logging.WithComponent("httpapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/trivia/{mode}", s.handleTrivia)
		r.Get("/session/{id}", s.handleSessionRead)
		r.Delete("/session/{id}", s.handleSessionCancel)
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
		r.Get("/frames/{name}", s.handleFrame)
		r.Get("/library", s.handleLibrary)
	})
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
