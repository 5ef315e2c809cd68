// Package httpapi serves Archivist's search, ask and scope operations over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/metrics"
)

// Default timeouts.
const (
	DefaultRequestTimeout = 90 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")

// Ports aggregates the driving ports the HTTP API uses.
type Ports struct {
	Retrieval driving.RetrievalService
	Ask       driving.AskService
	Scope     driving.ScopeService
	Document  driving.DocumentService
	Ingest    driving.IngestService
}

// Server wraps a chi router with the standard middleware stack.
type Server struct {
	ports          Ports
	log            zerolog.Logger
	mcp            http.Handler
	requestTimeout time.Duration
	defaultK       int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMCP mounts an MCP streamable HTTP handler at /mcp.
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithDefaultK sets the number of hits returned when a request gives no limit.
func WithDefaultK(k int) Option {
	return func(s *Server) {
		s.defaultK = k
	}
}

// NewServer creates an HTTP API server.
func NewServer(ports Ports, opts ...Option) (*Server, error) {
	if ports.Retrieval == nil {
		return nil, ErrMissingRetrievalService
	}
	srv := &Server{
		ports:          ports,
		log:            zerolog.Nop(),
		requestTimeout: DefaultRequestTimeout,
		defaultK:       5,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv, nil
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", metrics.Handler().ServeHTTP)
	if s.mcp != nil {
		r.Handle("/mcp", s.mcp)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))

		r.Get("/search", s.handleSearch)
		if s.ports.Ask != nil {
			r.Post("/ask", s.handleAsk)
		}
		if s.ports.Scope != nil {
			r.Get("/scope", s.handleGetScope)
			r.Put("/scope", s.handleSetScope)
		}
		if s.ports.Document != nil {
			r.Get("/collections/{collectionID}/stats", s.handleStats)
		}
		if s.ports.Ingest != nil {
			r.Get("/collections/{collectionID}/status", s.handleStatus)
		}
	})

	return r
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
