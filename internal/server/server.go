// Package server exposes the router over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"swapRouter/internal/chain"
	"swapRouter/internal/graph"
	"swapRouter/internal/model"
	"swapRouter/internal/sor"
	"swapRouter/internal/swap"
)

// Router is the part of the smart order router the handlers use.
type Router interface {
	GetCandidatePaths(ctx context.Context, tokenIn, tokenOut model.Token, opts sor.SwapOptions) ([]graph.Path, error)
	GetSwaps(ctx context.Context, tokenIn, tokenOut model.Token, kind model.SwapKind, amount model.TokenAmount, opts sor.SwapOptions) (*swap.Swap, error)
	IsInitialized() bool
	Block() *uint64
}

// Config holds the listener settings.
type Config struct {
	Address               string
	ChainID               uint64
	RequestTimeout        time.Duration
	MaxConcurrentRequests int
}

func DefaultConfig() Config {
	return Config{
		Address:               "localhost:8080",
		ChainID:               1,
		RequestTimeout:        30 * time.Second,
		MaxConcurrentRequests: 200,
	}
}

// Server wraps the HTTP server and its routes.
type Server struct {
	cfg        Config
	router     Router
	caller     chain.Caller
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
	mux        *chi.Mux
	httpServer *http.Server
}

type Option func(*Server)

// WithCaller enables on-chain queries for requests that ask for them.
func WithCaller(caller chain.Caller) Option {
	return func(s *Server) { s.caller = caller }
}

// WithGatherer serves /metrics from gatherer instead of the default registry.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		if gatherer != nil {
			s.gatherer = gatherer
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(cfg Config, r Router, opts ...Option) (*Server, error) {
	if r == nil {
		return nil, fmt.Errorf("router is required")
	}
	def := DefaultConfig()
	if cfg.Address == "" {
		cfg.Address = def.Address
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = def.ChainID
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}

	s := &Server{
		cfg:      cfg,
		router:   r,
		gatherer: prometheus.DefaultGatherer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := chi.NewMux()
	mux.Use(s.logRequests)
	mux.Use(s.recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.MaxConcurrentRequests > 0 {
		mux.Use(middleware.Throttle(cfg.MaxConcurrentRequests))
	}

	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.Get("/health", s.handleHealth)
	mux.Get("/paths", s.handlePaths)
	mux.Post("/swaps", s.handleSwaps)
	s.mux = mux

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("address", s.cfg.Address))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("recovered from panic", zap.Any("panic", rvr), zap.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
