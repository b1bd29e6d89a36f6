// Package server exposes the analytics core over HTTP. It serves the
// filtered project view, aggregated statistics, CSV export, and load
// diagnostics, and allows reloading the dataset without restarting.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ecanbaykurt/Project-Explorer/internal/config"
	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/internal/filter"
	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
)

// Default timeouts for the HTTP server
const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// ErrServerRunning is returned when Start is called on a running server.
var ErrServerRunning = errors.New("server already running")

// Server hosts the dashboard API. Reads always observe the dataset
// currently published in the store; a reload swaps the dataset atomically
// and in-flight requests keep the snapshot they started with.
type Server struct {
	cfg   *config.DashboardConfig
	store *dataset.Store
	cache *filter.Cache

	server     *http.Server
	listener   net.Listener
	actualAddr string

	mu       sync.RWMutex
	running  bool
	dataPath string

	shutdownOnce sync.Once
}

// New creates a Server around an already-populated store.
func New(cfg *config.DashboardConfig, store *dataset.Store) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		cache:    filter.NewCache(),
		dataPath: cfg.Data.Path,
	}
}

// Start binds the listener and serves until the context is canceled,
// an OS signal arrives, or the server fails. It blocks.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerRunning
	}
	s.running = true
	s.mu.Unlock()

	address := s.cfg.Server.Address
	if address == "" {
		address = config.DefaultServerAddress
	}

	s.server = &http.Server{
		Addr:         address,
		Handler:      s.routes(),
		ReadTimeout:  readTimeout(s.cfg),
		WriteTimeout: writeTimeout(s.cfg),
	}

	// A separate listener keeps the actual address observable when the
	// configuration asks for port 0.
	listener, err := net.Listen("tcp", address)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logger.Error("failed to start server",
			"address", address,
			"error", err.Error(),
		)
		return fmt.Errorf("starting listener: %w", err)
	}
	s.listener = listener

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	logger.Info("server started",
		"address", s.actualAddr,
		"generation", s.store.Current().Generation,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case <-ctx.Done():
		logger.Info("server shutdown requested")
		return s.shutdown()
	case sig := <-signalChan:
		logger.Info("server shutdown requested by signal", "signal", sig.String())
		return s.shutdown()
	case err := <-serverErr:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		shutdownErr := s.shutdown()
		if err != nil {
			if shutdownErr != nil {
				logger.Error("error during shutdown after server error",
					"serverError", err.Error(),
					"shutdownError", shutdownErr.Error(),
				)
			}
			return fmt.Errorf("server error: %w", err)
		}
		return shutdownErr
	}
}

// Stop gracefully stops the server, waiting for in-flight requests.
func (s *Server) Stop() error {
	return s.shutdown()
}

// shutdown runs at most once even when Stop and context cancellation race.
func (s *Server) shutdown() error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.running = false
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", "address", s.actualAddr)

		shutdownErr = s.server.Shutdown(ctx)
		if shutdownErr != nil {
			logger.Error("server shutdown error", "error", shutdownErr.Error())
			shutdownErr = fmt.Errorf("shutting down server: %w", shutdownErr)
			return
		}

		logger.Info("server stopped", "address", s.actualAddr)
	})

	return shutdownErr
}

// Address returns the bound address. Useful with port 0.
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actualAddr
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/projects", s.handleProjects)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/api/reload", s.handleReload)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func readTimeout(cfg *config.DashboardConfig) time.Duration {
	if cfg.Server.ReadTimeoutSeconds > 0 {
		return time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	}
	return defaultReadTimeout
}

func writeTimeout(cfg *config.DashboardConfig) time.Duration {
	if cfg.Server.WriteTimeoutSeconds > 0 {
		return time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	}
	return defaultWriteTimeout
}
