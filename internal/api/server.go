// Package api provides the HTTP REST API and WebSocket server for SigOS Core.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/sigos-core/internal/eventlog"
	"github.com/nerrad567/sigos-core/internal/infrastructure/config"
	"github.com/nerrad567/sigos-core/internal/infrastructure/logging"
	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
	"github.com/nerrad567/sigos-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Arbiter  *arbiter.Arbitrator
	Catalog  *rule.Catalog
	EventLog *eventlog.Log

	// Optional collaborators. Their routes are only mounted when set.
	Transitions *eventlog.TransitionRepository
	Metrics     *telemetry.Metrics

	ExternalHub *Hub // If set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the HTTP API server for SigOS Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	secCfg      config.SecurityConfig
	logger      *logging.Logger
	arb         *arbiter.Arbitrator
	catalog     *rule.Catalog
	eventLog    *eventlog.Log
	transitions *eventlog.TransitionRepository
	metrics     *telemetry.Metrics
	version     string
	startTime   time.Time
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, arbitrator, catalog, event log)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Arbiter == nil {
		return nil, fmt.Errorf("arbitrator is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("rule catalog is required")
	}
	if deps.EventLog == nil {
		return nil, fmt.Errorf("event log is required")
	}

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		arb:         deps.Arbiter,
		catalog:     deps.Catalog,
		eventLog:    deps.EventLog,
		transitions: deps.Transitions,
		metrics:     deps.Metrics,
		version:     deps.Version,
		startTime:   time.Now(),
	}

	// The hub is usually created in main so it can be registered as an
	// arbiter observer and event log broadcaster before Start.
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.WS, deps.Logger)
	}
	s.hub.SetSnapshot(ChannelTransition, s.activeSnapshot)

	return s, nil
}

// Hub returns the WebSocket hub used by the server.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the fully wired router. Start serves it; tests mount it
// on httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub (unless injected externally) and launches the
// HTTP listener in a background goroutine. The server can be stopped with
// Close().
//
// Parameters:
//   - ctx: Context for cancellation of background goroutines
//
// Returns:
//   - error: If the server fails to start
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr, "auth", s.authEnabled())
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// activeSnapshot is the rule.transition snapshot: the displayed request,
// or nil before the arbitrator has started.
func (s *Server) activeSnapshot() any {
	e, ok := s.arb.Active()
	if !ok {
		return nil
	}
	return newRequestView(e)
}

// authEnabled reports whether bearer tokens are required.
func (s *Server) authEnabled() bool {
	return s.secCfg.JWT.Secret != ""
}
