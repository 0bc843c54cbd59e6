package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/medboxlab/medbox-core/internal/auth"
	"github.com/medboxlab/medbox-core/internal/command"
	"github.com/medboxlab/medbox-core/internal/events"
	"github.com/medboxlab/medbox-core/internal/infrastructure/config"
	"github.com/medboxlab/medbox-core/internal/infrastructure/logging"
	"github.com/medboxlab/medbox-core/internal/journal"
	"github.com/medboxlab/medbox-core/internal/medicine"
	"github.com/medboxlab/medbox-core/internal/notify"
	"github.com/medboxlab/medbox-core/internal/presence"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Logger       *logging.Logger
	Auth         *auth.Service
	Presence     *presence.Store
	Journal      *journal.Service
	Notify       *notify.Service
	Medicines    medicine.Repository
	Commands     *command.Publisher
	Orchestrator *events.Orchestrator
	ExternalHub  *Hub // If set, the server uses this hub instead of creating its own
	Version      string
}

// Server is the HTTP API server for MedBox Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	logger       *logging.Logger
	auth         *auth.Service
	presence     *presence.Store
	journal      *journal.Service
	notify       *notify.Service
	medicines    medicine.Repository
	commands     *command.Publisher
	orchestrator *events.Orchestrator
	version      string
	server       *http.Server
	hub          *Hub
	cancel       context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Presence == nil {
		return nil, fmt.Errorf("presence store is required")
	}
	if deps.Journal == nil {
		return nil, fmt.Errorf("journal service is required")
	}
	// Notify, Medicines, Commands, and Orchestrator are optional; the
	// corresponding routes return 404 or degrade when absent.

	s := &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		logger:       deps.Logger,
		auth:         deps.Auth,
		presence:     deps.Presence,
		journal:      deps.Journal,
		notify:       deps.Notify,
		medicines:    deps.Medicines,
		commands:     deps.Commands,
		orchestrator: deps.Orchestrator,
		version:      deps.Version,
	}

	// Use externally-provided hub if available (needed when the notify
	// service also requires the hub for live fan-out).
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	// Create WebSocket hub (unless one was injected externally)
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	go s.hub.Run(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
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
