package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mnbossa/AImend/pkg/config"
	"github.com/mnbossa/AImend/pkg/envelope"
	"github.com/mnbossa/AImend/pkg/proxy/handlers"
	"github.com/mnbossa/AImend/pkg/proxy/middleware"
	"github.com/mnbossa/AImend/pkg/replay"
	"github.com/mnbossa/AImend/pkg/security/secrets"
	gatewaytls "github.com/mnbossa/AImend/pkg/security/tls"
	"github.com/mnbossa/AImend/pkg/telemetry/health"
	"github.com/mnbossa/AImend/pkg/telemetry/metrics"
	"github.com/mnbossa/AImend/pkg/telemetry/tracing"
	"github.com/mnbossa/AImend/pkg/upstream"
	"github.com/mnbossa/AImend/pkg/validation"
)

// ChatPath is the only route that relays to the upstream.
const ChatPath = "/chat"

// Server is the relay gateway's HTTP server.
type Server struct {
	config      *config.Config
	credentials secrets.Credentials
	logger      *slog.Logger
	version     health.VersionInfo

	registry  *prometheus.Registry
	collector *metrics.Collector
	checker   *health.Checker
	store     replay.Store
	sweeper   *replay.Sweeper
	forwarder *upstream.Forwarder
	certs     *gatewaytls.CertificateReloader
	handler   http.Handler

	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the server and its middleware.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithVersion sets the build information served on the version path.
func WithVersion(info health.VersionInfo) Option {
	return func(s *Server) {
		s.version = info
	}
}

// WithRegistry replaces the Prometheus registry metrics are registered on.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// WithReplayStore replaces the store opened from replay configuration.
// The server takes ownership and closes it on shutdown.
func WithReplayStore(store replay.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// New builds the gateway from cfg and the resolved credentials. Missing
// credentials are not an error: requests fail with 500 and readiness
// reports them until the process is restarted with them set.
func New(cfg *config.Config, creds secrets.Credentials, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is nil")
	}

	s := &Server{
		config:      cfg,
		credentials: creds,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	if cfg.Replay.Enabled && s.store == nil {
		store, err := replay.Open(cfg.Replay, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open replay store: %w", err)
		}
		s.store = store
	}

	s.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, s.registry)

	if pruner, ok := s.store.(replay.Pruner); ok {
		s.sweeper = replay.NewSweeper(pruner, cfg.Replay.SweepSchedule, s.logger)
		s.sweeper.OnPrune(s.collector.RecordReplayPruned)
	}

	s.forwarder = upstream.NewForwarder(
		upstream.ConfigFrom(cfg.Upstream, creds.UpstreamKey),
		upstream.WithLogger(s.logger.With("component", "upstream")),
	)

	s.checker = health.New(cfg.Telemetry.Health.CheckTimeout)
	s.checker.RegisterCheck("credentials", health.CredentialsCheck(creds))
	if s.store != nil {
		s.checker.RegisterCheck("replay_store", health.ReplayStoreCheck(s.store))
	}

	if cfg.Server.TLS.Enabled {
		certs, err := gatewaytls.NewCertificateReloader(
			cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile, cfg.Server.TLS.WatchCerts, s.logger)
		if err != nil {
			s.closeResources()
			return nil, err
		}
		s.certs = certs
	}

	handler, err := s.setupRoutes()
	if err != nil {
		s.closeResources()
		return nil, err
	}
	s.handler = handler

	return s, nil
}

// Start listens on the configured address and blocks until ctx is
// cancelled or the listener fails. Cancellation triggers a graceful
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	var tlsConfig *tls.Config
	if s.certs != nil {
		cfg, err := gatewaytls.ServerConfig(s.config.Server.TLS, s.certs)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		tlsConfig = cfg
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.httpServer.TLSConfig = tlsConfig
	s.isRunning = true
	s.mu.Unlock()

	if s.sweeper != nil {
		if err := s.sweeper.Start(ctx); err != nil {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("failed to start nonce sweeper: %w", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting relay gateway",
			"address", ln.Addr().String(),
			"upstream", s.forwarder.Host(),
			"replay_backend", s.replayBackend(),
			"credentials", s.credentials,
			"tls", s.certs != nil,
		)

		var err error
		if s.certs != nil {
			// Certificates come from TLSConfig.GetCertificate.
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Shutdown stops accepting connections, waits for in-flight requests up to
// the shutdown timeout and releases the replay store and upstream pool.
// Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		s.mu.RLock()
		httpServer := s.httpServer
		s.mu.RUnlock()

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		if err := s.closeResources(); err != nil {
			s.logger.Error("error releasing resources", "error", err)
			shutdownErr = errors.Join(shutdownErr, err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("relay gateway stopped")
	})

	return shutdownErr
}

func (s *Server) closeResources() error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	s.forwarder.Close()
	if s.certs != nil {
		s.certs.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("failed to close replay store: %w", err)
		}
	}
	return nil
}

// setupRoutes mounts the chat, health and metrics routes and wraps them in
// the middleware chain. The outermost middleware is applied last.
func (s *Server) setupRoutes() (http.Handler, error) {
	cfg := s.config

	validator, err := validation.New(cfg.Envelope.MaxModelLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	authOpts := []envelope.Option{
		envelope.WithWindow(cfg.Envelope.FreshnessWindow),
		envelope.WithHeaderName(cfg.Envelope.SignatureHeader),
	}
	if s.store != nil {
		authOpts = append(authOpts, envelope.WithNonceGuard(s.store))
	}
	auth := envelope.NewAuthenticator(s.credentials.SharedSecret, authOpts...)

	chatHandler := handlers.NewChatHandler(handlers.ChatConfig{
		MaxBodyBytes:    cfg.Envelope.MaxBodyBytes,
		SignatureHeader: cfg.Envelope.SignatureHeader,
	}, auth, validator, s.forwarder, s.collector)

	mux := http.NewServeMux()
	mux.Handle(ChatPath, chatHandler)
	mux.Handle("/", handlers.NotFoundHandler())

	if cfg.Telemetry.Health.Enabled {
		health.Register(mux, s.checker, cfg.Telemetry.Health, s.version)
	}
	if cfg.Telemetry.Metrics.Enabled {
		mux.Handle(cfg.Telemetry.Metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(cfg.Server.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(cfg.CORS)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = tracing.HTTPMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler, nil
}

func (s *Server) replayBackend() string {
	if s.store == nil {
		return "disabled"
	}
	return s.config.Replay.Backend
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server is listening on, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the Prometheus registry the gateway's metrics live on.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}
