// Package http implements the REST API of the MindMate scoring engine:
// the student dashboard views, the advisor report listing and health checks.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toqeer-ahmed/MindMate/config"
	"github.com/toqeer-ahmed/MindMate/internal/application/query"
	"github.com/toqeer-ahmed/MindMate/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Addr - address to bind (default: ":8080").
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// AllowedOrigins - allowed origins for CORS.
	AllowedOrigins []string

	// AdvisorKeyHash - bcrypt hash of the advisor API key.
	// Empty leaves the advisor routes unregistered.
	AdvisorKeyHash string

	// Version is reported by the health endpoint.
	Version string

	// Mode is the gin mode: debug, release or test.
	Mode string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
		AllowedOrigins: []string{"http://localhost:5173"},
		Mode:           gin.ReleaseMode,
	}
}

// ConfigFrom maps the application settings onto a server Config.
func ConfigFrom(app config.AppConfig, h config.HTTPConfig) Config {
	cfg := DefaultConfig()
	if h.Addr != "" {
		cfg.Addr = h.Addr
	}
	if h.ReadTimeout > 0 {
		cfg.ReadTimeout = h.ReadTimeout
	}
	if h.WriteTimeout > 0 {
		cfg.WriteTimeout = h.WriteTimeout
	}
	if len(h.CORSOrigins) > 0 {
		cfg.AllowedOrigins = h.CORSOrigins
	}
	cfg.AdvisorKeyHash = h.AdvisorAPIKeyHash
	cfg.Version = app.Version
	if app.Debug {
		cfg.Mode = gin.DebugMode
	}
	return cfg
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the handlers call into.
type Dependencies struct {
	AcademicStanding *query.GetAcademicStandingHandler
	MoodTrend        *query.GetMoodTrendHandler
	DailySummary     *query.GetDailySummaryHandler
	WellnessReports  *query.GetWellnessReportsHandler

	// Health may be nil; /healthz then reports healthy without checks.
	Health *HealthChecker

	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	engine     *gin.Engine
	httpServer *http.Server
	logger     *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates the server and registers all routes.
func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.Health == nil {
		deps.Health = NewHealthChecker(cfg.Version)
	}

	log := deps.Logger.With(logger.Component("http"))

	engine := gin.New()
	engine.Use(
		RequestID(log),
		RequestLogger(log),
		Recovery(log),
		CORS(cfg.AllowedOrigins),
		SecurityHeaders(),
	)

	s := &Server{
		config: cfg,
		engine: engine,
		logger: log,
	}
	s.setupRoutes(newHandlers(deps), cfg.AdvisorKeyHash)

	s.httpServer = &http.Server{
		Addr:           cfg.Addr,
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes(h *handlers, advisorKeyHash string) {
	s.engine.GET("/healthz", h.health)
	s.engine.GET("/livez", h.live)

	v1 := s.engine.Group("/api/v1")

	students := v1.Group("/students/:id")
	students.GET("/academics", h.academicStanding)
	students.GET("/mood-trend", h.moodTrend)
	students.GET("/summary", h.dailySummary)

	if advisorKeyHash == "" {
		s.logger.Warn("advisor API key hash not configured, advisor routes disabled")
		return
	}
	advisor := v1.Group("/advisor", AdvisorAuth(advisorKeyHash))
	advisor.GET("/reports", h.wellnessReports)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// Address returns the server address.
func (s *Server) Address() string {
	return s.config.Addr
}
