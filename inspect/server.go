package inspect

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/inject/component"
	"github.com/kbukum/inject/logger"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/version"
)

// Source is the injector view served over HTTP. *di.Injector implements it.
type Source interface {
	Graph
	ActiveScopes() marker.Set
}

// HealthSource reports component health. *component.Registry implements it.
type HealthSource interface {
	HealthAll(ctx context.Context) []component.Health
}

// Server serves a read-only view of an injector.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     Config
	source     Source
	health     HealthSource
	service    string
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the server and registers its routes. health may be nil.
func NewServer(cfg Config, service string, src Source, health HealthSource, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.Get("inspect")
	}

	s := &Server{
		engine:  gin.New(),
		config:  cfg,
		source:  src,
		health:  health,
		service: service,
		log:     log.WithComponent("inspect"),
	}
	s.engine.Use(gin.Recovery(), requestLogger(s.log))
	s.routes()

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.port()),
		Handler:      h2c.NewHandler(s.engine, h2s),
		ReadTimeout:  seconds(cfg.ReadTimeout),
		WriteTimeout: seconds(cfg.WriteTimeout),
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/bindings", s.handleBindings)
	s.engine.GET("/scopes", s.handleScopes)
	s.engine.GET("/levels", s.handleLevels)
}

// Handler returns the HTTP handler, h2c included.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the port and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("inspect: failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Inspection server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("Inspection server started", map[string]interface{}{
		"addr": ln.Addr().String(),
	})
	return nil
}

// Stop shuts the server down with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Inspection server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("inspect: shutdown: %w", err)
	}
	s.log.Info("Inspection server stopped")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

type healthReport struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Components []component.Health     `json:"components,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	report := healthReport{Service: s.service, Status: component.StatusHealthy}
	if s.health != nil {
		report.Components = s.health.HealthAll(c.Request.Context())
	}
	for _, h := range report.Components {
		switch h.Status {
		case component.StatusUnhealthy:
			report.Status = component.StatusUnhealthy
		case component.StatusDegraded:
			if report.Status == component.StatusHealthy {
				report.Status = component.StatusDegraded
			}
		}
	}

	status := http.StatusOK
	if report.Status == component.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, DataResponse{Data: report})
}

func (s *Server) handleVersion(c *gin.Context) {
	RespondOK(c, version.GetVersionInfo())
}

func (s *Server) handleBindings(c *gin.Context) {
	RespondOK(c, s.source.Bindings())
}

func (s *Server) handleScopes(c *gin.Context) {
	RespondOK(c, s.source.ActiveScopes().Strings())
}

func (s *Server) handleLevels(c *gin.Context) {
	report, err := Analyze(s.source)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, report)
}

// requestLogger logs each request at a level derived from its status.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
		}
		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}
