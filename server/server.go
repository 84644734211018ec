// Package server exposes a Dispatcher over HTTP with gin, serving cleartext
// HTTP/2 alongside HTTP/1.1.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/oswald/di"
	"github.com/kbukum/oswald/feature"
	"github.com/kbukum/oswald/logger"
	"github.com/kbukum/oswald/server/middleware"
)

// Registry lists what a container can construct.
type Registry interface {
	Registrations() []di.RegistrationInfo
}

// Server is the HTTP transport over a Dispatcher.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	dispatcher *feature.Dispatcher
	registry   Registry
	config     Config
	service    string
	log        *logger.Logger
}

// New creates a Server with its middleware and routes installed.
func New(cfg Config, service string, d *feature.Dispatcher, registry Registry, log *logger.Logger) *Server {
	if gin.Mode() != gin.TestMode {
		if zerolog.GlobalLevel() <= zerolog.DebugLevel {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	s := &Server{
		engine:     gin.New(),
		dispatcher: d,
		registry:   registry,
		config:     cfg,
		service:    service,
		log:        log.WithComponent("server"),
	}

	s.engine.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.BodySizeLimit(cfg.MaxBodyBytes),
		middleware.RequestLogger(s.log),
	)
	s.routes()

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h2c.NewHandler(s.engine, h2s),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/dispatch/:trigger", s.handleDispatch)
	v1.GET("/features", s.handleFeatures)
	v1.GET("/registrations", s.handleRegistrations)

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/info", s.handleInfo)
}

// Handler returns the root handler, h2c included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}

// Run starts the server and blocks until ctx is done, then stops it.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop(context.WithoutCancel(ctx))
}
