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

	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/manager"
	"github.com/forgekit/forgekit/server/middleware"
	"github.com/forgekit/forgekit/settings"
)

// NewEngine creates a Gin engine with the mode derived from the global log
// level and no middleware applied. Route registration goes through the
// routes.Registrar over this engine.
func NewEngine() *gin.Engine {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.New()
}

// Server is the hosting HTTP server backed by Gin. It participates in the
// manager lifecycle under the services capability; the listener binds during
// Start against the finalized runtime configuration.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	log        *logger.Logger
}

// New creates a Server over the given engine and applies the standard
// middleware stack: recovery, request-ID, and request logging.
func New(engine *gin.Engine) *Server {
	s := &Server{
		engine: engine,
		log:    logger.WithComponent("server"),
	}
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger())
	return s
}

// Engine returns the underlying Gin engine for route registration.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Name returns "services".
func (s *Server) Name() string { return manager.CapServices }

// Capabilities registers the server under the services tag.
func (s *Server) Capabilities() []string { return []string{manager.CapServices} }

// Start reads the listen configuration from the runtime settings, binds the
// port, and begins serving. It returns once the listener is bound; serving
// continues in a goroutine.
func (s *Server) Start(ctx context.Context, cfg *settings.RuntimeConfig) error {
	conf := FromSettings(cfg)
	if err := conf.Validate(); err != nil {
		return err
	}

	// h2c allows HTTP/2 cleartext alongside HTTP/1.1 on the same port.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:         conf.Addr(),
		Handler:      h2c.NewHandler(s.engine, h2s),
		ReadTimeout:  time.Duration(conf.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(conf.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(conf.IdleTimeout) * time.Second,
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound listen address, "" before Start.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}
