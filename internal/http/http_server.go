package http

// this is entry point of the local status API

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/handlers"
	"gitlab.com/codearena.net/internal/handlers/status"
)

type Server struct {
	router      *mux.Router
	cfg         *config.StatusAPIConfig
	ServiceName string
	deps        status.Dependencies
	logger      primary.Logger

	srv      *http.Server
	listener net.Listener
}

func NewServer(cfg *config.StatusAPIConfig, serviceName string, deps status.Dependencies, logger primary.Logger) *Server {
	return &Server{
		cfg:         cfg,
		ServiceName: serviceName,
		deps:        deps,
		logger:      logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	mw := handlers.New(s.cfg.Token, s.logger)
	r.Use(mw.LoggingMiddleware, mw.TokenMiddleware)
	status.NewStatusHandler(s.deps, s.logger).RegisterRoutes(r)
	s.router = r
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the address and serves in the background. Binding errors are returned.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		if err := s.Init(); err != nil {
			return err
		}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Shutting down http server...")
	return s.srv.Shutdown(ctx)
}
