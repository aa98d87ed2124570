package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// shutdownGrace bounds how long in-flight conversation turns may finish
const shutdownGrace = 30 * time.Second

// Handler returns the routes wrapped in HTTP instrumentation
func (s *Server) Handler() http.Handler {
	return s.Observability.HTTPMiddleware()(s.setupRoutes())
}

// Start serves until ctx is cancelled, then drains open requests and releases
// the session store.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.displayServerInfo()

	serveErr := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", httpServer.Addr,
			"completion_policy", s.Controller.Policy(),
			"session_store", s.Sessions.StoreKind())
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, draining conversations", "grace", shutdownGrace.String())
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(drainCtx); err != nil {
		s.Logger.LogError(err, "Graceful shutdown timed out, closing connections")
		return httpServer.Close()
	}
	s.Logger.Info("Server stopped")
	return nil
}

// Close stops the rate limiter and closes the session store
func (s *Server) Close() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
	if err := s.Sessions.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close session store")
	}
}
