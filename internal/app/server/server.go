package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	httpServer *http.Server
	notify     chan error
}

func New(address string, timeout time.Duration, idleTimeout time.Duration, handler http.Handler) *Server {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       idleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		notify:     make(chan error, 1),
	}
}

func (s *Server) Start() {
	go func() {
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.notify <- err
		}
		close(s.notify)
	}()
}

// Notify delivers the error that stopped the server, if any.
func (s *Server) Notify() <-chan error {
	return s.notify
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
