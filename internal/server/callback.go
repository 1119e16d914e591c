package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// DefaultCallbackTimeout bounds how long a login waits for the browser.
const DefaultCallbackTimeout = 2 * time.Minute

// CallbackServer is a short-lived HTTP server that receives one OAuth callback.
type CallbackServer struct {
	handler  *OAuthHandler
	listener net.Listener
	server   *http.Server
	logger   *log.Logger
}

// NewCallbackServer binds addr and routes the callback through the logging and recovery middleware.
// Port 0 picks a free port; see [CallbackServer.Addr].
func NewCallbackServer(addr string, handler *OAuthHandler, logger *log.Logger) (*CallbackServer, error) {
	logger = shared.ComponentLogger(logger, "oauth")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handler(handler)

	return &CallbackServer{
		handler:  handler,
		listener: ln,
		server:   &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		logger:   logger,
	}, nil
}

// Addr is the bound listen address.
func (s *CallbackServer) Addr() string {
	return s.listener.Addr().String()
}

// Wait serves until the callback arrives, ctx is done or timeout passes, then shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (OAuthResult, error) {
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("waiting for OAuth callback", "addr", s.Addr())
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer s.shutdown()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result OAuthResult
	select {
	case result = <-s.handler.Result():
	case err := <-serverErrors:
		return OAuthResult{}, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return OAuthResult{}, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return OAuthResult{}, ctx.Err()
	}

	if result.Error() != nil {
		return result, result.Error()
	}
	return result, nil
}

func (s *CallbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
	}
}
