package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/will-hwang/ml-commons/backend/api/auth"
	"github.com/will-hwang/ml-commons/backend/task"
	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/listener"
)

// Server serves a Handler on the listener a Provider creates.
type Server struct {
	provider listener.Provider
	server   *http.Server
	logger   *slog.Logger

	closeOnce sync.Once
}

func NewServer(handler http.Handler, provider listener.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		provider: provider,
		logger:   logger,
		server: &http.Server{
			Handler:           handler,
			ConnContext:       auth.ConnContext,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Serve blocks until the server stops. A stop caused by Shutdown is not an
// error.
func (s *Server) Serve() error {
	l, err := s.provider.Create()
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.logger.Info("api server listening", "address", listenerAddr(l), "activation", s.provider.ActivationType())

	err = s.server.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.closeOnce.Do(func() {
		if closeErr := s.provider.Close(); closeErr != nil {
			s.logger.Warn("failed to close listener", "error", closeErr)
		}
	})
	return err
}

func listenerAddr(l net.Listener) string {
	return l.Addr().Network() + "://" + l.Addr().String()
}

func apiError(err error) error {
	if err == nil {
		return nil
	}
	if connect.CodeOf(err) != connect.CodeUnknown {
		return err
	}

	if errors.Is(err, task.ErrAlreadyExists) {
		return connect.NewError(connect.CodeAlreadyExists, sanitizeError(err))
	}

	switch shared.KindOf(err) {
	case shared.KindResourceNotFound:
		return connect.NewError(connect.CodeNotFound, sanitizeError(err))
	case shared.KindInvalidState:
		return connect.NewError(connect.CodeFailedPrecondition, sanitizeError(err))
	case shared.KindInvalidArgument:
		return connect.NewError(connect.CodeInvalidArgument, sanitizeError(err))
	}

	return connect.NewError(connect.CodeInternal, sanitizeError(err))
}

// sanitizeError keeps only the message so internal error types never reach
// the wire.
func sanitizeError(err error) error {
	return errors.New(err.Error())
}
