package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Interceptor attaches an Identity to every request. Unix socket callers are
// trusted as the local admin. Tcp callers must present the configured bearer
// token; without one configured they run as anonymous.
type Interceptor struct {
	verifier             *TokenVerifier
	unauthenticatedPaths map[string]bool
}

var _ connect.Interceptor = (*Interceptor)(nil)

func NewInterceptor(verifier *TokenVerifier, unauthenticatedPaths ...string) *Interceptor {
	paths := make(map[string]bool, len(unauthenticatedPaths))
	for _, p := range unauthenticatedPaths {
		paths[p] = true
	}
	return &Interceptor{verifier: verifier, unauthenticatedPaths: paths}
}

func (a *Interceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}

		identity, err := a.authenticate(ctx, req.Spec(), req.Header())
		if err != nil {
			return nil, err
		}
		slog.DebugContext(ctx, "rpc authenticated", "procedure", req.Spec().Procedure, "caller", identity)
		return next(WithIdentity(ctx, identity), req)
	}
}

func (a *Interceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (a *Interceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, shc connect.StreamingHandlerConn) error {
		identity, err := a.authenticate(ctx, shc.Spec(), shc.RequestHeader())
		if err != nil {
			return err
		}
		return next(WithIdentity(ctx, identity), shc)
	}
}

func (a *Interceptor) authenticate(ctx context.Context, spec connect.Spec, header http.Header) (*Identity, error) {
	if a.unauthenticatedPaths[spec.Procedure] {
		return anonymous(), nil
	}

	if TransportFromContext(ctx) == TransportUnix {
		return &Identity{
			Subject:    SubjectLocalAdmin,
			AuthMethod: AuthMethodUnixSocket,
			Local:      true,
		}, nil
	}

	if a.verifier == nil {
		return anonymous(), nil
	}

	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing authorization header"))
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid authorization format"))
	}

	if !a.verifier.Verify(token) {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid token"))
	}

	return &Identity{Subject: SubjectToken, AuthMethod: AuthMethodToken}, nil
}
