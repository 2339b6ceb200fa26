package auth

import (
	"context"
	"log/slog"
)

type AuthMethod int

const (
	AuthMethodUnspecified AuthMethod = iota
	AuthMethodUnixSocket
	AuthMethodToken
	AuthMethodNone
)

func (a AuthMethod) String() string {
	switch a {
	case AuthMethodUnixSocket:
		return "unix_socket"
	case AuthMethodToken:
		return "token"
	case AuthMethodNone:
		return "none"
	default:
		return "unspecified"
	}
}

// Subjects recorded as the actor of task deletions and interactions.
const (
	SubjectLocalAdmin = "local-admin"
	SubjectToken      = "token"
	SubjectAnonymous  = "anonymous"
)

// Identity is the caller an ML Commons RPC runs on behalf of. Local callers on
// the unix socket are Local; everything arriving over tcp is not.
type Identity struct {
	Subject    string
	AuthMethod AuthMethod
	Local      bool
}

func (i *Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subject", i.Subject),
		slog.String("method", i.AuthMethod.String()),
		slog.Bool("local", i.Local),
	)
}

func anonymous() *Identity {
	return &Identity{Subject: SubjectAnonymous, AuthMethod: AuthMethodNone}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext returns nil for contexts that never passed the interceptor.
func FromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey{}).(*Identity)
	return identity
}
