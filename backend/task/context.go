package task

import (
	"context"
	"time"
)

// ContextSource hands out the request-scoped context store calls run under.
// The returned release func must be called once the work is done.
type ContextSource interface {
	Acquire(ctx context.Context) (context.Context, func(), error)
}

type actorKey struct{}

const SystemActor = "system"

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// SystemContext runs store calls on behalf of the system actor, bounded by
// Timeout when it is positive.
type SystemContext struct {
	Timeout time.Duration
}

var _ ContextSource = SystemContext{}

func (s SystemContext) Acquire(ctx context.Context) (context.Context, func(), error) {
	if err := context.Cause(ctx); err != nil {
		return nil, nil, err
	}

	ctx = WithActor(ctx, SystemActor)
	if s.Timeout <= 0 {
		return ctx, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	return ctx, cancel, nil
}
