package api

import (
	"context"
	"errors"
	"time"

	"github.com/will-hwang/ml-commons/backend/api/auth"
	"github.com/will-hwang/ml-commons/backend/task"
)

var errNoIdentity = errors.New("request carries no caller identity")

// RequestContext runs store calls on behalf of the authenticated caller.
type RequestContext struct {
	Timeout time.Duration
}

var _ task.ContextSource = RequestContext{}

func (c RequestContext) Acquire(ctx context.Context) (context.Context, func(), error) {
	if err := context.Cause(ctx); err != nil {
		return nil, nil, err
	}

	identity := auth.FromContext(ctx)
	if identity == nil {
		return nil, nil, errNoIdentity
	}

	ctx = task.WithActor(ctx, identity.Subject)
	if c.Timeout <= 0 {
		return ctx, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	return ctx, cancel, nil
}
