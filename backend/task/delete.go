package task

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/will-hwang/ml-commons/backend/analytics"
	"github.com/will-hwang/ml-commons/backend/event"
	"github.com/will-hwang/ml-commons/shared"
)

const (
	MsgTaskNotFound = "Fail to find task"
	MsgTaskRunning  = "Task cannot be deleted in running state. Try after sometime"
)

type DeleteRequest struct {
	TaskID string
}

// DeleteAction removes a task record unless the task is still running. Each
// Execute issues at most one Get and one Delete against the store and never
// retries.
type DeleteAction struct {
	store     Store
	contexts  ContextSource
	bus       *event.Bus
	analytics analytics.Client
	metrics   *Metrics
	logger    *slog.Logger
}

type DeleteOption func(*DeleteAction)

func WithContextSource(source ContextSource) DeleteOption {
	return func(a *DeleteAction) {
		a.contexts = source
	}
}

func WithEventBus(bus *event.Bus) DeleteOption {
	return func(a *DeleteAction) {
		a.bus = bus
	}
}

func WithAnalytics(client analytics.Client) DeleteOption {
	return func(a *DeleteAction) {
		a.analytics = client
	}
}

func WithMetrics(metrics *Metrics) DeleteOption {
	return func(a *DeleteAction) {
		a.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) DeleteOption {
	return func(a *DeleteAction) {
		a.logger = logger
	}
}

func NewDeleteAction(store Store, opts ...DeleteOption) *DeleteAction {
	action := &DeleteAction{
		store:     store,
		contexts:  SystemContext{},
		analytics: analytics.Noop{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(action)
	}
	return action
}

func (a *DeleteAction) Execute(ctx context.Context, req DeleteRequest) (*DeleteReceipt, error) {
	logger := a.logger.With("task_id", req.TaskID)

	if strings.TrimSpace(req.TaskID) == "" {
		a.metrics.observeDelete(outcomeInvalidArgument)
		return nil, shared.NewInvalidArgument("task id must not be empty")
	}

	storeCtx, release, err := a.contexts.Acquire(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to acquire context for task delete", "error", err)
		a.metrics.observeDelete(outcomeContextError)
		return nil, shared.Wrap(shared.KindContextAcquisition, err)
	}
	defer release()

	t, err := a.store.Get(storeCtx, req.TaskID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		logger.ErrorContext(ctx, "failed to get task", "error", err)
		a.metrics.observeDelete(outcomeStoreError)
		return nil, shared.Wrap(shared.KindStore, err)
	}
	if err != nil || t == nil {
		logger.WarnContext(ctx, "task to delete does not exist")
		a.metrics.observeDelete(outcomeNotFound)
		return nil, shared.NewResourceNotFound(MsgTaskNotFound)
	}

	if !t.State.Deletable() {
		logger.WarnContext(ctx, "refusing to delete task", "state", t.State)
		a.metrics.observeDelete(outcomeRunning)
		analytics.EmitTaskDeleteRejected(a.analytics, req.TaskID, string(t.State))
		return nil, shared.NewInvalidState(MsgTaskRunning)
	}

	receipt, err := a.store.Delete(storeCtx, req.TaskID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete task", "error", err)
		a.metrics.observeDelete(outcomeStoreError)
		return nil, shared.Wrap(shared.KindStore, err)
	}

	logger.InfoContext(ctx, "task deleted", "result", receiptResult(receipt))
	a.metrics.observeDelete(outcomeDeleted)
	analytics.EmitTaskDeleted(a.analytics, req.TaskID, receiptResult(receipt))
	if a.bus != nil {
		event.Publish(a.bus, event.TaskDeletedEvent{TaskID: req.TaskID, Version: receiptVersion(receipt)})
	}

	return receipt, nil
}

func receiptResult(r *DeleteReceipt) string {
	if r == nil {
		return ""
	}
	return string(r.Result)
}

func receiptVersion(r *DeleteReceipt) int64 {
	if r == nil {
		return 0
	}
	return r.Version
}
