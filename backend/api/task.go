package api

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/will-hwang/ml-commons/backend/task"
	"github.com/will-hwang/ml-commons/shared"
)

// TaskStore is the storage the task service needs on top of task.Store.
type TaskStore interface {
	task.Store
	Create(ctx context.Context, t *task.Task) error
	List(ctx context.Context, filter task.ListFilter) ([]*task.Task, error)
}

type TaskHandler struct {
	store  TaskStore
	delete *task.DeleteAction
}

func NewTaskHandler(store TaskStore, deleteAction *task.DeleteAction) *TaskHandler {
	return &TaskHandler{
		store:  store,
		delete: deleteAction,
	}
}

func (h *TaskHandler) CreateTask(ctx context.Context, req *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error) {
	taskType, err := task.ParseType(string(req.Msg.Type))
	if err != nil {
		return nil, apiError(shared.NewInvalidArgument("%s", err))
	}

	state := task.StateCreated
	if req.Msg.State != "" {
		state, err = task.ParseState(string(req.Msg.State))
		if err != nil {
			return nil, apiError(shared.NewInvalidArgument("%s", err))
		}
	}

	t := &task.Task{
		ID:           strings.TrimSpace(req.Msg.TaskID),
		ModelID:      req.Msg.ModelID,
		Type:         taskType,
		FunctionName: req.Msg.FunctionName,
		State:        state,
		Async:        req.Msg.Async,
	}
	if err := h.store.Create(ctx, t); err != nil {
		return nil, apiError(err)
	}

	return connect.NewResponse(&CreateTaskResponse{Task: t}), nil
}

func (h *TaskHandler) GetTask(ctx context.Context, req *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error) {
	id := strings.TrimSpace(req.Msg.TaskID)
	if id == "" {
		return nil, apiError(shared.NewInvalidArgument("task id must not be empty"))
	}

	t, err := h.store.Get(ctx, id)
	if err != nil && !errors.Is(err, task.ErrNotFound) {
		return nil, apiError(shared.Wrap(shared.KindStore, err))
	}
	if err != nil || t == nil {
		return nil, apiError(shared.NewResourceNotFound(task.MsgTaskNotFound))
	}

	return connect.NewResponse(&GetTaskResponse{Task: t}), nil
}

func (h *TaskHandler) ListTasks(ctx context.Context, req *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error) {
	if req.Msg.Limit < 0 {
		return nil, apiError(shared.NewInvalidArgument("limit must not be negative, got %d", req.Msg.Limit))
	}

	filter := task.ListFilter{
		ModelID: req.Msg.ModelID,
		Limit:   req.Msg.Limit,
	}
	if req.Msg.State != "" {
		state, err := task.ParseState(string(req.Msg.State))
		if err != nil {
			return nil, apiError(shared.NewInvalidArgument("%s", err))
		}
		filter.State = state
	}

	tasks, err := h.store.List(ctx, filter)
	if err != nil {
		return nil, apiError(shared.Wrap(shared.KindStore, err))
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	return connect.NewResponse(&ListTasksResponse{Tasks: tasks}), nil
}

func (h *TaskHandler) DeleteTask(ctx context.Context, req *connect.Request[DeleteTaskRequest]) (*connect.Response[DeleteTaskResponse], error) {
	receipt, err := h.delete.Execute(ctx, task.DeleteRequest{TaskID: req.Msg.TaskID})
	if err != nil {
		return nil, apiError(err)
	}

	res := &DeleteTaskResponse{}
	if receipt != nil {
		res.DeleteReceipt = *receipt
	}
	return connect.NewResponse(res), nil
}
