package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/posthog/posthog-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"

	"github.com/will-hwang/ml-commons/backend/event"
	"github.com/will-hwang/ml-commons/backend/task"
	"github.com/will-hwang/ml-commons/backend/task/mocks"
	"github.com/will-hwang/ml-commons/shared"
)

const taskID = "task-7f3a"

func TestDeleteAction_Execute(t *testing.T) {
	t.Parallel()

	receipt := &task.DeleteReceipt{ID: taskID, Result: task.ResultDeleted, Version: 4}

	tests := []struct {
		name        string
		taskID      string
		setup       func(store *mocks.MockStore, contexts *mocks.MockContextSource)
		wantReceipt *task.DeleteReceipt
		wantErr     string
		wantKind    shared.ErrorKind
	}{
		{
			name:   "completed task is deleted",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(&task.Task{ID: taskID, State: task.StateCompleted}, nil).Times(1)
				store.EXPECT().Delete(gomock.Any(), taskID).Return(receipt, nil).Times(1)
			},
			wantReceipt: receipt,
		},
		{
			name:   "running task is rejected",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(&task.Task{ID: taskID, State: task.StateRunning}, nil).Times(1)
				store.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "Task cannot be deleted in running state. Try after sometime",
			wantKind: shared.KindInvalidState,
		},
		{
			name:   "store reports absence",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(nil, task.ErrNotFound).Times(1)
				store.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "Fail to find task",
			wantKind: shared.KindResourceNotFound,
		},
		{
			name:   "store reports wrapped absence",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(nil, errors.Join(errors.New("index .ml_task"), task.ErrNotFound)).Times(1)
				store.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "Fail to find task",
			wantKind: shared.KindResourceNotFound,
		},
		{
			name:   "store returns nil task",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(nil, nil).Times(1)
				store.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "Fail to find task",
			wantKind: shared.KindResourceNotFound,
		},
		{
			name:   "context acquisition failure",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				contexts.EXPECT().Acquire(gomock.Any()).Return(nil, nil, errors.New("thread context error")).Times(1)
				store.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				store.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "thread context error",
			wantKind: shared.KindContextAcquisition,
		},
		{
			name:   "get failure passes through",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(nil, errors.New("shard unavailable")).Times(1)
				store.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "shard unavailable",
			wantKind: shared.KindStore,
		},
		{
			name:   "delete failure passes through",
			taskID: taskID,
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				expectContext(contexts)
				store.EXPECT().Get(gomock.Any(), taskID).Return(&task.Task{ID: taskID, State: task.StateFailed}, nil).Times(1)
				store.EXPECT().Delete(gomock.Any(), taskID).Return(nil, errors.New("failed to delete response")).Times(1)
			},
			wantErr:  "failed to delete response",
			wantKind: shared.KindStore,
		},
		{
			name:   "empty id",
			taskID: "  ",
			setup: func(store *mocks.MockStore, contexts *mocks.MockContextSource) {
				contexts.EXPECT().Acquire(gomock.Any()).Times(0)
				store.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr:  "task id must not be empty",
			wantKind: shared.KindInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			contexts := mocks.NewMockContextSource(ctrl)
			tt.setup(store, contexts)

			action := task.NewDeleteAction(store, task.WithContextSource(contexts))
			got, err := action.Execute(context.Background(), task.DeleteRequest{TaskID: tt.taskID})

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got receipt %+v", tt.wantErr, got)
				}
				if err.Error() != tt.wantErr {
					t.Errorf("error message = %q, want %q", err.Error(), tt.wantErr)
				}
				if kind := shared.KindOf(err); kind != tt.wantKind {
					t.Errorf("error kind = %v, want %v", kind, tt.wantKind)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantReceipt {
				t.Errorf("receipt was not returned unchanged")
			}
			if diff := cmp.Diff(tt.wantReceipt, got); diff != "" {
				t.Errorf("receipt mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeleteAction_NonRunningStatesAreDeletable(t *testing.T) {
	t.Parallel()

	for _, state := range task.States() {
		if state == task.StateRunning {
			continue
		}

		t.Run(string(state), func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			receipt := &task.DeleteReceipt{ID: taskID, Result: task.ResultDeleted, Version: 1}
			store.EXPECT().Get(gomock.Any(), taskID).Return(&task.Task{ID: taskID, State: state}, nil).Times(1)
			store.EXPECT().Delete(gomock.Any(), taskID).Return(receipt, nil).Times(1)

			got, err := task.NewDeleteAction(store).Execute(context.Background(), task.DeleteRequest{TaskID: taskID})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != receipt {
				t.Errorf("receipt was not returned unchanged")
			}
		})
	}
}

func TestDeleteAction_SideEffects(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), taskID).Return(&task.Task{ID: taskID, State: task.StateCancelled}, nil)
	store.EXPECT().Delete(gomock.Any(), taskID).Return(&task.DeleteReceipt{ID: taskID, Result: task.ResultDeleted, Version: 9}, nil)

	bus := event.NewBus(nil)
	defer bus.Close()
	events, sub := event.SubscribeChannel[event.TaskDeletedEvent](bus, 1, nil)
	defer sub.Unsubscribe()

	tracker := &captureClient{}
	registry := prometheus.NewRegistry()

	action := task.NewDeleteAction(store,
		task.WithEventBus(bus),
		task.WithAnalytics(tracker),
		task.WithMetrics(task.NewMetrics(registry)),
	)

	if _, err := action.Execute(context.Background(), task.DeleteRequest{TaskID: taskID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case e := <-events:
		if diff := cmp.Diff(event.TaskDeletedEvent{TaskID: taskID, Version: 9}, e); diff != "" {
			t.Errorf("event mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(time.Second):
		t.Fatal("expected TaskDeletedEvent")
	}

	if len(tracker.events) != 1 || tracker.events[0] != "task_deleted" {
		t.Errorf("analytics events = %v, want [task_deleted]", tracker.events)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 1 || families[0].GetName() != "mlcommons_task_delete_requests_total" {
		t.Fatalf("unexpected metric families: %v", families)
	}
}

func TestSystemContext(t *testing.T) {
	t.Parallel()

	ctx, release, err := task.SystemContext{Timeout: time.Minute}.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	if actor := task.ActorFrom(ctx); actor != task.SystemActor {
		t.Errorf("actor = %q, want %q", actor, task.SystemActor)
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected deadline on acquired context")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := (task.SystemContext{}).Acquire(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseState(t *testing.T) {
	t.Parallel()

	got, err := task.ParseState("completed_with_error")
	if err != nil || got != task.StateCompletedWithError {
		t.Errorf("ParseState = %q, %v", got, err)
	}
	if _, err := task.ParseState("PAUSED"); err == nil {
		t.Error("expected error for unknown state")
	}
}

func expectContext(contexts *mocks.MockContextSource) {
	contexts.EXPECT().Acquire(gomock.Any()).DoAndReturn(func(ctx context.Context) (context.Context, func(), error) {
		return task.WithActor(ctx, task.SystemActor), func() {}, nil
	}).Times(1)
}

type captureClient struct {
	events []string
}

func (c *captureClient) Enqueue(m posthog.Message) error {
	if capture, ok := m.(posthog.Capture); ok {
		c.events = append(c.events, capture.Event)
	}
	return nil
}

func (c *captureClient) Close() error { return nil }
