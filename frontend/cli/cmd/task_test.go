package cmd

import (
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/mock/gomock"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/task"
	"github.com/will-hwang/ml-commons/frontend/cli/cmd/mocks"
)

var taskCreateTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testTask(id string, state task.State) *task.Task {
	return &task.Task{
		ID:             id,
		ModelID:        "model-1",
		Type:           task.TypePrediction,
		FunctionName:   "KMEANS",
		State:          state,
		CreateTime:     taskCreateTime,
		LastUpdateTime: taskCreateTime,
	}
}

func testTaskDisplay(id string, state task.State) *TaskDisplay {
	return &TaskDisplay{
		ID:           id,
		Type:         string(task.TypePrediction),
		State:        string(state),
		ModelID:      "model-1",
		FunctionName: "KMEANS",
		CreateTime:   taskCreateTime,
	}
}

func taskCmpOptions() []cmp.Option {
	return []cmp.Option{cmpopts.IgnoreFields(TaskDisplay{}, "Age")}
}

func TestTaskGet(t *testing.T) {
	setup := &TestSetup{CmpOptions: taskCmpOptions()}

	setup.RunTests(t, []TestScenario{
		{
			Name:    "success - table output",
			Command: []string{"task", "get", "task-1"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().GetTask(gomock.Any(), "task-1").Return(testTask("task-1", task.StateCompleted), nil)
			},
			Expected: TestExpectation{
				RenderedObjects: testTaskDisplay("task-1", task.StateCompleted),
				RenderFormat:    OutputFormatTable,
			},
		},
		{
			Name:    "success - yaml output",
			Command: []string{"task", "get", "task-1", "-o", "yml"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().GetTask(gomock.Any(), "task-1").Return(testTask("task-1", task.StateRunning), nil)
			},
			Expected: TestExpectation{
				RenderedObjects: testTaskDisplay("task-1", task.StateRunning),
				RenderFormat:    OutputFormatYAML,
			},
		},
		{
			Name:    "error - not found",
			Command: []string{"task", "get", "missing"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().GetTask(gomock.Any(), "missing").
					Return(nil, connect.NewError(connect.CodeNotFound, nil))
			},
			Expected: TestExpectation{
				Error: "not_found",
			},
		},
		{
			Name:    "error - invalid output format",
			Command: []string{"task", "get", "task-1", "-o", "xml"},
			Expected: TestExpectation{
				Error: `invalid argument "xml" for "-o, --output" flag: must be one of "table", "json", "yaml", or "markdown"`,
			},
		},
	})
}

func TestTaskList(t *testing.T) {
	setup := &TestSetup{CmpOptions: taskCmpOptions()}

	setup.RunTests(t, []TestScenario{
		{
			Name:    "success - all tasks",
			Command: []string{"task", "list"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().ListTasks(gomock.Any(), &api.ListTasksRequest{}).Return([]*task.Task{
					testTask("task-1", task.StateCompleted),
					testTask("task-2", task.StateFailed),
				}, nil)
			},
			Expected: TestExpectation{
				RenderedObjects: []*TaskDisplay{
					testTaskDisplay("task-1", task.StateCompleted),
					testTaskDisplay("task-2", task.StateFailed),
				},
				RenderFormat: OutputFormatTable,
			},
		},
		{
			Name:    "success - filters are forwarded",
			Command: []string{"task", "ls", "--state", "RUNNING", "--model-id", "model-1", "--limit", "5", "-o", "json"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().ListTasks(gomock.Any(), &api.ListTasksRequest{
					State:   "RUNNING",
					ModelID: "model-1",
					Limit:   5,
				}).Return(nil, nil)
			},
			Expected: TestExpectation{
				RenderedObjects: []*TaskDisplay{},
				RenderFormat:    OutputFormatJSON,
			},
		},
		{
			Name:    "error - server rejects filter",
			Command: []string{"task", "list", "--limit=-1"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().ListTasks(gomock.Any(), &api.ListTasksRequest{Limit: -1}).
					Return(nil, connect.NewError(connect.CodeInvalidArgument, nil))
			},
			Expected: TestExpectation{
				Error: "invalid_argument",
			},
		},
	})
}

func TestTaskCreate(t *testing.T) {
	setup := &TestSetup{CmpOptions: taskCmpOptions()}

	setup.RunTests(t, []TestScenario{
		{
			Name:    "success - create task",
			Command: []string{"task", "create", "--id", "task-1", "--type", "PREDICTION", "--model-id", "model-1", "--function-name", "KMEANS"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().CreateTask(gomock.Any(), &api.CreateTaskRequest{
					TaskID:       "task-1",
					ModelID:      "model-1",
					Type:         "PREDICTION",
					FunctionName: "KMEANS",
				}).Return(testTask("task-1", task.StateCreated), nil)
			},
			Expected: TestExpectation{
				RenderedObjects: testTaskDisplay("task-1", task.StateCreated),
				RenderFormat:    OutputFormatTable,
			},
		},
		{
			Name:    "error - type is required",
			Command: []string{"task", "create", "--id", "task-1"},
			Expected: TestExpectation{
				Error: `required flag(s) "type" not set`,
			},
		},
		{
			Name:    "error - duplicate id",
			Command: []string{"task", "create", "--id", "task-1", "--type", "TRAINING", "--state", "COMPLETED", "--async"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().CreateTask(gomock.Any(), &api.CreateTaskRequest{
					TaskID: "task-1",
					Type:   "TRAINING",
					State:  "COMPLETED",
					Async:  true,
				}).Return(nil, connect.NewError(connect.CodeAlreadyExists, nil))
			},
			Expected: TestExpectation{
				Error: "already_exists",
			},
		},
	})
}
