package api

import (
	"time"

	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/task"
)

const (
	TaskServiceName = "mlcommons.v1.TaskService"
	QAServiceName   = "mlcommons.v1.QAService"

	TaskServiceCreateTaskProcedure = "/" + TaskServiceName + "/CreateTask"
	TaskServiceGetTaskProcedure    = "/" + TaskServiceName + "/GetTask"
	TaskServiceListTasksProcedure  = "/" + TaskServiceName + "/ListTasks"
	TaskServiceDeleteTaskProcedure = "/" + TaskServiceName + "/DeleteTask"

	QAServiceAnswerProcedure             = "/" + QAServiceName + "/Answer"
	QAServiceCreateConversationProcedure = "/" + QAServiceName + "/CreateConversation"

	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

type CreateTaskRequest struct {
	TaskID       string     `json:"task_id,omitempty"`
	ModelID      string     `json:"model_id,omitempty"`
	Type         task.Type  `json:"task_type"`
	FunctionName string     `json:"function_name,omitempty"`
	State        task.State `json:"state,omitempty"`
	Async        bool       `json:"is_async,omitempty"`
}

type CreateTaskResponse struct {
	Task *task.Task `json:"task"`
}

type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

type GetTaskResponse struct {
	Task *task.Task `json:"task"`
}

type ListTasksRequest struct {
	State   task.State `json:"state,omitempty"`
	ModelID string     `json:"model_id,omitempty"`
	Limit   int        `json:"limit,omitempty"`
}

type ListTasksResponse struct {
	Tasks []*task.Task `json:"tasks"`
}

type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

type DeleteTaskResponse struct {
	task.DeleteReceipt
}

// AnswerRequest mirrors a search request that carries generative QA
// parameters: Ext holds the request's ext section and Hits the _source of
// each search hit, best match first.
type AnswerRequest struct {
	Ext  map[string]any   `json:"ext"`
	Hits []map[string]any `json:"hits,omitempty"`
}

type AnswerResponse struct {
	qa.Answer
}

type CreateConversationRequest struct {
	Name string `json:"name"`
}

type CreateConversationResponse struct {
	ConversationID string    `json:"conversation_id"`
	Name           string    `json:"name"`
	CreateTime     time.Time `json:"create_time"`
}
