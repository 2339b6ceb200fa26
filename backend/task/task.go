package task

import (
	"fmt"
	"strings"
	"time"
)

type State string

const (
	StateCreated            State = "CREATED"
	StateRunning            State = "RUNNING"
	StateCompleted          State = "COMPLETED"
	StateFailed             State = "FAILED"
	StateCancelled          State = "CANCELLED"
	StateCompletedWithError State = "COMPLETED_WITH_ERROR"
)

var states = []State{
	StateCreated,
	StateRunning,
	StateCompleted,
	StateFailed,
	StateCancelled,
	StateCompletedWithError,
}

func States() []State {
	return append([]State(nil), states...)
}

func ParseState(s string) (State, error) {
	for _, state := range states {
		if strings.EqualFold(s, string(state)) {
			return state, nil
		}
	}
	return "", fmt.Errorf("unknown task state %q", s)
}

// Deletable reports whether a task in this state may be removed.
func (s State) Deletable() bool {
	return s != StateRunning
}

type Type string

const (
	TypeTraining              Type = "TRAINING"
	TypePrediction            Type = "PREDICTION"
	TypeTrainingAndPrediction Type = "TRAINING_AND_PREDICTION"
	TypeDeployModel           Type = "DEPLOY_MODEL"
	TypeRegisterModel         Type = "REGISTER_MODEL"
	TypeBatchPrediction       Type = "BATCH_PREDICTION"
)

var types = []Type{
	TypeTraining,
	TypePrediction,
	TypeTrainingAndPrediction,
	TypeDeployModel,
	TypeRegisterModel,
	TypeBatchPrediction,
}

func ParseType(s string) (Type, error) {
	for _, t := range types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

type Task struct {
	ID             string    `json:"task_id"`
	ModelID        string    `json:"model_id,omitempty"`
	Type           Type      `json:"task_type"`
	FunctionName   string    `json:"function_name,omitempty"`
	State          State     `json:"state"`
	Progress       float64   `json:"progress,omitempty"`
	WorkerNodes    []string  `json:"worker_node,omitempty"`
	Error          string    `json:"error,omitempty"`
	Async          bool      `json:"is_async"`
	CreateTime     time.Time `json:"create_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
}
