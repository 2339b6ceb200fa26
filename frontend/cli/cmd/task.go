package cmd

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/task"
)

func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Short:   "Create, inspect and delete ML tasks",
		Aliases: []string{"tasks"},
		GroupID: "resource",
	}

	cmd.AddCommand(NewTaskCreateCmd())
	cmd.AddCommand(NewTaskGetCmd())
	cmd.AddCommand(NewTaskListCmd())
	cmd.AddCommand(NewTaskDeleteCmd())
	return cmd
}

type TaskDisplay struct {
	ID           string    `json:"task_id" yaml:"task_id" table:"ID"`
	Type         string    `json:"task_type" yaml:"task_type" table:"TYPE"`
	State        string    `json:"state" yaml:"state" table:"STATE"`
	ModelID      string    `json:"model_id,omitempty" yaml:"model_id,omitempty" table:"MODEL"`
	FunctionName string    `json:"function_name,omitempty" yaml:"function_name,omitempty" table:"-"`
	Progress     float64   `json:"progress,omitempty" yaml:"progress,omitempty" table:"-"`
	WorkerNodes  []string  `json:"worker_node,omitempty" yaml:"worker_node,omitempty" table:"-"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty" table:"-"`
	Async        bool      `json:"is_async" yaml:"is_async" table:"ASYNC"`
	CreateTime   time.Time `json:"create_time" yaml:"create_time" table:"-"`
	Age          string    `json:"-" yaml:"-" table:"AGE"`
}

func ConvertTaskToDisplay(t *task.Task) *TaskDisplay {
	if t == nil {
		return nil
	}

	return &TaskDisplay{
		ID:           t.ID,
		Type:         string(t.Type),
		State:        string(t.State),
		ModelID:      t.ModelID,
		FunctionName: t.FunctionName,
		Progress:     t.Progress,
		WorkerNodes:  t.WorkerNodes,
		Error:        t.Error,
		Async:        t.Async,
		CreateTime:   t.CreateTime,
		Age:          humanize.Time(t.CreateTime),
	}
}
