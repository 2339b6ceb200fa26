package cmd

import (
	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/task"
)

type taskCreateOptions struct {
	ID            string
	Type          string
	ModelID       string
	FunctionName  string
	State         string
	Async         bool
	RenderOptions RenderOptions
}

func NewTaskCreateCmd() *cobra.Command {
	options := &taskCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create --type <type> [flags]",
		Short: "Register a task record",
		Example: `  # Create a prediction task with a generated id
  ml-commons task create --type PREDICTION --model-id m-1

  # Create a task in a given state
  ml-commons task create --id task-1 --type TRAINING --state COMPLETED`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient(cmd.Context())

			created, err := client.CreateTask(cmd.Context(), &api.CreateTaskRequest{
				TaskID:       options.ID,
				ModelID:      options.ModelID,
				Type:         task.Type(options.Type),
				FunctionName: options.FunctionName,
				State:        task.State(options.State),
				Async:        options.Async,
			})
			if err != nil {
				return clientError(cmd, err)
			}

			return getRenderer(cmd.Context()).Render(cmd.OutOrStdout(), ConvertTaskToDisplay(created), &options.RenderOptions)
		},
	}

	cmd.Flags().StringVar(&options.ID, "id", "", "Task id (generated when empty)")
	cmd.Flags().StringVarP(&options.Type, "type", "t", "", "Task type, e.g. PREDICTION or TRAINING")
	cmd.Flags().StringVar(&options.ModelID, "model-id", "", "Model the task belongs to")
	cmd.Flags().StringVar(&options.FunctionName, "function-name", "", "Function name, e.g. KMEANS or REMOTE")
	cmd.Flags().StringVar(&options.State, "state", "", "Initial state (default CREATED)")
	cmd.Flags().BoolVar(&options.Async, "async", false, "Mark the task as asynchronous")
	cmd.MarkFlagRequired("type")
	addRenderOptions(cmd, &options.RenderOptions)

	return cmd
}
