package cmd

import (
	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/task"
)

type taskListOptions struct {
	State         string
	ModelID       string
	Limit         int
	RenderOptions RenderOptions
}

func NewTaskListCmd() *cobra.Command {
	options := &taskListOptions{}

	cmd := &cobra.Command{
		Use:     "list [flags]",
		Short:   "List tasks",
		Aliases: []string{"ls"},
		Example: `  # List all tasks
  ml-commons task list

  # List running tasks of one model as JSON
  ml-commons task ls --state RUNNING --model-id m-1 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient(cmd.Context())

			tasks, err := client.ListTasks(cmd.Context(), &api.ListTasksRequest{
				State:   task.State(options.State),
				ModelID: options.ModelID,
				Limit:   options.Limit,
			})
			if err != nil {
				return clientError(cmd, err)
			}

			displays := make([]*TaskDisplay, len(tasks))
			for i, t := range tasks {
				displays[i] = ConvertTaskToDisplay(t)
			}

			return getRenderer(cmd.Context()).Render(cmd.OutOrStdout(), displays, &options.RenderOptions)
		},
	}

	cmd.Flags().StringVar(&options.State, "state", "", "Only list tasks in this state")
	cmd.Flags().StringVar(&options.ModelID, "model-id", "", "Only list tasks of this model")
	cmd.Flags().IntVar(&options.Limit, "limit", 0, "Maximum number of tasks to list (0 for all)")
	addRenderOptions(cmd, &options.RenderOptions)

	return cmd
}
