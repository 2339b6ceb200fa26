package cmd

import (
	"github.com/spf13/cobra"
)

type taskGetOptions struct {
	RenderOptions RenderOptions
}

func NewTaskGetCmd() *cobra.Command {
	options := &taskGetOptions{}

	cmd := &cobra.Command{
		Use:   "get <task-id> [flags]",
		Short: "Show a task",
		Example: `  # Show a task
  ml-commons task get 3b1f6a4e

  # Show a task as YAML
  ml-commons task get 3b1f6a4e -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient(cmd.Context())

			t, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return clientError(cmd, err)
			}

			return getRenderer(cmd.Context()).Render(cmd.OutOrStdout(), ConvertTaskToDisplay(t), &options.RenderOptions)
		},
	}

	addRenderOptions(cmd, &options.RenderOptions)
	return cmd
}
