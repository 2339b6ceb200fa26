package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/task"
	"github.com/will-hwang/ml-commons/frontend/cli/pkg/terminal"
)

type taskDeleteOptions struct {
	Force bool
}

func NewTaskDeleteCmd() *cobra.Command {
	options := &taskDeleteOptions{}

	cmd := &cobra.Command{
		Use:     "delete <task-id>... [flags]",
		Short:   "Delete one or more tasks",
		Aliases: []string{"rm"},
		Example: `  # Delete a task
  ml-commons task delete 3b1f6a4e

  # Delete several tasks without confirmation
  ml-commons task rm 3b1f6a4e 9c2d7e10 --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !options.Force && !confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), "task", args) {
				return nil
			}

			client := getAPIClient(cmd.Context())
			for _, id := range args {
				receipt, err := client.DeleteTask(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to delete task %s: %w", id, clientError(cmd, err))
				}

				if receipt.Result == task.ResultNotFound {
					fmt.Fprintf(cmd.OutOrStdout(), "%s Task %s not found\n", terminal.WarningSymbol, id)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Task %s deleted (version %d)\n", terminal.SuccessSymbol, id, receipt.Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&options.Force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}
