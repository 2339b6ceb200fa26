package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/api/auth"
)

func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Manage API server tokens",
		GroupID: "system",
	}

	cmd.AddCommand(NewTokenGenerateCmd())
	return cmd
}

func NewTokenGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a bearer token for tcp clients",
		Example: `  # Generate a token and start the server with it
  export MLCOMMONS_SERVER_AUTH_TOKEN=$(ml-commons token generate)
  ml-commons serve --listen-http 127.0.0.1:9200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.GenerateToken()
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}
