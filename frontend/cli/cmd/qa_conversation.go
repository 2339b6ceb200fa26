package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

func NewQAConversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversation",
		Short:   "Manage conversation memory",
		Aliases: []string{"conv"},
	}

	cmd.AddCommand(NewQAConversationCreateCmd())
	return cmd
}

type ConversationDisplay struct {
	ID         string    `json:"conversation_id" yaml:"conversation_id" table:"ID"`
	Name       string    `json:"name" yaml:"name" table:"NAME"`
	CreateTime time.Time `json:"create_time" yaml:"create_time" table:"-"`
}

type qaConversationCreateOptions struct {
	RenderOptions RenderOptions
}

func NewQAConversationCreateCmd() *cobra.Command {
	options := &qaConversationCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create <name> [flags]",
		Short: "Start a conversation",
		Example: `  # Start a conversation and pass its id to qa ask
  ml-commons qa conversation create "support session"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getAPIClient(cmd.Context())

			resp, err := client.CreateConversation(cmd.Context(), args[0])
			if err != nil {
				return clientError(cmd, err)
			}

			return getRenderer(cmd.Context()).Render(cmd.OutOrStdout(), &ConversationDisplay{
				ID:         resp.ConversationID,
				Name:       resp.Name,
				CreateTime: resp.CreateTime,
			}, &options.RenderOptions)
		},
	}

	addRenderOptions(cmd, &options.RenderOptions)
	return cmd
}
