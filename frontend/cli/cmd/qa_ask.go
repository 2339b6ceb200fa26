package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/xcontent"
	"github.com/will-hwang/ml-commons/frontend/cli/pkg/terminal"
	"github.com/will-hwang/ml-commons/shared/conv"
)

type qaAskOptions struct {
	ModelID          string
	ConversationID   string
	SystemPrompt     string
	UserInstructions string
	ContextSize      int
	InteractionSize  int
	Timeout          int
	ResponseField    string
	HitsFile         string
	HitsFormat       string
	Output           string
}

func NewQAAskCmd() *cobra.Command {
	options := &qaAskOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question> [flags]",
		Short: "Answer a question using search hits as context",
		Example: `  # Answer a question from the hits of a saved search response
  ml-commons qa ask "Who won the 2022 final?" --hits response.json --model openai/gpt-4o-mini

  # Continue a conversation and print the full answer as JSON
  ml-commons qa ask "And in 2018?" --hits response.json --conversation c-1 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &qa.Parameters{
				ConversationID:   options.ConversationID,
				ModelID:          options.ModelID,
				LLMQuestion:      strings.Join(args, " "),
				SystemPrompt:     options.SystemPrompt,
				UserInstructions: options.UserInstructions,
				LLMResponseField: options.ResponseField,
			}
			if cmd.Flags().Changed("context-size") {
				params.ContextSize = conv.Ptr(options.ContextSize)
			}
			if cmd.Flags().Changed("interaction-size") {
				params.InteractionSize = conv.Ptr(options.InteractionSize)
			}
			if cmd.Flags().Changed("timeout") {
				params.Timeout = conv.Ptr(options.Timeout)
			}
			if err := params.Validate(); err != nil {
				return err
			}

			var hits []map[string]any
			if options.HitsFile != "" {
				var err error
				hits, err = readHits(getFileSystem(cmd.Context()), options.HitsFile, options.HitsFormat)
				if err != nil {
					return err
				}
			}

			client := getAPIClient(cmd.Context())
			answer, err := client.Answer(cmd.Context(), &api.AnswerRequest{
				Ext:  qa.NewParamExtBuilder(params).ToMap(),
				Hits: hits,
			})
			if err != nil {
				return clientError(cmd, err)
			}

			switch options.Output {
			case "", "text":
				return printAnswer(cmd, answer)
			default:
				var format OutputFormat
				if err := format.Set(options.Output); err != nil {
					return err
				}
				return getRenderer(cmd.Context()).Render(cmd.OutOrStdout(), answer, &RenderOptions{Format: format})
			}
		},
	}

	cmd.Flags().StringVarP(&options.ModelID, "model", "m", "", "Model id, e.g. openai/gpt-4o-mini (server default when empty)")
	cmd.Flags().StringVarP(&options.ConversationID, "conversation", "c", "", "Conversation to read history from and append to")
	cmd.Flags().StringVar(&options.SystemPrompt, "system-prompt", "", "System prompt for the model")
	cmd.Flags().StringVar(&options.UserInstructions, "instructions", "", "Extra instructions appended to the prompt")
	cmd.Flags().IntVar(&options.ContextSize, "context-size", 0, "Number of search hits used as context")
	cmd.Flags().IntVar(&options.InteractionSize, "interaction-size", 0, "Number of past interactions included")
	cmd.Flags().IntVar(&options.Timeout, "timeout", 0, "Model call timeout in seconds")
	cmd.Flags().StringVar(&options.ResponseField, "response-field", "", "Dotted path of the answer in a raw model response")
	cmd.Flags().StringVar(&options.HitsFile, "hits", "", "Search response file whose hits are used as context")
	cmd.Flags().StringVar(&options.HitsFormat, "hits-format", "", "Format of the hits file (json, yaml, cbor)")
	cmd.Flags().StringVarP(&options.Output, "output", "o", "text", "Output format (text, json, yaml, markdown)")

	return cmd
}

// readHits returns the _source of every hit in a search response, in order.
func readHits(fs *afero.Afero, path, format string) ([]map[string]any, error) {
	t, err := contentTypeFor(path, format)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hits: %w", err)
	}

	response, err := xcontent.Unmarshal(t, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	outer, ok, err := response.Object("hits")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: not a search response, missing hits", path)
	}

	hits, err := outer.Objects("hits")
	if err != nil {
		return nil, fmt.Errorf("%s: hits.hits: %w", path, err)
	}

	sources := make([]map[string]any, 0, len(hits))
	for i, hit := range hits {
		source, ok, err := hit.Object("_source")
		if err != nil {
			return nil, fmt.Errorf("%s: hits.hits[%d]._source: %w", path, i, err)
		}
		if !ok {
			continue
		}
		sources = append(sources, source)
	}
	return sources, nil
}

func printAnswer(cmd *cobra.Command, answer *qa.Answer) error {
	out := cmd.OutOrStdout()
	if !terminal.IsTerminal(out) {
		_, err := fmt.Fprintln(out, answer.Answer)
		return err
	}

	rendered, err := terminal.RenderMarkdown(answer.Answer, terminal.Width(out))
	if err != nil {
		rendered = answer.Answer
	}
	fmt.Fprintln(out, rendered)
	if answer.ConversationID != "" {
		fmt.Fprintf(out, "\n%s conversation %s, interaction %s\n", terminal.InfoSymbol, answer.ConversationID, answer.InteractionID)
	}
	return nil
}
