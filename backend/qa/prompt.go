package qa

import (
	"fmt"
	"strings"

	"github.com/will-hwang/ml-commons/backend/qa/llm"
)

const (
	DefaultSystemPrompt     = "You are a helpful assistant"
	DefaultUserInstructions = "Generate a concise and informative answer in less than 100 words for the given question"

	DefaultContextSize     = 5
	DefaultInteractionSize = 10
	DefaultTimeoutSeconds  = 30
)

// buildPrompt assembles the system prompt and chat turns for one request.
// Conversation history comes first as alternating user and assistant turns.
// Caller-supplied message blocks replace the generated final user turn.
func buildPrompt(params *Parameters, history []Interaction, contexts []string) (string, []llm.MessageBlock) {
	system := params.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	messages := make([]llm.MessageBlock, 0, 2*len(history)+1)
	for _, interaction := range history {
		messages = append(messages,
			llm.NewTextMessage(llm.RoleUser, interaction.Input),
			llm.NewTextMessage(llm.RoleAssistant, interaction.Response),
		)
	}

	if len(params.MessageBlocks) > 0 {
		return system, append(messages, params.MessageBlocks...)
	}

	return system, append(messages, llm.NewTextMessage(llm.RoleUser, userPrompt(params, contexts)))
}

func userPrompt(params *Parameters, contexts []string) string {
	instructions := params.UserInstructions
	if instructions == "" {
		instructions = DefaultUserInstructions
	}

	var b strings.Builder
	b.WriteString(instructions)
	if len(contexts) > 0 {
		b.WriteString("\n\nSEARCH RESULTS:")
		for i, c := range contexts {
			fmt.Fprintf(&b, "\nSEARCH RESULT %d: %s", i+1, c)
		}
	}
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(params.LLMQuestion)
	return b.String()
}
