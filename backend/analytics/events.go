package analytics

import (
	"github.com/posthog/posthog-go"
)

const distinctID = "ml-commons"

func EmitTaskDeleted(client Client, taskID string, result string) {
	client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "task_deleted",
		Properties: posthog.NewProperties().
			Set("task_id", taskID).
			Set("result", result),
	})
}

func EmitTaskDeleteRejected(client Client, taskID string, reason string) {
	client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "task_delete_rejected",
		Properties: posthog.NewProperties().
			Set("task_id", taskID).
			Set("reason", reason),
	})
}

func EmitQuestionAnswered(client Client, provider string, model string, withConversation bool, contextDocuments int) {
	client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "question_answered",
		Properties: posthog.NewProperties().
			Set("provider", provider).
			Set("model", model).
			Set("with_conversation", withConversation).
			Set("context_documents", contextDocuments),
	})
}
