package event

// TaskDeletedEvent is published after a task record was removed from the store.
type TaskDeletedEvent struct {
	TaskID  string
	Version int64
}

func (TaskDeletedEvent) Event() {}

// InteractionCreatedEvent is published after a question/answer pair was
// appended to a conversation.
type InteractionCreatedEvent struct {
	ConversationID string
	InteractionID  string
}

func (InteractionCreatedEvent) Event() {}
