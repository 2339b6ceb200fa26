package qa

import (
	"context"
	"errors"
	"time"
)

var ErrConversationNotFound = errors.New("conversation not found")

type Conversation struct {
	ID         string
	Name       string
	CreateTime time.Time
}

// Interaction is one question/answer exchange inside a conversation.
type Interaction struct {
	ID             string
	ConversationID string
	Input          string
	Response       string
	CreateTime     time.Time
}

// Memory stores conversation history for the processor.
//
//go:generate mockgen -destination=mocks/memory_mock.go -package=mocks . Memory
type Memory interface {
	// Interactions returns the most recent limit interactions, oldest first.
	Interactions(ctx context.Context, conversationID string, limit int) ([]Interaction, error)
	AppendInteraction(ctx context.Context, interaction Interaction) (*Interaction, error)
}
