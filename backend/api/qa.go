package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/xcontent"
	"github.com/will-hwang/ml-commons/shared"
)

type ConversationStore interface {
	CreateConversation(ctx context.Context, name string) (*qa.Conversation, error)
}

type QAHandler struct {
	processor     *qa.Processor
	conversations ConversationStore
}

func NewQAHandler(processor *qa.Processor, conversations ConversationStore) *QAHandler {
	return &QAHandler{
		processor:     processor,
		conversations: conversations,
	}
}

func (h *QAHandler) Answer(ctx context.Context, req *connect.Request[AnswerRequest]) (*connect.Response[AnswerResponse], error) {
	ext, err := xcontent.FromMap(req.Msg.Ext)
	if err != nil {
		return nil, apiError(shared.NewInvalidArgument("ext: %s", err))
	}

	builder, ok, err := qa.ParamExtBuilderFromSearchExt(ext)
	if err != nil {
		return nil, apiError(err)
	}
	if !ok {
		return nil, apiError(shared.NewInvalidArgument("ext.%s is required", qa.ParamExtName))
	}

	docs := make([]xcontent.Object, 0, len(req.Msg.Hits))
	for i, hit := range req.Msg.Hits {
		doc, err := xcontent.FromMap(hit)
		if err != nil {
			return nil, apiError(shared.NewInvalidArgument("hits[%d]: %s", i, err))
		}
		docs = append(docs, doc)
	}

	answer, err := h.processor.Answer(ctx, qa.AnswerRequest{
		Params:    builder.Params(),
		Documents: docs,
	})
	if err != nil {
		return nil, apiError(err)
	}

	return connect.NewResponse(&AnswerResponse{Answer: *answer}), nil
}

func (h *QAHandler) CreateConversation(ctx context.Context, req *connect.Request[CreateConversationRequest]) (*connect.Response[CreateConversationResponse], error) {
	if h.conversations == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errConversationsDisabled)
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, apiError(shared.NewInvalidArgument("conversation name must not be empty"))
	}

	conversation, err := h.conversations.CreateConversation(ctx, name)
	if err != nil {
		return nil, apiError(shared.Wrap(shared.KindStore, err))
	}

	return connect.NewResponse(&CreateConversationResponse{
		ConversationID: conversation.ID,
		Name:           conversation.Name,
		CreateTime:     conversation.CreateTime,
	}), nil
}
