package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/will-hwang/ml-commons/backend/analytics"
	"github.com/will-hwang/ml-commons/backend/event"
	"github.com/will-hwang/ml-commons/backend/qa/llm"
	"github.com/will-hwang/ml-commons/backend/xcontent"
	"github.com/will-hwang/ml-commons/shared"
)

// ModelResolver maps a model id to the provider that serves it.
type ModelResolver interface {
	Resolve(modelID string) (llm.Provider, string, error)
}

type AnswerRequest struct {
	Params *Parameters
	// Documents are the _source objects of the search hits, best match first.
	Documents []xcontent.Object
}

type Answer struct {
	Answer         string    `json:"answer"`
	ConversationID string    `json:"conversation_id,omitempty"`
	InteractionID  string    `json:"interaction_id,omitempty"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	ContextSize    int       `json:"context_size"`
	Usage          llm.Usage `json:"usage"`
}

// Processor answers a question with an LLM using search results as context.
type Processor struct {
	models        ModelResolver
	memory        Memory
	bus           *event.Bus
	analytics     analytics.Client
	metrics       *Metrics
	logger        *slog.Logger
	contextFields []string
	maxTokens     int64
}

type ProcessorOption func(*Processor)

func WithMemory(memory Memory) ProcessorOption {
	return func(p *Processor) {
		p.memory = memory
	}
}

func WithEventBus(bus *event.Bus) ProcessorOption {
	return func(p *Processor) {
		p.bus = bus
	}
}

func WithAnalytics(client analytics.Client) ProcessorOption {
	return func(p *Processor) {
		p.analytics = client
	}
}

func WithMetrics(metrics *Metrics) ProcessorOption {
	return func(p *Processor) {
		p.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithContextFields sets the document paths (gjson syntax) whose values are
// passed to the model as search results.
func WithContextFields(fields ...string) ProcessorOption {
	return func(p *Processor) {
		p.contextFields = fields
	}
}

func WithMaxTokens(n int64) ProcessorOption {
	return func(p *Processor) {
		p.maxTokens = n
	}
}

func NewProcessor(models ModelResolver, opts ...ProcessorOption) *Processor {
	p := &Processor{
		models:        models,
		analytics:     analytics.Noop{},
		logger:        slog.Default(),
		contextFields: []string{"text"},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Answer(ctx context.Context, req AnswerRequest) (*Answer, error) {
	params := req.Params
	if params == nil {
		return nil, shared.NewInvalidArgument("[%s] parameters are required", ParamExtName)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	provider, model, err := p.models.Resolve(params.ModelID)
	if err != nil {
		return nil, shared.NewInvalidArgument("%s", err)
	}
	logger := p.logger.With("provider", provider.Name(), "model", model, "conversation_id", params.ConversationID)

	history, err := p.history(ctx, params)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load conversation history", "error", err)
		return nil, err
	}

	contexts, err := p.contexts(params, req.Documents)
	if err != nil {
		return nil, err
	}

	system, messages := buildPrompt(params, history, contexts)

	timeout := params.GetTimeout()
	if timeout == SizeNullValue {
		timeout = DefaultTimeoutSeconds
	}
	chatCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	start := time.Now()
	resp, err := provider.Chat(chatCtx, llm.ChatRequest{
		Model:     model,
		System:    system,
		Messages:  messages,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		p.metrics.observeAnswer(provider.Name(), "error", time.Since(start))
		logger.ErrorContext(ctx, "model invocation failed", "error", err)
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	p.metrics.observeAnswer(provider.Name(), "success", time.Since(start))

	text, err := extractResponseField(resp.Text, params.LLMResponseField)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Answer:         text,
		ConversationID: params.ConversationID,
		Provider:       provider.Name(),
		Model:          model,
		ContextSize:    len(contexts),
		Usage:          resp.Usage,
	}

	if params.ConversationID != "" {
		saved, err := p.memory.AppendInteraction(ctx, Interaction{
			ConversationID: params.ConversationID,
			Input:          params.LLMQuestion,
			Response:       text,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to save interaction", "error", err)
			return nil, memoryError(err)
		}
		answer.InteractionID = saved.ID

		if p.bus != nil {
			event.Publish(p.bus, event.InteractionCreatedEvent{
				ConversationID: saved.ConversationID,
				InteractionID:  saved.ID,
			})
		}
	}

	analytics.EmitQuestionAnswered(p.analytics, provider.Name(), model, params.ConversationID != "", len(contexts))
	logger.InfoContext(ctx, "question answered", "context_documents", len(contexts), "history", len(history))

	return answer, nil
}

func (p *Processor) history(ctx context.Context, params *Parameters) ([]Interaction, error) {
	if params.ConversationID == "" {
		return nil, nil
	}
	if p.memory == nil {
		return nil, shared.NewInvalidArgument("conversation memory is not configured")
	}

	limit := params.GetInteractionSize()
	if limit == SizeNullValue {
		limit = DefaultInteractionSize
	}
	if limit == 0 {
		return nil, nil
	}

	history, err := p.memory.Interactions(ctx, params.ConversationID, limit)
	if err != nil {
		return nil, memoryError(err)
	}
	return history, nil
}

func memoryError(err error) error {
	if errors.Is(err, ErrConversationNotFound) {
		return shared.NewResourceNotFound("Conversation not found")
	}
	return shared.Wrap(shared.KindStore, err)
}

// contexts reads the configured fields from the first context_size documents.
func (p *Processor) contexts(params *Parameters, docs []xcontent.Object) ([]string, error) {
	size := params.GetContextSize()
	if size == SizeNullValue {
		size = DefaultContextSize
	}
	if size < len(docs) {
		docs = docs[:size]
	}

	contexts := make([]string, 0, len(docs))
	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document %d: %w", i, err)
		}

		var parts []string
		for _, field := range p.contextFields {
			if v := gjson.GetBytes(data, field); v.Exists() {
				parts = append(parts, v.String())
			}
		}
		if len(parts) > 0 {
			contexts = append(contexts, strings.Join(parts, "\n"))
		}
	}
	return contexts, nil
}

// extractResponseField picks path out of a JSON model response. An empty path
// returns the response unchanged.
func extractResponseField(response, path string) (string, error) {
	if path == "" {
		return response, nil
	}
	if !gjson.Valid(response) {
		return "", fmt.Errorf("llm response is not a JSON document, cannot read [%s]", path)
	}
	v := gjson.Get(response, path)
	if !v.Exists() {
		return "", fmt.Errorf("llm response does not contain field [%s]", path)
	}
	return v.String(), nil
}
