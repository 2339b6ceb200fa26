package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/will-hwang/ml-commons/shared/resilience"
)

const ProviderOpenAI = "openai"

type OpenAIProvider struct {
	client  openai.Client
	options *ProviderOptions
}

func NewOpenAIProvider(apiKey string, opts ...ProviderOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	providerOptions := DefaultProviderOptions(ProviderOpenAI)
	for _, opt := range opts {
		opt(providerOptions)
	}

	clientOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if providerOptions.URL != "" {
		clientOptions = append(clientOptions, option.WithBaseURL(providerOptions.URL))
	}
	if providerOptions.HTTPClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(providerOptions.HTTPClient))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(clientOptions...),
		options: providerOptions,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	messages, err := p.transformMessages(req)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}

	return resilience.Retry(ctx, p.options.retryOptions(), func(ctx context.Context) (*ChatResponse, error) {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, p.parseError(err)
		}
		if len(resp.Choices) == 0 {
			return nil, NewProviderError(ProviderOpenAI, ProviderErrorKindInternal, fmt.Errorf("response has no choices"))
		}

		return &ChatResponse{
			Text: resp.Choices[0].Message.Content,
			Usage: Usage{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
			},
		}, nil
	})
}

func (p *OpenAIProvider) transformMessages(req ChatRequest) ([]openai.ChatCompletionMessageParamUnion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	for _, message := range req.Messages {
		switch message.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(message.Text()))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(message.Text()))
		default:
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(message.Content))
			for _, c := range message.Content {
				switch block := c.(type) {
				case TextBlock:
					parts = append(parts, openai.TextContentPart(block.Text))
				case ImageBlock:
					url := block.URL
					if url == "" {
						url = fmt.Sprintf("data:%s;base64,%s", imageMediaType(block.Format), block.Data)
					}
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: url}))
				case DocumentBlock:
					if isTextDocument(block.Format) {
						text, err := decodeDocumentText(block)
						if err != nil {
							return nil, err
						}
						parts = append(parts, openai.TextContentPart(text))
						continue
					}
					parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
						FileData: openai.String(fmt.Sprintf("data:application/%s;base64,%s", block.Format, block.Data)),
						Filename: openai.String(block.Name),
					}))
				}
			}
			messages = append(messages, openai.UserMessage(parts))
		}
	}

	return messages, nil
}

func (p *OpenAIProvider) parseError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderOpenAI, apiErr.StatusCode, err)
	}
	return classify(ProviderOpenAI, 0, err)
}
