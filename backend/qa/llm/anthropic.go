package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/will-hwang/ml-commons/shared/resilience"
)

const (
	ProviderAnthropic = "anthropic"

	defaultAnthropicMaxTokens = 1024
)

type AnthropicProvider struct {
	client  anthropic.Client
	options *ProviderOptions
}

func NewAnthropicProvider(apiKey string, opts ...ProviderOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	providerOptions := DefaultProviderOptions(ProviderAnthropic)
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

	return &AnthropicProvider{
		client:  anthropic.NewClient(clientOptions...),
		options: providerOptions,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

func (p *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	system, messages, err := p.transformMessages(req)
	if err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}

	return resilience.Retry(ctx, p.options.retryOptions(), func(ctx context.Context) (*ChatResponse, error) {
		resp, err := p.client.Messages.New(ctx, params)
		if err != nil {
			return nil, p.parseError(err)
		}
		if len(resp.Content) == 0 {
			return nil, NewProviderError(ProviderAnthropic, ProviderErrorKindInternal, fmt.Errorf("empty response"))
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}

		return &ChatResponse{
			Text: text.String(),
			Usage: Usage{
				InputTokens:  resp.Usage.InputTokens,
				OutputTokens: resp.Usage.OutputTokens,
			},
		}, nil
	})
}

// transformMessages moves system turns into the system prompt since the
// messages API only accepts user and assistant turns.
func (p *AnthropicProvider) transformMessages(req ChatRequest) ([]anthropic.TextBlockParam, []anthropic.MessageParam, error) {
	var system []anthropic.TextBlockParam
	if req.System != "" {
		system = append(system, anthropic.TextBlockParam{Text: req.System})
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, message := range req.Messages {
		if message.Role == RoleSystem {
			system = append(system, anthropic.TextBlockParam{Text: message.Text()})
			continue
		}

		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(message.Content))
		for _, c := range message.Content {
			switch block := c.(type) {
			case TextBlock:
				blocks = append(blocks, anthropic.NewTextBlock(block.Text))
			case ImageBlock:
				if block.URL != "" {
					blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: block.URL}))
				} else {
					blocks = append(blocks, anthropic.NewImageBlockBase64(imageMediaType(block.Format), block.Data))
				}
			case DocumentBlock:
				if isTextDocument(block.Format) {
					text, err := decodeDocumentText(block)
					if err != nil {
						return nil, nil, err
					}
					blocks = append(blocks, anthropic.NewTextBlock(text))
					continue
				}
				if !strings.EqualFold(block.Format, "pdf") {
					return nil, nil, fmt.Errorf("anthropic does not support %s documents", block.Format)
				}
				blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: block.Data}))
			}
		}

		if message.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}

	return system, messages, nil
}

func (p *AnthropicProvider) parseError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderAnthropic, apiErr.StatusCode, err)
	}
	return classify(ProviderAnthropic, 0, err)
}
