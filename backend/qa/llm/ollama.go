package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/will-hwang/ml-commons/shared/resilience"
)

const ProviderOllama = "ollama"

type OllamaProvider struct {
	client  *api.Client
	options *ProviderOptions
}

func NewOllamaProvider(host string, opts ...ProviderOption) (*OllamaProvider, error) {
	if host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	providerOptions := DefaultProviderOptions(ProviderOllama)
	for _, opt := range opts {
		opt(providerOptions)
	}

	httpClient := providerOptions.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OllamaProvider{
		client:  api.NewClient(base, httpClient),
		options: providerOptions,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

func (p *OllamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	messages, err := p.transformMessages(req)
	if err != nil {
		return nil, err
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   &stream,
	}
	if req.MaxTokens > 0 {
		chatReq.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	return resilience.Retry(ctx, p.options.retryOptions(), func(ctx context.Context) (*ChatResponse, error) {
		var (
			text  strings.Builder
			usage Usage
		)
		err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
			text.WriteString(resp.Message.Content)
			if resp.Done {
				usage = Usage{
					InputTokens:  int64(resp.PromptEvalCount),
					OutputTokens: int64(resp.EvalCount),
				}
			}
			return nil
		})
		if err != nil {
			return nil, p.parseError(err)
		}

		return &ChatResponse{Text: text.String(), Usage: usage}, nil
	})
}

func (p *OllamaProvider) transformMessages(req ChatRequest) ([]api.Message, error) {
	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: RoleSystem, Content: req.System})
	}

	for _, message := range req.Messages {
		msg := api.Message{Role: message.Role}
		var text []string
		for _, c := range message.Content {
			switch block := c.(type) {
			case TextBlock:
				text = append(text, block.Text)
			case ImageBlock:
				if block.Data == "" {
					return nil, fmt.Errorf("ollama only accepts inline image data, got url %s", block.URL)
				}
				raw, err := base64.StdEncoding.DecodeString(block.Data)
				if err != nil {
					return nil, fmt.Errorf("invalid base64 image data: %w", err)
				}
				msg.Images = append(msg.Images, api.ImageData(raw))
			case DocumentBlock:
				if !isTextDocument(block.Format) {
					return nil, fmt.Errorf("ollama does not support %s documents", block.Format)
				}
				doc, err := decodeDocumentText(block)
				if err != nil {
					return nil, err
				}
				text = append(text, doc)
			}
		}
		msg.Content = strings.Join(text, "\n")
		messages = append(messages, msg)
	}

	return messages, nil
}

func (p *OllamaProvider) parseError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return classify(ProviderOllama, statusErr.StatusCode, err)
	}
	return classify(ProviderOllama, 0, err)
}
