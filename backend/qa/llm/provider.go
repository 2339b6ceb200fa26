package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/will-hwang/ml-commons/shared/resilience"
)

type ChatRequest struct {
	Model     string
	System    string
	Messages  []MessageBlock
	MaxTokens int64
}

type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type ChatResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

//go:generate mockgen -destination=mocks/provider_mock.go -package=mocks . Provider
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ProviderOptions struct {
	URL            string
	HTTPClient     *http.Client
	RetryConfig    *resilience.RetryConfig
	CircuitBreaker *resilience.CircuitBreaker
	RetryHooks     []resilience.RetryHook
}

type ProviderOption func(*ProviderOptions)

func WithURL(url string) ProviderOption {
	return func(o *ProviderOptions) {
		o.URL = url
	}
}

func WithHTTPClient(client *http.Client) ProviderOption {
	return func(o *ProviderOptions) {
		o.HTTPClient = client
	}
}

func WithRetryConfig(retryConfig *resilience.RetryConfig) ProviderOption {
	return func(o *ProviderOptions) {
		o.RetryConfig = retryConfig
	}
}

func WithCircuitBreaker(circuitBreaker *resilience.CircuitBreaker) ProviderOption {
	return func(o *ProviderOptions) {
		o.CircuitBreaker = circuitBreaker
	}
}

func WithRetryHooks(hooks ...resilience.RetryHook) ProviderOption {
	return func(o *ProviderOptions) {
		o.RetryHooks = hooks
	}
}

func DefaultProviderOptions(name string) *ProviderOptions {
	return &ProviderOptions{
		RetryConfig: &resilience.RetryConfig{
			MaxAttempts:       3,
			InitialDelay:      1 * time.Second,
			MaxDelay:          10 * time.Second,
			BackoffMultiplier: 2,
		},
		CircuitBreaker: resilience.NewCircuitBreaker(name, 5, 10*time.Second),
	}
}

func (o *ProviderOptions) retryOptions() resilience.RetryOptions {
	return resilience.RetryOptions{
		Config:         o.RetryConfig,
		CircuitBreaker: o.CircuitBreaker,
		Retryable:      isRetryable,
		Hooks:          o.RetryHooks,
	}
}

type ProviderErrorKind string

const (
	ProviderErrorKindInvalidRequest    ProviderErrorKind = "invalid_request"
	ProviderErrorKindAuthentication    ProviderErrorKind = "authentication"
	ProviderErrorKindRateLimitExceeded ProviderErrorKind = "rate_limit_exceeded"
	ProviderErrorKindOverloaded        ProviderErrorKind = "overloaded"
	ProviderErrorKindInternal          ProviderErrorKind = "internal"
	ProviderErrorKindTimeout           ProviderErrorKind = "timeout"
	ProviderErrorKindCanceled          ProviderErrorKind = "canceled"
	ProviderErrorKindUnknown           ProviderErrorKind = "unknown"
)

type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Err:      err,
	}
}

func (pe *ProviderError) Message() string {
	switch pe.Kind {
	case ProviderErrorKindInvalidRequest:
		return "Invalid request format or content"
	case ProviderErrorKindAuthentication:
		return "Authentication failed"
	case ProviderErrorKindRateLimitExceeded:
		return "Rate limit exceeded"
	case ProviderErrorKindOverloaded:
		return "API temporarily overloaded"
	case ProviderErrorKindInternal:
		return "Internal server error"
	case ProviderErrorKindTimeout:
		return "Request timeout"
	case ProviderErrorKindCanceled:
		return "Request canceled"
	default:
		return "Unknown error"
	}
}

// Retryable reports whether another attempt could succeed.
func (pe *ProviderError) Retryable() bool {
	switch pe.Kind {
	case ProviderErrorKindRateLimitExceeded,
		ProviderErrorKindOverloaded,
		ProviderErrorKindInternal,
		ProviderErrorKindTimeout,
		ProviderErrorKindUnknown:
		return true
	default:
		return false
	}
}

func (pe *ProviderError) Error() string {
	if pe.Err != nil {
		return fmt.Sprintf("%s: %s: %s", pe.Provider, pe.Message(), pe.Err.Error())
	}
	return fmt.Sprintf("%s: %s", pe.Provider, pe.Message())
}

func (pe *ProviderError) Unwrap() error {
	return pe.Err
}

func isRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func kindFromStatus(status int) ProviderErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ProviderErrorKindAuthentication
	case status == http.StatusTooManyRequests:
		return ProviderErrorKindRateLimitExceeded
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ProviderErrorKindTimeout
	case status == http.StatusServiceUnavailable || status == 529:
		return ProviderErrorKindOverloaded
	case status >= 500:
		return ProviderErrorKindInternal
	case status >= 400:
		return ProviderErrorKindInvalidRequest
	default:
		return ProviderErrorKindUnknown
	}
}

// classify turns a transport error into a ProviderError when the status code
// is known.
func classify(provider string, status int, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return NewProviderError(provider, ProviderErrorKindCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(provider, ProviderErrorKindTimeout, err)
	}
	pe := NewProviderError(provider, kindFromStatus(status), err)
	pe.StatusCode = status
	return pe
}

func validateRequest(req ChatRequest) error {
	if req.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	return nil
}

// imageMediaType maps the short image formats used in message blocks to MIME
// types.
func imageMediaType(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	}
	return "image/" + strings.ToLower(format)
}

func isTextDocument(format string) bool {
	switch strings.ToLower(format) {
	case "txt", "text", "md", "markdown", "csv", "html", "json":
		return true
	}
	return false
}

func decodeDocumentText(b DocumentBlock) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return "", fmt.Errorf("document %s: invalid base64 data: %w", b.Name, err)
	}
	return fmt.Sprintf("Document %s:\n%s", b.Name, raw), nil
}
