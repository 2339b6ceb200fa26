package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/will-hwang/ml-commons/shared/config"
	"github.com/will-hwang/ml-commons/shared/resilience"
)

// Registry resolves model ids of the form "provider/model" to a provider.
type Registry struct {
	mu              sync.RWMutex
	providers       map[string]Provider
	defaultProvider string
	defaultModel    string
}

// NewRegistry creates a registry. defaultModel is used when a request carries
// no model id and may itself be prefixed with a provider name.
func NewRegistry(defaultModel string) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	if name, model, ok := strings.Cut(defaultModel, "/"); ok {
		r.defaultProvider = name
		r.defaultModel = model
	} else {
		r.defaultModel = defaultModel
	}
	return r
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[p.Name()] = p
	if r.defaultProvider == "" {
		r.defaultProvider = p.Name()
	}
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the provider and bare model name for modelID. An empty id
// selects the default model; an id without a known provider prefix is sent to
// the default provider unchanged.
func (r *Registry) Resolve(modelID string) (Provider, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providerName, model := r.defaultProvider, modelID
	if modelID == "" {
		model = r.defaultModel
	} else if name, rest, ok := strings.Cut(modelID, "/"); ok {
		if _, known := r.providers[name]; known {
			providerName, model = name, rest
		}
	}

	if model == "" {
		return nil, "", fmt.Errorf("no model specified and no default model configured")
	}

	p, ok := r.providers[providerName]
	if !ok {
		return nil, "", fmt.Errorf("model provider %q is not configured", providerName)
	}
	return p, model, nil
}

// NewRegistryFromConfig registers every provider that has credentials in cfg.
func NewRegistryFromConfig(cfg config.LLMConfig, opts ...ProviderOption) (*Registry, error) {
	registry := NewRegistry(cfg.DefaultModel)

	withRetries := func() []ProviderOption {
		retry := resilience.DefaultRetryConfig()
		if cfg.MaxRetries > 0 {
			retry.MaxAttempts = cfg.MaxRetries
		}
		return append([]ProviderOption{WithRetryConfig(retry)}, opts...)
	}

	if cfg.OpenAIAPIKey != "" {
		popts := withRetries()
		if cfg.OpenAIBaseURL != "" {
			popts = append(popts, WithURL(cfg.OpenAIBaseURL))
		}
		p, err := NewOpenAIProvider(cfg.OpenAIAPIKey, popts...)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
	}

	if cfg.AnthropicAPIKey != "" {
		popts := withRetries()
		if cfg.AnthropicBaseURL != "" {
			popts = append(popts, WithURL(cfg.AnthropicBaseURL))
		}
		p, err := NewAnthropicProvider(cfg.AnthropicAPIKey, popts...)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
	}

	if cfg.OllamaHost != "" {
		p, err := NewOllamaProvider(cfg.OllamaHost, withRetries()...)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
	}

	return registry, nil
}
