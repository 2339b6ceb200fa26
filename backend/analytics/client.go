package analytics

import (
	"fmt"

	"github.com/posthog/posthog-go"
)

// Client is the part of posthog.Client the backend emits through.
type Client interface {
	Enqueue(posthog.Message) error
	Close() error
}

var _ Client = (posthog.Client)(nil)

// New returns a posthog client, or a Noop client when apiKey is empty.
func New(apiKey string, endpoint string) (Client, error) {
	if apiKey == "" {
		return Noop{}, nil
	}

	config := posthog.Config{}
	if endpoint != "" {
		config.Endpoint = endpoint
	}

	client, err := posthog.NewWithConfig(apiKey, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create posthog client: %w", err)
	}
	return client, nil
}

type Noop struct{}

func (Noop) Enqueue(posthog.Message) error { return nil }

func (Noop) Close() error { return nil }
