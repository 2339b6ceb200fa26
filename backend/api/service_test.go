package api

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/will-hwang/ml-commons/backend/memory"
	"github.com/will-hwang/ml-commons/backend/qa"
)

type testEnv struct {
	tasks         *memory.TaskStore
	conversations *memory.ConversationStore
	client        *Client
	server        *httptest.Server
}

type testEnvOptions struct {
	// models enables the QA service backed by the env's conversation store.
	models    qa.ModelResolver
	authToken string
	registry  *prometheus.Registry
}

func newTestEnv(t *testing.T, opts testEnvOptions) *testEnv {
	t.Helper()

	db, err := memory.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		tasks:         memory.NewTaskStore(db),
		conversations: memory.NewConversationStore(db),
	}

	var processor *qa.Processor
	if opts.models != nil {
		processor = qa.NewProcessor(opts.models, qa.WithMemory(env.conversations))
	}

	handler := NewHandler(HandlerOptions{
		Tasks:          env.tasks,
		Conversations:  env.conversations,
		Processor:      processor,
		Registry:       opts.registry,
		AuthToken:      opts.authToken,
		RequestTimeout: 5 * time.Second,
	})

	env.server = httptest.NewServer(handler)
	t.Cleanup(env.server.Close)

	var clientOpts []ClientOption
	if opts.authToken != "" {
		clientOpts = append(clientOpts, WithToken(opts.authToken))
	}
	env.client = NewClient(env.server.Client(), env.server.URL, clientOpts...)
	return env
}

type ServiceTestSetup[Req any, Res any] struct {
	Call       func(ctx context.Context, client *Client, req *Req) (Res, error)
	CmpOptions []cmp.Option
	Options    testEnvOptions
}

type ServiceTestExpectation[Res any] struct {
	Response Res
	Error    string
	// Database, when set, inspects the store after the call.
	Database func(t *testing.T, ctx context.Context, env *testEnv)
}

type ServiceTestScenario[Req any, Res any] struct {
	Name         string
	SeedDatabase func(t *testing.T, ctx context.Context, env *testEnv)
	Request      *Req
	Expected     ServiceTestExpectation[Res]
}

func (s *ServiceTestSetup[Req, Res]) RunServiceTests(t *testing.T, scenarios []ServiceTestScenario[Req, Res]) {
	t.Helper()

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, s.Options)

			if scenario.SeedDatabase != nil {
				scenario.SeedDatabase(t, ctx, env)
			}

			got, err := s.Call(ctx, env.client, scenario.Request)

			if scenario.Expected.Error != "" {
				if err == nil {
					t.Fatalf("expected error %q, got none", scenario.Expected.Error)
				}
				if diff := cmp.Diff(scenario.Expected.Error, err.Error()); diff != "" {
					t.Errorf("error mismatch (-want +got):\n%s", diff)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if diff := cmp.Diff(scenario.Expected.Response, got, s.CmpOptions...); diff != "" {
					t.Errorf("response mismatch (-want +got):\n%s", diff)
				}
			}

			if scenario.Expected.Database != nil {
				scenario.Expected.Database(t, ctx, env)
			}
		})
	}
}
