package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"

	"github.com/will-hwang/ml-commons/shared/keyring"
	"github.com/will-hwang/ml-commons/shared/mocks"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		file    string
		dotenv  string
		environ map[string]string
		setup   func(kr *mocks.MockProvider)
		want    func(cfg *Config)
		wantErr string
	}{
		{
			name: "defaults when no file exists",
			setup: func(kr *mocks.MockProvider) {
				kr.EXPECT().Get(keyring.ProviderKey("openai")).Return("", &keyring.ErrSecretNotFound{Key: "openai"})
				kr.EXPECT().Get(keyring.ProviderKey("anthropic")).Return("", &keyring.ErrSecretNotFound{Key: "anthropic"})
			},
			want: func(cfg *Config) {},
		},
		{
			name: "file values override defaults",
			path: "/etc/mlcommons.yaml",
			file: "store:\n  backend: redis\n  redis_prefix: qa\nserver:\n  shutdown_timeout: 3s\nllm:\n  openai_api_key: file-key\n  anthropic_api_key: file-key\n",
			want: func(cfg *Config) {
				cfg.Store.Backend = BackendRedis
				cfg.Store.RedisPrefix = "qa"
				cfg.Server.ShutdownTimeout = 3 * time.Second
				cfg.LLM.OpenAIAPIKey = "file-key"
				cfg.LLM.AnthropicAPIKey = "file-key"
			},
		},
		{
			name:   "environment overrides file and dotenv fills gaps",
			path:   "/etc/mlcommons.yaml",
			file:   "log:\n  level: warn\n",
			dotenv: "MLCOMMONS_LOG_LEVEL=error\nMLCOMMONS_LLM_DEFAULT_MODEL=anthropic/claude\n",
			environ: map[string]string{
				"MLCOMMONS_LOG_LEVEL":             "debug",
				"MLCOMMONS_LLM_OPENAI_API_KEY":    "env-key",
				"MLCOMMONS_LLM_ANTHROPIC_API_KEY": "env-key",
			},
			want: func(cfg *Config) {
				cfg.Log.Level = "debug"
				cfg.LLM.DefaultModel = "anthropic/claude"
				cfg.LLM.OpenAIAPIKey = "env-key"
				cfg.LLM.AnthropicAPIKey = "env-key"
			},
		},
		{
			name: "api keys fall back to keyring",
			setup: func(kr *mocks.MockProvider) {
				kr.EXPECT().Get(keyring.ProviderKey("openai")).Return("ring-key", nil)
				kr.EXPECT().Get(keyring.ProviderKey("anthropic")).Return("", &keyring.ErrSecretNotFound{Key: "anthropic"})
			},
			want: func(cfg *Config) {
				cfg.LLM.OpenAIAPIKey = "ring-key"
			},
		},
		{
			name:    "missing explicit file",
			path:    "/nope.yaml",
			wantErr: "read config /nope.yaml",
		},
		{
			name:    "unsupported backend",
			path:    "/etc/mlcommons.yaml",
			file:    "store:\n  backend: etcd\nllm:\n  openai_api_key: k\n  anthropic_api_key: k\n",
			wantErr: `unsupported store backend "etcd"`,
		},
		{
			name: "keyring failure leaves the key unset",
			setup: func(kr *mocks.MockProvider) {
				kr.EXPECT().Get(keyring.ProviderKey("openai")).Return("", errors.New("locked"))
				kr.EXPECT().Get(keyring.ProviderKey("anthropic")).Return("anthropic-ring-key", nil)
			},
			want: func(cfg *Config) {
				cfg.LLM.AnthropicAPIKey = "anthropic-ring-key"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			kr := mocks.NewMockProvider(ctrl)
			if tt.setup != nil {
				tt.setup(kr)
			}

			fs := afero.NewMemMapFs()
			if tt.file != "" {
				if err := afero.WriteFile(fs, tt.path, []byte(tt.file), 0600); err != nil {
					t.Fatal(err)
				}
			}
			if tt.dotenv != "" {
				if err := afero.WriteFile(fs, DotEnvFile, []byte(tt.dotenv), 0600); err != nil {
					t.Fatal(err)
				}
			}

			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}

			got, err := NewLoader(fs, kr).WithEnvironment(environ).Load(tt.path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := Default()
			tt.want(want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
