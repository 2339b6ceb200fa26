package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/keyring"
)

const (
	EnvPrefix     = "MLCOMMONS_"
	FileName      = "config.yaml"
	DotEnvFile    = ".env"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Endpoint  string          `yaml:"endpoint" env:"ENDPOINT"`
	SentryDSN string          `yaml:"sentry_dsn" env:"SENTRY_DSN"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	LLM       LLMConfig       `yaml:"llm" envPrefix:"LLM_"`
	Analytics AnalyticsConfig `yaml:"analytics" envPrefix:"ANALYTICS_"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	File  string `yaml:"file" env:"FILE"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" env:"ADDRESS"`
	UnixSocket      string        `yaml:"unix_socket" env:"UNIX_SOCKET"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	// AuthToken, when set, is required as a bearer token on tcp connections.
	AuthToken string `yaml:"auth_token" env:"AUTH_TOKEN"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend" env:"BACKEND"`
	SQLitePath    string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

type LLMConfig struct {
	DefaultModel     string `yaml:"default_model" env:"DEFAULT_MODEL"`
	MaxTokens        int    `yaml:"max_tokens" env:"MAX_TOKENS"`
	MaxRetries       uint   `yaml:"max_retries" env:"MAX_RETRIES"`
	OpenAIAPIKey     string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `yaml:"anthropic_base_url" env:"ANTHROPIC_BASE_URL"`
	OllamaHost       string `yaml:"ollama_host" env:"OLLAMA_HOST"`
}

type AnalyticsConfig struct {
	PostHogKey      string `yaml:"posthog_key" env:"POSTHOG_KEY"`
	PostHogEndpoint string `yaml:"posthog_endpoint" env:"POSTHOG_ENDPOINT"`
}

func Default() *Config {
	return &Config{
		Endpoint: "http://127.0.0.1:9200",
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Address:         "127.0.0.1:9200",
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Store: StoreConfig{
			Backend:     BackendSQLite,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "mlcommons",
		},
		LLM: LLMConfig{
			DefaultModel: "openai/gpt-4o-mini",
			MaxTokens:    1024,
			MaxRetries:   3,
			OllamaHost:   "http://127.0.0.1:11434",
		},
	}
}

func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, shared.AppName, FileName)
}

type Loader struct {
	fs      afero.Fs
	keyring keyring.Provider
	environ map[string]string
}

func NewLoader(fs afero.Fs, keyringProvider keyring.Provider) *Loader {
	return &Loader{
		fs:      fs,
		keyring: keyringProvider,
		environ: env.ToMap(os.Environ()),
	}
}

// WithEnvironment replaces the process environment used for overrides.
func (l *Loader) WithEnvironment(environ map[string]string) *Loader {
	l.environ = environ
	return l
}

// Load layers defaults, the YAML file, a .env file in the working directory and
// MLCOMMONS_ environment variables, in that order. API keys missing after that
// are looked up in the OS keyring. A missing file is only an error when the
// path was given explicitly.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if err := l.loadFile(path, cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	environ, err := l.mergeDotEnv(DotEnvFile)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	l.resolveSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	content, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// mergeDotEnv never overrides variables that are already set.
func (l *Loader) mergeDotEnv(path string) (map[string]string, error) {
	merged := make(map[string]string, len(l.environ))
	for k, v := range l.environ {
		merged[k] = v
	}

	f, err := l.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return merged, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for k, v := range values {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged, nil
}

func (l *Loader) resolveSecrets(cfg *Config) {
	if l.keyring == nil {
		return
	}

	secrets := []struct {
		provider string
		target   *string
	}{
		{"openai", &cfg.LLM.OpenAIAPIKey},
		{"anthropic", &cfg.LLM.AnthropicAPIKey},
	}

	for _, s := range secrets {
		if *s.target != "" {
			continue
		}
		secret, err := keyring.Lookup(l.keyring, keyring.ProviderKey(s.provider))
		if err != nil {
			// headless hosts often have no secret service
			slog.Warn("failed to read api key from keyring", "provider", s.provider, "error", err)
			continue
		}
		*s.target = secret
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}

	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	return nil
}
