package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"

	"github.com/will-hwang/ml-commons/backend/api/auth"
	"github.com/will-hwang/ml-commons/shared/keyring"
	sharedmocks "github.com/will-hwang/ml-commons/shared/mocks"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var level LogLevel
			err := level.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := level.SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootConfig(t *testing.T) {
	setup := &TestSetup{}

	setup.RunTests(t, []TestScenario{
		{
			Name:    "error - explicit config file missing",
			Command: []string{"task", "list", "--config", "/missing.yaml"},
			Expected: TestExpectation{
				Error: "read config /missing.yaml: open /missing.yaml: file does not exist",
			},
		},
		{
			Name:    "error - invalid store backend",
			Command: []string{"task", "list", "--config", "/etc/ml-commons.yaml"},
			SetupFileSystem: func(fs *afero.Afero) {
				fs.WriteFile("/etc/ml-commons.yaml", []byte("store:\n  backend: mongo\n"), 0o644)
			},
			Expected: TestExpectation{
				Error: `unsupported store backend "mongo"`,
			},
		},
		{
			Name:    "error - environment overrides config file",
			Command: []string{"task", "list", "--config", "/etc/ml-commons.yaml"},
			SetupFileSystem: func(fs *afero.Afero) {
				fs.WriteFile("/etc/ml-commons.yaml", []byte("llm:\n  max_tokens: 512\n"), 0o644)
			},
			SetupEnv: map[string]string{"MLCOMMONS_LLM_MAX_TOKENS": "0"},
			Expected: TestExpectation{
				Error: "llm max tokens must be positive, got 0",
			},
		},
	})
}

func TestTokenGenerate(t *testing.T) {
	ctrl := gomock.NewController(t)
	keyringProvider := sharedmocks.NewMockProvider(ctrl)
	keyringProvider.EXPECT().Get(gomock.Any()).Return("", &keyring.ErrSecretNotFound{}).AnyTimes()

	ctx := context.Background()
	ctx = context.WithValue(ctx, ContextKeyFileSystem, &afero.Afero{Fs: afero.NewMemMapFs()})
	ctx = context.WithValue(ctx, ContextKeyKeyring, keyring.Provider(keyringProvider))
	ctx = context.WithValue(ctx, ContextKeyDisableFileLogs, true)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"token", "generate"})

	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("token generate: %v", err)
	}

	token := strings.TrimSpace(stdout.String())
	if !auth.ValidTokenFormat(token) {
		t.Errorf("token generate printed %q, not a valid token", token)
	}
}

func TestRequiresClient(t *testing.T) {
	root := NewRootCmd()

	tests := []struct {
		args []string
		want bool
	}{
		{args: []string{"task", "list"}, want: true},
		{args: []string{"qa", "ask"}, want: true},
		{args: []string{"qa", "conversation", "create"}, want: true},
		{args: []string{"qa", "encode"}, want: false},
		{args: []string{"qa", "decode"}, want: false},
		{args: []string{"token", "generate"}, want: false},
		{args: []string{"key", "set"}, want: false},
		{args: []string{"serve"}, want: false},
		{args: []string{"task"}, want: false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := root.Find(tt.args)
			if err != nil {
				t.Fatalf("Find(%v): %v", tt.args, err)
			}
			if got := requiresClient(cmd); got != tt.want {
				t.Errorf("requiresClient(%s) = %v, want %v", cmd.CommandPath(), got, tt.want)
			}
		})
	}
}
