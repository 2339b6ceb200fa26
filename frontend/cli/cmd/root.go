package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/frontend/cli/pkg/fail"
	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/config"
)

var (
	// Version is the version of the CLI
	Version = "unknown"

	// GitCommit is the commit that the CLI was built from
	GitCommit = "unknown"
)

type globalOptions struct {
	LogLevel   LogLevel
	ConfigPath string
	Endpoint   string
	Token      string
}

func NewRootCmd() *cobra.Command {
	options := globalOptions{}
	cmd := &cobra.Command{
		Use:           "ml-commons",
		Short:         "Manage ML tasks and answer questions over search results.",
		Version:       Version + " (" + GitCommit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(getFileSystem(cmd.Context()).Fs, getKeyring(cmd.Context()))
			cfg, err := loader.Load(options.ConfigPath)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), ContextKeyConfig, cfg))

			options.LogLevel = resolveLogLevel(cmd, &options, cfg)
			slog.SetDefault(slog.New(slog.NewJSONHandler(setupLogSink(cmd.Context(), cfg, cmd.ErrOrStderr()), &slog.HandlerOptions{
				Level: options.LogLevel.SlogLevel(),
			})))

			if cfg.SentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Release: Version}); err != nil {
					slog.Warn("failed to initialize sentry", "error", err)
				}
			}

			if requiresClient(cmd) {
				if err := setAPIClient(cmd, &options, cfg); err != nil {
					slog.Error("failed to set API client", "error", err)
					return err
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().Var(&options.LogLevel, "log-level", "set the log level")
	cmd.PersistentFlags().StringVar(&options.ConfigPath, "config", "", "path to the config file (default: $XDG_CONFIG_HOME/ml-commons/config.yaml)")
	cmd.PersistentFlags().StringVar(&options.Endpoint, "endpoint", "", "server address: http(s) URL, host:port or unix:///path")
	cmd.PersistentFlags().StringVar(&options.Token, "token", "", "bearer token for tcp endpoints")

	cmd.AddGroup(
		&cobra.Group{
			ID:    "resource",
			Title: "Resource Management",
		},
		&cobra.Group{
			ID:    "system",
			Title: "System Commands",
		},
	)

	cmd.AddCommand(NewTaskCmd())
	cmd.AddCommand(NewQACmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewKeyCmd())
	return cmd
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
			fmt.Fprintf(os.Stderr, "Panic occurred: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}

	sentry.Flush(2 * time.Second)
}

func setAPIClient(cmd *cobra.Command, options *globalOptions, cfg *config.Config) error {
	if getAPIClient(cmd.Context()) != nil {
		return nil
	}

	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	token := options.Token
	if token == "" {
		token = cfg.Server.AuthToken
	}

	var clientOpts []api.ClientOption
	if token != "" && !strings.HasPrefix(endpoint, "unix://") {
		clientOpts = append(clientOpts, api.WithToken(token))
	}

	client, err := api.NewEndpointClient(endpoint, clientTimeout, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}
	cmd.SetContext(context.WithValue(cmd.Context(), ContextKeyAPIClient, APIClient(client)))
	cmd.SetContext(context.WithValue(cmd.Context(), contextKeyEndpoint, endpoint))
	return nil
}

const contextKeyEndpoint ContextKey = "endpoint"

// clientError adds connection hints to transport failures.
func clientError(cmd *cobra.Command, err error) error {
	endpoint, _ := cmd.Context().Value(contextKeyEndpoint).(string)
	return fail.EnhanceError(err, endpoint)
}

func requiresClient(cmd *cobra.Command) bool {
	skipCommands := []string{"help", "serve", "token.", "key.", "qa.encode", "qa.decode"}
	cmdName := cmd.Name()
	if parent := cmd.Parent(); parent != nil {
		cmdName = parent.Name() + "." + cmdName
	}

	for _, skipCmd := range skipCommands {
		if strings.HasPrefix(cmdName, skipCmd) || cmd.Name() == skipCmd {
			return false
		}
	}
	return cmd.Runnable() && cmd.Parent() != nil && cmd.Parent().Parent() != nil
}

func confirmDeletion(stdin io.Reader, stdout io.Writer, kind string, ids []string) bool {
	if len(ids) == 0 {
		return false
	}

	if len(ids) > 1 {
		kind = kind + "s"
	}

	message := fmt.Sprintf("Are you sure you want to delete %s %s?", kind, strings.Join(ids, " "))
	return confirm(stdin, stdout, message)
}

func confirm(stdin io.Reader, stdout io.Writer, message string) bool {
	fmt.Fprintf(stdout, "%s (y/n): ", message)
	var answer string
	if _, err := fmt.Fscan(stdin, &answer); err != nil {
		return false
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}

func (e *LogLevel) String() string {
	if e == nil {
		return ""
	}
	return string(*e)
}

func (e *LogLevel) Set(v string) error {
	for _, level := range logLevels {
		if v == string(level) {
			*e = level
			return nil
		}
	}
	return errors.New(`must be one of "debug", "info", "warn", or "error"`)
}

func (e *LogLevel) Type() string {
	return "log-level"
}

func (e *LogLevel) SlogLevel() slog.Level {
	switch *e {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// resolveLogLevel prefers the flag, then MLCOMMONS_LOG_LEVEL and the config
// file (already merged into cfg), then info.
func resolveLogLevel(cmd *cobra.Command, options *globalOptions, cfg *config.Config) LogLevel {
	if cmd.Flags().Changed("log-level") {
		return options.LogLevel
	}

	var level LogLevel
	if err := level.Set(strings.ToLower(cfg.Log.Level)); err == nil {
		return level
	}
	return LogLevelInfo
}

func setupLogSink(ctx context.Context, cfg *config.Config, stderr io.Writer) io.Writer {
	if disable, ok := ctx.Value(ContextKeyDisableFileLogs).(bool); ok && disable {
		return stderr
	}

	path := cfg.Log.File
	if path == "" {
		logDir, err := getUserInfo(ctx).LogDir()
		if err != nil {
			return stderr
		}
		path = filepath.Join(logDir, shared.AppName+".json")
	}

	fileLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
	return fileLogger
}
