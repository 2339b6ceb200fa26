package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/will-hwang/ml-commons/backend/analytics"
	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/event"
	"github.com/will-hwang/ml-commons/backend/memory"
	"github.com/will-hwang/ml-commons/backend/memory/redis"
	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/qa/llm"
	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/config"
	"github.com/will-hwang/ml-commons/shared/listener"
)

type serveOptions struct {
	HTTPAddress string
	UnixSocket  string
}

func NewServeCmd() *cobra.Command {
	options := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve [flags]",
		Short: "Run the API server",
		Long: `Run the task and question-answering API as a long-running process.

The server listens on the unix socket given by --listen-unix, otherwise on the
tcp address from --listen-http or the config file. When started through
systemd socket activation without either, the inherited socket is used.
Callers on the unix socket are trusted; tcp callers must present the
configured bearer token.`,
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			address := options.HTTPAddress
			unixSocket := options.UnixSocket
			if address == "" && unixSocket == "" && !listener.IsSystemdSocketActivation() {
				address = cfg.Server.Address
				unixSocket = cfg.Server.UnixSocket
			}

			provider, err := listener.Detect(address, unixSocket)
			if err != nil {
				return fmt.Errorf("failed to detect listener provider: %w", err)
			}

			return runServer(cmd.Context(), cfg, provider, getUserInfo(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&options.HTTPAddress, "listen-http", "", "The address to listen on for HTTP requests")
	cmd.Flags().StringVar(&options.UnixSocket, "listen-unix", "", "The path to listen on for Unix socket requests")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, provider listener.Provider, userInfo shared.UserInfo) error {
	logger := slog.Default()

	sqlitePath := cfg.Store.SQLitePath
	if sqlitePath == "" {
		dataDir, err := userInfo.DataDir()
		if err != nil {
			return err
		}
		sqlitePath = filepath.Join(dataDir, shared.AppName+".db")
	}

	db, err := memory.Open(ctx, sqlitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	conversations := memory.NewConversationStore(db)

	var tasks api.TaskStore = memory.NewTaskStore(db)
	if cfg.Store.Backend == config.BackendRedis {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Store.RedisAddr, err)
		}
		tasks = redis.NewTaskStore(client, cfg.Store.RedisPrefix)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := event.NewBus(registry)
	defer bus.Close()
	logEvents(bus, logger)

	analyticsClient, err := analytics.New(cfg.Analytics.PostHogKey, cfg.Analytics.PostHogEndpoint)
	if err != nil {
		return err
	}
	defer analyticsClient.Close()

	models, err := llm.NewRegistryFromConfig(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to set up llm providers: %w", err)
	}
	if len(models.Names()) == 0 {
		logger.Warn("no llm provider configured, qa requests will fail")
	}

	processor := qa.NewProcessor(models,
		qa.WithMemory(conversations),
		qa.WithEventBus(bus),
		qa.WithAnalytics(analyticsClient),
		qa.WithMetrics(qa.NewMetrics(registry)),
		qa.WithLogger(logger),
		qa.WithMaxTokens(int64(cfg.LLM.MaxTokens)),
	)

	handler := api.NewHandler(api.HandlerOptions{
		Tasks:          tasks,
		Conversations:  conversations,
		Processor:      processor,
		Bus:            bus,
		Analytics:      analyticsClient,
		Registry:       registry,
		Logger:         logger,
		AuthToken:      cfg.Server.AuthToken,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	server := api.NewServer(handler, provider, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// logEvents writes an audit line for every domain event the server publishes.
func logEvents(bus *event.Bus, logger *slog.Logger) {
	event.Subscribe[event.TaskDeletedEvent](bus, func(ctx context.Context, e event.TaskDeletedEvent) {
		logger.Info("task deleted", "task_id", e.TaskID, "version", e.Version)
	}, nil)
	event.Subscribe[event.InteractionCreatedEvent](bus, func(ctx context.Context, e event.InteractionCreatedEvent) {
		logger.Info("interaction recorded", "conversation_id", e.ConversationID, "interaction_id", e.InteractionID)
	}, nil)
}
