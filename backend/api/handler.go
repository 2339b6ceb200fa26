package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/will-hwang/ml-commons/backend/analytics"
	"github.com/will-hwang/ml-commons/backend/api/auth"
	"github.com/will-hwang/ml-commons/backend/event"
	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/task"
)

var errConversationsDisabled = errors.New("conversation memory is not configured")

type HandlerOptions struct {
	Tasks         TaskStore
	Conversations ConversationStore
	// Processor enables the QA service when set.
	Processor *qa.Processor

	Bus       *event.Bus
	Analytics analytics.Client
	// Registry receives the handler's metrics and is served at /metrics.
	Registry *prometheus.Registry
	Logger   *slog.Logger

	AuthToken      string
	RequestTimeout time.Duration
	RequestOptions []connect.HandlerOption
}

type Handler struct {
	mux *http.ServeMux
}

func NewHandler(opts HandlerOptions) *Handler {
	handler := &Handler{
		mux: http.NewServeMux(),
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	analyticsClient := opts.Analytics
	if analyticsClient == nil {
		analyticsClient = analytics.Noop{}
	}

	interceptor := auth.NewInterceptor(auth.NewTokenVerifier(opts.AuthToken))
	handlerOpts := append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(interceptor),
	}, opts.RequestOptions...)

	var registerer prometheus.Registerer
	if opts.Registry != nil {
		registerer = opts.Registry
	}

	deleteAction := task.NewDeleteAction(opts.Tasks,
		task.WithContextSource(RequestContext{Timeout: opts.RequestTimeout}),
		task.WithEventBus(opts.Bus),
		task.WithAnalytics(analyticsClient),
		task.WithMetrics(task.NewMetrics(registerer)),
		task.WithLogger(logger.With("component", "task_delete")),
	)
	taskHandler := NewTaskHandler(opts.Tasks, deleteAction)
	handler.mux.Handle(TaskServiceCreateTaskProcedure, connect.NewUnaryHandler(TaskServiceCreateTaskProcedure, taskHandler.CreateTask, handlerOpts...))
	handler.mux.Handle(TaskServiceGetTaskProcedure, connect.NewUnaryHandler(TaskServiceGetTaskProcedure, taskHandler.GetTask, handlerOpts...))
	handler.mux.Handle(TaskServiceListTasksProcedure, connect.NewUnaryHandler(TaskServiceListTasksProcedure, taskHandler.ListTasks, handlerOpts...))
	handler.mux.Handle(TaskServiceDeleteTaskProcedure, connect.NewUnaryHandler(TaskServiceDeleteTaskProcedure, taskHandler.DeleteTask, handlerOpts...))

	if opts.Processor != nil {
		qaHandler := NewQAHandler(opts.Processor, opts.Conversations)
		handler.mux.Handle(QAServiceAnswerProcedure, connect.NewUnaryHandler(QAServiceAnswerProcedure, qaHandler.Answer, handlerOpts...))
		handler.mux.Handle(QAServiceCreateConversationProcedure, connect.NewUnaryHandler(QAServiceCreateConversationProcedure, qaHandler.CreateConversation, handlerOpts...))
	}

	handler.mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	if opts.Registry != nil {
		handler.mux.Handle(MetricsPath, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{Registry: opts.Registry}))
	}

	return handler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}
