package cmd

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/task"
	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/config"
	"github.com/will-hwang/ml-commons/shared/keyring"
)

type ContextKey string

const (
	ContextKeyAPIClient       ContextKey = "api_client"
	ContextKeyFileSystem      ContextKey = "file_system"
	ContextKeyOutputRenderer  ContextKey = "output_renderer"
	ContextKeyUserInfo        ContextKey = "user_info"
	ContextKeyKeyring         ContextKey = "keyring"
	ContextKeyConfig          ContextKey = "config"
	ContextKeyDisableFileLogs ContextKey = "disable_file_logs"
)

// APIClient is the subset of the server API the commands call.
//
//go:generate mockgen -destination=mocks/api_client_mock.go -package=mocks . APIClient
type APIClient interface {
	CreateTask(ctx context.Context, req *api.CreateTaskRequest) (*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context, req *api.ListTasksRequest) ([]*task.Task, error)
	DeleteTask(ctx context.Context, id string) (*task.DeleteReceipt, error)
	Answer(ctx context.Context, req *api.AnswerRequest) (*qa.Answer, error)
	CreateConversation(ctx context.Context, name string) (*api.CreateConversationResponse, error)
}

var _ APIClient = (*api.Client)(nil)

const clientTimeout = 2 * time.Minute

func getAPIClient(ctx context.Context) APIClient {
	client, _ := ctx.Value(ContextKeyAPIClient).(APIClient)
	return client
}

func getFileSystem(ctx context.Context) *afero.Afero {
	if fs, ok := ctx.Value(ContextKeyFileSystem).(*afero.Afero); ok {
		return fs
	}
	return &afero.Afero{Fs: afero.NewOsFs()}
}

func getRenderer(ctx context.Context) OutputRenderer {
	if renderer, ok := ctx.Value(ContextKeyOutputRenderer).(OutputRenderer); ok {
		return renderer
	}
	return &DefaultRenderer{}
}

func getUserInfo(ctx context.Context) shared.UserInfo {
	if userInfo, ok := ctx.Value(ContextKeyUserInfo).(shared.UserInfo); ok {
		return userInfo
	}
	return shared.NewDefaultUserInfo(getFileSystem(ctx))
}

func getKeyring(ctx context.Context) keyring.Provider {
	if provider, ok := ctx.Value(ContextKeyKeyring).(keyring.Provider); ok {
		return provider
	}
	return keyring.NewKeyringProvider()
}

func getConfig(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(ContextKeyConfig).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}
