package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/task"
)

const unixScheme = "unix://"

// Client talks to a Handler over connect with the JSON codec.
type Client struct {
	createTask         *connect.Client[CreateTaskRequest, CreateTaskResponse]
	getTask            *connect.Client[GetTaskRequest, GetTaskResponse]
	listTasks          *connect.Client[ListTasksRequest, ListTasksResponse]
	deleteTask         *connect.Client[DeleteTaskRequest, DeleteTaskResponse]
	answer             *connect.Client[AnswerRequest, AnswerResponse]
	createConversation *connect.Client[CreateConversationRequest, CreateConversationResponse]
}

type clientOptions struct {
	token   string
	options []connect.ClientOption
}

type ClientOption func(*clientOptions)

// WithToken sends token as a bearer token on every call.
func WithToken(token string) ClientOption {
	return func(o *clientOptions) {
		o.token = token
	}
}

func WithConnectOptions(opts ...connect.ClientOption) ClientOption {
	return func(o *clientOptions) {
		o.options = append(o.options, opts...)
	}
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...ClientOption) *Client {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := []connect.ClientOption{connect.WithCodec(jsonCodec{})}
	if o.token != "" {
		clientOpts = append(clientOpts, connect.WithInterceptors(bearerToken(o.token)))
	}
	clientOpts = append(clientOpts, o.options...)

	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		createTask:         connect.NewClient[CreateTaskRequest, CreateTaskResponse](httpClient, baseURL+TaskServiceCreateTaskProcedure, clientOpts...),
		getTask:            connect.NewClient[GetTaskRequest, GetTaskResponse](httpClient, baseURL+TaskServiceGetTaskProcedure, clientOpts...),
		listTasks:          connect.NewClient[ListTasksRequest, ListTasksResponse](httpClient, baseURL+TaskServiceListTasksProcedure, clientOpts...),
		deleteTask:         connect.NewClient[DeleteTaskRequest, DeleteTaskResponse](httpClient, baseURL+TaskServiceDeleteTaskProcedure, clientOpts...),
		answer:             connect.NewClient[AnswerRequest, AnswerResponse](httpClient, baseURL+QAServiceAnswerProcedure, clientOpts...),
		createConversation: connect.NewClient[CreateConversationRequest, CreateConversationResponse](httpClient, baseURL+QAServiceCreateConversationProcedure, clientOpts...),
	}
}

// NewEndpointClient builds a Client for an endpoint given either as an http(s)
// URL, a bare host:port, or unix:///path/to/socket.
func NewEndpointClient(endpoint string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	httpClient, baseURL, err := httpClientFor(endpoint, timeout)
	if err != nil {
		return nil, err
	}
	return NewClient(httpClient, baseURL, opts...), nil
}

func httpClientFor(endpoint string, timeout time.Duration) (*http.Client, string, error) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case endpoint == "":
		return nil, "", fmt.Errorf("endpoint is required")
	case strings.HasPrefix(endpoint, unixScheme):
		socketPath := strings.TrimPrefix(endpoint, unixScheme)
		if socketPath == "" {
			return nil, "", fmt.Errorf("endpoint %q has no socket path", endpoint)
		}
		var dialer net.Dialer
		transport := &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, "unix", socketPath)
			},
		}
		return &http.Client{Transport: transport, Timeout: timeout}, "http://localhost", nil
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return &http.Client{Timeout: timeout}, endpoint, nil
	default:
		return &http.Client{Timeout: timeout}, "http://" + endpoint, nil
	}
}

func bearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

func (c *Client) CreateTask(ctx context.Context, req *CreateTaskRequest) (*task.Task, error) {
	res, err := c.createTask.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg.Task, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	res, err := c.getTask.CallUnary(ctx, connect.NewRequest(&GetTaskRequest{TaskID: id}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Task, nil
}

func (c *Client) ListTasks(ctx context.Context, req *ListTasksRequest) ([]*task.Task, error) {
	res, err := c.listTasks.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg.Tasks, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) (*task.DeleteReceipt, error) {
	res, err := c.deleteTask.CallUnary(ctx, connect.NewRequest(&DeleteTaskRequest{TaskID: id}))
	if err != nil {
		return nil, err
	}
	return &res.Msg.DeleteReceipt, nil
}

func (c *Client) Answer(ctx context.Context, req *AnswerRequest) (*qa.Answer, error) {
	res, err := c.answer.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return &res.Msg.Answer, nil
}

func (c *Client) CreateConversation(ctx context.Context, name string) (*CreateConversationResponse, error) {
	res, err := c.createConversation.CallUnary(ctx, connect.NewRequest(&CreateConversationRequest{Name: name}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
