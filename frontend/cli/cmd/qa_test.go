package cmd

import (
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"

	"github.com/will-hwang/ml-commons/backend/api"
	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/frontend/cli/cmd/mocks"
)

const searchResponse = `{
  "took": 3,
  "hits": {
    "hits": [
      {"_id": "1", "_source": {"text": "Argentina won the 2022 final."}},
      {"_id": "2"},
      {"_id": "3", "_source": {"text": "France won the 2018 final."}}
    ]
  }
}`

const searchResponseYAML = `hits:
  hits:
    - _id: "1"
      _source:
        text: Argentina won the 2022 final.
`

func testAnswer() *qa.Answer {
	return &qa.Answer{
		Answer:         "Argentina.",
		ConversationID: "conv-1",
		InteractionID:  "int-1",
		Provider:       "openai",
		Model:          "gpt-4o-mini",
	}
}

func TestQAAsk(t *testing.T) {
	setup := &TestSetup{}

	writeHits := func(fs *afero.Afero) {
		fs.WriteFile("/work/response.json", []byte(searchResponse), 0o644)
		fs.WriteFile("/work/response.yaml", []byte(searchResponseYAML), 0o644)
		fs.WriteFile("/work/response.txt", []byte(searchResponseYAML), 0o644)
	}

	setup.RunTests(t, []TestScenario{
		{
			Name:            "success - plain answer",
			Command:         []string{"qa", "ask", "Who", "won", "in", "2022?", "--hits", "/work/response.json", "--model", "openai/gpt-4o-mini", "--context-size", "2"},
			SetupFileSystem: writeHits,
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().Answer(gomock.Any(), &api.AnswerRequest{
					Ext: map[string]any{
						qa.ParamExtName: map[string]any{
							"llm_question": "Who won in 2022?",
							"model_id":     "openai/gpt-4o-mini",
							"context_size": 2,
						},
					},
					Hits: []map[string]any{
						{"text": "Argentina won the 2022 final."},
						{"text": "France won the 2018 final."},
					},
				}).Return(testAnswer(), nil)
			},
			Expected: TestExpectation{
				Stdout: "Argentina.\n",
			},
		},
		{
			Name:            "success - yaml hits and conversation",
			Command:         []string{"qa", "ask", "Who won?", "--hits", "/work/response.yaml", "-c", "conv-1", "--interaction-size", "0", "-o", "json"},
			SetupFileSystem: writeHits,
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().Answer(gomock.Any(), &api.AnswerRequest{
					Ext: map[string]any{
						qa.ParamExtName: map[string]any{
							"llm_question":     "Who won?",
							"conversation_id":  "conv-1",
							"interaction_size": 0,
						},
					},
					Hits: []map[string]any{
						{"text": "Argentina won the 2022 final."},
					},
				}).Return(testAnswer(), nil)
			},
			Expected: TestExpectation{
				RenderedObjects: testAnswer(),
				RenderFormat:    OutputFormatJSON,
			},
		},
		{
			Name:            "success - explicit hits format",
			Command:         []string{"qa", "ask", "Who won?", "--hits", "/work/response.txt", "--hits-format", "yaml"},
			SetupFileSystem: writeHits,
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().Answer(gomock.Any(), &api.AnswerRequest{
					Ext: map[string]any{
						qa.ParamExtName: map[string]any{"llm_question": "Who won?"},
					},
					Hits: []map[string]any{
						{"text": "Argentina won the 2022 final."},
					},
				}).Return(testAnswer(), nil)
			},
			Expected: TestExpectation{
				Stdout: "Argentina.\n",
			},
		},
		{
			Name:    "error - negative size",
			Command: []string{"qa", "ask", "Who won?", "--context-size=-2"},
			Expected: TestExpectation{
				Error: "[generative_qa_parameters] context_size must not be negative, got -2",
			},
		},
		{
			Name:            "error - hits file is not a search response",
			Command:         []string{"qa", "ask", "Who won?", "--hits", "/work/other.json"},
			SetupFileSystem: func(fs *afero.Afero) { fs.WriteFile("/work/other.json", []byte(`{"took": 1}`), 0o644) },
			Expected: TestExpectation{
				Error: "/work/other.json: not a search response, missing hits",
			},
		},
		{
			Name:    "error - server failure",
			Command: []string{"qa", "ask", "Who won?"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().Answer(gomock.Any(), gomock.Any()).
					Return(nil, connect.NewError(connect.CodeInvalidArgument, nil))
			},
			Expected: TestExpectation{
				Error: "invalid_argument",
			},
		},
	})
}

func TestQAConversationCreate(t *testing.T) {
	setup := &TestSetup{}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	setup.RunTests(t, []TestScenario{
		{
			Name:    "success - create conversation",
			Command: []string{"qa", "conversation", "create", "support session", "-o", "yaml"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().CreateConversation(gomock.Any(), "support session").Return(&api.CreateConversationResponse{
					ConversationID: "conv-1",
					Name:           "support session",
					CreateTime:     created,
				}, nil)
			},
			Expected: TestExpectation{
				RenderedObjects: &ConversationDisplay{
					ID:         "conv-1",
					Name:       "support session",
					CreateTime: created,
				},
				RenderFormat: OutputFormatYAML,
			},
		},
		{
			Name:    "error - conversations disabled",
			Command: []string{"qa", "conv", "create", "x"},
			SetupMocks: func(mockClient *mocks.MockAPIClient) {
				mockClient.EXPECT().CreateConversation(gomock.Any(), "x").
					Return(nil, connect.NewError(connect.CodeUnimplemented, nil))
			},
			Expected: TestExpectation{
				Error: "unimplemented",
			},
		},
	})
}

func TestQACodec(t *testing.T) {
	setup := &TestSetup{}

	setup.RunTests(t, []TestScenario{
		{
			Name:    "encode - json from stdin",
			Command: []string{"qa", "encode"},
			Stdin:   `{"llm_question":"why?"}`,
			Expected: TestExpectation{
				Stdout: "0000047768793f00000000000000\n",
			},
		},
		{
			Name:    "encode - yaml file",
			Command: []string{"qa", "encode", "/work/params.yaml"},
			SetupFileSystem: func(fs *afero.Afero) {
				fs.WriteFile("/work/params.yaml", []byte("llm_question: why?\ncontext_size: 3\n"), 0o644)
			},
			Expected: TestExpectation{
				Stdout: "0000047768793f0000010000000300000000\n",
			},
		},
		{
			Name:    "encode - unknown field",
			Command: []string{"qa", "encode", "--format", "json"},
			Stdin:   `{"llm_question":"why?","temperature":1}`,
			Expected: TestExpectation{
				Error: "[generative_qa_parameters] unknown field [temperature]",
			},
		},
		{
			Name:    "decode - json",
			Command: []string{"qa", "decode", "0000047768793f00000000000000"},
			Expected: TestExpectation{
				Stdout: "{\"llm_question\":\"why?\"}\n",
			},
		},
		{
			Name:    "decode - yaml",
			Command: []string{"qa", "decode", "0000047768793f0000010000000300000000", "--format", "yaml"},
			Expected: TestExpectation{
				Stdout: "context_size: 3\nllm_question: why?\n",
			},
		},
		{
			Name:    "decode - invalid hex",
			Command: []string{"qa", "decode", "zz"},
			Expected: TestExpectation{
				Error: "invalid hex input: encoding/hex: invalid byte: U+007A 'z'",
			},
		},
	})
}
