package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"

	"github.com/will-hwang/ml-commons/frontend/cli/cmd/mocks"
	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/keyring"
	sharedmocks "github.com/will-hwang/ml-commons/shared/mocks"
)

type MockRenderer struct {
	RenderedObjects any
	RenderFormat    OutputFormat
}

func (m *MockRenderer) Render(out io.Writer, resources any, options *RenderOptions) error {
	m.RenderedObjects = resources
	if options != nil {
		m.RenderFormat = options.Format
	}
	return nil
}

type TestSetup struct {
	CmpOptions []cmp.Option
}

type TestScenario struct {
	Name            string
	Command         []string
	Stdin           string
	SetupMocks      func(mockClient *mocks.MockAPIClient)
	SetupFileSystem func(fs *afero.Afero)
	SetupKeyring    func(kr *sharedmocks.MockProvider)
	SetupEnv        map[string]string
	Expected        TestExpectation
}

type TestExpectation struct {
	Stdout          string
	Error           string
	RenderedObjects any
	RenderFormat    OutputFormat
}

func (s *TestSetup) RunTests(t *testing.T, scenarios []TestScenario) {
	if len(scenarios) == 0 {
		t.Fatalf("no scenarios provided")
	}

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockAPIClient(ctrl)
			if scenario.SetupMocks != nil {
				scenario.SetupMocks(mockClient)
			}

			keyringProvider := sharedmocks.NewMockProvider(ctrl)
			if scenario.SetupKeyring != nil {
				scenario.SetupKeyring(keyringProvider)
			}
			keyringProvider.EXPECT().Get(gomock.Any()).Return("", &keyring.ErrSecretNotFound{}).AnyTimes()

			fs := &afero.Afero{Fs: afero.NewMemMapFs()}
			if scenario.SetupFileSystem != nil {
				scenario.SetupFileSystem(fs)
			}

			for key, value := range scenario.SetupEnv {
				t.Setenv(key, value)
			}

			testCmd := NewRootCmd()

			var stdin bytes.Buffer
			if scenario.Stdin != "" {
				stdin.WriteString(scenario.Stdin)
			}
			testCmd.SetIn(&stdin)

			var stdout, stderr bytes.Buffer
			testCmd.SetOut(&stdout)
			testCmd.SetErr(&stderr)

			mockRenderer := &MockRenderer{}
			ctx := context.Background()
			ctx = context.WithValue(ctx, ContextKeyAPIClient, APIClient(mockClient))
			ctx = context.WithValue(ctx, ContextKeyFileSystem, fs)
			ctx = context.WithValue(ctx, ContextKeyOutputRenderer, OutputRenderer(mockRenderer))
			ctx = context.WithValue(ctx, ContextKeyUserInfo, shared.UserInfo(shared.NewDefaultUserInfo(fs)))
			ctx = context.WithValue(ctx, ContextKeyKeyring, keyring.Provider(keyringProvider))
			ctx = context.WithValue(ctx, ContextKeyDisableFileLogs, true)

			testCmd.SetArgs(scenario.Command)

			var actual TestExpectation
			err := testCmd.ExecuteContext(ctx)
			if err != nil {
				actual.Error = err.Error()
			}

			actual.RenderedObjects = mockRenderer.RenderedObjects
			actual.RenderFormat = mockRenderer.RenderFormat
			actual.Stdout = stdout.String()

			if diff := cmp.Diff(scenario.Expected, actual, s.CmpOptions...); diff != "" {
				t.Errorf("%s() mismatch (-want +got):\n%s", scenario.Name, diff)
			}
		})
	}
}
