package fail

import (
	"errors"
	"strings"
	"testing"

	"connectrpc.com/connect"
)

func TestEnhanceError(t *testing.T) {
	refused := connect.NewError(connect.CodeUnavailable, errors.New("dial tcp 127.0.0.1:9200: connect: connection refused"))
	missingSocket := connect.NewError(connect.CodeUnavailable, errors.New("dial unix /run/mlc.sock: connect: no such file or directory"))
	unauthenticated := connect.NewError(connect.CodeUnauthenticated, errors.New("invalid token"))
	notFound := connect.NewError(connect.CodeNotFound, errors.New("Fail to find task"))

	tests := []struct {
		name         string
		err          error
		wantUser     bool
		wantContains []string
	}{
		{
			name:         "connection refused",
			err:          refused,
			wantUser:     true,
			wantContains: []string{"Cannot connect", "ml-commons serve", "127.0.0.1:9200"},
		},
		{
			name:         "missing socket",
			err:          missingSocket,
			wantUser:     true,
			wantContains: []string{"socket file exists", "--listen-unix"},
		},
		{
			name:         "unauthenticated",
			err:          unauthenticated,
			wantUser:     true,
			wantContains: []string{"rejected the request credentials", "MLCOMMONS_SERVER_AUTH_TOKEN"},
		},
		{
			name:         "other errors pass through",
			err:          notFound,
			wantContains: []string{"not_found: Fail to find task"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err, "http://127.0.0.1:9200")

			var userErr *UserError
			if errors.As(got, &userErr) != tt.wantUser {
				t.Fatalf("EnhanceError() = %T, want user error %v", got, tt.wantUser)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("EnhanceError() does not wrap the original error")
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got.Error(), want) {
					t.Errorf("EnhanceError() = %q, missing %q", got.Error(), want)
				}
			}
		})
	}

	if EnhanceError(nil, "x") != nil {
		t.Error("EnhanceError(nil) should be nil")
	}
}
