package fail

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/will-hwang/ml-commons/frontend/cli/pkg/terminal"
)

type UserError struct {
	Cause       error
	UserMessage string
	Solutions   []string
	TechDetails string
}

func (e *UserError) Error() string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("%s %s\n", terminal.ErrorSymbol, terminal.Bold(e.UserMessage)))

	if len(e.Solutions) > 0 {
		msg.WriteString(fmt.Sprintf("\n%s Try these solutions:\n", terminal.InfoSymbol))
		for i, solution := range e.Solutions {
			msg.WriteString(fmt.Sprintf("  %d. %s\n", i+1, solution))
		}
	}

	if e.TechDetails != "" {
		msg.WriteString(fmt.Sprintf("\nTechnical details: %s\n", e.TechDetails))
	}

	return msg.String()
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

func NewConnectionError(endpoint string, err error) *UserError {
	var solutions []string

	switch {
	case strings.Contains(err.Error(), "connection refused"):
		solutions = []string{
			"Start the server with 'ml-commons serve'",
			"Verify the endpoint address and port",
		}
	case strings.Contains(err.Error(), "no such file"):
		solutions = []string{
			"Check that the socket file exists and is readable",
			"Start the server with 'ml-commons serve --listen-unix <path>'",
		}
	default:
		solutions = []string{
			"Check the server logs for startup errors",
			"Pass the right address with --endpoint",
		}
	}

	return &UserError{
		Cause:       err,
		UserMessage: "Cannot connect to the ml-commons server",
		Solutions:   solutions,
		TechDetails: fmt.Sprintf("Connection failed to %s: %v", endpoint, err),
	}
}

// EnhanceError turns transport failures into a UserError and leaves every
// other error untouched.
func EnhanceError(err error, endpoint string) error {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}

	if connect.CodeOf(err) == connect.CodeUnavailable {
		return NewConnectionError(endpoint, err)
	}

	if connect.CodeOf(err) == connect.CodeUnauthenticated {
		return &UserError{
			Cause:       err,
			UserMessage: "The server rejected the request credentials",
			Solutions: []string{
				"Set the server token with --token or MLCOMMONS_SERVER_AUTH_TOKEN",
				"Connect over the unix socket, which needs no token",
			},
			TechDetails: err.Error(),
		}
	}

	return err
}
