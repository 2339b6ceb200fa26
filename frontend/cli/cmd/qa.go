package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/xcontent"
)

func NewQACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "qa",
		Short:   "Answer questions over search results with an LLM",
		GroupID: "resource",
	}

	cmd.AddCommand(NewQAAskCmd())
	cmd.AddCommand(NewQAConversationCmd())
	cmd.AddCommand(NewQAEncodeCmd())
	cmd.AddCommand(NewQADecodeCmd())
	return cmd
}

// contentTypeFor picks the document format from an explicit flag value or,
// failing that, the file extension. JSON is the fallback.
func contentTypeFor(path, explicit string) (xcontent.Type, error) {
	if explicit != "" {
		return xcontent.ParseType(explicit)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return xcontent.JSON, nil
	}
	t, err := xcontent.ParseType(ext)
	if err != nil {
		return 0, fmt.Errorf("cannot infer format of %s, pass --format: %w", path, err)
	}
	return t, nil
}
