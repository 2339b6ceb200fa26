package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/stream"
	"github.com/will-hwang/ml-commons/backend/xcontent"
)

type qaEncodeOptions struct {
	Format string
}

func NewQAEncodeCmd() *cobra.Command {
	options := &qaEncodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode [file] [flags]",
		Short: "Encode a parameters document into its hex wire form",
		Example: `  # Encode a parameters file
  ml-commons qa encode params.yaml

  # Encode from stdin
  echo '{"llm_question":"why?"}' | ml-commons qa encode`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				path string
				err  error
			)
			if len(args) == 1 {
				path = args[0]
				data, err = getFileSystem(cmd.Context()).ReadFile(path)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read parameters: %w", err)
			}

			t, err := contentTypeFor(path, options.Format)
			if err != nil {
				return err
			}

			params, err := qa.ParseParameters(t, data)
			if err != nil {
				return err
			}

			out := stream.NewBufferOutput()
			if err := params.WriteTo(out); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out.Bytes()))
			return err
		},
	}

	cmd.Flags().StringVar(&options.Format, "format", "", "Input format (json, yaml, cbor); inferred from the file extension")
	return cmd
}

type qaDecodeOptions struct {
	Format string
}

func NewQADecodeCmd() *cobra.Command {
	options := &qaDecodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode <hex> [flags]",
		Short: "Decode the hex wire form of parameters into a document",
		Example: `  # Decode parameters as YAML
  ml-commons qa decode 0000047768793f00000000000000 --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := xcontent.ParseType(options.Format)
			if err != nil {
				return err
			}
			if t == xcontent.CBOR {
				return fmt.Errorf("cbor is binary, decode to json or yaml")
			}

			raw, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid hex input: %w", err)
			}

			params, err := qa.ReadParameters(stream.NewBytesReader(raw))
			if err != nil {
				return err
			}

			doc, err := params.ToXContent(t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := out.Write(doc); err != nil {
				return err
			}
			if len(doc) > 0 && doc[len(doc)-1] != '\n' {
				_, err = io.WriteString(out, "\n")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&options.Format, "format", "json", "Output format (json, yaml)")
	return cmd
}
