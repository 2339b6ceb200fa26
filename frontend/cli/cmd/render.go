package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/will-hwang/ml-commons/frontend/cli/pkg/terminal"
)

type OutputFormat string

const (
	OutputFormatTable    OutputFormat = "table"
	OutputFormatJSON     OutputFormat = "json"
	OutputFormatYAML     OutputFormat = "yaml"
	OutputFormatMarkdown OutputFormat = "markdown"
)

func (f *OutputFormat) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

func (f *OutputFormat) Set(v string) error {
	switch strings.ToLower(v) {
	case "table":
		*f = OutputFormatTable
	case "json":
		*f = OutputFormatJSON
	case "yaml", "yml":
		*f = OutputFormatYAML
	case "markdown", "md":
		*f = OutputFormatMarkdown
	default:
		return errors.New(`must be one of "table", "json", "yaml", or "markdown"`)
	}
	return nil
}

func (f *OutputFormat) Type() string {
	return "format"
}

type RenderOptions struct {
	Format OutputFormat
}

func addRenderOptions(cmd *cobra.Command, options *RenderOptions) {
	options.Format = OutputFormatTable
	cmd.Flags().VarP(&options.Format, "output", "o", "output format (table, json, yaml, markdown)")
}

// OutputRenderer writes display values. Resources is a pointer to a display
// struct or a slice of them; fields are labelled by their `table` tag.
type OutputRenderer interface {
	Render(out io.Writer, resources any, options *RenderOptions) error
}

type DefaultRenderer struct{}

func (r *DefaultRenderer) Render(out io.Writer, resources any, options *RenderOptions) error {
	format := OutputFormatTable
	if options != nil && options.Format != "" {
		format = options.Format
	}

	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resources)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(resources); err != nil {
			return err
		}
		return encoder.Close()
	case OutputFormatMarkdown:
		return renderMarkdown(out, resources)
	default:
		headers, rows := displayRows(resources)
		if len(rows) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(out, terminal.Table(headers, rows))
		return err
	}
}

func renderMarkdown(out io.Writer, resources any) error {
	headers, rows := displayRows(resources)

	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		for j, value := range row {
			fmt.Fprintf(&sb, "**%s:** %s\n", headers[j], value)
		}
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// displayRows flattens display structs into table cells.
func displayRows(resources any) ([]string, [][]string) {
	v := reflect.ValueOf(resources)
	if !v.IsValid() {
		return nil, nil
	}

	var items []reflect.Value
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			items = append(items, v.Index(i))
		}
	default:
		items = []reflect.Value{v}
	}

	var (
		headers []string
		rows    [][]string
	)
	for _, item := range items {
		for item.Kind() == reflect.Pointer || item.Kind() == reflect.Interface {
			if item.IsNil() {
				break
			}
			item = item.Elem()
		}
		if item.Kind() != reflect.Struct {
			continue
		}

		itemType := item.Type()
		var row []string
		var rowHeaders []string
		for i := range itemType.NumField() {
			field := itemType.Field(i)
			if !field.IsExported() {
				continue
			}
			header := field.Tag.Get("table")
			if header == "-" {
				continue
			}
			if header == "" {
				header = field.Name
			}
			rowHeaders = append(rowHeaders, header)
			row = append(row, formatCell(item.Field(i)))
		}
		if headers == nil {
			headers = rowHeaders
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func formatCell(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return ""
		}
		return formatCell(v.Elem())
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range v.Len() {
			parts[i] = formatCell(v.Index(i))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Interface())
}
