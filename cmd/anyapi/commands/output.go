package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const defaultJSONIndent = "  "

// outputFormat returns the --output value, validated.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString(keyOutput))
	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, format)
	}
}

// render writes value as JSON or YAML, or calls table for the table format.
func render(out io.Writer, value interface{}, table func(*tablewriter.Table)) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", defaultJSONIndent)

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		t := tablewriter.NewWriter(out)
		table(t)

		err := t.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return constants.NotAvailable
	}

	return s
}

// title turns an enum value like "multi_select" into "Multi Select" for tables.
func title(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
