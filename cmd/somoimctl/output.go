package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(strings.TrimSpace(s))); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// tabular is implemented by command results that can print as a table.
type tabular interface {
	header() []string
	rows() [][]string
}

// render writes v in the requested format. Table output needs v to be
// tabular; json and yaml marshal v as-is.
func render(w io.Writer, f format, v any) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	t, ok := v.(tabular)
	if !ok {
		return fmt.Errorf("%T has no table form; use -o json", v)
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.header()...).
		Rows(t.rows()...)
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}
