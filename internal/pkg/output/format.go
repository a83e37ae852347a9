package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how results are printed.
type Format string

const (
	// FormatText prints one human-readable line per result.
	FormatText Format = "text"
	// FormatJSON prints a JSON document.
	FormatJSON Format = "json"
	// FormatYAML prints a YAML document.
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat parses an output format name, ignoring case. The empty string
// selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (want text, json or yaml)", ErrUnknownFormat, s)
}

// Write encodes v to w in the structured formats. JSON is indented when w
// is a terminal. For FormatText it calls text instead, which renders v line
// by line.
func Write(w io.Writer, format Format, v any, text func(io.Writer) error) error {
	switch format {
	case FormatJSON:
		data, err := MarshalJSONPretty(v, IsTerminal(w))
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		if text == nil {
			return nil
		}
		return text(w)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}
