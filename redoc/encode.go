package redoc

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding of a [Result].
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses the string and returns the corresponding [Format].
// An empty string gives [FormatJSON].
func ParseFormat(format string) (Format, error) {
	switch f := Format(format); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

// Encode writes the result to w in the given format.
// Both formats have the same document shape, the YAML is produced from the JSON encoding.
func Encode(w io.Writer, res Result, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decoding result: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
