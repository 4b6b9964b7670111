// Package output renders a built report for files and terminals.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"gopkg.in/yaml.v3"
)

// Formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat accepts json, yaml and yml, case insensitive.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *domain.Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
