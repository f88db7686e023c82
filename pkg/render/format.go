package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/archviz/pkg/errors"
)

// Format is an output format name, also used as the file extension.
type Format string

const (
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatJPG     Format = "jpg"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
	FormatTOML    Format = "toml"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatPNG

// Formats lists every supported format.
var Formats = []Format{FormatPNG, FormatSVG, FormatJPG, FormatDOT, FormatMermaid, FormatJSON, FormatTOML}

var contentTypes = map[Format]string{
	FormatPNG:     "image/png",
	FormatSVG:     "image/svg+xml",
	FormatJPG:     "image/jpeg",
	FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	FormatMermaid: "text/plain; charset=utf-8",
	FormatJSON:    "application/json",
	FormatTOML:    "application/toml",
}

var extensions = map[Format]string{
	FormatMermaid: "mmd",
}

// ParseFormat validates a single format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "jpeg" {
		f = FormatJPG
	}
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", s, formatList())
	}
	return f, nil
}

// ParseFormats parses a comma-separated format list. An empty string yields
// [DefaultFormat]; duplicates are dropped.
func ParseFormats(s string) ([]Format, error) {
	if strings.TrimSpace(s) == "" {
		return []Format{DefaultFormat}, nil
	}
	var out []Format
	for _, part := range strings.Split(s, ",") {
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	return contentTypes[f]
}

// NeedsEngine reports whether producing f requires a layout engine.
func (f Format) NeedsEngine() bool {
	return f == FormatPNG || f == FormatSVG || f == FormatJPG
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
