package render

import (
	"bytes"
	"context"

	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/errors"
	"github.com/matzehuels/archviz/pkg/io"
)

// Text renders the formats that need no layout engine: dot, mermaid, json
// and toml. dot is the DOT source the caller already emitted.
func Text(d *diagram.Diagram, dot string, format Format) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatMermaid:
		return []byte(ToMermaid(d)), nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := io.WriteJSON(d, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := io.WriteTOML(d, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode toml")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s is not a text format", format)
	}
}

// Render produces a single artifact for d, using engine for image formats.
func Render(ctx context.Context, engine Engine, d *diagram.Diagram, format Format, opts diagram.Options) ([]byte, error) {
	dot := diagram.ToDOT(d, opts)
	if format.NeedsEngine() {
		return engine.Render(ctx, dot, format)
	}
	return Text(d, dot, format)
}
