package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archviz/pkg/errors"
)

// Engine lays out DOT source and rasterizes it.
type Engine interface {
	Render(ctx context.Context, dot string, format Format) ([]byte, error)
}

// Graphviz is the in-process Graphviz engine. The zero value is ready to use;
// every call starts a fresh engine instance, so Graphviz is safe for
// concurrent use.
type Graphviz struct{}

var graphvizFormats = map[Format]graphviz.Format{
	FormatPNG: graphviz.PNG,
	FormatSVG: graphviz.SVG,
	FormatJPG: graphviz.JPG,
}

// Render implements Engine.
func (Graphviz) Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	gvFormat, ok := graphvizFormats[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "graphviz cannot produce %s", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	// JPEG has no alpha channel; transparent areas would come out black.
	if format == FormatJPG {
		if err := g.SafeSet("bgcolor", "white", ""); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "set jpg background")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
	}
	if buf.Len() == 0 {
		return nil, errors.New(errors.ErrCodeRender, "render %s: engine produced no output", format)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the viewBox starts at the
// origin and width/height match it, which keeps browsers from scaling the
// point-based Graphviz output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
