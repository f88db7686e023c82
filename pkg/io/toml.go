package io

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archviz/pkg/diagram"
)

// ReadTOML decodes a TOML definition from r. Keys that do not map onto the
// definition schema are rejected so typos do not silently drop styling.
func ReadTOML(r io.Reader) (*diagram.Diagram, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode: unknown key %q", undecoded[0].String())
	}
	return doc.Diagram()
}

// WriteTOML encodes d as a TOML definition.
func WriteTOML(d *diagram.Diagram, w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(FromDiagram(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
