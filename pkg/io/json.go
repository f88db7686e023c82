package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/archviz/pkg/diagram"
)

// ReadJSON decodes a JSON definition from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*diagram.Diagram, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Diagram()
}

// WriteJSON encodes d as an indented JSON definition.
func WriteJSON(d *diagram.Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDiagram(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
