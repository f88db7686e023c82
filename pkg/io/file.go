package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/errors"
)

// ImportFile reads a definition file, choosing the decoder by extension.
func ImportFile(path string) (*diagram.Diagram, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "definition %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := read(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "definition %s", path)
	}
	return d, nil
}

// ExportFile writes d to path, choosing the encoder by extension.
func ExportFile(d *diagram.Diagram, path string) error {
	var write func(*diagram.Diagram, io.Writer) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		write = WriteTOML
	case ".json":
		write = WriteJSON
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported definition extension %q (want .toml or .json)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readerFor(path string) (func(io.Reader) (*diagram.Diagram, error), error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return ReadTOML, nil
	case ".json":
		return ReadJSON, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported definition extension %q (want .toml or .json)", ext)
	}
}
