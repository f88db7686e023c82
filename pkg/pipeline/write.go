package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteArtifacts writes every artifact in result to dir as <base>.<ext>, in
// the order the formats were requested, and returns the written paths.
// An empty base falls back to the diagram's filename. Existing files are
// overwritten.
func WriteArtifacts(result *Result, dir, base string) ([]string, error) {
	if base == "" {
		base = result.Diagram.Filename
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(result.Formats))
	for _, format := range result.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := filepath.Join(dir, base+"."+format.Ext())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
