package ext

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestSuffix is appended to a header path to find its symbol manifest.
const ManifestSuffix = ".yaml"

// ManifestReader reads the YAML symbol manifest written next to a header
// (`vector.hpp` -> `vector.hpp.yaml`) by the external introspection tool.
// A header without a manifest declares no symbols.
//
// Example manifest:
//
//	symbols:
//	  - name: Heap
//	    kind: class
//	    generics: 1
//	    methods:
//	      - name: unwrap
//	        kind: function
type ManifestReader struct{}

func (ManifestReader) ReadHeader(path string) (*Summary, error) {
	data, err := os.ReadFile(ManifestPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("header has no manifest", "path", path)
		return &Summary{Location: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(path, data)
}

// ParseManifest decodes manifest data for the header at path.
func ParseManifest(path string, data []byte) (*Summary, error) {
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing manifest for %s: %w", path, err)
	}
	s.Location = path
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ManifestPath returns where the manifest of a header lives.
func ManifestPath(header string) string {
	return header + ManifestSuffix
}
