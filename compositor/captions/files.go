package captions

import (
	"fmt"
	"os"
)

// LoadFile reads and parses one subtitle file.
func LoadFile(path string, opts ParseOptions) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitle file: %w", err)
	}
	entries, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// WriteFile generates and writes one subtitle file.
func WriteFile(path string, entries []Entry, opts GenerateOptions) error {
	if err := os.WriteFile(path, Generate(entries, opts), 0644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return nil
}

// MergeFiles loads each file in order and merges the tracks end to end with
// gapSeconds between them.
func MergeFiles(paths []string, gapSeconds float64, opts ParseOptions) ([]Entry, error) {
	tracks := make([][]Entry, 0, len(paths))
	for _, p := range paths {
		entries, err := LoadFile(p, opts)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, entries)
	}
	return Merge(tracks, gapSeconds), nil
}
