package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ParseJSON unmarshals a JSON object into a type T.
// It tolerates a UTF-8 byte order mark and text around the outermost object,
// which shows up in files exported by spreadsheet tools and log scrapers.
func ParseJSON[T any](data []byte) (T, error) {
	var zero T
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found (missing '{')")
	}
	if end < start {
		return zero, fmt.Errorf("no JSON object found (missing '}')")
	}

	var result T
	if err := json.Unmarshal(data[start:end+1], &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// ReadJSON loads and parses a JSON object file.
func ReadJSON[T any](path string) (T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	v, err := ParseJSON[T](data)
	if err != nil {
		return zero, fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	return v, nil
}

// WriteJSON writes v as indented JSON. The file is written to a temporary
// sibling first and renamed into place.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create '%s': %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move '%s' into place: %w", path, err)
	}
	return nil
}
