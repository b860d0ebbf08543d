// Package config loads nova's inputs: the viper-backed settings source,
// the profile tree and topfiles.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// DecodeDocument parses one YAML document into a generic mapping.
// An empty document yields an empty mapping.
func DecodeDocument(r io.Reader) (map[string]any, error) {
	var doc map[string]any

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// readFile reads name below root. Access outside root is rejected by
// os.Root.
func readFile(root *os.Root, name string) ([]byte, error) {
	file, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()
	return io.ReadAll(file)
}

// plainValue converts ordered mappings produced by yaml.UseOrderedMap back
// into plain maps, recursively.
func plainValue(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(t))
		for _, item := range t {
			m[fmt.Sprint(item.Key)] = plainValue(item.Value)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	case map[string]any:
		for k, item := range t {
			t[k] = plainValue(item)
		}
		return t
	default:
		return v
	}
}
