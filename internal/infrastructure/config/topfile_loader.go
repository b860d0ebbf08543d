package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/reglet-dev/nova/internal/application/errors"
)

// topfileSchema describes the accepted topfile shape: a nova mapping of
// match expressions to lists (or nothing).
const topfileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nova"],
  "properties": {
    "nova": {
      "type": "object",
      "additionalProperties": {"type": ["array", "null"]}
    }
  }
}`

var (
	compiledTopfileSchema *jsonschema.Schema
	topfileSchemaOnce     sync.Once
	topfileSchemaErr      error
)

func topfileSchemaValidator() (*jsonschema.Schema, error) {
	topfileSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("topfile.json", strings.NewReader(topfileSchema)); err != nil {
			topfileSchemaErr = fmt.Errorf("failed to add topfile schema: %w", err)
			return
		}
		compiledTopfileSchema, topfileSchemaErr = compiler.Compile("topfile.json")
	})
	return compiledTopfileSchema, topfileSchemaErr
}

// TopfileLoader reads topfiles relative to the profile directory.
type TopfileLoader struct {
	profileDir string
}

// NewTopfileLoader creates a loader resolving relative paths under profileDir.
func NewTopfileLoader(profileDir string) *TopfileLoader {
	return &TopfileLoader{profileDir: profileDir}
}

// LoadTopfile implements ports.TopfileSource.
func (l *TopfileLoader) LoadTopfile(_ context.Context, path string) (*entities.Topfile, error) {
	dir, name := l.locate(path)

	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, apperrors.NewConfigurationError("topfile", "Could not load topfile", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	raw, err := readFile(root, name)
	if err != nil {
		return nil, apperrors.NewConfigurationError("topfile", "Could not load topfile", err)
	}
	return ParseTopfile(path, raw)
}

func (l *TopfileLoader) locate(path string) (string, string) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.profileDir, full)
	}
	return filepath.Dir(full), filepath.Base(full)
}

// ParseTopfile validates and decodes a topfile document. Match expressions
// keep their document order; list entries are left raw so malformed ones can
// be reported individually.
func ParseTopfile(path string, raw []byte) (*entities.Topfile, error) {
	if err := validateTopfile(raw); err != nil {
		return nil, apperrors.NewConfigurationError("topfile", "Nova topfile not formatted correctly", err)
	}

	var doc yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(raw, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, apperrors.NewConfigurationError("topfile", "Nova topfile not formatted correctly", err)
	}

	top := &entities.Topfile{Path: path}
	for _, item := range doc {
		if fmt.Sprint(item.Key) != "nova" {
			continue
		}
		matches, ok := item.Value.(yaml.MapSlice)
		if !ok {
			// Validation already guarantees an object; an empty one decodes to nil.
			break
		}
		for _, m := range matches {
			entries, _ := plainValue(m.Value).([]any)
			top.Matches = append(top.Matches, entities.TopMatch{
				Expression: fmt.Sprint(m.Key),
				Entries:    entries,
			})
		}
	}
	return top, nil
}

func validateTopfile(raw []byte) error {
	schema, err := topfileSchemaValidator()
	if err != nil {
		return err
	}

	jsonDoc, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return fmt.Errorf("failed to decode topfile: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(jsonDoc))
	decoder.UseNumber()
	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("failed to decode topfile: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("topfile validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError formats a JSON Schema validation error into a readable message.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return fmt.Errorf("validation failed")
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}
