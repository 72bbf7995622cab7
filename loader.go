package oasbind

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is the raw schema document exactly as parsed. It is never modified
// after loading.
type Schema map[string]any

// SchemaKind selects the parser for a schema document.
type SchemaKind int

const (
	SchemaJSON SchemaKind = iota
	SchemaYAML
)

// SchemaLoader parses raw document bytes into a Schema.
type SchemaLoader func(data []byte) (Schema, error)

// JSONLoader parses a JSON schema document.
func JSONLoader(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("schema document is empty")
	}
	return s, nil
}

// YAMLLoader parses a YAML schema document. Non-string mapping keys, such as
// unquoted response status codes, are converted to strings.
func YAMLLoader(data []byte) (Schema, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	m, ok := normalizeYAML(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema document is not a mapping")
	}
	return m, nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	}
	return v
}

// LoadSchema parses data as the given kind.
func LoadSchema(data []byte, kind SchemaKind) (Schema, error) {
	loader := JSONLoader
	if kind == SchemaYAML {
		loader = YAMLLoader
	}
	s, err := loader(data)
	if err != nil {
		return nil, &ConfigurationError{Message: "Unable to parse schema", Err: err}
	}
	return s, nil
}

// LoaderForPath infers the schema loader from the file extension.
func LoaderForPath(path string) (SchemaLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONLoader, nil
	case ".yml", ".yaml":
		return YAMLLoader, nil
	}
	return nil, &ConfigurationError{Message: fmt.Sprintf("Unsupported OpenAPI schema file: %s. Supported extensions: .json, .yml, .yaml", path)}
}

// ReadSchema reads the schema file at path. When loader is nil it is
// inferred from the extension.
func ReadSchema(path string, loader SchemaLoader) (Schema, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, &ConfigurationError{Message: "Unable to find schema file at " + path, Err: err}
	}
	if loader == nil {
		if loader, err = LoaderForPath(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Message: "Unable to read schema file at " + path, Err: err}
	}
	s, err := loader(data)
	if err != nil {
		return nil, &ConfigurationError{Message: "Unable to parse schema file at " + path, Err: err}
	}
	return s, nil
}
