package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// decoders maps a lower-cased file extension to its decoder.
var decoders = map[string]func([]byte) (Config, error){
	".yaml": FromYAML,
	".yml":  FromYAML,
	".json": FromJSON,
}

// FromFile loads configuration from a file, choosing the decoder by
// extension: .yaml, .yml or .json.
func FromFile(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("%w: unsupported config file extension %q", ErrInvalidSettings, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return decode(data)
}

// FromYAML parses a single YAML mapping. An empty document yields an empty
// Config.
func FromYAML(data []byte) (Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var m map[string]any
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	var extra any
	switch err := dec.Decode(&extra); {
	case err == nil:
		return Config{}, fmt.Errorf("%w: config holds more than one YAML document", ErrInvalidSettings)
	case !errors.Is(err, io.EOF):
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return normalize(m)
}

// FromJSON parses a single JSON object.
func FromJSON(data []byte) (Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	if dec.More() {
		return Config{}, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidSettings)
	}
	return normalize(m)
}

// normalize lower-cases keys and turns dashes into underscores, so
// "DB-Path" and "db_path" name the same setting.
func normalize(m map[string]any) (Config, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ReplaceAll(strings.ToLower(k), "-", "_")
		if _, dup := out[key]; dup {
			return Config{}, fmt.Errorf("%w: key %q given more than once", ErrInvalidSettings, key)
		}
		out[key] = v
	}
	return New(out), nil
}
