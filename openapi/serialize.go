package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// MarshalJSON serializes a document as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// MarshalYAML serializes a document as YAML via a JSON round-trip, keeping
// kin-openapi's field marshaling authoritative.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding document as yaml: %w", err)
	}
	return out, nil
}

// WriteFile writes a document to path in the requested format, "json" or
// "yaml".
func WriteFile(path string, doc *openapi3.T, format string) error {
	var data []byte
	var err error
	switch format {
	case "yaml", "yml":
		data, err = MarshalYAML(doc)
	default:
		data, err = MarshalJSON(doc)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
