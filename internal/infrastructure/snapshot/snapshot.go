// Package snapshot loads the CRM data a calculation reads from a JSON or YAML document.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"service-discounts/internal/domain"
)

// Snapshot is a frozen copy of everything a run fetches from the CRM.
type Snapshot struct {
	Orders         map[int64][]domain.LineItem                    `json:"orders"`
	Catalog        map[domain.ProductID]domain.Properties         `json:"catalog"`
	Companies      map[int64]domain.Company                       `json:"companies"`
	Programs       map[int64][]domain.ProgramRecord               `json:"programs"`
	ReferenceLists map[int64]map[domain.GroupID]domain.Properties `json:"reference_lists"`
	ProductRows    map[int64][]domain.ProductRow                  `json:"product_rows"`
	Volumes        []domain.VolumeEntry                           `json:"volumes,omitempty"`
}

// Format is the encoding of a snapshot document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	s, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a snapshot document. YAML is converted to JSON first so both formats
// decode numbers and nested maps the same way.
func Parse(data []byte, format Format) (*Snapshot, error) {
	if format == FormatYAML {
		converted, err := ToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// ToJSON converts a YAML document to JSON.
func ToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}

// stringKeys rewrites YAML maps with non-string keys, such as numeric ids, into JSON objects.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = stringKeys(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = stringKeys(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = stringKeys(inner)
		}
		return out
	}
	return v
}
