package wals

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeatureParam names a WALS parameter whose value gets annotated onto each
// language in a rendered chunk.
type FeatureParam struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// DefaultFeatureParams are the word-order parameters annotated by default.
// Order matters: it is the order lines appear in the chunk text.
func DefaultFeatureParams() []FeatureParam {
	return []FeatureParam{
		{ID: "81A", Label: "Word Order"},
		{ID: "82A", Label: "Subject-Verb Order"},
		{ID: "83A", Label: "Object-Verb Order"},
		{ID: "85A", Label: "Adposition-Noun Order"},
		{ID: "86A", Label: "Genitive-Noun Order"},
		{ID: "87A", Label: "Adjective-Noun Order"},
	}
}

// LoadFeatureParams reads an operator-provided parameter list. An empty
// path returns the defaults.
func LoadFeatureParams(path string) ([]FeatureParam, error) {
	if path == "" {
		return DefaultFeatureParams(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wals: read features file: %w", err)
	}
	var params []FeatureParam
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("wals: parse features file: %w", err)
	}
	if len(params) == 0 {
		return DefaultFeatureParams(), nil
	}
	for i, p := range params {
		if p.ID == "" || p.Label == "" {
			return nil, fmt.Errorf("wals: features file entry %d missing id or label", i)
		}
	}
	return params, nil
}
