// Package extract turns rendered dataset chunks into graph nodes and
// relationships using LLM structured output.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/walsgraph/internal/graph"
	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/platform/openai"
)

const systemPrompt = `You are a linguistic knowledge graph extractor.
You read structured descriptions of languages from the WALS dataset and
emit the entities and relationships they describe.

Rules:
- Node types are: Language, Country, Languagefamily.
- A node id is the exact name as written in the text. Do not invent ids.
- Language nodes carry the listed fields as properties (family, subfamily,
  genus, macroarea, country_id, iso_code, latitude, longitude) when the
  text provides them. Property values are strings.
- Emit a LOCATED_IN relationship from each language to its country when a
  country is given, and a BELONGS_TO relationship from each language to
  its family.
- Only extract what the text states. Never add outside knowledge.`

// extractionSchema is the strict structured-output schema. Properties ride
// as key/value pairs because strict mode forbids open-ended objects.
var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"type": map[string]any{"type": "string"},
					"properties": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"key":   map[string]any{"type": "string"},
								"value": map[string]any{"type": "string"},
							},
							"required":             []string{"key", "value"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"id", "type", "properties"},
				"additionalProperties": false,
			},
		},
		"relationships": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source": map[string]any{"type": "string"},
					"target": map[string]any{"type": "string"},
					"type":   map[string]any{"type": "string"},
				},
				"required":             []string{"source", "target", "type"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"nodes", "relationships"},
	"additionalProperties": false,
}

// Result is one chunk's extraction output after rule post-processing.
type Result struct {
	Nodes []graph.ExtractedNode
	Rels  []graph.ExtractedRel
}

// Extractor drives structured extraction and applies post-processing rules
// in order.
type Extractor struct {
	llm   openai.Client
	rules []Rule
	log   *logger.Logger
}

func New(llm openai.Client, log *logger.Logger, rules ...Rule) (*Extractor, error) {
	if llm == nil {
		return nil, fmt.Errorf("extract: llm client required")
	}
	if log == nil {
		return nil, fmt.Errorf("extract: logger required")
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{llm: llm, rules: rules, log: log.With("component", "Extractor")}, nil
}

// Extract runs one chunk through the model and the rule chain.
func (e *Extractor) Extract(ctx context.Context, chunkText string) (*Result, error) {
	raw, err := e.llm.GenerateJSON(ctx, systemPrompt, chunkText, "graph_extraction", extractionSchema)
	if err != nil {
		return nil, fmt.Errorf("extract: generate: %w", err)
	}
	res, err := decodeResult(raw)
	if err != nil {
		return nil, err
	}
	for _, rule := range e.rules {
		rule.Apply(res)
	}
	return res, nil
}

type rawPayload struct {
	Nodes []struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Properties []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"properties"`
	} `json:"nodes"`
	Relationships []struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Type   string `json:"type"`
	} `json:"relationships"`
}

func decodeResult(raw map[string]any) (*Result, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("extract: re-encode payload: %w", err)
	}
	var payload rawPayload
	if err := json.Unmarshal(buf, &payload); err != nil {
		return nil, fmt.Errorf("extract: decode payload: %w", err)
	}

	res := &Result{}
	for _, n := range payload.Nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			continue
		}
		props := map[string]any{}
		for _, p := range n.Properties {
			if k := strings.TrimSpace(p.Key); k != "" {
				props[k] = p.Value
			}
		}
		res.Nodes = append(res.Nodes, graph.ExtractedNode{ID: id, Label: n.Type, Props: props})
	}
	for _, r := range payload.Relationships {
		src := strings.TrimSpace(r.Source)
		dst := strings.TrimSpace(r.Target)
		if src == "" || dst == "" {
			continue
		}
		res.Rels = append(res.Rels, graph.ExtractedRel{SourceID: src, TargetID: dst, Type: r.Type})
	}
	return res, nil
}
