package extract

import (
	"strings"
	"testing"

	"github.com/yungbote/walsgraph/internal/graph"
)

func TestAmbiguousIDRuleIndonesia(t *testing.T) {
	res := &Result{
		Nodes: []graph.ExtractedNode{
			{ID: "ID", Label: "Country", Props: map[string]any{"name": "Indonesia"}},
			{ID: "Asmat", Label: "Language", Props: map[string]any{"country_id": "ID"}},
		},
		Rels: []graph.ExtractedRel{
			{SourceID: "Asmat", TargetID: "ID", Type: "LOCATED_IN"},
		},
	}

	AmbiguousIDRule{}.Apply(res)

	if res.Nodes[0].ID != "Indonesia_Country" {
		t.Fatalf("country node id = %q, want Indonesia_Country", res.Nodes[0].ID)
	}
	if res.Nodes[1].ID != "Asmat" {
		t.Errorf("unrelated node renamed to %q", res.Nodes[1].ID)
	}
	if res.Rels[0].TargetID != "Indonesia_Country" {
		t.Errorf("relationship endpoint not updated: %q", res.Rels[0].TargetID)
	}
	if res.Rels[0].SourceID != "Asmat" {
		t.Errorf("relationship source changed: %q", res.Rels[0].SourceID)
	}
}

func TestAmbiguousIDRuleHashedFallback(t *testing.T) {
	res := &Result{
		Nodes: []graph.ExtractedNode{
			{ID: "ID", Label: "Entity", Props: map[string]any{"note": "identifier column"}},
		},
	}
	AmbiguousIDRule{}.Apply(res)

	got := res.Nodes[0].ID
	if !strings.HasPrefix(got, "Entity_ID_") {
		t.Fatalf("fallback id = %q, want Entity_ID_ prefix", got)
	}

	// Same input yields the same replacement id.
	res2 := &Result{
		Nodes: []graph.ExtractedNode{
			{ID: "ID", Label: "Entity", Props: map[string]any{"note": "identifier column"}},
		},
	}
	AmbiguousIDRule{}.Apply(res2)
	if res2.Nodes[0].ID != got {
		t.Errorf("fallback id not stable: %q vs %q", got, res2.Nodes[0].ID)
	}
}

func TestAmbiguousIDRuleRenamesEachOccurrence(t *testing.T) {
	res := &Result{
		Nodes: []graph.ExtractedNode{
			{ID: "ID", Label: "Entity", Props: map[string]any{"note": "identifier column"}},
			{ID: "ID", Label: "Country", Props: map[string]any{"name": "Indonesia"}},
		},
		Rels: []graph.ExtractedRel{
			{SourceID: "Asmat", TargetID: "ID", Type: "LOCATED_IN"},
		},
	}

	AmbiguousIDRule{}.Apply(res)

	if !strings.HasPrefix(res.Nodes[0].ID, "Entity_ID_") {
		t.Errorf("first occurrence id = %q, want Entity_ID_ prefix", res.Nodes[0].ID)
	}
	if res.Nodes[1].ID != "Indonesia_Country" {
		t.Errorf("second occurrence id = %q, want Indonesia_Country", res.Nodes[1].ID)
	}
	if res.Nodes[0].ID == res.Nodes[1].ID {
		t.Error("distinct occurrences collapsed to one id")
	}
	// Endpoints prefer the Indonesia rename regardless of node order.
	if res.Rels[0].TargetID != "Indonesia_Country" {
		t.Errorf("endpoint = %q, want Indonesia_Country", res.Rels[0].TargetID)
	}
}

func TestAmbiguousIDRuleLeavesOtherNodesAlone(t *testing.T) {
	res := &Result{
		Nodes: []graph.ExtractedNode{
			{ID: "Spanish", Label: "Language", Props: map[string]any{"family": "Indo-European"}},
		},
		Rels: []graph.ExtractedRel{
			{SourceID: "Spanish", TargetID: "Indo-EuropeanFamily", Type: "BELONGS_TO"},
		},
	}
	AmbiguousIDRule{}.Apply(res)
	if res.Nodes[0].ID != "Spanish" || res.Rels[0].TargetID != "Indo-EuropeanFamily" {
		t.Fatalf("rule modified nodes it should not touch: %+v", res)
	}
}

func TestDecodeResult(t *testing.T) {
	raw := map[string]any{
		"nodes": []any{
			map[string]any{
				"id":   "Spanish",
				"type": "Language",
				"properties": []any{
					map[string]any{"key": "family", "value": "Indo-European"},
					map[string]any{"key": "", "value": "dropped"},
				},
			},
			map[string]any{"id": "  ", "type": "Language", "properties": []any{}},
		},
		"relationships": []any{
			map[string]any{"source": "Spanish", "target": "ES", "type": "LOCATED_IN"},
			map[string]any{"source": "", "target": "ES", "type": "LOCATED_IN"},
		},
	}

	res, err := decodeResult(raw)
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if len(res.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1 (blank id dropped)", len(res.Nodes))
	}
	if res.Nodes[0].Props["family"] != "Indo-European" {
		t.Errorf("property not decoded: %+v", res.Nodes[0].Props)
	}
	if _, ok := res.Nodes[0].Props[""]; ok {
		t.Error("blank property key kept")
	}
	if len(res.Rels) != 1 {
		t.Fatalf("got %d relationships, want 1 (blank endpoint dropped)", len(res.Rels))
	}
}
