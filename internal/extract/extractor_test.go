package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/walsgraph/internal/platform/logger"
)

type stubLLM struct {
	payload map[string]any
	err     error

	gotSchema string
}

func (s *stubLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	s.gotSchema = schemaName
	return s.payload, s.err
}

func (s *stubLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", fmt.Errorf("not used")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestExtractAppliesRules(t *testing.T) {
	llm := &stubLLM{payload: map[string]any{
		"nodes": []any{
			map[string]any{
				"id":   "ID",
				"type": "Country",
				"properties": []any{
					map[string]any{"key": "name", "value": "Indonesia"},
				},
			},
			map[string]any{
				"id":   "Asmat",
				"type": "Language",
				"properties": []any{
					map[string]any{"key": "family", "value": "Trans-New Guinea"},
				},
			},
		},
		"relationships": []any{
			map[string]any{"source": "Asmat", "target": "ID", "type": "LOCATED_IN"},
		},
	}}

	e, err := New(llm, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := e.Extract(context.Background(), "chunk text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if llm.gotSchema != "graph_extraction" {
		t.Errorf("schema name = %q", llm.gotSchema)
	}
	if len(res.Nodes) != 2 || len(res.Rels) != 1 {
		t.Fatalf("got %d nodes, %d rels", len(res.Nodes), len(res.Rels))
	}
	if res.Nodes[0].ID != "Indonesia_Country" {
		t.Errorf("ambiguous id not repaired: %q", res.Nodes[0].ID)
	}
	if res.Rels[0].TargetID != "Indonesia_Country" {
		t.Errorf("relationship target not repaired: %q", res.Rels[0].TargetID)
	}
}

func TestExtractPropagatesLLMError(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("boom")}
	e, err := New(llm, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.Extract(context.Background(), "chunk"); err == nil {
		t.Fatal("expected error from failing llm")
	}
}
