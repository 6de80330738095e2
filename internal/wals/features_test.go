package wals

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFeatureParamsDefaults(t *testing.T) {
	params, err := LoadFeatureParams("")
	if err != nil {
		t.Fatalf("LoadFeatureParams: %v", err)
	}
	if len(params) == 0 {
		t.Fatal("no default feature parameters")
	}
	if params[0].ID != "81A" {
		t.Errorf("first default parameter = %s, want 81A", params[0].ID)
	}
}

func TestLoadFeatureParamsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	content := "- id: 81A\n  label: Word Order\n- id: 85A\n  label: Adpositions\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	params, err := LoadFeatureParams(path)
	if err != nil {
		t.Fatalf("LoadFeatureParams: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	if params[1].ID != "85A" || params[1].Label != "Adpositions" {
		t.Errorf("unexpected second param: %+v", params[1])
	}
}

func TestLoadFeatureParamsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFeatureParams(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
