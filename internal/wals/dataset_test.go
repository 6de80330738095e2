package wals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/walsgraph/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeCoreCSVs(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "languages.csv",
		"ID,Name,Family,Subfamily,Genus,Macroarea,Country_ID,ISO639P3code,Latitude,Longitude\n"+
			"spa,Spanish,Indo-European,Romance,Romance,Eurasia,ES,spa,40.44,-3.69\n"+
			"xxx,Mystery,,,,,,,not-a-number,\n"+
			",,,,,,,,,\n")
	writeFile(t, dir, "countries.csv",
		"ID,Name\nES,Spain\nFR,France\n")
}

func TestLoadCoreTables(t *testing.T) {
	dir := t.TempDir()
	writeCoreCSVs(t, dir)

	ds, err := Load(dir, testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(ds.Languages) != 2 {
		t.Fatalf("got %d languages, want 2 (blank Name row dropped)", len(ds.Languages))
	}
	spa := ds.Languages[0]
	if spa.Name != "Spanish" || spa.Family != "Indo-European" || spa.CountryID != "ES" {
		t.Errorf("unexpected first language: %+v", spa)
	}
	if spa.Latitude == nil || *spa.Latitude != 40.44 {
		t.Errorf("latitude not parsed: %v", spa.Latitude)
	}

	// Malformed coordinates keep the row but drop the value.
	mystery := ds.Languages[1]
	if mystery.Name != "Mystery" {
		t.Fatalf("second language = %q, want Mystery", mystery.Name)
	}
	if mystery.Latitude != nil {
		t.Errorf("malformed latitude should be nil, got %v", *mystery.Latitude)
	}

	if len(ds.Countries) != 2 {
		t.Errorf("got %d countries, want 2", len(ds.Countries))
	}
	if ds.HasFeatures() {
		t.Error("HasFeatures should be false without feature tables")
	}
}

func TestLoadMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "languages.csv", "ID,Name\nspa,Spanish\n")

	if _, err := Load(dir, testLogger(t)); err == nil {
		t.Fatal("expected error for missing countries.csv")
	}
}

func TestLoadMissingNameColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "languages.csv", "ID,Family\nspa,Indo-European\n")
	writeFile(t, dir, "countries.csv", "ID,Name\nES,Spain\n")

	if _, err := Load(dir, testLogger(t)); err == nil {
		t.Fatal("expected error for languages.csv without Name column")
	}
}

func TestFeatureValueJoin(t *testing.T) {
	dir := t.TempDir()
	writeCoreCSVs(t, dir)
	writeFile(t, dir, "parameters.csv", "ID,Name\n81A,Order of Subject Object and Verb\n")
	writeFile(t, dir, "values.csv",
		"ID,Language_ID,Parameter_ID,Code_ID\n"+
			"v1,spa,81A,81A-2\n"+
			"v2,spa,81A,81A-9\n")
	writeFile(t, dir, "codes.csv", "ID,Name\n81A-2,SVO\n")

	ds, err := Load(dir, testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ds.HasFeatures() {
		t.Fatal("HasFeatures should be true")
	}

	// First values.csv row wins for a language/parameter pair.
	v, ok := ds.FeatureValue("spa", "81A")
	if !ok || v != "SVO" {
		t.Errorf("FeatureValue(spa, 81A) = %q, %v; want SVO, true", v, ok)
	}
	if _, ok := ds.FeatureValue("spa", "82A"); ok {
		t.Error("FeatureValue for absent parameter should report false")
	}
	if _, ok := ds.FeatureValue("eng", "81A"); ok {
		t.Error("FeatureValue for absent language should report false")
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "languages.csv",
		"ID,Name,Family,Country_ID\n"+
			"a,A,Fam1,ES\n"+
			"b,B,Fam1,FR\n"+
			"c,C,Fam2,ES\n"+
			"d,D,,\n")
	writeFile(t, dir, "countries.csv", "ID,Name\nES,Spain\nFR,France\n")

	ds, err := Load(dir, testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := ds.Stats()
	if got.TotalLanguages != 4 || got.TotalFamilies != 2 || got.TotalCountries != 2 {
		t.Errorf("Stats = %+v, want 4 languages, 2 families, 2 countries", got)
	}
}
