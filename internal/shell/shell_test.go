package shell

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/yungbote/walsgraph/internal/graph"
	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/resolve"
)

type fakeStore struct {
	counts     graph.Counts
	regions    []graph.FamilyCount
	families   []graph.FamilyCount
	byArea     map[string][]string
	byCountry  map[string][]string
	byField    map[string][]string
	runRows    []map[string]any
	runErr     error
	lastCypher string
}

func (f *fakeStore) Counts(ctx context.Context) (graph.Counts, error) { return f.counts, nil }

func (f *fakeStore) MacroareaBreakdown(ctx context.Context) ([]graph.FamilyCount, error) {
	return f.regions, nil
}

func (f *fakeStore) TopFamilies(ctx context.Context, limit int) ([]graph.FamilyCount, error) {
	return f.families, nil
}

func (f *fakeStore) CoverageStats(ctx context.Context) (int64, int64, int64, error) {
	return 1, 1, 1, nil
}

func (f *fakeStore) LanguagesByMacroarea(ctx context.Context, area string, limit int) ([]string, error) {
	return f.byArea[strings.ToLower(area)], nil
}

func (f *fakeStore) LanguagesByCountry(ctx context.Context, countryID string, limit int) ([]string, error) {
	return f.byCountry[countryID], nil
}

func (f *fakeStore) LanguagesByField(ctx context.Context, field, value string, contains bool, limit int) ([]string, error) {
	return f.byField[field+"/"+value], nil
}

func (f *fakeStore) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	f.lastCypher = query
	return f.runRows, f.runErr
}

func testResolver() *resolve.Resolver {
	return resolve.New(resolve.Vocabulary{
		Families:     []string{"Indo-European"},
		Genera:       []string{"Romance"},
		CountryIDs:   []string{"ES"},
		CountryNames: map[string]string{"ES": "Spain"},
	})
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func runShell(t *testing.T, store *fakeStore, input string) string {
	t.Helper()
	var out bytes.Buffer
	sh, err := New(store, nil, testResolver(), strings.NewReader(input), &out, testLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestRunExitsOnEOF(t *testing.T) {
	out := runShell(t, &fakeStore{}, "")
	if !strings.Contains(out, "WALS Linguistic Knowledge Graph") {
		t.Error("menu not printed before EOF")
	}
}

func TestRunExitOption(t *testing.T) {
	out := runShell(t, &fakeStore{}, "6\n")
	if !strings.Contains(out, "Goodbye.") {
		t.Error("exit option did not say goodbye")
	}
}

func TestRunInvalidOptionReprompts(t *testing.T) {
	out := runShell(t, &fakeStore{}, "99\n6\n")
	if !strings.Contains(out, "Invalid option") {
		t.Error("invalid option not reported")
	}
	if !strings.Contains(out, "Goodbye.") {
		t.Error("loop did not continue to the exit option")
	}
}

func TestRunMenuRedisplays(t *testing.T) {
	out := runShell(t, &fakeStore{}, "menu\n6\n")
	if got := strings.Count(out, "WALS Linguistic Knowledge Graph"); got != 2 {
		t.Errorf("menu header printed %d times, want 2", got)
	}
}

func TestStatisticsOption(t *testing.T) {
	store := &fakeStore{
		counts:   graph.Counts{Languages: 100, Countries: 10, Families: 5},
		regions:  []graph.FamilyCount{{Family: "Africa", Count: 40}},
		families: []graph.FamilyCount{{Family: "Indo-European", Count: 30}},
	}
	out := runShell(t, store, "1\n6\n")
	for _, want := range []string{
		"Total languages: 100",
		"Africa: 40",
		"1. Indo-European: 30 languages",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("statistics output missing %q", want)
		}
	}
}

func TestGeographyMacroareaWinsOverCountry(t *testing.T) {
	store := &fakeStore{
		byArea:    map[string][]string{"africa": {"Hausa", "Swahili"}},
		byCountry: map[string][]string{},
	}
	out := runShell(t, store, "2\nAfrica\n6\n")
	if !strings.Contains(out, "1. Hausa") || !strings.Contains(out, "2. Swahili") {
		t.Errorf("macroarea listing missing:\n%s", out)
	}
}

func TestGeographyFallsBackToResolvedCountry(t *testing.T) {
	store := &fakeStore{
		byArea:    map[string][]string{},
		byCountry: map[string][]string{"ES": {"Basque (Gernica)"}},
	}
	out := runShell(t, store, "2\nSpain\n6\n")
	if !strings.Contains(out, "1. Basque (Gernica)") {
		t.Errorf("country listing missing:\n%s", out)
	}
}

func TestGeographyNothingFound(t *testing.T) {
	store := &fakeStore{byArea: map[string][]string{}, byCountry: map[string][]string{}}
	out := runShell(t, store, "2\nAtlantis\n6\n")
	if !strings.Contains(out, "No languages found for 'Atlantis'") {
		t.Errorf("missing not-found message:\n%s", out)
	}
}

func TestFamilyGenusFirst(t *testing.T) {
	store := &fakeStore{byField: map[string][]string{
		"genus/Romance": {"Spanish", "French"},
	}}
	out := runShell(t, store, "3\nrománico\n6\n")
	if !strings.Contains(out, "Languages in the Romance group") {
		t.Errorf("resolved family lookup missing:\n%s", out)
	}
	if !strings.Contains(out, "1. Spanish") {
		t.Errorf("listing missing:\n%s", out)
	}
}

func TestDirectCypherShowsRowsReadOnly(t *testing.T) {
	store := &fakeStore{runRows: []map[string]any{{"count": int64(7)}}}
	out := runShell(t, store, "4\nMATCH (l:Language) RETURN count(l) AS count\n6\n")
	if !strings.Contains(out, "read-only") {
		t.Error("direct mode does not state read-only execution")
	}
	if !strings.Contains(out, "Results (1 rows)") {
		t.Errorf("rows not shown:\n%s", out)
	}
	if store.lastCypher != "MATCH (l:Language) RETURN count(l) AS count" {
		t.Errorf("statement not passed through: %q", store.lastCypher)
	}
}

func TestDirectCypherError(t *testing.T) {
	store := &fakeStore{runErr: fmt.Errorf("boom")}
	out := runShell(t, store, "4\nMATCH (n) RETURN n\n6\n")
	if !strings.Contains(out, "Query error") {
		t.Errorf("query error not surfaced:\n%s", out)
	}
}

func TestDirectCypherSchemaSubcommand(t *testing.T) {
	out := runShell(t, &fakeStore{}, "4\nschema\n6\n")
	if !strings.Contains(out, "Nodes: Language, Country, Languagefamily") {
		t.Errorf("schema subcommand output missing:\n%s", out)
	}
}

func TestQuestionWithoutEngine(t *testing.T) {
	out := runShell(t, &fakeStore{}, "5\n6\n")
	if !strings.Contains(out, "OpenAI API key") {
		t.Errorf("missing engine notice absent:\n%s", out)
	}
}
