// Package shell implements the interactive console over the graph.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/walsgraph/internal/graph"
	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/query"
	"github.com/yungbote/walsgraph/internal/resolve"
)

const listLimit = 20

// Store is the graph surface the shell reads from. *graph.Store satisfies
// it; tests substitute a fake.
type Store interface {
	Counts(ctx context.Context) (graph.Counts, error)
	MacroareaBreakdown(ctx context.Context) ([]graph.FamilyCount, error)
	TopFamilies(ctx context.Context, limit int) ([]graph.FamilyCount, error)
	CoverageStats(ctx context.Context) (withCountry, withFamily, withCoords int64, err error)
	LanguagesByMacroarea(ctx context.Context, area string, limit int) ([]string, error)
	LanguagesByCountry(ctx context.Context, countryID string, limit int) ([]string, error)
	LanguagesByField(ctx context.Context, field, value string, contains bool, limit int) ([]string, error)
	Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// Shell is the menu-driven console. Reader and writer are injected so the
// loop is testable with plain buffers.
type Shell struct {
	store    Store
	engine   *query.Engine
	resolver *resolve.Resolver
	log      *logger.Logger

	in  *bufio.Scanner
	out io.Writer
}

func New(store Store, engine *query.Engine, resolver *resolve.Resolver, in io.Reader, out io.Writer, log *logger.Logger) (*Shell, error) {
	if store == nil {
		return nil, fmt.Errorf("shell: store required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("shell: resolver required")
	}
	if log == nil {
		return nil, fmt.Errorf("shell: logger required")
	}
	return &Shell{
		store:    store,
		engine:   engine,
		resolver: resolver,
		log:      log.With("component", "Shell"),
		in:       bufio.NewScanner(in),
		out:      out,
	}, nil
}

// Run drives the menu loop until the user exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	s.printMenu()
	for {
		fmt.Fprint(s.out, "\nSelect an option: ")
		line, ok := s.readLine()
		if !ok {
			return nil
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "1":
			s.showStatistics(ctx)
		case "2":
			s.handleGeography(ctx)
		case "3":
			s.handleFamily(ctx)
		case "4":
			s.handleCypher(ctx)
		case "5":
			s.handleQuestion(ctx)
		case "6", "exit", "quit", "q":
			fmt.Fprintln(s.out, "Goodbye.")
			return nil
		case "menu", "m":
			s.printMenu()
		default:
			fmt.Fprintln(s.out, "Invalid option. Use numbers 1-6 or 'menu' to see options.")
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	fmt.Fprintln(s.out, "WALS Linguistic Knowledge Graph")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	fmt.Fprintln(s.out, "1. Database statistics")
	fmt.Fprintln(s.out, "2. Languages by country or region")
	fmt.Fprintln(s.out, "3. Languages by linguistic family")
	fmt.Fprintln(s.out, "4. Direct Cypher query (advanced)")
	fmt.Fprintln(s.out, "5. Ask a question in natural language")
	fmt.Fprintln(s.out, "6. Exit")
	fmt.Fprintln(s.out, "\nTip: type 'menu' at any time to return here")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
}

func (s *Shell) showStatistics(ctx context.Context) {
	fmt.Fprintln(s.out, "\nWALS Database Statistics")
	fmt.Fprintln(s.out, strings.Repeat("-", 50))

	counts, err := s.store.Counts(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Could not read statistics: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Total languages: %d\n", counts.Languages)
	fmt.Fprintf(s.out, "Total countries: %d\n", counts.Countries)
	fmt.Fprintf(s.out, "Total families:  %d\n", counts.Families)

	if regions, err := s.store.MacroareaBreakdown(ctx); err == nil && len(regions) > 0 {
		fmt.Fprintln(s.out, "\nLanguages by region:")
		for _, r := range regions {
			fmt.Fprintf(s.out, "  %s: %d\n", r.Family, r.Count)
		}
	}

	if families, err := s.store.TopFamilies(ctx, 8); err == nil && len(families) > 0 {
		fmt.Fprintln(s.out, "\nLargest language families:")
		for i, f := range families {
			fmt.Fprintf(s.out, "  %d. %s: %d languages\n", i+1, f.Family, f.Count)
		}
	}

	withCountry, withFamily, withCoords, err := s.store.CoverageStats(ctx)
	if err == nil && counts.Languages > 0 {
		fmt.Fprintln(s.out, "\nData coverage:")
		fmt.Fprintf(s.out, "  With country data: %d (%.1f%%)\n", withCountry, pct(withCountry, counts.Languages))
		fmt.Fprintf(s.out, "  With family data:  %d (%.1f%%)\n", withFamily, pct(withFamily, counts.Languages))
		fmt.Fprintf(s.out, "  With coordinates:  %d (%.1f%%)\n", withCoords, pct(withCoords, counts.Languages))
	}
}

// handleGeography lists languages for a region or country. Macroareas win;
// country resolution runs only when the input is not a region.
func (s *Shell) handleGeography(ctx context.Context) {
	fmt.Fprint(s.out, "Enter a country or region name: ")
	location, ok := s.readLine()
	if !ok || location == "" {
		fmt.Fprintln(s.out, "No location entered.")
		return
	}

	ids, err := s.store.LanguagesByMacroarea(ctx, location, listLimit)
	if err == nil && len(ids) > 0 {
		s.printLanguageList(fmt.Sprintf("Languages in the %s region", location), ids)
		return
	}

	countryID, err := s.resolver.ResolveCountry(location)
	if err == nil {
		ids, err = s.store.LanguagesByCountry(ctx, countryID, listLimit)
		if err == nil && len(ids) > 0 {
			s.printLanguageList(fmt.Sprintf("Languages in %s", location), ids)
			return
		}
	}

	fmt.Fprintf(s.out, "No languages found for '%s'\n", location)
	fmt.Fprintln(s.out, "Try countries like Spain, France, Indonesia, Mexico, USA")
	fmt.Fprintln(s.out, "or regions: Africa, Australia, Eurasia, North America, Papunesia, South America")
}

// handleFamily lists languages for a family or genus. Resolved names try
// the genus field first, since groups like Romance live there.
func (s *Shell) handleFamily(ctx context.Context) {
	fmt.Fprint(s.out, "Enter a linguistic family name: ")
	family, ok := s.readLine()
	if !ok || family == "" {
		fmt.Fprintln(s.out, "No family entered.")
		return
	}

	if canonical, err := s.resolver.ResolveFamily(family); err == nil {
		for _, field := range []string{"genus", "family"} {
			ids, err := s.store.LanguagesByField(ctx, field, canonical, false, listLimit)
			if err == nil && len(ids) > 0 {
				s.printLanguageList(fmt.Sprintf("Languages in the %s group", canonical), ids)
				return
			}
		}
	}

	for _, field := range []string{"family", "genus"} {
		ids, err := s.store.LanguagesByField(ctx, field, family, true, listLimit)
		if err == nil && len(ids) > 0 {
			s.printLanguageList(fmt.Sprintf("Languages matching '%s'", family), ids)
			return
		}
	}

	fmt.Fprintf(s.out, "No languages found for '%s'\n", family)
	fmt.Fprintln(s.out, "Try: Romance, Germanic, Indo-European, Niger-Congo, Austronesian")
}

func (s *Shell) handleCypher(ctx context.Context) {
	fmt.Fprintln(s.out, "\nDirect Cypher query (advanced)")
	fmt.Fprintln(s.out, "Statements execute in a read-only session; writes fail.")
	fmt.Fprintln(s.out, "Special commands: 'schema' (database structure), 'examples' (sample queries)")
	fmt.Fprint(s.out, "Enter Cypher query: ")

	stmt, ok := s.readLine()
	if !ok || stmt == "" {
		fmt.Fprintln(s.out, "No query entered.")
		return
	}
	switch strings.ToLower(stmt) {
	case "schema":
		s.printSchema()
		return
	case "examples":
		s.printExamples()
		return
	}

	rows, err := s.store.Run(ctx, stmt, nil)
	if err != nil {
		fmt.Fprintf(s.out, "Query error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "Query executed successfully. No results returned.")
		return
	}
	fmt.Fprintf(s.out, "Results (%d rows):\n", len(rows))
	shown := rows
	if len(shown) > 15 {
		shown = shown[:15]
	}
	for i, row := range shown {
		fmt.Fprintf(s.out, "  %d. %v\n", i+1, row)
	}
	if len(rows) > 15 {
		fmt.Fprintf(s.out, "  ... and %d more results\n", len(rows)-15)
	}
}

func (s *Shell) handleQuestion(ctx context.Context) {
	if s.engine == nil {
		fmt.Fprintln(s.out, "Natural-language questions need an OpenAI API key configured.")
		return
	}
	fmt.Fprint(s.out, "Ask your question: ")
	question, ok := s.readLine()
	if !ok || question == "" {
		fmt.Fprintln(s.out, "No question entered.")
		return
	}

	answer, err := s.engine.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, query.ErrNoAnswer) {
			fmt.Fprintln(s.out, "Could not find an answer to that question.")
		} else {
			fmt.Fprintf(s.out, "Query failed: %v\n", err)
		}
		return
	}
	fmt.Fprintf(s.out, "\nAnswer:\n%s\n", answer.Text)
}

func (s *Shell) printLanguageList(header string, ids []string) {
	fmt.Fprintf(s.out, "%s (%d found):\n", header, len(ids))
	for i, id := range ids {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, id)
	}
	if len(ids) == listLimit {
		fmt.Fprintf(s.out, "  ... (showing first %d results)\n", listLimit)
	}
}

func (s *Shell) printSchema() {
	fmt.Fprintln(s.out, "\nDatabase schema:")
	fmt.Fprintln(s.out, "Nodes: Language, Country, Languagefamily")
	fmt.Fprintln(s.out, "Relationships: (Language)-[:LOCATED_IN]->(Country), (Language)-[:BELONGS_TO]->(Languagefamily)")
	fmt.Fprintln(s.out, "\nLanguage properties:")
	fmt.Fprintln(s.out, "  id (language name)")
	fmt.Fprintln(s.out, "  iso_code")
	fmt.Fprintln(s.out, "  country_id")
	fmt.Fprintln(s.out, "  macroarea")
	fmt.Fprintln(s.out, "  family, subfamily, genus")
	fmt.Fprintln(s.out, "  latitude, longitude")
	fmt.Fprintln(s.out, "\nExample node:")
	fmt.Fprintln(s.out, "  (:Language {id: 'Spanish', family: 'Indo-European', genus: 'Romance'})")
}

func (s *Shell) printExamples() {
	examples := []struct{ desc, query string }{
		{"Count languages per family", "MATCH (l:Language) WHERE l.family IS NOT NULL RETURN l.family, count(l) AS count ORDER BY count DESC LIMIT 10"},
		{"Languages in a country", "MATCH (l:Language) WHERE l.country_id = 'ES' RETURN l.id, l.family LIMIT 10"},
		{"Languages per macroarea", "MATCH (l:Language) WHERE l.macroarea = 'Africa' RETURN count(l) AS total"},
		{"Most widespread families", "MATCH (l:Language) WHERE l.family IS NOT NULL RETURN l.family, count(DISTINCT l.country_id) AS countries ORDER BY countries DESC LIMIT 5"},
		{"Romance languages", "MATCH (l:Language) WHERE l.genus = 'Romance' RETURN l.id, l.country_id LIMIT 10"},
		{"Languages with coordinates", "MATCH (l:Language) WHERE l.latitude IS NOT NULL RETURN l.id, l.latitude, l.longitude LIMIT 5"},
	}
	fmt.Fprintln(s.out, "\nCypher query examples:")
	for i, ex := range examples {
		fmt.Fprintf(s.out, "\n%d. %s:\n   %s\n", i+1, ex.desc, ex.query)
	}
}

func pct(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
