package graph

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/platform/neo4jdb"
)

// Store is the Neo4j persistence layer. Every statement is parameterized;
// the only text ever spliced into a query is a label or relationship type
// that passed the identifier whitelist below.
type Store struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewStore(client *neo4jdb.Client, log *logger.Logger) (*Store, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("graph: neo4j client required")
	}
	if log == nil {
		return nil, fmt.Errorf("graph: logger required")
	}
	return &Store{client: client, log: log.With("component", "GraphStore")}, nil
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
}

// InitSchema creates the uniqueness constraints backing merge-by-identifier
// semantics. Best effort: a failure is logged and ingestion continues.
func (s *Store) InitSchema(ctx context.Context) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT language_id_unique IF NOT EXISTS FOR (l:Language) REQUIRE l.id IS UNIQUE`,
		`CREATE CONSTRAINT country_id_unique IF NOT EXISTS FOR (c:Country) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT family_id_unique IF NOT EXISTS FOR (f:Languagefamily) REQUIRE f.id IS UNIQUE`,
	}
	for _, q := range stmts {
		if res, err := session.Run(ctx, q, nil); err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

// Clear wipes the graph entirely and returns how many nodes were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	count, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (int64, error) {
		res, err := tx.Run(ctx, `MATCH (n) RETURN count(n) AS count`, nil)
		if err != nil {
			return 0, err
		}
		var prior int64
		if res.Next(ctx) {
			if v, ok := res.Record().Get("count"); ok {
				prior, _ = v.(int64)
			}
		}
		del, err := tx.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
		if err != nil {
			return 0, err
		}
		if _, err := del.Consume(ctx); err != nil {
			return 0, err
		}
		return prior, nil
	})
	if err != nil {
		return 0, fmt.Errorf("graph: clear: %w", err)
	}
	return count, nil
}

// MergeCountries upserts country nodes from canonical CSV rows.
func (s *Store) MergeCountries(ctx context.Context, runID string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	return s.write(ctx, `
UNWIND $rows AS row
MERGE (c:Country {id: row.id})
SET c.name = row.name,
    c.synced_at = $synced_at,
    c.run_id = $run_id
`, map[string]any{"rows": rows, "synced_at": nowString(), "run_id": runID})
}

// MergeLanguages upserts language nodes with fill-missing semantics: a
// field already set by an earlier pass (including LLM extraction) is left
// alone, empty or placeholder values get the canonical CSV value. Works
// for both the enrichment pass and the complete-missing pass, since a
// freshly created node has every field missing.
func (s *Store) MergeLanguages(ctx context.Context, runID string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	return s.write(ctx, `
UNWIND $rows AS row
MERGE (l:Language {id: row.id})
SET l.family    = CASE WHEN l.family    IS NULL OR l.family    = '' OR l.family    = 'nan' THEN row.family    ELSE l.family    END,
    l.subfamily = CASE WHEN l.subfamily IS NULL OR l.subfamily = '' OR l.subfamily = 'nan' THEN row.subfamily ELSE l.subfamily END,
    l.genus     = CASE WHEN l.genus     IS NULL OR l.genus     = '' OR l.genus     = 'nan' THEN row.genus     ELSE l.genus     END,
    l.macroarea = CASE WHEN l.macroarea IS NULL OR l.macroarea = '' OR l.macroarea = 'nan' THEN row.macroarea ELSE l.macroarea END,
    l.country_id = CASE WHEN l.country_id IS NULL OR l.country_id = '' OR l.country_id = 'nan' THEN row.country_id ELSE l.country_id END,
    l.iso_code  = CASE WHEN l.iso_code  IS NULL OR l.iso_code  = '' OR l.iso_code  = 'nan' THEN row.iso_code  ELSE l.iso_code  END,
    l.latitude  = coalesce(l.latitude, row.latitude),
    l.longitude = coalesce(l.longitude, row.longitude),
    l.synced_at = $synced_at,
    l.run_id    = $run_id
`, map[string]any{"rows": rows, "synced_at": nowString(), "run_id": runID})
}

// MergeLocatedIn ensures Language-[:LOCATED_IN]->Country edges. Countries
// are created lazily on first reference.
func (s *Store) MergeLocatedIn(ctx context.Context, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	return s.write(ctx, `
UNWIND $rows AS row
MATCH (l:Language {id: row.language_id})
MERGE (c:Country {id: row.country_id})
MERGE (l)-[:LOCATED_IN]->(c)
`, map[string]any{"rows": rows})
}

// MergeBelongsTo ensures Language-[:BELONGS_TO]->Languagefamily edges.
// Family nodes are created lazily; the family id is the family name plus
// the literal "Family" suffix.
func (s *Store) MergeBelongsTo(ctx context.Context, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	return s.write(ctx, `
UNWIND $rows AS row
MATCH (l:Language {id: row.language_id})
MERGE (f:Languagefamily {id: row.family_id})
MERGE (l)-[:BELONGS_TO]->(f)
`, map[string]any{"rows": rows})
}

// MergeExtraction applies one chunk's extraction result. Nodes are grouped
// by validated label and merged on id; relationships match both endpoints
// by id and merge the edge, so re-applying a chunk never duplicates
// anything.
func (s *Store) MergeExtraction(ctx context.Context, runID string, nodes []ExtractedNode, rels []ExtractedRel) (int, int, error) {
	synced := nowString()

	byLabel := map[string][]map[string]any{}
	for _, n := range nodes {
		label, ok := safeLabel(n.Label)
		if !ok {
			s.log.Warn("skipping node with unusable label", "label", n.Label, "id", n.ID)
			continue
		}
		props := map[string]any{}
		for k, v := range n.Props {
			if key, ok := safePropertyKey(k); ok {
				props[key] = v
			}
		}
		byLabel[label] = append(byLabel[label], map[string]any{"id": n.ID, "props": props})
	}

	byType := map[string][]map[string]any{}
	for _, r := range rels {
		relType, ok := safeRelType(r.Type)
		if !ok {
			s.log.Warn("skipping relationship with unusable type", "type", r.Type)
			continue
		}
		byType[relType] = append(byType[relType], map[string]any{
			"source": r.SourceID,
			"target": r.TargetID,
		})
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	mergedNodes := 0
	mergedRels := 0
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for label, rows := range byLabel {
			q := fmt.Sprintf(`
UNWIND $rows AS row
MERGE (n:%s {id: row.id})
SET n += row.props,
    n.synced_at = $synced_at,
    n.run_id = $run_id
`, label)
			res, err := tx.Run(ctx, q, map[string]any{"rows": rows, "synced_at": synced, "run_id": runID})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
			mergedNodes += len(rows)
		}
		for relType, rows := range byType {
			q := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (a {id: row.source})
MATCH (b {id: row.target})
MERGE (a)-[:%s]->(b)
`, relType)
			res, err := tx.Run(ctx, q, map[string]any{"rows": rows})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
			mergedRels += len(rows)
		}
		return nil, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("graph: merge extraction: %w", err)
	}
	return mergedNodes, mergedRels, nil
}

// LanguageIDs returns every stored Language id.
func (s *Store) LanguageIDs(ctx context.Context) (map[string]struct{}, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	ids, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (map[string]struct{}, error) {
		res, err := tx.Run(ctx, `MATCH (l:Language) RETURN l.id AS id`, nil)
		if err != nil {
			return nil, err
		}
		out := map[string]struct{}{}
		for res.Next(ctx) {
			if v, ok := res.Record().Get("id"); ok {
				if id, ok := v.(string); ok {
					out[id] = struct{}{}
				}
			}
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph: list language ids: %w", err)
	}
	return ids, nil
}

// Counts returns node and edge totals for the statistics views and the
// idempotence check after rebuilds.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	queries := []struct {
		dst   *int64
		query string
	}{
		{&c.Languages, `MATCH (n:Language) RETURN count(n) AS count`},
		{&c.Countries, `MATCH (n:Country) RETURN count(n) AS count`},
		{&c.Families, `MATCH (n:Languagefamily) RETURN count(n) AS count`},
		{&c.LocatedIn, `MATCH ()-[r:LOCATED_IN]->() RETURN count(r) AS count`},
		{&c.BelongsTo, `MATCH ()-[r:BELONGS_TO]->() RETURN count(r) AS count`},
		{&c.TotalNodes, `MATCH (n) RETURN count(n) AS count`},
	}
	for _, q := range queries {
		n, err := s.readCount(ctx, q.query, nil)
		if err != nil {
			return Counts{}, err
		}
		*q.dst = n
	}
	return c, nil
}

// TopFamilies ranks family property values by language count.
func (s *Store) TopFamilies(ctx context.Context, limit int) ([]FamilyCount, error) {
	rows, err := s.Run(ctx, `
MATCH (l:Language)
WHERE l.family IS NOT NULL AND l.family <> '' AND l.family <> 'nan'
RETURN l.family AS family, count(l) AS count
ORDER BY count DESC
LIMIT $limit
`, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]FamilyCount, 0, len(rows))
	for _, r := range rows {
		fc := FamilyCount{}
		fc.Family, _ = r["family"].(string)
		fc.Count, _ = r["count"].(int64)
		out = append(out, fc)
	}
	return out, nil
}

// TopCountries ranks countries by located languages, via edges.
func (s *Store) TopCountries(ctx context.Context, limit int) ([]CountryCount, error) {
	rows, err := s.Run(ctx, `
MATCH (l:Language)-[:LOCATED_IN]->(c:Country)
RETURN coalesce(c.name, c.id) AS country, count(l) AS count
ORDER BY count DESC
LIMIT $limit
`, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]CountryCount, 0, len(rows))
	for _, r := range rows {
		cc := CountryCount{}
		cc.Country, _ = r["country"].(string)
		cc.Count, _ = r["count"].(int64)
		out = append(out, cc)
	}
	return out, nil
}

// MacroareaBreakdown returns language counts per macroarea.
func (s *Store) MacroareaBreakdown(ctx context.Context) ([]FamilyCount, error) {
	rows, err := s.Run(ctx, `
MATCH (l:Language)
WHERE l.macroarea IS NOT NULL AND l.macroarea <> '' AND l.macroarea <> 'nan'
RETURN l.macroarea AS family, count(l) AS count
ORDER BY count DESC
`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]FamilyCount, 0, len(rows))
	for _, r := range rows {
		fc := FamilyCount{}
		fc.Family, _ = r["family"].(string)
		fc.Count, _ = r["count"].(int64)
		out = append(out, fc)
	}
	return out, nil
}

// LanguagesByMacroarea lists language ids in a macroarea, alphabetically.
func (s *Store) LanguagesByMacroarea(ctx context.Context, area string, limit int) ([]string, error) {
	return s.idList(ctx, `
MATCH (l:Language)
WHERE toLower(l.macroarea) = toLower($area)
RETURN l.id AS id ORDER BY l.id LIMIT $limit
`, map[string]any{"area": area, "limit": limit})
}

// LanguagesByCountry lists language ids stored under a country identifier.
func (s *Store) LanguagesByCountry(ctx context.Context, countryID string, limit int) ([]string, error) {
	return s.idList(ctx, `
MATCH (l:Language)
WHERE l.country_id = $country_id
RETURN l.id AS id ORDER BY l.id LIMIT $limit
`, map[string]any{"country_id": countryID, "limit": limit})
}

// LanguagesByField lists language ids whose family or genus matches value.
// field must be "family" or "genus"; contains switches exact equality to
// case-insensitive containment.
func (s *Store) LanguagesByField(ctx context.Context, field, value string, contains bool, limit int) ([]string, error) {
	if field != "family" && field != "genus" {
		return nil, fmt.Errorf("graph: unsupported lookup field %q", field)
	}
	cond := fmt.Sprintf("l.%s = $value", field)
	if contains {
		cond = fmt.Sprintf("toLower(l.%s) CONTAINS toLower($value)", field)
	}
	q := fmt.Sprintf(`
MATCH (l:Language)
WHERE %s
RETURN l.id AS id ORDER BY l.id LIMIT $limit
`, cond)
	return s.idList(ctx, q, map[string]any{"value": value, "limit": limit})
}

// CoverageStats reports how many languages carry country, family and
// coordinate data.
func (s *Store) CoverageStats(ctx context.Context) (withCountry, withFamily, withCoords int64, err error) {
	withCountry, err = s.readCount(ctx, `MATCH (l:Language) WHERE l.country_id IS NOT NULL AND l.country_id <> '' AND l.country_id <> 'nan' RETURN count(l) AS count`, nil)
	if err != nil {
		return
	}
	withFamily, err = s.readCount(ctx, `MATCH (l:Language) WHERE l.family IS NOT NULL AND l.family <> '' AND l.family <> 'nan' RETURN count(l) AS count`, nil)
	if err != nil {
		return
	}
	withCoords, err = s.readCount(ctx, `MATCH (l:Language) WHERE l.latitude IS NOT NULL AND l.longitude IS NOT NULL RETURN count(l) AS count`, nil)
	return
}

// Run executes a statement in an auto-commit transaction and returns the
// result rows as maps. Used by the interactive shell's direct-Cypher mode
// and by the query translator for LLM-generated statements.
func (s *Store) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	res, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("graph: run query: %w", err)
	}
	var out []map[string]any
	for res.Next(ctx) {
		out = append(out, res.Record().AsMap())
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("graph: run query: %w", err)
	}
	return out, nil
}

func (s *Store) idList(ctx context.Context, query string, params map[string]any) ([]string, error) {
	rows, err := s.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if id, ok := r["id"].(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) readCount(ctx context.Context, query string, params map[string]any) (int64, error) {
	rows, err := s.Run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, _ := rows[0]["count"].(int64)
	return n, nil
}

func (s *Store) write(ctx context.Context, query string, params map[string]any) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("graph: write: %w", err)
	}
	return nil
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

var (
	identRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	relTypeRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// knownLabels normalizes the label variants the extraction model emits
// onto the canonical label set.
var knownLabels = map[string]string{
	"language":       "Language",
	"country":        "Country",
	"languagefamily": "Languagefamily",
	"family":         "Languagefamily",
	"macroarea":      "Macroarea",
	"entity":         "Entity",
}

func safeLabel(label string) (string, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), "_", ""))
	if canonical, ok := knownLabels[key]; ok {
		return canonical, true
	}
	trimmed := strings.TrimSpace(label)
	if identRe.MatchString(trimmed) {
		return trimmed, true
	}
	return "", false
}

func safeRelType(relType string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(relType))
	t = strings.ReplaceAll(t, " ", "_")
	t = strings.ReplaceAll(t, "-", "_")
	if relTypeRe.MatchString(t) {
		return t, true
	}
	return "", false
}

func safePropertyKey(key string) (string, bool) {
	k := strings.TrimSpace(key)
	if k == "" || k == "id" {
		return "", false
	}
	if identRe.MatchString(k) {
		return k, true
	}
	return "", false
}
