// Package ingest drives the build passes that populate the graph: LLM
// extraction over rendered chunks, CSV enrichment, and the completion pass
// that fills in languages extraction never reached.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yungbote/walsgraph/internal/extract"
	"github.com/yungbote/walsgraph/internal/graph"
	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/wals"
)

// Builder wires the extractor and the store into the build passes.
type Builder struct {
	store     *graph.Store
	extractor *extract.Extractor
	log       *logger.Logger
}

// BuildStats summarizes a chunk ingestion pass.
type BuildStats struct {
	ChunksProcessed int
	ChunksFailed    int
	NodesMerged     int
	RelsMerged      int
}

func NewBuilder(store *graph.Store, extractor *extract.Extractor, log *logger.Logger) (*Builder, error) {
	if store == nil {
		return nil, fmt.Errorf("ingest: store required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("ingest: extractor required")
	}
	if log == nil {
		return nil, fmt.Errorf("ingest: logger required")
	}
	return &Builder{store: store, extractor: extractor, log: log.With("component", "Builder")}, nil
}

// BuildFromChunks runs extraction over every chunk file and merges the
// results. Unless preserve is set, the graph is wiped first. A chunk that
// fails extraction or merging is logged and skipped; the pass continues.
func (b *Builder) BuildFromChunks(ctx context.Context, chunkFiles []string, preserve bool) (BuildStats, error) {
	if len(chunkFiles) == 0 {
		return BuildStats{}, fmt.Errorf("ingest: no chunk files to process")
	}

	if !preserve {
		removed, err := b.store.Clear(ctx)
		if err != nil {
			return BuildStats{}, err
		}
		b.log.Info("cleared graph before rebuild", "removed_nodes", removed)
	}
	b.store.InitSchema(ctx)

	runID := uuid.NewString()
	stats := BuildStats{}

	for i, path := range chunkFiles {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("ingest: build interrupted: %w", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			b.log.Error("failed to read chunk", "chunk", filepath.Base(path), "error", err)
			stats.ChunksFailed++
			continue
		}

		res, err := b.extractor.Extract(ctx, string(data))
		if err != nil {
			b.log.Error("extraction failed, skipping chunk", "chunk", filepath.Base(path), "error", err)
			stats.ChunksFailed++
			continue
		}

		nodes, rels, err := b.store.MergeExtraction(ctx, runID, res.Nodes, res.Rels)
		if err != nil {
			b.log.Error("merge failed, skipping chunk", "chunk", filepath.Base(path), "error", err)
			stats.ChunksFailed++
			continue
		}

		stats.ChunksProcessed++
		stats.NodesMerged += nodes
		stats.RelsMerged += rels
		b.log.Info("processed chunk",
			"chunk", filepath.Base(path),
			"progress", fmt.Sprintf("%d/%d", i+1, len(chunkFiles)),
			"nodes", nodes,
			"relationships", rels)
	}

	b.log.Info("chunk ingestion complete",
		"run_id", runID,
		"processed", stats.ChunksProcessed,
		"failed", stats.ChunksFailed,
		"nodes_merged", stats.NodesMerged,
		"relationships_merged", stats.RelsMerged)
	return stats, nil
}

// EnrichFromCSV overlays canonical dataset values onto the graph. Fields
// the extraction pass already filled stay as they are; missing or
// placeholder fields get the CSV value. Structural edges to countries and
// families are merged for every language with the relevant data.
func (b *Builder) EnrichFromCSV(ctx context.Context, ds *wals.Dataset) error {
	if ds == nil {
		return fmt.Errorf("ingest: no dataset loaded")
	}
	runID := uuid.NewString()

	if err := b.store.MergeCountries(ctx, runID, countryRows(ds.Countries)); err != nil {
		return err
	}
	if err := b.store.MergeLanguages(ctx, runID, languageRows(ds.Languages)); err != nil {
		return err
	}
	located, belongs := edgeRows(ds.Languages)
	if err := b.store.MergeLocatedIn(ctx, located); err != nil {
		return err
	}
	if err := b.store.MergeBelongsTo(ctx, belongs); err != nil {
		return err
	}

	b.log.Info("enrichment complete",
		"run_id", runID,
		"languages", len(ds.Languages),
		"countries", len(ds.Countries),
		"located_in", len(located),
		"belongs_to", len(belongs))
	return nil
}

// CompleteMissing adds every dataset language absent from the graph, with
// its edges, and reports coverage before and after. Safe to run repeatedly.
func (b *Builder) CompleteMissing(ctx context.Context, ds *wals.Dataset) error {
	if ds == nil {
		return fmt.Errorf("ingest: no dataset loaded")
	}

	existing, err := b.store.LanguageIDs(ctx)
	if err != nil {
		return err
	}

	var missing []wals.Language
	for _, l := range ds.Languages {
		if _, ok := existing[l.Name]; !ok {
			missing = append(missing, l)
		}
	}
	b.log.Info("coverage before completion",
		"in_graph", len(existing),
		"in_dataset", len(ds.Languages),
		"missing", len(missing))
	if len(missing) == 0 {
		return nil
	}

	runID := uuid.NewString()
	if err := b.store.MergeLanguages(ctx, runID, languageRows(missing)); err != nil {
		return err
	}
	located, belongs := edgeRows(missing)
	if err := b.store.MergeLocatedIn(ctx, located); err != nil {
		return err
	}
	if err := b.store.MergeBelongsTo(ctx, belongs); err != nil {
		return err
	}

	after, err := b.store.LanguageIDs(ctx)
	if err != nil {
		return err
	}
	b.log.Info("coverage after completion",
		"run_id", runID,
		"in_graph", len(after),
		"added", len(missing))
	return nil
}

func countryRows(countries []wals.Country) []map[string]any {
	rows := make([]map[string]any, 0, len(countries))
	for _, c := range countries {
		rows = append(rows, map[string]any{"id": c.ID, "name": c.Name})
	}
	return rows
}

func languageRows(languages []wals.Language) []map[string]any {
	rows := make([]map[string]any, 0, len(languages))
	for _, l := range languages {
		row := map[string]any{
			"id":         l.Name,
			"family":     l.Family,
			"subfamily":  l.Subfamily,
			"genus":      l.Genus,
			"macroarea":  l.Macroarea,
			"country_id": l.CountryID,
			"iso_code":   l.ISOCode,
		}
		if l.Latitude != nil {
			row["latitude"] = *l.Latitude
		} else {
			row["latitude"] = nil
		}
		if l.Longitude != nil {
			row["longitude"] = *l.Longitude
		} else {
			row["longitude"] = nil
		}
		rows = append(rows, row)
	}
	return rows
}

func edgeRows(languages []wals.Language) (located, belongs []map[string]any) {
	for _, l := range languages {
		if l.CountryID != "" {
			located = append(located, map[string]any{
				"language_id": l.Name,
				"country_id":  l.CountryID,
			})
		}
		family := l.Family
		if family == "" {
			family = wals.UnknownFamily
		}
		belongs = append(belongs, map[string]any{
			"language_id": l.Name,
			"family_id":   family + "Family",
		})
	}
	return located, belongs
}
