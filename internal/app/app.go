// Package app wires the clients and pipeline stages together and exposes
// the run modes the command line offers.
package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/walsgraph/internal/extract"
	"github.com/yungbote/walsgraph/internal/graph"
	"github.com/yungbote/walsgraph/internal/ingest"
	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/query"
	"github.com/yungbote/walsgraph/internal/resolve"
	"github.com/yungbote/walsgraph/internal/shell"
	"github.com/yungbote/walsgraph/internal/wals"
)

// App owns the wired pipeline for one process run.
type App struct {
	cfg     Config
	log     *logger.Logger
	clients *Clients
	store   *graph.Store
	engine  *query.Engine
}

// New wires the service clients that do not need a live connection up
// front. The Neo4j driver connects lazily on first graph use, so modes
// like Process that never touch the graph run without a database.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	clients, err := wireClients(ctx, log)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, log: log, clients: clients}, nil
}

// graphStore connects to Neo4j on first use. Connection failure is fatal
// to the calling operation only.
func (a *App) graphStore() (*graph.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	neo, err := a.clients.Graph(a.log)
	if err != nil {
		return nil, err
	}
	store, err := graph.NewStore(neo, a.log)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// queryEngine builds the NL question pipeline on first use; nil with no
// error when OpenAI is not configured.
func (a *App) queryEngine() (*query.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	if a.clients.OpenAI == nil {
		return nil, nil
	}
	store, err := a.graphStore()
	if err != nil {
		return nil, err
	}
	translator, err := query.NewTranslator(a.clients.OpenAI, a.clients.Redis, a.log)
	if err != nil {
		return nil, err
	}
	engine, err := query.NewEngine(translator, store, a.log)
	if err != nil {
		return nil, err
	}
	a.engine = engine
	return engine, nil
}

func (a *App) Close(ctx context.Context) {
	a.clients.Close(ctx, a.log)
}

// Process downloads the dataset if needed, loads it, and writes the chunk
// files extraction will consume.
func (a *App) Process(ctx context.Context) error {
	if err := wals.Download(ctx, a.cfg.DownloadBase, a.cfg.DataDir, a.log); err != nil {
		return err
	}
	ds, err := wals.Load(a.cfg.DataDir, a.log)
	if err != nil {
		return err
	}

	params, err := wals.LoadFeatureParams(a.cfg.FeaturesFile)
	if err != nil {
		return err
	}

	files, err := wals.GenerateChunks(ds, a.cfg.BatchSize, a.cfg.OutputDir, params, a.log)
	if err != nil {
		return err
	}
	stats := ds.Stats()
	a.log.Info("dataset processed",
		"languages", stats.TotalLanguages,
		"families", stats.TotalFamilies,
		"countries", stats.TotalCountries,
		"chunks", len(files))
	return nil
}

// Build runs the three graph passes: LLM extraction over the chunk files,
// CSV enrichment, and the completion pass for languages extraction missed.
func (a *App) Build(ctx context.Context) error {
	if a.clients.OpenAI == nil {
		return fmt.Errorf("app: build requires OPENAI_API_KEY")
	}

	ds, err := wals.Load(a.cfg.DataDir, a.log)
	if err != nil {
		return err
	}
	chunkFiles, err := wals.ReadManifest(a.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("app: no chunks found, run the process step first: %w", err)
	}

	store, err := a.graphStore()
	if err != nil {
		return err
	}
	extractor, err := extract.New(a.clients.OpenAI, a.log)
	if err != nil {
		return err
	}
	builder, err := ingest.NewBuilder(store, extractor, a.log)
	if err != nil {
		return err
	}

	if _, err := builder.BuildFromChunks(ctx, chunkFiles, a.cfg.PreserveGraph); err != nil {
		return err
	}
	if err := builder.EnrichFromCSV(ctx, ds); err != nil {
		return err
	}
	if err := builder.CompleteMissing(ctx, ds); err != nil {
		return err
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	a.log.Info("graph build complete",
		"languages", counts.Languages,
		"countries", counts.Countries,
		"families", counts.Families,
		"located_in", counts.LocatedIn,
		"belongs_to", counts.BelongsTo,
		"total_nodes", counts.TotalNodes)
	return nil
}

// Interactive runs the menu shell on stdin/stdout.
func (a *App) Interactive(ctx context.Context) error {
	store, err := a.graphStore()
	if err != nil {
		return err
	}
	engine, err := a.queryEngine()
	if err != nil {
		return err
	}
	resolver, err := a.buildResolver()
	if err != nil {
		return err
	}
	sh, err := shell.New(store, engine, resolver, os.Stdin, os.Stdout, a.log)
	if err != nil {
		return err
	}
	return sh.Run(ctx)
}

// Demo answers a fixed set of sample questions to exercise the query path.
func (a *App) Demo(ctx context.Context) error {
	engine, err := a.queryEngine()
	if err != nil {
		return err
	}
	if engine == nil {
		return fmt.Errorf("app: demo requires OPENAI_API_KEY")
	}

	questions := []string{
		"What is spoken in Spain?",
		"How many countries do we have in the graph?",
		"How many languages do we have in the graph?",
		"What are the largest language families?",
		"Which languages are spoken in Africa?",
	}
	for _, q := range questions {
		fmt.Printf("\nQuestion: %s\n", q)
		answer, err := engine.Ask(ctx, q)
		if err != nil {
			fmt.Printf("No answer: %v\n", err)
			continue
		}
		fmt.Printf("Cypher: %s\nAnswer:\n%s\n", answer.Cypher, answer.Text)
	}
	return nil
}

// Menu is the default top-level loop: pick a pipeline stage or drop into
// the explorer shell.
func (a *App) Menu(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\nWALS Graph Pipeline")
		fmt.Println(strings.Repeat("-", 30))
		fmt.Println("1. Process dataset (download + chunks)")
		fmt.Println("2. Build knowledge graph")
		fmt.Println("3. Explore the graph (interactive)")
		fmt.Println("4. Run demo questions")
		fmt.Println("5. Full pipeline (process + build + demo)")
		fmt.Println("6. Exit")
		fmt.Print("Choose option (1-6): ")

		if !scanner.Scan() {
			return nil
		}
		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			err = a.Process(ctx)
		case "2":
			err = a.Build(ctx)
		case "3":
			err = a.Interactive(ctx)
		case "4":
			err = a.Demo(ctx)
		case "5":
			err = a.Full(ctx)
		case "6":
			fmt.Println("Goodbye.")
			return nil
		default:
			fmt.Println("Invalid choice. Please enter 1-6.")
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Printf("Operation failed: %v\n", err)
		}
	}
}

// Full runs the whole pipeline: process, build, then the demo questions.
func (a *App) Full(ctx context.Context) error {
	if err := a.Process(ctx); err != nil {
		return err
	}
	if err := a.Build(ctx); err != nil {
		return err
	}
	return a.Demo(ctx)
}

// buildResolver prefers dataset vocabularies when the CSVs are on disk and
// falls back to the values stored in the graph.
func (a *App) buildResolver() (*resolve.Resolver, error) {
	ds, err := wals.Load(a.cfg.DataDir, a.log)
	if err != nil {
		a.log.Warn("dataset unavailable, resolver will use graph vocabularies", "error", err)
		return a.graphResolver()
	}

	vocab := resolve.Vocabulary{CountryNames: map[string]string{}}
	seenFamily := map[string]struct{}{}
	seenGenus := map[string]struct{}{}
	for _, l := range ds.Languages {
		if l.Family != "" {
			if _, ok := seenFamily[l.Family]; !ok {
				seenFamily[l.Family] = struct{}{}
				vocab.Families = append(vocab.Families, l.Family)
			}
		}
		if l.Genus != "" {
			if _, ok := seenGenus[l.Genus]; !ok {
				seenGenus[l.Genus] = struct{}{}
				vocab.Genera = append(vocab.Genera, l.Genus)
			}
		}
	}
	for _, c := range ds.Countries {
		vocab.CountryIDs = append(vocab.CountryIDs, c.ID)
		vocab.CountryNames[c.ID] = c.Name
	}
	return resolve.New(vocab), nil
}

func (a *App) graphResolver() (*resolve.Resolver, error) {
	ctx := context.Background()
	store, err := a.graphStore()
	if err != nil {
		return nil, err
	}
	vocab := resolve.Vocabulary{CountryNames: map[string]string{}}

	rows, err := store.Run(ctx, `MATCH (l:Language) WHERE l.family IS NOT NULL RETURN DISTINCT l.family AS v`, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if v, ok := r["v"].(string); ok {
			vocab.Families = append(vocab.Families, v)
		}
	}

	rows, err = store.Run(ctx, `MATCH (l:Language) WHERE l.genus IS NOT NULL RETURN DISTINCT l.genus AS v`, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if v, ok := r["v"].(string); ok {
			vocab.Genera = append(vocab.Genera, v)
		}
	}

	rows, err = store.Run(ctx, `MATCH (c:Country) RETURN c.id AS id, c.name AS name`, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		id, _ := r["id"].(string)
		if id == "" {
			continue
		}
		vocab.CountryIDs = append(vocab.CountryIDs, id)
		if name, ok := r["name"].(string); ok {
			vocab.CountryNames[id] = name
		}
	}

	return resolve.New(vocab), nil
}
