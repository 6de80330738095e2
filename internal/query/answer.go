package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/walsgraph/internal/graph"
	"github.com/yungbote/walsgraph/internal/platform/logger"
)

// Answer is the formatted response to one question.
type Answer struct {
	Text   string
	Cypher string
	Rows   int
}

// Engine runs the full question pipeline: translate, execute, format.
type Engine struct {
	translator *Translator
	store      *graph.Store
	log        *logger.Logger
}

func NewEngine(translator *Translator, store *graph.Store, log *logger.Logger) (*Engine, error) {
	if translator == nil {
		return nil, fmt.Errorf("query: translator required")
	}
	if store == nil {
		return nil, fmt.Errorf("query: store required")
	}
	if log == nil {
		return nil, fmt.Errorf("query: logger required")
	}
	return &Engine{translator: translator, store: store, log: log.With("component", "QueryEngine")}, nil
}

// Ask answers a natural-language question. Errors cross this boundary as
// values; nothing downstream of a bad model response panics.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	cypher, err := e.translator.Translate(ctx, question)
	if err != nil {
		return nil, err
	}
	e.log.Debug("generated cypher", "question", question, "cypher", cypher)

	rows, err := e.store.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("query: execute generated statement: %w", err)
	}
	if len(rows) == 0 {
		return &Answer{Text: "", Cypher: cypher}, ErrNoAnswer
	}

	return &Answer{Text: FormatRows(rows), Cypher: cypher, Rows: len(rows)}, nil
}

// FormatRows renders result rows for the shell. A single row with a single
// numeric column comes back as the bare number; anything else becomes a
// numbered list with a trailing total.
func FormatRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return ""
	}

	if len(rows) == 1 && len(rows[0]) == 1 {
		for _, v := range rows[0] {
			if n, ok := asNumber(v); ok {
				return n
			}
		}
	}

	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatRow(row))
	}
	fmt.Fprintf(&b, "Total: %d", len(rows))
	return b.String()
}

func formatRow(row map[string]any) string {
	if len(row) == 1 {
		for _, v := range row {
			return fmt.Sprintf("%v", v)
		}
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, row[k]))
	}
	return strings.Join(parts, ", ")
}

func asNumber(v any) (string, bool) {
	switch n := v.(type) {
	case int64:
		return fmt.Sprintf("%d", n), true
	case int:
		return fmt.Sprintf("%d", n), true
	case float64:
		return fmt.Sprintf("%g", n), true
	default:
		return "", false
	}
}
