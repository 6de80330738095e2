// Package query answers natural-language questions by translating them to
// Cypher, executing the statement, and formatting the rows.
package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/platform/openai"
)

// ErrNoAnswer is returned when the question produced no usable query or the
// query produced no rows.
var ErrNoAnswer = errors.New("query: no answer found")

const cacheTTL = 24 * time.Hour

const cypherSystemPrompt = `You are an expert in both linguistics and Cypher queries.
Generate precise Cypher queries for the WALS linguistic knowledge graph.

DATABASE STRUCTURE:
- Language nodes carry all the queryable data as properties.
- Country and Languagefamily nodes exist with LOCATED_IN and BELONGS_TO
  relationships, but property filters on Language nodes are more reliable.

LANGUAGE NODE PROPERTIES:
- id: language identifier/name (e.g. "Arapaho", "Basque (Bidasoa Valley)")
- name: often NULL, use id instead
- family: language family (e.g. "Indo-European", "Austronesian", "Niger-Congo")
- subfamily: limited coverage
- genus: language genus (e.g. "Germanic", "Romance", "Semitic")
- macroarea: one of "Africa", "Eurasia", "Papunesia", "North America", "South America", "Australia"
- country_id: mixes ISO codes and full names (e.g. "United States", "ES", "PG", "Indonesia")
- iso_code: ISO language code
- latitude, longitude: coordinates

IMPORTANT: language names live in the id property, not name.

COUNTRY_ID VALUES (exact strings to use):
- USA questions -> "United States"
- Spain -> "ES"
- Papua New Guinea -> "PG"
- Indonesia -> "Indonesia"
- Mexico -> "MX"
- India -> "India"
- Ethiopia -> "ET"
- Chad -> "TD"

QUERY PATTERNS:
- Count: MATCH (l:Language) WHERE l.country_id = 'United States' RETURN count(l) AS count
- List names: MATCH (l:Language) WHERE l.family = 'Indo-European' RETURN l.id AS language_name ORDER BY l.id
- Details: MATCH (l:Language) WHERE l.macroarea = 'Africa' RETURN l.id AS name, l.family, l.genus LIMIT 20

Respond with the Cypher statement only. No explanation, no code fences.`

// Translator turns questions into Cypher. Translations are cached in Redis
// when a cache client is provided; the cache is keyed on the normalized
// question text.
type Translator struct {
	llm   openai.Client
	cache *redis.Client
	log   *logger.Logger
}

func NewTranslator(llm openai.Client, cache *redis.Client, log *logger.Logger) (*Translator, error) {
	if llm == nil {
		return nil, fmt.Errorf("query: llm client required")
	}
	if log == nil {
		return nil, fmt.Errorf("query: logger required")
	}
	return &Translator{llm: llm, cache: cache, log: log.With("component", "Translator")}, nil
}

// Translate produces a validated Cypher statement for the question.
func (t *Translator) Translate(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("query: empty question")
	}

	key := cacheKey(question)
	if t.cache != nil {
		if cached, err := t.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			t.log.Debug("translation cache hit", "question", question)
			return cached, nil
		}
	}

	raw, err := t.llm.GenerateText(ctx, cypherSystemPrompt, question)
	if err != nil {
		return "", fmt.Errorf("query: translate: %w", err)
	}

	cypher, err := sanitizeCypher(raw)
	if err != nil {
		return "", err
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, cypher, cacheTTL).Err(); err != nil {
			t.log.Warn("translation cache write failed", "error", err)
		}
	}
	return cypher, nil
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return "walsgraph:cypher:" + hex.EncodeToString(sum[:])
}

// sanitizeCypher strips code fences, a bare leading "cypher" language tag,
// and stray prose, and requires the statement to open with a read clause.
func sanitizeCypher(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```cypher")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "cypher"); ok {
		if rest == "" || rest[0] == '\n' || rest[0] == ' ' || rest[0] == '\t' {
			s = strings.TrimSpace(s[len(s)-len(rest):])
		}
	}
	if s == "" {
		return "", fmt.Errorf("query: model returned no statement: %w", ErrNoAnswer)
	}

	upper := strings.ToUpper(s)
	for _, prefix := range []string{"MATCH", "OPTIONAL MATCH", "WITH", "RETURN"} {
		if strings.HasPrefix(upper, prefix) {
			return s, nil
		}
	}
	return "", fmt.Errorf("query: generated statement is not a read query: %w", ErrNoAnswer)
}
