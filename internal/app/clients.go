package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/walsgraph/internal/platform/envutil"
	"github.com/yungbote/walsgraph/internal/platform/logger"
	"github.com/yungbote/walsgraph/internal/platform/neo4jdb"
	"github.com/yungbote/walsgraph/internal/platform/openai"
)

// Clients holds the external service connections. Neo4j connects lazily
// through Graph, so dataset-only modes never need a database; OpenAI is
// nil when no API key is configured, which disables extraction and
// natural-language querying but leaves everything else working; Redis is
// nil unless REDIS_ADDR is set.
type Clients struct {
	Neo4j  *neo4jdb.Client
	OpenAI openai.Client
	Redis  *redis.Client
}

func wireClients(ctx context.Context, log *logger.Logger) (*Clients, error) {
	c := &Clients{}

	llm, err := openai.NewClient(log)
	if err != nil {
		log.Warn("openai client unavailable, extraction and NL queries disabled", "error", err)
	} else {
		c.OpenAI = llm
	}

	if addr := envutil.Str("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: envutil.Str("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, translation cache disabled", "addr", addr, "error", err)
			_ = rdb.Close()
		} else {
			c.Redis = rdb
			log.Info("redis translation cache enabled", "addr", addr)
		}
	}

	return c, nil
}

// Graph returns the Neo4j client, connecting and verifying on first call.
func (c *Clients) Graph(log *logger.Logger) (*neo4jdb.Client, error) {
	if c.Neo4j != nil {
		return c.Neo4j, nil
	}
	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		return nil, fmt.Errorf("app: neo4j: %w", err)
	}
	c.Neo4j = neo
	return neo, nil
}

func (c *Clients) Close(ctx context.Context, log *logger.Logger) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if c.Neo4j != nil {
		if err := c.Neo4j.Close(ctx); err != nil {
			log.Warn("neo4j close failed", "error", err)
		}
	}
}
