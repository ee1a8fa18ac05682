package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// keyHashLen is how many hex characters of the content hash survive
// truncation. Long enough to make collisions irrelevant at cache scale,
// short enough to keep keys scannable in operational tooling.
const keyHashLen = 12

// Gateway derives deterministic keys and speaks JSON over a Store. One
// gateway is built per process and shared by every concurrent trip run.
type Gateway struct {
	store  Store
	logger *slog.Logger
}

func NewGateway(store Store, logger *slog.Logger) *Gateway {
	return &Gateway{store: store, logger: logger}
}

// KeyFor builds the cache key for a (region, query) pair under a
// category namespace. Pure function of its inputs: identical inputs
// yield the identical key across calls and process restarts.
func KeyFor(category Category, region, query string) string {
	content := normalizeQuery(region) + "|" + normalizeQuery(query)
	sum := md5.Sum([]byte(content))
	return fmt.Sprintf("ai:%s:%s", category, hex.EncodeToString(sum[:])[:keyHashLen])
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// GetJSON loads and unmarshals an entry. Any failure, including a
// corrupt payload, is reported as a miss.
func (g *Gateway) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, ok := g.store.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		g.logger.WarnContext(ctx, "Discarding undecodable cache entry",
			slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// SetJSON marshals and stores an entry under the category's TTL.
func (g *Gateway) SetJSON(ctx context.Context, key string, value any, category Category) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for key %s: %w", key, err)
	}
	if err := g.store.Set(ctx, key, string(raw), TTLFor(category)); err != nil {
		return fmt.Errorf("failed to store cache value for key %s: %w", key, err)
	}
	return nil
}

// Invalidate bulk-deletes every entry of a category. Operational and
// debug use only; nothing on the request path calls this.
func (g *Gateway) Invalidate(ctx context.Context, category Category) (int, error) {
	pattern := fmt.Sprintf("ai:%s:*", category)
	deleted, err := g.store.DeletePattern(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate cache category %s: %w", category, err)
	}
	g.logger.InfoContext(ctx, "Invalidated cache category",
		slog.String("category", string(category)), slog.Int("deleted", deleted))
	return deleted, nil
}
