package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the slice of pgxpool.Pool the store needs. Narrow on
// purpose so pgxmock can stand in during tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps cache entries in the place_cache table so they
// survive restarts and are shared between instances. Reads treat
// expired rows as misses; a janitor sweeps them out of band.
type PostgresStore struct {
	pool   PgxPool
	logger *slog.Logger
}

func NewPostgresStore(pool PgxPool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.pool.QueryRow(ctx,
		"SELECT value FROM place_cache WHERE key = $1 AND expires_at > now()",
		key).Scan(&value)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "Cache read failed, treating as miss",
				slog.String("key", key), slog.Any("error", err))
		}
		return "", false
	}
	return value, true
}

func (s *PostgresStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO place_cache (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePattern(ctx context.Context, pattern string) (int, error) {
	// Glob patterns arrive in the Store dialect; translate to LIKE.
	like := strings.NewReplacer("*", "%", "?", "_").Replace(pattern)
	tag, err := s.pool.Exec(ctx, "DELETE FROM place_cache WHERE key LIKE $1", like)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries for pattern %q: %w", pattern, err)
	}
	return int(tag.RowsAffected()), nil
}

// PurgeExpired drops rows past their expiry. Get already ignores them,
// this just keeps the table from growing unbounded.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM place_cache WHERE expires_at <= now()")
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// StartJanitor purges expired rows every interval until ctx is done.
func (s *PostgresStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := s.PurgeExpired(ctx)
				if err != nil {
					s.logger.WarnContext(ctx, "Cache janitor sweep failed", slog.Any("error", err))
					continue
				}
				if purged > 0 {
					s.logger.DebugContext(ctx, "Cache janitor sweep", slog.Int("purged", purged))
				}
			}
		}
	}()
}
