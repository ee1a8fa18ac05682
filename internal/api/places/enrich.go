package places

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

// enrichConcurrency bounds the provider fan-out of the post-pass.
const enrichConcurrency = 3

// RatingEnricher back-fills ratings onto finished schedule items from a
// detail provider. It only runs after assembly, where items no longer
// depend on each other, so lookups fan out concurrently.
type RatingEnricher struct {
	provider Provider
	logger   *slog.Logger
}

func NewRatingEnricher(provider Provider, logger *slog.Logger) *RatingEnricher {
	return &RatingEnricher{provider: provider, logger: logger}
}

// EnrichSchedule stamps ratings in place. Provider failures leave the
// affected item untouched; the schedule itself is never at risk.
func (e *RatingEnricher) EnrichSchedule(ctx context.Context, schedule []types.ScheduleItem) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i := range schedule {
		if schedule[i].Rating != nil {
			continue
		}
		g.Go(func() error {
			item := &schedule[i]
			results, err := e.provider.Search(ctx, item.PlaceName, item.Latitude, item.Longitude, 1)
			if err != nil {
				e.logger.DebugContext(ctx, "Rating lookup failed, leaving item unrated",
					slog.String("place", item.PlaceName), slog.Any("error", err))
				return nil
			}
			for _, r := range results {
				if r.Rating != nil {
					item.Rating = r.Rating
					break
				}
			}
			return nil
		})
	}

	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()
}
