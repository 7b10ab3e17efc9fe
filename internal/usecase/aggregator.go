package usecase

import (
	"context"
	"sort"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/game-center/internal/domain"
)

// RecordReader defines the read side of the store used by the Aggregator.
type RecordReader interface {
	LoadGameInfo(gameID string) (*domain.GameInfo, bool, error)
	LoadRegistry() (*domain.Registry, error)
}

// Aggregator is the use case for summarizing pull-request activity per game.
type Aggregator struct {
	reader RecordReader
	logger *zap.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(reader RecordReader, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		reader: reader,
		logger: logger,
	}
}

// Aggregate reads the record of every registered game concurrently and
// combines them into a summary sorted by game id. Games without a record
// count as having no pull requests.
func (a *Aggregator) Aggregate(ctx context.Context) (*domain.Summary, error) {
	a.logger.Debug("starting summary aggregation")

	reg, err := a.reader.LoadRegistry()
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.GameSummary, len(reg.Games))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(8)

	for i, game := range reg.Games {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			info, ok, err := a.reader.LoadGameInfo(game.ID)
			if err != nil {
				return err
			}
			summary := &domain.GameSummary{
				ID:              game.ID,
				Name:            game.Name,
				RegistryPRCount: game.PRCount,
			}
			if ok {
				summary.TotalPRs = info.Stats.TotalPRs
				summary.FirstPRDate = info.Stats.FirstPRDate
				summary.LastPRDate = info.Stats.LastPRDate
			}
			registered := 0
			if game.PRCount != nil {
				registered = *game.PRCount
			}
			summary.InSync = registered == summary.TotalPRs
			summaries[i] = summary
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})

	result := &domain.Summary{Games: summaries, Aggregate: aggregate(summaries)}
	a.logger.Debug("summary aggregation complete", zap.Int("games", len(summaries)))
	return result, nil
}

func aggregate(summaries []*domain.GameSummary) domain.Aggregate {
	agg := domain.Aggregate{Games: len(summaries)}
	if len(summaries) == 0 {
		return agg
	}
	counts := make(stats.Float64Data, 0, len(summaries))
	for _, s := range summaries {
		agg.TotalPRs += s.TotalPRs
		counts = append(counts, float64(s.TotalPRs))
	}
	// The inputs are non-empty, so the only error these return cannot occur.
	agg.Mean, _ = counts.Mean()
	agg.Median, _ = counts.Median()
	agg.Max, _ = counts.Max()
	return agg
}
