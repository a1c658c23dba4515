package insight

import (
	"context"
	"time"

	"recoInsight/business/strategy"
	"recoInsight/domain"
)

// ---- Repository interfaces ----

type InteractionRepository interface {
	FindAll(ctx context.Context) ([]domain.Interaction, error)
	// Upsert stores ratings; an existing (user, item) row is only replaced
	// by a rating that is not older.
	Upsert(ctx context.Context, ratings []domain.Interaction) error
	PopularityRanking(ctx context.Context) ([]domain.ItemPopularity, error)
}

type SimilarityRepository interface {
	// ReplaceAll swaps the persisted matrix for entries in one transaction.
	ReplaceAll(ctx context.Context, entries []domain.SimilarityEntry) error
}

type StrategyConfigRepository interface {
	Get(ctx context.Context, name string) (domain.StrategyConfig, bool, error)
	Upsert(ctx context.Context, cfg domain.StrategyConfig) error
}

// StrategyResult is a directive together with the recommendation it was
// derived from.
type StrategyResult struct {
	Recommendation domain.Recommendation `json:"recommendation"`
	Directive      strategy.Directive    `json:"directive"`
}

type DirectiveCache interface {
	Get(ctx context.Context, key string) (StrategyResult, bool, error)
	Set(ctx context.Context, key string, res StrategyResult, ttl time.Duration) error
}
