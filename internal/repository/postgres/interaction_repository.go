package postgres

import (
	"context"
	"fmt"

	"recoInsight/business/insight"
	"recoInsight/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 500

type InteractionRepository struct {
	DB *gorm.DB
}

var _ insight.InteractionRepository = (*InteractionRepository)(nil)

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{
		DB: db,
	}
}

func (r *InteractionRepository) FindAll(ctx context.Context) ([]domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Interaction
	err := r.DB.WithContext(ctx).
		Order("rated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find interactions: %w", err)
	}

	return rows, nil
}

// Upsert keeps the newest rating per (user, item); an older write never
// overwrites a newer row.
func (r *InteractionRepository) Upsert(ctx context.Context, ratings []domain.Interaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(ratings) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "rated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "excluded.rated_at >= interactions.rated_at"},
			}},
		}).
		CreateInBatches(&ratings, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert interactions: %w", err)
	}

	return nil
}

// PopularityRanking aggregates interaction count and average rating per item.
func (r *InteractionRepository) PopularityRanking(ctx context.Context) ([]domain.ItemPopularity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ItemPopularity
	err := r.DB.WithContext(ctx).
		Model(&domain.Interaction{}).
		Select("item_id, COUNT(*) AS total_interactions, AVG(rating) AS avg_rating").
		Group("item_id").
		Order("total_interactions DESC, avg_rating DESC, item_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate item popularity: %w", err)
	}

	return rows, nil
}
