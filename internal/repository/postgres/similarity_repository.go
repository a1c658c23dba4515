package postgres

import (
	"context"
	"fmt"

	"recoInsight/business/insight"
	"recoInsight/domain"

	"gorm.io/gorm"
)

const similarityBatchSize = 1000

type SimilarityRepository struct {
	DB *gorm.DB
}

var _ insight.SimilarityRepository = (*SimilarityRepository)(nil)

func NewSimilarityRepository(db *gorm.DB) *SimilarityRepository {
	return &SimilarityRepository{DB: db}
}

// ReplaceAll swaps the stored matrix in a single transaction, so readers of
// the table see either the old or the new snapshot.
func (r *SimilarityRepository) ReplaceAll(ctx context.Context, entries []domain.SimilarityEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM item_similarities").Error; err != nil {
			return fmt.Errorf("failed to clear similarities: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&entries, similarityBatchSize).Error; err != nil {
			return fmt.Errorf("failed to store similarities: %w", err)
		}
		return nil
	})
}
