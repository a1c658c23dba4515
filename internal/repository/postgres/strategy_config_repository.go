package postgres

import (
	"context"
	"errors"
	"fmt"

	"recoInsight/business/insight"
	"recoInsight/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StrategyConfigRepository struct {
	DB *gorm.DB
}

var _ insight.StrategyConfigRepository = (*StrategyConfigRepository)(nil)

func NewStrategyConfigRepository(db *gorm.DB) *StrategyConfigRepository {
	return &StrategyConfigRepository{DB: db}
}

func (r *StrategyConfigRepository) Get(ctx context.Context, name string) (domain.StrategyConfig, bool, error) {
	var cfg domain.StrategyConfig

	err := r.DB.WithContext(ctx).
		Where("name = ?", name).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.StrategyConfig{}, false, nil
	}
	if err != nil {
		return domain.StrategyConfig{}, false, fmt.Errorf("failed to find strategy config: %w", err)
	}

	return cfg, true, nil
}

func (r *StrategyConfigRepository) Upsert(ctx context.Context, cfg domain.StrategyConfig) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"high_threshold",
				"medium_threshold",
				"decision_table",
				"revision",
				"updated_at",
			}),
		}).
		Create(&cfg).Error
}
