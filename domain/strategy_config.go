package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.strategy_configs (
//     name               TEXT PRIMARY KEY,
//     high_threshold     DOUBLE PRECISION NOT NULL,
//     medium_threshold   DOUBLE PRECISION NOT NULL,
//     decision_table     JSONB NOT NULL,
//     revision           BIGINT NOT NULL DEFAULT 1,
//     updated_at         TIMESTAMPTZ DEFAULT NOW()
// );

// StrategyConfig is the operator-tunable part of the strategy engine.
// DecisionTable maps "band:fallback" keys (e.g. "high:false") to action kinds.
type StrategyConfig struct {
	Name            string            `gorm:"column:name;primaryKey" json:"-"`
	HighThreshold   float64           `gorm:"column:high_threshold" json:"high_threshold" validate:"gt=0,lte=1"`
	MediumThreshold float64           `gorm:"column:medium_threshold" json:"medium_threshold" validate:"gt=0,lte=1"`
	DecisionTable   datatypes.JSONMap `gorm:"column:decision_table;type:jsonb" json:"decision_table" validate:"required"`
	Revision        uint64            `gorm:"column:revision" json:"revision"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (StrategyConfig) TableName() string {
	return "strategy_configs"
}
