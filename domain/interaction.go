package domain

import "time"

// CREATE TABLE public.interactions (
//     user_id     BIGINT NOT NULL,
//     item_id     BIGINT NOT NULL,
//     rating      NUMERIC NOT NULL,
//     rated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     PRIMARY KEY (user_id, item_id)
// );

// Interaction is a single user rating. One row per (user, item); the latest
// RatedAt wins when the same pair is written twice.
type Interaction struct {
	UserID  uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	ItemID  uint64    `gorm:"column:item_id;primaryKey" json:"item_id"`
	Rating  float64   `gorm:"column:rating;type:numeric;not null" json:"rating"`
	RatedAt time.Time `gorm:"column:rated_at;not null" json:"rated_at"`
}

func (Interaction) TableName() string {
	return "interactions"
}

// ItemPopularity is the per-item aggregate served by the ratings store. It
// doubles as the descriptive performance row of the analytics endpoint.
type ItemPopularity struct {
	ItemID            uint64  `gorm:"column:item_id" json:"item_id"`
	TotalInteractions int64   `gorm:"column:total_interactions" json:"total_interactions"`
	AvgRating         float64 `gorm:"column:avg_rating" json:"avg_rating"`
}
