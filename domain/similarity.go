package domain

import "time"

// CREATE TABLE public.item_similarities (
//     item_a      BIGINT NOT NULL,
//     item_b      BIGINT NOT NULL,
//     score       DOUBLE PRECISION NOT NULL,
//     support     INTEGER NOT NULL,
//     version     BIGINT NOT NULL,
//     computed_at TIMESTAMPTZ NOT NULL,
//     PRIMARY KEY (item_a, item_b)
// );

// SimilarityEntry is the cosine similarity of an unordered item pair, stored
// with ItemA < ItemB. Support is the number of users who rated both items and
// is always > 0: pairs without common raters are never materialised.
type SimilarityEntry struct {
	ItemA   uint64  `gorm:"column:item_a;primaryKey" json:"item_a"`
	ItemB   uint64  `gorm:"column:item_b;primaryKey" json:"item_b"`
	Score   float64 `gorm:"column:score;not null" json:"score"`
	Support int     `gorm:"column:support;not null" json:"support"`

	Version    uint64    `gorm:"column:version;not null" json:"-"`
	ComputedAt time.Time `gorm:"column:computed_at;not null" json:"-"`
}

func (SimilarityEntry) TableName() string {
	return "item_similarities"
}

// Other returns the item on the opposite side of the pair from id.
func (e SimilarityEntry) Other(id uint64) uint64 {
	if e.ItemA == id {
		return e.ItemB
	}
	return e.ItemA
}

// SnapshotStatus describes the similarity snapshot currently being served.
type SnapshotStatus struct {
	Ready        bool      `json:"ready"`
	Version      uint64    `json:"version"`
	BuiltAt      time.Time `json:"built_at"`
	Items        int       `json:"items"`
	Entries      int       `json:"entries"`
	Interactions int       `json:"interactions"`
	Stale        bool      `json:"stale"`
}
