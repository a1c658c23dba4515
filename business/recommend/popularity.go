package recommend

import (
	"sort"

	"recoInsight/domain"
)

// Popularity is a ranked item popularity aggregate with an index for
// tie-breaking and membership checks. Build it with NewPopularity.
type Popularity struct {
	ranked []domain.ItemPopularity
	index  map[uint64]int
	max    int64
}

// NewPopularity orders rows by total interactions desc, average rating desc,
// item id asc. Duplicate item rows keep the first occurrence.
func NewPopularity(rows []domain.ItemPopularity) *Popularity {
	ranked := make([]domain.ItemPopularity, 0, len(rows))
	seen := make(map[uint64]struct{}, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.ItemID]; dup {
			continue
		}
		seen[r.ItemID] = struct{}{}
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalInteractions != ranked[j].TotalInteractions {
			return ranked[i].TotalInteractions > ranked[j].TotalInteractions
		}
		if ranked[i].AvgRating != ranked[j].AvgRating {
			return ranked[i].AvgRating > ranked[j].AvgRating
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})

	p := &Popularity{
		ranked: ranked,
		index:  make(map[uint64]int, len(ranked)),
	}
	for i, r := range ranked {
		p.index[r.ItemID] = i
		if r.TotalInteractions > p.max {
			p.max = r.TotalInteractions
		}
	}

	return p
}

// PopularityFromInteractions aggregates a deduplicated snapshot the same way
// the ratings store does.
func PopularityFromInteractions(interactions []domain.Interaction) *Popularity {
	type agg struct {
		count int64
		sum   float64
	}
	byItem := make(map[uint64]*agg)
	for _, in := range interactions {
		a, ok := byItem[in.ItemID]
		if !ok {
			a = &agg{}
			byItem[in.ItemID] = a
		}
		a.count++
		a.sum += in.Rating
	}

	rows := make([]domain.ItemPopularity, 0, len(byItem))
	for id, a := range byItem {
		rows = append(rows, domain.ItemPopularity{
			ItemID:            id,
			TotalInteractions: a.count,
			AvgRating:         a.sum / float64(a.count),
		})
	}

	return NewPopularity(rows)
}

// Contains reports whether the item has at least one interaction.
func (p *Popularity) Contains(id uint64) bool {
	if p == nil {
		return false
	}
	_, ok := p.index[id]
	return ok
}

// Rank is the zero-based popularity position of id; unknown items rank last.
func (p *Popularity) Rank(id uint64) int {
	if p == nil {
		return int(^uint(0) >> 1)
	}
	if i, ok := p.index[id]; ok {
		return i
	}
	return len(p.ranked)
}

// Score maps total interactions into [0,1] relative to the most popular item.
func (p *Popularity) Score(id uint64) float64 {
	if p == nil || p.max == 0 {
		return 0
	}
	i, ok := p.index[id]
	if !ok {
		return 0
	}
	return float64(p.ranked[i].TotalInteractions) / float64(p.max)
}

// Rows returns a copy of the ranked rows.
func (p *Popularity) Rows() []domain.ItemPopularity {
	if p == nil {
		return nil
	}
	out := make([]domain.ItemPopularity, len(p.ranked))
	copy(out, p.ranked)
	return out
}

// Len is the number of ranked items.
func (p *Popularity) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ranked)
}
