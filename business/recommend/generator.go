package recommend

import (
	"fmt"
	"sort"

	"recoInsight/business/similarity"
	"recoInsight/domain"
)

const (
	defaultFallbackThreshold = 1e-9
	defaultRecentItems       = 5
)

type Options struct {
	// FallbackThreshold is the best similarity score at or below which the
	// neighbourhood counts as "no signal" and popularity is used instead.
	FallbackThreshold float64

	// RecentItems is how many of a user's latest ratings seed RecommendForUser.
	RecentItems int
}

func DefaultOptions() Options {
	return Options{
		FallbackThreshold: defaultFallbackThreshold,
		RecentItems:       defaultRecentItems,
	}
}

type candidate struct {
	itemID  uint64
	score   float64
	support int
	popRank int
}

// Recommend ranks the k items most similar to target. The popularity
// ranking is used when the matrix holds no usable signal for target. An item
// that was never rated returns domain.ErrNotFound.
func Recommend(
	target uint64,
	matrix *similarity.Matrix,
	popularity *Popularity,
	k int,
	opts Options,
) (domain.Recommendation, error) {

	if k <= 0 {
		return domain.Recommendation{}, domain.NewValidationError("k", "must be greater than 0")
	}
	if !matrix.HasItem(target) && !popularity.Contains(target) {
		return domain.Recommendation{}, fmt.Errorf("item %d: %w", target, domain.ErrNotFound)
	}

	neighbors := matrix.Neighbors(target)
	candidates := make([]candidate, 0, len(neighbors))
	for _, e := range neighbors {
		other := e.Other(target)
		candidates = append(candidates, candidate{
			itemID:  other,
			score:   e.Score,
			support: e.Support,
			popRank: popularity.Rank(other),
		})
	}

	rec := domain.Recommendation{SourceItemID: target}

	if !hasSignal(candidates, opts.FallbackThreshold) {
		rec.Fallback = true
		rec.Items = fromPopularity(popularity, k, map[uint64]struct{}{target: {}})
		return rec, nil
	}

	rec.Items = rank(candidates, k)
	return rec, nil
}

// RecommendForUser ranks items similar to the user's most recent ratings.
// Each candidate keeps its best similarity to any recent item; items the user
// already rated are excluded. A user without history returns
// domain.ErrNotFound.
func RecommendForUser(
	userID uint,
	history []domain.Interaction,
	matrix *similarity.Matrix,
	popularity *Popularity,
	k int,
	opts Options,
) (domain.Recommendation, error) {

	if k <= 0 {
		return domain.Recommendation{}, domain.NewValidationError("k", "must be greater than 0")
	}

	own := make([]domain.Interaction, 0, len(history))
	for _, in := range history {
		if in.UserID == userID {
			own = append(own, in)
		}
	}
	if len(own) == 0 {
		return domain.Recommendation{}, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	own = similarity.Dedupe(own)
	sort.SliceStable(own, func(i, j int) bool {
		if !own[i].RatedAt.Equal(own[j].RatedAt) {
			return own[i].RatedAt.After(own[j].RatedAt)
		}
		return own[i].ItemID < own[j].ItemID
	})

	rated := make(map[uint64]struct{}, len(own))
	for _, in := range own {
		rated[in.ItemID] = struct{}{}
	}

	recent := opts.RecentItems
	if recent <= 0 {
		recent = defaultRecentItems
	}
	if recent > len(own) {
		recent = len(own)
	}

	best := make(map[uint64]candidate)
	for _, seed := range own[:recent] {
		for _, e := range matrix.Neighbors(seed.ItemID) {
			other := e.Other(seed.ItemID)
			if _, done := rated[other]; done {
				continue
			}
			c, ok := best[other]
			if !ok || e.Score > c.score || (e.Score == c.score && e.Support > c.support) {
				best[other] = candidate{
					itemID:  other,
					score:   e.Score,
					support: e.Support,
					popRank: popularity.Rank(other),
				}
			}
		}
	}

	candidates := make([]candidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}

	rec := domain.Recommendation{SourceUserID: userID}

	if !hasSignal(candidates, opts.FallbackThreshold) {
		rec.Fallback = true
		rec.Items = fromPopularity(popularity, k, rated)
		return rec, nil
	}

	rec.Items = rank(candidates, k)
	return rec, nil
}

// hasSignal is false when no candidate scores above the fallback threshold.
func hasSignal(candidates []candidate, threshold float64) bool {
	if threshold < 0 {
		threshold = 0
	}
	for _, c := range candidates {
		if c.score > threshold {
			return true
		}
	}
	return false
}

// rank orders candidates by score desc, support desc, popularity desc, item
// id asc, and numbers the top k.
func rank(candidates []candidate, k int) []domain.RankedItem {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.support != b.support {
			return a.support > b.support
		}
		if a.popRank != b.popRank {
			return a.popRank < b.popRank
		}
		return a.itemID < b.itemID
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	out := make([]domain.RankedItem, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, domain.RankedItem{
			ItemID:  candidates[i].itemID,
			Score:   candidates[i].score,
			Rank:    i + 1,
			Support: candidates[i].support,
		})
	}
	return out
}

// fromPopularity takes the k most popular items not in exclude.
func fromPopularity(p *Popularity, k int, exclude map[uint64]struct{}) []domain.RankedItem {
	out := make([]domain.RankedItem, 0, k)
	for _, row := range p.Rows() {
		if len(out) == k {
			break
		}
		if _, skip := exclude[row.ItemID]; skip {
			continue
		}
		out = append(out, domain.RankedItem{
			ItemID: row.ItemID,
			Score:  p.Score(row.ItemID),
			Rank:   len(out) + 1,
		})
	}
	return out
}
