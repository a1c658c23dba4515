package similarity

import (
	"fmt"
	"math"
	"sort"

	"recoInsight/domain"
)

// itemVector is the sparse rating column of one item, sorted by user id so
// pair sums are accumulated in a fixed order.
type itemVector struct {
	users   []uint
	ratings []float64
}

// Validate checks ids and the rating range of a single interaction.
func Validate(in domain.Interaction, opts Options) error {
	if in.UserID == 0 {
		return domain.NewValidationError("user_id", "must be greater than 0")
	}
	if in.ItemID == 0 {
		return domain.NewValidationError("item_id", "must be greater than 0")
	}
	if math.IsNaN(in.Rating) || math.IsInf(in.Rating, 0) {
		return domain.NewValidationError("rating", "must be a finite number")
	}
	if in.Rating < opts.RatingMin || in.Rating > opts.RatingMax {
		return domain.NewValidationError("rating", fmt.Sprintf("must be within [%v, %v]", opts.RatingMin, opts.RatingMax))
	}
	return nil
}

type pairKey struct {
	user uint
	item uint64
}

// Dedupe keeps one interaction per (user, item): the latest RatedAt, and on
// equal timestamps the one that comes later in the input.
func Dedupe(interactions []domain.Interaction) []domain.Interaction {
	idx := make(map[pairKey]int, len(interactions))
	out := make([]domain.Interaction, 0, len(interactions))

	for _, in := range interactions {
		k := pairKey{user: in.UserID, item: in.ItemID}
		if i, ok := idx[k]; ok {
			if !in.RatedAt.Before(out[i].RatedAt) {
				out[i] = in
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, in)
	}

	return out
}

// buildVectors groups a deduplicated snapshot by item and returns the item
// ids in ascending order.
func buildVectors(interactions []domain.Interaction) (map[uint64]*itemVector, []uint64) {
	byItem := make(map[uint64][]domain.Interaction)
	for _, in := range interactions {
		byItem[in.ItemID] = append(byItem[in.ItemID], in)
	}

	vectors := make(map[uint64]*itemVector, len(byItem))
	ids := make([]uint64, 0, len(byItem))
	for id, list := range byItem {
		sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
		v := &itemVector{
			users:   make([]uint, len(list)),
			ratings: make([]float64, len(list)),
		}
		for i, in := range list {
			v.users[i] = in.UserID
			v.ratings[i] = in.Rating
		}
		vectors[id] = v
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return vectors, ids
}

// cosine computes the similarity of a and b restricted to their common
// raters. ok is false when the pair has too little support or a restricted
// norm is zero.
func cosine(a, b *itemVector, minSupport int) (score float64, support int, ok bool) {
	var dot, normA, normB float64

	i, j := 0, 0
	for i < len(a.users) && j < len(b.users) {
		switch {
		case a.users[i] < b.users[j]:
			i++
		case a.users[i] > b.users[j]:
			j++
		default:
			ra, rb := a.ratings[i], b.ratings[j]
			support++
			dot += ra * rb
			normA += ra * ra
			normB += rb * rb
			i++
			j++
		}
	}

	if support == 0 || support < minSupport {
		return 0, support, false
	}
	if normA == 0 || normB == 0 {
		return 0, support, false
	}

	// one root keeps identical patterns at exactly 1
	score = dot / math.Sqrt(normA*normB)
	switch {
	case score > 1:
		score = 1
	case score < 0:
		score = 0
	}

	return score, support, true
}
