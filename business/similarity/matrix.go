package similarity

import (
	"sort"

	"recoInsight/domain"
)

// Matrix is an immutable item-item similarity snapshot. It is safe for
// concurrent readers; every accessor returns copies.
type Matrix struct {
	items        []uint64
	itemSet      map[uint64]struct{}
	entries      map[key]domain.SimilarityEntry
	neighbors    map[uint64][]domain.SimilarityEntry
	interactions int
}

type key struct {
	a, b uint64
}

func pair(a, b uint64) key {
	if a > b {
		a, b = b, a
	}
	return key{a: a, b: b}
}

func newMatrix(items []uint64, entries []domain.SimilarityEntry, interactions int) *Matrix {
	m := &Matrix{
		items:        items,
		itemSet:      make(map[uint64]struct{}, len(items)),
		entries:      make(map[key]domain.SimilarityEntry, len(entries)),
		neighbors:    make(map[uint64][]domain.SimilarityEntry),
		interactions: interactions,
	}

	for _, id := range items {
		m.itemSet[id] = struct{}{}
	}
	for _, e := range entries {
		m.entries[pair(e.ItemA, e.ItemB)] = e
		m.neighbors[e.ItemA] = append(m.neighbors[e.ItemA], e)
		m.neighbors[e.ItemB] = append(m.neighbors[e.ItemB], e)
	}
	for id, list := range m.neighbors {
		sortNeighbors(id, list)
	}

	return m
}

// sortNeighbors orders entries of item id by score desc, support desc, then
// the neighbouring item id asc.
func sortNeighbors(id uint64, list []domain.SimilarityEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		if list[i].Support != list[j].Support {
			return list[i].Support > list[j].Support
		}
		return list[i].Other(id) < list[j].Other(id)
	})
}

// Entry returns the entry of the unordered pair {a, b}. Self pairs and pairs
// without common raters report false.
func (m *Matrix) Entry(a, b uint64) (domain.SimilarityEntry, bool) {
	if m == nil || a == b {
		return domain.SimilarityEntry{}, false
	}
	e, ok := m.entries[pair(a, b)]
	return e, ok
}

// Score is Entry without the support count.
func (m *Matrix) Score(a, b uint64) (float64, bool) {
	e, ok := m.Entry(a, b)
	return e.Score, ok
}

// Neighbors returns every entry involving id, best first.
func (m *Matrix) Neighbors(id uint64) []domain.SimilarityEntry {
	if m == nil {
		return nil
	}
	list := m.neighbors[id]
	out := make([]domain.SimilarityEntry, len(list))
	copy(out, list)
	return out
}

// HasItem reports whether id was rated in the snapshot.
func (m *Matrix) HasItem(id uint64) bool {
	if m == nil {
		return false
	}
	_, ok := m.itemSet[id]
	return ok
}

// Items returns the rated item ids in ascending order.
func (m *Matrix) Items() []uint64 {
	if m == nil {
		return nil
	}
	out := make([]uint64, len(m.items))
	copy(out, m.items)
	return out
}

// Entries returns all entries ordered by (ItemA, ItemB).
func (m *Matrix) Entries() []domain.SimilarityEntry {
	if m == nil {
		return nil
	}
	out := make([]domain.SimilarityEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemA != out[j].ItemA {
			return out[i].ItemA < out[j].ItemA
		}
		return out[i].ItemB < out[j].ItemB
	})
	return out
}

// Len is the number of stored pairs.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Interactions is the number of deduplicated interactions the matrix was
// built from.
func (m *Matrix) Interactions() int {
	if m == nil {
		return 0
	}
	return m.interactions
}
