package similarity

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"recoInsight/domain"
)

// Compute builds the item-item cosine similarity matrix of a ratings
// snapshot. The input is not modified. Every invalid interaction aborts the
// computation with a validation error.
//
// The pair loop runs over i < j in ascending item order; rows are handed out
// to opts.Workers goroutines and merged back in row order, so the returned
// matrix is the same for any worker count.
func Compute(interactions []domain.Interaction, opts Options) (*Matrix, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	for i, in := range interactions {
		if err := Validate(in, opts); err != nil {
			return nil, fmt.Errorf("interaction %d: %w", i, err)
		}
	}

	deduped := Dedupe(interactions)
	vectors, ids := buildVectors(deduped)

	rows := make([][]domain.SimilarityEntry, len(ids))

	var g errgroup.Group
	g.SetLimit(opts.Workers)

	for i := range ids {
		g.Go(func() error {
			rows[i] = computeRow(i, ids, vectors, opts.MinSupport)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range rows {
		total += len(r)
	}
	entries := make([]domain.SimilarityEntry, 0, total)
	for _, r := range rows {
		entries = append(entries, r...)
	}

	return newMatrix(ids, entries, len(deduped)), nil
}

// computeRow scores item ids[i] against every later item.
func computeRow(i int, ids []uint64, vectors map[uint64]*itemVector, minSupport int) []domain.SimilarityEntry {
	a := vectors[ids[i]]
	var row []domain.SimilarityEntry

	for j := i + 1; j < len(ids); j++ {
		score, support, ok := cosine(a, vectors[ids[j]], minSupport)
		if !ok {
			continue
		}
		row = append(row, domain.SimilarityEntry{
			ItemA:   ids[i],
			ItemB:   ids[j],
			Score:   score,
			Support: support,
		})
	}

	return row
}

// Stamp returns a copy of the matrix entries tagged with a snapshot version,
// ready to be persisted.
func Stamp(m *Matrix, version uint64, at time.Time) []domain.SimilarityEntry {
	entries := m.Entries()
	for i := range entries {
		entries[i].Version = version
		entries[i].ComputedAt = at
	}
	return entries
}
