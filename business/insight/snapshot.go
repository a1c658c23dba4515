package insight

import (
	"sort"
	"time"

	"recoInsight/business/recommend"
	"recoInsight/business/similarity"
	"recoInsight/domain"
)

// Snapshot is one immutable build of the similarity matrix and the data it
// was built from. Readers share it without locking.
type Snapshot struct {
	Version uint64
	// BuildID is unique per build. Version restarts with the process, so
	// anything shared across processes is keyed on BuildID as well.
	BuildID    string
	BuiltAt    time.Time
	Matrix     *similarity.Matrix
	Popularity *recommend.Popularity

	history map[uint][]domain.Interaction
	// writes is the ingest counter observed before the store was read.
	writes uint64
}

func newSnapshot(version uint64, buildID string, builtAt time.Time, m *similarity.Matrix, interactions []domain.Interaction, writes uint64) *Snapshot {
	deduped := similarity.Dedupe(interactions)

	history := make(map[uint][]domain.Interaction)
	for _, in := range deduped {
		history[in.UserID] = append(history[in.UserID], in)
	}
	for _, h := range history {
		sort.SliceStable(h, func(i, j int) bool {
			return h[i].RatedAt.After(h[j].RatedAt)
		})
	}

	return &Snapshot{
		Version:    version,
		BuildID:    buildID,
		BuiltAt:    builtAt,
		Matrix:     m,
		Popularity: recommend.PopularityFromInteractions(deduped),
		history:    history,
		writes:     writes,
	}
}

// History returns the ratings of user in the snapshot, newest first.
func (s *Snapshot) History(user uint) []domain.Interaction {
	h := s.history[user]
	out := make([]domain.Interaction, len(h))
	copy(out, h)
	return out
}
