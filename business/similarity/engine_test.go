package similarity

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"recoInsight/domain"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func rating(user uint, item uint64, r float64) domain.Interaction {
	return domain.Interaction{UserID: user, ItemID: item, Rating: r, RatedAt: baseTime}
}

func TestCompute_IdenticalPatterns(t *testing.T) {
	patterns := [][]float64{
		{5, 4},
		{1, 3, 3},
		{2, 5, 3},
		{1, 1, 5},
		{3, 4, 5, 2},
	}

	for _, p := range patterns {
		var in []domain.Interaction
		for u, r := range p {
			in = append(in, rating(uint(u+1), 1, r), rating(uint(u+1), 2, r))
		}
		m, err := Compute(in, DefaultOptions())
		if err != nil {
			t.Fatalf("Compute(%v) error = %v", p, err)
		}

		e, ok := m.Entry(1, 2)
		if !ok {
			t.Fatalf("Entry(1,2) missing for %v", p)
		}
		if e.Score != 1.0 {
			t.Errorf("pattern %v score = %.17g, want exactly 1", p, e.Score)
		}
		if e.Support != len(p) {
			t.Errorf("pattern %v support = %d, want %d", p, e.Support, len(p))
		}
	}
}

func TestCompute_RestrictedToCommonRaters(t *testing.T) {
	// user 3 only rated item 1 and must not affect the norm of the pair
	m, err := Compute([]domain.Interaction{
		rating(1, 1, 3), rating(1, 2, 4),
		rating(2, 1, 4), rating(2, 2, 3),
		rating(3, 1, 5),
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	want := (3.0*4 + 4*3) / (math.Sqrt(3*3+4*4) * math.Sqrt(4*4+3*3))
	got, ok := m.Score(1, 2)
	if !ok {
		t.Fatal("Score(1,2) missing")
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestCompute_OmitsPairsWithoutSignal(t *testing.T) {
	tests := []struct {
		name         string
		interactions []domain.Interaction
		a, b         uint64
	}{
		{
			name:         "no common raters",
			interactions: []domain.Interaction{rating(1, 1, 5), rating(2, 2, 5)},
			a:            1, b: 2,
		},
		{
			name:         "zero restricted norm",
			interactions: []domain.Interaction{rating(1, 1, 0), rating(1, 2, 5), rating(2, 1, 0), rating(2, 2, 3)},
			a:            1, b: 2,
		},
		{
			name:         "self pair",
			interactions: []domain.Interaction{rating(1, 1, 5), rating(1, 2, 5)},
			a:            1, b: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compute(tt.interactions, DefaultOptions())
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if _, ok := m.Entry(tt.a, tt.b); ok {
				t.Errorf("Entry(%d,%d) present, want omitted", tt.a, tt.b)
			}
		})
	}
}

func TestCompute_ZeroScoreIsKept(t *testing.T) {
	// common raters exist and norms are non-zero, but the vectors never
	// overlap on a positive rating
	m, err := Compute([]domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 0),
		rating(2, 1, 0), rating(2, 2, 4),
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	e, ok := m.Entry(1, 2)
	if !ok {
		t.Fatal("Entry(1,2) missing, want a zero score with support 2")
	}
	if e.Score != 0 || e.Support != 2 {
		t.Errorf("entry = %+v, want score 0 support 2", e)
	}
}

func TestCompute_MinSupport(t *testing.T) {
	in := []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 4),
		rating(2, 1, 3), rating(2, 3, 3),
		rating(3, 1, 4), rating(3, 3, 2),
	}
	opts := DefaultOptions()
	opts.MinSupport = 2

	m, err := Compute(in, opts)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if _, ok := m.Entry(1, 2); ok {
		t.Error("pair (1,2) with support 1 kept under MinSupport=2")
	}
	if _, ok := m.Entry(1, 3); !ok {
		t.Error("pair (1,3) with support 2 dropped under MinSupport=2")
	}
}

func TestCompute_LatestRatingWins(t *testing.T) {
	in := []domain.Interaction{
		{UserID: 1, ItemID: 1, Rating: 5, RatedAt: baseTime},
		{UserID: 1, ItemID: 2, Rating: 5, RatedAt: baseTime},
		{UserID: 2, ItemID: 1, Rating: 1, RatedAt: baseTime.Add(time.Hour)},
		{UserID: 2, ItemID: 1, Rating: 4, RatedAt: baseTime}, // older, ignored
		{UserID: 2, ItemID: 2, Rating: 1, RatedAt: baseTime},
	}

	m, err := Compute(in, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	got, _ := m.Score(1, 2)
	if math.Abs(got-1.0) > 1e-12 {
		t.Errorf("score = %v, want 1.0 (5,1)·(5,1) after dedupe", got)
	}
	if m.Interactions() != 4 {
		t.Errorf("Interactions() = %d, want 4", m.Interactions())
	}
}

func TestCompute_RejectsInvalidInteractions(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.Interaction
		field string
	}{
		{"rating above range", rating(1, 1, 5.5), "rating"},
		{"negative rating", rating(1, 1, -1), "rating"},
		{"nan rating", rating(1, 1, math.NaN()), "rating"},
		{"zero user", rating(0, 1, 3), "user_id"},
		{"zero item", rating(1, 0, 3), "item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute([]domain.Interaction{tt.in}, DefaultOptions())
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Compute() error = %v, want ErrValidation", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("field = %v, want %s", ve, tt.field)
			}
		})
	}
}

func TestCompute_InvalidOptions(t *testing.T) {
	_, err := Compute(nil, Options{RatingMin: 5, RatingMax: 1})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("Compute() error = %v, want ErrConfiguration", err)
	}
}

func randomInteractions(seed int64, users, items, n int) []domain.Interaction {
	r := rand.New(rand.NewSource(seed))
	out := make([]domain.Interaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Interaction{
			UserID:  uint(r.Intn(users) + 1),
			ItemID:  uint64(r.Intn(items) + 1),
			Rating:  float64(r.Intn(11)) / 2,
			RatedAt: baseTime.Add(time.Duration(r.Intn(1000)) * time.Minute),
		})
	}
	return out
}

func TestCompute_Properties(t *testing.T) {
	in := randomInteractions(42, 40, 25, 400)

	m, err := Compute(in, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if m.Len() == 0 {
		t.Fatal("expected a non-empty matrix")
	}

	for _, e := range m.Entries() {
		if e.ItemA >= e.ItemB {
			t.Errorf("entry %+v not canonical", e)
		}
		if e.Score < 0 || e.Score > 1 {
			t.Errorf("score %v out of [0,1]", e.Score)
		}
		if e.Support <= 0 {
			t.Errorf("entry %+v stored without support", e)
		}
		ab, _ := m.Score(e.ItemA, e.ItemB)
		ba, _ := m.Score(e.ItemB, e.ItemA)
		if ab != ba {
			t.Errorf("asymmetric: s(%d,%d)=%v s(%d,%d)=%v", e.ItemA, e.ItemB, ab, e.ItemB, e.ItemA, ba)
		}
	}

	for _, id := range m.Items() {
		if _, ok := m.Score(id, id); ok {
			t.Errorf("self similarity produced for %d", id)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	in := randomInteractions(7, 30, 20, 300)

	first, err := Compute(in, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	for _, workers := range []int{1, 2, 8} {
		opts := DefaultOptions()
		opts.Workers = workers
		again, err := Compute(in, opts)
		if err != nil {
			t.Fatalf("Compute(workers=%d) error = %v", workers, err)
		}
		if !reflect.DeepEqual(first.Entries(), again.Entries()) {
			t.Errorf("workers=%d produced a different matrix", workers)
		}
	}
}

func TestMatrix_NeighborsOrdering(t *testing.T) {
	m := newMatrix([]uint64{1, 2, 3, 4}, []domain.SimilarityEntry{
		{ItemA: 1, ItemB: 4, Score: 0.5, Support: 2},
		{ItemA: 1, ItemB: 3, Score: 0.5, Support: 2},
		{ItemA: 1, ItemB: 2, Score: 0.5, Support: 5},
	}, 0)

	var got []uint64
	for _, e := range m.Neighbors(1) {
		got = append(got, e.Other(1))
	}
	want := []uint64{2, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(1) order = %v, want %v", got, want)
	}

	// mutating the copy must not leak into the matrix
	n := m.Neighbors(1)
	n[0].Score = 0
	if s, _ := m.Score(1, 2); s != 0.5 {
		t.Errorf("matrix mutated through Neighbors copy: %v", s)
	}
}

func TestStamp(t *testing.T) {
	m, err := Compute([]domain.Interaction{rating(1, 1, 5), rating(1, 2, 5)}, DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	stamped := Stamp(m, 9, baseTime)
	if len(stamped) != 1 || stamped[0].Version != 9 || !stamped[0].ComputedAt.Equal(baseTime) {
		t.Errorf("Stamp() = %+v", stamped)
	}
	if m.Entries()[0].Version != 0 {
		t.Error("Stamp mutated the matrix")
	}
}
