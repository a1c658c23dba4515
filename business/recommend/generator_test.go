package recommend

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"recoInsight/business/similarity"
	"recoInsight/domain"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func rating(user uint, item uint64, r float64) domain.Interaction {
	return domain.Interaction{UserID: user, ItemID: item, Rating: r, RatedAt: baseTime}
}

func build(t *testing.T, in []domain.Interaction) (*similarity.Matrix, *Popularity) {
	t.Helper()
	m, err := similarity.Compute(in, similarity.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return m, PopularityFromInteractions(similarity.Dedupe(in))
}

func itemIDs(items []domain.RankedItem) []uint64 {
	out := make([]uint64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ItemID)
	}
	return out
}

func TestRecommend_ExampleScenario(t *testing.T) {
	m, pop := build(t, []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 5),
		rating(2, 1, 4), rating(2, 2, 4),
	})

	rec, err := Recommend(1, m, pop, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.Fallback {
		t.Error("Fallback = true, want false")
	}
	if len(rec.Items) != 1 || rec.Items[0].ItemID != 2 || rec.Items[0].Rank != 1 {
		t.Fatalf("Items = %+v, want [(2, rank 1)]", rec.Items)
	}
	if rec.Items[0].Score < 1-1e-12 {
		t.Errorf("score = %v, want 1.0", rec.Items[0].Score)
	}
}

func TestRecommend_FallbackForIsolatedItem(t *testing.T) {
	m, pop := build(t, []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 4),
		rating(2, 1, 4), rating(2, 2, 5),
		rating(3, 1, 3),
		rating(4, 3, 5), // item 3 shares no rater with anything
	})

	rec, err := Recommend(3, m, pop, 2, DefaultOptions())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !rec.Fallback {
		t.Fatal("Fallback = false, want true")
	}
	// item 1 has 3 ratings, item 2 has 2; item 3 itself is excluded
	if got, want := itemIDs(rec.Items), []uint64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if rec.Items[0].Score != 1 {
		t.Errorf("top popularity score = %v, want 1", rec.Items[0].Score)
	}
	for _, it := range rec.Items {
		if _, ok := m.Entry(3, it.ItemID); ok {
			t.Errorf("fallback item %d came from the similarity matrix", it.ItemID)
		}
	}
}

func TestRecommend_SingleItemCatalogFallsBackEmpty(t *testing.T) {
	m, pop := build(t, []domain.Interaction{rating(1, 9, 4), rating(2, 9, 5)})

	rec, err := Recommend(9, m, pop, 3, DefaultOptions())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !rec.Fallback {
		t.Error("Fallback = false, want true")
	}
	if len(rec.Items) != 0 {
		t.Errorf("items = %v, want none", itemIDs(rec.Items))
	}
}

func TestRecommend_FallbackForZeroScores(t *testing.T) {
	m, pop := build(t, []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 0),
		rating(2, 1, 0), rating(2, 2, 4),
	})
	if s, ok := m.Score(1, 2); !ok || s != 0 {
		t.Fatalf("precondition: score(1,2) = %v,%v want 0,true", s, ok)
	}

	rec, err := Recommend(1, m, pop, 3, DefaultOptions())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !rec.Fallback {
		t.Error("Fallback = false for an all-zero neighbourhood")
	}
}

func TestRecommend_FallbackThresholdIsConfigurable(t *testing.T) {
	m, pop := build(t, []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 1),
		rating(2, 1, 1), rating(2, 2, 5),
	})
	score, _ := m.Score(1, 2)

	opts := DefaultOptions()
	opts.FallbackThreshold = score

	rec, err := Recommend(1, m, pop, 1, opts)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !rec.Fallback {
		t.Errorf("score %v at threshold did not trigger fallback", score)
	}

	opts.FallbackThreshold = score / 2
	rec, err = Recommend(1, m, pop, 1, opts)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.Fallback {
		t.Errorf("score %v above threshold triggered fallback", score)
	}
}

func TestRecommend_Errors(t *testing.T) {
	m, pop := build(t, []domain.Interaction{rating(1, 1, 5), rating(1, 2, 5)})

	tests := []struct {
		name    string
		target  uint64
		k       int
		wantErr error
	}{
		{"never rated item", 99, 3, domain.ErrNotFound},
		{"zero k", 1, 0, domain.ErrValidation},
		{"negative k", 1, -2, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recommend(tt.target, m, pop, tt.k, DefaultOptions())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Recommend() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecommend_TieOrderingIsDeterministic(t *testing.T) {
	// items 2, 3 and 4 all have identical rating columns to item 1
	in := []domain.Interaction{
		rating(1, 1, 4), rating(1, 2, 4), rating(1, 3, 4), rating(1, 4, 4),
		rating(2, 1, 2), rating(2, 2, 2), rating(2, 3, 2), rating(2, 4, 2),
		rating(3, 4, 5), // item 4 is the most popular
	}
	m, pop := build(t, in)

	var first []uint64
	for i := 0; i < 10; i++ {
		rec, err := Recommend(1, m, pop, 3, DefaultOptions())
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		got := itemIDs(rec.Items)
		if first == nil {
			first = got
			continue
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d order = %v, want %v", i, got, first)
		}
	}

	// 4 has the same score and support as 2 and 3, but more interactions
	if want := []uint64{4, 2, 3}; !reflect.DeepEqual(first, want) {
		t.Errorf("order = %v, want %v", first, want)
	}
}

func TestRecommend_RanksAreStrictlyIncreasing(t *testing.T) {
	in := []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 5), rating(1, 3, 1), rating(1, 4, 3),
		rating(2, 1, 1), rating(2, 2, 2), rating(2, 3, 5), rating(2, 4, 3),
		rating(3, 1, 4), rating(3, 2, 4), rating(3, 4, 2),
	}
	m, pop := build(t, in)

	rec, err := Recommend(1, m, pop, 10, DefaultOptions())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(rec.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(rec.Items))
	}
	for i, it := range rec.Items {
		if it.Rank != i+1 {
			t.Errorf("item %d rank = %d, want %d", it.ItemID, it.Rank, i+1)
		}
		if i > 0 && it.Score > rec.Items[i-1].Score {
			t.Errorf("score increases at rank %d", it.Rank)
		}
	}
}

func TestRecommendForUser(t *testing.T) {
	in := []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 5), rating(1, 3, 2),
		rating(2, 1, 4), rating(2, 2, 4), rating(2, 3, 1),
		{UserID: 3, ItemID: 1, Rating: 5, RatedAt: baseTime.Add(time.Hour)},
	}
	m, pop := build(t, in)

	rec, err := RecommendForUser(3, in, m, pop, 5, DefaultOptions())
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if rec.Fallback {
		t.Fatal("Fallback = true, want false")
	}
	if rec.SourceUserID != 3 {
		t.Errorf("SourceUserID = %d, want 3", rec.SourceUserID)
	}
	for _, it := range rec.Items {
		if it.ItemID == 1 {
			t.Error("already rated item 1 recommended")
		}
	}
	if len(rec.Items) == 0 || rec.Items[0].ItemID != 2 {
		t.Errorf("items = %v, want item 2 first", itemIDs(rec.Items))
	}
}

func TestRecommendForUser_FallbackExcludesRatedItems(t *testing.T) {
	in := []domain.Interaction{
		rating(1, 1, 5), rating(1, 2, 4),
		rating(2, 1, 3), rating(2, 2, 3),
		rating(3, 9, 4), // item 9 has no similar items
	}
	m, pop := build(t, in)

	rec, err := RecommendForUser(3, in, m, pop, 3, DefaultOptions())
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if !rec.Fallback {
		t.Fatal("Fallback = false, want true")
	}
	if got, want := itemIDs(rec.Items), []uint64{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestRecommendForUser_UnknownUser(t *testing.T) {
	in := []domain.Interaction{rating(1, 1, 5)}
	m, pop := build(t, in)

	_, err := RecommendForUser(42, in, m, pop, 3, DefaultOptions())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RecommendForUser() error = %v, want ErrNotFound", err)
	}
}

func TestNewPopularity_Ordering(t *testing.T) {
	p := NewPopularity([]domain.ItemPopularity{
		{ItemID: 5, TotalInteractions: 2, AvgRating: 3},
		{ItemID: 3, TotalInteractions: 2, AvgRating: 4},
		{ItemID: 1, TotalInteractions: 2, AvgRating: 4},
		{ItemID: 9, TotalInteractions: 7, AvgRating: 1},
		{ItemID: 9, TotalInteractions: 1, AvgRating: 1},
	})

	var got []uint64
	for _, r := range p.Rows() {
		got = append(got, r.ItemID)
	}
	if want := []uint64{9, 1, 3, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if p.Score(9) != 1 {
		t.Errorf("Score(9) = %v, want 1", p.Score(9))
	}
	if s := p.Score(5); s != 2.0/7.0 {
		t.Errorf("Score(5) = %v, want 2/7", s)
	}
	if p.Contains(42) {
		t.Error("Contains(42) = true")
	}
}
