package domain

// RankedItem is one position of a Recommendation. Rank starts at 1.
type RankedItem struct {
	ItemID  uint64  `json:"item_id"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
	Support int     `json:"support"`
}

// Recommendation is the ranked output of the generator for either a source
// item or a source user. Fallback is set when the items came from the
// popularity ranking instead of the similarity matrix.
type Recommendation struct {
	SourceItemID uint64       `json:"source_item_id,omitempty"`
	SourceUserID uint         `json:"source_user_id,omitempty"`
	Fallback     bool         `json:"fallback"`
	Items        []RankedItem `json:"items"`
}

// TopScore returns the score of the first ranked item, or 0 when empty.
func (r Recommendation) TopScore() float64 {
	if len(r.Items) == 0 {
		return 0
	}
	return r.Items[0].Score
}
