package strategy

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"recoInsight/domain"
)

// Target is one item a directive acts on.
type Target struct {
	ItemID   uint64   `json:"item_id"`
	Score    float64  `json:"score"`
	Rank     int      `json:"rank"`
	Priority Priority `json:"priority"`
	Plan     string   `json:"action_plan"`
}

// Directive is a validated prescriptive action. The zero value is not
// usable; directives only come out of Engine.Derive.
type Directive struct {
	id             string
	sourceItemID   uint64
	sourceUserID   uint
	action         ActionKind
	band           ConfidenceBand
	topScore       float64
	fallback       bool
	rationale      string
	expectedImpact string
	targets        []Target
	revision       uint64
	generatedAt    time.Time
}

func (d Directive) ID() string { return d.id }
func (d Directive) Action() ActionKind { return d.action }
func (d Directive) Band() ConfidenceBand { return d.band }
func (d Directive) TopScore() float64 { return d.topScore }
func (d Directive) Fallback() bool { return d.fallback }
func (d Directive) Rationale() string { return d.rationale }
func (d Directive) ExpectedImpact() string { return d.expectedImpact }
func (d Directive) Revision() uint64 { return d.revision }
func (d Directive) GeneratedAt() time.Time { return d.generatedAt }
func (d Directive) SourceItemID() uint64 { return d.sourceItemID }
func (d Directive) SourceUserID() uint { return d.sourceUserID }

// Targets returns a copy of the target list.
func (d Directive) Targets() []Target {
	out := make([]Target, len(d.targets))
	copy(out, d.targets)
	return out
}

type directiveJSON struct {
	ID             string         `json:"id"`
	SourceItemID   uint64         `json:"source_item_id,omitempty"`
	SourceUserID   uint           `json:"source_user_id,omitempty"`
	Action         ActionKind     `json:"action_kind"`
	ActionName     string         `json:"action_name"`
	Band           ConfidenceBand `json:"confidence_band"`
	TopScore       float64        `json:"top_score"`
	Fallback       bool           `json:"fallback"`
	Rationale      string         `json:"rationale"`
	ExpectedImpact string         `json:"expected_impact"`
	Targets        []Target       `json:"target_items"`
	Revision       uint64         `json:"strategy_revision"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

func (d Directive) MarshalJSON() ([]byte, error) {
	return json.Marshal(directiveJSON{
		ID:             d.id,
		SourceItemID:   d.sourceItemID,
		SourceUserID:   d.sourceUserID,
		Action:         d.action,
		ActionName:     playbooks[d.action].name,
		Band:           d.band,
		TopScore:       d.topScore,
		Fallback:       d.fallback,
		Rationale:      d.rationale,
		ExpectedImpact: d.expectedImpact,
		Targets:        d.targets,
		Revision:       d.revision,
		GeneratedAt:    d.generatedAt,
	})
}

// UnmarshalJSON restores a directive that was marshalled by this package,
// e.g. from a cache. The result is checked against thresholds by the engine
// before it is handed out again.
func (d *Directive) UnmarshalJSON(b []byte) error {
	var raw directiveJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Directive{
		id:             raw.ID,
		sourceItemID:   raw.SourceItemID,
		sourceUserID:   raw.SourceUserID,
		action:         raw.Action,
		band:           raw.Band,
		topScore:       raw.TopScore,
		fallback:       raw.Fallback,
		rationale:      raw.Rationale,
		expectedImpact: raw.ExpectedImpact,
		targets:        raw.Targets,
		revision:       raw.Revision,
		generatedAt:    raw.GeneratedAt,
	}
	return nil
}

// validate is the schema check every directive passes before it leaves the
// engine. It never repairs a field.
func (d Directive) validate(t Thresholds) error {
	if d.id == "" {
		return domain.NewValidationError("id", "is required")
	}
	if _, ok := playbooks[d.action]; !ok {
		return domain.NewValidationError("action_kind", fmt.Sprintf("unknown action %q", d.action))
	}
	if !d.band.valid() {
		return domain.NewValidationError("confidence_band", fmt.Sprintf("unknown band %q", d.band))
	}
	if len(d.targets) == 0 {
		return domain.NewValidationError("target_items", "must not be empty")
	}
	if d.rationale == "" {
		return domain.NewValidationError("rationale", "is required")
	}
	if math.IsNaN(d.topScore) || d.topScore < 0 || d.topScore > 1 {
		return domain.NewValidationError("top_score", "must be within [0, 1]")
	}
	if d.targets[0].Score != d.topScore {
		return domain.NewValidationError("top_score", "does not match the first target")
	}

	want := t.Classify(d.topScore)
	if d.fallback {
		want = BandLow
	}
	if d.band != want {
		return domain.NewValidationError("confidence_band",
			fmt.Sprintf("%s is inconsistent with score %.4f (expected %s)", d.band, d.topScore, want))
	}

	for i, tg := range d.targets {
		if tg.ItemID == 0 {
			return domain.NewValidationError("target_items", fmt.Sprintf("entry %d has no item", i))
		}
		if tg.Rank != i+1 {
			return domain.NewValidationError("target_items", fmt.Sprintf("entry %d has rank %d", i, tg.Rank))
		}
		if i > 0 && tg.Score > d.targets[i-1].Score {
			return domain.NewValidationError("target_items", fmt.Sprintf("entry %d outranks a higher score", i))
		}
		if tg.Plan == "" {
			return domain.NewValidationError("target_items", fmt.Sprintf("entry %d has no action plan", i))
		}
	}

	return nil
}
