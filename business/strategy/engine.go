package strategy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"recoInsight/domain"
)

// Engine turns recommendations into directives. It is immutable and safe for
// concurrent use.
type Engine struct {
	cfg   Config
	now   func() time.Time
	newID func() string
}

// NewEngine validates thresholds and decision table totality. Any gap is a
// domain.ErrConfiguration; nothing is checked again per request.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Thresholds.validate(); err != nil {
		return nil, err
	}
	if cfg.Table == nil {
		return nil, fmt.Errorf("%w: decision table is missing", domain.ErrConfiguration)
	}
	for k, a := range cfg.Table {
		if !k.Band.valid() {
			return nil, fmt.Errorf("%w: unknown confidence band %q", domain.ErrConfiguration, k.Band)
		}
		if _, ok := playbooks[a]; !ok {
			return nil, fmt.Errorf("%w: unknown action %q for %s", domain.ErrConfiguration, a, k)
		}
	}
	if err := cfg.Table.checkTotal(); err != nil {
		return nil, err
	}

	cfg.Table = cfg.Table.clone()

	return &Engine{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	c := e.cfg
	c.Table = e.cfg.Table.clone()
	return c
}

// Classify exposes the configured thresholds.
func (e *Engine) Classify(score float64) ConfidenceBand {
	return e.cfg.Thresholds.Classify(score)
}

// Derive classifies the recommendation, looks up its action and returns the
// validated directive. A directive that fails validation is returned as a
// domain.ErrValidation error.
func (e *Engine) Derive(rec domain.Recommendation) (Directive, error) {
	top := rec.TopScore()

	band := e.cfg.Thresholds.Classify(top)
	if rec.Fallback {
		band = BandLow
	}

	key := DecisionKey{Band: band, Fallback: rec.Fallback}
	action, ok := e.cfg.Table[key]
	if !ok {
		return Directive{}, fmt.Errorf("%w: no action for %s", domain.ErrConfiguration, key)
	}
	pb := playbooks[action]

	source := rec.SourceItemID
	targets := make([]Target, 0, len(rec.Items))
	for _, it := range rec.Items {
		targets = append(targets, Target{
			ItemID:   it.ItemID,
			Score:    it.Score,
			Rank:     it.Rank,
			Priority: pb.priority,
			Plan:     pb.plan(source, it.ItemID, it.Score),
		})
	}

	d := Directive{
		id:             e.newID(),
		sourceItemID:   rec.SourceItemID,
		sourceUserID:   rec.SourceUserID,
		action:         action,
		band:           band,
		topScore:       top,
		fallback:       rec.Fallback,
		rationale:      rationale(rec, band, top),
		expectedImpact: pb.impact,
		targets:        targets,
		revision:       e.cfg.Revision,
		generatedAt:    e.now().UTC(),
	}

	if err := d.validate(e.cfg.Thresholds); err != nil {
		return Directive{}, fmt.Errorf("derive strategy: %w", err)
	}

	return d, nil
}

// Check re-validates a directive restored from outside the engine, e.g. a
// cache entry, against the current configuration.
func (e *Engine) Check(d Directive) error {
	if d.revision != e.cfg.Revision {
		return domain.NewValidationError("strategy_revision", "does not match the active configuration")
	}
	return d.validate(e.cfg.Thresholds)
}

func rationale(rec domain.Recommendation, band ConfidenceBand, top float64) string {
	if len(rec.Items) == 0 {
		return ""
	}

	subject := fmt.Sprintf("item %d", rec.SourceItemID)
	if rec.SourceItemID == 0 {
		subject = fmt.Sprintf("user %d", rec.SourceUserID)
	}

	if rec.Fallback {
		return fmt.Sprintf("No usable similarity signal for %s; %d items ranked by popularity, confidence %s.",
			subject, len(rec.Items), band)
	}

	return fmt.Sprintf("Top similarity %.2f%% for %s across %d co-raters places the recommendation in the %s confidence band.",
		top*100, subject, rec.Items[0].Support, band)
}
