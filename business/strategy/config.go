package strategy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"recoInsight/domain"
)

type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

func (b ConfidenceBand) valid() bool {
	switch b {
	case BandHigh, BandMedium, BandLow:
		return true
	}
	return false
}

const (
	defaultHighThreshold   = 0.8
	defaultMediumThreshold = 0.5
)

// Thresholds are the lower bounds of the high and medium bands. Anything
// below Medium is low.
type Thresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

func (t Thresholds) validate() error {
	if !(t.Medium > 0 && t.Medium < t.High && t.High <= 1) {
		return fmt.Errorf("%w: thresholds must satisfy 0 < medium (%v) < high (%v) <= 1",
			domain.ErrConfiguration, t.Medium, t.High)
	}
	return nil
}

// Classify maps a similarity score into its band.
func (t Thresholds) Classify(score float64) ConfidenceBand {
	switch {
	case score >= t.High:
		return BandHigh
	case score >= t.Medium:
		return BandMedium
	default:
		return BandLow
	}
}

// DecisionKey is one cell of the decision table.
type DecisionKey struct {
	Band     ConfidenceBand
	Fallback bool
}

func (k DecisionKey) String() string {
	return string(k.Band) + ":" + strconv.FormatBool(k.Fallback)
}

// ReachableKeys lists every (band, fallback) pair the recommender can
// produce. A fallback recommendation is always classified low.
func ReachableKeys() []DecisionKey {
	return []DecisionKey{
		{Band: BandHigh, Fallback: false},
		{Band: BandMedium, Fallback: false},
		{Band: BandLow, Fallback: false},
		{Band: BandLow, Fallback: true},
	}
}

// DecisionTable maps decision keys to action kinds.
type DecisionTable map[DecisionKey]ActionKind

func parseKey(raw string) (DecisionKey, error) {
	band, flag, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return DecisionKey{}, fmt.Errorf("%w: decision key %q is not band:fallback", domain.ErrConfiguration, raw)
	}
	b := ConfidenceBand(strings.ToLower(strings.TrimSpace(band)))
	if !b.valid() {
		return DecisionKey{}, fmt.Errorf("%w: unknown confidence band %q", domain.ErrConfiguration, band)
	}
	fb, err := strconv.ParseBool(strings.TrimSpace(flag))
	if err != nil {
		return DecisionKey{}, fmt.Errorf("%w: fallback flag %q: %v", domain.ErrConfiguration, flag, err)
	}
	return DecisionKey{Band: b, Fallback: fb}, nil
}

func (t DecisionTable) put(key DecisionKey, action string) error {
	a := ActionKind(strings.TrimSpace(action))
	if _, ok := playbooks[a]; !ok {
		return fmt.Errorf("%w: unknown action %q for %s", domain.ErrConfiguration, action, key)
	}
	if prev, dup := t[key]; dup && prev != a {
		return fmt.Errorf("%w: %s mapped to both %s and %s", domain.ErrConfiguration, key, prev, a)
	}
	t[key] = a
	return nil
}

// ParseDecisionTable reads "band:fallback=action" entries separated by commas.
func ParseDecisionTable(raw string) (DecisionTable, error) {
	table := make(DecisionTable)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, action, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: decision entry %q has no action", domain.ErrConfiguration, part)
		}
		key, err := parseKey(k)
		if err != nil {
			return nil, err
		}
		if err := table.put(key, action); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// DecisionTableFromMap reads the JSON form {"high:false": "cross_sell", ...}.
func DecisionTableFromMap(m map[string]any) (DecisionTable, error) {
	table := make(DecisionTable, len(m))
	for k, v := range m {
		action, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: action for %q must be a string", domain.ErrConfiguration, k)
		}
		key, err := parseKey(k)
		if err != nil {
			return nil, err
		}
		if err := table.put(key, action); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// ToMap is the inverse of DecisionTableFromMap.
func (t DecisionTable) ToMap() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k.String()] = string(v)
	}
	return out
}

// String renders the table in the ParseDecisionTable format, keys sorted.
func (t DecisionTable) String() string {
	parts := make([]string, 0, len(t))
	for k, v := range t {
		parts = append(parts, k.String()+"="+string(v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (t DecisionTable) clone() DecisionTable {
	out := make(DecisionTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// checkTotal fails when a reachable key has no action.
func (t DecisionTable) checkTotal() error {
	var missing []string
	for _, k := range ReachableKeys() {
		if _, ok := t[k]; !ok {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: decision table has no action for %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// Config is everything NewEngine needs.
type Config struct {
	Thresholds Thresholds
	Table      DecisionTable
	// Revision identifies the config in cache keys and directives.
	Revision uint64
}

func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{High: defaultHighThreshold, Medium: defaultMediumThreshold},
		Table: DecisionTable{
			{Band: BandHigh, Fallback: false}:  ActionHighValueBundle,
			{Band: BandMedium, Fallback: false}: ActionCrossSell,
			{Band: BandLow, Fallback: false}:    ActionInventoryMonitor,
			{Band: BandLow, Fallback: true}:     ActionPopularityPush,
		},
		Revision: 1,
	}
}

// FromRecord converts the persisted form.
func FromRecord(rec domain.StrategyConfig) (Config, error) {
	table, err := DecisionTableFromMap(rec.DecisionTable)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Thresholds: Thresholds{High: rec.HighThreshold, Medium: rec.MediumThreshold},
		Table:      table,
		Revision:   rec.Revision,
	}, nil
}

// Record converts to the persisted form.
func (c Config) Record(name string) domain.StrategyConfig {
	return domain.StrategyConfig{
		Name:            name,
		HighThreshold:   c.Thresholds.High,
		MediumThreshold: c.Thresholds.Medium,
		DecisionTable:   c.Table.ToMap(),
		Revision:        c.Revision,
	}
}
