package strategy

import "fmt"

type ActionKind string

const (
	ActionHighValueBundle  ActionKind = "high_value_bundle"
	ActionCrossSell        ActionKind = "cross_sell"
	ActionInventoryMonitor ActionKind = "inventory_monitor"
	ActionPopularityPush   ActionKind = "popularity_push"
)

type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// playbook is the fixed business wording of an action kind.
type playbook struct {
	name     string
	priority Priority
	impact   string
	// plan renders the per-target action plan.
	plan func(source, target uint64, score float64) string
}

var playbooks = map[ActionKind]playbook{
	ActionHighValueBundle: {
		name:     "High-Value Bundle",
		priority: PriorityCritical,
		impact:   "Estimated 20% increase in average order value.",
		plan: func(source, target uint64, score float64) string {
			if source == 0 {
				return fmt.Sprintf("Offer item %d in a premium bundle; %.2f%% affinity with the customer's recent ratings signals a likely purchase.",
					target, score*100)
			}
			return fmt.Sprintf("Bundle item %d with item %d in premium packages; %.2f%% affinity signals a likely joint purchase.",
				target, source, score*100)
		},
	},
	ActionCrossSell: {
		name:     "Cross-Sell Campaign",
		priority: PriorityHigh,
		impact:   "Estimated 10% conversion lift on secondary products.",
		plan: func(source, target uint64, score float64) string {
			if source == 0 {
				return fmt.Sprintf("Promote item %d at checkout to this customer (%.2f%% affinity with recent ratings).",
					target, score*100)
			}
			return fmt.Sprintf("Promote item %d at checkout to customers who bought item %d (%.2f%% affinity).",
				target, source, score*100)
		},
	},
	ActionInventoryMonitor: {
		name:     "Inventory Awareness",
		priority: PriorityMedium,
		impact:   "Lower storage cost for slow-moving stock.",
		plan: func(source, target uint64, score float64) string {
			if source == 0 {
				return fmt.Sprintf("Monitor item %d stock and schedule a seasonal or volume discount; affinity with recent ratings is only %.2f%%.",
					target, score*100)
			}
			return fmt.Sprintf("Monitor item %d stock and schedule a seasonal or volume discount; affinity with item %d is only %.2f%%.",
				target, source, score*100)
		},
	},
	ActionPopularityPush: {
		name:     "Popularity Reactivation",
		priority: PriorityLow,
		impact:   "Collects first co-rating signal while keeping best sellers visible.",
		plan: func(source, target uint64, _ float64) string {
			if source == 0 {
				return fmt.Sprintf("Feature best seller item %d to gather first interactions.", target)
			}
			return fmt.Sprintf("Feature best seller item %d next to item %d to gather its first co-ratings.", target, source)
		},
	},
}

// Actions lists the supported action kinds.
func Actions() []ActionKind {
	return []ActionKind{ActionHighValueBundle, ActionCrossSell, ActionInventoryMonitor, ActionPopularityPush}
}
