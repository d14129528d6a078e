// internal/models/matchconfig.go
package models

// WeightSet holds the five scoring weights. Fixed shape on purpose: the
// weights are a closed set and a typed struct guarantees every criterion has
// one, unlike the open dictionaries the config tables could otherwise feed.
// Weights need not sum to any fixed total; max_score is derived per
// evaluation from the weights actually applied.
type WeightSet struct {
	Category     float64 `json:"category"`
	Geo          float64 `json:"geo"`
	Budget       float64 `json:"budget"`
	Audience     float64 `json:"audience"`
	Deliverables float64 `json:"deliverables"`
}

// RuleSet holds hard-filter switches and scoring thresholds.
//
// EnforceDateWindow, EnforceBudgetOverlap, MinBudgetOverlapRatio,
// AllowedDateSlackDays, MinAudienceOverlapScore and FootfallPartialMatchRatio
// are loaded and round-tripped but not consumed by the current evaluator;
// they are configuration surface reserved for rule tuning.
type RuleSet struct {
	EnforceMustHaveDeliverables bool `json:"enforce_must_have_deliverables"`
	EnforceCityFilter           bool `json:"enforce_city_filter"`
	EnforceDateWindow           bool `json:"enforce_date_window"`
	EnforceBudgetOverlap        bool `json:"enforce_budget_overlap"`

	MinBudgetOverlapRatio     float64 `json:"min_budget_overlap_ratio"`
	AllowedDateSlackDays      float64 `json:"allowed_date_slack_days"`
	MinAudienceOverlapScore   float64 `json:"min_audience_overlap_score"`
	BudgetNearBoundaryRatio   float64 `json:"budget_near_boundary_ratio"`
	FootfallPartialMatchRatio float64 `json:"footfall_partial_match_ratio"`
}

// DefaultWeightSet is the single source of truth for fallback weights, used
// by every evaluation path when a brand's referenced weight set is missing or
// inactive.
func DefaultWeightSet() WeightSet {
	return WeightSet{
		Category:     0.25,
		Geo:          0.20,
		Budget:       0.20,
		Audience:     0.20,
		Deliverables: 0.15,
	}
}

// DefaultRuleSet is the fallback rule configuration: no hard filters
// enforced, near-boundary budget credit within 10% of the larger range.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		MinBudgetOverlapRatio:     1.0,
		MinAudienceOverlapScore:   1.0,
		BudgetNearBoundaryRatio:   0.1,
		FootfallPartialMatchRatio: 0.8,
	}
}
