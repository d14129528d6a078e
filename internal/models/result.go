// internal/models/result.go
package models

// Criterion names used as breakdown keys and explanation prefixes.
const (
	CriterionGeography    = "geography"
	CriterionBudget       = "budget"
	CriterionCategories   = "categories"
	CriterionAudience     = "audience"
	CriterionDeliverables = "deliverables"
)

// CriterionScore is the result of one scorer for one pair.
//
// PassedHardFilter is set only by criteria that can act as hard filters
// (geography, deliverables). HardRejection is an explicit signal that the
// criterion demands outright rejection regardless of rule switches (an
// avoided-category hit); callers must use it instead of inspecting the
// explanation text.
type CriterionScore struct {
	Weight           float64 `json:"weight"`
	MatchFactor      float64 `json:"match_factor"`
	Contribution     float64 `json:"contribution"`
	Explanation      string  `json:"explanation"`
	PassedHardFilter *bool   `json:"passed_hard_filter,omitempty"`
	MatchLevel       string  `json:"match_level,omitempty"`
	HardRejection    bool    `json:"is_hard_rejection,omitempty"`
}

// MatchResult is one scored counterpart in a batch. It is a transient value:
// built per evaluation, never mutated, never persisted.
type MatchResult struct {
	OrgID           int64                     `json:"org_id"`
	Name            string                    `json:"name"`
	TotalScore      float64                   `json:"total_score"`
	MaxScore        float64                   `json:"max_score"`
	MatchPercentage float64                   `json:"match_percentage"`
	Breakdown       map[string]CriterionScore `json:"breakdown"`
	Explanation     string                    `json:"explanation"`
}

// BrandMatches is the brand-side batch result: events ranked for one brand.
type BrandMatches struct {
	BrandOrgID int64         `json:"brand_org_id"`
	BrandName  string        `json:"brand_name"`
	Matches    []MatchResult `json:"matches"`
}

// EventMatches is the event-side batch result: brands ranked for one event.
type EventMatches struct {
	EventOrgID int64         `json:"event_org_id"`
	EventName  string        `json:"event_name"`
	Matches    []MatchResult `json:"matches"`
}

// OrgSummary is the lightweight listing row used by the dropdown endpoints.
type OrgSummary struct {
	OrgID   int64  `json:"id"`
	OrgName string `json:"name"`
	Status  string `json:"status"`
}
