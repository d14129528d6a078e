// internal/models/brand.go
package models

// Reference rows joined in from the config schema. Each carries the id used
// for set intersection plus the display name used in explanations.

type CityRef struct {
	CityID   int64  `json:"city_id"`
	CityName string `json:"city_name"`
}

type StateRef struct {
	StateID   int64  `json:"state_id"`
	StateName string `json:"state_name"`
}

type CountryRef struct {
	CountryID   int64  `json:"country_id"`
	CountryName string `json:"country_name"`
}

type CategoryRef struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type DeliverableRef struct {
	DeliverableTypeID int64  `json:"deliverable_type_id"`
	DeliverableName   string `json:"deliverable_name"`
}

type AgeBucketRef struct {
	AgeBucketID int64  `json:"age_bucket_id"`
	BucketLabel string `json:"bucket_label"`
	MinAge      int    `json:"min_age"`
	MaxAge      int    `json:"max_age"`
}

type AudienceTypeRef struct {
	AudienceTypeID int64  `json:"audience_type_id"`
	TypeName       string `json:"type_name"`
}

type InterestTagRef struct {
	InterestTagID int64  `json:"interest_tag_id"`
	TagName       string `json:"tag_name"`
}

// BrandProfile is the denormalized sponsor profile the matching engine scores
// events against. Inactive target rows are excluded at load time, so every
// slice here is already the active set.
type BrandProfile struct {
	BrandProfileID   int64  `json:"brand_profile_id"`
	BrandOrgID       int64  `json:"brand_org_id"`
	BrandName        string `json:"brand_name"`
	ObjectivePrimary string `json:"objective_primary"`

	SpendPerEventMin *float64 `json:"spend_per_event_min"`
	SpendPerEventMax *float64 `json:"spend_per_event_max"`

	// GeographicFocusType is one of the Focus* constants; anything else
	// never matches.
	GeographicFocusType string       `json:"geographic_focus_type"`
	TargetCities        []CityRef    `json:"target_cities"`
	TargetStates        []StateRef   `json:"target_states"`
	TargetCountries     []CountryRef `json:"target_countries"`

	PreferredCategories []CategoryRef `json:"preferred_categories"`
	AvoidedCategories   []CategoryRef `json:"avoided_categories"`

	WantedDeliverables   []DeliverableRef `json:"wanted_deliverables"`
	MustHaveDeliverables []DeliverableRef `json:"must_have_deliverables"`

	TargetAgeBuckets    []AgeBucketRef    `json:"target_age_buckets"`
	TargetAudienceTypes []AudienceTypeRef `json:"target_audience_types"`
	TargetInterestTags  []InterestTagRef  `json:"target_interest_tags"`

	DefaultWeightSetID *int64 `json:"default_match_weight_set_id"`
	DefaultRuleSetID   *int64 `json:"default_match_rule_set_id"`
}
