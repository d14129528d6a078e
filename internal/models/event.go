// internal/models/event.go
package models

import "time"

// EventDeliverable is one deliverable type the event can offer. MaxCount is
// inventory information only; scoring looks at presence, not count.
type EventDeliverable struct {
	DeliverableTypeID int64  `json:"deliverable_type_id"`
	DeliverableName   string `json:"deliverable_name"`
	MaxCount          int    `json:"max_count"`
}

// AgeDistribution is one age bucket share of the event audience. Percents are
// reported as-is and are not required to sum to 100.
type AgeDistribution struct {
	AgeBucketID int64   `json:"age_bucket_id"`
	BucketLabel string  `json:"bucket_label"`
	MinAge      int     `json:"min_age"`
	MaxAge      int     `json:"max_age"`
	Percent     float64 `json:"percent"`
}

// EventAudienceType carries a weight from the source data; the current
// audience scorer only uses presence.
type EventAudienceType struct {
	AudienceTypeID int64   `json:"audience_type_id"`
	TypeName       string  `json:"type_name"`
	Weight         float64 `json:"weight"`
}

// EventInterestTag carries a weight from the source data; the current
// audience scorer only uses presence.
type EventInterestTag struct {
	InterestTagID int64   `json:"interest_tag_id"`
	TagName       string  `json:"tag_name"`
	Weight        float64 `json:"weight"`
}

// EventProfile is the denormalized event profile scored against brands.
type EventProfile struct {
	EventProfileID int64  `json:"event_profile_id"`
	EventOrgID     int64  `json:"event_org_id"`
	EventName      string `json:"event_name"`
	EventOrgName   string `json:"event_org_name"`
	EventTypeName  string `json:"event_type_name,omitempty"`

	// CityID is the single location anchor; nil when the event has no city.
	CityID    *int64 `json:"city_id"`
	CityName  string `json:"city_name,omitempty"`
	VenueName string `json:"venue_name,omitempty"`

	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	ExpectedAudienceSize *int64     `json:"expected_audience_size"`

	// Sponsorship package budget range.
	PackageMin *float64 `json:"package_min"`
	PackageMax *float64 `json:"package_max"`

	Categories          []CategoryRef       `json:"categories"`
	DeliverablesOffered []EventDeliverable  `json:"deliverables_offered"`
	AgeDistribution     []AgeDistribution   `json:"age_distribution"`
	AudienceTypes       []EventAudienceType `json:"audience_types"`
	InterestTags        []EventInterestTag  `json:"interest_tags"`
}
