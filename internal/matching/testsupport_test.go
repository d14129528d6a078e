// internal/matching/testsupport_test.go
package matching

import (
	"context"
	"fmt"

	"barternow-matcher/internal/models"
)

// memStore is an in-memory Store used across the matching tests.
type memStore struct {
	brands     map[int64]*models.BrandProfile
	events     map[int64]*models.EventProfile
	geos       map[int64]*models.CityGeography
	weightSets map[int64]*models.WeightSet
	ruleSets   map[int64]*models.RuleSet

	brandOrgIDs []int64
	eventOrgIDs []int64

	// failEventProfiles simulates per-row store failures.
	failEventProfiles map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		brands:            map[int64]*models.BrandProfile{},
		events:            map[int64]*models.EventProfile{},
		geos:              map[int64]*models.CityGeography{},
		weightSets:        map[int64]*models.WeightSet{},
		ruleSets:          map[int64]*models.RuleSet{},
		failEventProfiles: map[int64]bool{},
	}
}

func (m *memStore) BrandProfile(ctx context.Context, orgID int64) (*models.BrandProfile, error) {
	return m.brands[orgID], nil
}

func (m *memStore) EventProfile(ctx context.Context, orgID int64) (*models.EventProfile, error) {
	if m.failEventProfiles[orgID] {
		return nil, fmt.Errorf("event profile %d unavailable", orgID)
	}
	return m.events[orgID], nil
}

func (m *memStore) ActiveBrandOrgIDs(ctx context.Context) ([]int64, error) {
	return m.brandOrgIDs, nil
}

func (m *memStore) ActiveEventOrgIDs(ctx context.Context) ([]int64, error) {
	return m.eventOrgIDs, nil
}

func (m *memStore) BrandsList(ctx context.Context) ([]models.OrgSummary, error) {
	return nil, nil
}

func (m *memStore) EventsList(ctx context.Context) ([]models.OrgSummary, error) {
	return nil, nil
}

func (m *memStore) CityGeography(ctx context.Context, cityID int64) (*models.CityGeography, error) {
	return m.geos[cityID], nil
}

func (m *memStore) CitiesInState(ctx context.Context, stateID int64) ([]int64, error) {
	return nil, nil
}

func (m *memStore) CitiesInCountry(ctx context.Context, countryID int64) ([]int64, error) {
	return nil, nil
}

func (m *memStore) WeightSet(ctx context.Context, id int64) (*models.WeightSet, error) {
	return m.weightSets[id], nil
}

func (m *memStore) RuleSet(ctx context.Context, id int64) (*models.RuleSet, error) {
	return m.ruleSets[id], nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(s string) *string       { return &s }

// puneGeo is city 5 in state 9 (Maharashtra) in country 1 (India).
func puneGeo() *models.CityGeography {
	return &models.CityGeography{
		CityID:      5,
		CityName:    "Pune",
		CityTier:    2,
		StateID:     int64Ptr(9),
		StateName:   strPtr("Maharashtra"),
		CountryID:   int64Ptr(1),
		CountryName: strPtr("India"),
	}
}

func localBrand() *models.BrandProfile {
	return &models.BrandProfile{
		BrandProfileID:      1,
		BrandOrgID:          101,
		BrandName:           "Acme Beverages",
		GeographicFocusType: models.FocusLocal,
		SpendPerEventMin:    float64Ptr(50000),
		SpendPerEventMax:    float64Ptr(200000),
		TargetCities: []models.CityRef{
			{CityID: 5, CityName: "Pune"},
			{CityID: 9, CityName: "Nagpur"},
		},
		PreferredCategories: []models.CategoryRef{{CategoryID: 3, CategoryName: "Music"}},
		WantedDeliverables: []models.DeliverableRef{
			{DeliverableTypeID: 1, DeliverableName: "Logo on banner"},
			{DeliverableTypeID: 3, DeliverableName: "Sampling booth"},
		},
		TargetAgeBuckets:    []models.AgeBucketRef{{AgeBucketID: 2, BucketLabel: "18-24", MinAge: 18, MaxAge: 24}},
		TargetAudienceTypes: []models.AudienceTypeRef{{AudienceTypeID: 1, TypeName: "Students"}},
	}
}

func musicEvent() *models.EventProfile {
	return &models.EventProfile{
		EventProfileID: 1,
		EventOrgID:     201,
		EventName:      "Sunburn Arena",
		CityID:         int64Ptr(5),
		PackageMin:     float64Ptr(100000),
		PackageMax:     float64Ptr(500000),
		Categories:     []models.CategoryRef{{CategoryID: 3, CategoryName: "Music"}},
		DeliverablesOffered: []models.EventDeliverable{
			{DeliverableTypeID: 1, DeliverableName: "Logo on banner", MaxCount: 4},
			{DeliverableTypeID: 2, DeliverableName: "Stage mention", MaxCount: 2},
		},
		AgeDistribution: []models.AgeDistribution{{AgeBucketID: 2, BucketLabel: "18-24", MinAge: 18, MaxAge: 24, Percent: 60}},
		AudienceTypes:   []models.EventAudienceType{{AudienceTypeID: 1, TypeName: "Students", Weight: 0.7}},
	}
}
