// internal/store/store.go
package store

import (
	"context"

	"barternow-matcher/internal/models"
)

// Store is the persistence collaborator consumed by the matching engine.
// Lookups return (nil, nil) when the entity does not exist; an error means
// the store itself failed and the caller decides whether to skip or abort.
type Store interface {
	// Profiles, fully denormalized for scoring.
	BrandProfile(ctx context.Context, orgID int64) (*models.BrandProfile, error)
	EventProfile(ctx context.Context, orgID int64) (*models.EventProfile, error)

	// Batch enumeration, ascending org id. The ordering is load-bearing:
	// ranking ties keep enumeration order.
	ActiveBrandOrgIDs(ctx context.Context) ([]int64, error)
	ActiveEventOrgIDs(ctx context.Context) ([]int64, error)

	// Lightweight listings for the dropdown endpoints.
	BrandsList(ctx context.Context) ([]models.OrgSummary, error)
	EventsList(ctx context.Context) ([]models.OrgSummary, error)

	// Geography.
	CityGeography(ctx context.Context, cityID int64) (*models.CityGeography, error)
	CitiesInState(ctx context.Context, stateID int64) ([]int64, error)
	CitiesInCountry(ctx context.Context, countryID int64) ([]int64, error)

	// Match configuration; nil when the set is missing or inactive, which
	// the evaluator recovers with defaults.
	WeightSet(ctx context.Context, id int64) (*models.WeightSet, error)
	RuleSet(ctx context.Context, id int64) (*models.RuleSet, error)

	Ping(ctx context.Context) error
}
