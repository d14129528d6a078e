// internal/matching/geography.go
package matching

import (
	"context"
	"fmt"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/models"
	"barternow-matcher/internal/store"
)

// GeographyResolver checks an event's city against a brand's geographic
// targets. Matching is hierarchical and id-based: no coordinates, no distance
// math, so every verdict is reproducible from reference data alone.
type GeographyResolver struct {
	store  store.Store
	logger logger.Logger
}

func NewGeographyResolver(st store.Store, log logger.Logger) *GeographyResolver {
	return &GeographyResolver{
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "geography-resolver"}),
	}
}

// Resolve returns the full city hierarchy, or nil when the city is unknown.
func (g *GeographyResolver) Resolve(ctx context.Context, cityID int64) (*models.CityGeography, error) {
	return g.store.CityGeography(ctx, cityID)
}

// Match evaluates the brand's focus type against the event city's hierarchy.
// local matches on city id, state on state id, national on country id. A
// missing hierarchy level (city with no state, state with no country) can
// never match at that level. An error is returned only for store failures;
// an unknown city or focus type is a non-match with an explanation. An empty
// focus type (NULL column) is treated as unknown, not as local.
func (g *GeographyResolver) Match(ctx context.Context, eventCityID int64, brand *models.BrandProfile) (models.GeoMatch, error) {
	focusType := brand.GeographicFocusType

	geo, err := g.store.CityGeography(ctx, eventCityID)
	if err != nil {
		return models.GeoMatch{}, err
	}
	if geo == nil {
		return models.GeoMatch{
			Matches:     false,
			Explanation: "Event city not found in geography database",
		}, nil
	}

	switch focusType {
	case models.FocusLocal:
		for _, c := range brand.TargetCities {
			if c.CityID == eventCityID {
				return models.GeoMatch{
					Matches:     true,
					MatchLevel:  models.MatchLevelCity,
					Explanation: fmt.Sprintf("City match: %s is in brand's target cities", geo.CityName),
				}, nil
			}
		}
		return models.GeoMatch{
			Matches:     false,
			Explanation: fmt.Sprintf("City %s not in brand's target cities", geo.CityName),
		}, nil

	case models.FocusState:
		if geo.StateID != nil {
			for _, s := range brand.TargetStates {
				if s.StateID == *geo.StateID {
					return models.GeoMatch{
						Matches:     true,
						MatchLevel:  models.MatchLevelState,
						Explanation: fmt.Sprintf("State match: %s is in brand's target states", derefOr(geo.StateName, "unknown")),
					}, nil
				}
			}
		}
		return models.GeoMatch{
			Matches:     false,
			Explanation: fmt.Sprintf("State %s not in brand's target states", derefOr(geo.StateName, "unknown")),
		}, nil

	case models.FocusNational:
		if geo.CountryID != nil {
			for _, c := range brand.TargetCountries {
				if c.CountryID == *geo.CountryID {
					return models.GeoMatch{
						Matches:     true,
						MatchLevel:  models.MatchLevelCountry,
						Explanation: fmt.Sprintf("Country match: %s is in brand's target countries", derefOr(geo.CountryName, "unknown")),
					}, nil
				}
			}
		}
		return models.GeoMatch{
			Matches:     false,
			Explanation: fmt.Sprintf("Country %s not in brand's target countries", derefOr(geo.CountryName, "unknown")),
		}, nil
	}

	g.logger.Warn("unknown geographic focus type", map[string]interface{}{
		"focus_type":   focusType,
		"brand_org_id": brand.BrandOrgID,
	})
	return models.GeoMatch{
		Matches:     false,
		Explanation: fmt.Sprintf("Unknown geographic focus type: %s", focusType),
	}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
