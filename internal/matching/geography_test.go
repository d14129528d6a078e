// internal/matching/geography_test.go
package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/models"
)

func newResolver(t *testing.T, st *memStore) *GeographyResolver {
	t.Helper()
	return NewGeographyResolver(st, logger.NewTestLogger(t))
}

func TestGeographyLocalMatch(t *testing.T) {
	st := newMemStore()
	st.geos[5] = puneGeo()
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 5, localBrand())
	require.NoError(t, err)

	assert.True(t, match.Matches)
	assert.Equal(t, models.MatchLevelCity, match.MatchLevel)
	assert.Equal(t, "City match: Pune is in brand's target cities", match.Explanation)
}

func TestGeographyLocalNoMatch(t *testing.T) {
	st := newMemStore()
	st.geos[7] = &models.CityGeography{CityID: 7, CityName: "Mumbai", CityTier: 1}
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 7, localBrand())
	require.NoError(t, err)

	assert.False(t, match.Matches)
	assert.Empty(t, match.MatchLevel)
	assert.Equal(t, "City Mumbai not in brand's target cities", match.Explanation)
}

func TestGeographyStateMatch(t *testing.T) {
	st := newMemStore()
	st.geos[5] = puneGeo()
	brand := localBrand()
	brand.GeographicFocusType = models.FocusState
	brand.TargetStates = []models.StateRef{{StateID: 9, StateName: "Maharashtra"}}
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 5, brand)
	require.NoError(t, err)

	assert.True(t, match.Matches)
	assert.Equal(t, models.MatchLevelState, match.MatchLevel)
	assert.Equal(t, "State match: Maharashtra is in brand's target states", match.Explanation)
}

func TestGeographyStateFocusCityWithoutState(t *testing.T) {
	st := newMemStore()
	st.geos[12] = &models.CityGeography{CityID: 12, CityName: "Orphan City", CityTier: 3}
	brand := localBrand()
	brand.GeographicFocusType = models.FocusState
	brand.TargetStates = []models.StateRef{{StateID: 9, StateName: "Maharashtra"}}
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 12, brand)
	require.NoError(t, err)

	assert.False(t, match.Matches)
	assert.Equal(t, "State unknown not in brand's target states", match.Explanation)
}

func TestGeographyNationalMatch(t *testing.T) {
	st := newMemStore()
	st.geos[5] = puneGeo()
	brand := localBrand()
	brand.GeographicFocusType = models.FocusNational
	brand.TargetCountries = []models.CountryRef{{CountryID: 1, CountryName: "India"}}
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 5, brand)
	require.NoError(t, err)

	assert.True(t, match.Matches)
	assert.Equal(t, models.MatchLevelCountry, match.MatchLevel)
}

func TestGeographyUnknownCity(t *testing.T) {
	st := newMemStore()
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 999, localBrand())
	require.NoError(t, err)

	assert.False(t, match.Matches)
	assert.Equal(t, "Event city not found in geography database", match.Explanation)
}

func TestGeographyUnknownFocusType(t *testing.T) {
	st := newMemStore()
	st.geos[5] = puneGeo()
	brand := localBrand()
	brand.GeographicFocusType = "galactic"
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 5, brand)
	require.NoError(t, err)

	assert.False(t, match.Matches)
	assert.Equal(t, "Unknown geographic focus type: galactic", match.Explanation)
}

func TestGeographyEmptyFocusNeverMatches(t *testing.T) {
	st := newMemStore()
	st.geos[5] = puneGeo()
	brand := localBrand()
	brand.GeographicFocusType = ""
	r := newResolver(t, st)

	match, err := r.Match(context.Background(), 5, brand)
	require.NoError(t, err)

	assert.False(t, match.Matches)
	assert.Empty(t, match.MatchLevel)
	assert.Equal(t, "Unknown geographic focus type: ", match.Explanation)
}
