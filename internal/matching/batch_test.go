// internal/matching/batch_test.go
package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/models"
)

func newBatchMatcher(t *testing.T, st *memStore) *Matcher {
	t.Helper()
	log := logger.NewTestLogger(t)
	ev := NewEvaluator(st, NewGeographyResolver(st, log), log)
	return NewMatcher(st, ev, nil, log, 4)
}

func TestMatchesForBrandUnknownBrand(t *testing.T) {
	st := newMemStore()
	m := newBatchMatcher(t, st)

	out, err := m.MatchesForBrand(context.Background(), 999)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, int64(999), out.BrandOrgID)
	assert.Equal(t, "Unknown", out.BrandName)
	assert.NotNil(t, out.Matches)
	assert.Empty(t, out.Matches)
}

func TestMatchesForEventUnknownEvent(t *testing.T) {
	st := newMemStore()
	m := newBatchMatcher(t, st)

	out, err := m.MatchesForEvent(context.Background(), 999)
	require.NoError(t, err)

	assert.Equal(t, "Unknown", out.EventName)
	assert.Empty(t, out.Matches)
}

func TestMatchesForBrandRankedDescending(t *testing.T) {
	st := newMemStore()
	seedPair(st)

	// A second event with a neutral category scores lower.
	neutral := musicEvent()
	neutral.EventOrgID = 202
	neutral.EventName = "Tech Expo"
	neutral.Categories = []models.CategoryRef{{CategoryID: 4, CategoryName: "Technology"}}
	st.events[202] = neutral
	st.eventOrgIDs = []int64{201, 202}

	m := newBatchMatcher(t, st)
	out, err := m.MatchesForBrand(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, out.Matches, 2)

	assert.Equal(t, "Acme Beverages", out.BrandName)
	assert.Equal(t, int64(201), out.Matches[0].OrgID)
	assert.Equal(t, int64(202), out.Matches[1].OrgID)
	assert.Greater(t, out.Matches[0].MatchPercentage, out.Matches[1].MatchPercentage)
}

func TestMatchesForBrandTiesKeepAscendingOrgID(t *testing.T) {
	st := newMemStore()
	seedPair(st)

	clone := musicEvent()
	clone.EventOrgID = 205
	clone.EventName = "Sunburn Arena II"
	st.events[205] = clone

	twin := musicEvent()
	twin.EventOrgID = 203
	twin.EventName = "Sunburn Arena III"
	st.events[203] = twin

	st.eventOrgIDs = []int64{201, 203, 205}

	m := newBatchMatcher(t, st)
	out, err := m.MatchesForBrand(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, out.Matches, 3)

	assert.Equal(t, int64(201), out.Matches[0].OrgID)
	assert.Equal(t, int64(203), out.Matches[1].OrgID)
	assert.Equal(t, int64(205), out.Matches[2].OrgID)
}

func TestMatchesForBrandSkipsFailedPairs(t *testing.T) {
	st := newMemStore()
	seedPair(st)

	other := musicEvent()
	other.EventOrgID = 202
	other.EventName = "Tech Expo"
	st.events[202] = other
	st.eventOrgIDs = []int64{201, 202}
	st.failEventProfiles[202] = true

	m := newBatchMatcher(t, st)
	out, err := m.MatchesForBrand(context.Background(), 101)
	require.NoError(t, err, "a failing pair must not fail the batch")
	require.Len(t, out.Matches, 1)
	assert.Equal(t, int64(201), out.Matches[0].OrgID)
}

func TestMatchesForBrandRejectedPairsExcluded(t *testing.T) {
	st := newMemStore()
	seedPair(st)
	st.brands[101].AvoidedCategories = []models.CategoryRef{{CategoryID: 3, CategoryName: "Music"}}
	st.eventOrgIDs = []int64{201}

	m := newBatchMatcher(t, st)
	out, err := m.MatchesForBrand(context.Background(), 101)
	require.NoError(t, err)
	assert.Empty(t, out.Matches)
}

func TestMatchesForEventRanksBrands(t *testing.T) {
	st := newMemStore()
	seedPair(st)

	// A second brand that avoids the event's category never appears.
	avoider := localBrand()
	avoider.BrandOrgID = 102
	avoider.BrandName = "NoFun Corp"
	avoider.AvoidedCategories = []models.CategoryRef{{CategoryID: 3, CategoryName: "Music"}}
	st.brands[102] = avoider
	st.brandOrgIDs = []int64{101, 102}

	m := newBatchMatcher(t, st)
	out, err := m.MatchesForEvent(context.Background(), 201)
	require.NoError(t, err)

	assert.Equal(t, "Sunburn Arena", out.EventName)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, int64(101), out.Matches[0].OrgID)
	assert.Equal(t, "Acme Beverages", out.Matches[0].Name)
	assert.Len(t, out.Matches[0].Breakdown, 3)
}

func TestMatcherSingleWorkerStillCompletes(t *testing.T) {
	st := newMemStore()
	seedPair(st)
	st.eventOrgIDs = []int64{201}

	log := logger.NewTestLogger(t)
	ev := NewEvaluator(st, NewGeographyResolver(st, log), log)
	m := NewMatcher(st, ev, nil, log, 0) // clamped to 1

	out, err := m.MatchesForBrand(context.Background(), 101)
	require.NoError(t, err)
	assert.Len(t, out.Matches, 1)
}
