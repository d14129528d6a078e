// internal/api/handlers_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/matching"
	"barternow-matcher/internal/models"
)

type fixtureStore struct {
	brands map[int64]*models.BrandProfile
	events map[int64]*models.EventProfile
	geos   map[int64]*models.CityGeography

	brandOrgIDs []int64
	eventOrgIDs []int64

	pingErr error
}

func (f *fixtureStore) BrandProfile(ctx context.Context, orgID int64) (*models.BrandProfile, error) {
	return f.brands[orgID], nil
}

func (f *fixtureStore) EventProfile(ctx context.Context, orgID int64) (*models.EventProfile, error) {
	return f.events[orgID], nil
}

func (f *fixtureStore) ActiveBrandOrgIDs(ctx context.Context) ([]int64, error) {
	return f.brandOrgIDs, nil
}

func (f *fixtureStore) ActiveEventOrgIDs(ctx context.Context) ([]int64, error) {
	return f.eventOrgIDs, nil
}

func (f *fixtureStore) BrandsList(ctx context.Context) ([]models.OrgSummary, error) {
	var out []models.OrgSummary
	for _, id := range f.brandOrgIDs {
		out = append(out, models.OrgSummary{OrgID: id, OrgName: f.brands[id].BrandName, Status: "active"})
	}
	return out, nil
}

func (f *fixtureStore) EventsList(ctx context.Context) ([]models.OrgSummary, error) {
	var out []models.OrgSummary
	for _, id := range f.eventOrgIDs {
		out = append(out, models.OrgSummary{OrgID: id, OrgName: f.events[id].EventName, Status: "active"})
	}
	return out, nil
}

func (f *fixtureStore) CityGeography(ctx context.Context, cityID int64) (*models.CityGeography, error) {
	return f.geos[cityID], nil
}

func (f *fixtureStore) CitiesInState(ctx context.Context, stateID int64) ([]int64, error) {
	var ids []int64
	for id, geo := range f.geos {
		if geo.StateID != nil && *geo.StateID == stateID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fixtureStore) CitiesInCountry(ctx context.Context, countryID int64) ([]int64, error) {
	return nil, nil
}

func (f *fixtureStore) WeightSet(ctx context.Context, id int64) (*models.WeightSet, error) {
	return nil, nil
}

func (f *fixtureStore) RuleSet(ctx context.Context, id int64) (*models.RuleSet, error) {
	return nil, nil
}

func (f *fixtureStore) Ping(ctx context.Context) error { return f.pingErr }

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(s string) *string       { return &s }

func newFixtureStore() *fixtureStore {
	return &fixtureStore{
		brands: map[int64]*models.BrandProfile{
			101: {
				BrandProfileID:      1,
				BrandOrgID:          101,
				BrandName:           "Acme Beverages",
				GeographicFocusType: models.FocusLocal,
				SpendPerEventMin:    float64Ptr(50000),
				SpendPerEventMax:    float64Ptr(200000),
				TargetCities:        []models.CityRef{{CityID: 5, CityName: "Pune"}},
				PreferredCategories: []models.CategoryRef{{CategoryID: 3, CategoryName: "Music"}},
			},
		},
		events: map[int64]*models.EventProfile{
			201: {
				EventProfileID: 1,
				EventOrgID:     201,
				EventName:      "Sunburn Arena",
				CityID:         int64Ptr(5),
				PackageMin:     float64Ptr(100000),
				PackageMax:     float64Ptr(500000),
				Categories:     []models.CategoryRef{{CategoryID: 3, CategoryName: "Music"}},
				DeliverablesOffered: []models.EventDeliverable{
					{DeliverableTypeID: 1, DeliverableName: "Logo on banner", MaxCount: 4},
				},
			},
		},
		geos: map[int64]*models.CityGeography{
			5: {
				CityID:      5,
				CityName:    "Pune",
				CityTier:    2,
				StateID:     int64Ptr(9),
				StateName:   strPtr("Maharashtra"),
				CountryID:   int64Ptr(1),
				CountryName: strPtr("India"),
			},
		},
		brandOrgIDs: []int64{101},
		eventOrgIDs: []int64{201},
	}
}

func newTestRouter(t *testing.T, st *fixtureStore) http.Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	geo := matching.NewGeographyResolver(st, log)
	ev := matching.NewEvaluator(st, geo, log)
	m := matching.NewMatcher(st, ev, nil, log, 2)
	return NewRouter(NewHandler(st, m, ev, geo, log), log)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthOK(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthDatabaseDown(t *testing.T) {
	st := newFixtureStore()
	st.pingErr = fmt.Errorf("connection refused")
	rec := doRequest(t, newTestRouter(t, st), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBrandsListShape(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodGet, "/api/brands", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sponsors []models.OrgSummary `json:"sponsors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Sponsors, 1)
	assert.Equal(t, "Acme Beverages", body.Sponsors[0].OrgName)
}

type eventMatchItemBody struct {
	EventOrgID      int64                            `json:"event_org_id"`
	EventName       string                           `json:"event_name"`
	MatchPercentage float64                          `json:"match_percentage"`
	Breakdown       map[string]models.CriterionScore `json:"breakdown"`
}

type brandMatchItemBody struct {
	BrandOrgID      int64                            `json:"brand_org_id"`
	BrandName       string                           `json:"brand_name"`
	MatchPercentage float64                          `json:"match_percentage"`
	Breakdown       map[string]models.CriterionScore `json:"breakdown"`
}

func TestBrandMatchesEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodGet, "/api/v1/brands/101/matches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		BrandOrgID  int64                `json:"brand_org_id"`
		BrandName   string               `json:"brand_name"`
		SponsorName string               `json:"sponsor_name"`
		Matches     []eventMatchItemBody `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(101), body.BrandOrgID)
	assert.Equal(t, "Acme Beverages", body.SponsorName)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, int64(201), body.Matches[0].EventOrgID)
	assert.Equal(t, "Sunburn Arena", body.Matches[0].EventName)
	assert.Len(t, body.Matches[0].Breakdown, 5)
}

func TestBrandMatchesUnknownBrand(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodGet, "/api/v1/brands/999/matches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		BrandName string               `json:"brand_name"`
		Matches   []eventMatchItemBody `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unknown", body.BrandName)
	assert.Empty(t, body.Matches)
}

func TestEventMatchesEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodGet, "/api/v1/events/201/matches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		EventOrgID int64                `json:"event_org_id"`
		EventName  string               `json:"event_name"`
		Matches    []brandMatchItemBody `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sunburn Arena", body.EventName)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, int64(101), body.Matches[0].BrandOrgID)
	assert.Equal(t, "Acme Beverages", body.Matches[0].BrandName)
	assert.Len(t, body.Matches[0].Breakdown, 3)
}

func TestCityGeographyEndpoint(t *testing.T) {
	router := newTestRouter(t, newFixtureStore())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/geo/cities/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var geo models.CityGeography
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &geo))
	assert.Equal(t, "Pune", geo.CityName)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/geo/cities/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCitiesInStateEndpoint(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodGet, "/api/v1/geo/states/9/cities", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		StateID int64   `json:"state_id"`
		CityIDs []int64 `json:"city_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(9), body.StateID)
	assert.Equal(t, []int64{5}, body.CityIDs)
}

func TestMatchPreviewValid(t *testing.T) {
	payload := `{
		"brand": {
			"brand_org_id": 101,
			"brand_name": "Acme Beverages",
			"geographic_focus_type": "local",
			"spend_per_event_min": 50000,
			"spend_per_event_max": 200000,
			"target_cities": [{"city_id": 5, "city_name": "Pune"}],
			"preferred_categories": [{"category_id": 3, "category_name": "Music"}]
		},
		"event": {
			"event_org_id": 201,
			"event_name": "Sunburn Arena",
			"city_id": 5,
			"package_min": 100000,
			"package_max": 500000,
			"categories": [{"category_id": 3, "category_name": "Music"}],
			"deliverables_offered": [{"deliverable_type_id": 1, "deliverable_name": "Logo on banner"}]
		}
	}`
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodPost, "/api/v1/match/preview", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rejected bool                `json:"rejected"`
		Result   *eventMatchItemBody `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Rejected)
	require.NotNil(t, body.Result)
	assert.Equal(t, int64(201), body.Result.EventOrgID)
	assert.Len(t, body.Result.Breakdown, 5)
}

func TestMatchPreviewAvoidedCategoryRejected(t *testing.T) {
	payload := `{
		"brand": {
			"brand_org_id": 101,
			"brand_name": "NoFun Corp",
			"avoided_categories": [{"category_id": 3, "category_name": "Music"}]
		},
		"event": {
			"event_org_id": 201,
			"event_name": "Sunburn Arena",
			"categories": [{"category_id": 3, "category_name": "Music"}]
		}
	}`
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodPost, "/api/v1/match/preview", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rejected bool                `json:"rejected"`
		Result   *eventMatchItemBody `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Rejected)
	assert.Nil(t, body.Result)
}

func TestMatchPreviewSchemaRejection(t *testing.T) {
	payload := `{"brand": {"brand_org_id": 101, "brand_name": "Acme"}}`
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodPost, "/api/v1/match/preview", payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestMatchPreviewMalformedJSON(t *testing.T) {
	rec := doRequest(t, newTestRouter(t, newFixtureStore()), http.MethodPost, "/api/v1/match/preview", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
