// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "barternow-matcher/internal/common/errors"
	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/matching"
	"barternow-matcher/internal/models"
	"barternow-matcher/internal/store"
)

// Handler carries the collaborators every endpoint needs.
type Handler struct {
	store     store.Store
	matcher   *matching.Matcher
	evaluator *matching.Evaluator
	geo       *matching.GeographyResolver
	logger    logger.Logger
}

func NewHandler(st store.Store, m *matching.Matcher, ev *matching.Evaluator, geo *matching.GeographyResolver, log logger.Logger) *Handler {
	return &Handler{
		store:     st,
		matcher:   m,
		evaluator: ev,
		geo:       geo,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Health verifies database connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.respondError(w, http.StatusServiceUnavailable,
			apperrors.Wrap(apperrors.ErrCodeDatabaseConnectionFailed, "database unavailable", err))
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "connected",
	})
}

// BrandsList returns all active brands for the dropdown.
func (h *Handler) BrandsList(w http.ResponseWriter, r *http.Request) {
	brands, err := h.store.BrandsList(r.Context())
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable,
			apperrors.NewQueryFailedError("brands list", err))
		return
	}
	if brands == nil {
		brands = []models.OrgSummary{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"sponsors": brands})
}

// EventsList returns all active events for the dropdown.
func (h *Handler) EventsList(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.EventsList(r.Context())
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable,
			apperrors.NewQueryFailedError("events list", err))
		return
	}
	if events == nil {
		events = []models.OrgSummary{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Match items are keyed by the counterpart on the wire: brand-side matches
// carry event_org_id/event_name, event-side matches brand_org_id/brand_name.
// The internal MatchResult uses unified field names; the mapping happens here.

type matchItemPayload struct {
	TotalScore      float64                          `json:"total_score"`
	MaxScore        float64                          `json:"max_score"`
	MatchPercentage float64                          `json:"match_percentage"`
	Breakdown       map[string]models.CriterionScore `json:"breakdown"`
	Explanation     string                           `json:"explanation"`
}

type eventMatchItem struct {
	EventOrgID int64  `json:"event_org_id"`
	EventName  string `json:"event_name"`
	matchItemPayload
}

type brandMatchItem struct {
	BrandOrgID int64  `json:"brand_org_id"`
	BrandName  string `json:"brand_name"`
	matchItemPayload
}

func matchPayload(r models.MatchResult) matchItemPayload {
	return matchItemPayload{
		TotalScore:      r.TotalScore,
		MaxScore:        r.MaxScore,
		MatchPercentage: r.MatchPercentage,
		Breakdown:       r.Breakdown,
		Explanation:     r.Explanation,
	}
}

func eventMatchItems(results []models.MatchResult) []eventMatchItem {
	out := make([]eventMatchItem, 0, len(results))
	for _, r := range results {
		out = append(out, eventMatchItem{
			EventOrgID:       r.OrgID,
			EventName:        r.Name,
			matchItemPayload: matchPayload(r),
		})
	}
	return out
}

func brandMatchItems(results []models.MatchResult) []brandMatchItem {
	out := make([]brandMatchItem, 0, len(results))
	for _, r := range results {
		out = append(out, brandMatchItem{
			BrandOrgID:       r.OrgID,
			BrandName:        r.Name,
			matchItemPayload: matchPayload(r),
		})
	}
	return out
}

// brandMatchesResponse mirrors the legacy shape: the brand name is repeated
// under sponsor_name.
type brandMatchesResponse struct {
	BrandOrgID  int64            `json:"brand_org_id"`
	BrandName   string           `json:"brand_name"`
	SponsorName string           `json:"sponsor_name"`
	Matches     []eventMatchItem `json:"matches"`
}

type eventMatchesResponse struct {
	EventOrgID int64            `json:"event_org_id"`
	EventName  string           `json:"event_name"`
	Matches    []brandMatchItem `json:"matches"`
}

// BrandMatches ranks all active events for one brand.
func (h *Handler) BrandMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	result, err := h.matcher.MatchesForBrand(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			apperrors.NewQueryFailedError("brand matches", err))
		return
	}
	h.respondJSON(w, http.StatusOK, brandMatchesResponse{
		BrandOrgID:  result.BrandOrgID,
		BrandName:   result.BrandName,
		SponsorName: result.BrandName,
		Matches:     eventMatchItems(result.Matches),
	})
}

// EventMatches ranks all active brands for one event.
func (h *Handler) EventMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	result, err := h.matcher.MatchesForEvent(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			apperrors.NewQueryFailedError("event matches", err))
		return
	}
	h.respondJSON(w, http.StatusOK, eventMatchesResponse{
		EventOrgID: result.EventOrgID,
		EventName:  result.EventName,
		Matches:    brandMatchItems(result.Matches),
	})
}

// CityGeography resolves one city's hierarchy.
func (h *Handler) CityGeography(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	geo, err := h.geo.Resolve(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			apperrors.NewQueryFailedError("city geography", err))
		return
	}
	if geo == nil {
		h.respondError(w, http.StatusNotFound,
			apperrors.New(apperrors.ErrCodeCityNotFound, "city not found"))
		return
	}
	h.respondJSON(w, http.StatusOK, geo)
}

// CitiesInState lists active city ids in a state.
func (h *Handler) CitiesInState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ids, err := h.store.CitiesInState(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			apperrors.NewQueryFailedError("cities in state", err))
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"state_id": id, "city_ids": ids})
}

// CitiesInCountry lists active city ids in a country.
func (h *Handler) CitiesInCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ids, err := h.store.CitiesInCountry(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			apperrors.NewQueryFailedError("cities in country", err))
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"country_id": id, "city_ids": ids})
}

type previewRequest struct {
	Brand models.BrandProfile `json:"brand"`
	Event models.EventProfile `json:"event"`
}

type previewResponse struct {
	Rejected bool            `json:"rejected"`
	Result   *eventMatchItem `json:"result,omitempty"`
}

// MatchPreview scores a profile pair supplied in the request body, validated
// against the preview schema, using the default match configuration.
func (h *Handler) MatchPreview(w http.ResponseWriter, r *http.Request) {
	body, validationErr, err := validatePreviewPayload(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest,
			apperrors.NewValidationError("request body is not valid JSON"))
		return
	}
	if validationErr != "" {
		h.respondError(w, http.StatusBadRequest, apperrors.NewValidationError(validationErr))
		return
	}

	var req previewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondError(w, http.StatusBadRequest,
			apperrors.NewValidationError("request body does not match the preview shape"))
		return
	}

	result, err := h.evaluator.EvaluatePreview(r.Context(), &req.Brand, &req.Event)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			apperrors.NewQueryFailedError("match preview", err))
		return
	}

	resp := previewResponse{Rejected: result == nil}
	if result != nil {
		item := eventMatchItem{
			EventOrgID:       result.OrgID,
			EventName:        result.Name,
			matchItemPayload: matchPayload(*result),
		}
		resp.Result = &item
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest,
			apperrors.NewValidationError("id must be an integer"))
		return 0, false
	}
	return id, true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("response encoding failed", map[string]interface{}{})
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, appErr *apperrors.StandardError) {
	h.logger.Warn("request failed", map[string]interface{}{
		"status": status,
		"code":   string(appErr.Code),
		"detail": appErr.Details,
	})
	h.respondJSON(w, status, map[string]interface{}{"error": appErr})
}
