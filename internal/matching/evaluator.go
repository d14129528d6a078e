// internal/matching/evaluator.go
package matching

import (
	"context"
	"math"
	"strings"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/common/metrics"
	"barternow-matcher/internal/models"
	"barternow-matcher/internal/store"
)

// Evaluation directions, used as metric labels and batch identifiers.
const (
	DirectionBrandToEvents = "brand_to_events"
	DirectionEventToBrands = "event_to_brands"
	DirectionPreview       = "preview"
)

// Rejection reasons for hard filters.
const (
	rejectGeography    = "geography"
	rejectAvoidedCat   = "avoided_category"
	rejectDeliverables = "must_have_deliverables"
)

// Breakdown keys in presentation order. Go maps do not keep insertion order,
// so explanation assembly walks this slice instead of the breakdown map.
var criterionOrder = []string{
	models.CriterionGeography,
	models.CriterionBudget,
	models.CriterionCategories,
	models.CriterionAudience,
	models.CriterionDeliverables,
}

// Evaluator scores one brand/event pair. The two directions are deliberately
// asymmetric: the brand-side view scores all five criteria, the event-side
// view scores only geography, budget and categories, because audience and
// deliverable preferences belong to the brand and carry no signal when
// ranking brands for an event.
type Evaluator struct {
	store  store.Store
	geo    *GeographyResolver
	logger logger.Logger
}

func NewEvaluator(st store.Store, geo *GeographyResolver, log logger.Logger) *Evaluator {
	return &Evaluator{
		store:  st,
		geo:    geo,
		logger: log.WithFields(map[string]interface{}{"component": "evaluator"}),
	}
}

// EvaluateForBrand scores one event for a brand across all five criteria.
// Returns (nil, nil) when either profile is missing or a hard filter rejects
// the pair; an error only for store failures.
func (e *Evaluator) EvaluateForBrand(ctx context.Context, brandOrgID, eventOrgID int64) (*models.MatchResult, error) {
	brand, event, err := e.loadPair(ctx, brandOrgID, eventOrgID)
	if err != nil || brand == nil || event == nil {
		return nil, err
	}

	weights, rules := e.loadConfig(ctx, brand)
	return e.evaluateBrandSide(ctx, DirectionBrandToEvents, brand, event, weights, rules)
}

// EvaluatePreview scores an ad-hoc profile pair with the shared default
// configuration. Profiles come from the caller; only the city hierarchy is
// read from the store.
func (e *Evaluator) EvaluatePreview(ctx context.Context, brand *models.BrandProfile, event *models.EventProfile) (*models.MatchResult, error) {
	return e.evaluateBrandSide(ctx, DirectionPreview, brand, event, models.DefaultWeightSet(), models.DefaultRuleSet())
}

func (e *Evaluator) evaluateBrandSide(ctx context.Context, direction string, brand *models.BrandProfile, event *models.EventProfile, weights models.WeightSet, rules models.RuleSet) (*models.MatchResult, error) {
	metrics.MatchEvaluationsTotal.WithLabelValues(direction).Inc()

	geoScore, err := e.scoreGeo(ctx, event, brand, weights.Geo)
	if err != nil {
		return nil, err
	}
	if rules.EnforceCityFilter && !derefBool(geoScore.PassedHardFilter) {
		metrics.MatchRejectionsTotal.WithLabelValues(direction, rejectGeography).Inc()
		return nil, nil
	}

	budgetScore := ScoreBudget(event.PackageMin, event.PackageMax,
		brand.SpendPerEventMin, brand.SpendPerEventMax,
		weights.Budget, rules.BudgetNearBoundaryRatio)

	categoryScore := ScoreCategories(event.Categories, brand.PreferredCategories, brand.AvoidedCategories, weights.Category)
	if categoryScore.HardRejection {
		metrics.MatchRejectionsTotal.WithLabelValues(direction, rejectAvoidedCat).Inc()
		return nil, nil
	}

	audienceScore := ScoreAudienceOverlap(event, brand, weights.Audience)

	deliverablesScore := ScoreDeliverables(event.DeliverablesOffered,
		brand.WantedDeliverables, brand.MustHaveDeliverables, weights.Deliverables)
	if rules.EnforceMustHaveDeliverables && !derefBool(deliverablesScore.PassedHardFilter) {
		metrics.MatchRejectionsTotal.WithLabelValues(direction, rejectDeliverables).Inc()
		return nil, nil
	}

	breakdown := map[string]models.CriterionScore{
		models.CriterionGeography:    geoScore,
		models.CriterionBudget:       budgetScore,
		models.CriterionCategories:   categoryScore,
		models.CriterionAudience:     audienceScore,
		models.CriterionDeliverables: deliverablesScore,
	}

	result := assembleResult(event.EventOrgID, event.EventName, breakdown)
	return &result, nil
}

// EvaluateForEvent scores one brand for an event over geography, budget and
// categories only. The returned result is keyed by the brand.
func (e *Evaluator) EvaluateForEvent(ctx context.Context, brandOrgID, eventOrgID int64) (*models.MatchResult, error) {
	brand, event, err := e.loadPair(ctx, brandOrgID, eventOrgID)
	if err != nil || brand == nil || event == nil {
		return nil, err
	}

	weights, rules := e.loadConfig(ctx, brand)
	metrics.MatchEvaluationsTotal.WithLabelValues(DirectionEventToBrands).Inc()

	geoScore, err := e.scoreGeo(ctx, event, brand, weights.Geo)
	if err != nil {
		return nil, err
	}
	if rules.EnforceCityFilter && !derefBool(geoScore.PassedHardFilter) {
		metrics.MatchRejectionsTotal.WithLabelValues(DirectionEventToBrands, rejectGeography).Inc()
		return nil, nil
	}

	budgetScore := ScoreBudget(event.PackageMin, event.PackageMax,
		brand.SpendPerEventMin, brand.SpendPerEventMax,
		weights.Budget, rules.BudgetNearBoundaryRatio)

	categoryScore := ScoreCategories(event.Categories, brand.PreferredCategories, brand.AvoidedCategories, weights.Category)
	if categoryScore.HardRejection {
		metrics.MatchRejectionsTotal.WithLabelValues(DirectionEventToBrands, rejectAvoidedCat).Inc()
		return nil, nil
	}

	breakdown := map[string]models.CriterionScore{
		models.CriterionGeography:  geoScore,
		models.CriterionBudget:     budgetScore,
		models.CriterionCategories: categoryScore,
	}

	result := assembleResult(brand.BrandOrgID, brand.BrandName, breakdown)
	return &result, nil
}

func (e *Evaluator) loadPair(ctx context.Context, brandOrgID, eventOrgID int64) (*models.BrandProfile, *models.EventProfile, error) {
	brand, err := e.store.BrandProfile(ctx, brandOrgID)
	if err != nil {
		return nil, nil, err
	}
	if brand == nil {
		return nil, nil, nil
	}
	event, err := e.store.EventProfile(ctx, eventOrgID)
	if err != nil {
		return nil, nil, err
	}
	return brand, event, nil
}

// loadConfig resolves the brand's weight and rule sets, falling back to the
// shared defaults when the reference is absent, the set is inactive, or the
// lookup fails. Every evaluation path recovers the same way.
func (e *Evaluator) loadConfig(ctx context.Context, brand *models.BrandProfile) (models.WeightSet, models.RuleSet) {
	weights := models.DefaultWeightSet()
	if brand.DefaultWeightSetID != nil {
		ws, err := e.store.WeightSet(ctx, *brand.DefaultWeightSetID)
		if err != nil {
			e.logger.WithError(err).Warn("weight set lookup failed, using defaults", map[string]interface{}{
				"weight_set_id": *brand.DefaultWeightSetID,
			})
		} else if ws != nil {
			weights = *ws
		}
	}

	rules := models.DefaultRuleSet()
	if brand.DefaultRuleSetID != nil {
		rs, err := e.store.RuleSet(ctx, *brand.DefaultRuleSetID)
		if err != nil {
			e.logger.WithError(err).Warn("rule set lookup failed, using defaults", map[string]interface{}{
				"rule_set_id": *brand.DefaultRuleSetID,
			})
		} else if rs != nil {
			rules = *rs
		}
	}

	return weights, rules
}

func (e *Evaluator) scoreGeo(ctx context.Context, event *models.EventProfile, brand *models.BrandProfile, weight float64) (models.CriterionScore, error) {
	if event.CityID == nil {
		return ScoreGeographyUnspecified(weight), nil
	}
	match, err := e.geo.Match(ctx, *event.CityID, brand)
	if err != nil {
		return models.CriterionScore{}, err
	}
	return ScoreGeography(match, weight), nil
}

// assembleResult computes totals from whatever criteria are present in the
// breakdown and builds the explanation from positive matches in presentation
// order.
func assembleResult(orgID int64, name string, breakdown map[string]models.CriterionScore) models.MatchResult {
	// Fixed summation order keeps the rounded totals reproducible.
	var totalScore, maxScore float64
	for _, key := range criterionOrder {
		score, ok := breakdown[key]
		if !ok {
			continue
		}
		totalScore += score.Contribution
		maxScore += score.Weight
	}

	matchPercentage := 0.0
	if maxScore > 0 {
		matchPercentage = totalScore / maxScore * 100
	}

	var parts []string
	for _, key := range criterionOrder {
		score, ok := breakdown[key]
		if !ok {
			continue
		}
		if score.MatchFactor > 0 {
			parts = append(parts, criterionTitle(key)+": "+score.Explanation)
		}
	}
	explanation := "Minimal match"
	if len(parts) > 0 {
		explanation = strings.Join(parts, "\n")
	}

	return models.MatchResult{
		OrgID:           orgID,
		Name:            name,
		TotalScore:      round2(totalScore),
		MaxScore:        round2(maxScore),
		MatchPercentage: round2(matchPercentage),
		Breakdown:       breakdown,
		Explanation:     explanation,
	}
}

func criterionTitle(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
