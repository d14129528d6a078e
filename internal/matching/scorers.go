// internal/matching/scorers.go
package matching

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"barternow-matcher/internal/models"
)

// Each scorer is a pure function from profile data to one CriterionScore.
// Contribution is always weight * match_factor; hard-filter criteria set
// PassedHardFilter and the category scorer sets HardRejection on an
// avoided-category hit.

func boolPtr(b bool) *bool { return &b }

// ScoreGeographyUnspecified is the geography score for an event with no city.
func ScoreGeographyUnspecified(weight float64) models.CriterionScore {
	return models.CriterionScore{
		Weight:           weight,
		MatchFactor:      0.0,
		Contribution:     0.0,
		Explanation:      "Event city not specified",
		PassedHardFilter: boolPtr(false),
	}
}

// ScoreGeography converts a resolved GeoMatch into a criterion score.
func ScoreGeography(match models.GeoMatch, weight float64) models.CriterionScore {
	if match.Matches {
		return models.CriterionScore{
			Weight:           weight,
			MatchFactor:      1.0,
			Contribution:     weight,
			Explanation:      match.Explanation,
			PassedHardFilter: boolPtr(true),
			MatchLevel:       match.MatchLevel,
		}
	}
	return models.CriterionScore{
		Weight:           weight,
		MatchFactor:      0.0,
		Contribution:     0.0,
		Explanation:      match.Explanation,
		PassedHardFilter: boolPtr(false),
	}
}

// ScoreBudget scores range overlap between the event's sponsorship package
// and the brand's per-event spend. Non-overlapping ranges still earn half
// credit when the gap is within nearBoundaryRatio of the larger range.
//
// A missing event range is neutral; missing brand bounds collapse to zero,
// which makes the asymmetry deliberate: events without packages are unknowns,
// brands without budgets are zero-budget.
func ScoreBudget(eventMin, eventMax, brandMin, brandMax *float64, weight, nearBoundaryRatio float64) models.CriterionScore {
	if eventMin == nil || eventMax == nil {
		return models.CriterionScore{
			Weight:       weight,
			MatchFactor:  0.5,
			Contribution: weight * 0.5,
			Explanation:  "Event budget not specified",
		}
	}

	eMin, eMax := *eventMin, *eventMax
	bMin, bMax := derefOrZero(brandMin), derefOrZero(brandMax)

	overlapMin := math.Max(bMin, eMin)
	overlapMax := math.Min(bMax, eMax)

	var matchFactor float64
	var explanation string
	if overlapMin <= overlapMax {
		matchFactor = 1.0
		explanation = fmt.Sprintf("Budget ranges overlap: event needs $%s-$%s, brand offer $%s-$%s.",
			formatMoney(eMin), formatMoney(eMax), formatMoney(bMin), formatMoney(bMax))
	} else {
		threshold := math.Max(bMax-bMin, eMax-eMin) * nearBoundaryRatio
		gap := math.Min(math.Abs(eMax-bMin), math.Abs(bMax-eMin))

		if gap <= threshold {
			matchFactor = 0.5
			explanation = fmt.Sprintf("Budget ranges are close but don't overlap: event needs $%s-$%s, brand offer $%s-$%s.",
				formatMoney(eMin), formatMoney(eMax), formatMoney(bMin), formatMoney(bMax))
		} else {
			matchFactor = 0.0
			explanation = fmt.Sprintf("Budget ranges don't match: event needs $%s-$%s, brand offer $%s-$%s.",
				formatMoney(eMin), formatMoney(eMax), formatMoney(bMin), formatMoney(bMax))
		}
	}

	return models.CriterionScore{
		Weight:       weight,
		MatchFactor:  matchFactor,
		Contribution: weight * matchFactor,
		Explanation:  explanation,
	}
}

// ScoreCategories scores the event's categories against the brand's
// preferences. Any avoided category wins over any preferred one and marks the
// score as a hard rejection.
func ScoreCategories(eventCats, preferred, avoided []models.CategoryRef, weight float64) models.CriterionScore {
	if len(eventCats) == 0 {
		return models.CriterionScore{
			Weight:       weight,
			MatchFactor:  0.5,
			Contribution: weight * 0.5,
			Explanation:  "Event categories not specified",
		}
	}

	avoidedIDs := categoryIDSet(avoided)
	preferredIDs := categoryIDSet(preferred)

	if names := categoryNamesIn(eventCats, avoidedIDs); len(names) > 0 {
		return models.CriterionScore{
			Weight:        weight,
			MatchFactor:   0.0,
			Contribution:  0.0,
			Explanation:   fmt.Sprintf("Event has avoided categories: %s", strings.Join(names, ", ")),
			HardRejection: true,
		}
	}

	if names := categoryNamesIn(eventCats, preferredIDs); len(names) > 0 {
		return models.CriterionScore{
			Weight:       weight,
			MatchFactor:  1.0,
			Contribution: weight,
			Explanation:  fmt.Sprintf("Event has preferred categories: %s", strings.Join(names, ", ")),
		}
	}

	names := make([]string, 0, len(eventCats))
	for _, c := range eventCats {
		names = append(names, c.CategoryName)
	}
	return models.CriterionScore{
		Weight:       weight,
		MatchFactor:  0.5,
		Contribution: weight * 0.5,
		Explanation:  fmt.Sprintf("Event categories (%s) are neutral (not preferred, not avoided)", strings.Join(names, ", ")),
	}
}

// ScoreAudienceOverlap averages up to three binary subscores: age bucket
// overlap, audience type overlap and interest tag overlap. A dimension only
// counts when both sides declared data for it; with no computable dimension
// the score is neutral.
func ScoreAudienceOverlap(event *models.EventProfile, brand *models.BrandProfile, weight float64) models.CriterionScore {
	var scores []float64
	var explanations []string

	if len(brand.TargetAgeBuckets) > 0 && len(event.AgeDistribution) > 0 {
		brandIDs := make(map[int64]struct{}, len(brand.TargetAgeBuckets))
		for _, b := range brand.TargetAgeBuckets {
			brandIDs[b.AgeBucketID] = struct{}{}
		}
		overlap := 0
		for _, d := range event.AgeDistribution {
			if _, ok := brandIDs[d.AgeBucketID]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			scores = append(scores, 1.0)
			explanations = append(explanations, fmt.Sprintf("Age buckets overlap (%d buckets)", overlap))
		} else {
			scores = append(scores, 0.0)
			explanations = append(explanations, "No age bucket overlap")
		}
	}

	if len(brand.TargetAudienceTypes) > 0 && len(event.AudienceTypes) > 0 {
		brandIDs := make(map[int64]struct{}, len(brand.TargetAudienceTypes))
		for _, b := range brand.TargetAudienceTypes {
			brandIDs[b.AudienceTypeID] = struct{}{}
		}
		overlap := 0
		for _, at := range event.AudienceTypes {
			if _, ok := brandIDs[at.AudienceTypeID]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			scores = append(scores, 1.0)
			explanations = append(explanations, fmt.Sprintf("Audience types match (%d types)", overlap))
		} else {
			scores = append(scores, 0.0)
			explanations = append(explanations, "No audience type overlap")
		}
	}

	if len(brand.TargetInterestTags) > 0 && len(event.InterestTags) > 0 {
		brandIDs := make(map[int64]struct{}, len(brand.TargetInterestTags))
		for _, b := range brand.TargetInterestTags {
			brandIDs[b.InterestTagID] = struct{}{}
		}
		var overlapNames []string
		for _, it := range event.InterestTags {
			if _, ok := brandIDs[it.InterestTagID]; ok {
				overlapNames = append(overlapNames, it.TagName)
			}
		}
		if len(overlapNames) > 0 {
			scores = append(scores, 1.0)
			if len(overlapNames) > 3 {
				overlapNames = overlapNames[:3]
			}
			explanations = append(explanations, fmt.Sprintf("Interest tags match: %s", strings.Join(overlapNames, ", ")))
		} else {
			scores = append(scores, 0.0)
			explanations = append(explanations, "No interest tag overlap")
		}
	}

	var matchFactor float64
	var explanation string
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		matchFactor = sum / float64(len(scores))
		explanation = strings.Join(explanations, "\n")
	} else {
		matchFactor = 0.5
		explanation = "Insufficient audience data to score"
	}

	return models.CriterionScore{
		Weight:       weight,
		MatchFactor:  matchFactor,
		Contribution: weight * matchFactor,
		Explanation:  explanation,
	}
}

// ScoreDeliverables scores the event's deliverable inventory against the
// brand's wanted and must-have sets. Must-haves act as an all-or-nothing
// filter before wanted coverage is scored.
func ScoreDeliverables(offered []models.EventDeliverable, wanted, mustHave []models.DeliverableRef, weight float64) models.CriterionScore {
	if len(offered) == 0 {
		return models.CriterionScore{
			Weight:           weight,
			MatchFactor:      0.0,
			Contribution:     0.0,
			Explanation:      "Event offers no deliverables",
			PassedHardFilter: boolPtr(false),
		}
	}

	offeredIDs := make(map[int64]struct{}, len(offered))
	for _, d := range offered {
		offeredIDs[d.DeliverableTypeID] = struct{}{}
	}

	if len(mustHave) > 0 {
		var missingNames []string
		for _, d := range mustHave {
			if _, ok := offeredIDs[d.DeliverableTypeID]; !ok {
				missingNames = append(missingNames, d.DeliverableName)
			}
		}
		if len(missingNames) > 0 {
			return models.CriterionScore{
				Weight:           weight,
				MatchFactor:      0.0,
				Contribution:     0.0,
				Explanation:      fmt.Sprintf("Event missing must-have deliverables: %s", strings.Join(missingNames, ", ")),
				PassedHardFilter: boolPtr(false),
			}
		}
	}

	var matchFactor float64
	var explanation string
	if len(wanted) > 0 {
		wantedIDs := make(map[int64]struct{}, len(wanted))
		for _, d := range wanted {
			wantedIDs[d.DeliverableTypeID] = struct{}{}
		}
		matchedIDs := make(map[int64]struct{})
		var offeredNames []string
		for _, d := range offered {
			if _, ok := wantedIDs[d.DeliverableTypeID]; ok {
				matchedIDs[d.DeliverableTypeID] = struct{}{}
				offeredNames = append(offeredNames, d.DeliverableName)
			}
		}
		if len(matchedIDs) > 0 {
			matchFactor = float64(len(matchedIDs)) / float64(len(wantedIDs))
			explanation = fmt.Sprintf("Event offers %d/%d wanted deliverables: %s",
				len(matchedIDs), len(wantedIDs), strings.Join(offeredNames, ", "))
		} else {
			matchFactor = 0.5
			explanation = "Event offers deliverables, but none are in wanted list"
		}
	} else {
		matchFactor = 1.0
		explanation = "No specific deliverable preferences"
	}

	return models.CriterionScore{
		Weight:           weight,
		MatchFactor:      matchFactor,
		Contribution:     weight * matchFactor,
		Explanation:      explanation,
		PassedHardFilter: boolPtr(true),
	}
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func categoryIDSet(cats []models.CategoryRef) map[int64]struct{} {
	set := make(map[int64]struct{}, len(cats))
	for _, c := range cats {
		set[c.CategoryID] = struct{}{}
	}
	return set
}

func categoryNamesIn(cats []models.CategoryRef, ids map[int64]struct{}) []string {
	var names []string
	for _, c := range cats {
		if _, ok := ids[c.CategoryID]; ok {
			names = append(names, c.CategoryName)
		}
	}
	return names
}

// formatMoney renders a dollar amount with thousands separators and no
// decimals, matching the wording used in budget explanations.
func formatMoney(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Round(math.Abs(v)), 'f', 0, 64)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
