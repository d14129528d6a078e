// internal/matching/batch.go
package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/common/metrics"
	"barternow-matcher/internal/common/observability"
	"barternow-matcher/internal/models"
	"barternow-matcher/internal/store"
)

// Matcher runs batch evaluations: one root entity against every active
// counterpart. Pairs are scored concurrently with a bounded worker pool and
// collected by enumeration index, so the output order is deterministic
// regardless of scheduling: descending match percentage, ties in ascending
// org id order.
type Matcher struct {
	store     store.Store
	evaluator *Evaluator
	obs       *observability.Observability
	logger    logger.Logger
	workers   int
}

func NewMatcher(st store.Store, ev *Evaluator, obs *observability.Observability, log logger.Logger, workers int) *Matcher {
	if workers < 1 {
		workers = 1
	}
	return &Matcher{
		store:     st,
		evaluator: ev,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "batch-matcher"}),
		workers:   workers,
	}
}

// MatchesForBrand ranks all active events for one brand. An unknown brand is
// not an error: the result carries the name "Unknown" and no matches.
func (m *Matcher) MatchesForBrand(ctx context.Context, brandOrgID int64) (*models.BrandMatches, error) {
	brand, err := m.store.BrandProfile(ctx, brandOrgID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return &models.BrandMatches{
			BrandOrgID: brandOrgID,
			BrandName:  "Unknown",
			Matches:    []models.MatchResult{},
		}, nil
	}

	eventOrgIDs, err := m.store.ActiveEventOrgIDs(ctx)
	if err != nil {
		return nil, err
	}

	matches := m.runBatch(ctx, DirectionBrandToEvents, eventOrgIDs, func(ctx context.Context, counterpartID int64) (*models.MatchResult, error) {
		return m.evaluator.EvaluateForBrand(ctx, brandOrgID, counterpartID)
	})

	return &models.BrandMatches{
		BrandOrgID: brand.BrandOrgID,
		BrandName:  brand.BrandName,
		Matches:    matches,
	}, nil
}

// MatchesForEvent ranks all active brands for one event.
func (m *Matcher) MatchesForEvent(ctx context.Context, eventOrgID int64) (*models.EventMatches, error) {
	event, err := m.store.EventProfile(ctx, eventOrgID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return &models.EventMatches{
			EventOrgID: eventOrgID,
			EventName:  "Unknown",
			Matches:    []models.MatchResult{},
		}, nil
	}

	brandOrgIDs, err := m.store.ActiveBrandOrgIDs(ctx)
	if err != nil {
		return nil, err
	}

	matches := m.runBatch(ctx, DirectionEventToBrands, brandOrgIDs, func(ctx context.Context, counterpartID int64) (*models.MatchResult, error) {
		return m.evaluator.EvaluateForEvent(ctx, counterpartID, eventOrgID)
	})

	return &models.EventMatches{
		EventOrgID: event.EventOrgID,
		EventName:  event.EventName,
		Matches:    matches,
	}, nil
}

// runBatch fans the pair evaluations out over the worker pool. Results land
// in a slice indexed by enumeration position; a pair whose evaluation fails
// is logged, counted and skipped rather than failing the batch.
func (m *Matcher) runBatch(ctx context.Context, direction string, counterpartIDs []int64, evaluate func(context.Context, int64) (*models.MatchResult, error)) []models.MatchResult {
	start := time.Now()

	results := make([]*models.MatchResult, len(counterpartIDs))
	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup

	for i, id := range counterpartIDs {
		wg.Add(1)
		go func(idx int, counterpartID int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := evaluate(ctx, counterpartID)
			if err != nil {
				metrics.MatchPairErrorsTotal.WithLabelValues(direction).Inc()
				if m.obs != nil {
					m.obs.RecordEvaluation(ctx, direction, "error")
				}
				m.logger.WithError(err).Warn("pair evaluation failed, skipping", map[string]interface{}{
					"direction":      direction,
					"counterpart_id": counterpartID,
				})
				return
			}
			if m.obs != nil {
				outcome := "scored"
				if result == nil {
					outcome = "rejected"
				}
				m.obs.RecordEvaluation(ctx, direction, outcome)
			}
			results[idx] = result
		}(i, id)
	}
	wg.Wait()

	matches := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			matches = append(matches, *r)
		}
	}

	// Stable sort: counterpart ids were enumerated ascending, so ties keep
	// ascending org id order.
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].MatchPercentage > matches[b].MatchPercentage
	})

	elapsed := time.Since(start)
	metrics.MatchBatchDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
	metrics.MatchBatchResults.WithLabelValues(direction).Observe(float64(len(matches)))
	if m.obs != nil {
		m.obs.RecordBatchDuration(ctx, direction, elapsed)
	}

	return matches
}
