// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/models"
)

// Cache key patterns. Profiles and geography are read-heavy and change
// rarely; config sets change even less.
const (
	keyBrandProfile = "match:brand_profile:%d"
	keyEventProfile = "match:event_profile:%d"
	keyCityGeo      = "match:city_geo:%d"
	keyWeightSet    = "match:weight_set:%d"
	keyRuleSet      = "match:rule_set:%d"
)

// Sentinel stored for confirmed-absent entities so a missing row does not
// hammer the database on every batch pass.
const absentMarker = "__absent__"

// CachedStore is a read-through decorator over another Store. Cache failures
// never fail a lookup: reads fall through to the inner store and writes are
// best-effort.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cached-store"}),
	}
}

func (c *CachedStore) BrandProfile(ctx context.Context, orgID int64) (*models.BrandProfile, error) {
	key := fmt.Sprintf(keyBrandProfile, orgID)
	var cached models.BrandProfile
	hit, absent := c.get(ctx, key, &cached)
	if absent {
		return nil, nil
	}
	if hit {
		return &cached, nil
	}

	p, err := c.inner.BrandProfile(ctx, orgID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, p)
	return p, nil
}

func (c *CachedStore) EventProfile(ctx context.Context, orgID int64) (*models.EventProfile, error) {
	key := fmt.Sprintf(keyEventProfile, orgID)
	var cached models.EventProfile
	hit, absent := c.get(ctx, key, &cached)
	if absent {
		return nil, nil
	}
	if hit {
		return &cached, nil
	}

	p, err := c.inner.EventProfile(ctx, orgID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, p)
	return p, nil
}

func (c *CachedStore) CityGeography(ctx context.Context, cityID int64) (*models.CityGeography, error) {
	key := fmt.Sprintf(keyCityGeo, cityID)
	var cached models.CityGeography
	hit, absent := c.get(ctx, key, &cached)
	if absent {
		return nil, nil
	}
	if hit {
		return &cached, nil
	}

	geo, err := c.inner.CityGeography(ctx, cityID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, geo)
	return geo, nil
}

func (c *CachedStore) WeightSet(ctx context.Context, id int64) (*models.WeightSet, error) {
	key := fmt.Sprintf(keyWeightSet, id)
	var cached models.WeightSet
	hit, absent := c.get(ctx, key, &cached)
	if absent {
		return nil, nil
	}
	if hit {
		return &cached, nil
	}

	ws, err := c.inner.WeightSet(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, ws)
	return ws, nil
}

func (c *CachedStore) RuleSet(ctx context.Context, id int64) (*models.RuleSet, error) {
	key := fmt.Sprintf(keyRuleSet, id)
	var cached models.RuleSet
	hit, absent := c.get(ctx, key, &cached)
	if absent {
		return nil, nil
	}
	if hit {
		return &cached, nil
	}

	rs, err := c.inner.RuleSet(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, rs)
	return rs, nil
}

// Enumerations and listings must reflect current activation state, so they
// always go to the inner store.

func (c *CachedStore) ActiveBrandOrgIDs(ctx context.Context) ([]int64, error) {
	return c.inner.ActiveBrandOrgIDs(ctx)
}

func (c *CachedStore) ActiveEventOrgIDs(ctx context.Context) ([]int64, error) {
	return c.inner.ActiveEventOrgIDs(ctx)
}

func (c *CachedStore) BrandsList(ctx context.Context) ([]models.OrgSummary, error) {
	return c.inner.BrandsList(ctx)
}

func (c *CachedStore) EventsList(ctx context.Context) ([]models.OrgSummary, error) {
	return c.inner.EventsList(ctx)
}

func (c *CachedStore) CitiesInState(ctx context.Context, stateID int64) ([]int64, error) {
	return c.inner.CitiesInState(ctx, stateID)
}

func (c *CachedStore) CitiesInCountry(ctx context.Context, countryID int64) ([]int64, error) {
	return c.inner.CitiesInCountry(ctx, countryID)
}

func (c *CachedStore) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// get returns (hit, absent). hit means dest was populated; absent means the
// key holds the absent marker. Any redis or decode error is logged and
// treated as a miss.
func (c *CachedStore) get(ctx context.Context, key string, dest interface{}) (bool, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("cache read failed", map[string]interface{}{"key": key})
		return false, false
	}
	if raw == absentMarker {
		return false, true
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.WithError(err).Warn("cache entry corrupt", map[string]interface{}{"key": key})
		return false, false
	}
	return true, false
}

// put stores value (or the absent marker for typed nil pointers) with TTL.
func (c *CachedStore) put(ctx context.Context, key string, value interface{}) {
	var payload string
	if isNilPointer(value) {
		payload = absentMarker
	} else {
		data, err := json.Marshal(value)
		if err != nil {
			c.logger.WithError(err).Warn("cache encode failed", map[string]interface{}{"key": key})
			return
		}
		payload = string(data)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("cache write failed", map[string]interface{}{"key": key})
	}
}

func isNilPointer(value interface{}) bool {
	switch v := value.(type) {
	case *models.BrandProfile:
		return v == nil
	case *models.EventProfile:
		return v == nil
	case *models.CityGeography:
		return v == nil
	case *models.WeightSet:
		return v == nil
	case *models.RuleSet:
		return v == nil
	}
	return value == nil
}
