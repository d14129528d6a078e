// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"barternow-matcher/internal/common/logger"
	"barternow-matcher/internal/models"
)

// Schema-qualified table names. Two schemas: configdb holds immutable
// reference data, coredb holds user-entered business truth.
const (
	configSchema = "barternow_configdb"
	coreSchema   = "barternow_coredb"

	tblCountries      = configSchema + ".countries"
	tblStates         = configSchema + ".states"
	tblCities         = configSchema + ".cities"
	tblEventCats      = configSchema + ".event_categories"
	tblEventTypes     = configSchema + ".event_types"
	tblDeliverables   = configSchema + ".deliverable_types"
	tblAgeBuckets     = configSchema + ".audience_age_buckets"
	tblAudienceTypes  = configSchema + ".audience_types"
	tblInterestTags   = configSchema + ".interest_tags"
	tblWeightSets     = configSchema + ".match_weight_sets"
	tblRuleSets       = configSchema + ".match_rule_sets"

	tblOrgs              = coreSchema + ".orgs"
	tblBrandProfiles     = coreSchema + ".brand_profiles"
	tblBrandCities       = coreSchema + ".brand_target_cities"
	tblBrandStates       = coreSchema + ".brand_target_states"
	tblBrandCountries    = coreSchema + ".brand_target_countries"
	tblBrandCategories   = coreSchema + ".brand_preferred_categories"
	tblBrandDeliverables = coreSchema + ".brand_deliverable_preferences"
	tblBrandAgeBuckets   = coreSchema + ".brand_target_age_buckets"
	tblBrandAudTypes     = coreSchema + ".brand_target_audience_types"
	tblBrandTags         = coreSchema + ".brand_target_interest_tags"
	tblEventProfiles     = coreSchema + ".event_profiles"
	tblEventCatsMap      = coreSchema + ".event_categories_map"
	tblEventSponsorship  = coreSchema + ".event_sponsorship_inventory"
	tblEventDeliverables = coreSchema + ".event_deliverables_inventory"
	tblEventAgeDist      = coreSchema + ".event_age_distribution"
	tblEventAudTypes     = coreSchema + ".event_audience_types_map"
	tblEventTags         = coreSchema + ".event_interest_tags_map"
)

// PostgresStore implements Store against the BarterNow schema.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// -------------------------------
// Geography
// -------------------------------

// CityGeography resolves the full city -> state -> country hierarchy with
// LEFT JOINs, so a city without a state (or a state without a country) still
// resolves partially.
func (s *PostgresStore) CityGeography(ctx context.Context, cityID int64) (*models.CityGeography, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			c.city_id,
			c.city_name,
			c.city_tier,
			s.state_id,
			s.state_name,
			co.country_id,
			co.country_name
		FROM `+tblCities+` c
		LEFT JOIN `+tblStates+` s ON c.state_id = s.state_id
		LEFT JOIN `+tblCountries+` co ON s.country_id = co.country_id
		WHERE c.city_id = $1 AND c.is_active = true`, cityID)

	var geo models.CityGeography
	var stateID, countryID sql.NullInt64
	var stateName, countryName sql.NullString
	err := row.Scan(&geo.CityID, &geo.CityName, &geo.CityTier, &stateID, &stateName, &countryID, &countryName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve city geography: %w", err)
	}

	geo.StateID = nullInt64Ptr(stateID)
	geo.StateName = nullStringPtr(stateName)
	geo.CountryID = nullInt64Ptr(countryID)
	geo.CountryName = nullStringPtr(countryName)
	return &geo, nil
}

func (s *PostgresStore) CitiesInState(ctx context.Context, stateID int64) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT city_id
		FROM `+tblCities+`
		WHERE state_id = $1 AND is_active = true
		ORDER BY city_id`, stateID)
}

func (s *PostgresStore) CitiesInCountry(ctx context.Context, countryID int64) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT c.city_id
		FROM `+tblCities+` c
		LEFT JOIN `+tblStates+` s ON c.state_id = s.state_id
		WHERE s.country_id = $1 AND c.is_active = true
		ORDER BY c.city_id`, countryID)
}

// -------------------------------
// Brand retrieval
// -------------------------------

// BrandProfile assembles the full denormalized brand profile. One call, many
// queries, to keep the evaluator free of N+1 lookups.
func (s *PostgresStore) BrandProfile(ctx context.Context, orgID int64) (*models.BrandProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			bp.brand_profile_id,
			bp.brand_org_id,
			bp.objective_primary,
			bp.spend_per_event_min,
			bp.spend_per_event_max,
			bp.geographic_focus_type,
			bp.default_match_weight_set_id,
			bp.default_match_rule_set_id,
			o.org_name AS brand_name
		FROM `+tblBrandProfiles+` bp
		JOIN `+tblOrgs+` o ON bp.brand_org_id = o.org_id
		WHERE bp.brand_org_id = $1`, orgID)

	var p models.BrandProfile
	var objective sql.NullString
	var spendMin, spendMax sql.NullFloat64
	var focusType sql.NullString
	var weightSetID, ruleSetID sql.NullInt64
	err := row.Scan(
		&p.BrandProfileID, &p.BrandOrgID, &objective, &spendMin, &spendMax,
		&focusType, &weightSetID, &ruleSetID, &p.BrandName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load brand profile %d: %w", orgID, err)
	}

	p.ObjectivePrimary = objective.String
	p.SpendPerEventMin = nullFloat64Ptr(spendMin)
	p.SpendPerEventMax = nullFloat64Ptr(spendMax)
	p.GeographicFocusType = focusType.String
	p.DefaultWeightSetID = nullInt64Ptr(weightSetID)
	p.DefaultRuleSetID = nullInt64Ptr(ruleSetID)

	if err := s.loadBrandTargets(ctx, orgID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) loadBrandTargets(ctx context.Context, orgID int64, p *models.BrandProfile) error {
	// Target cities (inactive rows excluded here, not in scoring).
	err := s.eachRow(ctx, "load brand target cities", `
		SELECT btc.city_id, c.city_name
		FROM `+tblBrandCities+` btc
		JOIN `+tblCities+` c ON btc.city_id = c.city_id
		WHERE btc.brand_org_id = $1 AND btc.is_active = true`,
		func(rows *sql.Rows) error {
			var ref models.CityRef
			if err := rows.Scan(&ref.CityID, &ref.CityName); err != nil {
				return err
			}
			p.TargetCities = append(p.TargetCities, ref)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	err = s.eachRow(ctx, "load brand target states", `
		SELECT bts.state_id, st.state_name
		FROM `+tblBrandStates+` bts
		JOIN `+tblStates+` st ON bts.state_id = st.state_id
		WHERE bts.brand_org_id = $1 AND bts.is_active = true`,
		func(rows *sql.Rows) error {
			var ref models.StateRef
			if err := rows.Scan(&ref.StateID, &ref.StateName); err != nil {
				return err
			}
			p.TargetStates = append(p.TargetStates, ref)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	err = s.eachRow(ctx, "load brand target countries", `
		SELECT btc.country_id, co.country_name
		FROM `+tblBrandCountries+` btc
		JOIN `+tblCountries+` co ON btc.country_id = co.country_id
		WHERE btc.brand_org_id = $1 AND btc.is_active = true`,
		func(rows *sql.Rows) error {
			var ref models.CountryRef
			if err := rows.Scan(&ref.CountryID, &ref.CountryName); err != nil {
				return err
			}
			p.TargetCountries = append(p.TargetCountries, ref)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	// Categories, split by preference type.
	err = s.eachRow(ctx, "load brand categories", `
		SELECT bpc.category_id, ec.category_name, bpc.preference_type
		FROM `+tblBrandCategories+` bpc
		JOIN `+tblEventCats+` ec ON bpc.category_id = ec.category_id
		WHERE bpc.brand_org_id = $1`,
		func(rows *sql.Rows) error {
			var ref models.CategoryRef
			var prefType string
			if err := rows.Scan(&ref.CategoryID, &ref.CategoryName, &prefType); err != nil {
				return err
			}
			switch prefType {
			case "preferred":
				p.PreferredCategories = append(p.PreferredCategories, ref)
			case "avoid":
				p.AvoidedCategories = append(p.AvoidedCategories, ref)
			}
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	// Deliverables, split by preference type.
	err = s.eachRow(ctx, "load brand deliverables", `
		SELECT bdp.deliverable_type_id, dt.deliverable_name, bdp.preference_type
		FROM `+tblBrandDeliverables+` bdp
		JOIN `+tblDeliverables+` dt ON bdp.deliverable_type_id = dt.deliverable_type_id
		WHERE bdp.brand_org_id = $1`,
		func(rows *sql.Rows) error {
			var ref models.DeliverableRef
			var prefType string
			if err := rows.Scan(&ref.DeliverableTypeID, &ref.DeliverableName, &prefType); err != nil {
				return err
			}
			switch prefType {
			case "wanted":
				p.WantedDeliverables = append(p.WantedDeliverables, ref)
			case "must_have":
				p.MustHaveDeliverables = append(p.MustHaveDeliverables, ref)
			}
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	err = s.eachRow(ctx, "load brand age buckets", `
		SELECT btab.age_bucket_id, aab.bucket_label, aab.min_age, aab.max_age
		FROM `+tblBrandAgeBuckets+` btab
		JOIN `+tblAgeBuckets+` aab ON btab.age_bucket_id = aab.age_bucket_id
		WHERE btab.brand_org_id = $1`,
		func(rows *sql.Rows) error {
			var ref models.AgeBucketRef
			if err := rows.Scan(&ref.AgeBucketID, &ref.BucketLabel, &ref.MinAge, &ref.MaxAge); err != nil {
				return err
			}
			p.TargetAgeBuckets = append(p.TargetAgeBuckets, ref)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	err = s.eachRow(ctx, "load brand audience types", `
		SELECT btat.audience_type_id, at.type_name
		FROM `+tblBrandAudTypes+` btat
		JOIN `+tblAudienceTypes+` at ON btat.audience_type_id = at.audience_type_id
		WHERE btat.brand_org_id = $1`,
		func(rows *sql.Rows) error {
			var ref models.AudienceTypeRef
			if err := rows.Scan(&ref.AudienceTypeID, &ref.TypeName); err != nil {
				return err
			}
			p.TargetAudienceTypes = append(p.TargetAudienceTypes, ref)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	return s.eachRow(ctx, "load brand interest tags", `
		SELECT btit.interest_tag_id, it.tag_name
		FROM `+tblBrandTags+` btit
		JOIN `+tblInterestTags+` it ON btit.interest_tag_id = it.interest_tag_id
		WHERE btit.brand_org_id = $1`,
		func(rows *sql.Rows) error {
			var ref models.InterestTagRef
			if err := rows.Scan(&ref.InterestTagID, &ref.TagName); err != nil {
				return err
			}
			p.TargetInterestTags = append(p.TargetInterestTags, ref)
			return nil
		}, orgID)
}

// -------------------------------
// Event retrieval
// -------------------------------

func (s *PostgresStore) EventProfile(ctx context.Context, orgID int64) (*models.EventProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			ep.event_profile_id,
			ep.event_org_id,
			ep.event_name,
			et.event_type_name,
			ep.city_id,
			c.city_name,
			ep.venue_name,
			ep.start_date,
			ep.end_date,
			ep.expected_audience_size,
			o.org_name AS event_org_name
		FROM `+tblEventProfiles+` ep
		JOIN `+tblOrgs+` o ON ep.event_org_id = o.org_id
		LEFT JOIN `+tblEventTypes+` et ON ep.event_type_id = et.event_type_id
		LEFT JOIN `+tblCities+` c ON ep.city_id = c.city_id
		WHERE ep.event_org_id = $1`, orgID)

	var p models.EventProfile
	var eventTypeName, cityName, venueName sql.NullString
	var cityID, audienceSize sql.NullInt64
	var startDate, endDate sql.NullTime
	err := row.Scan(
		&p.EventProfileID, &p.EventOrgID, &p.EventName, &eventTypeName,
		&cityID, &cityName, &venueName, &startDate, &endDate, &audienceSize,
		&p.EventOrgName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load event profile %d: %w", orgID, err)
	}

	p.EventTypeName = eventTypeName.String
	p.CityID = nullInt64Ptr(cityID)
	p.CityName = cityName.String
	p.VenueName = venueName.String
	p.StartDate = nullTimePtr(startDate)
	p.EndDate = nullTimePtr(endDate)
	p.ExpectedAudienceSize = nullInt64Ptr(audienceSize)

	if err := s.loadEventDetails(ctx, orgID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) loadEventDetails(ctx context.Context, orgID int64, p *models.EventProfile) error {
	err := s.eachRow(ctx, "load event categories", `
		SELECT ecm.category_id, ec.category_name
		FROM `+tblEventCatsMap+` ecm
		JOIN `+tblEventCats+` ec ON ecm.category_id = ec.category_id
		WHERE ecm.event_org_id = $1`,
		func(rows *sql.Rows) error {
			var ref models.CategoryRef
			if err := rows.Scan(&ref.CategoryID, &ref.CategoryName); err != nil {
				return err
			}
			p.Categories = append(p.Categories, ref)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	// Sponsorship budget; the row may be absent entirely.
	var pkgMin, pkgMax sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT package_min, package_max
		FROM `+tblEventSponsorship+`
		WHERE event_org_id = $1`, orgID).Scan(&pkgMin, &pkgMax)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("load event sponsorship inventory: %w", err)
	}
	p.PackageMin = nullFloat64Ptr(pkgMin)
	p.PackageMax = nullFloat64Ptr(pkgMax)

	err = s.eachRow(ctx, "load event deliverables", `
		SELECT edi.deliverable_type_id, dt.deliverable_name, edi.max_count
		FROM `+tblEventDeliverables+` edi
		JOIN `+tblDeliverables+` dt ON edi.deliverable_type_id = dt.deliverable_type_id
		WHERE edi.event_org_id = $1`,
		func(rows *sql.Rows) error {
			var d models.EventDeliverable
			if err := rows.Scan(&d.DeliverableTypeID, &d.DeliverableName, &d.MaxCount); err != nil {
				return err
			}
			p.DeliverablesOffered = append(p.DeliverablesOffered, d)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	err = s.eachRow(ctx, "load event age distribution", `
		SELECT ead.age_bucket_id, aab.bucket_label, aab.min_age, aab.max_age, ead.percent
		FROM `+tblEventAgeDist+` ead
		JOIN `+tblAgeBuckets+` aab ON ead.age_bucket_id = aab.age_bucket_id
		WHERE ead.event_org_id = $1`,
		func(rows *sql.Rows) error {
			var a models.AgeDistribution
			if err := rows.Scan(&a.AgeBucketID, &a.BucketLabel, &a.MinAge, &a.MaxAge, &a.Percent); err != nil {
				return err
			}
			p.AgeDistribution = append(p.AgeDistribution, a)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	err = s.eachRow(ctx, "load event audience types", `
		SELECT eatm.audience_type_id, at.type_name, eatm.weight
		FROM `+tblEventAudTypes+` eatm
		JOIN `+tblAudienceTypes+` at ON eatm.audience_type_id = at.audience_type_id
		WHERE eatm.event_org_id = $1`,
		func(rows *sql.Rows) error {
			var a models.EventAudienceType
			if err := rows.Scan(&a.AudienceTypeID, &a.TypeName, &a.Weight); err != nil {
				return err
			}
			p.AudienceTypes = append(p.AudienceTypes, a)
			return nil
		}, orgID)
	if err != nil {
		return err
	}

	return s.eachRow(ctx, "load event interest tags", `
		SELECT eitm.interest_tag_id, it.tag_name, eitm.weight
		FROM `+tblEventTags+` eitm
		JOIN `+tblInterestTags+` it ON eitm.interest_tag_id = it.interest_tag_id
		WHERE eitm.event_org_id = $1`,
		func(rows *sql.Rows) error {
			var tag models.EventInterestTag
			if err := rows.Scan(&tag.InterestTagID, &tag.TagName, &tag.Weight); err != nil {
				return err
			}
			p.InterestTags = append(p.InterestTags, tag)
			return nil
		}, orgID)
}

// -------------------------------
// Enumeration & listings
// -------------------------------

func (s *PostgresStore) ActiveBrandOrgIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT org_id
		FROM `+tblOrgs+`
		WHERE org_type = 'brand' AND is_active = true
		ORDER BY org_id`)
}

func (s *PostgresStore) ActiveEventOrgIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT org_id
		FROM `+tblOrgs+`
		WHERE org_type = 'event' AND is_active = true
		ORDER BY org_id`)
}

func (s *PostgresStore) BrandsList(ctx context.Context) ([]models.OrgSummary, error) {
	return s.queryOrgSummaries(ctx, "brand")
}

func (s *PostgresStore) EventsList(ctx context.Context) ([]models.OrgSummary, error) {
	return s.queryOrgSummaries(ctx, "event")
}

func (s *PostgresStore) queryOrgSummaries(ctx context.Context, orgType string) ([]models.OrgSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_id, org_name
		FROM `+tblOrgs+`
		WHERE org_type = $1 AND is_active = true
		ORDER BY org_id`, orgType)
	if err != nil {
		return nil, fmt.Errorf("list %s orgs: %w", orgType, err)
	}
	defer rows.Close()

	var out []models.OrgSummary
	for rows.Next() {
		var sum models.OrgSummary
		var name sql.NullString
		if err := rows.Scan(&sum.OrgID, &name); err != nil {
			return nil, err
		}
		sum.OrgName = name.String
		if sum.OrgName == "" {
			sum.OrgName = "Unnamed"
		}
		sum.Status = "active"
		out = append(out, sum)
	}
	return out, rows.Err()
}

// -------------------------------
// Match configuration
// -------------------------------

func (s *PostgresStore) WeightSet(ctx context.Context, id int64) (*models.WeightSet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			weight_category,
			weight_geo,
			weight_budget,
			weight_audience,
			weight_deliverables
		FROM `+tblWeightSets+`
		WHERE match_weight_set_id = $1 AND is_active = true`, id)

	var ws models.WeightSet
	err := row.Scan(&ws.Category, &ws.Geo, &ws.Budget, &ws.Audience, &ws.Deliverables)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load weight set %d: %w", id, err)
	}
	return &ws, nil
}

func (s *PostgresStore) RuleSet(ctx context.Context, id int64) (*models.RuleSet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			enforce_must_have_deliverables,
			enforce_city_filter,
			enforce_date_window,
			enforce_budget_overlap,
			min_budget_overlap_ratio,
			allowed_date_slack_days,
			min_audience_overlap_score,
			budget_near_boundary_ratio,
			footfall_partial_match_ratio
		FROM `+tblRuleSets+`
		WHERE match_rule_set_id = $1 AND is_active = true`, id)

	var rs models.RuleSet
	err := row.Scan(
		&rs.EnforceMustHaveDeliverables, &rs.EnforceCityFilter,
		&rs.EnforceDateWindow, &rs.EnforceBudgetOverlap,
		&rs.MinBudgetOverlapRatio, &rs.AllowedDateSlackDays,
		&rs.MinAudienceOverlapScore, &rs.BudgetNearBoundaryRatio,
		&rs.FootfallPartialMatchRatio,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rule set %d: %w", id, err)
	}
	return &rs, nil
}

// -------------------------------
// Helpers
// -------------------------------

// eachRow runs a query and applies scan to every row. Both scan failures and
// mid-iteration errors reported by rows.Err are surfaced, so a truncated
// result set can never pass as a complete one.
func (s *PostgresStore) eachRow(ctx context.Context, op, query string, scan func(*sql.Rows) error, args ...interface{}) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
