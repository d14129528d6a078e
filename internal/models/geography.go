// internal/models/geography.go
package models

// Geographic focus types a brand profile can declare. The focus type decides
// which target set (cities, states, countries) geography matching consults.
const (
	FocusLocal    = "local"
	FocusState    = "state"
	FocusNational = "national"
)

// Match levels reported by the geography resolver.
const (
	MatchLevelCity    = "city"
	MatchLevelState   = "state"
	MatchLevelCountry = "country"
)

// CityGeography is the resolved city -> state -> country hierarchy for one
// city. State and country are nullable: a city with no state (or a state with
// no country) resolves partially and downstream scoring treats the missing
// level as "no match possible".
type CityGeography struct {
	CityID      int64   `json:"city_id"`
	CityName    string  `json:"city_name"`
	CityTier    int     `json:"city_tier"`
	StateID     *int64  `json:"state_id"`
	StateName   *string `json:"state_name"`
	CountryID   *int64  `json:"country_id"`
	CountryName *string `json:"country_name"`
}

// GeoMatch is the outcome of checking an event's city against a brand's
// geographic targets.
type GeoMatch struct {
	Matches     bool   `json:"matches"`
	MatchLevel  string `json:"match_level,omitempty"`
	Explanation string `json:"explanation"`
}
