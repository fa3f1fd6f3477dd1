package location

// Confidence grades how much of a slug was explained by the taxonomy.
type Confidence string

// Confidence values.
const (
	// Exact means every word of the slug was consumed by a consistent match.
	Exact Confidence = "exact"
	// Partial means some words matched and some were left over.
	Partial Confidence = "partial"
	// Unresolved means nothing matched; no location filter applies.
	Unresolved Confidence = "unresolved"
)

// MatchedNames are the catalog names actually found in the slug.
type MatchedNames struct {
	Area  string `json:"area,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// Resolved is the outcome of resolving a location slug. Zero IDs are absent.
type Resolved struct {
	CountryID    int64        `json:"country_id,omitempty"`
	StateID      int64        `json:"state_id,omitempty"`
	CityID       int64        `json:"city_id,omitempty"`
	AreaID       int64        `json:"area_id,omitempty"`
	MatchedNames MatchedNames `json:"matched_names"`
	Confidence   Confidence   `json:"confidence"`
	// Display is the breadcrumb text: the literal slug title-cased when unresolved.
	Display string `json:"display"`
}

// IsResolved reports whether any location id was fixed.
func (r Resolved) IsResolved() bool {
	return r.Confidence != Unresolved && (r.CountryID != 0 || r.StateID != 0 || r.CityID != 0 || r.AreaID != 0)
}
