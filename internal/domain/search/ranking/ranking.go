package ranking

// Strategy is the ordering applied to a filtered result set.
type Strategy string

// Ranking strategy constants.
const (
	// Recent orders by created_at desc, then id desc.
	Recent Strategy = "recent"
	// Popular orders by view_count desc, then created_at desc.
	Popular Strategy = "popular"
	// Salary orders by salary_min desc, then salary_max desc.
	Salary Strategy = "salary"
	// Distance orders by distance from the proximity center, nearest first.
	Distance Strategy = "distance"
)

// Default is used when the caller names no strategy.
const Default = Recent

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Recent || s == Popular || s == Salary || s == Distance
}

// NeedsProximity reports whether the strategy requires a proximity center.
func (s Strategy) NeedsProximity() bool {
	return s == Distance
}
