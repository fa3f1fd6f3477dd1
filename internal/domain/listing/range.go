package listing

// InRange applies the range facet rule to a listing's [lo, hi] pair:
// the listing passes min when its upper bound (hi, else lo) is at least min,
// and passes max when its lower bound (lo, else hi) is at most max.
// A listing with neither bound fails any active facet bound.
func InRange(lo, hi, minBound, maxBound *int64) bool {
	if minBound == nil && maxBound == nil {
		return true
	}
	upper := hi
	if upper == nil {
		upper = lo
	}
	lower := lo
	if lower == nil {
		lower = hi
	}
	if upper == nil {
		return false
	}
	if minBound != nil && *upper < *minBound {
		return false
	}
	if maxBound != nil && *lower > *maxBound {
		return false
	}
	return true
}
