package geo

import "sort"

// Candidate is an entity that may carry coordinates.
type Candidate struct {
	ID        int64
	Latitude  *float64
	Longitude *float64
}

// Annotation is the computed distance of one entity from a search center.
type Annotation struct {
	EntityID   int64
	DistanceKM float64
}

// WithinRadius annotates every candidate whose distance from center is at most radiusKM.
// Candidates without both coordinates are skipped. Input order is preserved.
func WithinRadius(center Point, radiusKM float64, candidates []Candidate) []Annotation {
	out := make([]Annotation, 0, len(candidates))
	for _, c := range candidates {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		d := DistanceKM(center.Latitude, center.Longitude, *c.Latitude, *c.Longitude)
		if d <= radiusKM {
			out = append(out, Annotation{EntityID: c.ID, DistanceKM: d})
		}
	}
	return out
}

// SortByDistance returns a copy of annotated ordered by ascending distance.
// Equal distances keep their input order.
func SortByDistance(annotated []Annotation) []Annotation {
	out := make([]Annotation, len(annotated))
	copy(out, annotated)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})
	return out
}
