package search

import (
	"sort"

	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
)

// rank returns a stably sorted copy of hits.
func rank(hits []result.Hit, strategy ranking.Strategy) []result.Hit {
	if strategy == ranking.Distance {
		return rankByDistance(hits)
	}

	out := make([]result.Hit, len(hits))
	copy(out, hits)

	var less func(a, b *result.Hit) bool
	switch strategy {
	case ranking.Popular:
		less = byPopularity
	case ranking.Salary:
		less = bySalary
	default:
		less = byRecency
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func byRecency(a, b *result.Hit) bool {
	if !a.Listing.CreatedAt.Equal(b.Listing.CreatedAt) {
		return a.Listing.CreatedAt.After(b.Listing.CreatedAt)
	}
	return a.Listing.ID > b.Listing.ID
}

func byPopularity(a, b *result.Hit) bool {
	if a.Listing.ViewCount != b.Listing.ViewCount {
		return a.Listing.ViewCount > b.Listing.ViewCount
	}
	return a.Listing.CreatedAt.After(b.Listing.CreatedAt)
}

// bySalary treats a missing bound as 0.
func bySalary(a, b *result.Hit) bool {
	if am, bm := orZero(a.Listing.SalaryMin), orZero(b.Listing.SalaryMin); am != bm {
		return am > bm
	}
	return orZero(a.Listing.SalaryMax) > orZero(b.Listing.SalaryMax)
}

// rankByDistance orders annotated hits nearest first and appends hits without a
// distance after them in their input order.
func rankByDistance(hits []result.Hit) []result.Hit {
	annotated := make([]geo.Annotation, 0, len(hits))
	var tail []result.Hit
	for i := range hits {
		if hits[i].DistanceKM == nil {
			tail = append(tail, hits[i])
			continue
		}
		annotated = append(annotated, geo.Annotation{EntityID: int64(i), DistanceKM: *hits[i].DistanceKM})
	}

	out := make([]result.Hit, 0, len(hits))
	for _, a := range geo.SortByDistance(annotated) {
		out = append(out, hits[a.EntityID])
	}
	return append(out, tail...)
}

func orZero(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
