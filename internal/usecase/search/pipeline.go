package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/domain/listing"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
)

// Run filters, ranks and paginates a candidate batch in a fixed order:
// facet predicates, free text, proximity, rank, paginate.
// The total is the length of the ranked sequence.
func Run(candidates []listing.Listing, f filter.Filter, strategy ranking.Strategy, page, pageSize int) result.Page {
	ranked := rank(filterHits(candidates, f), strategy)
	return result.Page{
		Items:       paginate(ranked, page, pageSize),
		Total:       len(ranked),
		TotalSource: result.SourcePipeline,
		Page:        page,
		PageSize:    pageSize,
	}
}

// filterHits applies steps 1-3. Input order is preserved.
func filterHits(candidates []listing.Listing, f filter.Filter) []result.Hit {
	match := newTextMatcher(f.Text())
	hits := make([]result.Hit, 0, len(candidates))
	for i := range candidates {
		l := &candidates[i]
		if !f.Admits(l) || !match.matches(l) {
			continue
		}
		hits = append(hits, result.Hit{Listing: *l})
	}

	p, ok := f.Proximity()
	if !ok {
		return hits
	}

	// Candidates are keyed by hit index so duplicate listing ids keep their own distance.
	geoCandidates := make([]geo.Candidate, len(hits))
	for i := range hits {
		geoCandidates[i] = hits[i].Listing.Candidate()
		geoCandidates[i].ID = int64(i)
	}
	near := geo.WithinRadius(p.Center(), p.RadiusKM, geoCandidates)
	out := make([]result.Hit, 0, len(near))
	for _, a := range near {
		h := hits[a.EntityID]
		d := a.DistanceKM
		h.DistanceKM = &d
		out = append(out, h)
	}
	return out
}

// paginate returns the 1-based page window. Beyond the end it is empty.
func paginate(hits []result.Hit, page, pageSize int) []result.Hit {
	if page <= 0 || pageSize <= 0 {
		return []result.Hit{}
	}
	if pages := (len(hits) + pageSize - 1) / pageSize; page > pages {
		return []result.Hit{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(hits))
	return hits[start:end]
}

// textMatcher is a case-folded substring match over the listing's text fields.
type textMatcher struct {
	needle string
	fold   cases.Caser
}

func newTextMatcher(q string) *textMatcher {
	if q == "" {
		return nil
	}
	fold := cases.Fold()
	return &textMatcher{needle: fold.String(q), fold: fold}
}

func (m *textMatcher) matches(l *listing.Listing) bool {
	if m == nil {
		return true
	}
	for _, field := range []string{l.Title, l.Description, l.EmployerName, l.CategoryName, l.TypeName} {
		if field != "" && strings.Contains(m.fold.String(field), m.needle) {
			return true
		}
	}
	return false
}
