package result

import "github.com/kailas-cloud/jobscout/internal/domain/listing"

// TotalSource tells where a result total came from.
type TotalSource string

const (
	// SourceStore means the listing store's count is authoritative.
	SourceStore TotalSource = "store"
	// SourcePipeline means the total is the length of the locally ranked sequence.
	SourcePipeline TotalSource = "pipeline"
)

// Hit is a ranked listing with its distance from the proximity center, when computed.
type Hit struct {
	Listing    listing.Listing
	DistanceKM *float64
}

// Page is one page of ranked hits.
type Page struct {
	Items       []Hit
	Total       int
	TotalSource TotalSource
	Page        int
	PageSize    int
	// Truncated is set when client-side filters ran over a full candidate batch,
	// so listings beyond the batch were never considered.
	Truncated bool
}

// HasMore reports whether another page exists after this one.
func (p *Page) HasMore() bool {
	if p.PageSize <= 0 {
		return false
	}
	return p.Page < (p.Total+p.PageSize-1)/p.PageSize
}
