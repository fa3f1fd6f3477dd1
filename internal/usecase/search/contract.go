package search

import (
	"context"

	"github.com/kailas-cloud/jobscout/internal/domain/listing"
)

// ListingStore is the external listing service. Results honor params.Sort when set.
type ListingStore interface {
	Search(ctx context.Context, params listing.Params, limit, offset int) ([]listing.Listing, error)
	Count(ctx context.Context, params listing.Params) (int, error)
}
