package session

import (
	"context"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
)

// Taxonomy provides the dependent option lists.
type Taxonomy interface {
	StatesOf(ctx context.Context, countryID int64) []location.State
	CitiesOf(ctx context.Context, stateID int64) []location.City
	AreasOf(ctx context.Context, cityID int64) []location.Area
}

// Searcher runs a listing search.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
}
