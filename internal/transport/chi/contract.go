package chi

import (
	"context"
	"net/http"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
	"github.com/kailas-cloud/jobscout/internal/usecase/geolocate"
	healthuc "github.com/kailas-cloud/jobscout/internal/usecase/health"
)

// Taxonomy serves the location option lists.
type Taxonomy interface {
	All(ctx context.Context, level location.Level, parentID int64, offset, limit int) []location.Entity
	StatesOf(ctx context.Context, countryID int64) []location.State
	CitiesOf(ctx context.Context, stateID int64) []location.City
	AreasOf(ctx context.Context, cityID int64) []location.Area
}

// SlugResolver maps a location slug to hierarchy ids.
type SlugResolver interface {
	Resolve(ctx context.Context, slug string) location.Resolved
}

// Searcher runs a validated search request.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
}

// Geolocator acquires a position from a provider under a timeout.
type Geolocator interface {
	Acquire(ctx context.Context, p geolocate.Provider) geolocate.Result
}

// ProviderFunc picks the position provider for a request. A nil provider means none is available.
type ProviderFunc func(r *http.Request) geolocate.Provider

// CachePurger drops cached catalog entries.
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

// HealthChecker aggregates backend health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
