package slug

import (
	"context"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// Taxonomy is the subset of the location taxonomy the resolver reads.
type Taxonomy interface {
	FindByName(ctx context.Context, level location.Level, name string) []location.Entity
	Lineage(ctx context.Context, level location.Level, id int64) (location.Lineage, error)
}
