package taxonomy

import (
	"context"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// Catalog is the external location service. It is read-only from this package's view.
type Catalog interface {
	// List returns one page of entries at level in catalog order (id ascending).
	// parentID 0 lists the level without parent scoping.
	List(ctx context.Context, level location.Level, parentID int64, offset, limit int) ([]location.Entity, error)
	// FindByName returns entries at level whose normalized name equals name, in catalog order.
	FindByName(ctx context.Context, level location.Level, name string, limit int) ([]location.Entity, error)
	// Get returns a single entry or domain.ErrNotFound.
	Get(ctx context.Context, level location.Level, id int64) (location.Entity, error)
}
