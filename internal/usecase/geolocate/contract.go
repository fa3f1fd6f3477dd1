package geolocate

import (
	"context"

	"github.com/kailas-cloud/jobscout/internal/domain/geo"
)

// Provider is a source of the user's current position.
type Provider interface {
	// Name labels metrics and logs.
	Name() string
	CurrentPosition(ctx context.Context) (geo.Point, error)
}
