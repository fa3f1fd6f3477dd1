package domain

import (
	"errors"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed search or taxonomy parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrFacetOrder signals a descendant location facet set without its ancestor.
	ErrFacetOrder = errors.New("facet order violation")
	// ErrProximityRequired signals distance ranking requested without a proximity center.
	ErrProximityRequired = errors.New("distance sort requires a proximity center")
	// ErrIntegrity signals a catalog row that contradicts the location hierarchy.
	ErrIntegrity = errors.New("location catalog integrity violation")

	// ErrGeolocationDenied signals that the user refused to share a position.
	ErrGeolocationDenied = errors.New("geolocation permission denied")
	// ErrGeolocationUnsupported signals that no position source is available.
	ErrGeolocationUnsupported = errors.New("geolocation unsupported")

	// ErrStoreUnavailable signals a failure of the external listing store.
	ErrStoreUnavailable = errors.New("listing store unavailable")
)
