package chi

import (
	"github.com/kailas-cloud/jobscout/internal/domain/listing"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeFacetOrder        ErrorResponseCode = "facet_order_violation"
	ErrorResponseCodeProximityRequired ErrorResponseCode = "proximity_required"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeStoreUnavailable  ErrorResponseCode = "store_unavailable"
	ErrorResponseCodeCacheDisabled     ErrorResponseCode = "cache_disabled"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	// Facet and Missing are set for facet order violations.
	Facet   *string `json:"facet,omitempty"`
	Missing *string `json:"missing,omitempty"`
}

// SearchListingsParams defines parameters for SearchListings.
// Facet keys (country_id, q, salary_min, lat, ...) are read from the raw query string.
type SearchListingsParams struct {
	Location *string  `form:"location,omitempty" json:"location,omitempty"`
	Near     *string  `form:"near,omitempty" json:"near,omitempty"`
	Sort     *string  `form:"sort,omitempty" json:"sort,omitempty"`
	Page     *int     `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int     `form:"page_size,omitempty" json:"page_size,omitempty"`
	RadiusKm *float64 `form:"radius_km,omitempty" json:"radius_km,omitempty"`
}

// ListLocationsParams defines parameters for ListLocations.
type ListLocationsParams struct {
	ParentId *int64 `form:"parent_id,omitempty" json:"parent_id,omitempty"` //nolint:revive // generated-style name
	Offset   *int   `form:"offset,omitempty" json:"offset,omitempty"`
	Limit    *int   `form:"limit,omitempty" json:"limit,omitempty"`
}

// SearchResultItem is a listing with its distance from the proximity center.
type SearchResultItem struct {
	listing.Listing
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// GeolocationInfo reports how a "near me" position was acquired.
type GeolocationInfo struct {
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// SearchResponse is one page of ranked listings.
type SearchResponse struct {
	Items       []SearchResultItem `json:"items"`
	Total       int                `json:"total"`
	TotalSource string             `json:"total_source"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	HasMore     bool               `json:"has_more"`
	Truncated   bool               `json:"truncated,omitempty"`
	Sort        string             `json:"sort"`
	// Filter is the normalized facet query string, suitable for the next request.
	Filter      string             `json:"filter"`
	Location    *location.Resolved `json:"location,omitempty"`
	Geolocation *GeolocationInfo   `json:"geolocation,omitempty"`
}

// LocationEntity is one catalog entry.
type LocationEntity struct {
	Id        int64  `json:"id"` //nolint:revive // generated-style name
	Name      string `json:"name"`
	Level     string `json:"level"`
	ParentId  *int64 `json:"parent_id,omitempty"`  //nolint:revive // generated-style name
	CountryId *int64 `json:"country_id,omitempty"` //nolint:revive // generated-style name
}

// LocationListResponse is a page of catalog entries.
type LocationListResponse struct {
	Items  []LocationEntity `json:"items"`
	Level  string           `json:"level"`
	Offset int              `json:"offset"`
	Count  int              `json:"count"`
}

// ChangeRequest is one facet transition. Only the fields relevant to Facet are read.
type ChangeRequest struct {
	Facet     string   `json:"facet"`
	Id        *int64   `json:"id,omitempty"` //nolint:revive // generated-style name
	Text      *string  `json:"text,omitempty"`
	Min       *int64   `json:"min,omitempty"`
	Max       *int64   `json:"max,omitempty"`
	Featured  *bool    `json:"featured,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  *float64 `json:"radius_km,omitempty"`
}

// DeriveFilterRequest applies Change to the filter encoded as a query string.
type DeriveFilterRequest struct {
	Filter string        `json:"filter"`
	Change ChangeRequest `json:"change"`
}

// DeriveFilterResponse carries the normalized next filter.
type DeriveFilterResponse struct {
	Filter string `json:"filter"`
}

// PurgeCacheResponse reports how many cache entries were dropped.
type PurgeCacheResponse struct {
	Purged int `json:"purged"`
}

// HealthResponse is the aggregated health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
