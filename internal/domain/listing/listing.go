// Package listing holds the job listing read model consumed from the external store.
package listing

import (
	"time"

	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
)

// Listing is a job posting as returned by the listing store. Nil pointers are absent values.
type Listing struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	EmployerName string    `json:"employer_name,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	TypeName     string    `json:"type_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ViewCount    int64     `json:"view_count"`
	IsFeatured   bool      `json:"is_featured"`

	SalaryMin     *int64 `json:"salary_min,omitempty"`
	SalaryMax     *int64 `json:"salary_max,omitempty"`
	ExperienceMin *int64 `json:"experience_min,omitempty"`
	ExperienceMax *int64 `json:"experience_max,omitempty"`

	JobTypeID     *int64 `json:"job_type_id,omitempty"`
	JobCategoryID *int64 `json:"job_category_id,omitempty"`

	CountryID *int64 `json:"country_id,omitempty"`
	StateID   *int64 `json:"state_id,omitempty"`
	CityID    *int64 `json:"city_id,omitempty"`
	AreaID    *int64 `json:"area_id,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Candidate returns the proximity view of the listing.
func (l *Listing) Candidate() geo.Candidate {
	return geo.Candidate{ID: l.ID, Latitude: l.Latitude, Longitude: l.Longitude}
}

// Params are the server-filterable facets pushed down to the listing store.
// Nil pointers impose no constraint.
type Params struct {
	CountryID     *int64
	StateID       *int64
	CityID        *int64
	AreaID        *int64
	SalaryMin     *int64
	SalaryMax     *int64
	ExperienceMin *int64
	ExperienceMax *int64
	JobTypeID     *int64
	JobCategoryID *int64
	Featured      *bool

	// Sort is the push-down ordering. Distance is never pushed down.
	Sort ranking.Strategy
}
