package filter

import (
	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/domain/listing"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
)

// Proximity radius limits in kilometers.
const (
	DefaultRadiusKM = 10.0
	MaxRadiusKM     = 500.0
)

// MaxTextLength is the maximum allowed free-text query length.
const MaxTextLength = 256

// Location is the hierarchy facet. Zero IDs are absent.
type Location struct {
	CountryID int64
	StateID   int64
	CityID    int64
	AreaID    int64
}

// IsEmpty reports whether no hierarchy level is set.
func (l Location) IsEmpty() bool {
	return l.CountryID == 0 && l.StateID == 0 && l.CityID == 0 && l.AreaID == 0
}

// Proximity is a search center and radius.
type Proximity struct {
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

// Center returns the proximity center as a point.
func (p Proximity) Center() geo.Point {
	return geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
}

// optInt is an optional integer that never aliases caller memory.
type optInt struct {
	v  int64
	ok bool
}

func someInt(p *int64) optInt {
	if p == nil {
		return optInt{}
	}
	return optInt{v: *p, ok: true}
}

func (o optInt) ptr() *int64 {
	if !o.ok {
		return nil
	}
	v := o.v
	return &v
}

// bounds is a normalized [min, max] pair; min <= max when both are set.
type bounds struct {
	min optInt
	max optInt
}

func newBounds(lo, hi *int64) bounds {
	b := bounds{min: someInt(lo), max: someInt(hi)}
	if b.min.ok && b.max.ok && b.min.v > b.max.v {
		b.min, b.max = b.max, b.min
	}
	return b
}

func (b bounds) isSet() bool { return b.min.ok || b.max.ok }

// Filter is the composed search filter (immutable value object).
// The zero value denotes "no constraints".
type Filter struct {
	text        string
	location    Location
	salary      bounds
	experience  bounds
	jobType     int64
	jobCategory int64
	featured    *bool
	proximity   *Proximity
}

// Text returns the free-text query ("" when absent).
func (f Filter) Text() string { return f.text }

// Location returns the hierarchy facet.
func (f Filter) Location() Location { return f.location }

// Salary returns the normalized salary bounds. Nil is absent.
func (f Filter) Salary() (minSalary, maxSalary *int64) { return f.salary.min.ptr(), f.salary.max.ptr() }

// Experience returns the normalized experience bounds. Nil is absent.
func (f Filter) Experience() (minYears, maxYears *int64) {
	return f.experience.min.ptr(), f.experience.max.ptr()
}

// JobTypeID returns the job type facet (0 when absent).
func (f Filter) JobTypeID() int64 { return f.jobType }

// JobCategoryID returns the job category facet (0 when absent).
func (f Filter) JobCategoryID() int64 { return f.jobCategory }

// Featured returns the featured flag and whether it is set.
func (f Filter) Featured() (featured, ok bool) {
	if f.featured == nil {
		return false, false
	}
	return *f.featured, true
}

// Proximity returns the proximity facet and whether it is set.
func (f Filter) Proximity() (Proximity, bool) {
	if f.proximity == nil {
		return Proximity{}, false
	}
	return *f.proximity, true
}

// IsEmpty reports whether the filter imposes no constraint at all.
func (f Filter) IsEmpty() bool {
	return f.text == "" && f.location.IsEmpty() && !f.salary.isSet() && !f.experience.isSet() &&
		f.jobType == 0 && f.jobCategory == 0 && f.featured == nil && f.proximity == nil
}

// HasClientFacets reports whether a facet the listing store cannot evaluate is active
// (free text or proximity). Counts reported by the store are then not authoritative.
func (f Filter) HasClientFacets() bool {
	return f.text != "" || f.proximity != nil
}

// StoreParams extracts the server-filterable facets for the listing store.
func (f Filter) StoreParams(sort ranking.Strategy) listing.Params {
	p := listing.Params{
		SalaryMin:     f.salary.min.ptr(),
		SalaryMax:     f.salary.max.ptr(),
		ExperienceMin: f.experience.min.ptr(),
		ExperienceMax: f.experience.max.ptr(),
		CountryID:     idPtr(f.location.CountryID),
		StateID:       idPtr(f.location.StateID),
		CityID:        idPtr(f.location.CityID),
		AreaID:        idPtr(f.location.AreaID),
		JobTypeID:     idPtr(f.jobType),
		JobCategoryID: idPtr(f.jobCategory),
	}
	if f.featured != nil {
		v := *f.featured
		p.Featured = &v
	}
	if sort != ranking.Distance {
		p.Sort = sort
	}
	return p
}

// Admits applies the hierarchy, range, category, type and featured facets to a listing.
// Free text and proximity are evaluated separately.
func (f Filter) Admits(l *listing.Listing) bool {
	if !idMatches(f.location.CountryID, l.CountryID) ||
		!idMatches(f.location.StateID, l.StateID) ||
		!idMatches(f.location.CityID, l.CityID) ||
		!idMatches(f.location.AreaID, l.AreaID) {
		return false
	}
	if !idMatches(f.jobType, l.JobTypeID) || !idMatches(f.jobCategory, l.JobCategoryID) {
		return false
	}
	if f.featured != nil && l.IsFeatured != *f.featured {
		return false
	}
	if !listing.InRange(l.SalaryMin, l.SalaryMax, f.salary.min.ptr(), f.salary.max.ptr()) {
		return false
	}
	return listing.InRange(l.ExperienceMin, l.ExperienceMax, f.experience.min.ptr(), f.experience.max.ptr())
}

func idMatches(want int64, got *int64) bool {
	if want == 0 {
		return true
	}
	return got != nil && *got == want
}

func idPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
