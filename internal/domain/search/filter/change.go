package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/geo"
)

// Facet names a single search constraint.
type Facet string

// Facet names double as query-string keys where a facet maps to one key.
const (
	FacetCountry     Facet = "country_id"
	FacetState       Facet = "state_id"
	FacetCity        Facet = "city_id"
	FacetArea        Facet = "area_id"
	FacetLocation    Facet = "location"
	FacetText        Facet = "q"
	FacetSalary      Facet = "salary"
	FacetExperience  Facet = "experience"
	FacetJobType     Facet = "job_type_id"
	FacetJobCategory Facet = "job_category_id"
	FacetFeatured    Facet = "featured"
	FacetProximity   Facet = "proximity"
)

// FacetOrderError is returned when a descendant location facet is set before its ancestor.
type FacetOrderError struct {
	Facet   Facet
	Missing Facet
}

func (e *FacetOrderError) Error() string {
	return fmt.Sprintf("%s: %s requires %s", domain.ErrFacetOrder.Error(), e.Facet, e.Missing)
}

func (e *FacetOrderError) Unwrap() error { return domain.ErrFacetOrder }

// Change is one facet transition. Build it with the Set*/Clear* constructors.
type Change struct {
	facet     Facet
	id        int64
	text      string
	lo, hi    *int64
	flag      *bool
	proximity *Proximity
	location  Location
}

// Facet returns the facet the change applies to.
func (c Change) Facet() Facet { return c.facet }

// SetCountry selects a country; id 0 clears it.
func SetCountry(id int64) Change { return Change{facet: FacetCountry, id: id} }

// SetState selects a state; id 0 clears it.
func SetState(id int64) Change { return Change{facet: FacetState, id: id} }

// SetCity selects a city; id 0 clears it.
func SetCity(id int64) Change { return Change{facet: FacetCity, id: id} }

// SetArea selects an area; id 0 clears it.
func SetArea(id int64) Change { return Change{facet: FacetArea, id: id} }

// ClearCountry clears the country and every descendant.
func ClearCountry() Change { return SetCountry(0) }

// ClearState clears the state, city and area.
func ClearState() Change { return SetState(0) }

// ClearCity clears the city and area.
func ClearCity() Change { return SetCity(0) }

// ClearArea clears the area.
func ClearArea() Change { return SetArea(0) }

// SetLocation replaces the whole hierarchy at once, e.g. with a chain derived by slug resolution.
func SetLocation(l Location) Change { return Change{facet: FacetLocation, location: l} }

// SetText sets the free-text query; blank text clears it.
func SetText(q string) Change { return Change{facet: FacetText, text: q} }

// SetSalary sets the salary bounds; both nil clears them.
func SetSalary(minSalary, maxSalary *int64) Change {
	return Change{facet: FacetSalary, lo: copyInt(minSalary), hi: copyInt(maxSalary)}
}

// SetExperience sets the experience bounds in years; both nil clears them.
func SetExperience(minYears, maxYears *int64) Change {
	return Change{facet: FacetExperience, lo: copyInt(minYears), hi: copyInt(maxYears)}
}

// SetJobType selects a job type; id 0 clears it.
func SetJobType(id int64) Change { return Change{facet: FacetJobType, id: id} }

// SetJobCategory selects a job category; id 0 clears it.
func SetJobCategory(id int64) Change { return Change{facet: FacetJobCategory, id: id} }

// SetFeatured sets the featured flag; nil clears it.
func SetFeatured(featured *bool) Change {
	c := Change{facet: FacetFeatured}
	if featured != nil {
		v := *featured
		c.flag = &v
	}
	return c
}

// SetProximity sets the proximity center and radius.
func SetProximity(p Proximity) Change { return Change{facet: FacetProximity, proximity: &p} }

// ClearProximity removes the proximity facet.
func ClearProximity() Change { return Change{facet: FacetProximity} }

// Derive applies one change to prev and returns the resulting filter.
// prev is never modified. Descendant location facets are cleared whenever an
// ancestor is set or cleared.
func Derive(prev Filter, c Change) (Filter, error) {
	next := prev
	loc := prev.location

	switch c.facet {
	case FacetCountry:
		next.location = Location{CountryID: c.id}
	case FacetState:
		if c.id != 0 && loc.CountryID == 0 {
			return prev, &FacetOrderError{Facet: FacetState, Missing: FacetCountry}
		}
		next.location = Location{CountryID: loc.CountryID, StateID: c.id}
	case FacetCity:
		if c.id != 0 && loc.StateID == 0 {
			return prev, &FacetOrderError{Facet: FacetCity, Missing: FacetState}
		}
		next.location = Location{CountryID: loc.CountryID, StateID: loc.StateID, CityID: c.id}
	case FacetArea:
		if c.id != 0 && loc.CityID == 0 {
			return prev, &FacetOrderError{Facet: FacetArea, Missing: FacetCity}
		}
		next.location = Location{CountryID: loc.CountryID, StateID: loc.StateID, CityID: loc.CityID, AreaID: c.id}
	case FacetLocation:
		if err := checkChain(c.location); err != nil {
			return prev, err
		}
		next.location = c.location
	case FacetText:
		next.text = normalizeText(c.text)
	case FacetSalary:
		next.salary = newBounds(c.lo, c.hi)
	case FacetExperience:
		next.experience = newBounds(c.lo, c.hi)
	case FacetJobType:
		next.jobType = c.id
	case FacetJobCategory:
		next.jobCategory = c.id
	case FacetFeatured:
		next.featured = c.flag
	case FacetProximity:
		next.proximity = normalizeProximity(c.proximity)
	default:
		return prev, fmt.Errorf("unknown facet %q: %w", c.facet, domain.ErrInvalidRequest)
	}

	return next, nil
}

// Compose folds changes into the empty filter in order.
func Compose(changes ...Change) (Filter, error) {
	var f Filter
	for _, c := range changes {
		var err error
		if f, err = Derive(f, c); err != nil {
			return Filter{}, err
		}
	}
	return f, nil
}

// checkChain rejects a hierarchy with a gap below a set level.
func checkChain(l Location) error {
	switch {
	case l.AreaID != 0 && l.CityID == 0:
		return &FacetOrderError{Facet: FacetArea, Missing: FacetCity}
	case l.CityID != 0 && l.StateID == 0:
		return &FacetOrderError{Facet: FacetCity, Missing: FacetState}
	case l.StateID != 0 && l.CountryID == 0:
		return &FacetOrderError{Facet: FacetState, Missing: FacetCountry}
	}
	return nil
}

func normalizeText(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if r := []rune(q); len(r) > MaxTextLength {
		q = strings.TrimSpace(string(r[:MaxTextLength]))
	}
	return q
}

// normalizeProximity clamps the radius and drops a center with invalid coordinates.
// A NaN radius takes the default; +Inf is clamped to the maximum.
func normalizeProximity(p *Proximity) *Proximity {
	if p == nil || !geo.ValidateCoordinates(p.Latitude, p.Longitude) {
		return nil
	}
	out := *p
	if out.RadiusKM <= 0 || math.IsNaN(out.RadiusKM) {
		out.RadiusKM = DefaultRadiusKM
	}
	if out.RadiusKM > MaxRadiusKM {
		out.RadiusKM = MaxRadiusKM
	}
	return &out
}

func copyInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
