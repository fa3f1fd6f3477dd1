package filter

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/jobscout/internal/domain"
)

// Query-string keys that do not map one-to-one to a facet name.
const (
	KeySalaryMin     = "salary_min"
	KeySalaryMax     = "salary_max"
	KeyExperienceMin = "experience_min"
	KeyExperienceMax = "experience_max"
	KeyLatitude      = "lat"
	KeyLongitude     = "lon"
	KeyRadius        = "radius_km"
)

// Values serializes the filter to query-string values. Absent facets are omitted.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.text != "" {
		v.Set(string(FacetText), f.text)
	}
	setID(v, FacetCountry, f.location.CountryID)
	setID(v, FacetState, f.location.StateID)
	setID(v, FacetCity, f.location.CityID)
	setID(v, FacetArea, f.location.AreaID)
	setOpt(v, KeySalaryMin, f.salary.min)
	setOpt(v, KeySalaryMax, f.salary.max)
	setOpt(v, KeyExperienceMin, f.experience.min)
	setOpt(v, KeyExperienceMax, f.experience.max)
	setID(v, FacetJobType, f.jobType)
	setID(v, FacetJobCategory, f.jobCategory)
	if f.featured != nil {
		v.Set(string(FacetFeatured), strconv.FormatBool(*f.featured))
	}
	if p := f.proximity; p != nil {
		v.Set(KeyLatitude, strconv.FormatFloat(p.Latitude, 'f', -1, 64))
		v.Set(KeyLongitude, strconv.FormatFloat(p.Longitude, 'f', -1, 64))
		v.Set(KeyRadius, strconv.FormatFloat(p.RadiusKM, 'f', -1, 64))
	}
	return v
}

// FromValues parses query-string values into a filter. Location levels are applied
// root first, so a descendant without its ancestor yields a FacetOrderError.
// Unknown keys are ignored.
func FromValues(v url.Values) (Filter, error) {
	var changes []Change

	for _, lv := range []struct {
		facet Facet
		set   func(int64) Change
	}{
		{FacetCountry, SetCountry},
		{FacetState, SetState},
		{FacetCity, SetCity},
		{FacetArea, SetArea},
	} {
		id, err := parseID(v, string(lv.facet))
		if err != nil {
			return Filter{}, err
		}
		if id != 0 {
			changes = append(changes, lv.set(id))
		}
	}

	if q := v.Get(string(FacetText)); q != "" {
		changes = append(changes, SetText(q))
	}

	salMin, err := parseOptInt(v, KeySalaryMin)
	if err != nil {
		return Filter{}, err
	}
	salMax, err := parseOptInt(v, KeySalaryMax)
	if err != nil {
		return Filter{}, err
	}
	if salMin != nil || salMax != nil {
		changes = append(changes, SetSalary(salMin, salMax))
	}

	expMin, err := parseOptInt(v, KeyExperienceMin)
	if err != nil {
		return Filter{}, err
	}
	expMax, err := parseOptInt(v, KeyExperienceMax)
	if err != nil {
		return Filter{}, err
	}
	if expMin != nil || expMax != nil {
		changes = append(changes, SetExperience(expMin, expMax))
	}

	jobType, err := parseID(v, string(FacetJobType))
	if err != nil {
		return Filter{}, err
	}
	if jobType != 0 {
		changes = append(changes, SetJobType(jobType))
	}
	jobCategory, err := parseID(v, string(FacetJobCategory))
	if err != nil {
		return Filter{}, err
	}
	if jobCategory != 0 {
		changes = append(changes, SetJobCategory(jobCategory))
	}

	if raw := v.Get(string(FacetFeatured)); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid %s %q: %w", FacetFeatured, raw, domain.ErrInvalidRequest)
		}
		changes = append(changes, SetFeatured(&b))
	}

	prox, err := parseProximity(v)
	if err != nil {
		return Filter{}, err
	}
	if prox != nil {
		changes = append(changes, SetProximity(*prox))
	}

	return Compose(changes...)
}

func parseProximity(v url.Values) (*Proximity, error) {
	latRaw, lonRaw := v.Get(KeyLatitude), v.Get(KeyLongitude)
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lonRaw == "" {
		return nil, fmt.Errorf("%s and %s must be given together: %w", KeyLatitude, KeyLongitude, domain.ErrInvalidRequest)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", KeyLatitude, latRaw, domain.ErrInvalidRequest)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", KeyLongitude, lonRaw, domain.ErrInvalidRequest)
	}
	p := &Proximity{Latitude: lat, Longitude: lon}
	if raw := v.Get(KeyRadius); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", KeyRadius, raw, domain.ErrInvalidRequest)
		}
		p.RadiusKM = r
	}
	return p, nil
}

func parseID(v url.Values, key string) (int64, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, domain.ErrInvalidRequest)
	}
	return id, nil
}

func parseOptInt(v url.Values, key string) (*int64, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, domain.ErrInvalidRequest)
	}
	return &n, nil
}

func setID(v url.Values, f Facet, id int64) {
	if id != 0 {
		v.Set(string(f), strconv.FormatInt(id, 10))
	}
}

func setOpt(v url.Values, key string, o optInt) {
	if o.ok {
		v.Set(key, strconv.FormatInt(o.v, 10))
	}
}
