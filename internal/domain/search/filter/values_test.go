package filter

import (
	"errors"
	"net/url"
	"testing"

	"github.com/kailas-cloud/jobscout/internal/domain"
)

func TestValues_RoundTrip(t *testing.T) {
	featured := true
	f := mustCompose(t,
		SetCountry(1), SetState(10), SetCity(100), SetArea(1000),
		SetText("go developer"),
		SetSalary(i64(20000), i64(40000)),
		SetExperience(nil, i64(3)),
		SetJobType(2), SetJobCategory(5),
		SetFeatured(&featured),
		SetProximity(Proximity{Latitude: 19.076, Longitude: 72.8777, RadiusKM: 12.5}),
	)

	got, err := FromValues(f.Values())
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	if got.Values().Encode() != f.Values().Encode() {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", got.Values().Encode(), f.Values().Encode())
	}
}

func TestValues_EmptyFilter(t *testing.T) {
	if enc := (Filter{}).Values().Encode(); enc != "" {
		t.Fatalf("want empty query, got %q", enc)
	}
	f, err := FromValues(url.Values{})
	if err != nil || !f.IsEmpty() {
		t.Fatalf("want empty filter, got %+v err=%v", f, err)
	}
}

func TestFromValues_NaNRadiusTakesDefault(t *testing.T) {
	f, err := FromValues(url.Values{"lat": {"19.07"}, "lon": {"72.87"}, "radius_km": {"NaN"}})
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	p, ok := f.Proximity()
	if !ok || p.RadiusKM != DefaultRadiusKM {
		t.Fatalf("proximity = %+v ok=%v, want default radius", p, ok)
	}
	if got := f.Values().Get(KeyRadius); got != "10" {
		t.Errorf("encoded radius = %q, want 10", got)
	}
}

func TestFromValues_OrderViolation(t *testing.T) {
	_, err := FromValues(url.Values{"city_id": {"100"}, "country_id": {"1"}})
	if !errors.Is(err, domain.ErrFacetOrder) {
		t.Fatalf("expected ErrFacetOrder, got %v", err)
	}
}

func TestFromValues_Invalid(t *testing.T) {
	tests := []url.Values{
		{"country_id": {"abc"}},
		{"country_id": {"-3"}},
		{"salary_min": {"lots"}},
		{"featured": {"maybe"}},
		{"lat": {"19"}},
		{"lat": {"x"}, "lon": {"1"}},
		{"lat": {"1"}, "lon": {"1"}, "radius_km": {"far"}},
	}
	for _, v := range tests {
		if _, err := FromValues(v); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("%s: expected ErrInvalidRequest, got %v", v.Encode(), err)
		}
	}
}

func TestFromValues_SwapsRanges(t *testing.T) {
	f, err := FromValues(url.Values{"salary_min": {"50"}, "salary_max": {"10"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo, hi := f.Salary(); *lo != 10 || *hi != 50 {
		t.Fatalf("not swapped: %d..%d", *lo, *hi)
	}
}
