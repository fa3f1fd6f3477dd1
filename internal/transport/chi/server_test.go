package chi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/jobscout/internal/usecase/health"
)

func TestSearchListings_FacetsAndPaging(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.page = result.Page{Items: sampleListings(), Total: 12, TotalSource: result.SourceStore}

	rr := env.do(t, http.MethodGet, "/search?country_id=1&state_id=10&sort=popular&page=2&page_size=5", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	req := env.searcher.lastReq
	if req.Strategy() != ranking.Popular || req.Page() != 2 || req.PageSize() != 5 {
		t.Fatalf("unexpected request: sort=%s page=%d size=%d", req.Strategy(), req.Page(), req.PageSize())
	}
	if loc := req.Filter().Location(); loc.CountryID != 1 || loc.StateID != 10 {
		t.Fatalf("unexpected location facet: %+v", loc)
	}

	resp := decode[SearchResponse](t, rr)
	if resp.Total != 12 || resp.TotalSource != "store" || !resp.HasMore {
		t.Fatalf("unexpected totals: %+v", resp)
	}
	if len(resp.Items) != 2 || resp.Items[0].ID != 7 || resp.Items[0].DistanceKm == nil || *resp.Items[0].DistanceKm != 2.5 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if resp.Filter != "country_id=1&state_id=10" {
		t.Fatalf("unexpected filter %q", resp.Filter)
	}
	if resp.Sort != "popular" {
		t.Fatalf("unexpected sort %q", resp.Sort)
	}
}

func TestSearchListings_FacetOrderIs422(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/search?state_id=10", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != ErrorResponseCodeFacetOrder {
		t.Fatalf("unexpected code %q", resp.Code)
	}
	if resp.Facet == nil || *resp.Facet != "state_id" || resp.Missing == nil || *resp.Missing != "country_id" {
		t.Fatalf("unexpected facet details: %+v", resp)
	}
	if env.searcher.lastReq != nil {
		t.Fatal("search must not run on a rejected filter")
	}
}

func TestSearchListings_SlugSetsHierarchy(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.resolved = location.Resolved{
		CountryID: 1, StateID: 10, CityID: 100, AreaID: 1000,
		Confidence: location.Exact, Display: "Bandra, Mumbai, Maharashtra",
	}

	rr := env.do(t, http.MethodGet, "/search?location=bandra-mumbai&country_id=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if env.resolver.lastSlug != "bandra-mumbai" {
		t.Fatalf("unexpected slug %q", env.resolver.lastSlug)
	}
	want := filter.Location{CountryID: 1, StateID: 10, CityID: 100, AreaID: 1000}
	if got := env.searcher.lastReq.Filter().Location(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	resp := decode[SearchResponse](t, rr)
	if resp.Location == nil || resp.Location.Confidence != location.Exact || resp.Location.Display != "Bandra, Mumbai, Maharashtra" {
		t.Fatalf("unexpected location: %+v", resp.Location)
	}
}

func TestSearchListings_UnresolvedSlugKeepsFilter(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.resolved = location.Resolved{Confidence: location.Unresolved, Display: "Xyzabc 123"}

	rr := env.do(t, http.MethodGet, "/search?location=xyzabc-123&country_id=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := env.searcher.lastReq.Filter().Location(); got != (filter.Location{CountryID: 2}) {
		t.Fatalf("unexpected location %+v", got)
	}
}

func TestSearchListings_DistanceNeedsProximity(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/search?sort=distance", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorResponseCodeProximityRequired {
		t.Fatalf("unexpected code %q", resp.Code)
	}
}

func TestSearchListings_NearMe(t *testing.T) {
	env := newTestEnv(t)
	env.withPosition(geo.Point{Latitude: 19.076, Longitude: 72.8777})

	rr := env.do(t, http.MethodGet, "/search?near=me&radius_km=25&sort=distance", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	prox, ok := env.searcher.lastReq.Filter().Proximity()
	if !ok || prox.Latitude != 19.076 || prox.RadiusKM != 25 {
		t.Fatalf("unexpected proximity %+v (set=%v)", prox, ok)
	}
	resp := decode[SearchResponse](t, rr)
	if resp.Geolocation == nil || resp.Geolocation.Status != "available" || resp.Geolocation.Latitude == nil {
		t.Fatalf("unexpected geolocation %+v", resp.Geolocation)
	}
	if resp.Sort != "distance" {
		t.Fatalf("unexpected sort %q", resp.Sort)
	}
}

func TestSearchListings_NearMeUnavailableStillSearches(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/search?near=me&sort=distance", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[SearchResponse](t, rr)
	if resp.Geolocation == nil || resp.Geolocation.Status != "unsupported" {
		t.Fatalf("unexpected geolocation %+v", resp.Geolocation)
	}
	if resp.Sort != string(ranking.Default) {
		t.Fatalf("expected fallback to %q, got %q", ranking.Default, resp.Sort)
	}
	if _, ok := env.searcher.lastReq.Filter().Proximity(); ok {
		t.Fatal("proximity must stay absent")
	}
}

func TestSearchListings_ExplicitCoordinatesWinOverProvider(t *testing.T) {
	env := newTestEnv(t)
	env.withPosition(geo.Point{Latitude: 1, Longitude: 1})

	rr := env.do(t, http.MethodGet, "/search?near=me&lat=18.52&lon=73.85", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	prox, _ := env.searcher.lastReq.Filter().Proximity()
	if prox.Latitude != 18.52 || prox.RadiusKM != filter.DefaultRadiusKM {
		t.Fatalf("unexpected proximity %+v", prox)
	}
}

func TestSearchListings_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		storeErr error
		wantCode int
		wantBody ErrorResponseCode
	}{
		{"bad page", "/search?page=abc", nil, http.StatusBadRequest, ErrorResponseCodeBadRequest},
		{"page out of range", "/search?q=go&page=4611686018427387904", nil, http.StatusBadRequest, ErrorResponseCodeValidationFailed},
		{"bad facet id", "/search?country_id=x", nil, http.StatusBadRequest, ErrorResponseCodeValidationFailed},
		{"bad sort", "/search?sort=random", nil, http.StatusBadRequest, ErrorResponseCodeValidationFailed},
		{
			"store down", "/search", fmt.Errorf("fetch page: %w: %w", domain.ErrStoreUnavailable, errors.New("dial tcp")),
			http.StatusBadGateway, ErrorResponseCodeStoreUnavailable,
		},
		{"unexpected", "/search", errors.New("boom"), http.StatusInternalServerError, ErrorResponseCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.searcher.err = tt.storeErr

			rr := env.do(t, http.MethodGet, tt.target, nil)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tt.wantBody {
				t.Fatalf("expected code %q, got %q", tt.wantBody, resp.Code)
			}
			if tt.storeErr != nil && resp.Message != "internal error" && resp.Message != domain.ErrStoreUnavailable.Error() {
				t.Fatalf("internal details leaked: %q", resp.Message)
			}
		})
	}
}

func TestResolveLocation(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.resolved = location.Resolved{CityID: 100, StateID: 10, CountryID: 1, Confidence: location.Partial}

	rr := env.do(t, http.MethodGet, "/locations/resolve/mumbai-jobs", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[location.Resolved](t, rr)
	if resp.CityID != 100 || resp.Confidence != location.Partial || env.resolver.lastSlug != "mumbai-jobs" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestListLocations(t *testing.T) {
	env := newTestEnv(t)
	env.tax.entities = []location.Entity{
		location.City{ID: 100, Name: "Mumbai", StateID: 10, CountryID: 1}.Entity(),
	}

	rr := env.do(t, http.MethodGet, "/locations/cities?parent_id=10&offset=20&limit=5", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	want := allCall{level: location.LevelCity, parentID: 10, offset: 20, limit: 5}
	if env.tax.lastAll != want {
		t.Fatalf("expected %+v, got %+v", want, env.tax.lastAll)
	}
	resp := decode[LocationListResponse](t, rr)
	if resp.Level != "city" || resp.Count != 1 || resp.Offset != 20 {
		t.Fatalf("unexpected response %+v", resp)
	}
	item := resp.Items[0]
	if item.Id != 100 || item.ParentId == nil || *item.ParentId != 10 || item.CountryId == nil || *item.CountryId != 1 {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestListLocations_Invalid(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/locations/planets", "/locations/city?parent_id=-1", "/locations/city?limit=x"} {
		rr := env.do(t, http.MethodGet, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

func TestListChildren(t *testing.T) {
	env := newTestEnv(t)
	env.tax.states = []location.State{{ID: 10, Name: "Maharashtra", CountryID: 1}}
	env.tax.cities = []location.City{{ID: 100, Name: "Mumbai", StateID: 10, CountryID: 1}}
	env.tax.areas = []location.Area{{ID: 1000, Name: "Bandra", CityID: 100}, {ID: 1001, Name: "Andheri West", CityID: 100}}

	tests := []struct {
		target string
		id     int64
		level  string
		count  int
	}{
		{"/locations/countries/1/states", 1, "state", 1},
		{"/locations/states/10/cities", 10, "city", 1},
		{"/locations/cities/100/areas", 100, "area", 2},
	}
	for _, tt := range tests {
		rr := env.do(t, http.MethodGet, tt.target, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.target, rr.Code)
		}
		resp := decode[LocationListResponse](t, rr)
		if env.tax.lastID != tt.id || resp.Level != tt.level || resp.Count != tt.count {
			t.Fatalf("%s: unexpected response %+v (id %d)", tt.target, resp, env.tax.lastID)
		}
	}

	if rr := env.do(t, http.MethodGet, "/locations/countries/india/states", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rr.Code)
	}
}

func TestDeriveFilter(t *testing.T) {
	tests := []struct {
		name     string
		body     DeriveFilterRequest
		wantCode int
		want     string
	}{
		{
			name:     "adds city below state",
			body:     DeriveFilterRequest{Filter: "country_id=1&state_id=10", Change: ChangeRequest{Facet: "city_id", Id: i64(100)}},
			wantCode: http.StatusOK,
			want:     "city_id=100&country_id=1&state_id=10",
		},
		{
			name:     "country change clears descendants",
			body:     DeriveFilterRequest{Filter: "country_id=1&state_id=10&city_id=100&q=go", Change: ChangeRequest{Facet: "country_id", Id: i64(2)}},
			wantCode: http.StatusOK,
			want:     "country_id=2&q=go",
		},
		{
			name:     "salary bounds normalized",
			body:     DeriveFilterRequest{Change: ChangeRequest{Facet: "salary", Min: i64(90000), Max: i64(30000)}},
			wantCode: http.StatusOK,
			want:     "salary_max=90000&salary_min=30000",
		},
		{
			name:     "area without city",
			body:     DeriveFilterRequest{Filter: "country_id=1", Change: ChangeRequest{Facet: "area_id", Id: i64(1000)}},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown facet",
			body:     DeriveFilterRequest{Change: ChangeRequest{Facet: "colour"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "half a proximity center",
			body:     DeriveFilterRequest{Change: ChangeRequest{Facet: "proximity", Latitude: new(float64)}},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(t, http.MethodPost, "/facets/derive", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := decode[DeriveFilterResponse](t, rr).Filter; got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDeriveFilter_BadBody(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/facets/derive", "not an object")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPurgeLocationCache(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, http.MethodDelete, "/locations/cache", nil); rr.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without a cache, got %d", rr.Code)
	}

	env.server.WithCachePurger(&mockPurger{n: 3})
	rr := env.do(t, http.MethodDelete, "/locations/cache", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[PurgeCacheResponse](t, rr).Purged; got != 3 {
		t.Fatalf("expected 3 purged, got %d", got)
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	env.health.report = healthuc.Report{
		Status: healthuc.Unhealthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}

	rr := env.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "error" || resp.Checks["database"] != "error" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
