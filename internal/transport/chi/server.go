package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
	"github.com/kailas-cloud/jobscout/internal/usecase/geolocate"
	logpkg "github.com/kailas-cloud/jobscout/internal/logger"
	healthuc "github.com/kailas-cloud/jobscout/internal/usecase/health"
)

// nearMe is the value of the "near" parameter that asks for the caller's position.
const nearMe = "me"

// maxDeriveBody caps the POST /facets/derive body.
const maxDeriveBody = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	taxonomy      Taxonomy
	resolver      SlugResolver
	search        Searcher
	health        HealthChecker
	locator       Geolocator
	providers     ProviderFunc
	cache         CachePurger
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	taxonomy Taxonomy,
	resolver SlugResolver,
	search Searcher,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		taxonomy: taxonomy,
		resolver: resolver,
		search:   search,
		health:   health,
		limits:   request.DefaultLimits(),
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		facetOrderHandler,
		sentinelHandler(domain.ErrProximityRequired, http.StatusBadRequest, ErrorResponseCodeProximityRequired),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusBadGateway, ErrorResponseCodeStoreUnavailable),
	}
	return s
}

// WithGeolocation enables near=me. providers picks the position source per request.
func (s *Server) WithGeolocation(locator Geolocator, providers ProviderFunc) *Server {
	s.locator = locator
	s.providers = providers
	return s
}

// WithCachePurger enables DELETE /locations/cache.
func (s *Server) WithCachePurger(p CachePurger) *Server {
	s.cache = p
	return s
}

// WithLimits overrides the default page size limits.
func (s *Server) WithLimits(l request.Limits) *Server {
	s.limits = l
	return s
}

// SearchListings handles GET /search.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request, params SearchListingsParams) {
	ctx := r.Context()

	f, err := filter.FromValues(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var resp SearchResponse
	if slug := deref(params.Location); strings.TrimSpace(slug) != "" {
		resolved := s.resolver.Resolve(ctx, slug)
		resp.Location = &resolved
		if resolved.IsResolved() {
			f, err = filter.Derive(f, filter.SetLocation(filter.Location{
				CountryID: resolved.CountryID,
				StateID:   resolved.StateID,
				CityID:    resolved.CityID,
				AreaID:    resolved.AreaID,
			}))
			if err != nil {
				s.handleDomainError(w, r, err)
				return
			}
		}
	}

	if deref(params.Near) == nearMe {
		f, resp.Geolocation = s.locate(r, f, params.RadiusKm)
	}

	strategy := ranking.Strategy(deref(params.Sort))
	if _, ok := f.Proximity(); strategy.NeedsProximity() && !ok && resp.Geolocation != nil {
		// near=me without a position still searches, just not by distance.
		strategy = ranking.Default
	}

	req, err := request.New(f, strategy, deref(params.Page), deref(params.PageSize), s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp.Items = searchItemsToAPI(page.Items)
	resp.Total = page.Total
	resp.TotalSource = string(page.TotalSource)
	resp.Page = page.Page
	resp.PageSize = page.PageSize
	resp.HasMore = page.HasMore()
	resp.Truncated = page.Truncated
	resp.Sort = string(req.Strategy())
	resp.Filter = f.Values().Encode()

	writeJSON(w, http.StatusOK, resp)
}

// locate acquires the caller's position and applies it as the proximity facet.
// Coordinates already in the filter take precedence over the request's provider.
func (s *Server) locate(r *http.Request, f filter.Filter, radiusKM *float64) (filter.Filter, *GeolocationInfo) {
	if s.locator == nil {
		return f, &GeolocationInfo{Status: string(geolocate.StatusUnsupported)}
	}

	var p geolocate.Provider
	if prox, ok := f.Proximity(); ok {
		p = geolocate.Fixed{Point: prox.Center()}
	} else if s.providers != nil {
		p = s.providers(r)
	}

	res := s.locator.Acquire(r.Context(), p)
	info := &GeolocationInfo{Status: string(res.Status)}
	if !res.Available() {
		logpkg.FromContext(r.Context(), s.logger).Debug("Geolocation unavailable", zap.String("status", info.Status))
		return f, info
	}
	lat, lon := res.Point.Latitude, res.Point.Longitude
	info.Latitude, info.Longitude = &lat, &lon

	if _, ok := f.Proximity(); ok {
		return f, info
	}
	prox := filter.Proximity{Latitude: lat, Longitude: lon}
	if radiusKM != nil {
		prox.RadiusKM = *radiusKM
	}
	next, err := filter.Derive(f, filter.SetProximity(prox))
	if err != nil {
		return f, info
	}
	return next, info
}

// ResolveLocation handles GET /locations/resolve/{slug}.
func (s *Server) ResolveLocation(w http.ResponseWriter, r *http.Request, slug string) {
	writeJSON(w, http.StatusOK, s.resolver.Resolve(r.Context(), slug))
}

// ListLocations handles GET /locations/{level}.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request, level string, params ListLocationsParams) {
	lv, ok := levelFromPath(level)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			fmt.Sprintf("unknown location level %q", level))
		return
	}
	parentID := deref(params.ParentId)
	if parentID < 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "parent_id must not be negative")
		return
	}
	offset := max(deref(params.Offset), 0)

	entities := s.taxonomy.All(r.Context(), lv, parentID, offset, deref(params.Limit))
	items := make([]LocationEntity, len(entities))
	for i, e := range entities {
		items[i] = entityToAPI(e)
	}
	writeJSON(w, http.StatusOK, LocationListResponse{
		Items:  items,
		Level:  string(lv),
		Offset: offset,
		Count:  len(items),
	})
}

// ListStates handles GET /locations/countries/{id}/states.
func (s *Server) ListStates(w http.ResponseWriter, r *http.Request, countryID int64) {
	states := s.taxonomy.StatesOf(r.Context(), countryID)
	items := make([]LocationEntity, len(states))
	for i, st := range states {
		items[i] = entityToAPI(st.Entity())
	}
	writeJSON(w, http.StatusOK, LocationListResponse{Items: items, Level: string(location.LevelState), Count: len(items)})
}

// ListCities handles GET /locations/states/{id}/cities.
func (s *Server) ListCities(w http.ResponseWriter, r *http.Request, stateID int64) {
	cities := s.taxonomy.CitiesOf(r.Context(), stateID)
	items := make([]LocationEntity, len(cities))
	for i, c := range cities {
		items[i] = entityToAPI(c.Entity())
	}
	writeJSON(w, http.StatusOK, LocationListResponse{Items: items, Level: string(location.LevelCity), Count: len(items)})
}

// ListAreas handles GET /locations/cities/{id}/areas.
func (s *Server) ListAreas(w http.ResponseWriter, r *http.Request, cityID int64) {
	areas := s.taxonomy.AreasOf(r.Context(), cityID)
	items := make([]LocationEntity, len(areas))
	for i, a := range areas {
		items[i] = entityToAPI(a.Entity())
	}
	writeJSON(w, http.StatusOK, LocationListResponse{Items: items, Level: string(location.LevelArea), Count: len(items)})
}

// PurgeLocationCache handles DELETE /locations/cache.
func (s *Server) PurgeLocationCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusNotImplemented, ErrorResponseCodeCacheDisabled, "location cache is disabled")
		return
	}
	n, err := s.cache.Purge(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PurgeCacheResponse{Purged: n})
}

// DeriveFilter handles POST /facets/derive.
func (s *Server) DeriveFilter(w http.ResponseWriter, r *http.Request) {
	var req DeriveFilterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDeriveBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	values, err := url.ParseQuery(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "filter must be a query string")
		return
	}
	prev, err := filter.FromValues(values)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	change, err := changeFromAPI(req.Change)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	next, err := filter.Derive(prev, change)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DeriveFilterResponse{Filter: next.Values().Encode()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a message for the client without exposing internals.
// Validation errors describe the caller's own input and are returned as is.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrFacetOrder) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrProximityRequired,
		domain.ErrNotFound,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// facetOrderHandler reports which ancestor facet is missing.
func facetOrderHandler(w http.ResponseWriter, err error, msg string) bool {
	var foe *filter.FacetOrderError
	if !errors.As(err, &foe) {
		return false
	}
	facet, missing := string(foe.Facet), string(foe.Missing)
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Code:    ErrorResponseCodeFacetOrder,
		Message: msg,
		Facet:   &facet,
		Missing: &missing,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

// levelFromPath accepts both singular and plural level names.
func levelFromPath(s string) (location.Level, bool) {
	switch strings.ToLower(s) {
	case "country", "countries":
		return location.LevelCountry, true
	case "state", "states":
		return location.LevelState, true
	case "city", "cities":
		return location.LevelCity, true
	case "area", "areas":
		return location.LevelArea, true
	default:
		return "", false
	}
}

func changeFromAPI(c ChangeRequest) (filter.Change, error) {
	switch filter.Facet(c.Facet) {
	case filter.FacetCountry:
		return filter.SetCountry(deref(c.Id)), nil
	case filter.FacetState:
		return filter.SetState(deref(c.Id)), nil
	case filter.FacetCity:
		return filter.SetCity(deref(c.Id)), nil
	case filter.FacetArea:
		return filter.SetArea(deref(c.Id)), nil
	case filter.FacetText:
		return filter.SetText(deref(c.Text)), nil
	case filter.FacetSalary:
		return filter.SetSalary(c.Min, c.Max), nil
	case filter.FacetExperience:
		return filter.SetExperience(c.Min, c.Max), nil
	case filter.FacetJobType:
		return filter.SetJobType(deref(c.Id)), nil
	case filter.FacetJobCategory:
		return filter.SetJobCategory(deref(c.Id)), nil
	case filter.FacetFeatured:
		return filter.SetFeatured(c.Featured), nil
	case filter.FacetProximity:
		if c.Latitude == nil && c.Longitude == nil {
			return filter.ClearProximity(), nil
		}
		if c.Latitude == nil || c.Longitude == nil {
			return filter.Change{}, fmt.Errorf("proximity needs latitude and longitude: %w", domain.ErrInvalidRequest)
		}
		return filter.SetProximity(filter.Proximity{
			Latitude:  *c.Latitude,
			Longitude: *c.Longitude,
			RadiusKM:  deref(c.RadiusKm),
		}), nil
	default:
		return filter.Change{}, fmt.Errorf("unknown facet %q: %w", c.Facet, domain.ErrInvalidRequest)
	}
}

func entityToAPI(e location.Entity) LocationEntity {
	out := LocationEntity{Id: e.ID, Name: e.Name, Level: string(e.Level)}
	if e.ParentID != 0 {
		p := e.ParentID
		out.ParentId = &p
	}
	if e.CountryID != 0 {
		c := e.CountryID
		out.CountryId = &c
	}
	return out
}

func searchItemsToAPI(hits []result.Hit) []SearchResultItem {
	items := make([]SearchResultItem, len(hits))
	for i, h := range hits {
		items[i] = SearchResultItem{Listing: h.Listing, DistanceKm: h.DistanceKM}
	}
	return items
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// BindErrorHandler answers parameter binding failures with a JSON 400.
func BindErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}
