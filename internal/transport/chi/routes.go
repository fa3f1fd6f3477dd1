package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// SearchListings handles GET /search.
	SearchListings(w http.ResponseWriter, r *http.Request, params SearchListingsParams)
	// ResolveLocation handles GET /locations/resolve/{slug}.
	ResolveLocation(w http.ResponseWriter, r *http.Request, slug string)
	// ListLocations handles GET /locations/{level}.
	ListLocations(w http.ResponseWriter, r *http.Request, level string, params ListLocationsParams)
	// ListStates handles GET /locations/countries/{id}/states.
	ListStates(w http.ResponseWriter, r *http.Request, countryID int64)
	// ListCities handles GET /locations/states/{id}/cities.
	ListCities(w http.ResponseWriter, r *http.Request, stateID int64)
	// ListAreas handles GET /locations/cities/{id}/areas.
	ListAreas(w http.ResponseWriter, r *http.Request, cityID int64)
	// PurgeLocationCache handles DELETE /locations/cache.
	PurgeLocationCache(w http.ResponseWriter, r *http.Request)
	// DeriveFilter handles POST /facets/derive.
	DeriveFilter(w http.ResponseWriter, r *http.Request)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError is passed to the error handler when a parameter fails to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds request parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si's routes on options.BaseRouter (a new router when nil).
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	w := &serverInterfaceWrapper{handler: si, errorHandler: options.ErrorHandlerFunc}
	base := options.BaseURL

	r.Group(func(r chi.Router) {
		r.Get(base+"/search", w.searchListings)
		r.Get(base+"/locations/resolve/{slug}", w.resolveLocation)
		r.Delete(base+"/locations/cache", w.handler.PurgeLocationCache)
		r.Get(base+"/locations/countries/{id}/states", w.listStates)
		r.Get(base+"/locations/states/{id}/cities", w.listCities)
		r.Get(base+"/locations/cities/{id}/areas", w.listAreas)
		r.Get(base+"/locations/{level}", w.listLocations)
		r.Post(base+"/facets/derive", w.handler.DeriveFilter)
		r.Get(base+"/health", w.handler.HealthCheck)
		r.Get(base+"/metrics", w.handler.Metrics)
	})
	return r
}

func (w *serverInterfaceWrapper) searchListings(rw http.ResponseWriter, r *http.Request) {
	var params SearchListingsParams
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dest any
	}{
		{"location", &params.Location},
		{"near", &params.Near},
		{"sort", &params.Sort},
		{"page", &params.Page},
		{"page_size", &params.PageSize},
		{"radius_km", &params.RadiusKm},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: p.name, Err: err})
			return
		}
	}

	w.handler.SearchListings(rw, r, params)
}

func (w *serverInterfaceWrapper) resolveLocation(rw http.ResponseWriter, r *http.Request) {
	var slug string
	if err := bindPath("slug", chi.URLParam(r, "slug"), &slug); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "slug", Err: err})
		return
	}
	w.handler.ResolveLocation(rw, r, slug)
}

func (w *serverInterfaceWrapper) listLocations(rw http.ResponseWriter, r *http.Request) {
	var level string
	if err := bindPath("level", chi.URLParam(r, "level"), &level); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "level", Err: err})
		return
	}

	var params ListLocationsParams
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dest any
	}{
		{"parent_id", &params.ParentId},
		{"offset", &params.Offset},
		{"limit", &params.Limit},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: p.name, Err: err})
			return
		}
	}

	w.handler.ListLocations(rw, r, level, params)
}

func (w *serverInterfaceWrapper) listStates(rw http.ResponseWriter, r *http.Request) {
	if id, ok := w.bindID(rw, r); ok {
		w.handler.ListStates(rw, r, id)
	}
}

func (w *serverInterfaceWrapper) listCities(rw http.ResponseWriter, r *http.Request) {
	if id, ok := w.bindID(rw, r); ok {
		w.handler.ListCities(rw, r, id)
	}
}

func (w *serverInterfaceWrapper) listAreas(rw http.ResponseWriter, r *http.Request) {
	if id, ok := w.bindID(rw, r); ok {
		w.handler.ListAreas(rw, r, id)
	}
}

func (w *serverInterfaceWrapper) bindID(rw http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	if err := bindPath("id", chi.URLParam(r, "id"), &id); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return 0, false
	}
	return id, true
}

func bindPath(name, value string, dest any) error {
	//nolint:wrapcheck // surfaced through InvalidParamFormatError
	return runtime.BindStyledParameterWithOptions("simple", name, value, dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
}
