package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/domain/geo"
	"github.com/kailas-cloud/jobscout/internal/domain/listing"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
	"github.com/kailas-cloud/jobscout/internal/usecase/geolocate"
	healthuc "github.com/kailas-cloud/jobscout/internal/usecase/health"
)

// --- Mocks ---

type allCall struct {
	level         location.Level
	parentID      int64
	offset, limit int
}

type mockTaxonomy struct {
	entities []location.Entity
	states   []location.State
	cities   []location.City
	areas    []location.Area
	lastAll  allCall
	lastID   int64
}

func (m *mockTaxonomy) All(_ context.Context, level location.Level, parentID int64, offset, limit int) []location.Entity {
	m.lastAll = allCall{level: level, parentID: parentID, offset: offset, limit: limit}
	return m.entities
}

func (m *mockTaxonomy) StatesOf(_ context.Context, countryID int64) []location.State {
	m.lastID = countryID
	return m.states
}

func (m *mockTaxonomy) CitiesOf(_ context.Context, stateID int64) []location.City {
	m.lastID = stateID
	return m.cities
}

func (m *mockTaxonomy) AreasOf(_ context.Context, cityID int64) []location.Area {
	m.lastID = cityID
	return m.areas
}

type mockResolver struct {
	resolved location.Resolved
	lastSlug string
}

func (m *mockResolver) Resolve(_ context.Context, slug string) location.Resolved {
	m.lastSlug = slug
	return m.resolved
}

type mockSearcher struct {
	mu      sync.Mutex
	page    result.Page
	err     error
	lastReq *request.Request
}

func (m *mockSearcher) Search(_ context.Context, req request.Request) (result.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = &req
	if m.err != nil {
		return result.Page{}, m.err
	}
	p := m.page
	p.Page, p.PageSize = req.Page(), req.PageSize()
	return p, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type mockPurger struct {
	n   int
	err error
}

func (m *mockPurger) Purge(_ context.Context) (int, error) { return m.n, m.err }

// --- Helpers ---

type testEnv struct {
	tax      *mockTaxonomy
	resolver *mockResolver
	searcher *mockSearcher
	health   *mockHealth
	server   *Server
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tax:      &mockTaxonomy{},
		resolver: &mockResolver{resolved: location.Resolved{Confidence: location.Unresolved}},
		searcher: &mockSearcher{},
		health:   &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	env.server = NewServer(env.tax, env.resolver, env.searcher, env.health, zap.NewNop())
	env.handler = HandlerWithOptions(env.server, ChiServerOptions{ErrorHandlerFunc: BindErrorHandler})
	return env
}

// withPosition enables near=me with a provider that always reports p.
func (e *testEnv) withPosition(p geo.Point) {
	e.server.WithGeolocation(geolocate.New(time.Second, zap.NewNop()), func(_ *http.Request) geolocate.Provider {
		return geolocate.Fixed{Point: p}
	})
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func i64(v int64) *int64 { return &v }

func sampleListings() []result.Hit {
	d := 2.5
	return []result.Hit{
		{Listing: listing.Listing{ID: 7, Title: "Backend engineer", CityID: i64(100)}, DistanceKM: &d},
		{Listing: listing.Listing{ID: 3, Title: "Data analyst"}},
	}
}
