package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
)

// gatedTaxonomy returns states immediately unless a gate is registered for the country.
type gatedTaxonomy struct {
	mu    sync.Mutex
	gates map[int64]chan struct{}
	calls map[int64]int
}

func newGatedTaxonomy() *gatedTaxonomy {
	return &gatedTaxonomy{gates: make(map[int64]chan struct{}), calls: make(map[int64]int)}
}

func (g *gatedTaxonomy) hold(countryID int64) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[countryID] = ch
	return ch
}

func (g *gatedTaxonomy) StatesOf(_ context.Context, countryID int64) []location.State {
	g.mu.Lock()
	gate := g.gates[countryID]
	g.calls[countryID]++
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return []location.State{{ID: countryID * 10, Name: "S", CountryID: countryID}}
}

func (g *gatedTaxonomy) CitiesOf(_ context.Context, stateID int64) []location.City {
	return []location.City{{ID: stateID * 10, Name: "C", StateID: stateID}}
}

func (g *gatedTaxonomy) AreasOf(_ context.Context, cityID int64) []location.Area {
	return []location.Area{{ID: cityID * 10, Name: "A", CityID: cityID}}
}

// recordingSearcher returns an empty page and remembers the last request.
type recordingSearcher struct {
	mu   sync.Mutex
	last request.Request
	n    int
}

func (r *recordingSearcher) Search(ctx context.Context, req request.Request) (result.Page, error) {
	r.mu.Lock()
	r.last = req
	r.n++
	r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return result.Page{}, err
	}
	return result.Page{Total: 1, Page: req.Page(), PageSize: req.PageSize(), TotalSource: result.SourceStore}, nil
}

// startSession runs s until the test ends.
func startSession(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(cancel)
}

// waitFor polls the session until cond holds or the deadline passes.
func waitFor(t *testing.T, s *Session, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := s.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, last snapshot %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
