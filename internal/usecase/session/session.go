// Package session keeps the facet state of one interactive search and the option
// lists that depend on it. A single owner goroutine applies every change and every
// fetch response, so no state is shared between fetches.
package session

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/domain/search/request"
	"github.com/kailas-cloud/jobscout/internal/domain/search/result"
)

// ErrClosed is returned when the owner goroutine is no longer running.
var ErrClosed = errors.New("session closed")

// Edge is a dependency between a facet and data fetched for it.
type Edge string

// Dependency edges. Each carries its own generation counter.
const (
	EdgeStates  Edge = "country_states"
	EdgeCities  Edge = "state_cities"
	EdgeAreas   Edge = "city_areas"
	EdgeResults Edge = "query_results"
)

// Snapshot is the consumer-visible state. Every field is replaced wholesale.
type Snapshot struct {
	Filter   filter.Filter
	Strategy ranking.Strategy
	Page     int

	States []location.State
	Cities []location.City
	Areas  []location.Area

	Results    result.Page
	ResultsErr error
	// Loading lists edges with a fetch in flight.
	Loading map[Edge]bool
}

// Session is a facet session. Create with New, then start Run in its own goroutine.
type Session struct {
	tax    Taxonomy
	search Searcher
	limits request.Limits
	stale  *prometheus.CounterVec
	logger *zap.Logger

	cmds      chan command
	responses chan response
	updates   chan Snapshot
	done      chan struct{}
}

// command mutates owner state and reports back on reply.
type command struct {
	apply func(st *state) error
	reply chan error
}

// response is the outcome of one dependent fetch, tagged with its generation.
type response struct {
	edge   Edge
	gen    uint64
	states []location.State
	cities []location.City
	areas  []location.Area
	page   result.Page
	err    error
}

// state is owned by the Run goroutine.
type state struct {
	snap    Snapshot
	gens    map[Edge]uint64
	cancels map[Edge]context.CancelFunc
	// dirty marks edges to refetch after the current command.
	dirty map[Edge]bool
}

// New creates a session.
func New(tax Taxonomy, search Searcher, logger *zap.Logger) *Session {
	return &Session{
		tax:       tax,
		search:    search,
		limits:    request.DefaultLimits(),
		logger:    logger,
		cmds:      make(chan command),
		responses: make(chan response, 16),
		updates:   make(chan Snapshot, 1),
		done:      make(chan struct{}),
	}
}

// WithLimits sets the page size limits applied to result fetches.
func (s *Session) WithLimits(l request.Limits) *Session {
	s.limits = l
	return s
}

// WithStaleCounter sets a counter vec with label "edge", incremented per discarded response.
func (s *Session) WithStaleCounter(c *prometheus.CounterVec) *Session {
	s.stale = c
	return s
}

// Updates delivers the latest snapshot. Intermediate snapshots may be skipped.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// Run owns the session state until ctx is done. In-flight fetches are cancelled on exit.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	st := &state{
		snap:    Snapshot{Strategy: ranking.Default, Page: 1, Loading: map[Edge]bool{}},
		gens:    make(map[Edge]uint64),
		cancels: make(map[Edge]context.CancelFunc),
		dirty:   map[Edge]bool{EdgeResults: true},
	}
	defer func() {
		for _, cancel := range st.cancels {
			cancel()
		}
	}()

	s.dispatch(ctx, st)
	s.publish(st)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmds:
			err := cmd.apply(st)
			if err == nil {
				s.dispatch(ctx, st)
				s.publish(st)
			}
			cmd.reply <- err
		case resp := <-s.responses:
			if s.accept(st, resp) {
				s.publish(st)
			}
		}
	}
}

// Apply derives a new filter from change. A FacetOrderError leaves the state untouched.
func (s *Session) Apply(ctx context.Context, change filter.Change) error {
	return s.do(ctx, func(st *state) error {
		next, err := filter.Derive(st.snap.Filter, change)
		if err != nil {
			return err //nolint:wrapcheck // FacetOrderError is returned as is
		}
		prev := st.snap.Filter.Location()
		cur := next.Location()
		st.snap.Filter = next
		st.snap.Page = 1

		if cur.CountryID != prev.CountryID {
			s.reset(st, EdgeStates, cur.CountryID)
		}
		if cur.StateID != prev.StateID || cur.CountryID != prev.CountryID {
			s.reset(st, EdgeCities, cur.StateID)
		}
		if cur.CityID != prev.CityID || cur.StateID != prev.StateID || cur.CountryID != prev.CountryID {
			s.reset(st, EdgeAreas, cur.CityID)
		}
		st.dirty[EdgeResults] = true
		return nil
	})
}

// SetSort changes the ranking strategy and returns to the first page.
func (s *Session) SetSort(ctx context.Context, strategy ranking.Strategy) error {
	return s.do(ctx, func(st *state) error {
		st.snap.Strategy = strategy
		st.snap.Page = 1
		st.dirty[EdgeResults] = true
		return nil
	})
}

// SetPage moves to a 1-based result page.
func (s *Session) SetPage(ctx context.Context, page int) error {
	return s.do(ctx, func(st *state) error {
		st.snap.Page = max(page, 1)
		st.dirty[EdgeResults] = true
		return nil
	})
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func(st *state) error {
		snap = st.snap.clone()
		return nil
	})
	return snap, err
}

func (s *Session) do(ctx context.Context, apply func(st *state) error) error {
	cmd := command{apply: apply, reply: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // context error passthrough
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-s.done:
		return ErrClosed
	}
}

// reset clears the option list of edge and schedules a refetch when parentID is set.
// The generation moves on either way so late responses for the old parent are dropped.
func (s *Session) reset(st *state, edge Edge, parentID int64) {
	st.gens[edge]++
	if cancel, ok := st.cancels[edge]; ok {
		cancel()
		delete(st.cancels, edge)
	}
	delete(st.snap.Loading, edge)
	switch edge {
	case EdgeStates:
		st.snap.States = nil
	case EdgeCities:
		st.snap.Cities = nil
	case EdgeAreas:
		st.snap.Areas = nil
	}
	if parentID != 0 {
		st.dirty[edge] = true
	}
}

// dispatch starts a fetch for every dirty edge.
func (s *Session) dispatch(ctx context.Context, st *state) {
	for edge := range st.dirty {
		delete(st.dirty, edge)

		if edge == EdgeResults {
			st.gens[edge]++
			if cancel, ok := st.cancels[edge]; ok {
				cancel()
			}
		}
		gen := st.gens[edge]

		fctx, cancel := context.WithCancel(ctx)
		st.cancels[edge] = cancel
		st.snap.Loading[edge] = true

		loc := st.snap.Filter.Location()
		switch edge {
		case EdgeStates:
			go func() {
				s.deliver(ctx, response{edge: edge, gen: gen, states: s.tax.StatesOf(fctx, loc.CountryID)})
			}()
		case EdgeCities:
			go func() {
				s.deliver(ctx, response{edge: edge, gen: gen, cities: s.tax.CitiesOf(fctx, loc.StateID)})
			}()
		case EdgeAreas:
			go func() {
				s.deliver(ctx, response{edge: edge, gen: gen, areas: s.tax.AreasOf(fctx, loc.CityID)})
			}()
		case EdgeResults:
			req, err := request.New(st.snap.Filter, st.snap.Strategy, st.snap.Page, s.limits.DefaultPageSize, s.limits)
			if err != nil {
				cancel()
				delete(st.cancels, edge)
				delete(st.snap.Loading, edge)
				st.snap.Results = result.Page{}
				st.snap.ResultsErr = err
				continue
			}
			go func() {
				page, err := s.search.Search(fctx, req)
				s.deliver(ctx, response{edge: edge, gen: gen, page: page, err: err})
			}()
		}
	}
}

// deliver hands a response to the owner. It gives up when the session stops.
func (s *Session) deliver(ctx context.Context, resp response) {
	select {
	case s.responses <- resp:
	case <-ctx.Done():
	}
}

// accept applies resp unless a newer fetch superseded it.
func (s *Session) accept(st *state, resp response) bool {
	if resp.gen != st.gens[resp.edge] {
		if s.stale != nil {
			s.stale.WithLabelValues(string(resp.edge)).Inc()
		}
		s.logger.Debug("Dropping stale response",
			zap.String("edge", string(resp.edge)),
			zap.Uint64("gen", resp.gen),
			zap.Uint64("current", st.gens[resp.edge]),
		)
		return false
	}

	if cancel, ok := st.cancels[resp.edge]; ok {
		cancel()
		delete(st.cancels, resp.edge)
	}
	delete(st.snap.Loading, resp.edge)

	switch resp.edge {
	case EdgeStates:
		st.snap.States = resp.states
	case EdgeCities:
		st.snap.Cities = resp.cities
	case EdgeAreas:
		st.snap.Areas = resp.areas
	case EdgeResults:
		st.snap.Results = resp.page
		st.snap.ResultsErr = resp.err
		if resp.err != nil {
			s.logger.Warn("Search failed", zap.Error(resp.err))
		}
	}
	return true
}

// publish offers the latest snapshot, replacing one the consumer has not read yet.
func (s *Session) publish(st *state) {
	snap := st.snap.clone()
	select {
	case s.updates <- snap:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}

// clone copies the Loading map. Slices and pages are never mutated after assignment.
func (sn Snapshot) clone() Snapshot {
	loading := make(map[Edge]bool, len(sn.Loading))
	for e, v := range sn.Loading {
		loading[e] = v
	}
	sn.Loading = loading
	return sn
}
