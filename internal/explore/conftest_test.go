package explore

import (
	"bytes"
	"context"
	"testing"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/usecase/session"
)

// mockSession derives filters the way a real session does, without fetching.
type mockSession struct {
	f        filter.Filter
	strategy ranking.Strategy
	page     int
	applied  int
}

func (m *mockSession) Apply(_ context.Context, c filter.Change) error {
	next, err := filter.Derive(m.f, c)
	if err != nil {
		return err //nolint:wrapcheck // mock
	}
	m.f = next
	m.applied++
	return nil
}

func (m *mockSession) SetSort(_ context.Context, s ranking.Strategy) error {
	m.strategy = s
	return nil
}

func (m *mockSession) SetPage(_ context.Context, p int) error {
	m.page = p
	return nil
}

func (m *mockSession) Snapshot(_ context.Context) (session.Snapshot, error) {
	return session.Snapshot{Filter: m.f, Strategy: m.strategy, Page: m.page}, nil
}

type mockResolver struct {
	res  location.Resolved
	slug string
}

func (m *mockResolver) Resolve(_ context.Context, slug string) location.Resolved {
	m.slug = slug
	return m.res
}

// syncDebouncer runs only the most recent trigger when flushed.
type syncDebouncer struct {
	pending  func()
	triggers int
}

func (d *syncDebouncer) Trigger(fn func()) {
	d.pending = fn
	d.triggers++
}

func (d *syncDebouncer) flush() {
	if d.pending != nil {
		d.pending()
		d.pending = nil
	}
}

type testEnv struct {
	runner   *Runner
	sess     *mockSession
	resolver *mockResolver
	debounce *syncDebouncer
	out      *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		sess:     &mockSession{strategy: ranking.Default, page: 1},
		resolver: &mockResolver{res: location.Resolved{Confidence: location.Unresolved}},
		debounce: &syncDebouncer{},
		out:      &bytes.Buffer{},
	}
	env.runner = NewRunner(env.sess, env.resolver, env.debounce, env.out)
	return env
}

func (e *testEnv) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, l := range lines {
		if err := e.runner.Handle(context.Background(), l); err != nil {
			t.Fatalf("Handle(%q): %v", l, err)
		}
	}
}
