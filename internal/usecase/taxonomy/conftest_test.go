package taxonomy

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// mockCatalog is an in-memory Catalog with injectable failures.
type mockCatalog struct {
	entities  []location.Entity
	listErr   error
	findErr   error
	getErr    error
	listCalls int
}

func (m *mockCatalog) List(
	_ context.Context, level location.Level, parentID int64, offset, limit int,
) ([]location.Entity, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var matched []location.Entity
	for _, e := range m.entities {
		if e.Level == level && (parentID == 0 || e.ParentID == parentID) {
			matched = append(matched, e)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	return matched[offset:min(offset+limit, len(matched))], nil
}

func (m *mockCatalog) FindByName(
	_ context.Context, level location.Level, name string, limit int,
) ([]location.Entity, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []location.Entity
	for _, e := range m.entities {
		if e.Level == level && location.NormalizeName(e.Name) == name {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockCatalog) Get(_ context.Context, level location.Level, id int64) (location.Entity, error) {
	if m.getErr != nil {
		return location.Entity{}, m.getErr
	}
	for _, e := range m.entities {
		if e.Level == level && e.ID == id {
			return e, nil
		}
	}
	return location.Entity{}, fmt.Errorf("%s %d: %w", level, id, domain.ErrNotFound)
}

// indiaCatalog is a small two-state fixture.
func indiaCatalog() *mockCatalog {
	return &mockCatalog{entities: []location.Entity{
		location.Country{ID: 1, Name: "India"}.Entity(),
		location.State{ID: 10, Name: "Maharashtra", CountryID: 1}.Entity(),
		location.State{ID: 11, Name: "Karnataka", CountryID: 1}.Entity(),
		location.City{ID: 100, Name: "Mumbai", StateID: 10, CountryID: 1}.Entity(),
		location.City{ID: 101, Name: "Pune", StateID: 10, CountryID: 1}.Entity(),
		location.City{ID: 110, Name: "Bengaluru", StateID: 11, CountryID: 1}.Entity(),
		location.Area{ID: 1000, Name: "Bandra", CityID: 100}.Entity(),
		location.Area{ID: 1001, Name: "Andheri West", CityID: 100}.Entity(),
	}}
}
