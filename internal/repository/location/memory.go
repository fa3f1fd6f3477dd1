package location

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/jobscout/internal/domain"
	domloc "github.com/kailas-cloud/jobscout/internal/domain/location"
)

// Seed is the YAML layout of a static location catalog.
type Seed struct {
	Countries []SeedCountry `yaml:"countries"`
}

// SeedCountry is a country with nested states.
type SeedCountry struct {
	ID     int64       `yaml:"id"`
	Name   string      `yaml:"name"`
	States []SeedState `yaml:"states"`
}

// SeedState is a state with nested cities.
type SeedState struct {
	ID     int64      `yaml:"id"`
	Name   string     `yaml:"name"`
	Cities []SeedCity `yaml:"cities"`
}

// SeedCity is a city with nested areas.
type SeedCity struct {
	ID    int64      `yaml:"id"`
	Name  string     `yaml:"name"`
	Areas []SeedArea `yaml:"areas"`
}

// SeedArea is a leaf area.
type SeedArea struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// MemoryCatalog is an immutable in-process catalog.
type MemoryCatalog struct {
	byLevel map[domloc.Level][]domloc.Entity
	byID    map[domloc.Level]map[int64]domloc.Entity
}

// NewMemoryCatalog indexes the given entities. Entries are kept in id order.
func NewMemoryCatalog(entities ...domloc.Entity) *MemoryCatalog {
	c := &MemoryCatalog{
		byLevel: make(map[domloc.Level][]domloc.Entity),
		byID:    make(map[domloc.Level]map[int64]domloc.Entity),
	}
	for _, e := range entities {
		if c.byID[e.Level] == nil {
			c.byID[e.Level] = make(map[int64]domloc.Entity)
		}
		c.byID[e.Level][e.ID] = e
		c.byLevel[e.Level] = append(c.byLevel[e.Level], e)
	}
	for _, list := range c.byLevel {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return c
}

// LoadSeed reads a YAML seed file into a MemoryCatalog.
func LoadSeed(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read location seed %s: %w", path, err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse location seed: %w", err)
	}
	return NewMemoryCatalog(seed.Entities()...), nil
}

// Entities flattens the seed tree.
func (s Seed) Entities() []domloc.Entity {
	var out []domloc.Entity
	for _, co := range s.Countries {
		out = append(out, domloc.Country{ID: co.ID, Name: co.Name}.Entity())
		for _, st := range co.States {
			out = append(out, domloc.State{ID: st.ID, Name: st.Name, CountryID: co.ID}.Entity())
			for _, ci := range st.Cities {
				out = append(out, domloc.City{ID: ci.ID, Name: ci.Name, StateID: st.ID, CountryID: co.ID}.Entity())
				for _, ar := range ci.Areas {
					out = append(out, domloc.Area{ID: ar.ID, Name: ar.Name, CityID: ci.ID}.Entity())
				}
			}
		}
	}
	return out
}

// List returns one page of entries at level, optionally scoped to parentID.
func (c *MemoryCatalog) List(
	ctx context.Context, level domloc.Level, parentID int64, offset, limit int,
) ([]domloc.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error passthrough
	}
	var matched []domloc.Entity
	for _, e := range c.byLevel[level] {
		if parentID == 0 || e.ParentID == parentID {
			matched = append(matched, e)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := min(offset+limit, len(matched))
	out := make([]domloc.Entity, end-offset)
	copy(out, matched[offset:end])
	return out, nil
}

// FindByName returns entries at level whose normalized name equals name.
func (c *MemoryCatalog) FindByName(
	ctx context.Context, level domloc.Level, name string, limit int,
) ([]domloc.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context error passthrough
	}
	name = domloc.NormalizeName(name)
	var out []domloc.Entity
	for _, e := range c.byLevel[level] {
		if domloc.NormalizeName(e.Name) == name {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Get returns a single entry or domain.ErrNotFound.
func (c *MemoryCatalog) Get(ctx context.Context, level domloc.Level, id int64) (domloc.Entity, error) {
	if err := ctx.Err(); err != nil {
		return domloc.Entity{}, err //nolint:wrapcheck // context error passthrough
	}
	e, ok := c.byID[level][id]
	if !ok {
		return domloc.Entity{}, fmt.Errorf("%s %d: %w", level, id, domain.ErrNotFound)
	}
	return e, nil
}
