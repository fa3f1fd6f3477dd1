package taxonomy

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// Service exposes parent-scoped, paged reads of the location catalog.
// Catalog failures degrade to empty results; callers treat "no children" the same
// whether the parent has none or the catalog was unreachable.
type Service struct {
	catalog     Catalog
	pageLimit   int
	maxChildren int
	errTotal    *prometheus.CounterVec
	logger      *zap.Logger
}

// New creates a taxonomy service.
func New(catalog Catalog, logger *zap.Logger) *Service {
	return &Service{
		catalog:     catalog,
		pageLimit:   100,
		maxChildren: 1000,
		logger:      logger,
	}
}

// WithLimits configures the page size used against the catalog and the cap on
// children collected for one parent.
func (s *Service) WithLimits(pageLimit, maxChildren int) *Service {
	if pageLimit > 0 {
		s.pageLimit = pageLimit
	}
	if maxChildren > 0 {
		s.maxChildren = maxChildren
	}
	return s
}

// WithErrorCounter sets a counter vec with label "level", incremented on catalog failures.
func (s *Service) WithErrorCounter(c *prometheus.CounterVec) *Service {
	s.errTotal = c
	return s
}

// StatesOf returns the states of a country.
func (s *Service) StatesOf(ctx context.Context, countryID int64) []location.State {
	entities := s.children(ctx, location.LevelState, countryID)
	out := make([]location.State, len(entities))
	for i, e := range entities {
		out[i] = location.State{ID: e.ID, Name: e.Name, CountryID: e.ParentID}
	}
	return out
}

// CitiesOf returns the cities of a state.
func (s *Service) CitiesOf(ctx context.Context, stateID int64) []location.City {
	entities := s.children(ctx, location.LevelCity, stateID)
	out := make([]location.City, len(entities))
	for i, e := range entities {
		out[i] = location.City{ID: e.ID, Name: e.Name, StateID: e.ParentID, CountryID: e.CountryID}
	}
	return out
}

// AreasOf returns the areas of a city.
func (s *Service) AreasOf(ctx context.Context, cityID int64) []location.Area {
	entities := s.children(ctx, location.LevelArea, cityID)
	out := make([]location.Area, len(entities))
	for i, e := range entities {
		out[i] = location.Area{ID: e.ID, Name: e.Name, CityID: e.ParentID}
	}
	return out
}

// All returns one page of entries at level, optionally scoped to parentID (0 = unscoped).
// limit is clamped to the configured page limit.
func (s *Service) All(ctx context.Context, level location.Level, parentID int64, offset, limit int) []location.Entity {
	if !level.IsValid() || parentID < 0 {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > s.pageLimit {
		limit = s.pageLimit
	}
	if level == location.LevelCountry {
		parentID = 0
	}

	page, err := s.catalog.List(ctx, level, parentID, offset, limit)
	if err != nil {
		s.fail(level, "list", err, zap.Int64("parent_id", parentID), zap.Int("offset", offset))
		return nil
	}
	return page
}

// FindByName returns entries at level whose normalized name equals name.
func (s *Service) FindByName(ctx context.Context, level location.Level, name string) []location.Entity {
	name = location.NormalizeName(name)
	if name == "" || !level.IsValid() {
		return nil
	}
	found, err := s.catalog.FindByName(ctx, level, name, s.pageLimit)
	if err != nil {
		s.fail(level, "find_by_name", err, zap.String("name", name))
		return nil
	}
	return found
}

// Lineage derives the ancestor chain of an entry by relationship.
// A city whose denormalized country disagrees with its state yields domain.ErrIntegrity.
func (s *Service) Lineage(ctx context.Context, level location.Level, id int64) (location.Lineage, error) {
	var (
		lin  location.Lineage
		city *location.Entity
	)
	cur, err := s.catalog.Get(ctx, level, id)
	if err != nil {
		return lin, fmt.Errorf("get %s %d: %w", level, id, err)
	}

	for {
		switch cur.Level {
		case location.LevelArea:
			lin.AreaID, lin.AreaName = cur.ID, cur.Name
		case location.LevelCity:
			lin.CityID, lin.CityName = cur.ID, cur.Name
			c := cur
			city = &c
		case location.LevelState:
			lin.StateID, lin.StateName = cur.ID, cur.Name
			if city != nil {
				if err := s.checkCity(*city, cur); err != nil {
					return location.Lineage{}, err
				}
			}
		case location.LevelCountry:
			lin.CountryID, lin.CountryName = cur.ID, cur.Name
			return lin, nil
		}

		parentLevel := cur.Level.Parent()
		if parentLevel == "" || cur.ParentID == 0 {
			return lin, nil
		}
		parent, err := s.catalog.Get(ctx, parentLevel, cur.ParentID)
		if err != nil {
			return location.Lineage{}, fmt.Errorf("get %s %d: %w", parentLevel, cur.ParentID, err)
		}
		cur = parent
	}
}

func (s *Service) checkCity(city, state location.Entity) error {
	err := location.CheckCity(
		location.City{ID: city.ID, StateID: city.ParentID, CountryID: city.CountryID},
		location.State{ID: state.ID, CountryID: state.ParentID},
	)
	if err != nil {
		s.logger.Error("Location catalog integrity violation", zap.Int64("city_id", city.ID), zap.Error(err))
		return err
	}
	return nil
}

// children pages through the entries of one parent until a short page or maxChildren.
func (s *Service) children(ctx context.Context, level location.Level, parentID int64) []location.Entity {
	if parentID <= 0 {
		return nil
	}
	var out []location.Entity
	for offset := 0; offset < s.maxChildren; offset += s.pageLimit {
		limit := min(s.pageLimit, s.maxChildren-offset)
		page, err := s.catalog.List(ctx, level, parentID, offset, limit)
		if err != nil {
			s.fail(level, "list", err, zap.Int64("parent_id", parentID), zap.Int("offset", offset))
			return nil
		}
		out = append(out, page...)
		if len(page) < limit {
			break
		}
	}
	return out
}

func (s *Service) fail(level location.Level, op string, err error, fields ...zap.Field) {
	if s.errTotal != nil {
		s.errTotal.WithLabelValues(string(level)).Inc()
	}
	fields = append(fields, zap.String("level", string(level)), zap.String("op", op), zap.Error(err))
	s.logger.Warn("Location catalog unavailable, returning empty result", fields...)
}
