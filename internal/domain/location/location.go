// Package location holds the Country → State → City → Area taxonomy types.
package location

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobscout/internal/domain"
)

// Level is one tier of the location hierarchy.
type Level string

// Hierarchy levels, root first.
const (
	LevelCountry Level = "country"
	LevelState   Level = "state"
	LevelCity    Level = "city"
	LevelArea    Level = "area"
)

// IsValid checks if the level is one of the supported values.
func (l Level) IsValid() bool {
	return l == LevelCountry || l == LevelState || l == LevelCity || l == LevelArea
}

// Parent returns the level directly above l, or "" for the root.
func (l Level) Parent() Level {
	switch l {
	case LevelState:
		return LevelCountry
	case LevelCity:
		return LevelState
	case LevelArea:
		return LevelCity
	default:
		return ""
	}
}

// Country is a root catalog entry.
type Country struct {
	ID   int64
	Name string
}

// State belongs to exactly one Country.
type State struct {
	ID        int64
	Name      string
	CountryID int64
}

// City belongs to one State. CountryID is denormalized and must equal the state's country.
type City struct {
	ID        int64
	Name      string
	StateID   int64
	CountryID int64
}

// Area belongs to exactly one City.
type Area struct {
	ID     int64
	Name   string
	CityID int64
}

// Entity is a level-agnostic view of a catalog row used by paged accessors.
// ParentID is 0 for countries. CountryID is set for states and cities.
type Entity struct {
	Level     Level
	ID        int64
	Name      string
	ParentID  int64
	CountryID int64
}

// Entity converts the country to its generic form.
func (c Country) Entity() Entity {
	return Entity{Level: LevelCountry, ID: c.ID, Name: c.Name}
}

// Entity converts the state to its generic form.
func (s State) Entity() Entity {
	return Entity{Level: LevelState, ID: s.ID, Name: s.Name, ParentID: s.CountryID, CountryID: s.CountryID}
}

// Entity converts the city to its generic form.
func (c City) Entity() Entity {
	return Entity{Level: LevelCity, ID: c.ID, Name: c.Name, ParentID: c.StateID, CountryID: c.CountryID}
}

// Entity converts the area to its generic form.
func (a Area) Entity() Entity {
	return Entity{Level: LevelArea, ID: a.ID, Name: a.Name, ParentID: a.CityID}
}

// CheckCity verifies the denormalized country of a city against its state.
func CheckCity(city City, state State) error {
	if city.StateID != state.ID {
		return fmt.Errorf("city %d references state %d, got state %d: %w",
			city.ID, city.StateID, state.ID, domain.ErrIntegrity)
	}
	if city.CountryID != state.CountryID {
		return fmt.Errorf("city %d has country %d but state %d has country %d: %w",
			city.ID, city.CountryID, state.ID, state.CountryID, domain.ErrIntegrity)
	}
	return nil
}

// NormalizeName lower-cases a name and collapses runs of whitespace, hyphens and
// underscores into single spaces so that slugs and catalog names compare equal.
func NormalizeName(name string) string {
	return strings.Join(Words(name), " ")
}

// Words splits a slug or name into lower-case words.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
