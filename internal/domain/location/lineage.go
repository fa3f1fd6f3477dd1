package location

// Lineage is the resolved ancestor chain of a catalog entry. Zero IDs are absent.
type Lineage struct {
	CountryID int64
	StateID   int64
	CityID    int64
	AreaID    int64

	CountryName string
	StateName   string
	CityName    string
	AreaName    string
}

// IDOf returns the id fixed at the given level (0 if absent).
func (l Lineage) IDOf(level Level) int64 {
	switch level {
	case LevelCountry:
		return l.CountryID
	case LevelState:
		return l.StateID
	case LevelCity:
		return l.CityID
	case LevelArea:
		return l.AreaID
	default:
		return 0
	}
}

// AncestorNames returns the names above the given level, nearest first.
func (l Lineage) AncestorNames(level Level) []string {
	var names []string
	for lv := level.Parent(); lv != ""; lv = lv.Parent() {
		var n string
		switch lv {
		case LevelCity:
			n = l.CityName
		case LevelState:
			n = l.StateName
		case LevelCountry:
			n = l.CountryName
		}
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}
