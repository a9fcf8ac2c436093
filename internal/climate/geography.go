// Package climate holds the geography and climate-event model recovered from
// a finished simulation run: which continent every agent sits on, which shock
// rules fired in which round, and whether a given agent was stressed by them.
package climate

// ContinentNames are the continents the simulation distributes agents across.
// Legacy event histories key events directly by these names.
var ContinentNames = []string{"North America", "Europe", "Asia", "South America", "Africa"}

// UnknownContinent is the sentinel for agents with no recorded assignment.
const UnknownContinent = "Unknown"

// KnownContinent reports whether name is one of the recognized continent labels.
func KnownContinent(name string) bool {
	for _, c := range ContinentNames {
		if c == name {
			return true
		}
	}
	return false
}

// Location is one agent's geographic assignment.
type Location struct {
	Continent     string  `json:"continent"`
	Vulnerability float64 `json:"vulnerability"` // 0.0–1.0
}

// Assignments maps agent category → agent id → location. Built once by
// LoadSummary and never mutated afterwards.
type Assignments map[string]map[int]Location

// Lookup returns the location recorded for one agent. Agents without a
// recorded assignment resolve to UnknownContinent with zero vulnerability —
// a total function, never an error.
func (a Assignments) Lookup(category string, id int) Location {
	if byID, ok := a[category]; ok {
		if loc, ok := byID[id]; ok {
			return loc
		}
	}
	return Location{Continent: UnknownContinent}
}

// Add records one agent's assignment, creating the category bucket on first use.
func (a Assignments) Add(category string, id int, loc Location) {
	byID, ok := a[category]
	if !ok {
		byID = make(map[int]Location)
		a[category] = byID
	}
	byID[id] = loc
}
