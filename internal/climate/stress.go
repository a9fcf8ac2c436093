package climate

// Stressed decides whether one agent is hit by any active event this round.
// Both recorded event shapes are accepted: modern entries carry a descriptor
// listing affected categories and continents, legacy entries key the event by
// a continent name and carry no descriptor. The result is a boolean OR over
// all events, so order and extra non-matching entries never change it.
func Stressed(category string, id int, events RoundEvents, geo Assignments) bool {
	for name, desc := range events {
		if desc == nil {
			// Legacy shape: the event name is itself the stressed continent.
			if KnownContinent(name) && geo.Lookup(category, id).Continent == name {
				return true
			}
			continue
		}
		if !desc.AffectsCategory(category) {
			continue
		}
		if desc.AffectsContinent(geo.Lookup(category, id).Continent) {
			return true
		}
	}
	return false
}
