package climate

// WildcardContinent in a descriptor's continent set matches every continent,
// including agents whose continent is unknown.
const WildcardContinent = "all"

// EventDescriptor describes one climate shock rule active in a round.
type EventDescriptor struct {
	Rule         string   `json:"rule_name"`
	AgentTypes   []string `json:"agent_types"`
	Continents   []string `json:"continents"`
	StressFactor float64  `json:"stress_factor"` // severity multiplier, 1.0 when unrecorded
	Duration     int      `json:"duration"`      // rounds, 1 when unrecorded
}

// AffectsCategory reports whether the event targets the given agent category.
func (e *EventDescriptor) AffectsCategory(category string) bool {
	for _, t := range e.AgentTypes {
		if t == category {
			return true
		}
	}
	return false
}

// AffectsContinent reports whether the event reaches the given continent.
// The "all" wildcard bypasses the comparison entirely.
func (e *EventDescriptor) AffectsContinent(continent string) bool {
	for _, c := range e.Continents {
		if c == WildcardContinent || c == continent {
			return true
		}
	}
	return false
}

// RoundEvents maps event name to descriptor for one round. An empty map means
// no events fired. Legacy histories key an event by a continent name with a
// nil descriptor; Stressed resolves that shape with a single explicit check.
type RoundEvents map[string]*EventDescriptor

// EventHistory is the dense per-round event sequence, indexed by round number.
// Rounds without events hold an empty map, never a gap.
type EventHistory []RoundEvents

// Padded returns a history of exactly n rounds, extending with empty rounds
// or dropping the tail as needed, so indexing by round number always lands.
func (h EventHistory) Padded(n int) EventHistory {
	if n < 0 {
		n = 0
	}
	if len(h) >= n {
		return h[:n]
	}
	out := make(EventHistory, n)
	copy(out, h)
	for i := len(h); i < n; i++ {
		out[i] = RoundEvents{}
	}
	return out
}
