// Package replay rebuilds the round-by-round state of a finished supply-chain
// simulation from its persisted panel and climate summary records.
package replay

import "github.com/talgya/chain-replay/internal/climate"

// AgentRecord is one agent's reconstructed state for one round. Records are
// built fresh per round and never mutated afterwards.
type AgentRecord struct {
	Category      string  `json:"type"`
	ID            int     `json:"id"`
	Round         int     `json:"round"`
	Production    float64 `json:"production"`  // 0 for consumer categories
	Consumption   float64 `json:"consumption"` // meaningful for consumer categories only
	Wealth        float64 `json:"wealth"`
	Stressed      bool    `json:"climate_stressed"`
	Continent     string  `json:"continent"`
	Vulnerability float64 `json:"vulnerability"`
}

// RoundSnapshot is the full reconstructed state of one round: every agent's
// record, the events active that round, and the per-category totals.
type RoundSnapshot struct {
	Round      int                 `json:"round"`
	Agents     []AgentRecord       `json:"agents"`
	Events     climate.RoundEvents `json:"climate_events"`
	Production map[string]float64  `json:"production"` // producing categories only
	Inventory  map[string]float64  `json:"inventory"`  // cumulative, producing categories only
	Wealth     map[string]float64  `json:"wealth"`     // every category, consumers included
}

// StressedCount returns how many agents were climate-stressed this round.
func (s *RoundSnapshot) StressedCount() int {
	n := 0
	for _, a := range s.Agents {
		if a.Stressed {
			n++
		}
	}
	return n
}

// TotalProduction sums production across all producing categories.
func (s *RoundSnapshot) TotalProduction() float64 {
	total := 0.0
	for _, v := range s.Production {
		total += v
	}
	return total
}

// TotalWealth sums wealth across all categories.
func (s *RoundSnapshot) TotalWealth() float64 {
	total := 0.0
	for _, v := range s.Wealth {
		total += v
	}
	return total
}
