package replay

import (
	"errors"
	"log/slog"

	"github.com/talgya/chain-replay/internal/climate"
	"github.com/talgya/chain-replay/internal/panels"
)

// ErrNoData reports that the simulation output contained no rounds at all,
// so there is nothing to reconstruct.
var ErrNoData = errors.New("no simulation data")

// PanelSource yields per-agent panel rows for one category. panels.Dir (the
// exported CSVs) and panels.Store (simulation.db) both implement it.
type PanelSource interface {
	ReadRound(cat panels.Category, round int) ([]panels.Row, error)
	MaxRound(cat panels.Category) (int, error)
}

// Aggregator rebuilds RoundSnapshots from panel rows plus the loaded
// geography and event history. Geo and History are read-only once set;
// rounds are independent of each other.
type Aggregator struct {
	Source  PanelSource
	Config  panels.Config
	Geo     climate.Assignments
	History climate.EventHistory
}

// BuildRound reconstructs a single round. Failures reading one category are
// logged and leave that category's totals at zero; they never abort the
// round or touch other categories.
func (ag *Aggregator) BuildRound(round int) RoundSnapshot {
	snap := RoundSnapshot{
		Round:      round,
		Agents:     []AgentRecord{},
		Events:     climate.RoundEvents{},
		Production: map[string]float64{},
		Inventory:  map[string]float64{},
		Wealth:     map[string]float64{},
	}
	if round >= 0 && round < len(ag.History) {
		snap.Events = ag.History[round]
	}

	for _, cat := range ag.Config.Categories {
		if !cat.Consumer {
			snap.Production[cat.Name] = 0
			snap.Inventory[cat.Name] = 0
		}
		snap.Wealth[cat.Name] = 0
	}

	for _, cat := range ag.Config.Categories {
		rows, err := ag.Source.ReadRound(cat, round)
		if err != nil {
			slog.Warn("panel read failed", "category", cat.Name, "round", round, "error", err)
			continue
		}

		for _, row := range rows {
			loc := ag.Geo.Lookup(cat.Name, row.ID)
			rec := AgentRecord{
				Category:      cat.Name,
				ID:            row.ID,
				Round:         round,
				Wealth:        row.Money,
				Stressed:      climate.Stressed(cat.Name, row.ID, snap.Events, ag.Geo),
				Continent:     loc.Continent,
				Vulnerability: loc.Vulnerability,
			}
			if cat.Consumer {
				rec.Consumption = row.Quantity
			} else {
				rec.Production = row.Quantity
				snap.Production[cat.Name] += row.Quantity
				snap.Inventory[cat.Name] += row.Inventory
			}
			snap.Wealth[cat.Name] += row.Money
			snap.Agents = append(snap.Agents, rec)
		}
	}
	return snap
}

// BuildAll reconstructs rounds 0 through rounds-1 in order. The event
// history is padded (or truncated) to the round count first so indexing by
// round number inside BuildRound never falls off the end. A non-positive
// round count is the explicit no-data outcome.
func (ag *Aggregator) BuildAll(rounds int) ([]RoundSnapshot, error) {
	if rounds <= 0 {
		return nil, ErrNoData
	}
	ag.History = ag.History.Padded(rounds)

	snaps := make([]RoundSnapshot, 0, rounds)
	for r := 0; r < rounds; r++ {
		snaps = append(snaps, ag.BuildRound(r))
	}
	return snaps, nil
}

// DetectRounds derives the simulation length by inspecting every configured
// category's panel and taking the highest recorded round. Returns ErrNoData
// when no panel holds any rows.
func DetectRounds(src PanelSource, cfg panels.Config) (int, error) {
	max := -1
	for _, cat := range cfg.Categories {
		m, err := src.MaxRound(cat)
		if err != nil {
			slog.Warn("round detection failed for category", "category", cat.Name, "error", err)
			continue
		}
		if m > max {
			max = m
		}
	}
	if max < 0 {
		return 0, ErrNoData
	}
	return max + 1, nil
}
