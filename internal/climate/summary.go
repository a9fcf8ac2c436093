package climate

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SummaryFile is the combined geography/event record the simulation writes
// alongside its panel output.
const SummaryFile = "climate_3_layer_summary.csv"

// geographyType is the data_type discriminator marking geography rows; any
// other value is an event row whose data_type carries the rule name.
const geographyType = "geographical_assignment"

// LoadSummary reads the combined summary record from a simulation output
// directory and splits it into geographic assignments and the per-round event
// history (dense from round 0 through the last round with a recorded event).
// A missing summary is not an error: both results come back empty and the
// rest of the pipeline runs without geography or events. Malformed rows are
// skipped with a diagnostic; LoadSummary never fails.
func LoadSummary(dir string) (Assignments, EventHistory) {
	path := filepath.Join(dir, SummaryFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("climate summary not found, continuing without geography or events", "path", path)
		} else {
			slog.Warn("climate summary unreadable", "path", path, "error", err)
		}
		return Assignments{}, EventHistory{}
	}
	defer f.Close()
	return parseSummary(f, path)
}

func parseSummary(r io.Reader, path string) (Assignments, EventHistory) {
	geo := Assignments{}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		slog.Warn("climate summary has no header", "path", path, "error", err)
		return geo, EventHistory{}
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	// Events keyed by round, then by event name, built up row by row.
	byRound := map[int]RoundEvents{}
	maxRound := -1

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("skipping malformed summary row", "path", path, "line", line, "error", err)
			continue
		}

		if field(rec, "data_type") == geographyType {
			id, err := strconv.Atoi(field(rec, "agent_id"))
			if err != nil {
				slog.Warn("skipping geography row with bad agent id", "path", path, "line", line, "agent_id", field(rec, "agent_id"))
				continue
			}
			vuln, err := strconv.ParseFloat(field(rec, "vulnerability"), 64)
			if err != nil {
				slog.Warn("skipping geography row with bad vulnerability", "path", path, "line", line, "vulnerability", field(rec, "vulnerability"))
				continue
			}
			geo.Add(field(rec, "agent_type"), id, Location{
				Continent:     field(rec, "continent"),
				Vulnerability: vuln,
			})
			continue
		}

		// Event row: agent_id holds the round number.
		round, err := strconv.Atoi(field(rec, "agent_id"))
		if err != nil {
			slog.Warn("skipping event row with bad round number", "path", path, "line", line, "agent_id", field(rec, "agent_id"))
			continue
		}
		name := field(rec, "event_name")
		if name == "" {
			slog.Warn("skipping event row without event name", "path", path, "line", line)
			continue
		}

		events, ok := byRound[round]
		if !ok {
			events = RoundEvents{}
			byRound[round] = events
		}
		if round > maxRound {
			maxRound = round
		}

		desc := events[name]
		if desc == nil {
			// First row for this event defines everything but the continent set.
			desc = &EventDescriptor{
				Rule:         field(rec, "data_type"),
				AgentTypes:   splitList(field(rec, "affected_agent_types")),
				StressFactor: floatOr(field(rec, "stress_factor"), 1.0),
				Duration:     intOr(field(rec, "duration"), 1),
			}
			events[name] = desc
		}
		// Affected continents are the union across the event's rows.
		if c := field(rec, "continent"); c != "" && !contains(desc.Continents, c) {
			desc.Continents = append(desc.Continents, c)
		}
	}

	history := make(EventHistory, maxRound+1)
	for r := range history {
		if events, ok := byRound[r]; ok {
			history[r] = events
		} else {
			history[r] = RoundEvents{}
		}
	}

	slog.Info("climate summary loaded",
		"path", path,
		"agent_types", len(geo),
		"event_rounds", len(byRound),
		"rounds", len(history),
	)
	return geo, history
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func floatOr(s string, def float64) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return def
}

func intOr(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	// Durations sometimes round-trip through a float column.
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return def
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
