package panels

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// inventoryField is the optional cumulative-inventory column producing
// panels may carry.
const inventoryField = "cumulative_inventory"

// Row is one agent's panel record for one round.
type Row struct {
	ID        int
	Money     float64
	Quantity  float64
	Inventory float64 // cumulative inventory, 0 when the panel has no such column
}

// Dir reads exported panel CSVs from a simulation output directory.
type Dir struct {
	Path string
}

// ReadRound returns cat's rows for one round. A missing panel file yields no
// rows and no error: that category simply sits out the whole run. Rows whose
// name field does not parse back to an agent id, or whose numeric fields are
// garbled, are skipped with a diagnostic.
func (d Dir) ReadRound(cat Category, round int) ([]Row, error) {
	path := filepath.Join(d.Path, cat.File)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("panel file missing", "category", cat.Name, "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("open panel %s: %w", cat.File, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("panel %s: read header: %w", cat.File, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"round", "name", cat.MoneyField, cat.QuantityField} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("panel %s: missing column %q", cat.File, required)
		}
	}
	_, hasInventory := col[inventoryField]

	field := func(rec []string, name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("skipping malformed panel row", "category", cat.Name, "line", line, "error", err)
			continue
		}

		r, err := strconv.Atoi(field(rec, "round"))
		if err != nil || r != round {
			continue
		}

		id, err := agentID(cat, field(rec, "name"))
		if err != nil {
			slog.Warn("skipping panel row with bad agent name",
				"category", cat.Name, "round", round, "line", line, "name", field(rec, "name"))
			continue
		}

		row := Row{ID: id}
		if row.Money, err = floatField(field(rec, cat.MoneyField)); err != nil {
			slog.Warn("skipping panel row with bad money value",
				"category", cat.Name, "round", round, "line", line, "value", field(rec, cat.MoneyField))
			continue
		}
		if row.Quantity, err = floatField(field(rec, cat.QuantityField)); err != nil {
			slog.Warn("skipping panel row with bad quantity value",
				"category", cat.Name, "round", round, "line", line, "value", field(rec, cat.QuantityField))
			continue
		}
		if hasInventory {
			if row.Inventory, err = floatField(field(rec, inventoryField)); err != nil {
				slog.Warn("skipping panel row with bad inventory value",
					"category", cat.Name, "round", round, "line", line, "value", field(rec, inventoryField))
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MaxRound returns the highest round number recorded in cat's panel, or -1
// when the panel is missing or holds no parseable rows.
func (d Dir) MaxRound(cat Category) (int, error) {
	path := filepath.Join(d.Path, cat.File)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return -1, nil
		}
		return -1, fmt.Errorf("open panel %s: %w", cat.File, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return -1, fmt.Errorf("panel %s: read header: %w", cat.File, err)
	}
	roundCol := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "round" {
			roundCol = i
			break
		}
	}
	if roundCol < 0 {
		return -1, fmt.Errorf("panel %s: missing column %q", cat.File, "round")
	}

	max := -1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if roundCol >= len(rec) {
			continue
		}
		if r, err := strconv.Atoi(strings.TrimSpace(rec[roundCol])); err == nil && r > max {
			max = r
		}
	}
	return max, nil
}

// agentID recovers the numeric agent id from a panel name field by stripping
// the category prefix ("commodity_producer3" → 3).
func agentID(cat Category, name string) (int, error) {
	suffix := strings.TrimPrefix(name, cat.Name)
	suffix = strings.TrimPrefix(suffix, "_")
	return strconv.Atoi(suffix)
}

// floatField parses a numeric panel value; an empty field reads as zero.
func floatField(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
