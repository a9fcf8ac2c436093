package panels

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store reads panel rows straight from the simulation.db database the
// simulation logger writes before CSV export. Each category lives in a
// panel_<category> table with the same columns as its exported CSV.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens the simulation database read-only.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// ReadRound mirrors Dir.ReadRound over the panel_<category> table. A missing
// table is treated like a missing CSV: no rows, no error.
func (s *Store) ReadRound(cat Category, round int) ([]Row, error) {
	table, ok, err := s.tableFor(cat)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Debug("panel table missing", "category", cat.Name, "table", table)
		return nil, nil
	}

	res, err := s.conn.Queryx(fmt.Sprintf("SELECT * FROM %s WHERE round = ?", table), round)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer res.Close()

	var rows []Row
	for res.Next() {
		rec := map[string]any{}
		if err := res.MapScan(rec); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}

		id, err := agentID(cat, stringValue(rec["name"]))
		if err != nil {
			slog.Warn("skipping panel row with bad agent name",
				"category", cat.Name, "round", round, "name", stringValue(rec["name"]))
			continue
		}

		rows = append(rows, Row{
			ID:        id,
			Money:     floatValue(rec[cat.MoneyField]),
			Quantity:  floatValue(rec[cat.QuantityField]),
			Inventory: floatValue(rec[inventoryField]),
		})
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return rows, nil
}

// MaxRound returns the highest round recorded in cat's panel table, or -1
// when the table is missing or empty.
func (s *Store) MaxRound(cat Category) (int, error) {
	table, ok, err := s.tableFor(cat)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, nil
	}

	var max *int
	if err := s.conn.Get(&max, fmt.Sprintf("SELECT MAX(round) FROM %s", table)); err != nil {
		return -1, fmt.Errorf("max round %s: %w", table, err)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// tableFor maps a category to its panel table and checks it exists.
func (s *Store) tableFor(cat Category) (string, bool, error) {
	table := "panel_" + cat.Name
	var n int
	err := s.conn.Get(&n,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err != nil {
		return table, false, fmt.Errorf("check table %s: %w", table, err)
	}
	return table, n > 0, nil
}

// stringValue and floatValue normalize the loosely typed values MapScan
// yields from SQLite (TEXT may arrive as []byte, numbers as int64 or float64).
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
