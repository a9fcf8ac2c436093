// Package panels reads the per-agent panel records the simulation logger
// persists, one source per agent category — either the exported panel CSV
// files or the simulation.db database they are exported from.
package panels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category describes one agent category's panel source.
type Category struct {
	Name          string `yaml:"name"`           // agent category, also the row name prefix
	File          string `yaml:"file"`           // panel CSV filename inside the simulation dir
	QuantityField string `yaml:"quantity_field"` // produced (or, for consumers, consumed) quantity column
	MoneyField    string `yaml:"money_field"`    // wealth column, defaults to "money"
	Consumer      bool   `yaml:"consumer"`       // end-consumer: quantity is consumption, never production
}

// Config is the ordered category set the aggregator walks each round.
type Config struct {
	Categories []Category `yaml:"categories"`
}

// Category returns the named category's config, if present.
func (c Config) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// DefaultConfig covers the 3-layer supply chain model the simulation ships
// with: three producing layers plus the household consumer tier.
func DefaultConfig() Config {
	return Config{Categories: []Category{
		{Name: "commodity_producer", File: "panel_commodity_producer_production.csv", QuantityField: "commodity", MoneyField: "money"},
		{Name: "intermediary_firm", File: "panel_intermediary_firm_production.csv", QuantityField: "intermediate_good", MoneyField: "money"},
		{Name: "final_goods_firm", File: "panel_final_goods_firm_production.csv", QuantityField: "final_good", MoneyField: "money"},
		{Name: "household", File: "panel_household_consumption.csv", QuantityField: "consumption", MoneyField: "money", Consumer: true},
	}}
}

// LoadConfig reads a category config from a YAML file and applies field
// defaults. Categories need at least a name, a file, and a quantity column.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return Config{}, fmt.Errorf("config %s: no categories defined", path)
	}

	for i := range cfg.Categories {
		cat := &cfg.Categories[i]
		if cat.Name == "" || cat.File == "" || cat.QuantityField == "" {
			return Config{}, fmt.Errorf("config %s: category %d needs name, file and quantity_field", path, i)
		}
		if cat.MoneyField == "" {
			cat.MoneyField = "money"
		}
	}
	return cfg, nil
}
