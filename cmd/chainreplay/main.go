// Command chainreplay rebuilds the round-by-round dataset of a finished
// climate 3-layer supply chain simulation from its persisted output and
// either logs a run summary or serves the dataset over HTTP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/talgya/chain-replay/internal/api"
	"github.com/talgya/chain-replay/internal/climate"
	"github.com/talgya/chain-replay/internal/panels"
	"github.com/talgya/chain-replay/internal/replay"
)

func main() {
	var (
		path       = flag.String("path", "", "simulation output directory (required)")
		configPath = flag.String("config", "", "category config YAML (default: built-in 3-layer set)")
		rounds     = flag.Int("rounds", 0, "round count override (default: detected from panel data)")
		useDB      = flag.Bool("db", false, "read panels from simulation.db instead of exported CSVs")
		serve      = flag.Bool("serve", false, "serve the reconstructed dataset over HTTP")
		port       = flag.Int("port", 8090, "HTTP API port")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: chainreplay -path <simulation output dir> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	runID := uuid.New()
	slog.Info("chain replay starting", "run_id", runID, "path", *path)

	// ── Category configuration ────────────────────────────────────────
	cfg := panels.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = panels.LoadConfig(*configPath)
		if err != nil {
			slog.Error("failed to load category config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		slog.Info("category config loaded", "path", *configPath, "categories", len(cfg.Categories))
	}

	// ── Panel source ──────────────────────────────────────────────────
	var source replay.PanelSource = panels.Dir{Path: *path}
	if *useDB {
		dbPath := *path + "/simulation.db"
		store, err := panels.OpenStore(dbPath)
		if err != nil {
			slog.Error("failed to open simulation database", "path", dbPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		source = store
		slog.Info("reading panels from simulation database", "path", dbPath)
	}

	// ── Geography and events ──────────────────────────────────────────
	geo, history := climate.LoadSummary(*path)

	// ── Reconstruction ────────────────────────────────────────────────
	n := *rounds
	if n <= 0 {
		var err error
		n, err = replay.DetectRounds(source, cfg)
		if err != nil {
			if errors.Is(err, replay.ErrNoData) {
				slog.Error("no simulation data found, nothing to reconstruct", "path", *path)
			} else {
				slog.Error("round detection failed", "error", err)
			}
			os.Exit(1)
		}
		slog.Info("detected simulation length", "rounds", n)
	}

	ag := &replay.Aggregator{Source: source, Config: cfg, Geo: geo, History: history}
	snaps, err := ag.BuildAll(n)
	if err != nil {
		slog.Error("reconstruction failed", "error", err)
		os.Exit(1)
	}

	// ── Run summary ───────────────────────────────────────────────────
	totalStressed := 0
	for _, snap := range snaps {
		totalStressed += snap.StressedCount()
	}
	last := snaps[len(snaps)-1]
	slog.Info("reconstruction complete",
		"rounds", len(snaps),
		"agents_last_round", len(last.Agents),
		"stress_events", totalStressed,
		"final_production", fmt.Sprintf("%.2f", last.TotalProduction()),
		"final_wealth", fmt.Sprintf("%.2f", last.TotalWealth()),
	)
	for _, cat := range cfg.Categories {
		if cat.Consumer {
			slog.Info("category summary", "category", cat.Name,
				"wealth", fmt.Sprintf("%.2f", last.Wealth[cat.Name]))
			continue
		}
		slog.Info("category summary", "category", cat.Name,
			"production", fmt.Sprintf("%.2f", last.Production[cat.Name]),
			"inventory", fmt.Sprintf("%.2f", last.Inventory[cat.Name]),
			"wealth", fmt.Sprintf("%.2f", last.Wealth[cat.Name]),
		)
	}

	if !*serve {
		return
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	server := &api.Server{RunID: runID, Snapshots: snaps, Config: cfg, Port: *port}
	server.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")
}
