// Package api serves the reconstructed snapshot series over HTTP for
// frontend animation and charting code. GET-only and read-only: the
// snapshot slice is built before the server starts and never changes.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/chain-replay/internal/panels"
	"github.com/talgya/chain-replay/internal/replay"
)

// Server serves one reconstructed simulation run.
type Server struct {
	RunID     uuid.UUID
	Snapshots []replay.RoundSnapshot
	Config    panels.Config
	Port      int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/rounds", s.handleRounds)
	mux.HandleFunc("/api/v1/round/", s.handleRound)
	mux.HandleFunc("/api/v1/summary", s.handleSummary)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "rounds", len(s.Snapshots))

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// handleStatus reports what this run contains.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	categories := make([]string, 0, len(s.Config.Categories))
	for _, cat := range s.Config.Categories {
		categories = append(categories, cat.Name)
	}

	eventRounds := 0
	for _, snap := range s.Snapshots {
		if len(snap.Events) > 0 {
			eventRounds++
		}
	}

	writeJSON(w, map[string]any{
		"run_id":       s.RunID.String(),
		"rounds":       len(s.Snapshots),
		"categories":   categories,
		"event_rounds": eventRounds,
	})
}

// handleRounds returns the full snapshot series.
func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Snapshots)
}

// handleRound returns one snapshot (GET /api/v1/round/:n).
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/round/")
	n, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "bad round number", http.StatusBadRequest)
		return
	}
	if n < 0 || n >= len(s.Snapshots) {
		http.Error(w, "round out of range", http.StatusNotFound)
		return
	}
	writeJSON(w, s.Snapshots[n])
}

// handleSummary returns the per-round time series the charting frontends
// plot: production and wealth by category plus stressed-agent counts.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rounds := make([]int, 0, len(s.Snapshots))
	stressed := make([]int, 0, len(s.Snapshots))
	production := map[string][]float64{}
	wealth := map[string][]float64{}

	for _, snap := range s.Snapshots {
		rounds = append(rounds, snap.Round)
		stressed = append(stressed, snap.StressedCount())
		for _, cat := range s.Config.Categories {
			if !cat.Consumer {
				production[cat.Name] = append(production[cat.Name], snap.Production[cat.Name])
			}
			wealth[cat.Name] = append(wealth[cat.Name], snap.Wealth[cat.Name])
		}
	}

	writeJSON(w, map[string]any{
		"rounds":          rounds,
		"production":      production,
		"wealth":          wealth,
		"stressed_agents": stressed,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are always
// allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
