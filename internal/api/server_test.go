package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chain-replay/internal/climate"
	"github.com/talgya/chain-replay/internal/panels"
	"github.com/talgya/chain-replay/internal/replay"
)

func testServer() *Server {
	return &Server{
		RunID:  uuid.New(),
		Config: panels.Config{Categories: []panels.Category{
			{Name: "commodity_producer", QuantityField: "commodity"},
			{Name: "household", QuantityField: "consumption", Consumer: true},
		}},
		Snapshots: []replay.RoundSnapshot{
			{
				Round:  0,
				Agents: []replay.AgentRecord{{Category: "commodity_producer", ID: 0, Production: 10, Wealth: 100}},
				Events: climate.RoundEvents{},
				Production: map[string]float64{"commodity_producer": 10},
				Inventory:  map[string]float64{"commodity_producer": 10},
				Wealth:     map[string]float64{"commodity_producer": 100, "household": 0},
			},
			{
				Round: 1,
				Agents: []replay.AgentRecord{
					{Category: "commodity_producer", ID: 0, Production: 4, Wealth: 90, Stressed: true, Continent: "Asia"},
				},
				Events:     climate.RoundEvents{"heatwave": {AgentTypes: []string{"commodity_producer"}, Continents: []string{"Asia"}}},
				Production: map[string]float64{"commodity_producer": 4},
				Inventory:  map[string]float64{"commodity_producer": 14},
				Wealth:     map[string]float64{"commodity_producer": 90, "household": 0},
			},
		},
	}
}

func TestHandleStatus(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["rounds"])
	assert.Equal(t, float64(1), body["event_rounds"])
	assert.Equal(t, s.RunID.String(), body["run_id"])
}

func TestHandleRound(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	s.handleRound(rec, httptest.NewRequest(http.MethodGet, "/api/v1/round/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap replay.RoundSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 4.0, snap.Production["commodity_producer"])

	rec = httptest.NewRecorder()
	s.handleRound(rec, httptest.NewRequest(http.MethodGet, "/api/v1/round/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.handleRound(rec, httptest.NewRequest(http.MethodGet, "/api/v1/round/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummary(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleSummary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rounds         []int                `json:"rounds"`
		Production     map[string][]float64 `json:"production"`
		Wealth         map[string][]float64 `json:"wealth"`
		StressedAgents []int                `json:"stressed_agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, []int{0, 1}, body.Rounds)
	assert.Equal(t, []float64{10, 4}, body.Production["commodity_producer"])
	assert.NotContains(t, body.Production, "household", "consumers have no production series")
	assert.Equal(t, []float64{100, 90}, body.Wealth["commodity_producer"])
	assert.Equal(t, []int{0, 1}, body.StressedAgents)
}
