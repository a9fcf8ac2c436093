package replay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chain-replay/internal/climate"
	"github.com/talgya/chain-replay/internal/panels"
)

// fakeSource serves panel rows from memory, keyed by category and round.
type fakeSource struct {
	rows map[string]map[int][]panels.Row
	errs map[string]error
}

func (f *fakeSource) ReadRound(cat panels.Category, round int) ([]panels.Row, error) {
	if err := f.errs[cat.Name]; err != nil {
		return nil, err
	}
	return f.rows[cat.Name][round], nil
}

func (f *fakeSource) MaxRound(cat panels.Category) (int, error) {
	if err := f.errs[cat.Name]; err != nil {
		return -1, err
	}
	max := -1
	for r := range f.rows[cat.Name] {
		if r > max {
			max = r
		}
	}
	return max, nil
}

func testConfig() panels.Config {
	return panels.Config{Categories: []panels.Category{
		{Name: "commodity_producer", File: "p.csv", QuantityField: "commodity", MoneyField: "money"},
		{Name: "household", File: "h.csv", QuantityField: "consumption", MoneyField: "money", Consumer: true},
	}}
}

func TestBuildRoundProductionTotals(t *testing.T) {
	src := &fakeSource{rows: map[string]map[int][]panels.Row{
		"commodity_producer": {0: {
			{ID: 0, Money: 100, Quantity: 10, Inventory: 4},
			{ID: 1, Money: 80, Quantity: 15, Inventory: 6},
		}},
	}}
	ag := &Aggregator{Source: src, Config: testConfig(), Geo: climate.Assignments{}}

	snap := ag.BuildRound(0)
	assert.Equal(t, 25.0, snap.Production["commodity_producer"])
	assert.Equal(t, 10.0, snap.Inventory["commodity_producer"])
	assert.Equal(t, 180.0, snap.Wealth["commodity_producer"])

	// Per-category production total equals the sum over that category's records.
	var sum float64
	for _, a := range snap.Agents {
		if a.Category == "commodity_producer" {
			sum += a.Production
		}
	}
	assert.Equal(t, snap.Production["commodity_producer"], sum)
}

func TestBuildRoundConsumerCategory(t *testing.T) {
	src := &fakeSource{rows: map[string]map[int][]panels.Row{
		"household": {0: {
			{ID: 0, Money: 50, Quantity: 7},
			{ID: 1, Money: 60, Quantity: 3},
		}},
	}}
	ag := &Aggregator{Source: src, Config: testConfig(), Geo: climate.Assignments{}}

	snap := ag.BuildRound(0)

	// Households never contribute production, even with a populated quantity.
	_, ok := snap.Production["household"]
	assert.False(t, ok)
	assert.Equal(t, 110.0, snap.Wealth["household"])

	require.Len(t, snap.Agents, 2)
	assert.Equal(t, 0.0, snap.Agents[0].Production)
	assert.Equal(t, 7.0, snap.Agents[0].Consumption)
}

func TestBuildRoundStressAndGeography(t *testing.T) {
	geo := climate.Assignments{}
	geo.Add("commodity_producer", 0, climate.Location{Continent: "Asia", Vulnerability: 0.3})

	history := climate.EventHistory{
		climate.RoundEvents{},
		climate.RoundEvents{"heatwave": {
			AgentTypes: []string{"commodity_producer"},
			Continents: []string{"Asia"},
		}},
	}
	src := &fakeSource{rows: map[string]map[int][]panels.Row{
		"commodity_producer": {
			0: {{ID: 0, Quantity: 10}, {ID: 1, Quantity: 10}},
			1: {{ID: 0, Quantity: 4}, {ID: 1, Quantity: 10}},
		},
	}}
	ag := &Aggregator{Source: src, Config: testConfig(), Geo: geo, History: history}

	calm := ag.BuildRound(0)
	assert.Equal(t, 0, calm.StressedCount())

	hot := ag.BuildRound(1)
	require.Len(t, hot.Agents, 2)
	assert.True(t, hot.Agents[0].Stressed, "assigned Asian producer stressed")
	assert.Equal(t, "Asia", hot.Agents[0].Continent)
	assert.Equal(t, 0.3, hot.Agents[0].Vulnerability)
	assert.False(t, hot.Agents[1].Stressed, "unassigned producer resolves to Unknown, unaffected")
	assert.Equal(t, climate.UnknownContinent, hot.Agents[1].Continent)
	assert.Equal(t, 1, hot.StressedCount())
}

func TestBuildRoundCategoryFailureIsIsolated(t *testing.T) {
	src := &fakeSource{
		rows: map[string]map[int][]panels.Row{
			"household": {0: {{ID: 0, Money: 50, Quantity: 7}}},
		},
		errs: map[string]error{"commodity_producer": errors.New("disk gone")},
	}
	ag := &Aggregator{Source: src, Config: testConfig(), Geo: climate.Assignments{}}

	snap := ag.BuildRound(0)
	require.Len(t, snap.Agents, 1, "household records survive the producer failure")
	assert.Equal(t, 0.0, snap.Production["commodity_producer"])
}

func TestBuildAllPadsHistory(t *testing.T) {
	src := &fakeSource{rows: map[string]map[int][]panels.Row{
		"commodity_producer": {
			0: {{ID: 0, Quantity: 1}},
			1: {{ID: 0, Quantity: 2}},
			2: {{ID: 0, Quantity: 3}},
		},
	}}
	// Only one round of recorded events for three rounds of panel data.
	ag := &Aggregator{
		Source:  src,
		Config:  testConfig(),
		Geo:     climate.Assignments{},
		History: climate.EventHistory{climate.RoundEvents{"heatwave": {}}},
	}

	snaps, err := ag.BuildAll(3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	for r, snap := range snaps {
		assert.Equal(t, r, snap.Round)
		assert.NotNil(t, snap.Events)
	}
	assert.Empty(t, snaps[2].Events)
	assert.Equal(t, 3.0, snaps[2].Production["commodity_producer"])
}

func TestBuildAllNoData(t *testing.T) {
	ag := &Aggregator{Source: &fakeSource{}, Config: testConfig(), Geo: climate.Assignments{}}

	_, err := ag.BuildAll(0)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDetectRounds(t *testing.T) {
	src := &fakeSource{rows: map[string]map[int][]panels.Row{
		"commodity_producer": {0: {{ID: 0}}, 4: {{ID: 0}}},
		"household":          {2: {{ID: 0}}},
	}}

	rounds, err := DetectRounds(src, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 5, rounds)

	_, err = DetectRounds(&fakeSource{}, testConfig())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDetectRoundsSurvivesCategoryError(t *testing.T) {
	src := &fakeSource{
		rows: map[string]map[int][]panels.Row{"household": {1: {{ID: 0}}}},
		errs: map[string]error{"commodity_producer": errors.New("disk gone")},
	}

	rounds, err := DetectRounds(src, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, rounds)
}
