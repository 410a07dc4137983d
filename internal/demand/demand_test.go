package demand

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepooling/internal/graph"
	"ridepooling/internal/loader"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New([]graph.StationID{"A", "B", "C"},
		map[[2]graph.StationID]float64{
			{"A", "A"}: 0, {"A", "B"}: 5, {"A", "C"}: 8,
			{"B", "A"}: 5, {"B", "B"}: 0, {"B", "C"}: 6,
			{"C", "A"}: 8, {"C", "B"}: 6, {"C", "C"}: 0,
		},
		map[[2]graph.StationID]float64{
			{"A", "A"}: 0, {"A", "B"}: 1, {"A", "C"}: 2,
			{"B", "A"}: 1, {"B", "B"}: 0, {"B", "C"}: 1,
			{"C", "A"}: 2, {"C", "B"}: 1, {"C", "C"}: 0,
		},
	)
	require.NoError(t, err)
	return g
}

func fullDemandTable(p float64) loader.DemandTable {
	var table loader.DemandTable
	for h := 0; h < loader.HoursPerDay; h++ {
		for w := 0; w < loader.WeekdaysPerWeek; w++ {
			table[h][w] = p
		}
	}
	return table
}

func uniformStationProbability() loader.StationProbability {
	var sp loader.StationProbability
	sp.Stations = []graph.StationID{"A", "B", "C"}
	for h := 0; h < loader.HoursPerDay; h++ {
		sp.Weights[h] = []float64{1, 1, 1}
	}
	return sp
}

func TestGenerateAlwaysFiresAtDemandOne(t *testing.T) {
	g := testGraph(t)
	cfg := Config{
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		OrderBehaviour: 1.0,
		OrderAheadMin:  5,
		OrderAheadMax:  5,
		DemandFactor:   1.0,
		DelayMax:       10,
	}
	p := New(cfg, g, fullDemandTable(1.0), uniformStationProbability(), rand.New(rand.NewSource(1)))

	reqs, err := p.Generate(10)
	require.NoError(t, err)
	assert.Len(t, reqs, 10)
	for _, r := range reqs {
		assert.NotEqual(t, r.Origin, r.Destination)
		assert.Equal(t, 10, r.MaxDelay)
		assert.True(t, r.Passengers >= 1 && r.Passengers <= 6)
	}
}

func TestGenerateNeverFiresAtDemandZero(t *testing.T) {
	g := testGraph(t)
	cfg := Config{
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		OrderBehaviour: 0.5,
		OrderAheadMin:  5,
		OrderAheadMax:  10,
		DemandFactor:   1.0,
		DelayMax:       10,
	}
	p := New(cfg, g, fullDemandTable(0.0), uniformStationProbability(), rand.New(rand.NewSource(1)))

	reqs, err := p.Generate(50)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestGenerateIsDeterministicForFixedSeed(t *testing.T) {
	g := testGraph(t)
	cfg := Config{
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		OrderBehaviour: 0.4,
		OrderAheadMin:  5,
		OrderAheadMax:  20,
		DemandFactor:   0.5,
		DelayMax:       10,
	}
	table := fullDemandTable(0.5)
	sp := uniformStationProbability()

	run := func() []string {
		p := New(cfg, g, table, sp, rand.New(rand.NewSource(42)))
		reqs, err := p.Generate(200)
		require.NoError(t, err)
		ids := make([]string, len(reqs))
		for i, r := range reqs {
			ids[i] = string(r.ID)
		}
		return ids
	}

	assert.Equal(t, run(), run())
}

func TestGenerateDefaultsPassengerDistribution(t *testing.T) {
	cfg := Config{StartDate: time.Now().UTC(), DemandFactor: 1.0}
	p := New(cfg, testGraph(t), fullDemandTable(1.0), uniformStationProbability(), rand.New(rand.NewSource(1)))
	assert.Equal(t, DefaultPassengerDistribution, p.cfg.PassengerDistribution)
}
