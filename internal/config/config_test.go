package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReplayScenario(t *testing.T) {
	ini := `
[simulation]
start_date = 2026-01-01 00:00
end_date = 2026-01-02 00:00
requests_from_csv = true
standing_time = 1

[weights]
delay_factor = 1.0
balance_factor = 2.0
pooling_factor = 1.5
distance_factor = 0.5
delay_max = 10
standing_time = 1

[order_behaviour]
order_behaviour = 0.3
order_ahead_min = 5
order_ahead_max = 20
demand_factor = 1.0

[paths]
distance_matrix = distance.csv
waytime_matrix = waytime.csv
vehicles = vehicles.json
requests = requests.csv
output_dir = out/
`
	cfg, err := Load(strings.NewReader(ini))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Simulation.StartDate)
	assert.True(t, cfg.Simulation.RequestsFromCSV)
	assert.Equal(t, 10, cfg.Weights.DelayMax)
	assert.Equal(t, 5, cfg.OrderBehaviour.OrderAheadMin)
	assert.Equal(t, "requests.csv", cfg.Paths.Requests)
}

func TestLoadRejectsMissingRequestsPath(t *testing.T) {
	ini := `
[simulation]
start_date = 2026-01-01 00:00
end_date = 2026-01-02 00:00
requests_from_csv = true

[weights]
delay_max = 10

[paths]
distance_matrix = distance.csv
waytime_matrix = waytime.csv
vehicles = vehicles.json
`
	_, err := Load(strings.NewReader(ini))
	require.Error(t, err)
}

func TestLoadSyntheticScenario(t *testing.T) {
	ini := `
[simulation]
start_date = 2026-01-01T00:00:00Z
end_date = 2026-01-02T00:00:00Z
requests_from_csv = false

[weights]
delay_max = 10

[order_behaviour]
order_ahead_min = 5
order_ahead_max = 5

[paths]
distance_matrix = distance.csv
waytime_matrix = waytime.csv
vehicles = vehicles.json
demand = demand.csv
station_probability = station_probability.csv
`
	cfg, err := Load(strings.NewReader(ini))
	require.NoError(t, err)
	assert.Equal(t, "demand.csv", cfg.Paths.Demand)
	assert.False(t, cfg.Simulation.RequestsFromCSV)
}

func TestLoadRejectsEndBeforeStart(t *testing.T) {
	ini := `
[simulation]
start_date = 2026-01-02 00:00
end_date = 2026-01-01 00:00
requests_from_csv = true

[paths]
distance_matrix = distance.csv
waytime_matrix = waytime.csv
vehicles = vehicles.json
requests = requests.csv
`
	_, err := Load(strings.NewReader(ini))
	require.Error(t, err)
}

func TestLoadRejectsInvertedOrderAheadRange(t *testing.T) {
	ini := `
[simulation]
start_date = 2026-01-01 00:00
end_date = 2026-01-02 00:00
requests_from_csv = true

[order_behaviour]
order_ahead_min = 20
order_ahead_max = 5

[paths]
distance_matrix = distance.csv
waytime_matrix = waytime.csv
vehicles = vehicles.json
requests = requests.csv
`
	_, err := Load(strings.NewReader(ini))
	require.Error(t, err)
}
