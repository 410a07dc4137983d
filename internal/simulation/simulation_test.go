package simulation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepooling/internal/config"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunReplayScenarioEndToEnd(t *testing.T) {
	dir := t.TempDir()

	distance := "id,X,Y\nX,0,5\nY,5,0\n"
	waytime := "id,X,Y\nX,0,10\nY,10,0\n"
	vehicles := `{"vehicles":[{"id":"v1","name":"Van 1","seats":4,"type":"van"}]}`
	requests := "id,time,start_time,start_id,destination_id,passangers\n" +
		"r1,2026-01-01 07:57:00,2026-01-01 08:00:00,X,Y,2\n"

	distPath := writeTestFile(t, dir, "distance.csv", distance)
	waytimePath := writeTestFile(t, dir, "waytime.csv", waytime)
	vehPath := writeTestFile(t, dir, "vehicles.json", vehicles)
	reqPath := writeTestFile(t, dir, "requests.csv", requests)
	outDir := filepath.Join(dir, "out")

	cfg := config.Scenario{
		Simulation: config.Simulation{
			StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			RequestsFromCSV: true,
			StandingTime:    1,
		},
		Weights: config.Weights{
			DelayFactor: 1, BalanceFactor: 1, PoolingFactor: 1, DistanceFactor: 1,
			DelayMax: 5, StandingTime: 1,
		},
		Paths: config.Paths{
			DistanceMatrix: distPath,
			WaytimeMatrix:  waytimePath,
			Vehicles:       vehPath,
			Requests:       reqPath,
			OutputDir:      outDir,
		},
	}

	sum, err := Run(context.Background(), cfg, Options{}, nil)
	require.NoError(t, err)
	assert.Len(t, sum.Served, 1)
	assert.Empty(t, sum.Denied)
	require.NotEmpty(t, sum.Schedule)

	for _, name := range []string{"schedule.csv", "requests.csv", "requests_denied.csv", "summary.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestRunEmptyFleetDeniesEveryRequest(t *testing.T) {
	dir := t.TempDir()

	distance := "id,X,Y\nX,0,5\nY,5,0\n"
	waytime := "id,X,Y\nX,0,10\nY,10,0\n"
	vehicles := `{"vehicles":[]}`
	requests := "id,time,start_time,start_id,destination_id,passangers\n" +
		"r1,2026-01-01 07:57:00,2026-01-01 08:00:00,X,Y,2\n"

	distPath := writeTestFile(t, dir, "distance.csv", distance)
	waytimePath := writeTestFile(t, dir, "waytime.csv", waytime)
	vehPath := writeTestFile(t, dir, "vehicles.json", vehicles)
	reqPath := writeTestFile(t, dir, "requests.csv", requests)

	cfg := config.Scenario{
		Simulation: config.Simulation{
			StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			RequestsFromCSV: true,
		},
		Weights: config.Weights{DelayMax: 5},
		Paths: config.Paths{
			DistanceMatrix: distPath,
			WaytimeMatrix:  waytimePath,
			Vehicles:       vehPath,
			Requests:       reqPath,
		},
	}

	sum, err := Run(context.Background(), cfg, Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, sum.Served)
	require.Len(t, sum.Denied, 1)
	assert.Equal(t, "r1", string(sum.Denied[0].ID))
}

func TestRunRejectsOutOfWindowRequestsInStrictMode(t *testing.T) {
	dir := t.TempDir()

	distance := "id,X,Y\nX,0,5\nY,5,0\n"
	waytime := "id,X,Y\nX,0,10\nY,10,0\n"
	vehicles := `{"vehicles":[{"id":"v1","name":"Van 1","seats":4,"type":"van"}]}`
	requests := "id,time,start_time,start_id,destination_id,passangers\n" +
		"r1,2026-01-03 07:57:00,2026-01-03 08:00:00,X,Y,2\n"

	distPath := writeTestFile(t, dir, "distance.csv", distance)
	waytimePath := writeTestFile(t, dir, "waytime.csv", waytime)
	vehPath := writeTestFile(t, dir, "vehicles.json", vehicles)
	reqPath := writeTestFile(t, dir, "requests.csv", requests)

	cfg := config.Scenario{
		Simulation: config.Simulation{
			StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			RequestsFromCSV: true,
		},
		Weights: config.Weights{DelayMax: 5},
		Paths: config.Paths{
			DistanceMatrix: distPath,
			WaytimeMatrix:  waytimePath,
			Vehicles:       vehPath,
			Requests:       reqPath,
		},
	}

	_, err := Run(context.Background(), cfg, Options{}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "outside"))
}

func TestRunDropsOutOfWindowRequestsWhenLenient(t *testing.T) {
	dir := t.TempDir()

	distance := "id,X,Y\nX,0,5\nY,5,0\n"
	waytime := "id,X,Y\nX,0,10\nY,10,0\n"
	vehicles := `{"vehicles":[{"id":"v1","name":"Van 1","seats":4,"type":"van"}]}`
	requests := "id,time,start_time,start_id,destination_id,passangers\n" +
		"r1,2026-01-03 07:57:00,2026-01-03 08:00:00,X,Y,2\n"

	distPath := writeTestFile(t, dir, "distance.csv", distance)
	waytimePath := writeTestFile(t, dir, "waytime.csv", waytime)
	vehPath := writeTestFile(t, dir, "vehicles.json", vehicles)
	reqPath := writeTestFile(t, dir, "requests.csv", requests)

	cfg := config.Scenario{
		Simulation: config.Simulation{
			StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			RequestsFromCSV: true,
		},
		Weights: config.Weights{DelayMax: 5},
		Paths: config.Paths{
			DistanceMatrix: distPath,
			WaytimeMatrix:  waytimePath,
			Vehicles:       vehPath,
			Requests:       reqPath,
		},
	}

	sum, err := Run(context.Background(), cfg, Options{Lenient: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, sum.Served)
	assert.Empty(t, sum.Denied)
}

func TestRunRejectsMissingRequestsFile(t *testing.T) {
	dir := t.TempDir()
	distance := "id,X\nX,0\n"
	waytime := "id,X\nX,0\n"
	vehicles := `{"vehicles":[]}`

	distPath := writeTestFile(t, dir, "distance.csv", distance)
	waytimePath := writeTestFile(t, dir, "waytime.csv", waytime)
	vehPath := writeTestFile(t, dir, "vehicles.json", vehicles)

	cfg := config.Scenario{
		Simulation: config.Simulation{
			StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			RequestsFromCSV: true,
		},
		Paths: config.Paths{
			DistanceMatrix: distPath,
			WaytimeMatrix:  waytimePath,
			Vehicles:       vehPath,
			Requests:       filepath.Join(dir, "missing.csv"),
		},
	}

	_, err := Run(context.Background(), cfg, Options{}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "opening requests csv"))
}
