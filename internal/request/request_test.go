package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepooling/internal/graph"
)

func TestNewRejectsNonPositivePassengers(t *testing.T) {
	now := time.Now()
	_, err := New("r1", "X", "Y", 0, now, now, 5, 10)
	require.Error(t, err)
}

func TestNewRejectsNegativeMaxDelay(t *testing.T) {
	now := time.Now()
	_, err := New("r1", "X", "Y", 1, now, now, -1, 10)
	require.Error(t, err)
}

func TestNewRejectsPromisedBeforeCreated(t *testing.T) {
	now := time.Now()
	_, err := New("r1", "X", "Y", 1, now.Add(-time.Minute), now, 5, 10)
	require.Error(t, err)
}

func TestNewAccepts(t *testing.T) {
	now := time.Now()
	r, err := New("r1", "X", "Y", 2, now.Add(3*time.Minute), now, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, graph.StationID("X"), r.Origin)
	assert.Equal(t, 2, r.Passengers)
}

func TestInWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	r, err := New("r1", "X", "Y", 1, start.Add(time.Hour), start, 5, 10)
	require.NoError(t, err)
	assert.True(t, r.InWindow(start, end))
	assert.False(t, r.InWindow(start.Add(48*time.Hour), end.Add(48*time.Hour)))
}
