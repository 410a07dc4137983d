package loader

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"ridepooling/internal/graph"
)

// HoursPerDay and WeekdaysPerWeek size the demand-by-hour table
// (SPEC_FULL.md §6.2: 24 rows x 7 columns).
const (
	HoursPerDay     = 24
	WeekdaysPerWeek = 7
)

// DemandTable is the per-minute request probability for each (hour,
// weekday) cell, indexed [hour][weekday].
type DemandTable [HoursPerDay][WeekdaysPerWeek]float64

// LoadDemandTable reads the demand-by-hour CSV: one header row (weekday
// labels, discarded beyond a column-count check), then 24 data rows of 7
// probabilities each, one row per hour of day in order.
func LoadDemandTable(r io.Reader) (DemandTable, error) {
	var table DemandTable

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return table, errors.Wrap(err, "loader: reading demand table header")
	}
	if len(header) != WeekdaysPerWeek {
		return table, errors.Errorf("loader: demand table must have %d weekday columns, got %d", WeekdaysPerWeek, len(header))
	}

	for hour := 0; hour < HoursPerDay; hour++ {
		row, err := cr.Read()
		if err == io.EOF {
			return table, errors.Errorf("loader: demand table ended after %d hours, want %d", hour, HoursPerDay)
		}
		if err != nil {
			return table, errors.Wrap(err, "loader: reading demand table row")
		}
		if len(row) != WeekdaysPerWeek {
			return table, errors.Errorf("loader: demand table row %d has %d cells, want %d", hour, len(row), WeekdaysPerWeek)
		}
		for weekday, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return table, errors.Wrapf(err, "loader: parsing demand cell (hour=%d,weekday=%d)", hour, weekday)
			}
			table[hour][weekday] = v
		}
	}

	return table, nil
}

// StationProbability is the per-hour unnormalised station sampling
// weight table: Weights[hour][i] corresponds to Stations[i].
type StationProbability struct {
	Stations []graph.StationID
	Weights  [HoursPerDay][]float64
}

// LoadStationProbability reads the station-probability CSV: header row
// of station ids, then 24 data rows (one per hour of day) of
// unnormalised sampling weights.
func LoadStationProbability(r io.Reader) (StationProbability, error) {
	var sp StationProbability

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return sp, errors.Wrap(err, "loader: reading station probability header")
	}
	if len(header) < 1 {
		return sp, errors.New("loader: station probability header must list at least one station")
	}
	sp.Stations = make([]graph.StationID, len(header))
	for i, h := range header {
		sp.Stations[i] = graph.StationID(h)
	}

	for hour := 0; hour < HoursPerDay; hour++ {
		row, err := cr.Read()
		if err == io.EOF {
			return sp, errors.Errorf("loader: station probability table ended after %d hours, want %d", hour, HoursPerDay)
		}
		if err != nil {
			return sp, errors.Wrap(err, "loader: reading station probability row")
		}
		if len(row) != len(header) {
			return sp, errors.Errorf("loader: station probability row %d has %d cells, want %d", hour, len(row), len(header))
		}
		weights := make([]float64, len(row))
		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return sp, errors.Wrapf(err, "loader: parsing station probability cell (hour=%d,station=%s)", hour, sp.Stations[i])
			}
			weights[i] = v
		}
		sp.Weights[hour] = weights
	}

	return sp, nil
}
