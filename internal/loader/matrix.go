// Package loader reads the scenario's tabular inputs: station matrices,
// vehicle roster, request/demand/probability tables. Every table is
// decoded once into typed Go values via gocsv (requests), encoding/csv
// (matrices, demand and station-probability grids) or encoding/json
// (vehicles) — never kept around as a queryable, label-indexed structure.
package loader

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"ridepooling/internal/graph"
)

// LoadMatrix reads a square matrix CSV: first row is the header (station
// ids for every column), first column of every subsequent row is that
// row's station id. It returns the station id list (in row order) and
// the cell map keyed by (row station, column station).
func LoadMatrix(r io.Reader) ([]graph.StationID, map[[2]graph.StationID]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "loader: reading matrix header")
	}
	if len(header) < 2 {
		return nil, nil, errors.New("loader: matrix header must have a row-key column plus at least one station column")
	}
	columns := make([]graph.StationID, len(header)-1)
	for i, h := range header[1:] {
		columns[i] = graph.StationID(h)
	}

	stations := make([]graph.StationID, 0, len(columns))
	cells := make(map[[2]graph.StationID]float64, len(columns)*len(columns))

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "loader: reading matrix row")
		}
		if len(row) != len(header) {
			return nil, nil, errors.Errorf("loader: matrix row has %d fields, want %d", len(row), len(header))
		}

		rowStation := graph.StationID(row[0])
		stations = append(stations, rowStation)

		for i, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "loader: parsing matrix cell (%s,%s)", rowStation, columns[i])
			}
			cells[[2]graph.StationID{rowStation, columns[i]}] = v
		}
	}

	if len(stations) != len(columns) {
		return nil, nil, errors.Errorf("loader: matrix is not square (%d rows, %d columns)", len(stations), len(columns))
	}

	return stations, cells, nil
}
