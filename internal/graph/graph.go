// Package graph provides the station graph: an immutable, two-argument
// lookup of travel time and distance between station pairs.
package graph

import (
	"sort"

	"github.com/pkg/errors"
)

// StationID identifies a node in the graph. It is always an opaque string,
// even when the underlying label text is numeric.
type StationID string

type pair struct {
	from, to StationID
}

// Graph is a read-only lookup of travel time (minutes) and distance (units)
// between station pairs. It is built once and never mutated.
type Graph struct {
	stations   []StationID
	travelTime map[pair]float64
	distance   map[pair]float64
	maxTravel  float64
}

// New builds a Graph from a set of station ids and the two matrices. Every
// ordered pair of stations (including self-loops) must have an entry in
// both matrices; a missing entry is a configuration error.
func New(stations []StationID, travelTime, distance map[[2]StationID]float64) (*Graph, error) {
	if len(stations) == 0 {
		return nil, errors.New("graph: no stations")
	}

	g := &Graph{
		stations:   append([]StationID(nil), stations...),
		travelTime: make(map[pair]float64, len(travelTime)),
		distance:   make(map[pair]float64, len(distance)),
	}
	sort.Slice(g.stations, func(i, j int) bool { return g.stations[i] < g.stations[j] })

	for _, a := range stations {
		for _, b := range stations {
			tt, ok := travelTime[[2]StationID{a, b}]
			if !ok {
				return nil, errors.Wrapf(ErrMissingEntry, "travel_time(%s,%s)", a, b)
			}
			if tt < 0 {
				return nil, errors.Errorf("graph: negative travel_time(%s,%s)", a, b)
			}
			if a == b && tt != 0 {
				return nil, errors.Errorf("graph: self-loop travel_time(%s,%s) must be 0, got %v", a, b, tt)
			}
			d, ok := distance[[2]StationID{a, b}]
			if !ok {
				return nil, errors.Wrapf(ErrMissingEntry, "distance(%s,%s)", a, b)
			}
			if d < 0 {
				return nil, errors.Errorf("graph: negative distance(%s,%s)", a, b)
			}

			g.travelTime[pair{a, b}] = tt
			g.distance[pair{a, b}] = d
			if tt > g.maxTravel {
				g.maxTravel = tt
			}
		}
	}

	return g, nil
}

// ErrMissingEntry is returned (wrapped) when a matrix lacks an entry for a
// station pair that the graph was asked to index.
var ErrMissingEntry = errors.New("graph: missing matrix entry")

// ErrUnknownStation is returned when a lookup references a station the
// graph was never built with.
var ErrUnknownStation = errors.New("graph: unknown station")

// TravelTime returns the travel time, in minutes, from a to b.
func (g *Graph) TravelTime(a, b StationID) (float64, error) {
	v, ok := g.travelTime[pair{a, b}]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownStation, "travel_time(%s,%s)", a, b)
	}
	return v, nil
}

// Distance returns the distance from a to b.
func (g *Graph) Distance(a, b StationID) (float64, error) {
	v, ok := g.distance[pair{a, b}]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownStation, "distance(%s,%s)", a, b)
	}
	return v, nil
}

// MaxTravelTime returns W_max, the maximum travel time across the whole
// matrix, used by the enumerator to size its pruning window.
func (g *Graph) MaxTravelTime() float64 {
	return g.maxTravel
}

// HasStation reports whether id is a known station.
func (g *Graph) HasStation(id StationID) bool {
	_, ok := g.travelTime[pair{id, id}]
	return ok
}

// Stations returns the sorted list of known station ids.
func (g *Graph) Stations() []StationID {
	return append([]StationID(nil), g.stations...)
}
