// Package dispatch implements the online insertion scheduler: the
// enumerator, feasibility checker, scorer and dispatcher described in
// SPEC_FULL.md §4.
package dispatch

import (
	"time"

	"ridepooling/internal/graph"
	"ridepooling/internal/request"
	"ridepooling/internal/vehicle"
)

// Candidate is a replacement for the mutable suffix of one vehicle's
// itinerary: the result of inserting a request's pickup and dropoff at
// some pair of positions. Stops holds only the suffix, not the frozen
// prefix that stays untouched.
type Candidate struct {
	VehicleIndex int // index into the dispatcher's vehicle slice, for deterministic ordering
	VehicleID    vehicle.ID
	Seats        int
	WindowStart  int // index in the vehicle's itinerary where Stops begins
	Stops        []vehicle.Stop

	// Pre-insertion metrics, carried from the enumerator for the scorer.
	DelayOld    int
	DistanceOld float64
	BalanceOld  int // |S(v)| before insertion, the whole itinerary

	// Filled in by the feasibility checker.
	PoolingRate   float64
	DeltaDistance float64
}

// Enumerate produces every candidate insertion of r into v's itinerary,
// per SPEC_FULL.md §4.3. standingTime is the fixed dwell at every stop;
// delayMaxCfg is the scenario's global delay_max (weights.delay_max).
func Enumerate(g *graph.Graph, vehicleIndex int, v *vehicle.Vehicle, r request.Request, standingTime time.Duration, delayMaxCfg int) []Candidate {
	snapshot := v.Itinerary.Snapshot()
	balanceOld := len(snapshot)

	pickup := vehicle.BuildPickupStop(r)
	dropoff := vehicle.BuildDropoffStop(r, standingTime)

	cutoff := r.PromisedTime.Add(-time.Duration(g.MaxTravelTime()+5) * time.Minute)
	windowStart := vehicle.RecentWindow(snapshot, cutoff)
	window := snapshot[windowStart:]

	if len(window) == 0 {
		return []Candidate{{
			VehicleIndex: vehicleIndex,
			VehicleID:    v.ID,
			Seats:        v.Seats,
			WindowStart:  windowStart,
			Stops:        []vehicle.Stop{pickup, dropoff},
			DelayOld:     0,
			DistanceOld:  0,
			BalanceOld:   balanceOld,
		}}
	}

	threshold := r.PromisedTime.Add(time.Duration(r.DirectTravel)*time.Minute + time.Duration(delayMaxCfg)*time.Minute)
	m := 0
	for i, s := range window {
		if s.PromisedTime.Before(threshold) {
			m = i + 1
		}
	}
	if m == 0 {
		return nil
	}

	relevant := window[:m]
	tail := window[m:]

	// D0/X0 are the delay sum and distance sum of the whole recent
	// window S' (SPEC_FULL.md §4.3 point 4), not just the relevant
	// sub-slice used for insertion positions.
	delayOld := 0
	for _, s := range window {
		delayOld += s.Delay
	}
	distanceOld := sumDistance(g, window)

	n := len(relevant)
	candidates := make([]Candidate, 0, n*n)
	for i := 0; i <= n+1; i++ {
		for j := i + 1; j <= n+1; j++ {
			inserted := insertPair(relevant, pickup, dropoff, i, j)
			stops := make([]vehicle.Stop, 0, len(inserted)+len(tail))
			stops = append(stops, inserted...)
			stops = append(stops, tail...)

			candidates = append(candidates, Candidate{
				VehicleIndex: vehicleIndex,
				VehicleID:    v.ID,
				Seats:        v.Seats,
				WindowStart:  windowStart,
				Stops:        stops,
				DelayOld:     delayOld,
				DistanceOld:  distanceOld,
				BalanceOld:   balanceOld,
			})
		}
	}
	return candidates
}

// insertPair inserts a at position i and b at position j (i<j) into base,
// producing a slice of len(base)+2. Positions are indices in the final
// slice, not identities carried over from base.
func insertPair(base []vehicle.Stop, a, b vehicle.Stop, i, j int) []vehicle.Stop {
	n := len(base)
	result := make([]vehicle.Stop, n+2)
	bi := 0
	for idx := 0; idx < n+2; idx++ {
		switch idx {
		case i:
			result[idx] = a
		case j:
			result[idx] = b
		default:
			result[idx] = base[bi]
			bi++
		}
	}
	return result
}

func sumDistance(g *graph.Graph, stops []vehicle.Stop) float64 {
	total := 0.0
	for k := 0; k+1 < len(stops); k++ {
		d, err := g.Distance(stops[k].Station, stops[k+1].Station)
		if err != nil {
			continue
		}
		total += d
	}
	return total
}
