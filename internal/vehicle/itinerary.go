// Package vehicle holds the per-vehicle itinerary: an ordered sequence of
// stops, exclusively owned by its vehicle and mutated only by a single
// commit at a time.
package vehicle

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"ridepooling/internal/request"
)

// ErrInvariantViolation is returned by Commit when the proposed stop
// sequence fails one of the itinerary invariants. A caller seeing this
// error has found a bug, not a denial, and must abort rather than proceed
// with a corrupted itinerary.
var ErrInvariantViolation = errors.New("vehicle: itinerary invariant violation")

// Itinerary is an ordered sequence of stops belonging to one vehicle.
// It is shared-read during a request's per-vehicle fan-out and
// exclusively written by the dispatcher at commit time.
type Itinerary struct {
	mu    sync.RWMutex
	stops []Stop
}

// NewItinerary returns an empty itinerary.
func NewItinerary() *Itinerary {
	return &Itinerary{}
}

// Snapshot returns an immutable copy of the current stops, safe to read
// concurrently with other snapshots and with a commit in flight elsewhere.
func (it *Itinerary) Snapshot() []Stop {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return append([]Stop(nil), it.stops...)
}

// Len returns the current number of stops.
func (it *Itinerary) Len() int {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return len(it.stops)
}

// RecentWindow returns the index at which the mutable suffix begins: the
// first stop whose PlannedTime is strictly after cutoff. If no stop
// qualifies, the returned index equals len(snapshot) (an empty window).
func RecentWindow(snapshot []Stop, cutoff time.Time) int {
	for i, s := range snapshot {
		if s.PlannedTime.After(cutoff) {
			return i
		}
	}
	return len(snapshot)
}

// Commit atomically replaces the stops from windowStart onward with
// newSuffix, which must already satisfy every §3 invariant when appended
// to the unchanged prefix. Commit builds the full sequence and
// assertion-checks it before swapping: planned_time never decreases,
// occupation (the running sum of Boarding) stays within [0, seats], every
// dropoff follows its pickup, no Delay exceeds its MaxDelay, and no pickup
// is immediately followed by a dropoff at the same station. It does not
// check the travel-time spacing of planned times, nor the stored Delay and
// Occupation fields against their formulas. A violated invariant is a
// bug, not a denial, so it returns ErrInvariantViolation rather than
// partially applying the change.
func (it *Itinerary) Commit(windowStart int, newSuffix []Stop, seats int) error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if windowStart < 0 || windowStart > len(it.stops) {
		return errors.Errorf("vehicle: commit window start %d out of range (len=%d)", windowStart, len(it.stops))
	}

	candidate := make([]Stop, 0, windowStart+len(newSuffix))
	candidate = append(candidate, it.stops[:windowStart]...)
	candidate = append(candidate, newSuffix...)

	if err := checkInvariants(candidate, seats); err != nil {
		return err
	}

	it.stops = candidate
	return nil
}

// IndexOfRequest returns the index of the stop belonging to requestID
// with the given boarding sign (pickup: >0, dropoff: <0), or -1.
func IndexOfRequest(stops []Stop, id request.ID, pickup bool) int {
	for i, s := range stops {
		if s.RequestID != id {
			continue
		}
		if pickup == s.IsPickup() {
			return i
		}
	}
	return -1
}

func checkInvariants(stops []Stop, seats int) error {
	occupation := 0
	pickedUp := make(map[request.ID]bool)

	for k, s := range stops {
		if k > 0 {
			if stops[k].PlannedTime.Before(stops[k-1].PlannedTime) {
				return errors.Wrapf(ErrInvariantViolation, "planned_time decreased at stop %d", k)
			}
			if stops[k-1].Station == s.Station && stops[k-1].IsPickup() && s.IsDropoff() {
				return errors.Wrapf(ErrInvariantViolation, "pickup immediately followed by dropoff at same station, stop %d", k)
			}
		}

		occupation += s.Boarding
		if occupation < 0 || occupation > seats {
			return errors.Wrapf(ErrInvariantViolation, "occupation %d out of [0,%d] at stop %d", occupation, seats, k)
		}

		if s.IsPickup() {
			pickedUp[s.RequestID] = true
		}
		if s.IsDropoff() && !pickedUp[s.RequestID] {
			return errors.Wrapf(ErrInvariantViolation, "dropoff before pickup for request %s", s.RequestID)
		}

		if s.Delay > s.MaxDelay {
			return errors.Wrapf(ErrInvariantViolation, "delay %d exceeds max_delay %d at stop %d", s.Delay, s.MaxDelay, k)
		}
	}

	return nil
}
