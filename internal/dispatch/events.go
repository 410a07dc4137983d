package dispatch

import (
	"ridepooling/internal/request"
	"ridepooling/internal/vehicle"
)

// Event is the marker interface for everything the dispatcher reports on
// its progress channel. Progress reporting is advisory only (SPEC_FULL.md
// §4.6.5) and must never affect determinism: a caller that never drains
// the channel still gets a correct run, because the dispatcher sends on a
// buffered channel and drops events rather than blocking.
type Event interface {
	isDispatchEvent()
}

// RequestCommitted reports that a request was assigned to a vehicle.
type RequestCommitted struct {
	RequestID request.ID
	VehicleID vehicle.ID
	Score     float64
}

// RequestDenied reports that a request had no feasible candidate.
type RequestDenied struct {
	RequestID request.ID
}

// Progress reports how far through the request stream the dispatcher is.
type Progress struct {
	Done, Total int
}

func (RequestCommitted) isDispatchEvent() {}
func (RequestDenied) isDispatchEvent()    {}
func (Progress) isDispatchEvent()         {}
