// Package request holds the immutable rider-request value type.
package request

import (
	"time"

	"github.com/pkg/errors"

	"ridepooling/internal/graph"
)

// ID identifies a request.
type ID string

// Request is an immutable rider demand for transport from Origin to
// Destination at PromisedTime.
type Request struct {
	ID           ID
	Origin       graph.StationID
	Destination  graph.StationID
	Passengers   int
	PromisedTime time.Time
	CreatedTime  time.Time
	MaxDelay     int // minutes
	DirectTravel float64
}

// New validates and constructs a Request. directTravel is the graph's
// travel_time(origin, destination), computed by the caller so this
// constructor stays graph-free.
func New(id ID, origin, destination graph.StationID, passengers int, promisedTime, createdTime time.Time, maxDelay int, directTravel float64) (Request, error) {
	if passengers <= 0 {
		return Request{}, errors.Errorf("request %s: passengers must be positive, got %d", id, passengers)
	}
	if maxDelay < 0 {
		return Request{}, errors.Errorf("request %s: max_delay must be non-negative, got %d", id, maxDelay)
	}
	if promisedTime.Before(createdTime) {
		return Request{}, errors.Errorf("request %s: promised_time (%s) before created_time (%s)", id, promisedTime, createdTime)
	}
	if directTravel < 0 {
		return Request{}, errors.Errorf("request %s: negative direct_travel", id)
	}

	return Request{
		ID:           id,
		Origin:       origin,
		Destination:  destination,
		Passengers:   passengers,
		PromisedTime: promisedTime,
		CreatedTime:  createdTime,
		MaxDelay:     maxDelay,
		DirectTravel: directTravel,
	}, nil
}

// InWindow reports whether the request's promised time falls within
// [start, end], the simulation window.
func (r Request) InWindow(start, end time.Time) bool {
	return !r.PromisedTime.Before(start) && !r.PromisedTime.After(end)
}
