package vehicle

import (
	"time"

	"ridepooling/internal/graph"
	"ridepooling/internal/request"
)

// Stop is a single pickup or dropoff pinned to a position in an itinerary.
type Stop struct {
	Station      graph.StationID
	Boarding     int // positive = pickup, negative = dropoff
	PromisedTime time.Time
	RequestID    request.ID
	PlannedTime  time.Time
	Delay        int // minutes, clamped at 0
	Occupation   int // cumulative passengers after this stop
	MaxDelay     int // minutes, inherited from the request
}

// IsPickup reports whether this stop boards passengers.
func (s Stop) IsPickup() bool { return s.Boarding > 0 }

// IsDropoff reports whether this stop alights passengers.
func (s Stop) IsDropoff() bool { return s.Boarding < 0 }

// minuteDelay computes max(0, floor((planned-promised)/1min)), the only
// delay arithmetic this module performs: the duration is clamped at zero
// before truncating, so a negative difference never gets the wrong sign.
func minuteDelay(planned, promised time.Time) int {
	diff := planned.Sub(promised)
	if diff < 0 {
		diff = 0
	}
	return int(diff / time.Minute)
}

// BuildPickupStop builds the pickup half of a request's insertion. Its
// promised/max-delay fields come straight from the request; planned is
// filled in (or overwritten) by the feasibility checker's forward pass.
func BuildPickupStop(r request.Request) Stop {
	return Stop{
		Station:      r.Origin,
		Boarding:     r.Passengers,
		PromisedTime: r.PromisedTime,
		RequestID:    r.ID,
		PlannedTime:  r.PromisedTime,
		MaxDelay:     r.MaxDelay,
	}
}

// BuildDropoffStop builds the dropoff half of a request's insertion.
// promised_time = promised_time + direct_travel + standing_time, per §3.
func BuildDropoffStop(r request.Request, standingTime time.Duration) Stop {
	promised := r.PromisedTime.Add(time.Duration(r.DirectTravel)*time.Minute + standingTime)
	return Stop{
		Station:      r.Destination,
		Boarding:     -r.Passengers,
		PromisedTime: promised,
		RequestID:    r.ID,
		PlannedTime:  promised,
		MaxDelay:     r.MaxDelay,
	}
}
