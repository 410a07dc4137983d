package vehicle

import "github.com/pkg/errors"

// ID identifies a vehicle.
type ID string

// Vehicle is a seated carrier with its own itinerary. The itinerary is
// exclusively owned by the vehicle; only the dispatcher mutates it, one
// commit at a time.
type Vehicle struct {
	ID        ID
	Name      string
	Seats     int
	Type      string
	Itinerary *Itinerary
}

// New constructs a Vehicle with a fresh, empty itinerary.
func New(id ID, name string, seats int, vehicleType string) (*Vehicle, error) {
	if seats <= 0 {
		return nil, errors.Errorf("vehicle %s: seats must be positive, got %d", id, seats)
	}
	return &Vehicle{
		ID:        id,
		Name:      name,
		Seats:     seats,
		Type:      vehicleType,
		Itinerary: NewItinerary(),
	}, nil
}
