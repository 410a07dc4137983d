package loader

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"ridepooling/internal/vehicle"
)

// rosterFile mirrors the layout of the scenario's vehicles.json.
type rosterFile struct {
	Vehicles []vehicleEntry `json:"vehicles"`
}

type vehicleEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seats int    `json:"seats"`
	Type  string `json:"type"`
}

// LoadVehicles decodes the vehicle roster JSON and builds a fresh Vehicle
// (with an empty itinerary) per entry.
func LoadVehicles(r io.Reader) ([]*vehicle.Vehicle, error) {
	dec := json.NewDecoder(r)
	var rf rosterFile
	if err := dec.Decode(&rf); err != nil {
		return nil, errors.Wrap(err, "loader: decoding vehicle roster")
	}

	out := make([]*vehicle.Vehicle, 0, len(rf.Vehicles))
	for _, e := range rf.Vehicles {
		v, err := vehicle.New(vehicle.ID(e.ID), e.Name, e.Seats, e.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "loader: vehicle %s", e.ID)
		}
		out = append(out, v)
	}
	return out, nil
}
