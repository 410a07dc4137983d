// Package export writes the simulation's result tables: the per-vehicle
// schedule, the served/denied request logs, and the distance/occupancy
// summary.
package export

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"ridepooling/internal/graph"
	"ridepooling/internal/loader"
	"ridepooling/internal/request"
	"ridepooling/internal/vehicle"
)

// ScheduleRow is one leg of a vehicle's itinerary: a maximal run between
// two consecutive distinct stations.
type ScheduleRow struct {
	VehicleID     string  `csv:"vehicle_id"`
	BoardingStart int     `csv:"boarding_start"`
	DepartureName string  `csv:"departure_name"`
	DepartureTime string  `csv:"departure_time"`
	ArrivalTime   string  `csv:"arrival_time"`
	ArrivalName   string  `csv:"arrival_name"`
	BoardingDest  int     `csv:"boarding_dest"`
	Distance      float64 `csv:"distance"`
	DrivingTime   float64 `csv:"driving_time"`
	Pause         int     `csv:"pause"`
	VehicleType   string  `csv:"vehicle_type"`
	RequestIDs    string  `csv:"request_ids"`
	Occupation    int     `csv:"occupation"`
}

// RequestRow is the shape shared by requests.csv and requests_denied.csv.
type RequestRow struct {
	Time          string `csv:"time"`
	StartTime     string `csv:"start_time"`
	StartID       string `csv:"start_id"`
	DestinationID string `csv:"destination_id"`
	Passangers    int    `csv:"passangers"`
	ID            string `csv:"id"`
}

// Accounting is the distance/occupancy rollup for one vehicle, or for
// the whole fleet.
type Accounting struct {
	DistanceTotal     float64 `json:"distance_total"`
	DistanceOccupied  float64 `json:"distance_occupied"`
	PassengerDistance float64 `json:"passanger_distance"`
}

// Summary is the top-level summary.json shape.
type Summary struct {
	Total    Accounting            `json:"total"`
	Vehicles map[string]Accounting `json:"vehicles"`
}

const timeLayout = loader.TimeLayout

// BuildSchedule merges each vehicle's committed itinerary into legs and
// computes driving_time/distance/pause per SPEC_FULL.md §6.2, grounded
// on vehicle.py's export_schedule.
func BuildSchedule(vehicles []*vehicle.Vehicle, g *graph.Graph) ([]ScheduleRow, error) {
	var all []ScheduleRow
	for _, v := range vehicles {
		rows, err := legsForVehicle(v, g)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func legsForVehicle(v *vehicle.Vehicle, g *graph.Graph) ([]ScheduleRow, error) {
	stops := v.Itinerary.Snapshot()
	if len(stops) == 0 {
		return nil, nil
	}

	var rows []ScheduleRow
	var pendingIDs []string

	for i := 0; i+1 < len(stops); i++ {
		pendingIDs = append(pendingIDs, string(stops[i].RequestID))
		if stops[i].Station == stops[i+1].Station {
			continue
		}

		drivingTime, err := g.TravelTime(stops[i].Station, stops[i+1].Station)
		if err != nil {
			return nil, err
		}
		distance, err := g.Distance(stops[i].Station, stops[i+1].Station)
		if err != nil {
			return nil, err
		}

		departureTime := stops[i+1].PlannedTime.Add(-time.Duration(drivingTime) * time.Minute)

		rows = append(rows, ScheduleRow{
			VehicleID:     string(v.ID),
			BoardingStart: stops[i].Boarding,
			DepartureName: string(stops[i].Station),
			DepartureTime: departureTime.Format(timeLayout),
			ArrivalTime:   stops[i+1].PlannedTime.Format(timeLayout),
			ArrivalName:   string(stops[i+1].Station),
			BoardingDest:  stops[i+1].Boarding,
			Distance:      distance,
			DrivingTime:   drivingTime,
			VehicleType:   v.Type,
			RequestIDs:    strings.Join(pendingIDs, "-") + "-",
			Occupation:    stops[i].Occupation,
		})
		pendingIDs = pendingIDs[:0]
	}

	for i := range rows {
		if i == len(rows)-1 {
			rows[i].Pause = 0
			continue
		}
		nextDeparture, err := time.Parse(timeLayout, rows[i+1].DepartureTime)
		if err != nil {
			return nil, errors.Wrap(err, "export: parsing leg departure time")
		}
		arrival, err := time.Parse(timeLayout, rows[i].ArrivalTime)
		if err != nil {
			return nil, errors.Wrap(err, "export: parsing leg arrival time")
		}
		if !nextDeparture.After(arrival) {
			rows[i].Pause = 0
		} else {
			rows[i].Pause = int(nextDeparture.Sub(arrival) / time.Minute)
		}
	}

	return rows, nil
}

// BuildSummary computes the total and per-vehicle distance/occupancy
// rollup from the already-merged schedule rows, per vehicle.py's
// export_summary/simulation.py's summary block.
func BuildSummary(rows []ScheduleRow) Summary {
	sum := Summary{Vehicles: make(map[string]Accounting)}
	byVehicle := make(map[string][]ScheduleRow)
	for _, r := range rows {
		byVehicle[r.VehicleID] = append(byVehicle[r.VehicleID], r)
	}
	for id, vRows := range byVehicle {
		sum.Vehicles[id] = accountingFor(vRows)
	}
	sum.Total = accountingFor(rows)
	return sum
}

func accountingFor(rows []ScheduleRow) Accounting {
	var a Accounting
	for _, r := range rows {
		a.DistanceTotal += r.Distance
		if r.Occupation > 0 {
			a.DistanceOccupied += r.Distance
			a.PassengerDistance += r.Distance * float64(r.Occupation)
		}
	}
	return a
}

// WriteSchedule writes rows as schedule.csv.
func WriteSchedule(w io.Writer, rows []ScheduleRow) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "export: writing schedule.csv")
	}
	return nil
}

// WriteRequests writes requests as requests.csv or requests_denied.csv.
func WriteRequests(w io.Writer, reqs []request.Request) error {
	rows := make([]RequestRow, len(reqs))
	for i, r := range reqs {
		rows[i] = RequestRow{
			Time:          r.CreatedTime.Format(timeLayout),
			StartTime:     r.PromisedTime.Format(timeLayout),
			StartID:       string(r.Origin),
			DestinationID: string(r.Destination),
			Passangers:    r.Passengers,
			ID:            string(r.ID),
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "export: writing requests csv")
	}
	return nil
}

// WriteSummary writes the summary as indented JSON.
func WriteSummary(w io.Writer, sum Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return errors.Wrap(err, "export: writing summary.json")
	}
	return nil
}
