package dispatch

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ridepooling/internal/graph"
	"ridepooling/internal/request"
	"ridepooling/internal/vehicle"
)

// Result is the outcome of dispatching one request stream.
type Result struct {
	Denied []request.Request
}

// Dispatcher drives the per-request pipeline: enumerate, filter, score,
// commit or deny. It holds no itinerary state itself — that lives on each
// Vehicle — so a Dispatcher is safe to reuse across runs as long as the
// vehicles themselves are fresh.
type Dispatcher struct {
	Graph    *graph.Graph
	Vehicles []*vehicle.Vehicle
	Weights  Weights
	Logger   *zap.Logger

	// Events receives a RequestCommitted/RequestDenied and a Progress
	// event per request, best-effort: a full channel drops events rather
	// than blocking dispatch (§4.6.5, §5).
	Events chan<- Event
}

// Dispatch processes requests in order, one at a time, per SPEC_FULL.md
// §4.6 and §5. ctx is checked once per request; cancellation takes effect
// between requests, never mid-request.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []request.Request) (Result, error) {
	var result Result
	standingTime := time.Duration(d.Weights.StandingTime) * time.Minute

	for i, r := range requests {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		candidates, err := d.fanOut(ctx, r, standingTime)
		if err != nil {
			return result, err
		}

		if len(candidates) == 0 {
			result.Denied = append(result.Denied, r)
			d.emit(RequestDenied{RequestID: r.ID})
			d.emit(Progress{Done: i + 1, Total: len(requests)})
			continue
		}

		winner, ok := Score(candidates, d.Weights)
		if !ok {
			result.Denied = append(result.Denied, r)
			d.emit(RequestDenied{RequestID: r.ID})
			d.emit(Progress{Done: i + 1, Total: len(requests)})
			continue
		}

		v := d.Vehicles[winner.VehicleIndex]
		if err := v.Itinerary.Commit(winner.WindowStart, winner.Stops, v.Seats); err != nil {
			return result, err
		}
		d.emit(RequestCommitted{RequestID: r.ID, VehicleID: winner.VehicleID})
		d.emit(Progress{Done: i + 1, Total: len(requests)})
	}

	return result, nil
}

// fanOut runs the enumerator+feasibility checker for every vehicle in its
// own goroutine (vehicle itineraries are read-only during this phase),
// then merges the survivors back into deterministic vehicle-order ×
// insertion-pair-order before returning, so the scorer's tie-break is
// unaffected by goroutine completion order.
func (d *Dispatcher) fanOut(ctx context.Context, r request.Request, standingTime time.Duration) ([]*Candidate, error) {
	perVehicle := make([][]*Candidate, len(d.Vehicles))

	g, _ := errgroup.WithContext(ctx)
	for i, v := range d.Vehicles {
		i, v := i, v
		g.Go(func() error {
			raw := Enumerate(d.Graph, i, v, r, standingTime, d.Weights.DelayMax)
			survivors := make([]*Candidate, 0, len(raw))
			for idx := range raw {
				c := &raw[idx]
				ok, err := CheckFeasibility(d.Graph, c, standingTime, d.Weights.DelayMax)
				if err != nil {
					return err
				}
				if ok {
					survivors = append(survivors, c)
				}
			}
			perVehicle[i] = survivors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []*Candidate
	for i := 0; i < len(perVehicle); i++ {
		merged = append(merged, perVehicle[i]...)
	}
	sort.SliceStable(merged, func(a, b int) bool {
		if merged[a].VehicleIndex != merged[b].VehicleIndex {
			return merged[a].VehicleIndex < merged[b].VehicleIndex
		}
		return false
	})
	return merged, nil
}

func (d *Dispatcher) emit(e Event) {
	if d.Events == nil {
		return
	}
	select {
	case d.Events <- e:
	default:
	}
}
