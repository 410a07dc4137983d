// Package demand produces a synthetic request stream from the
// demand-by-hour table and the per-hour station-probability table, for
// scenarios that do not replay a recorded request log.
package demand

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"ridepooling/internal/graph"
	"ridepooling/internal/loader"
	"ridepooling/internal/request"
)

// DefaultPassengerDistribution is the discrete passenger-count
// distribution used when Config.PassengerDistribution is empty: P(1)=0.61,
// P(2)=0.25, P(3)=0.05, P(4)=0.05, P(5)=0.025, P(6)=0.015.
var DefaultPassengerDistribution = []float64{0.61, 0.25, 0.05, 0.05, 0.025, 0.015}

// Config drives synthetic request generation.
type Config struct {
	StartDate              time.Time
	OrderBehaviour         float64 // probability an order is placed close to departure
	OrderAheadMin          int     // minutes, used when the order is placed ahead of time
	OrderAheadMax          int
	DemandFactor           float64
	DelayMax               int // assigned to every generated request's MaxDelay, per the producer convention
	PassengerDistribution  []float64
	fixedOrderAheadMinutes int // order-now lead time; 3 minutes, matching the source's convention
}

// Producer draws requests minute-by-minute over the simulation window.
type Producer struct {
	cfg    Config
	graph  *graph.Graph
	demand loader.DemandTable
	stProb loader.StationProbability
	rng    *rand.Rand
}

// New constructs a Producer. rng supplies all randomness; pass a
// rand.New(rand.NewSource(seed)) for a reproducible run.
func New(cfg Config, g *graph.Graph, demand loader.DemandTable, stProb loader.StationProbability, rng *rand.Rand) *Producer {
	if len(cfg.PassengerDistribution) == 0 {
		cfg.PassengerDistribution = DefaultPassengerDistribution
	}
	cfg.fixedOrderAheadMinutes = 3
	return &Producer{cfg: cfg, graph: g, demand: demand, stProb: stProb, rng: rng}
}

// Generate draws one Bernoulli trial per minute of [0, windowMinutes)
// independently, per demand_now*demand_factor at that minute's
// (hour, weekday), and emits a request for every trial that succeeds.
// The returned requests are in ascending promised-time order: each
// request's promised time is the minute whose trial produced it. They are
// not necessarily in created-time order, since the order-ahead lead that
// is subtracted to get the created time varies from request to request.
func (p *Producer) Generate(windowMinutes int) ([]request.Request, error) {
	var out []request.Request
	id := 0

	for minute := 0; minute < windowMinutes; minute++ {
		timestep := p.cfg.StartDate.Add(time.Duration(minute) * time.Minute)
		hour := timestep.Hour()
		weekday := int(timestep.Weekday())

		demandNow := p.demand[hour][weekday]
		if p.rng.Float64() >= demandNow*p.cfg.DemandFactor {
			continue
		}

		origin, dest, err := p.sampleStationPair(hour)
		if err != nil {
			return nil, err
		}

		var createdTime time.Time
		if p.rng.Float64() < p.cfg.OrderBehaviour {
			createdTime = timestep.Add(-time.Duration(p.cfg.fixedOrderAheadMinutes) * time.Minute)
		} else {
			lead := p.cfg.OrderAheadMin
			if span := p.cfg.OrderAheadMax - p.cfg.OrderAheadMin; span > 0 {
				lead += p.rng.Intn(span + 1)
			}
			createdTime = timestep.Add(-time.Duration(lead) * time.Minute)
		}

		passengers := p.samplePassengerCount()

		direct, err := p.graph.TravelTime(origin, dest)
		if err != nil {
			return nil, err
		}

		reqID := request.ID("gen-" + strconv.Itoa(id))
		id++
		r, err := request.New(reqID, origin, dest, passengers, timestep, createdTime, p.cfg.DelayMax, direct)
		if err != nil {
			return nil, errors.Wrap(err, "demand: building generated request")
		}
		out = append(out, r)
	}

	return out, nil
}

// sampleStationPair draws two distinct stations without replacement,
// weighted by the hour's normalised station-probability row.
func (p *Producer) sampleStationPair(hour int) (graph.StationID, graph.StationID, error) {
	weights := p.stProb.Weights[hour]
	if len(weights) != len(p.stProb.Stations) {
		return "", "", errors.Errorf("demand: hour %d has %d weights for %d stations", hour, len(weights), len(p.stProb.Stations))
	}

	remaining := make([]graph.StationID, len(p.stProb.Stations))
	copy(remaining, p.stProb.Stations)
	remainingWeights := make([]float64, len(weights))
	copy(remainingWeights, weights)

	origin, err := p.drawAndRemove(&remaining, &remainingWeights)
	if err != nil {
		return "", "", err
	}
	dest, err := p.drawAndRemove(&remaining, &remainingWeights)
	if err != nil {
		return "", "", err
	}
	return origin, dest, nil
}

// drawAndRemove performs a single weighted draw via cumulative-sum
// sampling, then removes the chosen entry from both slices in place.
func (p *Producer) drawAndRemove(stations *[]graph.StationID, weights *[]float64) (graph.StationID, error) {
	sum := 0.0
	for _, w := range *weights {
		sum += w
	}
	if sum <= 0 {
		return "", errors.New("demand: station probability weights sum to zero")
	}

	r := p.rng.Float64() * sum
	cum := 0.0
	idx := len(*weights) - 1
	for i, w := range *weights {
		cum += w
		if r <= cum {
			idx = i
			break
		}
	}

	chosen := (*stations)[idx]
	*stations = append((*stations)[:idx], (*stations)[idx+1:]...)
	*weights = append((*weights)[:idx], (*weights)[idx+1:]...)
	return chosen, nil
}

// samplePassengerCount draws from cfg.PassengerDistribution, indexed
// 1..len(dist).
func (p *Producer) samplePassengerCount() int {
	dist := p.cfg.PassengerDistribution
	sum := 0.0
	for _, w := range dist {
		sum += w
	}
	r := p.rng.Float64() * sum
	cum := 0.0
	for i, w := range dist {
		cum += w
		if r <= cum {
			return i + 1
		}
	}
	return len(dist)
}
