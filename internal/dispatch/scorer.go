package dispatch

// Weights configures the scorer and feasibility checker per SPEC_FULL.md
// §6.1's [weights] section.
type Weights struct {
	DelayFactor    float64
	BalanceFactor  float64
	PoolingFactor  float64
	DistanceFactor float64
	DelayMax       int // minutes
	StandingTime   int // minutes
}

type scored struct {
	candidate  *Candidate
	deltaDelay float64
	balance    float64
	pool       float64
	deltaDist  float64
	score      float64
}

// Score picks the single best candidate from feasible per SPEC_FULL.md
// §4.5. feasible must already be in deterministic (vehicle order ×
// insertion-pair order) order; ties are broken by first-encountered,
// since the scan below keeps the first entry achieving the max score.
func Score(feasible []*Candidate, w Weights) (*Candidate, bool) {
	if len(feasible) == 0 {
		return nil, false
	}

	entries := make([]scored, len(feasible))
	var maxDelay, maxBalance, maxPool, maxDist float64

	for i, c := range feasible {
		delaySum := 0
		for _, s := range c.Stops {
			delaySum += s.Delay
		}
		e := scored{
			candidate:  c,
			deltaDelay: float64(delaySum - c.DelayOld),
			balance:    float64(c.BalanceOld),
			pool:       c.PoolingRate,
			deltaDist:  c.DeltaDistance,
		}
		entries[i] = e

		if e.deltaDelay > maxDelay {
			maxDelay = e.deltaDelay
		}
		if e.balance > maxBalance {
			maxBalance = e.balance
		}
		if e.pool > maxPool {
			maxPool = e.pool
		}
		if e.deltaDist > maxDist {
			maxDist = e.deltaDist
		}
	}

	best := 0
	bestScore := 0.0
	for i := range entries {
		e := &entries[i]

		delayScore := 1.0
		if maxDelay > 0 {
			delayScore = 1 - e.deltaDelay/maxDelay
		}
		balScore := 1.0
		if maxBalance > 0 {
			balScore = 1 - e.balance/maxBalance
		}
		poolScore := 0.0
		if maxPool > 0 {
			poolScore = e.pool / maxPool
		}
		distScore := 1.0
		if maxDist > 0 {
			distScore = 1 - e.deltaDist/maxDist
		}

		e.score = delayScore*w.DelayFactor + balScore*w.BalanceFactor +
			poolScore*w.PoolingFactor + distScore*w.DistanceFactor

		if i == 0 || e.score > bestScore {
			best = i
			bestScore = e.score
		}
	}

	return entries[best].candidate, true
}
