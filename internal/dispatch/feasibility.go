package dispatch

import (
	"time"

	"ridepooling/internal/graph"
)

// CheckFeasibility recomputes planned_time, delay and occupation across
// c.Stops in index order (leaving the first stop's planned_time as given,
// per SPEC_FULL.md §4.4), then rejects the candidate if it violates
// capacity, the per-stop delay cap, or the same-station ordering rule.
// It mutates c.Stops in place and returns false for a rejected candidate.
func CheckFeasibility(g *graph.Graph, c *Candidate, standingTime time.Duration, delayMaxCfg int) (bool, error) {
	occupation := 0
	maxDelay := 0
	maxOccupation := 0
	minOccupation := 0

	for k := range c.Stops {
		if k > 0 {
			tt, err := g.TravelTime(c.Stops[k-1].Station, c.Stops[k].Station)
			if err != nil {
				return false, err
			}
			c.Stops[k].PlannedTime = c.Stops[k-1].PlannedTime.Add(time.Duration(tt)*time.Minute + standingTime)
		}

		diff := c.Stops[k].PlannedTime.Sub(c.Stops[k].PromisedTime)
		if diff < 0 {
			diff = 0
		}
		c.Stops[k].Delay = int(diff / time.Minute)
		if c.Stops[k].Delay > maxDelay {
			maxDelay = c.Stops[k].Delay
		}

		occupation += c.Stops[k].Boarding
		c.Stops[k].Occupation = occupation
		if occupation > maxOccupation {
			maxOccupation = occupation
		}
		if occupation < minOccupation {
			minOccupation = occupation
		}

		if k+1 < len(c.Stops) {
			if c.Stops[k].Station == c.Stops[k+1].Station &&
				c.Stops[k].Boarding > 0 && c.Stops[k+1].Boarding < 0 {
				return false, nil
			}
		}
	}

	if maxDelay > delayMaxCfg {
		return false, nil
	}
	if maxOccupation > c.Seats || minOccupation < 0 {
		return false, nil
	}

	sum := 0
	for _, s := range c.Stops {
		sum += s.Occupation
	}
	if len(c.Stops) > 0 {
		c.PoolingRate = float64(sum) / float64(len(c.Stops))
	}
	c.DeltaDistance = sumDistance(g, c.Stops) - c.DistanceOld
	return true, nil
}
