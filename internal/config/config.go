// Package config parses the scenario's INI configuration file into a
// typed Scenario.
package config

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Scenario is the fully parsed scenario configuration.
type Scenario struct {
	Simulation     Simulation
	Weights        Weights
	OrderBehaviour OrderBehaviour
	Paths          Paths
}

// Simulation holds the [simulation] section.
type Simulation struct {
	StartDate       time.Time `mapstructure:"start_date"`
	EndDate         time.Time `mapstructure:"end_date"`
	RequestsFromCSV bool      `mapstructure:"requests_from_csv"`
	StandingTime    int       `mapstructure:"standing_time"`
}

// Weights holds the [weights] section: the scorer's factors and the
// shared feasibility caps.
type Weights struct {
	DelayFactor    float64 `mapstructure:"delay_factor"`
	BalanceFactor  float64 `mapstructure:"balance_factor"`
	PoolingFactor  float64 `mapstructure:"pooling_factor"`
	DistanceFactor float64 `mapstructure:"distance_factor"`
	DelayMax       int     `mapstructure:"delay_max"`
	StandingTime   int     `mapstructure:"standing_time"`
}

// OrderBehaviour holds the [order_behaviour] section, consumed by the
// synthetic demand producer.
type OrderBehaviour struct {
	OrderBehaviour float64 `mapstructure:"order_behaviour"`
	OrderAheadMin  int     `mapstructure:"order_ahead_min"`
	OrderAheadMax  int     `mapstructure:"order_ahead_max"`
	DemandFactor   float64 `mapstructure:"demand_factor"`
}

// Paths holds the [paths] section. Requests is required for replay
// (requests_from_csv = true); Demand and StationProbability are both
// required for synthetic demand. The paths of the mode not in use are
// neither checked nor read.
type Paths struct {
	DistanceMatrix     string `mapstructure:"distance_matrix"`
	WaytimeMatrix      string `mapstructure:"waytime_matrix"`
	Vehicles           string `mapstructure:"vehicles"`
	Requests           string `mapstructure:"requests"`
	Demand             string `mapstructure:"demand"`
	StationProbability string `mapstructure:"station_probability"`
	OutputDir          string `mapstructure:"output_dir"`
}

const timeLayout = "2006-01-02 15:04"

// Load reads and validates an INI-formatted scenario configuration from
// r. The time fields accept either RFC3339 or "2006-01-02 15:04".
func Load(r io.Reader) (Scenario, error) {
	v := viper.New()
	v.SetConfigType("ini")

	v.SetDefault("weights.delay_factor", 1.0)
	v.SetDefault("weights.balance_factor", 1.0)
	v.SetDefault("weights.pooling_factor", 1.0)
	v.SetDefault("weights.distance_factor", 1.0)
	v.SetDefault("simulation.standing_time", 1)
	v.SetDefault("order_behaviour.demand_factor", 1.0)

	if err := v.ReadConfig(r); err != nil {
		return Scenario{}, errors.Wrap(err, "config: reading scenario config")
	}

	start, err := parseTime(v.GetString("simulation.start_date"))
	if err != nil {
		return Scenario{}, errors.Wrap(err, "config: simulation.start_date")
	}
	end, err := parseTime(v.GetString("simulation.end_date"))
	if err != nil {
		return Scenario{}, errors.Wrap(err, "config: simulation.end_date")
	}
	if end.Before(start) {
		return Scenario{}, errors.Errorf("config: simulation.end_date (%s) before start_date (%s)", end, start)
	}

	cfg := Scenario{
		Simulation: Simulation{
			StartDate:       start,
			EndDate:         end,
			RequestsFromCSV: v.GetBool("simulation.requests_from_csv"),
			StandingTime:    v.GetInt("simulation.standing_time"),
		},
		Weights: Weights{
			DelayFactor:    v.GetFloat64("weights.delay_factor"),
			BalanceFactor:  v.GetFloat64("weights.balance_factor"),
			PoolingFactor:  v.GetFloat64("weights.pooling_factor"),
			DistanceFactor: v.GetFloat64("weights.distance_factor"),
			DelayMax:       v.GetInt("weights.delay_max"),
			StandingTime:   v.GetInt("weights.standing_time"),
		},
		OrderBehaviour: OrderBehaviour{
			OrderBehaviour: v.GetFloat64("order_behaviour.order_behaviour"),
			OrderAheadMin:  v.GetInt("order_behaviour.order_ahead_min"),
			OrderAheadMax:  v.GetInt("order_behaviour.order_ahead_max"),
			DemandFactor:   v.GetFloat64("order_behaviour.demand_factor"),
		},
		Paths: Paths{
			DistanceMatrix:     v.GetString("paths.distance_matrix"),
			WaytimeMatrix:      v.GetString("paths.waytime_matrix"),
			Vehicles:           v.GetString("paths.vehicles"),
			Requests:           v.GetString("paths.requests"),
			Demand:             v.GetString("paths.demand"),
			StationProbability: v.GetString("paths.station_probability"),
			OutputDir:          v.GetString("paths.output_dir"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Scenario{}, err
	}
	return cfg, nil
}

func (s Scenario) validate() error {
	if s.Paths.DistanceMatrix == "" || s.Paths.WaytimeMatrix == "" || s.Paths.Vehicles == "" {
		return errors.New("config: paths.distance_matrix, paths.waytime_matrix and paths.vehicles are required")
	}
	if s.Simulation.RequestsFromCSV {
		if s.Paths.Requests == "" {
			return errors.New("config: paths.requests is required when simulation.requests_from_csv is true")
		}
	} else if s.Paths.Demand == "" || s.Paths.StationProbability == "" {
		return errors.New("config: paths.demand and paths.station_probability are required for synthetic demand")
	}
	if s.Weights.DelayMax < 0 {
		return errors.Errorf("config: weights.delay_max must be non-negative, got %d", s.Weights.DelayMax)
	}
	if s.OrderBehaviour.OrderAheadMax < s.OrderBehaviour.OrderAheadMin {
		return errors.Errorf("config: order_behaviour.order_ahead_max (%d) below order_ahead_min (%d)",
			s.OrderBehaviour.OrderAheadMax, s.OrderBehaviour.OrderAheadMin)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing %q", s)
	}
	return t, nil
}
