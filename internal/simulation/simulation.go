// Package simulation wires configuration, loaders, demand, dispatch and
// export into a single headless Run entrypoint.
package simulation

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ridepooling/internal/config"
	"ridepooling/internal/demand"
	"ridepooling/internal/dispatch"
	"ridepooling/internal/export"
	"ridepooling/internal/graph"
	"ridepooling/internal/loader"
	"ridepooling/internal/request"
	"ridepooling/internal/vehicle"
)

// Options controls one headless run.
type Options struct {
	Lenient bool // drop invalid requests with a warning instead of aborting
	Seed    int64
}

// Summary is the outcome of one run: the merged schedule, the
// distance/occupancy rollup, and the served/denied request lists.
type Summary struct {
	Schedule []export.ScheduleRow
	Report   export.Summary
	Served   []request.Request
	Denied   []request.Request
}

// Run loads every input named by cfg.Paths, dispatches the resulting
// request stream against the vehicle roster, and returns the merged
// report. If cfg.Paths.OutputDir is non-empty, the four result files
// are also written there.
func Run(ctx context.Context, cfg config.Scenario, opt Options, logger *zap.Logger) (Summary, error) {
	g, err := loadGraph(cfg)
	if err != nil {
		return Summary{}, err
	}

	vehicles, err := loadVehicles(cfg)
	if err != nil {
		return Summary{}, err
	}

	requests, err := loadRequests(cfg, g, opt, logger)
	if err != nil {
		return Summary{}, err
	}
	requests, err = inWindow(requests, cfg, opt, logger)
	if err != nil {
		return Summary{}, err
	}

	d := &dispatch.Dispatcher{
		Graph:    g,
		Vehicles: vehicles,
		Weights: dispatch.Weights{
			DelayFactor:    cfg.Weights.DelayFactor,
			BalanceFactor:  cfg.Weights.BalanceFactor,
			PoolingFactor:  cfg.Weights.PoolingFactor,
			DistanceFactor: cfg.Weights.DistanceFactor,
			DelayMax:       cfg.Weights.DelayMax,
			StandingTime:   cfg.Weights.StandingTime,
		},
		Logger: logger,
	}

	result, err := d.Dispatch(ctx, requests)
	if err != nil {
		return Summary{}, errors.Wrap(err, "simulation: dispatch")
	}

	schedule, err := export.BuildSchedule(vehicles, g)
	if err != nil {
		return Summary{}, errors.Wrap(err, "simulation: building schedule")
	}

	served := servedRequests(requests, result.Denied)
	sum := Summary{
		Schedule: schedule,
		Report:   export.BuildSummary(schedule),
		Served:   served,
		Denied:   result.Denied,
	}

	if cfg.Paths.OutputDir != "" {
		if err := writeOutputs(cfg.Paths.OutputDir, sum); err != nil {
			return Summary{}, err
		}
	}

	return sum, nil
}

func loadGraph(cfg config.Scenario) (*graph.Graph, error) {
	distF, err := os.Open(cfg.Paths.DistanceMatrix)
	if err != nil {
		return nil, errors.Wrap(err, "simulation: opening distance matrix")
	}
	defer distF.Close()
	stations, distance, err := loader.LoadMatrix(distF)
	if err != nil {
		return nil, err
	}

	waytimeF, err := os.Open(cfg.Paths.WaytimeMatrix)
	if err != nil {
		return nil, errors.Wrap(err, "simulation: opening waytime matrix")
	}
	defer waytimeF.Close()
	_, travelTime, err := loader.LoadMatrix(waytimeF)
	if err != nil {
		return nil, err
	}

	return graph.New(stations, travelTime, distance)
}

func loadVehicles(cfg config.Scenario) ([]*vehicle.Vehicle, error) {
	f, err := os.Open(cfg.Paths.Vehicles)
	if err != nil {
		return nil, errors.Wrap(err, "simulation: opening vehicle roster")
	}
	defer f.Close()
	return loader.LoadVehicles(f)
}

func loadRequests(cfg config.Scenario, g *graph.Graph, opt Options, logger *zap.Logger) ([]request.Request, error) {
	if cfg.Simulation.RequestsFromCSV {
		f, err := os.Open(cfg.Paths.Requests)
		if err != nil {
			return nil, errors.Wrap(err, "simulation: opening requests csv")
		}
		defer f.Close()
		return loader.LoadRequests(f, g, cfg.Weights.DelayMax, opt.Lenient, logger)
	}

	demandF, err := os.Open(cfg.Paths.Demand)
	if err != nil {
		return nil, errors.Wrap(err, "simulation: opening demand table")
	}
	defer demandF.Close()
	table, err := loader.LoadDemandTable(demandF)
	if err != nil {
		return nil, err
	}

	spF, err := os.Open(cfg.Paths.StationProbability)
	if err != nil {
		return nil, errors.Wrap(err, "simulation: opening station probability table")
	}
	defer spF.Close()
	sp, err := loader.LoadStationProbability(spF)
	if err != nil {
		return nil, err
	}

	seed := opt.Seed
	if seed == 0 {
		seed = 1
	}
	producer := demand.New(demand.Config{
		StartDate:      cfg.Simulation.StartDate,
		OrderBehaviour: cfg.OrderBehaviour.OrderBehaviour,
		OrderAheadMin:  cfg.OrderBehaviour.OrderAheadMin,
		OrderAheadMax:  cfg.OrderBehaviour.OrderAheadMax,
		DemandFactor:   cfg.OrderBehaviour.DemandFactor,
		DelayMax:       cfg.Weights.DelayMax,
	}, g, table, sp, rand.New(rand.NewSource(seed)))

	windowMinutes := int(cfg.Simulation.EndDate.Sub(cfg.Simulation.StartDate).Minutes())
	requests, err := producer.Generate(windowMinutes)
	if err != nil {
		return nil, errors.Wrap(err, "simulation: generating synthetic demand")
	}
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].PromisedTime.Before(requests[j].PromisedTime) })
	return requests, nil
}

// inWindow enforces that every request's promised_time falls within
// [start_date, end_date]. In strict mode (the default) the first
// out-of-window request is fatal (SPEC_FULL.md §7); in lenient mode
// (--lenient) it is dropped and a warning is logged instead.
func inWindow(requests []request.Request, cfg config.Scenario, opt Options, logger *zap.Logger) ([]request.Request, error) {
	out := make([]request.Request, 0, len(requests))
	for _, r := range requests {
		if r.InWindow(cfg.Simulation.StartDate, cfg.Simulation.EndDate) {
			out = append(out, r)
			continue
		}
		if !opt.Lenient {
			return nil, errors.Errorf("simulation: request %s promised_time outside [%s, %s]",
				r.ID, cfg.Simulation.StartDate, cfg.Simulation.EndDate)
		}
		if logger != nil {
			logger.Warn("simulation: dropping out-of-window request", zap.String("id", string(r.ID)))
		}
	}
	return out, nil
}

func servedRequests(all []request.Request, denied []request.Request) []request.Request {
	deniedIDs := make(map[request.ID]bool, len(denied))
	for _, r := range denied {
		deniedIDs[r.ID] = true
	}
	out := make([]request.Request, 0, len(all))
	for _, r := range all {
		if !deniedIDs[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func writeOutputs(dir string, sum Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "simulation: creating output dir")
	}

	if err := writeFile(filepath.Join(dir, "schedule.csv"), func(f *os.File) error {
		return export.WriteSchedule(f, sum.Schedule)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "requests.csv"), func(f *os.File) error {
		return export.WriteRequests(f, sum.Served)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "requests_denied.csv"), func(f *os.File) error {
		return export.WriteRequests(f, sum.Denied)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "summary.json"), func(f *os.File) error {
		return export.WriteSummary(f, sum.Report)
	}); err != nil {
		return err
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "simulation: creating %s", path)
	}
	defer f.Close()
	return write(f)
}
