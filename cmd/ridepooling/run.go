package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ridepooling/internal/config"
	"ridepooling/internal/logging"
	"ridepooling/internal/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run <config-path>",
	Short: "Run one scenario to completion and report the result",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

var (
	verbose   bool
	lenient   bool
	outputDir string
	seed      int64
)

func init() {
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode (human readable) logging")
	runCmd.Flags().BoolVarP(&lenient, "lenient", "l", false, "drop invalid request rows instead of aborting the run")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to write schedule.csv/requests.csv/requests_denied.csv/summary.json (overrides the scenario file)")
	runCmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed for synthetic demand generation (0 means seed 1)")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening scenario config: %w", err)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		return fmt.Errorf("loading scenario config: %w", err)
	}
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}

	sum, err := simulation.Run(context.Background(), cfg, simulation.Options{Lenient: lenient, Seed: seed}, logger)
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	fmt.Printf("served: %d  denied: %d\n", len(sum.Served), len(sum.Denied))
	fmt.Printf("distance total: %.2f  occupied: %.2f  passenger-distance: %.2f\n",
		sum.Report.Total.DistanceTotal, sum.Report.Total.DistanceOccupied, sum.Report.Total.PassengerDistance)
	if cfg.Paths.OutputDir != "" {
		fmt.Printf("report written to %s\n", cfg.Paths.OutputDir)
	}
	return nil
}
