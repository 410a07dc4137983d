package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "ridepooling",
	Short:        "Shared-ride dispatch simulator",
	Long:         "Simulates an online insertion-based ride-pooling dispatcher against a replay or synthetic request stream",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
