package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	version = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "ailscoord",
	Short: "AILS-II thread coordinator for the Capacitated Vehicle Routing Problem",
	Long: `ailscoord runs the AILS-II metaheuristic's elite set, thread coordinator,
and path-relinking engine against a CVRP instance: a protected main worker, an
optional pool of restartable workers seeded from the elite set, and an
optional path-relinking worker that periodically relinks elite solutions.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ailscoord.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
