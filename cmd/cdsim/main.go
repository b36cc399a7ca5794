package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/logging"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool

	dt          float64
	duration    float64
	temperature float64
	maxSize     int
	k0Exp       float64
	csExp       float64
	sample      float64
	integrator  string
	workers     int
	configFile  string
	preset      string
	logScale    bool
	outFile     string
	quiet       bool
	noSave      bool
	metricsAddr string

	sweepWorkers int
	sweepLabel   string
	plotColumns  []string
	svgFile      string

	logger = zap.NewNop()
)

// main registers the commands and exits with status 1 if the selected
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "cdsim",
		Short:         "cluster dynamics of irradiation point defects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logJSON)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&logScale, "log-scale", false, "write ln(C+1) instead of C")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the trajectory to a file instead of stdout")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not write the trajectory")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during the run")

	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "print the cluster reaction-rate table",
		Args:  cobra.NoArgs,
		RunE:  dumpRates,
	}
	addModelFlags(ratesCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [model] [param] [values...]",
		Short: "run one simulation per parameter value",
		Long: "run one simulation per parameter value.\n\n" +
			"values are numbers, or lo:hi:n for n evenly spaced values",
		Args: cobra.MinimumNArgs(3),
		RunE: runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepWorkers, "parallel", 0, "concurrent runs (0 = one per value)")
	sweepCmd.Flags().StringVar(&sweepLabel, "label", "", "concentration reported per value (default first and last species)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns", nil, "labels to plot (default monomers)")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write an SVG plot to this file")
	plotCmd.Flags().BoolVar(&logScale, "log-scale", false, "logarithmic concentration axis in the SVG")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, ratesCmd, sweepCmd, scenarioCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", 0, "simulated time in seconds")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "temperature in kelvin")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "largest cluster size N")
	cmd.Flags().Float64Var(&k0Exp, "k0-exp", 0, "rate theory: production is 10^k0-exp")
	cmd.Flags().Float64Var(&csExp, "cs-exp", 0, "rate theory: sink density is 10^cs-exp")
	cmd.Flags().Float64Var(&sample, "sample", 0, "sample interval in seconds (0 = every step)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, rk4)")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per derivative evaluation")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (yaml or json)")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "named preset")
}
