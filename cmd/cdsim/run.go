package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/cluster"
	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/experiment"
	"github.com/san-kum/cdsim/internal/export"
	"github.com/san-kum/cdsim/internal/metrics"
	"github.com/san-kum/cdsim/internal/storage"
	"github.com/san-kum/cdsim/internal/viz"
)

// buildConfig resolves the run configuration: a config file, else a preset,
// else the defaults, then any flag the user set explicitly.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("preset %q not found for model %s", preset, model)
		}
	default:
		cfg = config.DefaultConfig()
	}
	if model != "" {
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("max-size") {
		cfg.Cluster.MaxSize = maxSize
	}
	if flags.Changed("k0-exp") {
		cfg.K0Exp = k0Exp
	}
	if flags.Changed("cs-exp") {
		cfg.CsExp = csExp
	}
	if flags.Changed("sample") {
		cfg.SampleInterval = sample
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-scale") {
		cfg.LogScale = logScale
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, logger)
	if err := exp.Setup(registry, nil); err != nil {
		return err
	}
	labels := exp.Model().Labels()

	var traj *export.Trajectory
	if !quiet {
		var w io.Writer = os.Stdout
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		traj = export.NewTrajectory(w, labels, cfg.LogScale)
		for _, col := range registry.Columns(exp.Model()) {
			traj.AddColumn(col)
		}
		exp.GetSimulator().AddObserver(traj)
	}

	var exporter *metrics.Exporter
	if metricsAddr != "" {
		exporter = metrics.NewExporter(labels)
		exp.GetSimulator().AddObserver(exporter)
		srv := &http.Server{Addr: metricsAddr, Handler: exporter.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	start := time.Now()
	result, err := exp.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	if exporter != nil {
		exporter.RecordRun(result, elapsed)
	}
	if traj != nil {
		if err := traj.Flush(); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
	}

	runID := ""
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(cfg, result)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, summarize(cfg, result, runID, elapsed).Render())
	return nil
}

func summarize(cfg *config.Config, result *dynamo.Result, runID string, elapsed time.Duration) viz.Summary {
	return viz.Summary{
		RunID:    runID,
		Model:    cfg.Model,
		Steps:    result.StepsTaken,
		Samples:  len(result.Times),
		SimTime:  float64(result.StepsTaken) * cfg.Dt,
		Elapsed:  elapsed.Round(time.Millisecond).String(),
		Diverged: result.Diverged,
		Metrics:  result.Metrics,
	}
}

func dumpRates(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, "cluster")
	if err != nil {
		return err
	}
	engine, err := cluster.New(cfg.ClusterParams(), cluster.WithLogger(logger))
	if err != nil {
		return err
	}
	engine.Init()

	fmt.Println(viz.Title.Render(fmt.Sprintf("cluster rates  N=%d  T=%g K", cfg.Cluster.MaxSize, cfg.Temperature)))
	for _, i := range []int{-1, 1} {
		sp := engine.Species(i)
		fmt.Printf("%s  D=%.6g  K=%.6g  r=%.6g\n", cluster.Label(i), sp.D, sp.K, sp.R)
	}
	fmt.Println()
	return engine.Rates().Dump(os.Stdout)
}
