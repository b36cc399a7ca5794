package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/experiment"
	"github.com/san-kum/cdsim/internal/storage"
	"github.com/san-kum/cdsim/internal/sweep"
	"github.com/san-kum/cdsim/internal/viz"
)

// parseValues accepts plain numbers and lo:hi:n ranges.
func parseValues(args []string) ([]float64, error) {
	var out []float64
	for _, arg := range args {
		if parts := strings.Split(arg, ":"); len(parts) == 3 {
			lo, err1 := strconv.ParseFloat(parts[0], 64)
			hi, err2 := strconv.ParseFloat(parts[1], 64)
			n, err3 := strconv.Atoi(parts[2])
			if err1 != nil || err2 != nil || err3 != nil || n < 1 {
				return nil, fmt.Errorf("bad range %q, want lo:hi:n", arg)
			}
			out = append(out, sweep.Linspace(lo, hi, n)...)
			continue
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", arg, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	model, param := args[0], args[1]
	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}
	values, err := parseValues(args[2:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ps := &sweep.ParameterSweep{Base: cfg, Param: param, Values: values, Workers: sweepWorkers}
	results, err := sweep.RunSweep(ctx, ps, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	labels := sweepLabels(results)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := append([]string{strings.ToUpper(param)}, labels...)
	header = append(header, "STEPS", "STATUS")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range results {
		row := []string{strconv.FormatFloat(r.Value, 'g', -1, 64)}
		if r.Err != nil {
			for range labels {
				row = append(row, "-")
			}
			row = append(row, "-", "error: "+r.Err.Error())
			fmt.Fprintln(w, strings.Join(row, "\t"))
			continue
		}
		for _, l := range labels {
			row = append(row, fmt.Sprintf("%.6g", r.Final(l)))
		}
		status := "ok"
		if r.Diverged {
			status = "diverged"
		}
		row = append(row, strconv.Itoa(r.StepsTaken), status)
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if param == "max_size" && len(labels) > 0 {
		changes := sweep.RelativeChange(results, labels[0])
		for k, c := range changes {
			if !math.IsNaN(c) {
				fmt.Printf("relative change of %s at %s=%g: %.3g\n", labels[0], param, results[k+1].Value, c)
			}
		}
	}
	return nil
}

func sweepLabels(results []sweep.Result) []string {
	if sweepLabel != "" {
		return []string{sweepLabel}
	}
	for _, r := range results {
		if r.Err != nil || len(r.Labels) == 0 {
			continue
		}
		var out []string
		for _, l := range monomerLabels {
			for _, have := range r.Labels {
				if have == l {
					out = append(out, l)
				}
			}
		}
		return out
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := sweep.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, viz.Title.Render("scenario: "+scenario.Name))
	if scenario.Description != "" {
		fmt.Fprintln(os.Stderr, viz.Subtle.Render(scenario.Description))
	}

	start := time.Now()
	configs, results, err := sweep.RunScenario(ctx, scenario, experiment.NewRegistry(), logger)
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if initErr := st.Init(); initErr != nil {
		return initErr
	}
	for i, res := range results {
		runID, saveErr := st.Save(configs[i], res)
		if saveErr != nil {
			return saveErr
		}
		fmt.Fprintln(os.Stderr, stepSummary(configs[i], scenario.Steps[i].Name, runID, res.StepsTaken, res.Diverged))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d steps in %s\n", len(results), elapsed.Round(time.Millisecond))
	return nil
}

func stepSummary(cfg *config.Config, name, runID string, steps int, diverged bool) string {
	status := viz.StatusOK.Render("ok")
	if diverged {
		status = viz.StatusDiverged.Render("diverged")
	}
	return fmt.Sprintf("%s  %s  %s  %s", viz.MetricValue.Render(name), cfg.Model, status,
		viz.MetricLabel.Render(fmt.Sprintf("%d steps, run %s", steps, runID)))
}
