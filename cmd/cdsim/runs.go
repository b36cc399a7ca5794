package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/experiment"
	"github.com/san-kum/cdsim/internal/export"
	"github.com/san-kum/cdsim/internal/storage"
	"github.com/san-kum/cdsim/internal/viz"
)

var monomerLabels = []string{"C_-1", "C_1", "C_v", "C_i"}

var seriesColors = []string{"#00ccff", "#ff6688", "#00ff88", "#ffcc00", "#cc88ff", "#ff8800"}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tT(K)\tDT\tDURATION\tSTEPS\tSTATUS\tTIMESTAMP")
	for _, run := range runs {
		status := "ok"
		if run.Diverged {
			status = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%d\t%s\t%s\n",
			run.ID, run.Model, run.Temperature, run.Dt, run.Duration,
			run.StepsTaken, status, run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// plotColumnsFor picks the columns to plot: the requested labels, else the
// monomer columns, else the first column.
func plotColumnsFor(labels, requested []string) ([]int, error) {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	var cols []int
	if len(requested) > 0 {
		for _, name := range requested {
			i, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("no column %q", name)
			}
			cols = append(cols, i)
		}
		return cols, nil
	}

	for _, name := range monomerLabels {
		if i, ok := index[name]; ok {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 && len(labels) > 0 {
		cols = []int{0}
	}
	return cols, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data in run %s", runID)
	}

	cols, err := plotColumnsFor(meta.Labels, plotColumns)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("run: " + runID))
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	series := make([]export.Series, 0, len(cols))
	for n, col := range cols {
		data := make([]float64, len(states))
		for i := range states {
			if col < len(states[i]) {
				data[i] = states[i][col]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time (%.3g s)", meta.Labels[col], times[len(times)-1])),
		)
		fmt.Println(graph)
		fmt.Println()

		series = append(series, export.Series{
			Label:  meta.Labels[col],
			Values: data,
			Color:  seriesColors[n%len(seriesColors)],
		})
	}

	if svgFile != "" {
		svg := export.SeriesToSVG(times, series, 800, 400, logScale)
		if svg == "" {
			return fmt.Errorf("run %s has too few samples for an SVG plot", runID)
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := experiment.NewRegistry().ListModels()
	if len(args) == 1 {
		models = args[:1]
	}

	for _, model := range models {
		names := config.ListPresets(model)
		if names == nil {
			return fmt.Errorf("no presets for model %s", model)
		}
		fmt.Println(viz.Title.Render(model))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  PRESET\tT(K)\tDT\tDURATION\tMAX SIZE")
		for _, name := range names {
			cfg := config.GetPreset(model, name)
			fmt.Fprintf(w, "  %s\t%g\t%g\t%g\t%d\n", name, cfg.Temperature, cfg.Dt, cfg.Duration, cfg.Cluster.MaxSize)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
