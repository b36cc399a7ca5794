// Package sweep runs families of independent simulations: one-parameter
// sweeps and scripted scenarios.
package sweep

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/experiment"
)

// ParameterSweep runs Base once per value of Param.
type ParameterSweep struct {
	Base    *config.Config
	Param   string
	Values  []float64
	Workers int
}

// Result holds one sweep point. Err is set when the point could not be run;
// a diverged run is not an error.
type Result struct {
	Value      float64
	Labels     []string
	FinalState dynamo.State
	FinalTime  float64
	StepsTaken int
	Diverged   bool
	Metrics    map[string]float64
	Err        error
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// RunSweep executes the sweep points concurrently, at most Workers at a
// time (0 means one per point). Results keep the order of Values.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *zap.Logger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sweep.Values) == 0 {
		return nil, fmt.Errorf("sweep over %s has no values", sweep.Param)
	}
	if err := sweep.Base.Clone().Set(sweep.Param, sweep.Values[0]); err != nil {
		return nil, err
	}

	results := make([]Result, len(sweep.Values))
	g, ctx := errgroup.WithContext(ctx)
	if sweep.Workers > 0 {
		g.SetLimit(sweep.Workers)
	}

	for i, v := range sweep.Values {
		g.Go(func() error {
			cfg := sweep.Base.Clone()
			_ = cfg.Set(sweep.Param, v)

			res := Result{Value: v}
			exp := experiment.New(cfg, logger.With(zap.String(sweep.Param, fmt.Sprint(v))))
			if err := exp.Setup(registry, nil); err != nil {
				res.Err = err
				results[i] = res
				return nil
			}

			out, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}
			res.Labels = out.Labels
			res.FinalState = out.Final()
			if len(out.Times) > 0 {
				res.FinalTime = out.Times[len(out.Times)-1]
			}
			res.StepsTaken = out.StepsTaken
			res.Diverged = out.Diverged
			res.Metrics = out.Metrics
			results[i] = res

			logger.Info("sweep point done",
				zap.String("param", sweep.Param),
				zap.Float64("value", v),
				zap.Int("steps", out.StepsTaken),
				zap.Bool("diverged", out.Diverged),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Final returns the last sampled value of label, or NaN when the point has
// no such column.
func (r Result) Final(label string) float64 {
	for i, l := range r.Labels {
		if l == label && i < len(r.FinalState) {
			return r.FinalState[i]
		}
	}
	return math.NaN()
}

// RelativeChange compares label between consecutive sweep points:
// |v_k - v_{k-1}| / |v_k|. It is the usual convergence check when sweeping
// max_size.
func RelativeChange(results []Result, label string) []float64 {
	if len(results) < 2 {
		return nil
	}
	out := make([]float64, len(results)-1)
	for k := 1; k < len(results); k++ {
		prev, cur := results[k-1].Final(label), results[k].Final(label)
		if cur == 0 {
			out[k-1] = math.Abs(cur - prev)
			continue
		}
		out[k-1] = math.Abs(cur-prev) / math.Abs(cur)
	}
	return out
}
