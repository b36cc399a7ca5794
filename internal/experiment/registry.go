package experiment

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/cluster"
	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/export"
	"github.com/san-kum/cdsim/internal/integrators"
	"github.com/san-kum/cdsim/internal/metrics"
	"github.com/san-kum/cdsim/internal/ratetheory"
)

// ModelFactory builds a model from a run configuration, seeding its initial
// concentrations.
type ModelFactory func(cfg *config.Config, integ dynamo.Integrator, logger *zap.Logger) (dynamo.Model, error)

type Registry struct {
	models      map[string]ModelFactory
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]ModelFactory),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["cluster"] = newClusterModel
	r.models["mfrt"] = newRateTheoryModel

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

func newClusterModel(cfg *config.Config, integ dynamo.Integrator, logger *zap.Logger) (dynamo.Model, error) {
	e, err := cluster.New(cfg.ClusterParams(),
		cluster.WithIntegrator(integ),
		cluster.WithWorkers(cfg.Workers),
		cluster.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	n := cfg.Cluster.MaxSize
	for _, s := range cfg.InitState {
		if s.Size == 0 || s.Size < -n || s.Size > n {
			return nil, dynamo.ParamError("init_state.size", s.Size, fmt.Sprintf("must be a nonzero size in [-%d, %d]", n, n))
		}
		e.SetConcentration(s.Size, s.Concentration)
	}
	return e, nil
}

func newRateTheoryModel(cfg *config.Config, integ dynamo.Integrator, logger *zap.Logger) (dynamo.Model, error) {
	m, err := ratetheory.New(cfg.RateTheoryParams(),
		ratetheory.WithIntegrator(integ),
		ratetheory.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	var ci, cv float64
	for _, s := range cfg.InitState {
		switch s.Size {
		case 1:
			ci = s.Concentration
		case -1:
			cv = s.Concentration
		default:
			return nil, dynamo.ParamError("init_state.size", s.Size, "must be 1 (C_i) or -1 (C_v)")
		}
	}
	m.SetConcentrations(ci, cv)
	return m, nil
}

func (r *Registry) GetModel(name string, cfg *config.Config, integ dynamo.Integrator, logger *zap.Logger) (dynamo.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(cfg, integ, logger)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are the run metrics reported for model.
func (r *Registry) DefaultMetrics(model dynamo.Model) []dynamo.Metric {
	out := []dynamo.Metric{metrics.NewNonNegative(0)}
	if w, ok := model.(dynamo.Weighted); ok {
		out = append(out,
			metrics.NewInventory(w.DefectWeights()),
			metrics.NewBalanceDrift(w.DefectWeights()),
		)
	}
	labels := model.Labels()
	for i, label := range labels {
		switch label {
		case cluster.Label(1), "C_i":
			out = append(out, metrics.NewPeak("peak_interstitial", i))
		case cluster.Label(-1), "C_v":
			out = append(out, metrics.NewPeak("peak_vacancy", i))
		}
	}
	if rt, ok := model.(*ratetheory.Model); ok {
		k := rt.Params().Coefficients()
		out = append(out, metrics.NewLinear("sink_diff", []float64{
			k.InterstitialSink * k.Sinks,
			-k.VacancySink * k.Sinks,
		}))
	}
	return out
}

// Columns are the derived trajectory columns written after the state of
// model on every sampled row.
func (r *Registry) Columns(model dynamo.Model) []export.Column {
	if rt, ok := model.(*ratetheory.Model); ok {
		return []export.Column{{Label: "sink_diff", Value: rt.SinkDifferenceAt}}
	}
	return nil
}
