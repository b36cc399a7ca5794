package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/sim"
)

// Experiment is one configured run: model, integrator and run loop.
type Experiment struct {
	cfg       *config.Config
	model     dynamo.Model
	simulator *sim.Simulator
	logger    *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

// Setup validates the configuration and builds the model. metrics may be
// nil, in which case the registry defaults are used.
func (e *Experiment) Setup(registry *Registry, metrics []dynamo.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	integ, err := registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	model, err := registry.GetModel(e.cfg.Model, e.cfg, integ, e.logger)
	if err != nil {
		return err
	}

	e.model = model
	e.simulator = sim.New(e.logger.With(zap.String("model", e.cfg.Model)))
	if metrics == nil {
		metrics = registry.DefaultMetrics(model)
	}
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.model, e.cfg.SimConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Model() dynamo.Model { return e.model }

func (e *Experiment) Config() *config.Config { return e.cfg }
