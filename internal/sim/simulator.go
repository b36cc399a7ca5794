package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/dynamo"
)

// sampleSlack absorbs the rounding left after summing many dt.
const sampleSlack = 1e-9

type Simulator struct {
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run initialises model and steps it round(Duration/Dt) times. A step that
// fails ends the run early: the error is logged and recorded in
// Result.Errors, Result.Diverged is set, and the partial result is returned
// with a nil error. Only configuration problems and cancellation are
// returned as errors.
func (s *Simulator) Run(ctx context.Context, model dynamo.Model, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, s.sampleCapacity(cfg, steps)),
		Times:   make([]float64, 0, s.sampleCapacity(cfg, steps)),
		Labels:  model.Labels(),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	model.Init()
	x := model.Snapshot()
	s.sample(result, x, model.Time())
	for _, m := range s.metrics {
		m.Observe(x, model.Time())
	}

	s.logger.Info("run started",
		zap.Int("steps", steps),
		zap.Float64("dt", cfg.Dt),
		zap.Float64("duration", cfg.Duration),
		zap.Int("species", len(result.Labels)),
	)

	sinceSample := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		if err := model.Step(cfg.Dt); err != nil {
			s.logger.Error("step failed, stopping run",
				zap.Int("step", i),
				zap.Float64("t", model.Time()),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, err)
			result.Diverged = errors.Is(err, dynamo.ErrUnstable)
			break
		}
		result.StepsTaken++

		x = model.Snapshot()
		t := model.Time()
		for _, m := range s.metrics {
			m.Observe(x, t)
		}

		sinceSample += cfg.Dt
		if sinceSample >= cfg.SampleInterval*(1-sampleSlack) {
			sinceSample = 0
			s.sample(result, x, t)
		}
	}

	s.finish(result)
	s.logger.Info("run finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Float64("t", model.Time()),
		zap.Int("samples", len(result.States)),
		zap.Bool("diverged", result.Diverged),
	)
	return result, nil
}

func (s *Simulator) sample(result *dynamo.Result, x dynamo.State, t float64) {
	result.States = append(result.States, x)
	result.Times = append(result.Times, t)
	for _, obs := range s.observers {
		obs.OnSample(x, t)
	}
}

func (s *Simulator) finish(result *dynamo.Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) sampleCapacity(cfg dynamo.Config, steps int) int {
	if cfg.SampleInterval <= cfg.Dt {
		return steps + 1
	}
	return int(cfg.Duration/cfg.SampleInterval) + 2
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) {
		return fmt.Errorf("dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Duration <= 0 || math.IsNaN(cfg.Duration) {
		return fmt.Errorf("duration must be positive, got %g", cfg.Duration)
	}
	if cfg.SampleInterval < 0 {
		return fmt.Errorf("sample interval must not be negative, got %g", cfg.SampleInterval)
	}
	return nil
}
