package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/integrators"
)

// decayModel is dx/dt = -x, integrated with Euler; failAt > 0 makes that
// step report instability.
type decayModel struct {
	x      float64
	t      float64
	step   int
	failAt int
	inits  int
}

func (d *decayModel) Derive(x dynamo.State, _ float64) dynamo.State { return dynamo.State{-x[0]} }
func (d *decayModel) StateDim() int                                 { return 1 }
func (d *decayModel) Labels() []string                              { return []string{"x"} }
func (d *decayModel) Time() float64                                 { return d.t }
func (d *decayModel) Snapshot() dynamo.State                        { return dynamo.State{d.x} }

func (d *decayModel) Init() {
	d.x, d.t, d.step = 1, 0, 0
	d.inits++
}

func (d *decayModel) Step(dt float64) error {
	d.step++
	if d.step == d.failAt {
		return &dynamo.SimulationError{Step: d.step, Time: d.t + dt, Index: 0, Wrapped: dynamo.ErrUnstable}
	}
	next, err := dynamo.Advance(integrators.NewEuler(), d, d.Snapshot(), d.t, dt, d.step)
	if err != nil {
		return err
	}
	d.x = next[0]
	d.t += dt
	return nil
}

func TestSimulatorRun(t *testing.T) {
	model := &decayModel{}
	result, err := New(nil).Run(context.Background(), model, dynamo.Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if model.inits != 1 {
		t.Errorf("Init called %d times, want 1", model.inits)
	}
	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 || result.Diverged {
		t.Errorf("StepsTaken = %d, Diverged = %v", result.StepsTaken, result.Diverged)
	}

	final := result.Final()[0]
	expected := math.Pow(0.9, 10)
	if math.Abs(final-expected) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", expected, final)
	}
	if result.Labels[0] != "x" {
		t.Errorf("labels = %v", result.Labels)
	}
}

func TestSimulatorSampleInterval(t *testing.T) {
	tests := []struct {
		interval float64
		want     int
	}{
		{0, 11},
		{0.1, 11},
		{0.2, 6},
		{0.25, 4},
		{5, 1},
	}
	for _, tt := range tests {
		cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, SampleInterval: tt.interval}
		result, err := New(nil).Run(context.Background(), &decayModel{}, cfg)
		if err != nil {
			t.Fatalf("interval %g: %v", tt.interval, err)
		}
		if len(result.States) != tt.want {
			t.Errorf("interval %g: %d samples, want %d", tt.interval, len(result.States), tt.want)
		}
		if result.Times[0] != 0 {
			t.Errorf("interval %g: first sample at t=%g", tt.interval, result.Times[0])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"zero dt", dynamo.Config{Dt: 0, Duration: 1.0}},
		{"negative dt", dynamo.Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", dynamo.Config{Dt: 0.1, Duration: 0}},
		{"negative duration", dynamo.Config{Dt: 0.1, Duration: -1.0}},
		{"negative sample interval", dynamo.Config{Dt: 0.1, Duration: 1.0, SampleInterval: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &decayModel{}
			_, err := New(nil).Run(context.Background(), model, tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
			if model.inits != 0 {
				t.Error("model initialised despite bad config")
			}
		})
	}
}

func TestSimulatorStopsOnDivergence(t *testing.T) {
	model := &decayModel{failAt: 6}
	result, err := New(nil).Run(context.Background(), model, dynamo.Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("divergence should not be returned as an error: %v", err)
	}
	if !result.Diverged {
		t.Error("expected Diverged")
	}
	if result.StepsTaken != 5 {
		t.Errorf("StepsTaken = %d, want 5", result.StepsTaken)
	}
	if len(result.States) != 6 {
		t.Errorf("expected 6 states, got %d", len(result.States))
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], dynamo.ErrUnstable) {
		t.Errorf("errors = %v", result.Errors)
	}
	for _, s := range result.States {
		if !s.IsValid() {
			t.Errorf("invalid sample recorded: %v", s)
		}
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(nil).Run(ctx, &decayModel{}, dynamo.Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.States) != 1 {
		t.Errorf("expected only the initial sample, got %+v", result)
	}
}

type countMetric struct {
	count int
	last  float64
}

func (c *countMetric) Name() string                      { return "count" }
func (c *countMetric) Observe(x dynamo.State, _ float64) { c.count++; c.last = x[0] }
func (c *countMetric) Value() float64                    { return float64(c.count) }
func (c *countMetric) Reset()                            { c.count = 0 }

type recorder struct {
	times []float64
}

func (r *recorder) OnSample(_ dynamo.State, t float64) { r.times = append(r.times, t) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New(nil)
	metric := &countMetric{count: 99}
	rec := &recorder{}
	s.AddMetric(metric)
	s.AddObserver(rec)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, SampleInterval: 0.5}
	result, err := s.Run(context.Background(), &decayModel{}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := result.Metrics["count"]; got != 11 {
		t.Errorf("count metric = %v, want 11", got)
	}
	if len(rec.times) != 3 {
		t.Fatalf("observer saw %d samples, want 3", len(rec.times))
	}
	if math.Abs(rec.times[2]-1.0) > 1e-9 {
		t.Errorf("last sample at t=%g, want 1", rec.times[2])
	}
}
