package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FirstInvalid returns the position of the first NaN or Inf entry, or -1.
func (s State) FirstInvalid() int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// System is a right-hand side dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

// Model is a System that owns its committed state. The run loop calls Init
// once and then Step repeatedly, reading Snapshot for reporting.
type Model interface {
	System
	Init()
	Step(dt float64) error
	Snapshot() State
	Labels() []string
	Time() float64
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(x State, t float64)
}

// Weighted models report the number of signed point defects each Snapshot
// entry carries; vacancy-type entries are negative.
type Weighted interface {
	DefectWeights() []float64
}

// Config controls one run. SampleInterval is in simulated seconds; zero
// samples after every step.
type Config struct {
	Dt             float64
	Duration       float64
	SampleInterval float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       1e-6,
		Duration: 1e-3,
	}
}

// Steps is the number of whole steps of Dt that fit in Duration.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

type Result struct {
	States     []State
	Times      []float64
	Labels     []string
	Metrics    map[string]float64
	StepsTaken int
	Diverged   bool
	Errors     []error
}

// Final returns the last sampled state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
