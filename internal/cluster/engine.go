package cluster

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/integrators"
	"github.com/san-kum/cdsim/internal/signed"
)

// minParallelSizes is the smallest per-worker share of cluster sizes worth a
// goroutine.
const minParallelSizes = 16

type Engine struct {
	params  Params
	table   *Table
	rates   *RateModel
	integ   dynamo.Integrator
	workers int
	logger  *zap.Logger

	t           float64
	steps       int
	initialized bool

	weights []float64
	labels  []string
}

type Option func(*Engine)

// WithIntegrator replaces the default explicit Euler scheme.
func WithIntegrator(integ dynamo.Integrator) Option {
	return func(e *Engine) { e.integ = integ }
}

// WithWorkers spreads each derivative evaluation over n goroutines.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(p Params, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		params:  p,
		table:   NewTable(p.MaxSize),
		rates:   NewRateModel(p.MaxSize),
		integ:   integrators.NewEuler(),
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, i := range e.table.Sizes() {
		e.weights = append(e.weights, float64(i))
		e.labels = append(e.labels, Label(i))
	}
	return e, nil
}

// Init derives every rate coefficient from the parameters and resets the
// clock. Seeded concentrations are kept.
func (e *Engine) Init() {
	e.rates.Init(e.table, e.params)
	e.table.snapshot()
	e.t = 0
	e.steps = 0
	e.initialized = true

	e.logger.Debug("cluster rates initialised",
		zap.Int("max_size", e.params.MaxSize),
		zap.Float64("temperature", e.params.Temperature),
		zap.Float64("d_interstitial", e.table.Species(1).D),
		zap.Float64("d_vacancy", e.table.Species(-1).D),
		zap.Float64("k_interstitial", e.table.Species(1).K),
		zap.Float64("k_vacancy", e.table.Species(-1).K),
	)
}

func (e *Engine) Params() Params    { return e.params }
func (e *Engine) Table() *Table     { return e.table }
func (e *Engine) Rates() *RateModel { return e.rates }
func (e *Engine) Time() float64     { return e.t }
func (e *Engine) StepsTaken() int   { return e.steps }

func (e *Engine) Concentration(i int) float64 { return e.table.Concentration(i) }
func (e *Engine) Species(i int) Species       { return e.table.Species(i) }
func (e *Engine) Previous(i int) Species      { return e.table.Previous(i) }

func (e *Engine) SetConcentration(i int, c float64) { e.table.SetConcentration(i, c) }

// StateDim covers the full signed range; slot MaxSize (size 0) stays zero.
func (e *Engine) StateDim() int { return 2*e.params.MaxSize + 1 }

// Derive returns dC/dt for every size, evaluated only from x.
func (e *Engine) Derive(x dynamo.State, _ float64) dynamo.State {
	n := e.params.MaxSize
	c := signed.Wrap(n, []float64(x))
	out := make(dynamo.State, len(x))
	d := signed.Wrap(n, []float64(out))

	sizes := e.table.Sizes()
	dynamo.ParallelFor(len(sizes), e.workers, minParallelSizes, func(lo, hi int) {
		for _, i := range sizes[lo:hi] {
			d.Set(i, e.netRate(c, i))
		}
	})
	return out
}

func (e *Engine) netRate(c *signed.Array[float64], i int) float64 {
	n := e.params.MaxSize
	sp := e.table.species.At(i)
	ci := c.At(i)

	creation := 0.0
	for j := -n; j <= n; j++ {
		if j == 0 || j == i {
			continue
		}
		k := i - j
		if k < -n || k > n {
			continue
		}
		creation += e.rates.Reaction(j, k) * c.At(j) * c.At(k)
	}

	destruction := 0.0
	if ci != 0 {
		for j := -n; j <= n; j++ {
			if j == 0 {
				continue
			}
			k := i + j
			if k < -n || k > n {
				continue
			}
			destruction += (e.rates.Reaction(i, j) + e.rates.Reaction(j, i)) * ci * c.At(j)
		}
	}

	sign := 1
	if i < 0 {
		sign = -1
	}
	dissociation := -e.rates.Dissociation(i) * ci
	if parent := i + sign; parent >= -n && parent <= n {
		dissociation += e.rates.Dissociation(parent) * c.At(parent)
	}
	if i == sign {
		// every same-kind cluster that sheds a defect emits one monomer
		for q := 2 * sign; q >= -n && q <= n; q += sign {
			dissociation += e.rates.Dissociation(q) * c.At(q)
		}
	}

	sink := sp.K * e.params.SinkConcentration * ci

	return sp.G + creation - destruction + dissociation - sink
}

// Step advances every concentration by one step of dt. A step that would
// produce a NaN or Inf concentration is not committed.
func (e *Engine) Step(dt float64) error {
	if !e.initialized {
		return dynamo.ErrNotInitialized
	}
	n := e.params.MaxSize
	x := e.state()

	next, err := dynamo.Advance(e.integ, e, x, e.t, dt, e.steps)
	if err != nil {
		if se, ok := err.(*dynamo.SimulationError); ok && se.Index >= 0 {
			return fmt.Errorf("cluster size %d: %w", se.Index-n, err)
		}
		return err
	}

	e.table.snapshot()
	for _, i := range e.table.Sizes() {
		e.table.species.Ptr(i).C = next[i+n]
	}
	e.t += dt
	e.steps++
	return nil
}

func (e *Engine) state() dynamo.State {
	n := e.params.MaxSize
	x := make(dynamo.State, 2*n+1)
	for _, i := range e.table.Sizes() {
		x[i+n] = e.table.species.At(i).C
	}
	return x
}

// Snapshot returns the concentrations of sizes -MaxSize..-1, 1..MaxSize.
func (e *Engine) Snapshot() dynamo.State {
	out := make(dynamo.State, 0, len(e.weights))
	for _, i := range e.table.Sizes() {
		out = append(out, e.table.species.At(i).C)
	}
	return out
}

func (e *Engine) Labels() []string { return e.labels }

// DefectWeights gives the signed defect count of each Snapshot entry.
func (e *Engine) DefectWeights() []float64 { return e.weights }

// Inventory is the total number of point defects held in clusters,
// sum |i| C_i.
func (e *Engine) Inventory() float64 {
	snap := e.Snapshot()
	total := 0.0
	for k, w := range e.weights {
		if w < 0 {
			w = -w
		}
		total += w * snap[k]
	}
	return total
}

// Balance is the signed defect balance sum i C_i; combination and
// dissociation conserve it exactly.
func (e *Engine) Balance() float64 {
	return floats.Dot(e.weights, e.Snapshot())
}
