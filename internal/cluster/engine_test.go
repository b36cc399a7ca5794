package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/integrators"
)

// closedParams removes every source and sink so defects can only react.
func closedParams() Params {
	p := DefaultParams()
	p.InterstitialGeneration = 0
	p.VacancyGeneration = 0
	p.SinkConcentration = 0
	return p
}

func newEngine(t *testing.T, p Params, opts ...Option) *Engine {
	t.Helper()
	e, err := New(p, opts...)
	require.NoError(t, err)
	return e
}

func runSteps(t *testing.T, e *Engine, n int, dt float64) {
	t.Helper()
	for k := 0; k < n; k++ {
		require.NoError(t, e.Step(dt), "step %d", k)
	}
}

func TestEngine_StepBeforeInit(t *testing.T) {
	e := newEngine(t, DefaultParams())
	assert.ErrorIs(t, e.Step(1e-6), dynamo.ErrNotInitialized)
}

func TestEngine_RejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.MaxSize = 0
	_, err := New(p)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestEngine_ZeroInputStaysZero(t *testing.T) {
	e := newEngine(t, closedParams())
	e.Init()
	runSteps(t, e, 100, 1e-6)

	for _, c := range e.Snapshot() {
		assert.Zero(t, c)
	}
	assert.InDelta(t, 1e-4, e.Time(), 1e-15)
	assert.Equal(t, 100, e.StepsTaken())
}

func TestEngine_MonomerOnlyGrowth(t *testing.T) {
	p := DefaultParams()
	p.DiffusionPrefactor = 0
	e := newEngine(t, p)
	e.Init()

	const steps, dt = 1000, 1e-6
	runSteps(t, e, steps, dt)

	assert.InDelta(t, p.InterstitialGeneration*steps*dt, e.Concentration(1), 1e-9)
	assert.InDelta(t, p.VacancyGeneration*steps*dt, e.Concentration(-1), 1e-15)
	for _, i := range e.Table().Sizes() {
		if i == 1 || i == -1 {
			continue
		}
		assert.Zero(t, e.Concentration(i), "size %d", i)
	}
}

func TestEngine_SignedBalanceConserved(t *testing.T) {
	e := newEngine(t, closedParams())
	e.SetConcentration(1, 0.05)
	e.SetConcentration(2, 0.02)
	e.SetConcentration(-1, 0.1)
	e.SetConcentration(-3, 0.01)
	e.SetConcentration(-6, 0.004)
	e.Init()

	before := e.Balance()
	runSteps(t, e, 200, 1e-6)

	assert.InEpsilon(t, before, e.Balance(), 1e-9)
	// recombination removes defects of both kinds
	assert.Less(t, e.Inventory(), 0.05+0.04+0.1+0.03+0.024)
}

func TestEngine_SingleKindInventoryConserved(t *testing.T) {
	e := newEngine(t, closedParams())
	e.SetConcentration(-1, 0.1)
	e.SetConcentration(-2, 0.05)
	e.SetConcentration(-5, 0.01)
	e.Init()

	before := e.Inventory()
	runSteps(t, e, 500, 1e-6)

	assert.InEpsilon(t, before, e.Inventory(), 1e-9)
	assert.InEpsilon(t, -before, e.Balance(), 1e-9)
	for i := 1; i <= e.Params().MaxSize; i++ {
		assert.Zero(t, e.Concentration(i), "size %d", i)
	}
	assert.Greater(t, e.Concentration(-3), 0.0)
}

func TestEngine_DissociationOfDivacancy(t *testing.T) {
	e := newEngine(t, closedParams())
	e.Init()

	n := e.Params().MaxSize
	const c = 1e-4
	x := make(dynamo.State, e.StateDim())
	x[n-2] = c

	dx := e.Derive(x, 0)
	diss := e.Rates().Dissociation(-2)
	require.Greater(t, diss, 0.0)

	assert.InDelta(t, -diss*c, dx[n-2], 1e-12*diss*c)
	assert.InDelta(t, 2*diss*c, dx[n-1], 1e-12*diss*c)
	for k, v := range dx {
		if k == n-2 || k == n-1 {
			continue
		}
		assert.Zero(t, v, "size %d", k-n)
	}
}

func TestEngine_BoundaryTruncation(t *testing.T) {
	p := closedParams()
	p.MaxSize = 2
	e := newEngine(t, p)
	e.SetConcentration(1, 1e-3)
	e.SetConcentration(2, 1e-3)
	e.Init()

	k11 := e.Rates().Reaction(1, 1)
	require.Greater(t, k11, 0.0)
	assert.Equal(t, Unset, e.Rates().Reaction(1, 2))

	const dt = 1e-6
	require.NoError(t, e.Step(dt))

	// 1+2 would leave the domain, so only 1+1 -> 2 happens
	gain := k11 * 1e-3 * 1e-3 * dt
	assert.InEpsilon(t, 1e-3+gain, e.Concentration(2), 1e-12)
	assert.InEpsilon(t, 1e-3-2*gain, e.Concentration(1), 1e-12)
	for _, c := range e.Snapshot() {
		assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
	}
}

func TestEngine_PreviousHoldsStartOfStep(t *testing.T) {
	e := newEngine(t, DefaultParams())
	e.Init()
	runSteps(t, e, 3, 1e-6)

	c1 := e.Concentration(1)
	require.NoError(t, e.Step(1e-6))
	assert.Equal(t, c1, e.Previous(1).C)
	assert.NotEqual(t, c1, e.Concentration(1))
	assert.Equal(t, e.Species(1).D, e.Previous(1).D)
}

func TestEngine_DivergenceNotCommitted(t *testing.T) {
	e := newEngine(t, DefaultParams())
	e.SetConcentration(1, 1)
	e.Init()

	var (
		err    error
		before dynamo.State
		steps  int
	)
	for k := 0; k < 100 && err == nil; k++ {
		before = e.Snapshot()
		steps = e.StepsTaken()
		err = e.Step(1.0)
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrUnstable)
	assert.Contains(t, err.Error(), "cluster size")

	var se *dynamo.SimulationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, steps, se.Step)

	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, steps, e.StepsTaken())
	assert.InDelta(t, float64(steps), e.Time(), 1e-12)
}

func TestEngine_KohnertScenario(t *testing.T) {
	e := newEngine(t, DefaultParams())
	e.Init()
	runSteps(t, e, 1000, 1e-6)

	assert.InDelta(t, 1e-3, e.Time(), 1e-12)
	for k, c := range e.Snapshot() {
		require.False(t, math.IsNaN(c) || math.IsInf(c, 0), "%s", e.Labels()[k])
	}
	assert.Greater(t, e.Concentration(1), 0.0)
	assert.Greater(t, e.Concentration(-1), 0.0)
	assert.Greater(t, e.Concentration(2), 0.0)
	// interstitials are produced far faster than vacancies
	assert.Greater(t, e.Balance(), 0.0)
}

func TestEngine_WorkersMatchSerial(t *testing.T) {
	seed := func(e *Engine) {
		e.SetConcentration(1, 0.03)
		e.SetConcentration(-1, 0.02)
		e.SetConcentration(-4, 0.001)
		e.SetConcentration(3, 0.002)
	}
	serial := newEngine(t, DefaultParams())
	parallel := newEngine(t, DefaultParams(), WithWorkers(4))
	seed(serial)
	seed(parallel)
	serial.Init()
	parallel.Init()

	runSteps(t, serial, 50, 1e-6)
	runSteps(t, parallel, 50, 1e-6)
	assert.Equal(t, serial.Snapshot(), parallel.Snapshot())
}

func TestEngine_RK4(t *testing.T) {
	e := newEngine(t, DefaultParams(), WithIntegrator(integrators.NewRK4()))
	e.Init()
	runSteps(t, e, 200, 1e-6)
	assert.Greater(t, e.Concentration(1), 0.0)
}

func TestEngine_SnapshotLayout(t *testing.T) {
	p := DefaultParams()
	p.MaxSize = 3
	e := newEngine(t, p)
	e.SetConcentration(-3, 7)
	e.SetConcentration(3, 9)

	assert.Equal(t, []string{"C_-3", "C_-2", "C_-1", "C_1", "C_2", "C_3"}, e.Labels())
	assert.Equal(t, []float64{-3, -2, -1, 1, 2, 3}, e.DefectWeights())
	assert.Equal(t, dynamo.State{7, 0, 0, 0, 0, 9}, e.Snapshot())
	assert.Equal(t, 7, e.StateDim())
	assert.Equal(t, 48.0, e.Inventory())
	assert.Equal(t, 6.0, e.Balance())

	assert.Panics(t, func() { e.Concentration(0) })
	assert.Panics(t, func() { e.Concentration(4) })
}
