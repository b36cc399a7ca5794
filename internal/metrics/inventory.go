package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cdsim/internal/dynamo"
)

// Inventory is the total number of point defects held in the state,
// sum |w_k| x_k, at the last observation.
type Inventory struct {
	name    string
	weights []float64
	value   float64
}

func NewInventory(weights []float64) *Inventory {
	abs := make([]float64, len(weights))
	for i, w := range weights {
		abs[i] = math.Abs(w)
	}
	return &Inventory{name: "inventory", weights: abs}
}

func (m *Inventory) Name() string { return m.name }

func (m *Inventory) Observe(x dynamo.State, _ float64) {
	m.value = floats.Dot(m.weights, x)
}

func (m *Inventory) Value() float64 { return m.value }
func (m *Inventory) Reset()         { m.value = 0 }

// BalanceDrift tracks the largest change of the signed defect balance
// sum w_k x_k away from its first observed value. The change is relative
// when the initial balance is nonzero and absolute otherwise.
type BalanceDrift struct {
	name     string
	weights  []float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewBalanceDrift(weights []float64) *BalanceDrift {
	return &BalanceDrift{name: "balance_drift", weights: weights}
}

func (m *BalanceDrift) Name() string { return m.name }

func (m *BalanceDrift) Observe(x dynamo.State, _ float64) {
	balance := floats.Dot(m.weights, x)
	if m.samples == 0 {
		m.initial = balance
	}
	m.samples++

	drift := math.Abs(balance - m.initial)
	if m.initial != 0 {
		drift /= math.Abs(m.initial)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *BalanceDrift) Value() float64 { return m.maxDrift }

func (m *BalanceDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// Linear reports c . x at the last observation.
type Linear struct {
	name   string
	coeffs []float64
	value  float64
}

func NewLinear(name string, coeffs []float64) *Linear {
	return &Linear{name: name, coeffs: coeffs}
}

func (m *Linear) Name() string                      { return m.name }
func (m *Linear) Observe(x dynamo.State, _ float64) { m.value = floats.Dot(m.coeffs, x) }
func (m *Linear) Value() float64                    { return m.value }
func (m *Linear) Reset()                            { m.value = 0 }
