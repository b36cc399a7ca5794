package integrators

import (
	"testing"

	"github.com/san-kum/cdsim/internal/dynamo"
)

type benchDecay struct{ n int }

func (b *benchDecay) StateDim() int { return b.n }
func (b *benchDecay) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := range x {
		dx[i] = -0.1 * x[i]
	}
	return dx
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchDecay{n: 81}
	x := make(dynamo.State, 81)
	for i := range x {
		x[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.001)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchDecay{n: 81}
	x := make(dynamo.State, 81)
	for i := range x {
		x[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.001)
	}
}
