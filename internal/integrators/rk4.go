package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cdsim/internal/dynamo"
)

// rk4Stages lists, for stages 2..4, the node offset c (which is also the
// weight of the previous slope in the stage point) and the quadrature
// weight b.
var rk4Stages = [...]struct{ c, b float64 }{
	{0.5, 1.0 / 3},
	{0.5, 1.0 / 3},
	{1, 1.0 / 6},
}

// RK4 is the classical fourth-order Runge-Kutta scheme. The stage buffer is
// reused between steps, so an RK4 must not be shared by concurrent runs.
type RK4 struct {
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if len(r.stage) != len(x) {
		r.stage = make(dynamo.State, len(x))
	}

	next := x.Clone()
	k := sys.Derive(x, t)
	floats.AddScaled(next, dt/6, k)

	for _, s := range rk4Stages {
		floats.AddScaledTo(r.stage, x, s.c*dt, k)
		k = sys.Derive(r.stage, t+s.c*dt)
		floats.AddScaled(next, s.b*dt, k)
	}
	return next
}
