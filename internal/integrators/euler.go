package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cdsim/internal/dynamo"
)

// Euler is the explicit forward scheme x' = x + dt*f(x, t). Every component
// of f is evaluated from the same start-of-step x.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	next := make(dynamo.State, len(x))
	floats.AddScaledTo(next, x, dt, sys.Derive(x, t))
	return next
}
