// Package dynamo provides core simulation primitives for rate-equation models.
//
// The package defines the fundamental interfaces and types shared by every
// model strategy:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Model]: a System that owns and commits its own state
//   - [Metric], [Observer]: per-step and per-sample hooks for the run loop
//
// # Example
//
//	eng, _ := cluster.New(cluster.DefaultParams())
//	eng.Init()
//	for i := 0; i < steps; i++ {
//	    if err := eng.Step(dt); errors.Is(err, dynamo.ErrUnstable) {
//	        break
//	    }
//	}
//
// # Thread Safety
//
// Models are NOT thread-safe. [ParallelFor] only fans out work that writes
// to disjoint output slots of a single derivative evaluation.
package dynamo
