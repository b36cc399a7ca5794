// Package cluster integrates the mean-field cluster-dynamics equations for
// point defects in an irradiated metal.
//
// Clusters are indexed by a signed size in [-MaxSize, MaxSize] without zero:
// positive sizes are interstitial clusters, negative sizes vacancy clusters.
// Only monomers (sizes +1 and -1) are mobile, are produced by cascades and
// are absorbed by sinks. Any two clusters may combine when the product size
// stays in range; a vacancy and an interstitial cluster of equal size
// annihilate. Vacancy clusters of size two or more shed single vacancies at a
// rate set by a capillary binding-energy law.
//
// Basic usage:
//
//	e, err := cluster.New(cluster.DefaultParams())
//	if err != nil {
//		return err
//	}
//	e.Init()
//	for i := 0; i < 1000; i++ {
//		if err := e.Step(1e-6); err != nil {
//			return err
//		}
//	}
//
// An Engine is not safe for concurrent use. WithWorkers parallelises the
// derivative evaluation inside a single step only.
package cluster
