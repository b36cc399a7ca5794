package cluster

import (
	"math"

	"github.com/san-kum/cdsim/internal/dynamo"
)

// Params are the physical inputs of a cluster-dynamics run. Lengths are in
// nm, energies in eV, times in seconds.
type Params struct {
	Temperature                 float64
	AtomicVolume                float64
	VacancyMigrationEnergy      float64
	InterstitialMigrationEnergy float64
	Boltzmann                   float64
	DiffusionPrefactor          float64

	// MaxSize bounds cluster sizes to [-MaxSize, MaxSize]. Reactions whose
	// product would fall outside are not modelled.
	MaxSize int

	InterstitialGeneration float64
	VacancyGeneration      float64
	SinkRadius             float64
	SinkConcentration      float64

	// Binding laws used for dissociation. A nil law disables dissociation
	// for that cluster kind.
	VacancyBinding      BindingLaw
	InterstitialBinding BindingLaw
}

const (
	DefaultMaxSize   = 40
	BoltzmannEV      = 8.6173e-5
	DefaultPrefactor = 1e11
)

// DefaultParams reproduces the example case of section 4.4 in Kohnert & Wirth.
func DefaultParams() Params {
	return Params{
		Temperature:                 300,
		AtomicVolume:                0.0118,
		VacancyMigrationEnergy:      0.67,
		InterstitialMigrationEnergy: 0.34,
		Boltzmann:                   BoltzmannEV,
		DiffusionPrefactor:          DefaultPrefactor,
		MaxSize:                     DefaultMaxSize,
		InterstitialGeneration:      1000,
		VacancyGeneration:           0.01,
		SinkRadius:                  1e3,
		SinkConcentration:           8e-6,
		VacancyBinding:              VacancyCapillary(),
	}
}

// Validate rejects structurally impossible parameters. Physically odd
// values (for example a zero temperature) are accepted and show up as
// non-finite coefficients that the step guard reports.
func (p Params) Validate() error {
	if p.MaxSize < 1 {
		return dynamo.ParamError("max_size", p.MaxSize, "must be at least 1")
	}
	if p.AtomicVolume <= 0 || math.IsNaN(p.AtomicVolume) {
		return dynamo.ParamError("atomic_volume", p.AtomicVolume, "must be positive")
	}
	if p.Boltzmann <= 0 {
		return dynamo.ParamError("boltzmann", p.Boltzmann, "must be positive")
	}
	if p.SinkConcentration < 0 {
		return dynamo.ParamError("sink_concentration", p.SinkConcentration, "must not be negative")
	}
	return nil
}

// Diffusivity is the Arrhenius law D0 * exp(-E / kT).
func (p Params) Diffusivity(migrationEnergy float64) float64 {
	return p.DiffusionPrefactor * math.Exp(-migrationEnergy/(p.Boltzmann*p.Temperature))
}

// ReactionRadius assumes a spherical cluster of |size| atomic volumes.
func (p Params) ReactionRadius(size int) float64 {
	n := size
	if n < 0 {
		n = -n
	}
	return math.Cbrt(3 * float64(n) * p.AtomicVolume / (4 * math.Pi))
}

// BindingLaw gives the energy needed to detach one point defect from a
// cluster of n defects (n >= 2).
type BindingLaw interface {
	Energy(n int) float64
}

// Capillary is the capillary approximation
// E_b(n) = Formation - Coefficient * (n^(2/3) - (n-1)^(2/3)).
type Capillary struct {
	Formation   float64
	Coefficient float64
}

func (c Capillary) Energy(n int) float64 {
	const twoThirds = 2.0 / 3.0
	return c.Formation - c.Coefficient*(math.Pow(float64(n), twoThirds)-math.Pow(float64(n-1), twoThirds))
}

// VacancyCapillary is the vacancy-cluster law: vacancy formation energy
// 1.73 eV, surface term 2.59 eV.
func VacancyCapillary() Capillary {
	return Capillary{Formation: 1.73, Coefficient: 2.59}
}
