// Package ratetheory is the two-species mean-field rate theory model: one
// free interstitial and one free vacancy concentration that recombine with
// each other and are absorbed by a fixed sink population.
package ratetheory

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/integrators"
)

// Params are in CGS units: cm, cm^2/s, eV.
type Params struct {
	Temperature float64
	Boltzmann   float64

	InterstitialPrefactor       float64
	VacancyPrefactor            float64
	InterstitialMigrationEnergy float64
	VacancyMigrationEnergy      float64

	RecombinationRadius    float64
	InterstitialSinkRadius float64
	VacancySinkRadius      float64

	// Defect production is 10^ProductionExp, sink concentration 10^SinkExp.
	ProductionExp float64
	SinkExp       float64
}

// DefaultParams uses the SA304 stainless steel material set.
func DefaultParams() Params {
	return Params{
		Temperature:                 600,
		Boltzmann:                   8.6173e-5,
		InterstitialPrefactor:       1e-3,
		VacancyPrefactor:            0.6,
		InterstitialMigrationEnergy: 0.45,
		VacancyMigrationEnergy:      1.35,
		RecombinationRadius:         7e-8,
		InterstitialSinkRadius:      1e-4,
		VacancySinkRadius:           1e-4,
		ProductionExp:               11,
		SinkExp:                     12,
	}
}

func (p Params) Validate() error {
	if p.Boltzmann <= 0 {
		return dynamo.ParamError("boltzmann", p.Boltzmann, "must be positive")
	}
	if p.RecombinationRadius < 0 || p.InterstitialSinkRadius < 0 || p.VacancySinkRadius < 0 {
		return dynamo.ParamError("radius", "negative", "radii must not be negative")
	}
	return nil
}

// Coefficients are the derived rate constants of one parameter set.
type Coefficients struct {
	Di, Dv           float64
	Production       float64
	Sinks            float64
	Recombination    float64
	InterstitialSink float64
	VacancySink      float64
}

func (p Params) Coefficients() Coefficients {
	kT := p.Boltzmann * p.Temperature
	di := p.InterstitialPrefactor * math.Exp(-p.InterstitialMigrationEnergy/kT)
	dv := p.VacancyPrefactor * math.Exp(-p.VacancyMigrationEnergy/kT)
	return Coefficients{
		Di:               di,
		Dv:               dv,
		Production:       math.Pow(10, p.ProductionExp),
		Sinks:            math.Pow(10, p.SinkExp),
		Recombination:    4 * math.Pi * p.RecombinationRadius * (di + dv),
		InterstitialSink: 4 * math.Pi * p.InterstitialSinkRadius * di,
		VacancySink:      4 * math.Pi * p.VacancySinkRadius * dv,
	}
}

type Model struct {
	params Params
	k      Coefficients
	integ  dynamo.Integrator
	logger *zap.Logger

	ci, cv      float64
	t           float64
	steps       int
	initialized bool
}

type Option func(*Model)

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(m *Model) { m.integ = integ }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(p Params, opts ...Option) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		params: p,
		integ:  integrators.NewEuler(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Model) Init() {
	m.k = m.params.Coefficients()
	m.t = 0
	m.steps = 0
	m.initialized = true
	m.logger.Debug("rate theory coefficients",
		zap.Float64("d_interstitial", m.k.Di),
		zap.Float64("d_vacancy", m.k.Dv),
		zap.Float64("k_iv", m.k.Recombination),
		zap.Float64("k_is", m.k.InterstitialSink),
		zap.Float64("k_vs", m.k.VacancySink),
	)
}

func (m *Model) StateDim() int { return 2 }

func (m *Model) Derive(x dynamo.State, _ float64) dynamo.State {
	ci, cv := x[0], x[1]
	k := m.k
	recombination := k.Recombination * ci * cv
	return dynamo.State{
		k.Production - recombination - k.InterstitialSink*ci*k.Sinks,
		k.Production - recombination - k.VacancySink*cv*k.Sinks,
	}
}

func (m *Model) Step(dt float64) error {
	if !m.initialized {
		return dynamo.ErrNotInitialized
	}
	next, err := dynamo.Advance(m.integ, m, m.Snapshot(), m.t, dt, m.steps)
	if err != nil {
		return fmt.Errorf("rate theory: %w", err)
	}
	m.ci, m.cv = next[0], next[1]
	m.t += dt
	m.steps++
	return nil
}

func (m *Model) SetConcentrations(ci, cv float64) { m.ci, m.cv = ci, cv }

func (m *Model) Snapshot() dynamo.State     { return dynamo.State{m.ci, m.cv} }
func (m *Model) Labels() []string           { return []string{"C_i", "C_v"} }
func (m *Model) DefectWeights() []float64   { return []float64{1, -1} }
func (m *Model) Time() float64              { return m.t }
func (m *Model) Coefficients() Coefficients { return m.k }
func (m *Model) Params() Params             { return m.params }

// SinkDifference is the net interstitial bias of the sinks,
// K_is C_i C_s - K_vs C_v C_s.
func (m *Model) SinkDifference() float64 {
	return m.SinkDifferenceAt(m.Snapshot())
}

// SinkDifferenceAt evaluates the sink bias for the state [C_i, C_v].
func (m *Model) SinkDifferenceAt(x dynamo.State) float64 {
	return (m.k.InterstitialSink*x[0] - m.k.VacancySink*x[1]) * m.k.Sinks
}
