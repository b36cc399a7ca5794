package metrics

import (
	"github.com/san-kum/cdsim/internal/dynamo"
)

// Peak is the largest value one state entry reached during the run.
type Peak struct {
	name    string
	index   int
	max     float64
	samples int
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index}
}

func (p *Peak) Name() string {
	return p.name
}

func (p *Peak) Observe(x dynamo.State, _ float64) {
	if p.index >= len(x) {
		return
	}
	if p.samples == 0 || x[p.index] > p.max {
		p.max = x[p.index]
	}
	p.samples++
}

func (p *Peak) Value() float64 {
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.samples = 0
}

// NonNegative is the fraction of observations in which no concentration
// fell below -tolerance. Explicit steps that are too long show up here
// before they diverge.
type NonNegative struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewNonNegative(tolerance float64) *NonNegative {
	return &NonNegative{
		name:      "non_negative",
		tolerance: tolerance,
	}
}

func (s *NonNegative) Name() string {
	return s.name
}

func (s *NonNegative) Observe(x dynamo.State, _ float64) {
	s.samples++
	for _, val := range x {
		if val < -s.tolerance {
			s.violations++
			break
		}
	}
}

func (s *NonNegative) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *NonNegative) Reset() {
	s.violations = 0
	s.samples = 0
}
