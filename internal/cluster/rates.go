package cluster

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/cdsim/internal/signed"
)

// Unset marks rate-table entries outside the modelled reaction domain.
const Unset = -42.0

type rateTable = signed.Array[*signed.Array[float64]]

func newRateTable(n int) *rateTable {
	t := signed.New[*signed.Array[float64]](n)
	for i := -n; i <= n; i++ {
		t.Set(i, signed.New[float64](n))
	}
	return t
}

// RateModel caches the pairwise combination coefficients and the
// dissociation coefficients derived from a Params set.
//
// reaction[i][j] is the rate coefficient for "cluster i absorbs cluster j".
// It is defined for i, j != 0 with |i+j| <= MaxSize; i+j == 0 is
// recombination with no surviving product. dissociation[i][n] is the rate at
// which cluster i emits one point defect and becomes n = i - sign(i).
type RateModel struct {
	maxSize      int
	reaction     *rateTable
	dissociation *rateTable
}

func NewRateModel(maxSize int) *RateModel {
	return &RateModel{
		maxSize:      maxSize,
		reaction:     newRateTable(maxSize),
		dissociation: newRateTable(maxSize),
	}
}

func (m *RateModel) MaxSize() int { return m.maxSize }

// Init derives per-species constants into tab and rebuilds both tables.
// Repeated calls with the same inputs produce identical tables.
func (m *RateModel) Init(tab *Table, p Params) {
	n := m.maxSize
	if tab.MaxSize() != n {
		panic(fmt.Sprintf("cluster: table half-width %d does not match rate model %d", tab.MaxSize(), n))
	}

	for i := -n; i <= n; i++ {
		m.reaction.At(i).Fill(Unset)
		m.dissociation.At(i).Fill(0)
	}

	for _, i := range tab.Sizes() {
		s := tab.species.Ptr(i)
		s.R = p.ReactionRadius(i)
		s.D, s.G, s.Rs, s.K = 0, 0, 0, 0
	}
	tab.species.Ptr(1).D = p.Diffusivity(p.InterstitialMigrationEnergy)
	tab.species.Ptr(-1).D = p.Diffusivity(p.VacancyMigrationEnergy)

	for _, i := range tab.Sizes() {
		si := tab.species.At(i)
		for _, j := range tab.Sizes() {
			if !m.Defined(i, j) {
				continue
			}
			rij := si.R + tab.species.At(j).R
			m.reaction.At(i).Set(j, 4*math.Pi*rij*si.D)
		}
	}

	kT := p.Boltzmann * p.Temperature
	for _, i := range tab.Sizes() {
		size, sign := abs(i), 1
		if i < 0 {
			sign = -1
		}
		if size < 2 {
			continue
		}
		law := p.InterstitialBinding
		if i < 0 {
			law = p.VacancyBinding
		}
		if law == nil {
			continue
		}
		shrunk := i - sign
		// The reverse of dissociation is shrunk + monomer -> i.
		reverse := m.Reaction(shrunk, sign) + m.Reaction(sign, shrunk)
		eb := law.Energy(size)
		m.dissociation.At(i).Set(shrunk, reverse/p.AtomicVolume*math.Exp(-eb/kT))
	}

	for _, i := range []int{1, -1} {
		s := tab.species.Ptr(i)
		s.Rs = p.SinkRadius
		s.K = 4 * math.Pi * s.Rs * s.D
	}
	tab.species.Ptr(1).G = p.InterstitialGeneration
	tab.species.Ptr(-1).G = p.VacancyGeneration
}

// Defined reports whether (i, j) is inside the modelled reaction domain.
func (m *RateModel) Defined(i, j int) bool {
	if i == 0 || j == 0 {
		return false
	}
	n := m.maxSize
	return i >= -n && i <= n && j >= -n && j <= n && abs(i+j) <= n
}

// Reaction returns the raw table entry, Unset outside the domain.
func (m *RateModel) Reaction(i, j int) float64 {
	return m.reaction.At(i).At(j)
}

// Dissociation returns the emission rate of cluster i; zero for monomers.
func (m *RateModel) Dissociation(i int) float64 {
	if abs(i) < 2 {
		return 0
	}
	if i > 0 {
		return m.dissociation.At(i).At(i - 1)
	}
	return m.dissociation.At(i).At(i + 1)
}

// Dump writes the reaction table as rows i in [-N, N) by columns j in [-N, N).
func (m *RateModel) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	n := m.maxSize
	fmt.Fprintln(bw, "[")
	for i := -n; i < n; i++ {
		for j := -n; j < n; j++ {
			fmt.Fprintf(bw, "%12.5g, ", m.Reaction(i, j))
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, "]")
	return bw.Flush()
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
