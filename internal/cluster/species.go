package cluster

import (
	"fmt"

	"github.com/san-kum/cdsim/internal/signed"
)

// Species is the state of one cluster size.
type Species struct {
	C  float64 // concentration
	G  float64 // generation rate from cascades
	D  float64 // diffusion constant
	K  float64 // sink strength
	R  float64 // reaction radius
	Rs float64 // reaction radius with sinks
}

// Table holds one Species per signed cluster size, plus the values as they
// were at the start of the most recent committed step.
type Table struct {
	species  *signed.Array[Species]
	previous *signed.Array[Species]
	sizes    []int
}

func NewTable(maxSize int) *Table {
	t := &Table{
		species:  signed.New[Species](maxSize),
		previous: signed.New[Species](maxSize),
		sizes:    make([]int, 0, 2*maxSize),
	}
	for i := -maxSize; i <= maxSize; i++ {
		if i != 0 {
			t.sizes = append(t.sizes, i)
		}
	}
	return t
}

func (t *Table) MaxSize() int { return t.species.Len() }

// Sizes lists every tracked cluster size in ascending order, zero excluded.
func (t *Table) Sizes() []int { return t.sizes }

func (t *Table) Species(i int) Species { return t.species.At(mustCluster(i)) }

func (t *Table) Previous(i int) Species { return t.previous.At(mustCluster(i)) }

func (t *Table) Concentration(i int) float64 { return t.species.At(mustCluster(i)).C }

func (t *Table) SetConcentration(i int, c float64) {
	t.species.Ptr(mustCluster(i)).C = c
}

func (t *Table) snapshot() {
	t.previous.CopyFrom(t.species)
}

func mustCluster(i int) int {
	if i == 0 {
		panic("cluster: size 0 is not a cluster")
	}
	return i
}

// Label is the column name used for size i in trajectory output.
func Label(i int) string {
	return fmt.Sprintf("C_%d", i)
}
