// Package signed provides a fixed-capacity container addressed by signed
// integer indices in [-n, n].
//
// The offset translation lives here once so call sites can index by cluster
// size directly:
//
//	a := signed.New[float64](40)
//	a.Set(-3, 1.5) // vacancy trimer
//	a.Set(3, 0.2)  // interstitial trimer
//
// Index 0 is addressable; callers decide whether it carries meaning.
// Out-of-range access panics: every caller is bounded by the half-width.
package signed

import "fmt"

type Array[T any] struct {
	n     int
	elems []T
}

func New[T any](n int) *Array[T] {
	if n < 0 {
		panic(fmt.Sprintf("signed: negative half-width %d", n))
	}
	return &Array[T]{n: n, elems: make([]T, 2*n+1)}
}

// Wrap views s as a signed array of half-width n. Writes through the
// returned array are visible in s.
func Wrap[T any](n int, s []T) *Array[T] {
	if n < 0 || len(s) != 2*n+1 {
		panic(fmt.Sprintf("signed: cannot wrap slice of length %d with half-width %d", len(s), n))
	}
	return &Array[T]{n: n, elems: s}
}

// Len returns the half-width n.
func (a *Array[T]) Len() int { return a.n }

// Cap returns the number of addressable slots, 2n+1.
func (a *Array[T]) Cap() int { return len(a.elems) }

func (a *Array[T]) Contains(i int) bool { return i >= -a.n && i <= a.n }

func (a *Array[T]) offset(i int) int {
	if i < -a.n || i > a.n {
		panic(fmt.Sprintf("signed: index %d out of range [%d, %d]", i, -a.n, a.n))
	}
	return i + a.n
}

func (a *Array[T]) At(i int) T { return a.elems[a.offset(i)] }

func (a *Array[T]) Set(i int, v T) { a.elems[a.offset(i)] = v }

func (a *Array[T]) Ptr(i int) *T { return &a.elems[a.offset(i)] }

// CopyFrom replaces the whole contents with those of other.
func (a *Array[T]) CopyFrom(other *Array[T]) {
	if other.n != a.n {
		panic(fmt.Sprintf("signed: copy between half-widths %d and %d", other.n, a.n))
	}
	copy(a.elems, other.elems)
}

// Fill sets every slot, including index 0, to v.
func (a *Array[T]) Fill(v T) {
	for i := range a.elems {
		a.elems[i] = v
	}
}

// Raw exposes the backing slice; index i lives at position i+n.
func (a *Array[T]) Raw() []T { return a.elems }

func (a *Array[T]) Each(fn func(i int, v T)) {
	for p, v := range a.elems {
		fn(p-a.n, v)
	}
}

func (a *Array[T]) EachNonZero(fn func(i int, v T)) {
	for p, v := range a.elems {
		if p == a.n {
			continue
		}
		fn(p-a.n, v)
	}
}
