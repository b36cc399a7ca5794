package signed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_SignedIndexing(t *testing.T) {
	a := New[float64](3)

	require.Equal(t, 3, a.Len())
	require.Equal(t, 7, a.Cap())

	for i := -3; i <= 3; i++ {
		a.Set(i, float64(i)*10)
	}
	for i := -3; i <= 3; i++ {
		assert.Equal(t, float64(i)*10, a.At(i), "index %d", i)
	}

	assert.Equal(t, []float64{-30, -20, -10, 0, 10, 20, 30}, a.Raw())
}

func TestArray_OutOfRangePanics(t *testing.T) {
	a := New[int](2)

	tests := []struct {
		name  string
		index int
	}{
		{"below", -3},
		{"above", 3},
		{"far", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { a.At(tt.index) })
			assert.Panics(t, func() { a.Set(tt.index, 1) })
		})
	}
}

func TestArray_Contains(t *testing.T) {
	a := New[int](2)
	assert.True(t, a.Contains(-2))
	assert.True(t, a.Contains(0))
	assert.True(t, a.Contains(2))
	assert.False(t, a.Contains(-3))
	assert.False(t, a.Contains(3))
}

func TestArray_CopyFrom(t *testing.T) {
	src := New[int](2)
	dst := New[int](2)
	src.Set(-2, 7)
	src.Set(1, 3)

	dst.CopyFrom(src)
	assert.Equal(t, 7, dst.At(-2))
	assert.Equal(t, 3, dst.At(1))

	src.Set(1, 99)
	assert.Equal(t, 3, dst.At(1), "copy must be independent of the source")

	assert.Panics(t, func() { dst.CopyFrom(New[int](3)) })
}

func TestArray_NestedTable(t *testing.T) {
	table := New[*Array[float64]](2)
	for i := -2; i <= 2; i++ {
		table.Set(i, New[float64](2))
	}
	table.At(-1).Set(2, 4.5)
	assert.Equal(t, 4.5, table.At(-1).At(2))
	assert.Equal(t, 0.0, table.At(2).At(-1))
}

func TestWrap_SharesBacking(t *testing.T) {
	s := make([]float64, 5)
	a := Wrap(2, s)
	a.Set(-2, 1)
	a.Set(2, 2)
	assert.Equal(t, []float64{1, 0, 0, 0, 2}, s)

	assert.Panics(t, func() { Wrap(2, make([]float64, 4)) })
}

func TestArray_EachNonZero(t *testing.T) {
	a := New[int](2)
	var seen []int
	a.EachNonZero(func(i int, _ int) { seen = append(seen, i) })
	assert.Equal(t, []int{-2, -1, 1, 2}, seen)

	var all []int
	a.Each(func(i int, _ int) { all = append(all, i) })
	assert.Len(t, all, 5)
}
