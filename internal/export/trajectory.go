package export

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/cdsim/internal/dynamo"
)

// Column is a value derived from each sampled state and written after the
// state columns.
type Column struct {
	Label string
	Value func(x dynamo.State) float64
}

// Trajectory writes samples as comma separated text: a header line
// "t, <label>, ..." followed by one row per sample. It is a dynamo.Observer.
type Trajectory struct {
	w        *bufio.Writer
	labels   []string
	columns  []Column
	logScale bool
	header   bool
	err      error
	buf      []byte
}

// NewTrajectory writes to w. With logScale every value is written as
// sign(C) ln(1 + |C|), which stays finite for any finite C.
func NewTrajectory(w io.Writer, labels []string, logScale bool) *Trajectory {
	return &Trajectory{
		w:        bufio.NewWriter(w),
		labels:   labels,
		logScale: logScale,
	}
}

// AddColumn appends a derived column. It must be called before the first
// sample.
func (t *Trajectory) AddColumn(c Column) {
	t.columns = append(t.columns, c)
	t.labels = append(t.labels[:len(t.labels):len(t.labels)], c.Label)
}

func (t *Trajectory) OnSample(x dynamo.State, at float64) {
	if t.err != nil {
		return
	}
	if !t.header {
		t.header = true
		t.write("t, " + strings.Join(t.labels, ", ") + "\n")
	}

	t.buf = strconv.AppendFloat(t.buf[:0], at, 'g', -1, 64)
	for _, c := range x {
		t.appendValue(c)
	}
	for _, col := range t.columns {
		t.appendValue(col.Value(x))
	}
	t.buf = append(t.buf, '\n')
	t.write(string(t.buf))
}

func (t *Trajectory) appendValue(c float64) {
	if t.logScale {
		c = math.Copysign(math.Log1p(math.Abs(c)), c)
	}
	t.buf = append(t.buf, ", "...)
	t.buf = strconv.AppendFloat(t.buf, c, 'g', -1, 64)
}

func (t *Trajectory) write(s string) {
	if _, err := t.w.WriteString(s); err != nil {
		t.err = err
	}
}

// Flush pushes buffered rows to the underlying writer and reports the first
// write error.
func (t *Trajectory) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
