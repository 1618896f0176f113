package series

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrEmpty is returned for a series without points.
	ErrEmpty = errors.New("series is empty")
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("x and y must be of the same size")
	// ErrNotMonotonic is returned when x decreases somewhere.
	ErrNotMonotonic = errors.New("x must be monotonically non-decreasing")
	// ErrNonFiniteX is returned when an x value is NaN or infinite.
	ErrNonFiniteX = errors.New("x must be finite")
)

// Series is a sampled curve: X is typically time in seconds and Y the signal
// (e.g. normalized heat flow). SampleID is carried for diagnostics only.
type Series struct {
	SampleID string
	X        []float64
	Y        []float64
}

// New creates a series from two aligned slices. The slices are not copied.
func New(sampleID string, x, y []float64) Series {
	return Series{SampleID: sampleID, X: x, Y: y}
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.X)
}

// Validate checks the structural invariants of the series.
func (s Series) Validate() error {
	if len(s.X) != len(s.Y) {
		return errors.Wrapf(ErrLengthMismatch, "sample %q: len(x)=%d, len(y)=%d", s.SampleID, len(s.X), len(s.Y))
	}
	if len(s.X) == 0 {
		return errors.Wrapf(ErrEmpty, "sample %q", s.SampleID)
	}
	for i, x := range s.X {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.Wrapf(ErrNonFiniteX, "sample %q: x[%d]=%g", s.SampleID, i, x)
		}
	}
	for i := 1; i < len(s.X); i++ {
		if s.X[i] < s.X[i-1] {
			return errors.Wrapf(ErrNotMonotonic, "sample %q: x[%d]=%g < x[%d]=%g", s.SampleID, i, s.X[i], i-1, s.X[i-1])
		}
	}
	return nil
}

// Clone returns a deep copy of the series.
func (s Series) Clone() Series {
	out := Series{
		SampleID: s.SampleID,
		X:        make([]float64, len(s.X)),
		Y:        make([]float64, len(s.Y)),
	}
	copy(out.X, s.X)
	copy(out.Y, s.Y)
	return out
}

// Split divides the series at boundary into the points with x < boundary and
// the points with x >= boundary. Both halves share memory with s.
// Either half may be empty.
func (s Series) Split(boundary float64) (before, after Series) {
	// x is non-decreasing, so the first index at or past the boundary separates the halves
	cut := len(s.X)
	for i, x := range s.X {
		if x >= boundary {
			cut = i
			break
		}
	}
	before = Series{SampleID: s.SampleID, X: s.X[:cut], Y: s.Y[:cut]}
	after = Series{SampleID: s.SampleID, X: s.X[cut:], Y: s.Y[cut:]}
	return before, after
}

// Concat appends the points of all parts in order into a new series.
// The sample id is taken from the first part.
func Concat(parts ...Series) Series {
	var out Series
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	out.X = make([]float64, 0, total)
	out.Y = make([]float64, 0, total)
	for i, p := range parts {
		if i == 0 {
			out.SampleID = p.SampleID
		}
		out.X = append(out.X, p.X...)
		out.Y = append(out.Y, p.Y...)
	}
	return out
}

// Take returns a new series containing the points at the given indices.
// Indices must be valid for s; their order is preserved.
func (s Series) Take(indices []int) Series {
	out := Series{
		SampleID: s.SampleID,
		X:        make([]float64, len(indices)),
		Y:        make([]float64, len(indices)),
	}
	for i, idx := range indices {
		out.X[i] = s.X[idx]
		out.Y[i] = s.Y[idx]
	}
	return out
}

// Limits holds the bounding box of a series.
type Limits struct {
	Left, Right float64
	Bottom, Top float64
}

// Limits returns the data range of the series. An empty series has zero limits.
func (s Series) Limits() Limits {
	if len(s.X) == 0 || len(s.Y) == 0 {
		return Limits{}
	}
	l := Limits{Left: s.X[0], Right: s.X[0], Bottom: s.Y[0], Top: s.Y[0]}
	for _, x := range s.X {
		if x < l.Left {
			l.Left = x
		}
		if x > l.Right {
			l.Right = x
		}
	}
	for _, y := range s.Y {
		if y < l.Bottom {
			l.Bottom = y
		}
		if y > l.Top {
			l.Top = y
		}
	}
	return l
}
