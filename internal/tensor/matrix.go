package tensor

import (
	"fmt"
	"strings"
)

// Matrix is a width×height grid of float32 values stored row-major:
// element (x, y) lives at data[y*width + x].
//
// Matrices share Vector's value semantics (deep copy on Clone/CopyFrom,
// ownership transfer on MoveFrom/Take).
type Matrix struct {
	w, h int
	data []float32
}

// NewMatrix creates a zero-filled w×h matrix.
func NewMatrix(w, h int) *Matrix {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("tensor: invalid matrix size %dx%d", w, h))
	}
	return &Matrix{w: w, h: h, data: make([]float32, w*h)}
}

// MatrixOf creates a w×h matrix from row-major values.
//
// Returns a numeric error if len(values) != w*h.
func MatrixOf(w, h int, values ...float32) (*Matrix, error) {
	if w < 0 || h < 0 {
		return nil, Numericf("matrix: invalid size %dx%d", w, h)
	}
	if len(values) != w*h {
		return nil, Mismatch("matrix initializer", w*h, len(values))
	}
	m := NewMatrix(w, h)
	copy(m.data, values)
	return m, nil
}

// Width returns the number of columns.
func (m *Matrix) Width() int { return m.w }

// Height returns the number of rows.
func (m *Matrix) Height() int { return m.h }

// Len returns width*height.
func (m *Matrix) Len() int { return len(m.data) }

// Valid reports whether the matrix owns a non-empty buffer.
func (m *Matrix) Valid() bool {
	return m != nil && m.data != nil && m.w > 0 && m.h > 0
}

// SameShape reports whether m and other have equal width and height.
func (m *Matrix) SameShape(other *Matrix) bool {
	return m.w == other.w && m.h == other.h
}

// At returns the element at column x, row y.
//
// Panics with a numeric error if (x, y) is outside the matrix.
func (m *Matrix) At(x, y int) float32 {
	m.check(x, y)
	return m.data[y*m.w+x]
}

// Set stores v at column x, row y.
func (m *Matrix) Set(x, y int, v float32) {
	m.check(x, y)
	m.data[y*m.w+x] = v
}

// Add adds v to the element at column x, row y.
func (m *Matrix) Add(x, y int, v float32) {
	m.check(x, y)
	m.data[y*m.w+x] += v
}

func (m *Matrix) check(x, y int) {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		panic(Numericf("matrix index (%d, %d) out of range %dx%d", x, y, m.w, m.h))
	}
}

// Data returns the underlying row-major buffer.
func (m *Matrix) Data() []float32 {
	return m.data
}

// Fill sets every element to v.
func (m *Matrix) Fill(v float32) {
	for i := range m.data {
		m.data[i] = v
	}
}

// DivScalar divides every element by v in place.
func (m *Matrix) DivScalar(v float32) {
	for i := range m.data {
		m.data[i] /= v
	}
}

// AddInPlace adds other to m element-wise.
func (m *Matrix) AddInPlace(other *Matrix) error {
	if !m.Valid() || !other.Valid() {
		return Logicf("add: invalid matrix")
	}
	if !m.SameShape(other) {
		return Numericf("add: shape mismatch %dx%d vs %dx%d", m.w, m.h, other.w, other.h)
	}
	for i, v := range other.data {
		m.data[i] += v
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	if m == nil || m.data == nil {
		return &Matrix{}
	}
	out := NewMatrix(m.w, m.h)
	copy(out.data, m.data)
	return out
}

// CopyFrom replaces m with a deep copy of src, reallocating when the shapes
// differ.
func (m *Matrix) CopyFrom(src *Matrix) error {
	if !src.Valid() {
		return Logicf("copy: invalid source matrix")
	}
	if len(m.data) != len(src.data) || m.data == nil {
		m.data = make([]float32, len(src.data))
	}
	m.w, m.h = src.w, src.h
	copy(m.data, src.data)
	return nil
}

// MoveFrom transfers ownership of src's buffer to m. src becomes invalid.
func (m *Matrix) MoveFrom(src *Matrix) {
	if m == src {
		return
	}
	m.w, m.h, m.data = src.w, src.h, src.data
	src.data = nil
}

// Take returns a new matrix owning m's buffer. m becomes invalid.
func (m *Matrix) Take() *Matrix {
	out := &Matrix{}
	out.MoveFrom(m)
	return out
}

// Sum returns the sum of all elements.
func (m *Matrix) Sum() float32 { return scanSum(m.data) }

// Max returns the largest element; Index is the row-major flat index of its
// first occurrence.
func (m *Matrix) Max() SearchResult { return scanMax(m.data) }

// Min returns the smallest element; Index is the row-major flat index of its
// first occurrence.
func (m *Matrix) Min() SearchResult { return scanMin(m.data) }

// ForEach visits every element once in row-major order.
func (m *Matrix) ForEach(fn func(x, y int, v *float32)) {
	for y := 0; y < m.h; y++ {
		row := m.data[y*m.w : (y+1)*m.w]
		for x := range row {
			fn(x, y, &row[x])
		}
	}
}

// ToVector returns a row-major copy of m as a vector.
func (m *Matrix) ToVector() *Vector {
	return VectorOf(m.data...)
}

// Transpose returns a new h×w matrix with out(x, y) = m(y, x).
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.h, m.w)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			out.data[x*out.w+y] = m.data[y*m.w+x]
		}
	}
	return out
}

// TransposeSquare transposes a square matrix in place.
//
// Returns a numeric error if m is not square.
func (m *Matrix) TransposeSquare() error {
	if m.w != m.h {
		return Numericf("transpose: %dx%d is not a square matrix", m.w, m.h)
	}
	for y := 0; y < m.h; y++ {
		for x := y + 1; x < m.w; x++ {
			a, b := y*m.w+x, x*m.w+y
			m.data[a], m.data[b] = m.data[b], m.data[a]
		}
	}
	return nil
}

// Randomize fills m with values drawn uniformly from [min, max).
func (m *Matrix) Randomize(rng *RNG, min, max float32) {
	rng.fill(m.data, min, max)
}

// String formats the matrix as "matrix(WxH)[[row0], [row1], ...]".
func (m *Matrix) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "matrix(%dx%d)[", m.w, m.h)
	for y := 0; y < m.h; y++ {
		if y > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for x := 0; x < m.w; x++ {
			if x > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%.5f", m.data[y*m.w+x])
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}
