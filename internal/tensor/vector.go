package tensor

import (
	"fmt"
	"strings"
)

// Vector is a fixed-size, exclusively owned buffer of float32 values.
//
// Vectors have value semantics: Clone and CopyFrom perform deep copies,
// MoveFrom and Take transfer the buffer and leave the source invalid.
// A zero Vector is invalid; use NewVector or VectorOf.
//
// Example:
//
//	v := tensor.VectorOf(1, 2, 3)
//	w := v.Clone()
//	w.Set(0, 10) // v is unchanged
type Vector struct {
	data []float32
}

// NewVector creates a zero-filled vector with the given size.
func NewVector(size int) *Vector {
	if size < 0 {
		panic(fmt.Sprintf("tensor: invalid vector size %d", size))
	}
	return &Vector{data: make([]float32, size)}
}

// VectorOf creates a vector holding a copy of values.
func VectorOf(values ...float32) *Vector {
	v := NewVector(len(values))
	copy(v.data, values)
	return v
}

// OneHot returns a vector of length n with 1 at label and 0 elsewhere.
//
// Returns a numeric error if n is zero or label is outside [0, n).
func OneHot(n, label int) (*Vector, error) {
	if n <= 0 {
		return nil, Numericf("one-hot: size must be positive, got %d", n)
	}
	if label < 0 || label >= n {
		return nil, Numericf("one-hot: label %d out of range [0, %d)", label, n)
	}
	v := NewVector(n)
	v.data[label] = 1
	return v, nil
}

// Len returns the number of elements.
func (v *Vector) Len() int {
	return len(v.data)
}

// Valid reports whether the vector still owns a buffer.
func (v *Vector) Valid() bool {
	return v != nil && v.data != nil
}

// At returns the element at index i.
//
// Panics with a numeric error if i is out of range.
func (v *Vector) At(i int) float32 {
	v.check(i)
	return v.data[i]
}

// Set stores x at index i.
//
// Panics with a numeric error if i is out of range.
func (v *Vector) Set(i int, x float32) {
	v.check(i)
	v.data[i] = x
}

func (v *Vector) check(i int) {
	if i < 0 || i >= len(v.data) {
		panic(Numericf("vector index %d out of range [0, %d)", i, len(v.data)))
	}
}

// Data returns the underlying buffer. Writes through the slice mutate the
// vector; never keep the slice beyond the vector's lifetime.
func (v *Vector) Data() []float32 {
	return v.data
}

// Fill sets every element to x.
func (v *Vector) Fill(x float32) {
	for i := range v.data {
		v.data[i] = x
	}
}

// Dot returns the inner product of a and b.
//
// Returns a numeric error if the lengths differ and a logic error if either
// vector is invalid.
func Dot(a, b *Vector) (float32, error) {
	if !a.Valid() || !b.Valid() {
		return 0, Logicf("dot: invalid vector")
	}
	if len(a.data) != len(b.data) {
		return 0, Mismatch("dot", len(a.data), len(b.data))
	}
	return DotSlices(a.data, b.data), nil
}

// DivScalar divides every element by x in place.
func (v *Vector) DivScalar(x float32) {
	for i := range v.data {
		v.data[i] /= x
	}
}

// AddInPlace adds other to v element-wise.
func (v *Vector) AddInPlace(other *Vector) error {
	if !v.Valid() || !other.Valid() {
		return Logicf("add: invalid vector")
	}
	if len(v.data) != len(other.data) {
		return Mismatch("add", len(v.data), len(other.data))
	}
	for i, x := range other.data {
		v.data[i] += x
	}
	return nil
}

// Clone returns a deep copy of v.
func (v *Vector) Clone() *Vector {
	if !v.Valid() {
		return &Vector{}
	}
	return VectorOf(v.data...)
}

// CopyFrom replaces the contents of v with a deep copy of src, reallocating
// when the sizes differ.
func (v *Vector) CopyFrom(src *Vector) error {
	if !src.Valid() {
		return Logicf("copy: invalid source vector")
	}
	if len(v.data) != len(src.data) || v.data == nil {
		v.data = make([]float32, len(src.data))
	}
	copy(v.data, src.data)
	return nil
}

// MoveFrom transfers ownership of src's buffer to v. src becomes invalid.
func (v *Vector) MoveFrom(src *Vector) {
	if v == src {
		return
	}
	v.data = src.data
	src.data = nil
}

// Take returns a new vector owning v's buffer. v becomes invalid.
func (v *Vector) Take() *Vector {
	out := &Vector{}
	out.MoveFrom(v)
	return out
}

// Sum returns the sum of all elements.
func (v *Vector) Sum() float32 {
	return scanSum(v.data)
}

// Max returns the largest element and the index of its first occurrence.
// An empty vector yields Index -1.
func (v *Vector) Max() SearchResult {
	return scanMax(v.data)
}

// Min returns the smallest element and the index of its first occurrence.
// An empty vector yields Index -1.
func (v *Vector) Min() SearchResult {
	return scanMin(v.data)
}

// ForEach calls fn once for every element in index order. fn may mutate the
// element through the pointer.
func (v *Vector) ForEach(fn func(i int, x *float32)) {
	for i := range v.data {
		fn(i, &v.data[i])
	}
}

// Randomize fills v with values drawn uniformly from [min, max).
func (v *Vector) Randomize(rng *RNG, min, max float32) {
	rng.fill(v.data, min, max)
}

// String formats the vector as "vector(0.10000, 0.20000)".
func (v *Vector) String() string {
	var sb strings.Builder
	sb.WriteString("vector(")
	for i, x := range v.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%.5f", x)
	}
	sb.WriteString(")")
	return sb.String()
}
