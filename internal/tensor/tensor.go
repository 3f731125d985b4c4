package tensor

import "fmt"

// Tensor is an ordered stack of equally sized matrices, one per channel.
//
// The channel count is fixed at construction. Tensors have the same value
// semantics as Vector and Matrix.
type Tensor struct {
	w, h     int
	channels []*Matrix
}

// NewTensor creates a zero-filled tensor with c channels of w×h.
func NewTensor(c, w, h int) *Tensor {
	if c < 0 || w < 0 || h < 0 {
		panic(fmt.Sprintf("tensor: invalid tensor size %dx%dx%d", c, w, h))
	}
	t := &Tensor{w: w, h: h, channels: make([]*Matrix, c)}
	for i := range t.channels {
		t.channels[i] = NewMatrix(w, h)
	}
	return t
}

// Channels returns the number of channels.
func (t *Tensor) Channels() int { return len(t.channels) }

// Width returns the width shared by every channel.
func (t *Tensor) Width() int { return t.w }

// Height returns the height shared by every channel.
func (t *Tensor) Height() int { return t.h }

// Len returns channels*width*height.
func (t *Tensor) Len() int { return len(t.channels) * t.w * t.h }

// Valid reports whether the tensor owns valid channel buffers.
func (t *Tensor) Valid() bool {
	if t == nil || len(t.channels) == 0 {
		return false
	}
	for _, ch := range t.channels {
		if !ch.Valid() {
			return false
		}
	}
	return true
}

// Channel returns channel c. The matrix is owned by the tensor.
//
// Panics with a numeric error if c is out of range.
func (t *Tensor) Channel(c int) *Matrix {
	if c < 0 || c >= len(t.channels) {
		panic(Numericf("tensor channel %d out of range [0, %d)", c, len(t.channels)))
	}
	return t.channels[c]
}

// At returns the element at (x, y) of channel c.
func (t *Tensor) At(x, y, c int) float32 {
	return t.Channel(c).At(x, y)
}

// Set stores v at (x, y) of channel c.
func (t *Tensor) Set(x, y, c int, v float32) {
	t.Channel(c).Set(x, y, v)
}

// Fill sets every element of every channel to v.
func (t *Tensor) Fill(v float32) {
	for _, ch := range t.channels {
		ch.Fill(v)
	}
}

// AddInPlace adds other to t element-wise.
func (t *Tensor) AddInPlace(other *Tensor) error {
	if len(t.channels) != len(other.channels) {
		return Mismatch("add: channels", len(t.channels), len(other.channels))
	}
	for i, ch := range t.channels {
		if err := ch.AddInPlace(other.channels[i]); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
	}
	return nil
}

// DivScalar divides every element by v in place.
func (t *Tensor) DivScalar(v float32) {
	for _, ch := range t.channels {
		ch.DivScalar(v)
	}
}

// Clone returns a deep copy of t.
func (t *Tensor) Clone() *Tensor {
	if t == nil || t.channels == nil {
		return &Tensor{}
	}
	out := &Tensor{w: t.w, h: t.h, channels: make([]*Matrix, len(t.channels))}
	for i, ch := range t.channels {
		out.channels[i] = ch.Clone()
	}
	return out
}

// CopyFrom replaces t with a deep copy of src, reusing existing channel
// buffers where possible.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !src.Valid() {
		return Logicf("copy: invalid source tensor")
	}
	if len(t.channels) != len(src.channels) {
		channels := make([]*Matrix, len(src.channels))
		copy(channels, t.channels)
		t.channels = channels
	}
	for i, ch := range src.channels {
		if t.channels[i] == nil {
			t.channels[i] = &Matrix{}
		}
		if err := t.channels[i].CopyFrom(ch); err != nil {
			return err
		}
	}
	t.w, t.h = src.w, src.h
	return nil
}

// MoveFrom transfers ownership of src's channels to t. src becomes invalid.
func (t *Tensor) MoveFrom(src *Tensor) {
	if t == src {
		return
	}
	t.w, t.h, t.channels = src.w, src.h, src.channels
	src.channels = nil
}

// Take returns a new tensor owning t's channels. t becomes invalid.
func (t *Tensor) Take() *Tensor {
	out := &Tensor{}
	out.MoveFrom(t)
	return out
}

// Sum returns the sum over every channel.
func (t *Tensor) Sum() float32 {
	var sum float32
	for _, ch := range t.channels {
		sum += ch.Sum()
	}
	return sum
}

// Max returns the largest element; Index is the flat channel-major index
// c*width*height + y*width + x of its first occurrence.
func (t *Tensor) Max() SearchResult {
	return t.search(func(ch *Matrix) SearchResult { return ch.Max() }, func(a, b float32) bool { return a > b })
}

// Min returns the smallest element with the same indexing as Max.
func (t *Tensor) Min() SearchResult {
	return t.search(func(ch *Matrix) SearchResult { return ch.Min() }, func(a, b float32) bool { return a < b })
}

func (t *Tensor) search(scan func(*Matrix) SearchResult, better func(a, b float32) bool) SearchResult {
	best := SearchResult{Index: -1}
	plane := t.w * t.h
	for c, ch := range t.channels {
		r := scan(ch)
		if r.Index < 0 {
			continue
		}
		if best.Index < 0 || better(r.Value, best.Value) {
			best = SearchResult{Value: r.Value, Index: c*plane + r.Index}
		}
	}
	return best
}

// ForEach visits every element once, channel by channel, each channel in
// row-major order.
func (t *Tensor) ForEach(fn func(x, y, c int, v *float32)) {
	for c, ch := range t.channels {
		ch.ForEach(func(x, y int, v *float32) {
			fn(x, y, c, v)
		})
	}
}

// ToVector flattens t channel-major, then row-major.
func (t *Tensor) ToVector() *Vector {
	v := NewVector(t.Len())
	plane := t.w * t.h
	for c, ch := range t.channels {
		copy(v.data[c*plane:(c+1)*plane], ch.data)
	}
	return v
}

// Randomize fills every channel with values drawn uniformly from [min, max).
func (t *Tensor) Randomize(rng *RNG, min, max float32) {
	for _, ch := range t.channels {
		ch.Randomize(rng, min, max)
	}
}

// String formats the tensor as "tensor(CxWxH)".
func (t *Tensor) String() string {
	return fmt.Sprintf("tensor(%dx%dx%d)", len(t.channels), t.w, t.h)
}
