package tensor

// DotSlices returns the inner product of the first n elements of a and b,
// where n is len(a). The caller guarantees len(b) >= len(a).
//
// The loop is unrolled by four with independent accumulators so the
// compiler can keep the partial sums in registers; it is the single hot
// primitive behind Linear forward passes.
func DotSlices(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}
	return (s0 + s1) + (s2 + s3)
}

// SearchResult is the outcome of a Max or Min scan: the extreme value and
// the index of its first occurrence.
type SearchResult struct {
	Value float32
	Index int
}

// scanMax returns the first maximum of data, or Index -1 if data is empty.
func scanMax(data []float32) SearchResult {
	if len(data) == 0 {
		return SearchResult{Index: -1}
	}
	best := SearchResult{Value: data[0], Index: 0}
	for i := 1; i < len(data); i++ {
		if data[i] > best.Value {
			best = SearchResult{Value: data[i], Index: i}
		}
	}
	return best
}

// scanMin returns the first minimum of data, or Index -1 if data is empty.
func scanMin(data []float32) SearchResult {
	if len(data) == 0 {
		return SearchResult{Index: -1}
	}
	best := SearchResult{Value: data[0], Index: 0}
	for i := 1; i < len(data); i++ {
		if data[i] < best.Value {
			best = SearchResult{Value: data[i], Index: i}
		}
	}
	return best
}

func scanSum(data []float32) float32 {
	var sum float32
	for _, v := range data {
		sum += v
	}
	return sum
}
