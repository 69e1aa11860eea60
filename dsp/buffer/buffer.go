// Package buffer provides reusable float64 sample buffers and a pool for
// analysis code that segments long signals without allocating per segment.
package buffer

// Buffer wraps a float64 slice with reuse-friendly semantics. DSP functions
// accept raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}

	return &Buffer{samples: make([]float64, length)}
}

// FromSlice wraps an existing slice without copying. Mutations to the slice
// are visible through the Buffer and vice versa.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Resize sets the length to n, reusing existing capacity when possible.
// Newly exposed elements are zeroed; they may carry stale data from earlier
// use of the backing array.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}

	oldLen := len(b.samples)

	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, b.samples)
		b.samples = s
	}

	for i := oldLen; i < n; i++ {
		b.samples[i] = 0
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// CopyFrom copies as many samples from src as fit the current length and
// returns the count copied.
func (b *Buffer) CopyFrom(src []float64) int {
	return copy(b.samples, src)
}
