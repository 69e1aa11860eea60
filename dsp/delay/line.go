// Package delay provides the circular delay line primitive that every delay
// effect in this module is built on.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/interp"
)

// Line is a fixed-capacity circular delay line. The write cursor always
// points at the next slot to be overwritten; reading at delay d returns the
// sample written d calls to Write ago.
//
// Capacity is fixed at construction. Callers clamp their delay to
// [1, Len()-1] before reading; Line itself never reads out of bounds.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed capacity in samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay line size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns the line capacity in samples.
func (l *Line) Len() int {
	return len(l.buffer)
}

// Write stores one sample at the write cursor and advances it.
func (l *Line) Write(sample float64) {
	l.buffer[l.writePos] = sample
	l.writePos++
	if l.writePos >= len(l.buffer) {
		l.writePos = 0
	}
}

// Read returns the sample written delay calls to Write ago.
// delay is expected in [1, Len()-1]; out-of-range values wrap.
func (l *Line) Read(delay int) float64 {
	size := len(l.buffer)
	readPos := (l.writePos - delay) % size
	if readPos < 0 {
		readPos += size
	}
	return l.buffer[readPos]
}

// ReadFractional returns the sample at a fractional delay using cubic
// Hermite interpolation. The delay is clamped to the interpolatable range
// [1, Len()-3].
func (l *Line) ReadFractional(delay float64) float64 {
	if delay < 1 {
		delay = 1
	}
	maxDelay := float64(len(l.buffer) - 3)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	xm1 := l.Read(max(1, p-1))
	x0 := l.Read(p)
	x1 := l.Read(p + 1)
	x2 := l.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset zeroes the buffer and rewinds the write cursor.
func (l *Line) Reset() {
	for i := range l.buffer {
		l.buffer[i] = 0
	}
	l.writePos = 0
}
