// Package delay provides fixed-length sample delay lines.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-polezero/dsp/core"
)

// Line is a circular delay line.
type Line[T core.Float] struct {
	buffer   []T
	writePos int
}

// New returns a delay line of fixed size. A zero-size line passes samples
// straight through.
func New[T core.Float](size int) (*Line[T], error) {
	if size < 0 {
		return nil, fmt.Errorf("delay size must be >= 0: %d", size)
	}
	return &Line[T]{buffer: make([]T, size)}, nil
}

// Len returns internal buffer size.
func (d *Line[T]) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line[T]) Write(sample T) {
	if len(d.buffer) == 0 {
		return
	}
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago; Read(1) is the newest.
func (d *Line[T]) Read(delay int) T {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	readPos := ((d.writePos-delay)%size + size) % size
	return d.buffer[readPos]
}

// Process pushes x and returns the sample delayed by Len.
func (d *Line[T]) Process(x T) T {
	if len(d.buffer) == 0 {
		return x
	}
	y := d.buffer[d.writePos]
	d.Write(x)
	return y
}

// Reset clears line state.
func (d *Line[T]) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
