package core

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelCount reports a block with zero channels or more channels
	// than the processor was prepared for.
	ErrChannelCount = errors.New("unsupported channel count")
	// ErrBlockLength reports channel slices of unequal length.
	ErrBlockLength = errors.New("channel lengths differ")
)

// BlockLength validates a planar multichannel block and returns its common
// frame count. maxChannels <= 0 disables the upper channel bound.
func BlockLength[T Float](data [][]T, maxChannels int) (int, error) {
	if len(data) == 0 || (maxChannels > 0 && len(data) > maxChannels) {
		return 0, fmt.Errorf("%w: %d", ErrChannelCount, len(data))
	}

	n := len(data[0])
	for ch := 1; ch < len(data); ch++ {
		if len(data[ch]) != n {
			return 0, fmt.Errorf("%w: channel %d has %d samples, want %d",
				ErrBlockLength, ch, len(data[ch]), n)
		}
	}

	return n, nil
}

// Zero sets all values in buf to 0.
func Zero[T Float](buf []T) {
	for i := range buf {
		buf[i] = 0
	}
}

// Planar allocates a channels x frames planar buffer backed by one slice.
func Planar[T Float](channels, frames int) [][]T {
	if channels <= 0 || frames < 0 {
		return nil
	}

	backing := make([]T, channels*frames)
	out := make([][]T, channels)
	for ch := range out {
		out[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}

	return out
}
