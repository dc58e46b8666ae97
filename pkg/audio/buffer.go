// Package audio provides the sample buffer a host graph hands to a node for
// each render block. Channels are non-interleaved float32 slices.
package audio

import "fmt"

// Buffer holds a fixed block of samples, one slice per channel.
// It is not safe for concurrent use; the host owns the buffer for the
// duration of one render call.
type Buffer struct {
	channels [][]float32
	frames   int
}

// New allocates a zeroed buffer with the given channel count and frame count.
func New(channels, frames int) *Buffer {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}
	b := &Buffer{
		channels: make([][]float32, channels),
		frames:   frames,
	}
	for i := range b.channels {
		b.channels[i] = make([]float32, frames)
	}
	return b
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// NumFrames returns the frames per channel.
func (b *Buffer) NumFrames() int { return b.frames }

// Channel returns the sample slice for channel ch.
// The slice aliases the buffer's storage.
func (b *Buffer) Channel(ch int) []float32 {
	return b.channels[ch]
}

// Sample returns one sample. It panics if ch or frame is out of range,
// matching slice semantics.
func (b *Buffer) Sample(ch, frame int) float32 {
	return b.channels[ch][frame]
}

// SetSample stores one sample.
func (b *Buffer) SetSample(ch, frame int, v float32) {
	b.channels[ch][frame] = v
}

// Clear zeroes every channel.
func (b *Buffer) Clear() {
	for _, c := range b.channels {
		for i := range c {
			c[i] = 0
		}
	}
}

// ClearChannel zeroes a single channel.
func (b *Buffer) ClearChannel(ch int) {
	c := b.channels[ch]
	for i := range c {
		c[i] = 0
	}
}

// ApplyGain multiplies every sample by g.
func (b *Buffer) ApplyGain(g float32) {
	for _, c := range b.channels {
		for i := range c {
			c[i] *= g
		}
	}
}

// String describes the buffer shape, useful in logs and test failures.
func (b *Buffer) String() string {
	return fmt.Sprintf("audio.Buffer(%dch x %d frames)", len(b.channels), b.frames)
}
