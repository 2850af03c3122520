package entities

import "time"

// PlayableBuffer is decoded linear PCM audio ready for output. It is
// fixed-length and fixed-rate, created once by the transcoder and never
// mutated afterwards.
type PlayableBuffer struct {
	// Samples holds mono samples normalized to [-1, 1].
	Samples []float32
	// SampleRate is the playback rate in Hz.
	SampleRate int
}

// Duration returns the playback length of the buffer.
func (b *PlayableBuffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// SliceFrom returns the sample index corresponding to the given offset,
// clamped to the buffer bounds. Playback that starts mid-buffer uses it
// to align with an external timeline.
func (b *PlayableBuffer) SliceFrom(offset time.Duration) int {
	if b == nil || b.SampleRate <= 0 || offset <= 0 {
		return 0
	}
	idx := int(offset.Seconds() * float64(b.SampleRate))
	if idx > len(b.Samples) {
		idx = len(b.Samples)
	}
	return idx
}
