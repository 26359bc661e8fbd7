// Package audio is the cue engine behind the slate: it owns the synthesized
// fallback beep, an optionally loaded custom cue, and the volume and mute
// preferences, and hands finished sample buffers to a host output Sink.
package audio

import "time"

// Buffer holds decoded or synthesized PCM samples in [-1, 1]. Multi-channel
// samples are interleaved.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float64
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Scaled returns a copy with every sample multiplied by gain. The receiver is
// never modified, so a cached buffer can be shared between plays.
func (b *Buffer) Scaled(gain float64) *Buffer {
	out := &Buffer{
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		Samples:    make([]float64, len(b.Samples)),
	}
	for i, s := range b.Samples {
		out.Samples[i] = s * gain
	}
	return out
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}
