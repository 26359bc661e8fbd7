// Package speaker plays cue buffers on the default output device.
package speaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/balkashynov/slate/internal/audio"
)

const resampleQuality = 4

// Sink is an audio.Sink backed by the system speaker. The device is opened
// lazily on the first Resume so a machine without audio only loses the beep.
type Sink struct {
	mu         sync.Mutex
	rate       beep.SampleRate
	bufferSize time.Duration
	ready      bool
}

// New returns a sink running the device at sampleRate.
func New(sampleRate int) *Sink {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &Sink{
		rate:       beep.SampleRate(sampleRate),
		bufferSize: 20 * time.Millisecond,
	}
}

// Resume opens the output device if it is not open yet. Failures wrap
// audio.ErrUnavailable and are retried on the next call.
func (s *Sink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := speaker.Init(s.rate, s.rate.N(s.bufferSize)); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrUnavailable, err)
	}
	s.ready = true
	return nil
}

// Play queues b on the device, resampling when its rate differs. A buffer
// without a sample rate or channel count is refused.
func (s *Sink) Play(b *audio.Buffer) error {
	if b != nil && (b.SampleRate <= 0 || b.Channels <= 0) {
		return fmt.Errorf("play cue: invalid format %d Hz, %d channels", b.SampleRate, b.Channels)
	}

	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if !ready {
		return audio.ErrUnavailable
	}
	if b == nil || b.Frames() == 0 {
		return nil
	}

	var st beep.Streamer = &bufferStreamer{buf: b}
	if src := beep.SampleRate(b.SampleRate); src != s.rate {
		st = beep.Resample(resampleQuality, src, s.rate, st)
	}
	speaker.Play(st)
	return nil
}

// Close releases the device.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		speaker.Close()
		s.ready = false
	}
}

// bufferStreamer adapts an interleaved audio.Buffer to beep's stereo frames.
// Mono is copied to both channels and anything beyond two channels is dropped.
type bufferStreamer struct {
	buf *audio.Buffer
	pos int
}

func (b *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := b.buf.Frames()
	if b.pos >= frames {
		return 0, false
	}

	ch := b.buf.Channels
	n := 0
	for n < len(samples) && b.pos < frames {
		base := b.pos * ch
		left := b.buf.Samples[base]
		right := left
		if ch > 1 {
			right = b.buf.Samples[base+1]
		}
		samples[n][0] = left
		samples[n][1] = right
		n++
		b.pos++
	}
	return n, true
}

func (b *bufferStreamer) Err() error {
	return nil
}
