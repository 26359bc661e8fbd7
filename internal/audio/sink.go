package audio

import (
	"errors"
	"fmt"
)

// ErrUnavailable means the host audio subsystem could not be started or resumed.
var ErrUnavailable = errors.New("audio output unavailable")

// Sink is the host audio output.
type Sink interface {
	// Resume prepares the output for playback. It is called before every
	// cue and must be cheap once the output is running.
	Resume() error
	// Play queues b for playback without blocking until it finishes.
	Play(b *Buffer) error
}

// NopSink discards everything. It stands in when no audio device is wanted.
type NopSink struct{}

func (NopSink) Resume() error      { return nil }
func (NopSink) Play(*Buffer) error { return nil }

// CueLoadError describes a custom cue that could not be fetched or decoded.
type CueLoadError struct {
	URI string
	Err error
}

func (e *CueLoadError) Error() string {
	return fmt.Sprintf("load cue %q: %v", e.URI, e.Err)
}

func (e *CueLoadError) Unwrap() error {
	return e.Err
}
