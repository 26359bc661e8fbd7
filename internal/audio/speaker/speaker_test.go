package speaker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/balkashynov/slate/internal/audio"
)

func TestBufferStreamerMono(t *testing.T) {
	st := &bufferStreamer{buf: &audio.Buffer{SampleRate: 8000, Channels: 1, Samples: []float64{0.1, 0.2, 0.3}}}

	out := make([][2]float64, 2)
	n, ok := st.Stream(out)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, [2]float64{0.1, 0.1}, out[0])
	assert.Equal(t, [2]float64{0.2, 0.2}, out[1])

	n, ok = st.Stream(out)
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, [2]float64{0.3, 0.3}, out[0])

	n, ok = st.Stream(out)
	assert.False(t, ok)
	assert.Equal(t, 0, n)
	assert.NoError(t, st.Err())
}

func TestBufferStreamerStereo(t *testing.T) {
	st := &bufferStreamer{buf: &audio.Buffer{SampleRate: 8000, Channels: 2, Samples: []float64{0.1, -0.1, 0.5, -0.5}}}

	out := make([][2]float64, 4)
	n, ok := st.Stream(out)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, [2]float64{0.1, -0.1}, out[0])
	assert.Equal(t, [2]float64{0.5, -0.5}, out[1])
}

func TestPlayBeforeResume(t *testing.T) {
	s := New(0)
	err := s.Play(audio.Tone(audio.DefaultSampleRate, 1))
	assert.ErrorIs(t, err, audio.ErrUnavailable)
}

func TestPlayRejectsInvalidFormat(t *testing.T) {
	s := New(0)
	for _, b := range []*audio.Buffer{
		{SampleRate: 0, Channels: 1, Samples: []float64{0.1}},
		{SampleRate: 44100, Channels: 0, Samples: []float64{0.1}},
	} {
		err := s.Play(b)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, audio.ErrUnavailable, "rejected before touching the device")
	}
}
