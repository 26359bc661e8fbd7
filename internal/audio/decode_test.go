package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampStreamer yields frames whose left channel counts up and right channel
// counts down. A negative length streams forever.
type rampStreamer struct {
	length int
	pos    int
	err    error
}

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	if r.length >= 0 && r.pos >= r.length {
		return 0, false
	}
	n := 0
	for n < len(samples) && (r.length < 0 || r.pos < r.length) {
		v := float64(r.pos%100) / 100
		samples[n] = [2]float64{v, -v}
		n++
		r.pos++
	}
	return n, true
}

func (r *rampStreamer) Err() error { return r.err }

func TestSniffFormat(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		want cueFormat
	}{
		{"wav", rawWAV(1, 1, 44100, 88200, 16, 10), formatWAV},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI "), formatUnknown},
		{"mp3 with id3 tag", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), formatMP3},
		{"bare mp3 frame", []byte{0xFF, 0xFB, 0x90, 0x64}, formatMP3},
		{"ogg", []byte("OggS\x00\x02"), formatVorbis},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), formatFLAC},
		{"html", []byte("<html>nope</html>"), formatUnknown},
		{"empty", nil, formatUnknown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sniffFormat(tc.data))
		})
	}
}

func TestDecodeCue(t *testing.T) {
	buf, err := DecodeCue(rawWAV(1, 2, 22050, 88200, 16, 50))
	require.NoError(t, err)
	assert.Equal(t, 22050, buf.SampleRate)
	assert.Equal(t, 2, buf.Channels)
	assert.Equal(t, 50, buf.Frames())

	_, err = DecodeCue([]byte("<html>nope</html>"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	// Truncated containers fail inside the beep decoders
	for _, data := range [][]byte{
		[]byte("fLaC\x00\x00"),
		[]byte("OggS\x00"),
	} {
		buf, err := DecodeCue(data)
		assert.Error(t, err, string(data[:4]))
		assert.Nil(t, buf)
	}
}

func TestCollectStream(t *testing.T) {
	t.Run("stereo", func(t *testing.T) {
		buf, err := collectStream(&rampStreamer{length: 1000}, beep.Format{SampleRate: 8000, NumChannels: 2}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 8000, buf.SampleRate)
		assert.Equal(t, 2, buf.Channels)
		assert.Equal(t, 1000, buf.Frames())
		assert.Equal(t, []float64{0.01, -0.01}, buf.Samples[2:4])
	})

	t.Run("mono keeps one channel", func(t *testing.T) {
		buf, err := collectStream(&rampStreamer{length: 10}, beep.Format{SampleRate: 8000, NumChannels: 1}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, buf.Channels)
		assert.Len(t, buf.Samples, 10)
	})

	t.Run("endless stream is cut at the limit", func(t *testing.T) {
		buf, err := collectStream(&rampStreamer{length: -1}, beep.Format{SampleRate: 8000, NumChannels: 2}, 250*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 2000, buf.Frames())
	})

	t.Run("rejects", func(t *testing.T) {
		_, err := collectStream(&rampStreamer{length: 10}, beep.Format{SampleRate: 0, NumChannels: 2}, time.Second)
		assert.Error(t, err, "zero sample rate")

		_, err = collectStream(&rampStreamer{length: 10}, beep.Format{SampleRate: 8000}, time.Second)
		assert.Error(t, err, "zero channels")

		_, err = collectStream(&rampStreamer{length: 0}, beep.Format{SampleRate: 8000, NumChannels: 2}, time.Second)
		assert.Error(t, err, "no samples")

		broken := errors.New("bad frame")
		_, err = collectStream(&rampStreamer{length: 10, err: broken}, beep.Format{SampleRate: 8000, NumChannels: 2}, time.Second)
		assert.ErrorIs(t, err, broken)
	})
}
