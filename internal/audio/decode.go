package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
)

// maxCueDuration bounds how much of a compressed cue is decoded.
const maxCueDuration = 30 * time.Second

// streamChunk is the number of frames pulled from a decoder per read.
const streamChunk = 512

// ErrUnknownFormat means a cue source is not WAV, MP3, Ogg Vorbis or FLAC.
var ErrUnknownFormat = errors.New("unrecognized audio format")

type cueFormat int

const (
	formatUnknown cueFormat = iota
	formatWAV
	formatMP3
	formatVorbis
	formatFLAC
)

func (f cueFormat) String() string {
	switch f {
	case formatWAV:
		return "wav"
	case formatMP3:
		return "mp3"
	case formatVorbis:
		return "ogg/vorbis"
	case formatFLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// sniffFormat identifies a cue container from its leading bytes.
func sniffFormat(data []byte) cueFormat {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return formatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return formatVorbis
	case bytes.HasPrefix(data, []byte("fLaC")):
		return formatFLAC
	case bytes.HasPrefix(data, []byte("ID3")):
		return formatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// bare MPEG audio frame sync
		return formatMP3
	default:
		return formatUnknown
	}
}

// DecodeCue decodes a fetched cue source into a Buffer. WAV is read with
// go-audio; MP3, Ogg Vorbis and FLAC go through beep's decoders.
func DecodeCue(data []byte) (*Buffer, error) {
	format := sniffFormat(data)
	switch format {
	case formatWAV:
		return DecodeWAV(data)
	case formatMP3:
		return fromStream(format)(mp3.Decode(io.NopCloser(bytes.NewReader(data))))
	case formatVorbis:
		return fromStream(format)(vorbis.Decode(io.NopCloser(bytes.NewReader(data))))
	case formatFLAC:
		return fromStream(format)(flac.Decode(bytes.NewReader(data)))
	default:
		return nil, ErrUnknownFormat
	}
}

// fromStream adapts the result of a beep decoder to collectStream.
func fromStream(format cueFormat) func(beep.StreamSeekCloser, beep.Format, error) (*Buffer, error) {
	return func(s beep.StreamSeekCloser, f beep.Format, err error) (*Buffer, error) {
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
		defer s.Close()
		buf, err := collectStream(s, f, maxCueDuration)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
		return buf, nil
	}
}

// collectStream drains s into an interleaved Buffer, keeping one channel
// for mono sources. Streams longer than limit are cut at limit.
func collectStream(s beep.Streamer, f beep.Format, limit time.Duration) (*Buffer, error) {
	if f.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	if f.NumChannels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", f.NumChannels)
	}

	channels := 2
	if f.NumChannels == 1 {
		channels = 1
	}
	maxFrames := f.SampleRate.N(limit)

	var samples []float64
	chunk := make([][2]float64, streamChunk)
	frames := 0
	for frames < maxFrames {
		want := min(len(chunk), maxFrames-frames)
		n, ok := s.Stream(chunk[:want])
		for _, frame := range chunk[:n] {
			samples = append(samples, clampSample(frame[0]))
			if channels == 2 {
				samples = append(samples, clampSample(frame[1]))
			}
		}
		frames += n
		if !ok || n == 0 {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if frames == 0 {
		return nil, errors.New("no samples")
	}

	return &Buffer{
		SampleRate: int(f.SampleRate),
		Channels:   channels,
		Samples:    samples,
	}, nil
}
