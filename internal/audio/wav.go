package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// DecodeWAV decodes a PCM WAV file into a normalized Buffer.
func DecodeWAV(data []byte) (*Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported wav encoding %d", d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm data: %w", err)
	}
	if pcm == nil || pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, errors.New("wav file has no samples")
	}
	if pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav sample rate %d", pcm.Format.SampleRate)
	}
	if pcm.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("invalid wav channel count %d", pcm.Format.NumChannels)
	}

	bitDepth := int(d.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	// 8-bit wav is unsigned, everything wider is signed
	scale := math.Exp2(float64(bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		offset = scale
	}

	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = clampSample((float64(v) - offset) / scale)
	}

	return &Buffer{
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		Samples:    samples,
	}, nil
}

// EncodeWAV writes b as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, b *Buffer) error {
	if b == nil || b.Channels <= 0 || b.SampleRate <= 0 {
		return errors.New("encode wav: empty buffer")
	}

	const bitDepth = 16
	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		data[i] = int(math.Round(clampSample(s) * math.MaxInt16))
	}

	enc := wav.NewEncoder(w, b.SampleRate, bitDepth, b.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.Channels, SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

func clampSample(s float64) float64 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return s
	}
}
