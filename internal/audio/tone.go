package audio

import (
	"math"
	"time"
)

// Fallback tone parameters.
const (
	DefaultSampleRate = 44100
	ToneFrequency     = 1200.0
	ToneDuration      = 100 * time.Millisecond
	toneDecay         = 25 * time.Millisecond
	toneAttack        = 2 * time.Millisecond
)

// Tone synthesizes the fallback beep: a mono sine at ToneFrequency with a
// short linear attack and an exponential decay so neither edge clicks.
func Tone(sampleRate int, gain float64) *Buffer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	n := int(int64(sampleRate) * int64(ToneDuration) / int64(time.Second))
	attack := float64(sampleRate) * toneAttack.Seconds()
	tau := toneDecay.Seconds()

	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-t / tau)
		if fi := float64(i); fi < attack {
			env *= fi / attack
		}
		samples[i] = gain * env * math.Sin(2*math.Pi*ToneFrequency*t)
	}

	return &Buffer{SampleRate: sampleRate, Channels: 1, Samples: samples}
}
