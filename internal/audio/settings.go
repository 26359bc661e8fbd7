package audio

import (
	"math"
	"strconv"
	"strings"
)

// Preference keys.
const (
	KeyVolume = "volume"
	KeyMuted  = "muted"
	KeyCueURI = "cue_uri"
)

// DefaultVolume applies when nothing has been stored yet.
const DefaultVolume = 0.8

// PreferenceStore is a durable key/value store scoped to the local user.
type PreferenceStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Settings are the persisted audio preferences.
type Settings struct {
	Volume float64
	Muted  bool
	CueURI string
}

// DefaultSettings returns the settings used before anything is stored.
func DefaultSettings() Settings {
	return Settings{Volume: DefaultVolume}
}

// LoadSettings reads the audio preferences from store, falling back to
// defaults for missing or unparseable values. The returned error is the first
// store failure, if any; the settings are usable either way.
func LoadSettings(store PreferenceStore, defaults Settings) (Settings, error) {
	s := defaults
	s.Volume = ClampVolume(s.Volume)
	if store == nil {
		return s, nil
	}

	var firstErr error
	get := func(key string) (string, bool) {
		v, ok, err := store.Get(key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return "", false
		}
		return v, ok
	}

	if v, ok := get(KeyVolume); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			s.Volume = ClampVolume(f)
		}
	}
	if v, ok := get(KeyMuted); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			s.Muted = b
		}
	}
	if v, ok := get(KeyCueURI); ok {
		s.CueURI = strings.TrimSpace(v)
	}
	return s, firstErr
}

// ClampVolume limits v to [0, 1]. NaN becomes 0.
func ClampVolume(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
