package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginePlaysFallbackTone(t *testing.T) {
	sink := &recordingSink{}
	e := NewEngine(sink, newMemPrefs(), WithDefaults(Settings{Volume: 0.5}))

	e.Play()

	require.Equal(t, 1, sink.count())
	played := sink.last()
	assert.InDeltaSlice(t, Tone(DefaultSampleRate, 0.5).Samples, played.Samples, 1e-12)
}

func TestEngineMuted(t *testing.T) {
	sink := &recordingSink{}
	prefs := newMemPrefs()
	e := NewEngine(sink, prefs)
	require.NoError(t, e.SetVolume(0.4))
	require.NoError(t, e.SetMuted(true))

	e.Play()

	assert.Equal(t, 0, sink.count(), "muted engine must stay silent")
	assert.Equal(t, "0.4", prefs.values[KeyVolume], "muting must not touch the stored volume")
	assert.Equal(t, "true", prefs.values[KeyMuted])

	require.NoError(t, e.SetMuted(false))
	e.Play()
	assert.Equal(t, 1, sink.count())
}

func TestEngineAudioUnavailable(t *testing.T) {
	sink := &recordingSink{resumeErr: ErrUnavailable}
	e := NewEngine(sink, nil)

	assert.NotPanics(t, e.Play)
	assert.Equal(t, 1, sink.resumes)
	assert.Equal(t, 0, sink.count())
}

func TestEngineVolumeClamped(t *testing.T) {
	prefs := newMemPrefs()
	e := NewEngine(nil, prefs)

	require.NoError(t, e.SetVolume(1.7))
	assert.Equal(t, 1.0, e.Settings().Volume)
	assert.Equal(t, "1", prefs.values[KeyVolume])

	require.NoError(t, e.SetVolume(-2))
	assert.Equal(t, 0.0, e.Settings().Volume)
}

func TestEnginePreferencesSurviveRestart(t *testing.T) {
	prefs := newMemPrefs()
	first := NewEngine(nil, prefs)
	require.NoError(t, first.SetVolume(0.35))
	require.NoError(t, first.SetMuted(true))

	second := NewEngine(nil, prefs)
	s := second.Restore(context.Background())
	assert.Equal(t, 0.35, s.Volume)
	assert.True(t, s.Muted)
	assert.Equal(t, s, second.Settings())
}

func TestEnginePersistFailure(t *testing.T) {
	prefs := newMemPrefs()
	prefs.err = errors.New("read-only")
	e := NewEngine(nil, prefs)

	assert.Error(t, e.SetVolume(0.2))
	assert.Equal(t, 0.2, e.Settings().Volume, "in-memory value still changes")
}

func TestEngineCustomCueFromHTTP(t *testing.T) {
	cue := squareWave(50)
	_, data := writeWAV(t, cue)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	sink := &recordingSink{}
	e := NewEngine(sink, newMemPrefs(), WithDefaults(Settings{Volume: 1}))
	e.LoadCustomCue(context.Background(), srv.URL+"/cue.wav")
	e.Wait()

	require.True(t, e.CustomCueReady())
	e.Play()
	played := sink.last()
	require.NotNil(t, played)
	assert.Equal(t, 2, played.Channels)
	assert.Equal(t, cue.Frames(), played.Frames())
}

func TestEngineCustomCueFailuresFallBack(t *testing.T) {
	notWAV := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>nope</html>"))
	}))
	defer notWAV.Close()

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	testCases := []struct {
		name string
		uri  string
	}{
		{"undecodable body", notWAV.URL},
		{"non-2xx status", missing.URL},
		{"missing file", "/definitely/not/here.wav"},
		{"unknown scheme", "ftp://example.com/cue.wav"},
		{"unreachable host", "http://127.0.0.1:1/cue.wav"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			e := NewEngine(sink, nil, WithDefaults(Settings{Volume: 1}))
			e.LoadCustomCue(context.Background(), tc.uri)
			e.Wait()

			assert.False(t, e.CustomCueReady())
			e.Play()
			require.Equal(t, 1, sink.count(), "fallback tone must still play")
			assert.Equal(t, 1, sink.last().Channels)
			assert.Equal(t, Tone(DefaultSampleRate, 1).Frames(), sink.last().Frames())
		})
	}
}

func TestEngineBrokenWAVFallsBack(t *testing.T) {
	for _, tc := range brokenWAVs {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cue.wav")
			require.NoError(t, os.WriteFile(path, tc.data, 0o644))

			sink := &recordingSink{}
			e := NewEngine(sink, nil, WithDefaults(Settings{Volume: 1}))
			e.LoadCustomCue(context.Background(), path)
			e.Wait()

			assert.False(t, e.CustomCueReady())
			assert.InDeltaSlice(t, Tone(DefaultSampleRate, 1).Samples, e.Render().Samples, 1e-12,
				"the 1200 Hz tone replaces the broken cue")
			e.Play()
			require.Equal(t, 1, sink.count())
			assert.Equal(t, DefaultSampleRate, sink.last().SampleRate)
		})
	}
}

func TestEngineFailedCueIsRetried(t *testing.T) {
	cue := squareWave(10)
	_, data := writeWAV(t, cue)

	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	e := NewEngine(nil, nil)
	e.LoadCustomCue(context.Background(), srv.URL)
	e.Wait()
	assert.False(t, e.CustomCueReady())

	healthy.Store(true)
	e.LoadCustomCue(context.Background(), srv.URL)
	e.Wait()
	assert.True(t, e.CustomCueReady())
}

func TestEngineCueURIChanges(t *testing.T) {
	path, _ := writeWAV(t, squareWave(20))
	prefs := newMemPrefs()
	e := NewEngine(nil, prefs)

	require.NoError(t, e.SetCueURI(context.Background(), path))
	e.Wait()
	assert.True(t, e.CustomCueReady())
	assert.Equal(t, path, prefs.values[KeyCueURI])

	// Same URI again does not reload or drop the cache
	e.LoadCustomCue(context.Background(), path)
	assert.True(t, e.CustomCueReady())

	require.NoError(t, e.SetCueURI(context.Background(), ""))
	assert.False(t, e.CustomCueReady())
	assert.Equal(t, "", prefs.values[KeyCueURI])
	assert.Equal(t, "", e.Settings().CueURI)
}

func TestEngineRestoreLoadsStoredCue(t *testing.T) {
	path, _ := writeWAV(t, squareWave(20))
	prefs := newMemPrefs()
	prefs.values[KeyCueURI] = "file://" + path

	e := NewEngine(nil, prefs)
	e.Restore(context.Background())
	e.Wait()
	assert.True(t, e.CustomCueReady())
}

func TestEngineRender(t *testing.T) {
	e := NewEngine(nil, nil, WithDefaults(Settings{Volume: 0.25}), WithSampleRate(8000))

	buf := e.Render()
	require.NotNil(t, buf)
	assert.Equal(t, 8000, buf.SampleRate)
	assert.LessOrEqual(t, buf.Peak(), 0.25)
	assert.Greater(t, buf.Peak(), 0.15)

	require.NoError(t, e.SetMuted(true))
	assert.Nil(t, e.Render(), "nothing to render while muted")
}
