package audio

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

type cachedCue struct {
	uri string
	buf *Buffer
}

// Engine plays the start cue. One Engine is shared by the whole process so a
// decoded custom cue survives across takes.
type Engine struct {
	sink     Sink
	prefs    PreferenceStore
	fetcher  Fetcher
	logger   *slog.Logger
	defaults Settings
	tone     *Buffer

	mu     sync.Mutex
	volume float64
	muted  bool
	uri    string
	failed bool
	gen    uint64

	cue   atomic.Pointer[cachedCue]
	loads sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetcher replaces the default HTTP and file fetcher.
func WithFetcher(f Fetcher) Option {
	return func(e *Engine) { e.fetcher = f }
}

// WithLogger sets the logger used for cue diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDefaults sets the settings used when a preference is missing.
func WithDefaults(s Settings) Option {
	return func(e *Engine) { e.defaults = s }
}

// WithSampleRate sets the sample rate of the synthesized tone.
func WithSampleRate(rate int) Option {
	return func(e *Engine) { e.tone = Tone(rate, 1) }
}

// NewEngine builds an engine writing to sink and persisting to prefs. A nil
// sink discards output and a nil prefs disables persistence.
func NewEngine(sink Sink, prefs PreferenceStore, opts ...Option) *Engine {
	e := &Engine{
		sink:     sink,
		prefs:    prefs,
		fetcher:  HTTPFetcher{},
		defaults: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = NopSink{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.tone == nil {
		e.tone = Tone(DefaultSampleRate, 1)
	}
	e.volume = ClampVolume(e.defaults.Volume)
	e.muted = e.defaults.Muted
	return e
}

// Restore reads the stored preferences and starts loading the stored custom
// cue. A store failure is logged and the defaults stay in effect.
func (e *Engine) Restore(ctx context.Context) Settings {
	s, err := LoadSettings(e.prefs, e.defaults)
	if err != nil {
		e.logger.Warn("read audio preferences", slog.String("error", err.Error()))
	}

	e.mu.Lock()
	e.volume = s.Volume
	e.muted = s.Muted
	e.mu.Unlock()

	e.LoadCustomCue(ctx, s.CueURI)
	return s
}

// Settings returns the current in-memory settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Settings{Volume: e.volume, Muted: e.muted, CueURI: e.uri}
}

// SetVolume clamps v to [0, 1] and persists it.
func (e *Engine) SetVolume(v float64) error {
	v = ClampVolume(v)
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	return e.persist(KeyVolume, strconv.FormatFloat(v, 'f', -1, 64))
}

// SetMuted persists the mute flag. Volume is left untouched.
func (e *Engine) SetMuted(muted bool) error {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	return e.persist(KeyMuted, strconv.FormatBool(muted))
}

// SetCueURI persists uri as the custom cue source and starts loading it.
// An empty uri reverts to the synthesized tone.
func (e *Engine) SetCueURI(ctx context.Context, uri string) error {
	uri = strings.TrimSpace(uri)
	e.LoadCustomCue(ctx, uri)
	return e.persist(KeyCueURI, uri)
}

func (e *Engine) persist(key, value string) error {
	if e.prefs == nil {
		return nil
	}
	return e.prefs.Set(key, value)
}

// LoadCustomCue fetches and decodes uri in the background. Until it finishes,
// and whenever it fails, Play uses the synthesized tone. Requesting the uri
// already loaded or in flight does nothing, while a uri whose last load
// failed is retried. An empty uri clears the cache.
func (e *Engine) LoadCustomCue(ctx context.Context, uri string) {
	uri = strings.TrimSpace(uri)

	e.mu.Lock()
	if uri == e.uri && !e.failed {
		e.mu.Unlock()
		return
	}
	e.uri = uri
	e.failed = false
	e.gen++
	gen := e.gen
	e.cue.Store(nil)
	e.mu.Unlock()

	if uri == "" {
		e.logger.Debug("custom cue cleared")
		return
	}

	e.loads.Add(1)
	go func() {
		defer e.loads.Done()
		buf, err := e.load(ctx, uri)

		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.gen {
			return
		}
		if err != nil {
			e.logger.Warn("custom cue unavailable, using fallback tone",
				slog.String("uri", uri),
				slog.String("error", err.Error()))
			e.cue.Store(nil)
			e.failed = true
			return
		}
		e.cue.Store(&cachedCue{uri: uri, buf: buf})
		e.logger.Info("custom cue loaded",
			slog.String("uri", uri),
			slog.Duration("duration", buf.Duration()))
	}()
}

func (e *Engine) load(ctx context.Context, uri string) (*Buffer, error) {
	data, err := e.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, &CueLoadError{URI: uri, Err: err}
	}
	buf, err := DecodeCue(data)
	if err != nil {
		return nil, &CueLoadError{URI: uri, Err: err}
	}
	return buf, nil
}

// Wait blocks until all in-flight cue loads have finished.
func (e *Engine) Wait() {
	e.loads.Wait()
}

// CustomCueReady reports whether a decoded custom cue is cached.
func (e *Engine) CustomCueReady() bool {
	return e.cue.Load() != nil
}

// Render returns the buffer Play sends to the sink: the custom cue when one
// is cached, else the synthesized tone, scaled by volume. It is nil while muted.
func (e *Engine) Render() *Buffer {
	e.mu.Lock()
	muted, volume := e.muted, e.volume
	e.mu.Unlock()

	if muted {
		return nil
	}
	src := e.tone
	if c := e.cue.Load(); c != nil {
		src = c.buf
	}
	return src.Scaled(volume)
}

// Play sounds the cue once. It never fails: muting, an unavailable output and
// sink errors all result in silence.
func (e *Engine) Play() {
	buf := e.Render()
	if buf == nil {
		return
	}
	if err := e.sink.Resume(); err != nil {
		e.logger.Debug("skipping cue", slog.String("error", err.Error()))
		return
	}
	if err := e.sink.Play(buf); err != nil {
		e.logger.Warn("play cue", slog.String("error", err.Error()))
	}
}
