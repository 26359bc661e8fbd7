// Package slate holds the clapperboard session: the take metadata, the
// Idle/Running state machine and the hand-off of each finished take to the
// entry log
package slate

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/balkashynov/slate/internal/models"
	"github.com/balkashynov/slate/internal/timecode"
)

// State is the session state
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Metadata is the take information written on the slate
type Metadata struct {
	Production string
	Roll       string
	Scene      string
	Take       int
	Director   string
	DOP        string
	Date       time.Time
	Note       string
}

// missing returns the names of empty required fields in display order
func (m Metadata) missing() []string {
	var out []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			out = append(out, name)
		}
	}
	check("production", m.Production)
	check("roll", m.Roll)
	check("scene", m.Scene)
	check("director", m.Director)
	check("dop", m.DOP)
	return out
}

// EntryLog is the part of the take store the session needs. Latest must
// return the most recent entry by date, then by creation order, or nil
type EntryLog interface {
	Latest(ctx context.Context) (*models.Entry, error)
	Create(ctx context.Context, entry *models.Entry) error
}

// Cue sounds the start beep. It must not fail or block
type Cue interface {
	Play()
}

// Deps are the collaborators of a Session
type Deps struct {
	Log    EntryLog
	Cue    Cue
	Now    func() time.Time
	Logger *slog.Logger
	// SkipPrefill starts from blank metadata instead of the latest entry
	SkipPrefill bool
}

// StopResult describes a stopped take. Done receives exactly one value once
// the entry log write finishes: nil, or a *PersistenceError
type StopResult struct {
	Entry models.Entry
	Done  <-chan error
}

// Session is the single live slate of a UI surface
type Session struct {
	log    EntryLog
	cue    Cue
	now    func() time.Time
	logger *slog.Logger

	meta  Metadata
	state State
	clock *timecode.Clock
	last  *models.Entry
}

type silentCue struct{}

func (silentCue) Play() {}

// New creates an idle session dated today. Unless SkipPrefill is set, the
// production, crew, roll and scene come from the latest logged entry and the
// take continues from it. A failing lookup is logged and leaves the fields blank
func New(ctx context.Context, deps Deps) *Session {
	s := &Session{
		log:    deps.Log,
		cue:    deps.Cue,
		now:    deps.Now,
		logger: deps.Logger,
	}
	if s.cue == nil {
		s.cue = silentCue{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.meta = Metadata{Take: 1, Date: calendarDate(s.now())}
	if !deps.SkipPrefill && s.log != nil {
		s.prefill(ctx)
	}
	return s
}

func (s *Session) prefill(ctx context.Context) {
	latest, err := s.log.Latest(ctx)
	if err != nil {
		s.logger.Warn("could not read latest entry for prefill", slog.String("error", err.Error()))
		return
	}
	if latest == nil {
		return
	}

	s.meta.Production = latest.Production
	s.meta.Director = latest.Director
	s.meta.DOP = latest.DOP
	s.meta.Roll = latest.Roll
	s.meta.Scene = latest.Scene
	s.meta.Take = latest.Take + 1
	if s.meta.Take < 1 {
		s.meta.Take = 1
	}
	s.last = latest
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Metadata returns a copy of the current metadata
func (s *Session) Metadata() Metadata {
	return s.meta
}

// LastEntry returns the most recently logged or prefilled entry, if any
func (s *Session) LastEntry() *models.Entry {
	return s.last
}

// Edit changes metadata while idle. Take is kept at 1 or above and a zero
// date resets to today
func (s *Session) Edit(fn func(m *Metadata)) error {
	if s.state == Running {
		return ErrRunning
	}
	m := s.meta
	fn(&m)
	if m.Take < 1 {
		m.Take = 1
	}
	if m.Date.IsZero() {
		m.Date = calendarDate(s.now())
	} else {
		m.Date = calendarDate(m.Date)
	}
	s.meta = m
	return nil
}

// Start rolls a take: it validates the required fields, sounds the cue and
// starts a fresh clock. Starting while running does nothing
func (s *Session) Start() error {
	if s.state == Running {
		return nil
	}
	if missing := s.meta.missing(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	s.cue.Play()
	s.clock = timecode.NewClock(s.now)
	s.clock.Start()
	s.state = Running
	s.logger.Debug("take started",
		slog.String("scene", s.meta.Scene),
		slog.Int("take", s.meta.Take),
		slog.Int("clock", s.clock.ID()))
	return nil
}

// Stop ends the take. The timecode is frozen, the entry is submitted to the
// log in the background and the take number advances immediately whatever
// the outcome of the write. Stopping while idle returns nil
func (s *Session) Stop(ctx context.Context) *StopResult {
	if s.state != Running {
		return nil
	}

	tc := s.clock.Stop()
	entry := models.Entry{
		Production: s.meta.Production,
		Roll:       s.meta.Roll,
		Scene:      s.meta.Scene,
		Take:       s.meta.Take,
		Director:   s.meta.Director,
		DOP:        s.meta.DOP,
		Date:       s.meta.Date,
		Timecode:   tc,
		Note:       s.meta.Note,
	}

	s.clock = nil
	s.state = Idle
	s.meta.Take++
	s.meta.Note = ""
	last := entry
	s.last = &last

	s.logger.Info("take stopped",
		slog.String("scene", entry.Scene),
		slog.Int("take", entry.Take),
		slog.String("timecode", tc))

	done := make(chan error, 1)
	if s.log == nil {
		done <- nil
		return &StopResult{Entry: entry, Done: done}
	}

	go func(e models.Entry) {
		if err := s.log.Create(ctx, &e); err != nil {
			s.logger.Error("failed to log take",
				slog.String("scene", e.Scene),
				slog.Int("take", e.Take),
				slog.String("error", err.Error()))
			done <- &PersistenceError{Entry: e, Err: err}
			return
		}
		done <- nil
	}(entry)

	return &StopResult{Entry: entry, Done: done}
}

// Timecode returns the display value: the running clock, or all zeros while idle
func (s *Session) Timecode() string {
	if s.clock == nil {
		return timecode.Zero
	}
	tc, _ := s.clock.Tick()
	return tc
}

// Tick returns the display value and whether a clock is still running
func (s *Session) Tick() (string, bool) {
	if s.clock == nil {
		return timecode.Zero, false
	}
	return s.clock.Tick()
}

// ClockID identifies the running clock, or 0 while idle
func (s *Session) ClockID() int {
	if s.clock == nil {
		return 0
	}
	return s.clock.ID()
}

// Elapsed returns the running time of the current take
func (s *Session) Elapsed() time.Duration {
	if s.clock == nil {
		return 0
	}
	return s.clock.Elapsed()
}
