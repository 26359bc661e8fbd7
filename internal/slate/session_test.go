package slate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/slate/internal/models"
	"github.com/balkashynov/slate/internal/timecode"
)

type fakeLog struct {
	mu        sync.Mutex
	latest    *models.Entry
	latestErr error
	createErr error
	created   []models.Entry
	block     chan struct{}
}

func (f *fakeLog) Latest(ctx context.Context) (*models.Entry, error) {
	return f.latest, f.latestErr
}

func (f *fakeLog) Create(ctx context.Context, e *models.Entry) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = "entry-id"
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeLog) entries() []models.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Entry(nil), f.created...)
}

type countingCue struct{ plays int }

func (c *countingCue) Play() { c.plays++ }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(t *testing.T, log *fakeLog) (*Session, *countingCue, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 10, 14, 14, 30, 0, 0, time.UTC)}
	cue := &countingCue{}
	s := New(context.Background(), Deps{Log: log, Cue: cue, Now: clock.now})
	return s, cue, clock
}

func fillRequired(m *Metadata) {
	m.Production = "Harbour Lights"
	m.Roll = "A001"
	m.Scene = "12B"
	m.Director = "R. Okafor"
	m.DOP = "M. Lind"
}

func TestNewSessionDefaults(t *testing.T) {
	s, _, _ := newTestSession(t, &fakeLog{})

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, timecode.Zero, s.Timecode())
	assert.Equal(t, 0, s.ClockID())
	m := s.Metadata()
	assert.Equal(t, 1, m.Take)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Empty(t, m.Production)
	assert.Nil(t, s.LastEntry())
}

func TestNewSessionPrefill(t *testing.T) {
	log := &fakeLog{latest: &models.Entry{
		Production: "Harbour Lights",
		Roll:       "A002",
		Scene:      "14",
		Take:       6,
		Director:   "R. Okafor",
		DOP:        "M. Lind",
		Date:       time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC),
		Note:       "not copied",
	}}
	s, _, _ := newTestSession(t, log)

	m := s.Metadata()
	assert.Equal(t, "Harbour Lights", m.Production)
	assert.Equal(t, "A002", m.Roll)
	assert.Equal(t, "14", m.Scene)
	assert.Equal(t, 7, m.Take)
	assert.Equal(t, "R. Okafor", m.Director)
	assert.Equal(t, "M. Lind", m.DOP)
	assert.Empty(t, m.Note)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), m.Date, "date is today, not the entry date")
	assert.NotNil(t, s.LastEntry())

	t.Run("lookup failure leaves blanks", func(t *testing.T) {
		s, _, _ := newTestSession(t, &fakeLog{latestErr: errors.New("offline")})
		assert.Empty(t, s.Metadata().Production)
		assert.Equal(t, 1, s.Metadata().Take)
	})

	t.Run("skip prefill", func(t *testing.T) {
		s := New(context.Background(), Deps{Log: log, SkipPrefill: true})
		assert.Empty(t, s.Metadata().Production)
	})
}

func TestStartValidation(t *testing.T) {
	required := []struct {
		field string
		clear func(*Metadata)
	}{
		{"production", func(m *Metadata) { m.Production = "" }},
		{"roll", func(m *Metadata) { m.Roll = "  " }},
		{"scene", func(m *Metadata) { m.Scene = "" }},
		{"director", func(m *Metadata) { m.Director = "" }},
		{"dop", func(m *Metadata) { m.DOP = "\t" }},
	}

	for _, tc := range required {
		t.Run(tc.field, func(t *testing.T) {
			s, cue, _ := newTestSession(t, &fakeLog{})
			require.NoError(t, s.Edit(func(m *Metadata) {
				fillRequired(m)
				tc.clear(m)
			}))

			err := s.Start()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tc.field}, verr.Missing)
			assert.Equal(t, Idle, s.State())
			assert.Equal(t, 0, cue.plays, "no cue on a rejected start")
			assert.Equal(t, 0, s.ClockID(), "no clock on a rejected start")
		})
	}

	t.Run("all missing", func(t *testing.T) {
		s, _, _ := newTestSession(t, &fakeLog{})
		var verr *ValidationError
		require.ErrorAs(t, s.Start(), &verr)
		assert.Equal(t, []string{"production", "roll", "scene", "director", "dop"}, verr.Missing)
		assert.Contains(t, verr.Error(), "production, roll")
	})
}

func TestStartStopLogsTake(t *testing.T) {
	log := &fakeLog{}
	s, cue, clock := newTestSession(t, log)
	require.NoError(t, s.Edit(func(m *Metadata) {
		fillRequired(m)
		m.Take = 3
		m.Note = "pickup"
	}))

	require.NoError(t, s.Start())
	assert.Equal(t, Running, s.State())
	assert.Equal(t, 1, cue.plays)
	assert.NotZero(t, s.ClockID())

	clock.advance(1041 * time.Millisecond)
	tc, ok := s.Tick()
	assert.True(t, ok)
	assert.Equal(t, "00:00:01:00", tc)

	clock.advance(89 * time.Second)
	res := s.Stop(context.Background())
	require.NotNil(t, res)
	require.NoError(t, <-res.Done)

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, timecode.Zero, s.Timecode())
	assert.Equal(t, 4, s.Metadata().Take, "take advances by exactly one")
	assert.Empty(t, s.Metadata().Note, "note belongs to the logged take")

	entries := log.entries()
	require.Len(t, entries, 1)
	got := entries[0]
	assert.Equal(t, "00:01:30:00", got.Timecode)
	assert.Equal(t, 3, got.Take)
	assert.Equal(t, "12B", got.Scene)
	assert.Equal(t, "pickup", got.Note)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, res.Entry.Timecode, got.Timecode)

	// Time passing after stop does not change the logged value
	clock.advance(time.Minute)
	assert.Equal(t, "00:01:30:00", res.Entry.Timecode)
	assert.Equal(t, timecode.Zero, s.Timecode())
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	log := &fakeLog{}
	s, _, _ := newTestSession(t, log)

	assert.Nil(t, s.Stop(context.Background()))
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1, s.Metadata().Take)
	assert.Empty(t, log.entries())
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	s, cue, _ := newTestSession(t, &fakeLog{})
	require.NoError(t, s.Edit(fillRequired))
	require.NoError(t, s.Start())
	id := s.ClockID()

	require.NoError(t, s.Start())
	assert.Equal(t, id, s.ClockID(), "clock must not be replaced")
	assert.Equal(t, 1, cue.plays)
}

func TestMetadataLockedWhileRunning(t *testing.T) {
	s, _, _ := newTestSession(t, &fakeLog{})
	require.NoError(t, s.Edit(fillRequired))
	require.NoError(t, s.Start())

	err := s.Edit(func(m *Metadata) { m.Scene = "99" })
	assert.ErrorIs(t, err, ErrRunning)
	assert.Equal(t, "12B", s.Metadata().Scene)

	s.Stop(context.Background())
	require.NoError(t, s.Edit(func(m *Metadata) { m.Scene = "99" }))
	assert.Equal(t, "99", s.Metadata().Scene)
}

func TestEditNormalizes(t *testing.T) {
	s, _, _ := newTestSession(t, &fakeLog{})
	require.NoError(t, s.Edit(func(m *Metadata) {
		m.Take = -4
		m.Date = time.Date(2026, 2, 3, 18, 45, 0, 0, time.UTC)
	}))
	assert.Equal(t, 1, s.Metadata().Take)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), s.Metadata().Date)

	require.NoError(t, s.Edit(func(m *Metadata) { m.Date = time.Time{} }))
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), s.Metadata().Date)
}

func TestStopPersistenceFailure(t *testing.T) {
	log := &fakeLog{createErr: errors.New("disk full")}
	s, _, _ := newTestSession(t, log)
	require.NoError(t, s.Edit(fillRequired))
	require.NoError(t, s.Start())

	res := s.Stop(context.Background())
	require.NotNil(t, res)

	// Take advanced and state returned to idle before the write outcome is known
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 2, s.Metadata().Take)

	err := <-res.Done
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Entry.Take)
	assert.EqualError(t, errors.Unwrap(err), "disk full")
	assert.Equal(t, 2, s.Metadata().Take, "no rollback after a failed write")
}

func TestStopDoesNotWaitForWrite(t *testing.T) {
	log := &fakeLog{block: make(chan struct{})}
	s, _, _ := newTestSession(t, log)
	require.NoError(t, s.Edit(fillRequired))
	require.NoError(t, s.Start())

	res := s.Stop(context.Background())
	require.NotNil(t, res)
	assert.Equal(t, Idle, s.State())

	// A new take can roll while the previous write is still pending
	require.NoError(t, s.Start())
	assert.Equal(t, Running, s.State())

	close(log.block)
	require.NoError(t, <-res.Done)
	second := s.Stop(context.Background())
	require.NoError(t, <-second.Done)
	assert.Len(t, log.entries(), 2)
	assert.Equal(t, 3, s.Metadata().Take)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "unknown", State(9).String())
}
