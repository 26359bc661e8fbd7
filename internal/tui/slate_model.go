package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/balkashynov/slate/internal/audio"
	"github.com/balkashynov/slate/internal/models"
	"github.com/balkashynov/slate/internal/parser"
	"github.com/balkashynov/slate/internal/slate"
	"github.com/balkashynov/slate/internal/timecode"
)

// field is one editable slate line
type field int

const (
	fieldProduction field = iota
	fieldRoll
	fieldScene
	fieldTake
	fieldDirector
	fieldDOP
	fieldDate
	fieldNote
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Production", "Roll", "Scene", "Take", "Director", "DOP", "Date", "Note",
}

// requiredFields maps validation names back to inputs
var requiredFields = map[string]field{
	"production": fieldProduction,
	"roll":       fieldRoll,
	"scene":      fieldScene,
	"director":   fieldDirector,
	"dop":        fieldDOP,
}

// volumeStep is the change applied by one volume key press
const volumeStep = 0.1

// tickInterval redraws the clock once per frame
const tickInterval = time.Second / timecode.FrameRate

// AudioControls is the part of the cue engine the slate screen drives
type AudioControls interface {
	Settings() audio.Settings
	SetVolume(v float64) error
	SetMuted(muted bool) error
}

// Options configure a SlateModel
type Options struct {
	Session    *slate.Session
	Audio      AudioControls
	Fullscreen bool
	Now        func() time.Time
}

// SlateModel is the interactive clapperboard screen
type SlateModel struct {
	ctx     context.Context
	session *slate.Session
	audio   AudioControls
	now     func() time.Time

	inputs []textinput.Model
	focus  field

	width      int
	height     int
	fullscreen bool

	timecode      string
	validationErr string
	warning       string
	lastLoggedAt  time.Time
	startedAt     time.Time

	pending  int // entry writes still in flight
	quitting bool
}

// clockTickMsg carries the ID of the clock that scheduled it
type clockTickMsg struct{ id int }

// entryLoggedMsg reports the outcome of a background entry write
type entryLoggedMsg struct {
	entry models.Entry
	err   error
}

func tickClock(id int) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return clockTickMsg{id: id}
	})
}

func waitForLog(res *slate.StopResult) tea.Cmd {
	return func() tea.Msg {
		return entryLoggedMsg{entry: res.Entry, err: <-res.Done}
	}
}

// NewSlateModel creates the slate screen for an idle session
func NewSlateModel(ctx context.Context, opts Options) SlateModel {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
		inputs[i].CharLimit = 80
	}
	inputs[fieldProduction].Placeholder = "Production title (required)"
	inputs[fieldRoll].Placeholder = "Camera roll, e.g. A001 (required)"
	inputs[fieldScene].Placeholder = "Scene, e.g. 12B (required)"
	inputs[fieldTake].Placeholder = "1"
	inputs[fieldTake].CharLimit = 6
	inputs[fieldDirector].Placeholder = "Director (required)"
	inputs[fieldDOP].Placeholder = "Director of photography (required)"
	inputs[fieldDate].Placeholder = "today, yesterday, dd/mm/yyyy, 2 days ago"
	inputs[fieldDate].CharLimit = 20
	inputs[fieldNote].Placeholder = "Note for this take"
	inputs[fieldNote].CharLimit = 200

	m := SlateModel{
		ctx:        ctx,
		session:    opts.Session,
		audio:      opts.Audio,
		now:        now,
		inputs:     inputs,
		fullscreen: opts.Fullscreen,
		timecode:   opts.Session.Timecode(),
		startedAt:  now(),
	}
	if last := m.session.LastEntry(); last != nil {
		m.lastLoggedAt = last.CreatedAt
	}
	m.loadInputs()
	m.inputs[m.focus].Focus()
	return m
}

// Init starts the cursor blinking
func (m SlateModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m SlateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case clockTickMsg:
		// A tick from a clock that has since stopped is dropped
		if msg.id == 0 || msg.id != m.session.ClockID() {
			return m, nil
		}
		tc, running := m.session.Tick()
		m.timecode = tc
		if !running {
			return m, nil
		}
		return m, tickClock(msg.id)

	case entryLoggedMsg:
		m.pending--
		if msg.err != nil {
			cause := msg.err
			if inner := errors.Unwrap(msg.err); inner != nil {
				cause = inner
			}
			m.warning = fmt.Sprintf("Scene %s take %d was not logged: %v", msg.entry.Scene, msg.entry.Take, cause)
		} else {
			m.lastLoggedAt = m.now()
		}
		if m.quitting && m.pending <= 0 {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.session.State() == slate.Idle {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SlateModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m.quit()
	case "ctrl+f":
		return m.toggleFullscreen()
	case "ctrl+x":
		return m.toggleMute()
	case "pgup":
		return m.adjustVolume(volumeStep)
	case "pgdown":
		return m.adjustVolume(-volumeStep)
	}

	if m.session.State() == slate.Running {
		switch key {
		case "enter", " ", "s", "S":
			return m.stop()
		case "f", "F":
			return m.toggleFullscreen()
		case "m", "M":
			return m.toggleMute()
		case "+", "=":
			return m.adjustVolume(volumeStep)
		case "-":
			return m.adjustVolume(-volumeStep)
		case "esc", "q":
			return m.quit()
		}
		return m, nil
	}

	switch key {
	case "esc":
		return m.quit()
	case "enter":
		return m.start()
	case "tab", "down":
		return m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// loadInputs copies the session metadata into the inputs
func (m *SlateModel) loadInputs() {
	meta := m.session.Metadata()
	m.inputs[fieldProduction].SetValue(meta.Production)
	m.inputs[fieldRoll].SetValue(meta.Roll)
	m.inputs[fieldScene].SetValue(meta.Scene)
	m.inputs[fieldTake].SetValue(strconv.Itoa(meta.Take))
	m.inputs[fieldDirector].SetValue(meta.Director)
	m.inputs[fieldDOP].SetValue(meta.DOP)
	m.inputs[fieldDate].SetValue(parser.FormatDate(meta.Date))
	m.inputs[fieldNote].SetValue(meta.Note)
}

// applyInputs writes the inputs back into the session. On a parse error it
// returns the offending field
func (m *SlateModel) applyInputs() (field, error) {
	takeText := strings.TrimSpace(m.inputs[fieldTake].Value())
	take := 1
	if takeText != "" {
		n, err := strconv.Atoi(takeText)
		if err != nil {
			return fieldTake, fmt.Errorf("take must be a whole number: %q", takeText)
		}
		take = n
	}

	date, err := parser.ParseDate(m.inputs[fieldDate].Value(), m.now())
	if err != nil {
		return fieldDate, err
	}

	err = m.session.Edit(func(meta *slate.Metadata) {
		meta.Production = strings.TrimSpace(m.inputs[fieldProduction].Value())
		meta.Roll = strings.TrimSpace(m.inputs[fieldRoll].Value())
		meta.Scene = strings.TrimSpace(m.inputs[fieldScene].Value())
		meta.Take = take
		meta.Director = strings.TrimSpace(m.inputs[fieldDirector].Value())
		meta.DOP = strings.TrimSpace(m.inputs[fieldDOP].Value())
		meta.Date = date
		meta.Note = strings.TrimSpace(m.inputs[fieldNote].Value())
	})
	if err != nil {
		return m.focus, err
	}
	m.loadInputs()
	return m.focus, nil
}

func (m SlateModel) focusField(f field) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = f
	return m, m.inputs[m.focus].Focus()
}

func (m SlateModel) start() (tea.Model, tea.Cmd) {
	if f, err := m.applyInputs(); err != nil {
		m.validationErr = err.Error()
		return m.focusField(f)
	}

	if err := m.session.Start(); err != nil {
		var verr *slate.ValidationError
		if errors.As(err, &verr) {
			m.validationErr = "Required: " + strings.Join(verr.Missing, ", ")
			if f, ok := requiredFields[verr.Missing[0]]; ok {
				return m.focusField(f)
			}
			return m, nil
		}
		m.validationErr = err.Error()
		return m, nil
	}

	m.validationErr = ""
	m.warning = ""
	m.inputs[m.focus].Blur()
	m.timecode = m.session.Timecode()
	return m, tickClock(m.session.ClockID())
}

func (m SlateModel) stop() (tea.Model, tea.Cmd) {
	res := m.session.Stop(m.ctx)
	if res == nil {
		return m, nil
	}
	m.pending++
	m.timecode = m.session.Timecode()
	m.loadInputs()
	focus := m.inputs[m.focus].Focus()
	return m, tea.Batch(waitForLog(res), focus)
}

// quit stops a rolling take first and waits for pending writes
func (m SlateModel) quit() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.session.State() == slate.Running {
		var next tea.Model
		next, cmd = m.stop()
		m = next.(SlateModel)
	}
	m.quitting = true
	if m.pending > 0 {
		return m, cmd
	}
	return m, tea.Quit
}

func (m SlateModel) toggleFullscreen() (tea.Model, tea.Cmd) {
	m.fullscreen = !m.fullscreen
	if m.fullscreen {
		return m, tea.EnterAltScreen
	}
	return m, tea.ExitAltScreen
}

func (m SlateModel) toggleMute() (tea.Model, tea.Cmd) {
	if m.audio == nil {
		return m, nil
	}
	if err := m.audio.SetMuted(!m.audio.Settings().Muted); err != nil {
		m.warning = fmt.Sprintf("Could not save mute setting: %v", err)
	}
	return m, nil
}

func (m SlateModel) adjustVolume(delta float64) (tea.Model, tea.Cmd) {
	if m.audio == nil {
		return m, nil
	}
	if err := m.audio.SetVolume(m.audio.Settings().Volume + delta); err != nil {
		m.warning = fmt.Sprintf("Could not save volume: %v", err)
	}
	return m, nil
}

// Fullscreen reports whether the alternate screen is active
func (m SlateModel) Fullscreen() bool {
	return m.fullscreen
}

// View renders the slate
func (m SlateModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - 2

	if m.width < 100 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderClockPanel(m.width, contentHeight/2),
			m.renderFieldsPanel(m.width),
			helpBar,
		)
	}

	leftWidth := m.width * 3 / 5
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderClockPanel(leftWidth, contentHeight),
		"  ",
		lipgloss.NewStyle().Height(contentHeight).Render(m.renderFieldsPanel(rightWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

// renderClockPanel renders the timecode and status lines
func (m SlateModel) renderClockPanel(width, height int) string {
	var components []string
	running := m.session.State() == slate.Running
	meta := m.session.Metadata()

	headerText := "●  STANDING BY  ●"
	headerColor := ColorAccentBright
	clockColor := ColorAccentBright
	if running {
		headerText = "●  ROLLING  ●"
		headerColor = ColorError
		clockColor = ColorError
	}
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(headerColor)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width)
	components = append(components, headerStyle.Render(headerText))

	sceneStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width)
	sceneText := fmt.Sprintf("SCENE %s  ·  TAKE %d  ·  ROLL %s", orDash(meta.Scene), meta.Take, orDash(meta.Roll))
	components = append(components, sceneStyle.Render(sceneText))

	var clock string
	if bigClockWidth(m.timecode) <= width {
		clock = renderBigTimecode(m.timecode, clockColor)
	} else {
		clock = lipgloss.NewStyle().Foreground(lipgloss.Color(clockColor)).Bold(true).Render(m.timecode)
	}
	var clockContent []string
	for _, line := range strings.Split(clock, "\n") {
		clockContent = append(clockContent, lipgloss.NewStyle().Align(lipgloss.Center).Width(width).Render(line))
	}
	components = append(components, strings.Join(clockContent, "\n"))

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(width)
	components = append(components, infoStyle.Render(m.audioLine()))
	if last := m.lastTakeLine(); last != "" {
		components = append(components, infoStyle.Render(last))
	}

	if m.validationErr != "" {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width).
			Render("✗ "+m.validationErr))
	}
	if m.warning != "" {
		components = append(components, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning)).
			Align(lipgloss.Center).
			Width(width).
			Render("⚠ "+m.warning))
	}

	panelStyle := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return panelStyle.Render(strings.Join(components, "\n\n"))
}

// renderFieldsPanel renders the editable metadata
func (m SlateModel) renderFieldsPanel(width int) string {
	running := m.session.State() == slate.Running
	var b strings.Builder

	for i := field(0); i < fieldCount; i++ {
		labelColor := ColorSecondaryText
		if running {
			labelColor = ColorDisabledText
		} else if i == m.focus {
			labelColor = ColorAccentBright
		}
		label := lipgloss.NewStyle().
			Foreground(lipgloss.Color(labelColor)).
			Bold(i == m.focus && !running).
			Width(12).
			Render(fieldLabels[i])

		value := m.inputs[i].View()
		if running {
			value = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Render(m.inputs[i].Value())
		}
		b.WriteString(label + value + "\n")
	}

	borderColor := ColorBorder
	if !running {
		borderColor = ColorAccentMain
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m SlateModel) audioLine() string {
	if m.audio == nil {
		return "audio off"
	}
	s := m.audio.Settings()
	if s.Muted {
		return "cue muted"
	}
	return fmt.Sprintf("cue volume %d%%", int(s.Volume*100+0.5))
}

func (m SlateModel) lastTakeLine() string {
	last := m.session.LastEntry()
	if last == nil {
		return ""
	}
	line := fmt.Sprintf("Last: scene %s take %d · %s", last.Scene, last.Take, last.Timecode)
	if !m.lastLoggedAt.IsZero() {
		line += " · " + humanize.RelTime(m.lastLoggedAt, m.now(), "ago", "from now")
	}
	return line
}

// renderHelpBar renders the help bar at the bottom
func (m SlateModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)

	helpText := "enter roll · tab/↑↓ field · ctrl+f fullscreen · ctrl+x mute · pgup/pgdn volume · esc quit"
	if m.session.State() == slate.Running {
		helpText = "enter/space/s cut & log · f fullscreen · m mute · +/- volume · esc cut & quit"
	}
	return helpStyle.Render(helpText)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
