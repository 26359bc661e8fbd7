package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunSlateTUI runs the slate screen until the user quits. A take still
// rolling on quit is cut and logged before returning
func RunSlateTUI(ctx context.Context, opts Options) error {
	model := NewSlateModel(ctx, opts)

	var programOpts []tea.ProgramOption
	if opts.Fullscreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	programOpts = append(programOpts, tea.WithContext(ctx))

	p := tea.NewProgram(model, programOpts...)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// Report the outcome after the TUI closes
	if m, ok := finalModel.(SlateModel); ok {
		if last := m.session.LastEntry(); last != nil && m.lastLoggedAt.After(m.startedAt) {
			fmt.Printf("🎬 Last take: scene %s take %d · %s\n", last.Scene, last.Take, last.Timecode)
		}
		if m.warning != "" {
			fmt.Printf("⚠️  %s\n", m.warning)
		}
	}

	return nil
}
