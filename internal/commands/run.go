package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/balkashynov/slate/internal/audio"
	"github.com/balkashynov/slate/internal/audio/speaker"
	"github.com/balkashynov/slate/internal/parser"
	"github.com/balkashynov/slate/internal/slate"
	"github.com/balkashynov/slate/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the slate",
	Long: `Open the interactive slate. Fields are prefilled from the last logged take
and the take number continues from it.

Examples:
  slate                       # same as 'slate run'
  slate run --date yesterday  # log takes against yesterday's date
  slate run --no-prefill      # start from a blank slate`,
	Args: cobra.NoArgs,
	RunE: withApp(runSlate),
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "Shoot date: today, yesterday, dd/mm/yyyy, yyyy-mm-dd, N days ago")
	cmd.Flags().Bool("no-prefill", false, "Start from a blank slate instead of the last take")
	cmd.Flags().Bool("windowed", false, "Start in the normal screen instead of fullscreen")
	cmd.Flags().Bool("no-audio", false, "Do not open the audio output")
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// acquireLock takes the single-instance lock in the data directory
func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another slate is already running (lock %s)", path)
	}
	return lock, nil
}

func runSlate(cmd *cobra.Command, args []string, a *app) error {
	if !isTerminal(os.Stdout) {
		return errors.New("the slate needs an interactive terminal; use 'slate log ls' to read the log")
	}

	lock, err := acquireLock(a.cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			a.logger.Warn("release lock", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	noAudio, _ := cmd.Flags().GetBool("no-audio")
	var sink audio.Sink = audio.NopSink{}
	if a.cfg.Audio.OutputEnabled && !noAudio {
		out := speaker.New(a.cfg.Audio.SampleRate)
		defer out.Close()
		sink = out
	}
	engine := a.engine(sink)
	settings := engine.Restore(ctx)

	noPrefill, _ := cmd.Flags().GetBool("no-prefill")
	session := slate.New(ctx, slate.Deps{
		Log:         a.entries,
		Cue:         engine,
		Logger:      a.logger,
		SkipPrefill: noPrefill,
	})

	if dateText, _ := cmd.Flags().GetString("date"); dateText != "" {
		shootDate, err := parser.ParseDate(dateText, time.Now())
		if err != nil {
			return err
		}
		if err := session.Edit(func(m *slate.Metadata) { m.Date = shootDate }); err != nil {
			return err
		}
	}

	a.logger.Info("slate opened",
		slog.Int("take", session.Metadata().Take),
		slog.Float64("volume", settings.Volume),
		slog.Bool("muted", settings.Muted),
		slog.String("cue_uri", settings.CueURI))

	windowed, _ := cmd.Flags().GetBool("windowed")
	return tui.RunSlateTUI(ctx, tui.Options{
		Session:    session,
		Audio:      engine,
		Fullscreen: !windowed,
	})
}
