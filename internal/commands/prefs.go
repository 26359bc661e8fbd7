package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/balkashynov/slate/internal/audio"
	"github.com/balkashynov/slate/internal/config"
)

// cueCheckTimeout bounds how long 'slate cue' waits to confirm a new cue loads
const cueCheckTimeout = 30 * time.Second

var volumeCmd = &cobra.Command{
	Use:   "volume [0-100]",
	Short: "Show or set the start cue volume",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		settings, err := audio.LoadSettings(a.prefs, a.audioDefaults())
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "🔊 Cue volume: %s\n", percent(settings.Volume))
			return nil
		}

		v, err := parseVolume(args[0])
		if err != nil {
			return err
		}
		engine := a.engine(nil)
		if err := engine.SetVolume(v); err != nil {
			return fmt.Errorf("save volume: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔊 Cue volume set to %s\n", percent(engine.Settings().Volume))
		if settings.Muted {
			fmt.Fprintln(cmd.OutOrStdout(), "   The cue is muted, run 'slate unmute' to hear it.")
		}
		return nil
	}),
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Silence the start cue",
	Args:  cobra.NoArgs,
	RunE:  withApp(setMuted(true)),
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Sound the start cue again",
	Args:  cobra.NoArgs,
	RunE:  withApp(setMuted(false)),
}

func setMuted(muted bool) func(*cobra.Command, []string, *app) error {
	return func(cmd *cobra.Command, args []string, a *app) error {
		settings, err := audio.LoadSettings(a.prefs, a.audioDefaults())
		if err != nil {
			return err
		}
		if err := a.engine(nil).SetMuted(muted); err != nil {
			return fmt.Errorf("save mute setting: %w", err)
		}
		if muted {
			fmt.Fprintln(cmd.OutOrStdout(), "🔇 Start cue muted")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "🔊 Start cue on at %s\n", percent(settings.Volume))
		}
		return nil
	}
}

var cueCmd = &cobra.Command{
	Use:   "cue [uri]",
	Short: "Show or set the custom start cue",
	Long: `Show or set the custom start cue. The source is an http(s) URL, a file://
URL or a local path to a WAV, MP3, Ogg Vorbis or FLAC file. Until it loads,
and whenever it cannot be loaded, the slate plays its built-in 1200 Hz tone.

Examples:
  slate cue https://example.com/clap.wav
  slate cue ~/sounds/clap.mp3
  slate cue --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(runCue),
}

func runCue(cmd *cobra.Command, args []string, a *app) error {
	clearCue, _ := cmd.Flags().GetBool("clear")
	engine := a.engine(nil)

	if len(args) == 0 && !clearCue {
		settings, err := audio.LoadSettings(a.prefs, a.audioDefaults())
		if err != nil {
			return err
		}
		if settings.CueURI == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "🎵 Start cue: built-in tone")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "🎵 Start cue: %s\n", settings.CueURI)
		}
		return nil
	}
	if len(args) > 0 && clearCue {
		return fmt.Errorf("pass a cue source or --clear, not both")
	}

	uri := ""
	if len(args) > 0 {
		expanded, err := config.ExpandCueURI(args[0])
		if err != nil {
			return err
		}
		uri = expanded
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cueCheckTimeout)
	defer cancel()
	if err := engine.SetCueURI(ctx, uri); err != nil {
		return fmt.Errorf("save cue: %w", err)
	}
	if uri == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "🎵 Start cue reset to the built-in tone")
		return nil
	}

	engine.Wait()
	if !engine.CustomCueReady() {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Saved %s but it could not be loaded, the built-in tone will play instead.\n", uri)
		fmt.Fprintf(cmd.OutOrStdout(), "   See %s for details.\n", a.cfg.LogPath())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🎵 Start cue set to %s\n", uri)
	return nil
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show stored preferences",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		stored, err := a.prefs.All()
		if err != nil {
			return err
		}
		effective, err := audio.LoadSettings(a.prefs, a.audioDefaults())
		if err != nil {
			return err
		}

		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Key", "Value", "Source", "Updated"})

		seen := map[string]bool{}
		now := time.Now()
		for _, p := range stored {
			seen[p.Key] = true
			tw.AppendRow(table.Row{p.Key, p.Value, "stored", humanize.RelTime(p.UpdatedAt, now, "ago", "from now")})
		}
		for _, row := range []struct{ key, value string }{
			{audio.KeyVolume, strconv.FormatFloat(effective.Volume, 'f', -1, 64)},
			{audio.KeyMuted, strconv.FormatBool(effective.Muted)},
			{audio.KeyCueURI, effective.CueURI},
		} {
			if !seen[row.key] {
				tw.AppendRow(table.Row{row.key, row.value, "default", ""})
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
		return nil
	}),
}

// parseVolume reads a 0-100 percentage, with or without a % sign
func parseVolume(raw string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("volume must be a number from 0 to 100, got %q", raw)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("volume must be from 0 to 100, got %s", s)
	}
	return v / 100, nil
}

func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(v*100+0.5))
}

func init() {
	cueCmd.Flags().Bool("clear", false, "Go back to the built-in tone")
}
