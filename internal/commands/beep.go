package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/slate/internal/audio"
	"github.com/balkashynov/slate/internal/audio/speaker"
)

// beepTail keeps the process alive until the device has drained the cue
const beepTail = 150 * time.Millisecond

var beepCmd = &cobra.Command{
	Use:   "beep",
	Short: "Play the start cue once",
	Long: `Play the start cue once with the stored volume and mute settings. The custom
cue, when one is set, is loaded before playing.

Examples:
  slate beep
  slate beep --out cue.wav   # write the cue to a WAV file instead`,
	Args: cobra.NoArgs,
	RunE: withApp(runBeep),
}

func runBeep(cmd *cobra.Command, args []string, a *app) error {
	out, _ := cmd.Flags().GetString("out")

	var sink audio.Sink
	if out == "" {
		if !a.cfg.Audio.OutputEnabled {
			return fmt.Errorf("audio output is disabled in the config (audio.output_enabled)")
		}
		device := speaker.New(a.cfg.Audio.SampleRate)
		defer device.Close()
		sink = device
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cueCheckTimeout)
	defer cancel()
	engine := a.engine(sink)
	settings := engine.Restore(ctx)
	engine.Wait()

	if settings.CueURI != "" && !engine.CustomCueReady() {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Custom cue %s could not be loaded, using the built-in tone\n", settings.CueURI)
	}

	buf := engine.Render()
	if buf == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "🔇 The start cue is muted, run 'slate unmute' first")
		return nil
	}

	if out != "" {
		return writeCue(cmd.OutOrStdout(), out, buf)
	}

	engine.Play()
	time.Sleep(buf.Duration() + beepTail)
	return nil
}

// writeCue saves buf as a 16-bit WAV file
func writeCue(w io.Writer, path string, buf *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := audio.EncodeWAV(f, buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(w, "💾 Wrote %s (%s, %d Hz)\n", path, buf.Duration().Round(time.Millisecond), buf.SampleRate)
	return nil
}

func init() {
	beepCmd.Flags().StringP("out", "o", "", "Write the cue to a WAV file instead of playing it")
}
