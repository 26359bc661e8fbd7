package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for slate",
	Long:  `Display detailed help for all slate commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			// Per-command help comes from cobra
			target, _, err := rootCmd.Find(args)
			if err != nil || target == rootCmd {
				fmt.Fprintf(cmd.OutOrStdout(), "Unknown command %q\n", args[0])
				return
			}
			target.Help()
			return
		}
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
███████╗██╗      █████╗ ████████╗███████╗
██╔════╝██║     ██╔══██╗╚══██╔══╝██╔════╝
███████╗██║     ███████║   ██║   █████╗
╚════██║██║     ██╔══██║   ██║   ██╔══╝
███████║███████╗██║  ██║   ██║   ███████╗
╚══════╝╚══════╝╚═╝  ╚═╝   ╚═╝   ╚══════╝

slate - terminal clapperboard with a 24 fps timecode

COMMANDS:

  slate / slate run       Open the slate
    --date                Shoot date (dd/mm/yyyy, yyyy-mm-dd, today, yesterday, 3 days ago)
    --no-prefill          Start blank instead of continuing from the last take
    --windowed            Stay in the normal screen
    --no-audio            Do not open the audio output

    Keys while idle:
      tab/↑/↓       Move between fields
      enter         Roll: sound the cue and start the timecode
      ctrl+f        Toggle fullscreen
      ctrl+x        Mute/unmute the cue
      pgup/pgdn     Cue volume
      esc           Quit

    Keys while rolling:
      enter/space/s Cut: log the take and advance the take number
      f             Toggle fullscreen
      m, +/-        Mute, volume
      esc/q         Cut, log and quit

  log ls                  List logged takes, newest first
    -n, --limit           Number of takes (default 20, 0 for all)
    --json                JSON output

  log edit <id>           Correct a logged take (unique ID prefix is enough)
    --production --roll --scene --take --director --dop
    --date --timecode HH:MM:SS:FF --note

  log rm <id>             Remove a logged take

  volume [0-100]          Show or set the cue volume
  mute / unmute           Silence or restore the cue
  cue [uri]               Show or set the custom cue (http(s), file:// or a local audio file)
    --clear               Back to the built-in 1200 Hz tone
  prefs                   Show stored preferences
  beep                    Play the cue once
    -o, --out             Write the cue to a WAV file instead

  config init             Write a sample config file
  config path             Show config, data and log locations
  version                 Print the version
  help [command]          Show this help, or cobra help for one command

Global flags:
  --config                Path to config file (default ~/.config/slate/config.toml)

`)
}

func init() {
	rootCmd.SetHelpCommand(helpCmd)
}
