package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/balkashynov/slate/internal/models"
	"github.com/balkashynov/slate/internal/parser"
	"github.com/balkashynov/slate/internal/timecode"
)

// shortIDLength is how much of an entry ID the table shows
const shortIDLength = 8

// noteWidth is the widest note the table shows, in runes
const noteWidth = 30

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show and correct logged takes",
	Long: `Show, correct and remove logged takes.

Examples:
  slate log ls --limit 50
  slate log edit 3f2a9c10 --note "boom in shot"
  slate log rm 3f2a9c10`,
}

var logListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List logged takes, newest first",
	Args:    cobra.NoArgs,
	RunE:    withApp(runLogList),
}

var logEditCmd = &cobra.Command{
	Use:   "edit <entry-id>",
	Short: "Correct a logged take",
	Long: `Correct fields of a logged take. Only the flags you pass are changed.
The entry ID may be shortened to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runLogEdit),
}

var logRmCmd = &cobra.Command{
	Use:     "rm <entry-id>",
	Aliases: []string{"delete"},
	Short:   "Remove a logged take",
	Args:    cobra.ExactArgs(1),
	RunE:    withApp(runLogRm),
}

func runLogList(cmd *cobra.Command, args []string, a *app) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	entries, err := a.entries.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []models.Entry{}
		}
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No takes logged yet. Run 'slate' to roll your first take.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries, time.Now()))
	return nil
}

// renderEntries draws the take log as a table
func renderEntries(entries []models.Entry, now time.Time) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Date", "Production", "Roll", "Scene", "Take", "Timecode", "Director", "DOP", "Note", "Logged"})

	for _, e := range entries {
		id := e.ID
		if len(id) > shortIDLength {
			id = id[:shortIDLength]
		}
		note := truncate(e.Note, noteWidth)
		tw.AppendRow(table.Row{
			id,
			parser.FormatDate(e.Date),
			e.Production,
			e.Roll,
			e.Scene,
			e.Take,
			e.Timecode,
			e.Director,
			e.DOP,
			note,
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	return tw.Render()
}

// truncate shortens s to at most width runes, ending in "..." when cut
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func runLogEdit(cmd *cobra.Command, args []string, a *app) error {
	changes, err := entryChanges(cmd, time.Now())
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change. Pass at least one field flag, see 'slate log edit --help'.")
		return nil
	}

	entry, err := a.entries.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	updated, err := a.entries.Update(cmd.Context(), entry.ID, changes)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated scene %s take %d (%s) %s\n",
		updated.Scene, updated.Take, updated.Timecode, updated.ID[:min(len(updated.ID), shortIDLength)])
	return nil
}

// entryChanges collects the edit flags that were set into column updates
func entryChanges(cmd *cobra.Command, now time.Time) (map[string]any, error) {
	flags := cmd.Flags()
	changes := map[string]any{}

	for _, name := range []string{"production", "roll", "scene", "director", "dop"} {
		if !flags.Changed(name) {
			continue
		}
		value, _ := flags.GetString(name)
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, fmt.Errorf("--%s cannot be empty", name)
		}
		changes[name] = value
	}

	if flags.Changed("note") {
		note, _ := flags.GetString("note")
		changes["note"] = strings.TrimSpace(note)
	}

	if flags.Changed("take") {
		raw, _ := flags.GetString("take")
		take, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || take < 1 {
			return nil, fmt.Errorf("--take must be a whole number of at least 1, got %q", raw)
		}
		changes["take"] = take
	}

	if flags.Changed("date") {
		raw, _ := flags.GetString("date")
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("--date cannot be empty")
		}
		shootDate, err := parser.ParseDate(raw, now)
		if err != nil {
			return nil, err
		}
		changes["date"] = shootDate
	}

	if flags.Changed("timecode") {
		raw, _ := flags.GetString("timecode")
		frames, err := timecode.Parse(raw)
		if err != nil {
			return nil, err
		}
		changes["timecode"] = timecode.FormatFrames(frames)
	}

	return changes, nil
}

func runLogRm(cmd *cobra.Command, args []string, a *app) error {
	entry, err := a.entries.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := a.entries.Delete(cmd.Context(), entry.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed scene %s take %d (%s)\n", entry.Scene, entry.Take, entry.Timecode)
	return nil
}

func addEntryEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("production", "", "Production title")
	cmd.Flags().String("roll", "", "Camera roll")
	cmd.Flags().String("scene", "", "Scene")
	cmd.Flags().String("take", "", "Take number")
	cmd.Flags().String("director", "", "Director")
	cmd.Flags().String("dop", "", "Director of photography")
	cmd.Flags().String("date", "", "Shoot date: dd/mm/yyyy, yyyy-mm-dd, today, yesterday, N days ago")
	cmd.Flags().String("timecode", "", "Timecode as HH:MM:SS:FF")
	cmd.Flags().String("note", "", "Note, empty to clear")
}

func init() {
	logListCmd.Flags().IntP("limit", "n", 20, "Number of takes to show, 0 for all")
	logListCmd.Flags().Bool("json", false, "Print takes as JSON")
	addEntryEditFlags(logEditCmd)

	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logEditCmd)
	logCmd.AddCommand(logRmCmd)
}
