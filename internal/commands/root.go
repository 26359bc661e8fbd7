package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/balkashynov/slate/internal/audio"
	"github.com/balkashynov/slate/internal/config"
	"github.com/balkashynov/slate/internal/db"
	"github.com/balkashynov/slate/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configPath is the --config flag shared by every command
var configPath string

var rootCmd = &cobra.Command{
	Use:   "slate",
	Short: "A terminal clapperboard with a 24 fps timecode",
	Long: `slate is a digital clapperboard for the terminal.
Fill in the production, roll, scene and crew, roll a take to sound the start
cue and run the timecode, then cut to log the take and move to the next one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          withApp(runSlate),
}

// app is everything a command needs once startup has finished
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	entries *db.EntryLog
	prefs   *db.PreferenceStore

	logCloser io.Closer
}

// loadApp reads the config, opens the log file and the database
func loadApp() (*app, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Initialize(cfg.DataDir); err != nil {
		closer.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		entries:   db.NewEntryLog(db.DB),
		prefs:     db.NewPreferenceStore(db.DB),
		logCloser: closer,
	}, nil
}

func (a *app) close() {
	if err := db.Close(); err != nil {
		a.logger.Warn("close database", slog.String("error", err.Error()))
	}
	a.logCloser.Close()
}

// audioDefaults are the settings used before a preference is stored
func (a *app) audioDefaults() audio.Settings {
	defaults := audio.DefaultSettings()
	defaults.Volume = a.cfg.Audio.DefaultVolume
	defaults.CueURI = a.cfg.Audio.CueURI
	return defaults
}

// engine builds the cue engine on sink with the configured defaults
func (a *app) engine(sink audio.Sink) *audio.Engine {
	return audio.NewEngine(sink, a.prefs,
		audio.WithLogger(a.logger),
		audio.WithDefaults(a.audioDefaults()),
		audio.WithSampleRate(a.cfg.Audio.SampleRate),
	)
}

// withApp wraps a command function with startup and shutdown
func withApp(fn func(*cobra.Command, []string, *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return fmt.Errorf("startup: %w", err)
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/slate/config.toml)")
	addRunFlags(rootCmd)
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(cueCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(beepCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
