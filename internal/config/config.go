package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	defaultConfigPath = "~/.config/slate/config.toml"
	defaultDataDir    = "~/.local/share/slate"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
	defaultVolume     = 0.8
	defaultSampleRate = 44100

	// DataDirEnv overrides data_dir when set.
	DataDirEnv = "SLATE_DATA_DIR"
)

// Audio contains cue output settings.
type Audio struct {
	OutputEnabled bool    `toml:"output_enabled"`
	DefaultVolume float64 `toml:"default_volume"`
	SampleRate    int     `toml:"sample_rate"`
	CueURI        string  `toml:"cue_uri"`
}

// Config is the full slate configuration.
type Config struct {
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	Audio     Audio  `toml:"audio"`
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DataDir:   defaultDataDir,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Audio: Audio{
			OutputEnabled: true,
			DefaultVolume: defaultVolume,
			SampleRate:    defaultSampleRate,
		},
	}
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config at path, or the default location when path is empty.
// A missing file is not an error; the returned bool reports whether one was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	if dir, ok := os.LookupEnv(DataDirEnv); ok && strings.TrimSpace(dir) != "" {
		c.DataDir = dir
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}

	var err error
	if c.DataDir, err = expandPath(strings.TrimSpace(c.DataDir)); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}

	if c.Audio.CueURI, err = ExpandCueURI(c.Audio.CueURI); err != nil {
		return fmt.Errorf("audio.cue_uri: %w", err)
	}
	return nil
}

// ExpandCueURI trims uri and resolves a leading ~ in local paths. URLs are
// returned unchanged.
func ExpandCueURI(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "~") {
		return uri, nil
	}
	return expandPath(uri)
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}
	if c.Audio.DefaultVolume < 0 || c.Audio.DefaultVolume > 1 {
		return errors.New("audio.default_volume must be between 0 and 1")
	}
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	return nil
}

// EnsureDirectories creates the data directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.DataDir, err)
	}
	return nil
}

// LogPath is the log file used while the terminal UI owns stdout.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "slate.log")
}

// LockPath guards the data directory against a second running slate.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "slate.lock")
}

// CreateSample writes the sample configuration to path. An existing file is
// left alone.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
