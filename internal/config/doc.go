// Package config loads and validates slate configuration.
//
// Settings come from a TOML file (by default ~/.config/slate/config.toml),
// fall back to repository defaults when the file or a key is absent, and
// honour SLATE_DATA_DIR for the data directory. Paths are expanded, including
// the ~ shortcut, before the config is handed to the rest of the program.
package config
