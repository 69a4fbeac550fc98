// Package config loads, validates, and defaults reelcast configuration.
//
// Configuration is stored as TOML at ~/.config/reelcast/config.toml (or a
// reelcast.toml in the working directory). Secrets may also arrive through
// the environment; the binaries overlay a .env file before loading config.
package config
