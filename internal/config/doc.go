// Package config provides user configuration for the OpenSprinkler tools.
//
// A YAML registry stores named controllers (endpoint, nickname, last seen
// address, local station labels) and CLI preferences. The file follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/opensprinkler/config.yaml or $HOME/.config/opensprinkler/config.yaml
//   - macOS: $HOME/.config/opensprinkler/config.yaml
//   - Windows: %LOCALAPPDATA%\opensprinkler\config.yaml
//
// OPENSPRINKLER_CONFIG overrides the location.
//
// # Security
//
// Controller passwords are never written to the registry. They come from
// OPENSPRINKLER_PASSWORD (optionally loaded from a .env file by LoadEnv) or
// an interactive prompt.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.AddController("garden", "http://192.168.1.20")
//	registry.SetStationLabel("garden", 0, "Front lawn")
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// LoadRegistry reads the file once per process. File writes are serialized
// by a mutex and go through a temporary file plus rename.
package config
