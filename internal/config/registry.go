package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "opensprinkler"
	configFile     = "config.yaml"
	currentVersion = 1
)

// ConfigPathEnvVar overrides the registry location, mostly for tests and
// for running several setups side by side.
const ConfigPathEnvVar = "OPENSPRINKLER_CONFIG"

var (
	loadOnce   sync.Once
	loaded     *Registry
	loadErr    error
	saveMutex  sync.Mutex
	fileHeader = `# OpenSprinkler Configuration File
# This file stores named controllers and CLI preferences.
#
# Security Note: controller passwords are NEVER stored in this file.
# Set OPENSPRINKLER_PASSWORD (or a .env file) or enter it when prompted.
#
# Location: %s

`
)

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/opensprinkler or $HOME/.config/opensprinkler
//   - macOS: $HOME/.config/opensprinkler
//   - Windows: %LOCALAPPDATA%\opensprinkler
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		profile := os.Getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(profile, "AppData", "Local", appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the registry file path, honouring
// OPENSPRINKLER_CONFIG.
func GetConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry loads the registry from the default path once per process.
// A missing file yields a default registry.
func LoadRegistry() (*Registry, error) {
	loadOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			loadErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		loaded, loadErr = LoadRegistryFrom(path)
	})
	return loaded, loadErr
}

// LoadRegistryFrom reads a registry from an explicit path.
func LoadRegistryFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewRegistry(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	reg := &Registry{}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if reg.Version != currentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", reg.Version, currentVersion)
	}
	if reg.Controllers == nil {
		reg.Controllers = make(map[string]*Controller)
	}
	if reg.Preferences == nil {
		reg.Preferences = defaultPreferences()
	}
	return reg, nil
}

// Save writes the registry to the default path.
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveTo(path)
}

// SaveTo writes the registry to path through a temporary file and rename,
// so a crash never leaves a half-written file behind.
func (r *Registry) SaveTo(path string) error {
	saveMutex.Lock()
	defer saveMutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, configFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = fmt.Fprintf(tmp, fileHeader, path)
	if err == nil {
		_, err = tmp.Write(body)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
