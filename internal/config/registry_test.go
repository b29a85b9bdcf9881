package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "opensprinkler") {
		t.Errorf("GetConfigDir() = %v, should contain 'opensprinkler'", configDir)
	}

	switch runtime.GOOS {
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join(dir, "opensprinkler") {
		t.Errorf("GetConfigDir() = %v, want under %v", configDir, dir)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "alt.yaml")
	t.Setenv(ConfigPathEnvVar, want)

	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if got != want {
		t.Errorf("GetConfigPath() = %v, want %v", got, want)
	}
}

func TestSave_UsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	t.Setenv(ConfigPathEnvVar, path)

	reg := NewRegistry()
	reg.AddController("garden", "http://192.168.1.20")
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if loaded.GetController("garden") == nil {
		t.Error("garden missing after Save")
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Controllers == nil {
		t.Error("NewRegistry().Controllers should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if !reg.Preferences.AutoDiscover {
		t.Error("AutoDiscover should be true by default")
	}
	if reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("DiscoverTimeout = %v, want 5", reg.Preferences.DiscoverTimeout)
	}
	if reg.Preferences.OutputFormat != FormatDetailed {
		t.Errorf("OutputFormat = %q, want %q", reg.Preferences.OutputFormat, FormatDetailed)
	}
}

func TestRegistryEnsureController(t *testing.T) {
	reg := &Registry{}

	c := reg.EnsureController("garden")
	if c == nil {
		t.Fatal("EnsureController returned nil")
	}
	if c.StationLabels == nil {
		t.Error("new controller should have a StationLabels map")
	}

	c.Nickname = "Back garden"
	if again := reg.EnsureController("garden"); again.Nickname != "Back garden" {
		t.Error("EnsureController should return the existing entry")
	}
}

func TestRegistryAddAndRemove(t *testing.T) {
	reg := NewRegistry()

	c := reg.AddController("garden", "http://192.168.1.20/")
	if c.Endpoint != "http://192.168.1.20" {
		t.Errorf("Endpoint = %q, trailing slash should be trimmed", c.Endpoint)
	}
	reg.AddController("allotment", "http://10.0.0.7:8080")
	reg.Preferences.DefaultController = "garden"

	names := reg.ControllerNames()
	if len(names) != 2 || names[0] != "allotment" || names[1] != "garden" {
		t.Errorf("ControllerNames() = %v, want sorted [allotment garden]", names)
	}

	if !reg.RemoveController("garden") {
		t.Error("RemoveController(garden) = false")
	}
	if reg.Preferences.DefaultController != "" {
		t.Error("removing the default controller should clear DefaultController")
	}
	if reg.RemoveController("garden") {
		t.Error("second RemoveController should report false")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	if _, _, ok := reg.Resolve(""); ok {
		t.Error("empty registry should not resolve")
	}

	reg.AddController("garden", "http://192.168.1.20")
	name, c, ok := reg.Resolve("")
	if !ok || name != "garden" || c.Endpoint != "http://192.168.1.20" {
		t.Errorf("single controller should resolve implicitly, got %q %v %v", name, c, ok)
	}

	reg.AddController("allotment", "http://10.0.0.7")
	if _, _, ok := reg.Resolve(""); ok {
		t.Error("two controllers without a default should not resolve")
	}

	reg.Preferences.DefaultController = "allotment"
	if name, _, ok := reg.Resolve(""); !ok || name != "allotment" {
		t.Errorf("Resolve(\"\") = %q, want default allotment", name)
	}
	if name, _, ok := reg.Resolve("garden"); !ok || name != "garden" {
		t.Errorf("explicit name should win, got %q", name)
	}
}

func TestStationLabels(t *testing.T) {
	reg := NewRegistry()
	reg.SetStationLabel("garden", 3, "Roses")

	c := reg.GetController("garden")
	if got := c.StationLabel(3, "S04"); got != "Roses" {
		t.Errorf("StationLabel(3) = %q, want Roses", got)
	}
	if got := c.StationLabel(4, "S05"); got != "S05" {
		t.Errorf("StationLabel(4) = %q, want fallback", got)
	}

	reg.SetStationLabel("garden", 3, "")
	if _, ok := c.StationLabels[3]; ok {
		t.Error("empty label should delete the entry")
	}

	var missing *Controller
	if got := missing.StationLabel(0, "S01"); got != "S01" {
		t.Errorf("nil controller should fall back, got %q", got)
	}
}

func TestUpdateControllerLastSeen(t *testing.T) {
	reg := NewRegistry()
	reg.UpdateControllerLastSeen("garden", "192.168.1.20")

	c := reg.GetController("garden")
	if c.LastIP != "192.168.1.20" {
		t.Errorf("LastIP = %q", c.LastIP)
	}
	if c.LastSeen.IsZero() {
		t.Error("LastSeen should be set")
	}
}

func TestDisplayName(t *testing.T) {
	c := &Controller{Endpoint: "http://192.168.1.20"}
	if c.DisplayName() != "http://192.168.1.20" {
		t.Errorf("DisplayName() = %q, want endpoint", c.DisplayName())
	}
	c.Nickname = "Garden"
	if c.DisplayName() != "Garden" {
		t.Errorf("DisplayName() = %q, want nickname", c.DisplayName())
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.AddController("garden", "http://192.168.1.20")
	reg.SetControllerNickname("garden", "Back garden")
	reg.SetStationLabel("garden", 0, "Front lawn")
	reg.Preferences.DefaultController = "garden"
	reg.Preferences.OutputFormat = FormatCompact

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp")); len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# OpenSprinkler Configuration File") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	c := loaded.GetController("garden")
	if c == nil {
		t.Fatal("garden missing after reload")
	}
	if c.Endpoint != "http://192.168.1.20" || c.Nickname != "Back garden" {
		t.Errorf("controller = %+v", c)
	}
	if c.StationLabels[0] != "Front lawn" {
		t.Errorf("StationLabels = %v", c.StationLabels)
	}
	if loaded.Preferences.DefaultController != "garden" || loaded.Preferences.OutputFormat != FormatCompact {
		t.Errorf("Preferences = %+v", loaded.Preferences)
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if reg.Version != 1 || reg.Controllers == nil {
		t.Errorf("missing file should give a default registry, got %+v", reg)
	}
}

func TestLoadRegistryFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "version: [1\n", "failed to parse"},
		{"wrong version", "version: 2\n", "unsupported config version: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadRegistryFrom(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistryFrom_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
controllers:
  garden:
    endpoint: http://192.168.1.20
    station_labels:
      2: Veg patch
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Preferences == nil || !reg.Preferences.AutoDiscover {
		t.Error("missing preferences should be defaulted")
	}
	if got := reg.GetController("garden").StationLabels[2]; got != "Veg patch" {
		t.Errorf("StationLabels[2] = %q", got)
	}
}
