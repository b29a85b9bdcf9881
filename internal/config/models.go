package config

import (
	"sort"
	"strings"
	"time"
)

// Registry represents the entire user configuration file.
// It stores named controllers and application preferences.
type Registry struct {
	Version     int                    `yaml:"version"`
	Controllers map[string]*Controller `yaml:"controllers,omitempty"` // Keyed by controller name
	Preferences *Preferences           `yaml:"preferences,omitempty"`
}

// Controller represents user-defined metadata for a single OpenSprinkler
// controller.
type Controller struct {
	Nickname      string         `yaml:"nickname,omitempty"`       // User-friendly name
	Endpoint      string         `yaml:"endpoint"`                 // Base URL, e.g. http://192.168.1.20
	LastIP        string         `yaml:"last_ip,omitempty"`        // Last known IP address
	LastSeen      time.Time      `yaml:"last_seen,omitempty"`      // Last discovery/connection time
	MAC           string         `yaml:"mac,omitempty"`            // Hardware address reported by /jc
	StationLabels map[int]string `yaml:"station_labels,omitempty"` // Local labels keyed by station index
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover      bool   `yaml:"auto_discover"`                // Fall back to mDNS when no controller is given
	DiscoverTimeout   int    `yaml:"discover_timeout"`             // mDNS discovery timeout in seconds
	DefaultController string `yaml:"default_controller,omitempty"` // Used when --controller is omitted
	OutputFormat      string `yaml:"output_format,omitempty"`      // detailed, compact or json
}

// Output formats accepted in Preferences.OutputFormat.
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatJSON     = "json"
)

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
		OutputFormat:    FormatDetailed,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     currentVersion,
		Controllers: make(map[string]*Controller),
		Preferences: defaultPreferences(),
	}
}

// GetController retrieves controller metadata by name.
// Returns nil if the controller doesn't exist in the registry.
func (r *Registry) GetController(name string) *Controller {
	return r.Controllers[name]
}

// EnsureController ensures a controller entry exists in the registry and
// returns it.
func (r *Registry) EnsureController(name string) *Controller {
	if r.Controllers == nil {
		r.Controllers = make(map[string]*Controller)
	}

	if c, exists := r.Controllers[name]; exists {
		return c
	}

	c := &Controller{
		StationLabels: make(map[int]string),
	}
	r.Controllers[name] = c
	return c
}

// AddController creates or replaces the endpoint of a named controller.
func (r *Registry) AddController(name, endpoint string) *Controller {
	c := r.EnsureController(name)
	c.Endpoint = strings.TrimRight(endpoint, "/")
	return c
}

// RemoveController deletes a controller. Returns false if it was unknown.
// Clears DefaultController when it named the removed entry.
func (r *Registry) RemoveController(name string) bool {
	if _, ok := r.Controllers[name]; !ok {
		return false
	}
	delete(r.Controllers, name)
	if r.Preferences != nil && r.Preferences.DefaultController == name {
		r.Preferences.DefaultController = ""
	}
	return true
}

// ControllerNames returns the registered names in sorted order.
func (r *Registry) ControllerNames() []string {
	names := make([]string, 0, len(r.Controllers))
	for name := range r.Controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateControllerLastSeen updates the last seen timestamp and IP for a controller.
func (r *Registry) UpdateControllerLastSeen(name, ip string) {
	c := r.EnsureController(name)
	c.LastSeen = time.Now()
	c.LastIP = ip
}

// SetControllerNickname sets a user-friendly nickname for a controller.
func (r *Registry) SetControllerNickname(name, nickname string) {
	r.EnsureController(name).Nickname = nickname
}

// SetStationLabel sets a local label for a station. An empty label removes it.
func (r *Registry) SetStationLabel(name string, sid int, label string) {
	c := r.EnsureController(name)
	if c.StationLabels == nil {
		c.StationLabels = make(map[int]string)
	}
	if label == "" {
		delete(c.StationLabels, sid)
		return
	}
	c.StationLabels[sid] = label
}

// Resolve finds the controller to use for a command. An empty name selects
// the default controller, or the only one when exactly one is registered.
func (r *Registry) Resolve(name string) (string, *Controller, bool) {
	if name == "" && r.Preferences != nil {
		name = r.Preferences.DefaultController
	}
	if name == "" && len(r.Controllers) == 1 {
		for only := range r.Controllers {
			name = only
		}
	}
	c, ok := r.Controllers[name]
	return name, c, ok
}

// StationLabel returns the local label for sid, falling back to fallback.
func (c *Controller) StationLabel(sid int, fallback string) string {
	if c != nil {
		if label, ok := c.StationLabels[sid]; ok && label != "" {
			return label
		}
	}
	return fallback
}

// DisplayName returns the nickname when set, otherwise the endpoint.
func (c *Controller) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.Endpoint
}
