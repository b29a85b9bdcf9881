package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/opensprinkler/internal/logging"
)

const (
	// ServiceType is the mDNS service type OpenSprinkler advertises
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port for OpenSprinkler controllers
	DefaultPort = 80
)

// namePattern matches OpenSprinkler mDNS names (e.g., "OS-4A1B2C" or
// "OS-4A1B2C.local.")
var namePattern = regexp.MustCompile(`^(?i:OS)-([0-9A-Fa-f]+)(?:\.local\.?)?$`)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDevices browses the local network until the timeout expires or
// ctx is cancelled and returns every OpenSprinkler controller seen.
func (s *Scanner) ScanForDevices(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	var (
		mu      sync.Mutex
		devices = make([]*Device, 0)
		seen    = make(map[string]bool)
	)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			device := parseServiceEntry(entry)
			if device == nil {
				continue
			}
			mu.Lock()
			if !seen[device.Name] {
				seen[device.Name] = true
				devices = append(devices, device)
				logging.Debug("Discovered controller",
					zap.String("name", device.Name),
					zap.String("ip", device.IP),
					zap.Int("port", device.Port),
				)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Device(nil), devices...), nil
}

// WaitForDevice waits for a controller by name ("OS-4A1B2C") or ID
// ("4A1B2C"), case-insensitively.
func (s *Scanner) WaitForDevice(ctx context.Context, name string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			device := parseServiceEntry(entry)
			if device != nil && device.Matches(name) {
				select {
				case deviceChan <- device:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		select {
		case device := <-deviceChan:
			return device, nil
		default:
		}
		return nil, fmt.Errorf("controller %s not found within %s", name, s.Timeout)
	}
}

// Matches reports whether name identifies this device.
func (d *Device) Matches(name string) bool {
	return strings.EqualFold(d.Name, name) || strings.EqualFold(d.ID, name)
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not an OpenSprinkler controller.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	var name, id string
	for _, candidate := range []string{entry.Instance, entry.HostName} {
		if m := namePattern.FindStringSubmatch(candidate); m != nil {
			name = strings.TrimSuffix(strings.TrimSuffix(candidate, "."), ".local")
			id = strings.ToUpper(m[1])
			break
		}
	}
	if name == "" {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Device{
		Name:         name,
		ID:           id,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
