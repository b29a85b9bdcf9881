package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents an OpenSprinkler controller found on the network
type Device struct {
	// Name is the mDNS name with the ".local." suffix removed (e.g., "OS-4A1B2C")
	Name string

	// ID is the hex suffix the firmware derives from the MAC (e.g., "4A1B2C")
	ID string

	// Hostname is the mDNS hostname (e.g., "OS-4A1B2C.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.20")
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the controller was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("OpenSprinkler %s (%s) at %s:%d", d.Name, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the controller, suitable for
// sprinkler.NewClientWithURL.
func (d *Device) BaseURL() string {
	if d.Port == DefaultPort {
		return "http://" + hostForURL(d.IP)
	}
	return "http://" + net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

func hostForURL(ip string) string {
	if parsed := net.ParseIP(ip); parsed != nil && parsed.To4() == nil {
		return "[" + ip + "]"
	}
	return ip
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
