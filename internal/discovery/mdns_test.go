package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantID   string
		wantIP   string
		wantPort int
	}{
		{
			name: "instance name with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "OS-4A1B2C"},
				HostName:      "OS-4A1B2C.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.20")},
			},
			wantName: "OS-4A1B2C",
			wantID:   "4A1B2C",
			wantIP:   "192.168.1.20",
			wantPort: 80,
		},
		{
			name: "host name only, lowercase hex",
			entry: &zeroconf.ServiceEntry{
				HostName: "OS-4a1b2c.local.",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantName: "OS-4a1b2c",
			wantID:   "4A1B2C",
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name: "zero port defaults to 80",
			entry: &zeroconf.ServiceEntry{
				HostName: "OS-00AA11.local",
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.21")},
			},
			wantName: "OS-00AA11",
			wantID:   "00AA11",
			wantIP:   "192.168.1.21",
			wantPort: 80,
		},
		{
			name: "IPv6 fallback",
			entry: &zeroconf.ServiceEntry{
				HostName: "OS-4A1B2C.local.",
				Port:     80,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantName: "OS-4A1B2C",
			wantID:   "4A1B2C",
			wantIP:   "fe80::1",
			wantPort: 80,
		},
		{
			name: "other http service",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Living Room Printer"},
				HostName:      "printer.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.30")},
			},
			wantNil: true,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "OS-4A1B2C.local.",
				Port:     80,
			},
			wantNil: true,
		},
		{
			name: "OS prefix without hex suffix",
			entry: &zeroconf.ServiceEntry{
				HostName: "OS-garden.local.",
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.22")},
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}
			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}

			if device.Name != tt.wantName {
				t.Errorf("device.Name = %v, want %v", device.Name, tt.wantName)
			}
			if device.ID != tt.wantID {
				t.Errorf("device.ID = %v, want %v", device.ID, tt.wantID)
			}
			if device.IP != tt.wantIP {
				t.Errorf("device.IP = %v, want %v", device.IP, tt.wantIP)
			}
			if device.Port != tt.wantPort {
				t.Errorf("device.Port = %v, want %v", device.Port, tt.wantPort)
			}
			if device.Hostname != tt.entry.HostName {
				t.Errorf("device.Hostname = %v, want %v", device.Hostname, tt.entry.HostName)
			}
			if time.Since(device.DiscoveredAt) > time.Second {
				t.Errorf("device.DiscoveredAt is not recent: %v", device.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "OS-4A1B2C.local.",
		Port:     80,
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.20")},
		Text:     []string{"path=/", "flag", "url=http://x/?a=b"},
	}

	device := parseServiceEntry(entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}

	expected := map[string]string{
		"path": "/",
		"flag": "",
		"url":  "http://x/?a=b",
	}
	if len(device.Metadata) != len(expected) {
		t.Errorf("device.Metadata has %d entries, want %d", len(device.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := device.Metadata[key]; !ok || got != want {
			t.Errorf("device.Metadata[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestNamePattern(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
		id          string
	}{
		{"OS-4A1B2C", true, "4A1B2C"},
		{"OS-4A1B2C.local", true, "4A1B2C"},
		{"OS-4A1B2C.local.", true, "4A1B2C"},
		{"os-4a1b2c.local.", true, "4a1b2c"},
		{"OS-.local", false, ""},
		{"OS-XYZ.local", false, ""},
		{"OSX-4A1B2C.local", false, ""},
		{"eValve315260240.local", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := namePattern.FindStringSubmatch(tt.name)
			if tt.shouldMatch {
				if len(m) < 2 {
					t.Fatalf("namePattern did not match %q", tt.name)
				}
				if m[1] != tt.id {
					t.Errorf("namePattern matched %q with id %q, want %q", tt.name, m[1], tt.id)
				}
			} else if m != nil {
				t.Errorf("namePattern matched %q, want no match", tt.name)
			}
		})
	}
}
