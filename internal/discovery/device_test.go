package discovery

import (
	"testing"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Name:     "OS-4A1B2C",
		Hostname: "OS-4A1B2C.local.",
		IP:       "192.168.1.20",
		Port:     80,
	}

	expected := "OpenSprinkler OS-4A1B2C (OS-4A1B2C.local.) at 192.168.1.20:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "default port is omitted",
			device:   &Device{IP: "192.168.1.20", Port: 80},
			expected: "http://192.168.1.20",
		},
		{
			name:     "custom port",
			device:   &Device{IP: "10.0.0.5", Port: 8080},
			expected: "http://10.0.0.5:8080",
		},
		{
			name:     "IPv6 default port",
			device:   &Device{IP: "fe80::1", Port: 80},
			expected: "http://[fe80::1]",
		},
		{
			name:     "IPv6 custom port",
			device:   &Device{IP: "fe80::1", Port: 8080},
			expected: "http://[fe80::1]:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{"path": "/"},
	}

	if got := device.GetMetadata("path"); got != "/" {
		t.Errorf("GetMetadata(path) = %q, want /", got)
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}

	empty := &Device{}
	if got := empty.GetMetadata("anything"); got != "" {
		t.Errorf("GetMetadata() with nil map = %q, want empty string", got)
	}
}

func TestDevice_Matches(t *testing.T) {
	device := &Device{Name: "OS-4A1B2C", ID: "4A1B2C"}

	for _, name := range []string{"OS-4A1B2C", "os-4a1b2c", "4A1B2C", "4a1b2c"} {
		if !device.Matches(name) {
			t.Errorf("Matches(%q) = false, want true", name)
		}
	}
	if device.Matches("OS-000000") {
		t.Error("Matches(OS-000000) = true, want false")
	}
}
