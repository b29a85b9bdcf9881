// Package discovery locates OpenSprinkler controllers on the local network
// with multicast DNS.
//
// Controllers advertise an "_http._tcp" service whose instance and host
// name are "OS-" followed by the last three bytes of the MAC address in
// hex (e.g., "OS-4A1B2C.local."). Scanner browses for the service type and
// keeps only entries with that name.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	devices, err := scanner.ScanForDevices(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    client := sprinkler.NewClientWithURL(d.BaseURL())
//	    ...
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Controllers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
