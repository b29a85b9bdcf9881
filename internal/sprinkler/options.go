package sprinkler

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is the /jo snapshot. IP addresses are reported one octet per
// field; use the accessor methods for dotted-decimal strings.
type Options struct {
	FirmwareVersionRaw int `json:"fwv"`
	FirmwareMinor      int `json:"fwm"`
	TimeZone           int `json:"tz"`
	DHCP               int `json:"dhcp"`

	IP1 int `json:"ip1"`
	IP2 int `json:"ip2"`
	IP3 int `json:"ip3"`
	IP4 int `json:"ip4"`

	GW1 int `json:"gw1"`
	GW2 int `json:"gw2"`
	GW3 int `json:"gw3"`
	GW4 int `json:"gw4"`

	DNS1 int `json:"dns1"`
	DNS2 int `json:"dns2"`
	DNS3 int `json:"dns3"`
	DNS4 int `json:"dns4"`

	Subnet1 int `json:"subn1"`
	Subnet2 int `json:"subn2"`
	Subnet3 int `json:"subn3"`
	Subnet4 int `json:"subn4"`

	NTP  int `json:"ntp"`
	NTP1 int `json:"ntp1"`
	NTP2 int `json:"ntp2"`
	NTP3 int `json:"ntp3"`
	NTP4 int `json:"ntp4"`

	HTTPPort0       int `json:"hp0"`
	HTTPPort1       int `json:"hp1"`
	HardwareVersion int `json:"hwv"`
	HardwareType    int `json:"hwt"`
	ExpansionBoards int `json:"ext"`
	StationDelay    int `json:"sdt"`

	Master1         int `json:"mas"`
	Master2         int `json:"mas2"`
	Master1OnAdj    int `json:"mton"`
	Master2OnAdj    int `json:"mton2"`
	Master1OffAdj   int `json:"mtof"`
	Master2OffAdj   int `json:"mtof2"`
	Sensor1Type     int `json:"sn1t"`
	Sensor1Option   int `json:"sn1o"`
	Sensor1OnDelay  int `json:"sn1on"`
	Sensor1OffDelay int `json:"sn1of"`
	Sensor2Type     int `json:"sn2t"`
	Sensor2Option   int `json:"sn2o"`
	Sensor2OnDelay  int `json:"sn2on"`
	Sensor2OffDelay int `json:"sn2of"`

	WaterLevel       int `json:"wl"`
	DeviceEnable     int `json:"den"`
	IgnorePassword   int `json:"ipas"`
	DeviceID         int `json:"devid"`
	LCDContrast      int `json:"con"`
	LCDBacklight     int `json:"lit"`
	LCDDimming       int `json:"dim"`
	BoostTime        int `json:"bst"`
	WeatherMethod    int `json:"uwt"`
	Logging          int `json:"lg"`
	FlowPulseRate0   int `json:"fpr0"`
	FlowPulseRate1   int `json:"fpr1"`
	RemoteExtension  int `json:"re"`
	DetectedExpander int `json:"dexp"`
	MaxExpander      int `json:"mexp"`
	SpecialRefresh   int `json:"sar"`
	ForceWired       int `json:"fwire"`

	NotifyEvents         int `json:"ife"`
	NotifyEventsExtended int `json:"ife2"`
}

// FormatIPAddress renders four octets as dotted decimal. Values are not
// range-checked.
func FormatIPAddress(octets [4]int) string {
	parts := make([]string, len(octets))
	for i, o := range octets {
		parts[i] = strconv.Itoa(o)
	}
	return strings.Join(parts, ".")
}

// StaticIP returns ip1-ip4 as a dotted-decimal string.
func (o *Options) StaticIP() string {
	return FormatIPAddress([4]int{o.IP1, o.IP2, o.IP3, o.IP4})
}

// Gateway returns gw1-gw4 as a dotted-decimal string.
func (o *Options) Gateway() string {
	return FormatIPAddress([4]int{o.GW1, o.GW2, o.GW3, o.GW4})
}

// DNS returns dns1-dns4 as a dotted-decimal string.
func (o *Options) DNS() string {
	return FormatIPAddress([4]int{o.DNS1, o.DNS2, o.DNS3, o.DNS4})
}

// Subnet returns subn1-subn4 as a dotted-decimal string.
func (o *Options) Subnet() string {
	return FormatIPAddress([4]int{o.Subnet1, o.Subnet2, o.Subnet3, o.Subnet4})
}

// NTPServer returns ntp1-ntp4 as a dotted-decimal string.
func (o *Options) NTPServer() string {
	return FormatIPAddress([4]int{o.NTP1, o.NTP2, o.NTP3, o.NTP4})
}

// HTTPPort combines hp0 (low byte) and hp1 (high byte).
func (o *Options) HTTPPort() int {
	return o.HTTPPort1<<8 | o.HTTPPort0
}

// FlowPulseRate combines fpr0 and fpr1. The unit is 0.01 L per pulse.
func (o *Options) FlowPulseRate() int {
	return o.FlowPulseRate1<<8 | o.FlowPulseRate0
}

// FirmwareVersion renders fwv/fwm, e.g. 220 and 9 become "2.2.0(9)".
func (o *Options) FirmwareVersion() string {
	digits := strconv.Itoa(o.FirmwareVersionRaw)
	v := strings.Join(strings.Split(digits, ""), ".")
	if o.FirmwareMinor > 0 {
		v += fmt.Sprintf("(%d)", o.FirmwareMinor)
	}
	return v
}

// TimeZoneOffset decodes tz, stored in quarter hours offset by 48.
func (o *Options) TimeZoneOffset() string {
	q := o.TimeZone - 48
	sign := "+"
	if q < 0 {
		sign = "-"
		q = -q
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, q/4, (q%4)*15)
}

// Notifications decodes ife.
func (o *Options) Notifications() NotificationEvents {
	return DecodeNotificationEvents(o.NotifyEvents)
}

// ExtendedNotifications decodes ife2.
func (o *Options) ExtendedNotifications() ExtendedNotificationEvents {
	return DecodeExtendedNotificationEvents(o.NotifyEventsExtended)
}

// NotificationEvents is the decoded ife bit field.
type NotificationEvents struct {
	ProgramScheduled       bool `json:"programScheduled"`       // bit 0
	Sensor1StatusUpdate    bool `json:"sensor1StatusUpdate"`    // bit 1
	FlowSensorStatusUpdate bool `json:"flowSensorStatusUpdate"` // bit 2
	WeatherUpdate          bool `json:"weatherUpdate"`          // bit 3
	Reboot                 bool `json:"reboot"`                 // bit 4
	StationFinish          bool `json:"stationFinish"`          // bit 5
	Sensor2StatusUpdate    bool `json:"sensor2StatusUpdate"`    // bit 6
	RainDelayUpdate        bool `json:"rainDelayUpdate"`        // bit 7
}

// ExtendedNotificationEvents is the decoded ife2 bit field.
type ExtendedNotificationEvents struct {
	StationStart bool `json:"stationStart"` // bit 0
	FlowAlert    bool `json:"flowAlert"`    // bit 1
}

// DecodeNotificationEvents maps bits 0-7 of ife. Higher bits are ignored.
func DecodeNotificationEvents(ife int) NotificationEvents {
	return NotificationEvents{
		ProgramScheduled:       ife&0x01 != 0,
		Sensor1StatusUpdate:    ife&0x02 != 0,
		FlowSensorStatusUpdate: ife&0x04 != 0,
		WeatherUpdate:          ife&0x08 != 0,
		Reboot:                 ife&0x10 != 0,
		StationFinish:          ife&0x20 != 0,
		Sensor2StatusUpdate:    ife&0x40 != 0,
		RainDelayUpdate:        ife&0x80 != 0,
	}
}

// DecodeExtendedNotificationEvents maps bits 0-1 of ife2. Higher bits are
// ignored.
func DecodeExtendedNotificationEvents(ife2 int) ExtendedNotificationEvents {
	return ExtendedNotificationEvents{
		StationStart: ife2&0x01 != 0,
		FlowAlert:    ife2&0x02 != 0,
	}
}

// Bits packs the events back into an ife value.
func (n NotificationEvents) Bits() int {
	flags := []bool{
		n.ProgramScheduled,
		n.Sensor1StatusUpdate,
		n.FlowSensorStatusUpdate,
		n.WeatherUpdate,
		n.Reboot,
		n.StationFinish,
		n.Sensor2StatusUpdate,
		n.RainDelayUpdate,
	}
	return packBits(flags)
}

// Bits packs the events back into an ife2 value.
func (n ExtendedNotificationEvents) Bits() int {
	return packBits([]bool{n.StationStart, n.FlowAlert})
}

// Names returns the names of the enabled events.
func (n NotificationEvents) Names() []string {
	var names []string
	add := func(on bool, name string) {
		if on {
			names = append(names, name)
		}
	}
	add(n.ProgramScheduled, "program scheduled")
	add(n.Sensor1StatusUpdate, "sensor 1")
	add(n.FlowSensorStatusUpdate, "flow sensor")
	add(n.WeatherUpdate, "weather")
	add(n.Reboot, "reboot")
	add(n.StationFinish, "station finish")
	add(n.Sensor2StatusUpdate, "sensor 2")
	add(n.RainDelayUpdate, "rain delay")
	return names
}

func packBits(flags []bool) int {
	v := 0
	for i, on := range flags {
		if on {
			v |= 1 << i
		}
	}
	return v
}
