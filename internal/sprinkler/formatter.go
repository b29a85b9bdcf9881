package sprinkler

import (
	"fmt"
	"strings"
	"time"
)

// Summary returns a one-line summary of the controller state
func (cv *ControllerVariables) Summary() string {
	name := cv.DeviceName
	if name == "" {
		name = "OpenSprinkler"
	}
	state := "enabled"
	if !cv.IsEnabled() {
		state = "disabled"
	}
	return fmt.Sprintf("%s (%s, %d boards, %s)", name, state, cv.NumBoards, cv.DeviceTime().Format("2006-01-02 15:04"))
}

// FormatStatus returns the controller state as labelled lines
func (cv *ControllerVariables) FormatStatus() string {
	var b strings.Builder

	b.WriteString("=== Controller ===\n")
	b.WriteString(fmt.Sprintf("Device Time:   %s\n", cv.DeviceTime().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Operation:     %s\n", onOff(cv.IsEnabled(), "enabled", "disabled")))
	if cv.RainDelayActive() {
		b.WriteString(fmt.Sprintf("Rain Delay:    until %s\n", cv.RainDelayStop().Format("2006-01-02 15:04")))
	} else {
		b.WriteString("Rain Delay:    off\n")
	}
	b.WriteString(fmt.Sprintf("Sensor 1:      %s\n", onOff(cv.Sensor1Active(), "active", "inactive")))
	if cv.Sensor2 != nil {
		b.WriteString(fmt.Sprintf("Sensor 2:      %s\n", onOff(cv.Sensor2Active(), "active", "inactive")))
	}
	if cv.QueuePaused() {
		b.WriteString(fmt.Sprintf("Queue:         paused (%ds left)\n", cv.PauseTimer))
	} else {
		b.WriteString(fmt.Sprintf("Queue:         %d queued\n", cv.QueueLength))
	}
	b.WriteString(fmt.Sprintf("Sunrise/Set:   %s / %s\n", FormatStartTime(cv.Sunrise), FormatStartTime(cv.Sunset)))
	b.WriteString(fmt.Sprintf("Last Reboot:   %s (%s)\n", time.Unix(cv.LastReboot, 0).UTC().Format("2006-01-02 15:04"), cv.RebootCause))
	b.WriteString(fmt.Sprintf("Weather:       %s\n", cv.WeatherError))
	if cv.RSSI != nil {
		b.WriteString(fmt.Sprintf("Wi-Fi RSSI:    %d dBm\n", *cv.RSSI))
	}
	if cv.Current != nil {
		b.WriteString(fmt.Sprintf("Current Draw:  %d mA\n", *cv.Current))
	}

	lr := cv.LastRun()
	if lr.End.Unix() > 0 {
		b.WriteString(fmt.Sprintf("Last Run:      station %d, program %d, %s, ended %s\n",
			lr.StationID+1, lr.ProgramID, lr.Duration, lr.End.Format("2006-01-02 15:04")))
	}

	return b.String()
}

// FormatNetwork returns the network options as labelled lines
func (o *Options) FormatNetwork() string {
	var b strings.Builder

	b.WriteString("=== Network ===\n")
	b.WriteString(fmt.Sprintf("DHCP:          %s\n", onOff(o.DHCP == 1, "yes", "no")))
	b.WriteString(fmt.Sprintf("Static IP:     %s\n", o.StaticIP()))
	b.WriteString(fmt.Sprintf("Gateway:       %s\n", o.Gateway()))
	b.WriteString(fmt.Sprintf("Subnet:        %s\n", o.Subnet()))
	b.WriteString(fmt.Sprintf("DNS:           %s\n", o.DNS()))
	b.WriteString(fmt.Sprintf("HTTP Port:     %d\n", o.HTTPPort()))
	if o.NTP == 1 {
		b.WriteString(fmt.Sprintf("NTP Server:    %s\n", o.NTPServer()))
	}

	return b.String()
}

// FormatDetailed returns every decoded option
func (o *Options) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Firmware ===\n")
	b.WriteString(fmt.Sprintf("Firmware:      %s\n", o.FirmwareVersion()))
	b.WriteString(fmt.Sprintf("Hardware:      %d (type %d)\n", o.HardwareVersion, o.HardwareType))
	b.WriteString(fmt.Sprintf("Time Zone:     %s\n", o.TimeZoneOffset()))
	b.WriteString("\n")
	b.WriteString(o.FormatNetwork())
	b.WriteString("\n")

	b.WriteString("=== Stations ===\n")
	b.WriteString(fmt.Sprintf("Expansion:     %d boards\n", o.ExpansionBoards))
	b.WriteString(fmt.Sprintf("Station Delay: %ds\n", o.StationDelay))
	b.WriteString(fmt.Sprintf("Master 1:      %s\n", masterName(o.Master1)))
	b.WriteString(fmt.Sprintf("Master 2:      %s\n", masterName(o.Master2)))
	b.WriteString(fmt.Sprintf("Water Level:   %d%%\n", o.WaterLevel))
	b.WriteString(fmt.Sprintf("Flow Pulse:    %.2f L\n", float64(o.FlowPulseRate())/100))
	b.WriteString("\n")

	b.WriteString("=== Notifications ===\n")
	names := o.Notifications().Names()
	ext := o.ExtendedNotifications()
	if ext.StationStart {
		names = append(names, "station start")
	}
	if ext.FlowAlert {
		names = append(names, "flow alert")
	}
	if len(names) == 0 {
		b.WriteString("Events:        (none)\n")
	} else {
		b.WriteString(fmt.Sprintf("Events:        %s\n", strings.Join(names, ", ")))
	}

	return b.String()
}

// FormatStations renders one line per station with its attributes and,
// when status is non-nil, whether it is running.
func (s *StationNamesAndAttributes) FormatStations(status *StationStatus) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-4s %-20s %-5s %s\n", "#", "Name", "Group", "Flags"))
	for sid := 0; sid < s.NumStations(); sid++ {
		st := s.Station(sid)
		flags := st.flags()
		if status != nil && status.Active(sid) {
			flags = append([]string{"RUNNING"}, flags...)
		}
		b.WriteString(fmt.Sprintf("%-4d %-20s %-5s %s\n", sid+1, st.Name, GroupName(st.Group), strings.Join(flags, " ")))
	}

	return b.String()
}

func (st StationAttributes) flags() []string {
	var flags []string
	add := func(on bool, f string) {
		if on {
			flags = append(flags, f)
		}
	}
	add(st.Disabled, "disabled")
	add(st.Master1, "m1")
	add(st.Master2, "m2")
	add(st.IgnoreRain, "ignore-rain")
	add(st.IgnoreSensor1, "ignore-sn1")
	add(st.IgnoreSensor2, "ignore-sn2")
	add(st.Special, "special")
	return flags
}

// FormatPrograms renders each program on one line
func (pd *ProgramData) FormatPrograms() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Programs: %d of %d\n", pd.NumPrograms, pd.MaxPrograms))
	for pid, p := range pd.Programs {
		b.WriteString(fmt.Sprintf("  [%d] %s\n", pid, p.Format()))
	}

	return b.String()
}

// Format returns a one-line description of the program
func (p *Program) Format() string {
	var starts []string
	for i, s := range p.Starts {
		if !p.FixedStartTimes() && i > 0 {
			break
		}
		if s >= 0 {
			starts = append(starts, FormatStartTime(s))
		}
	}

	days := p.ScheduleType().String()
	if wd := p.Weekdays(); len(wd) > 0 {
		days = strings.Join(wd, ",")
	}

	return fmt.Sprintf("%-16s %-8s weather=%-3s %-20s starts=%s total=%s",
		p.Name,
		onOff(p.Enabled(), "on", "off"),
		onOff(p.UseWeather(), "yes", "no"),
		days,
		strings.Join(starts, ","),
		time.Duration(p.TotalDuration())*time.Second)
}

// Format returns a one-line description of the record. names maps station
// indexes to names and may be nil.
func (r *LogRecord) Format(names []string) string {
	start := r.StartTime().Format("2006-01-02 15:04:05")
	dur := time.Duration(r.Duration) * time.Second

	if r.IsSpecialEvent() {
		return fmt.Sprintf("%s  %-14s %s", start, EventLabel(r.EventType), dur)
	}

	station := fmt.Sprintf("S%02d", r.StationID+1)
	if r.StationID >= 0 && r.StationID < len(names) && names[r.StationID] != "" {
		station = names[r.StationID]
	}
	line := fmt.Sprintf("%s  %-14s %-10s %s", start, station, ProgramLabel(r.ProgramID), dur)
	if r.Flow != nil {
		line += fmt.Sprintf("  flow=%.2f", *r.Flow)
	}
	return line
}

// FormatDetailed returns a comprehensive view of the /ja snapshot
func (a *Aggregate) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║              OPENSPRINKLER CONTROLLER                          ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	b.WriteString(a.Settings.FormatStatus())
	b.WriteString("\n")
	b.WriteString(a.Options.FormatDetailed())
	b.WriteString("\n")
	b.WriteString("=== Station Table ===\n")
	b.WriteString(a.Stations.FormatStations(&a.Status))
	b.WriteString("\n")
	b.WriteString("=== Programs ===\n")
	b.WriteString(a.Programs.FormatPrograms())

	return b.String()
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (a *Aggregate) FormatCompact() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Controller: %s\n", a.Settings.Summary()))
	b.WriteString(fmt.Sprintf("Firmware:   %s\n", a.Options.FirmwareVersion()))
	b.WriteString(fmt.Sprintf("Rain Delay: %s\n", onOff(a.Settings.RainDelayActive(), "active", "off")))
	b.WriteString(fmt.Sprintf("Water:      %d%%\n", a.Options.WaterLevel))

	var running []string
	for _, sid := range a.Status.ActiveStations() {
		running = append(running, a.Stations.Name(sid))
	}
	if len(running) == 0 {
		b.WriteString("Running:    (none)\n")
	} else {
		b.WriteString(fmt.Sprintf("Running:    %s\n", strings.Join(running, ", ")))
	}
	b.WriteString(fmt.Sprintf("Programs:   %d\n", a.Programs.NumPrograms))

	return b.String()
}

func onOff(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}

func masterName(sid int) string {
	if sid == 0 {
		return "none"
	}
	return fmt.Sprintf("S%02d", sid)
}

// ProgramLabel renders the pid of a log record. 99 is a manual run and 254
// a run-once program.
func ProgramLabel(pid int) string {
	switch pid {
	case 99:
		return "manual"
	case 254:
		return "run-once"
	default:
		return fmt.Sprintf("P%d", pid)
	}
}

// EventLabel names a special log event type.
func EventLabel(t string) string {
	switch t {
	case LogTypeSensor1:
		return "sensor 1"
	case LogTypeSensor2:
		return "sensor 2"
	case LogTypeRainDelay:
		return "rain delay"
	case LogTypeFlow:
		return "flow"
	case LogTypeWaterLevel:
		return "water level"
	default:
		return t
	}
}
