package sprinkler

import (
	"encoding/json"
	"fmt"
	"time"
)

// RebootCause is the reason recorded for the controller's last reboot (lrbtc).
type RebootCause int

const (
	RebootNoneOrUnknown        RebootCause = 0
	RebootFactoryReset         RebootCause = 1
	RebootButtonTriggered      RebootCause = 2
	RebootResetToAPMode        RebootCause = 3
	RebootApiOrTimerTriggered  RebootCause = 4
	RebootApiTriggeredReboot   RebootCause = 5
	RebootSwitchFromAPToClient RebootCause = 6
	RebootFirmwareUpdate       RebootCause = 7
	RebootWeatherCallFailed    RebootCause = 8
	RebootNetworkFailed        RebootCause = 9
	RebootNtpSync              RebootCause = 10
	RebootPowerOn              RebootCause = 99
)

func (rc RebootCause) String() string {
	switch rc {
	case RebootNoneOrUnknown:
		return "None or unknown"
	case RebootFactoryReset:
		return "Factory reset"
	case RebootButtonTriggered:
		return "Button triggered"
	case RebootResetToAPMode:
		return "Reset to AP mode"
	case RebootApiOrTimerTriggered:
		return "API or timer triggered"
	case RebootApiTriggeredReboot:
		return "API triggered reboot"
	case RebootSwitchFromAPToClient:
		return "Switched from AP to client mode"
	case RebootFirmwareUpdate:
		return "Firmware update"
	case RebootWeatherCallFailed:
		return "Weather call failed"
	case RebootNetworkFailed:
		return "Network failed"
	case RebootNtpSync:
		return "NTP sync"
	case RebootPowerOn:
		return "Power on"
	default:
		return fmt.Sprintf("RebootCause(%d)", int(rc))
	}
}

// WeatherErrorCode is the status of the last weather service call (wterr).
// Positive values are HTTP-level errors reported by the weather server.
type WeatherErrorCode int

const (
	WeatherSuccess                      WeatherErrorCode = 0
	WeatherRequestNotReceived           WeatherErrorCode = -1
	WeatherCannotConnectToWeatherServer WeatherErrorCode = -2
	WeatherRequestTimeout               WeatherErrorCode = -3
	WeatherReceivedEmptyReturn          WeatherErrorCode = -4
)

func (wc WeatherErrorCode) String() string {
	switch wc {
	case WeatherSuccess:
		return "Success"
	case WeatherRequestNotReceived:
		return "Request not received"
	case WeatherCannotConnectToWeatherServer:
		return "Cannot connect to weather server"
	case WeatherRequestTimeout:
		return "Request timeout"
	case WeatherReceivedEmptyReturn:
		return "Received empty return"
	default:
		return fmt.Sprintf("WeatherErrorCode(%d)", int(wc))
	}
}

// ControllerVariables is the /jc snapshot.
//
// Times (devt, rdst, lwc, lswc, lupt) are epoch seconds in the controller's
// local time zone, as the firmware reports them.
type ControllerVariables struct {
	Time          int64            `json:"devt"`
	NumBoards     int              `json:"nbrd"`
	Enabled       int              `json:"en"`
	Sensor1       int              `json:"sn1"`
	Sensor2       *int             `json:"sn2,omitempty"`
	RainDelay     int              `json:"rd"`
	RainDelayEnd  int64            `json:"rdst"`
	Sunrise       int              `json:"sunrise"`
	Sunset        int              `json:"sunset"`
	ExternalIP    int64            `json:"eip"`
	LastWeather   int64            `json:"lwc"`
	LastWeatherOK int64            `json:"lswc"`
	LastReboot    int64            `json:"lupt"`
	RebootCause   RebootCause      `json:"lrbtc"`
	LastRunRecord [4]int64         `json:"lrun"`
	RSSI          *int             `json:"RSSI,omitempty"`
	MAC           string           `json:"mac"`
	Location      string           `json:"loc"`
	JavascriptURL string           `json:"jsp"`
	WeatherURL    string           `json:"wsp"`
	WeatherOpts   json.RawMessage  `json:"wto,omitempty"`
	WeatherData   json.RawMessage  `json:"wtdata,omitempty"`
	WeatherError  WeatherErrorCode `json:"wterr"`
	IFTTTKey      string           `json:"ifkey"`
	MQTT          json.RawMessage  `json:"mqtt,omitempty"`
	Current       *int             `json:"curr,omitempty"`
	StationBits   []int            `json:"sbits"`
	ProgramSlots  [][4]int64       `json:"ps"`
	FlowWindow    int              `json:"flwrt"`
	FlowCount     int              `json:"flcrt"`
	Paused        int              `json:"pq"`
	PauseTimer    int              `json:"pt"`
	QueueLength   int              `json:"nq"`
	OTC           json.RawMessage  `json:"otc,omitempty"`
	OTCStatus     int              `json:"otcs"`
	DeviceName    string           `json:"dname"`
	FreeGPIO      []int            `json:"gpio"`
	Email         json.RawMessage  `json:"email,omitempty"`
}

// LastRun is the decoded lrun record.
type LastRun struct {
	StationID int
	ProgramID int
	Duration  time.Duration
	End       time.Time
}

// ProgramStatus is one decoded ps entry: the program a station is
// scheduled under and its timing.
type ProgramStatus struct {
	StationID int
	ProgramID int
	Remaining time.Duration
	Start     time.Time
}

// DeviceTime returns devt as a time. The firmware reports wall-clock local
// time as if it were UTC, so the result is in UTC.
func (cv *ControllerVariables) DeviceTime() time.Time {
	return time.Unix(cv.Time, 0).UTC()
}

// IsEnabled reports whether station operation is enabled.
func (cv *ControllerVariables) IsEnabled() bool {
	return cv.Enabled == 1
}

// RainDelayActive reports whether a rain delay is in effect.
func (cv *ControllerVariables) RainDelayActive() bool {
	return cv.RainDelay == 1
}

// RainDelayStop returns the time the rain delay ends, or the zero time.
func (cv *ControllerVariables) RainDelayStop() time.Time {
	if cv.RainDelayEnd == 0 {
		return time.Time{}
	}
	return time.Unix(cv.RainDelayEnd, 0).UTC()
}

// Sensor1Active reports whether sensor 1 is triggered.
func (cv *ControllerVariables) Sensor1Active() bool {
	return cv.Sensor1 == 1
}

// Sensor2Active reports whether sensor 2 is triggered. Firmware without a
// second sensor omits sn2.
func (cv *ControllerVariables) Sensor2Active() bool {
	return cv.Sensor2 != nil && *cv.Sensor2 == 1
}

// QueuePaused reports whether the station queue is paused.
func (cv *ControllerVariables) QueuePaused() bool {
	return cv.Paused == 1
}

// ExternalIPAddress decodes eip, which packs the public address into one
// integer with the first octet in the high byte.
func (cv *ControllerVariables) ExternalIPAddress() string {
	ip := cv.ExternalIP
	return FormatIPAddress([4]int{
		int(ip>>24) & 0xff,
		int(ip>>16) & 0xff,
		int(ip>>8) & 0xff,
		int(ip) & 0xff,
	})
}

// LastRun decodes lrun ([station, program, duration, end]).
func (cv *ControllerVariables) LastRun() LastRun {
	return LastRun{
		StationID: int(cv.LastRunRecord[0]),
		ProgramID: int(cv.LastRunRecord[1]),
		Duration:  time.Duration(cv.LastRunRecord[2]) * time.Second,
		End:       time.Unix(cv.LastRunRecord[3], 0).UTC(),
	}
}

// ProgramStatuses decodes ps ([program, remaining, start, gid] per station).
func (cv *ControllerVariables) ProgramStatuses() []ProgramStatus {
	out := make([]ProgramStatus, len(cv.ProgramSlots))
	for i, ps := range cv.ProgramSlots {
		out[i] = ProgramStatus{
			StationID: i,
			ProgramID: int(ps[0]),
			Remaining: time.Duration(ps[1]) * time.Second,
			Start:     time.Unix(ps[2], 0).UTC(),
		}
	}
	return out
}

// StationActive reports whether sid is currently open according to sbits.
func (cv *ControllerVariables) StationActive(sid int) bool {
	return StationBit(cv.StationBits, sid)
}
