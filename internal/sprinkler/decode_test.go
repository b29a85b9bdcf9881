package sprinkler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIPAddress(t *testing.T) {
	assert.Equal(t, "192.168.1.10", FormatIPAddress([4]int{192, 168, 1, 10}))
	assert.Equal(t, "0.0.0.0", FormatIPAddress([4]int{0, 0, 0, 0}))
	// no range validation
	assert.Equal(t, "300.1.2.3", FormatIPAddress([4]int{300, 1, 2, 3}))
}

func TestDecodeNotificationEvents(t *testing.T) {
	got := DecodeNotificationEvents(0x05)
	assert.Equal(t, NotificationEvents{
		ProgramScheduled:       true,
		FlowSensorStatusUpdate: true,
	}, got)

	all := DecodeNotificationEvents(0xff)
	assert.True(t, all.ProgramScheduled && all.Sensor1StatusUpdate && all.FlowSensorStatusUpdate &&
		all.WeatherUpdate && all.Reboot && all.StationFinish && all.Sensor2StatusUpdate && all.RainDelayUpdate)

	// bits above 7 are ignored
	assert.Equal(t, NotificationEvents{}, DecodeNotificationEvents(0x100))
}

func TestDecodeExtendedNotificationEvents(t *testing.T) {
	assert.Equal(t, ExtendedNotificationEvents{StationStart: true}, DecodeExtendedNotificationEvents(1))
	assert.Equal(t, ExtendedNotificationEvents{FlowAlert: true}, DecodeExtendedNotificationEvents(2))
	assert.Equal(t, ExtendedNotificationEvents{StationStart: true, FlowAlert: true}, DecodeExtendedNotificationEvents(0xff))
}

func TestNotificationEvents_RoundTrip(t *testing.T) {
	for ife := 0; ife < 256; ife++ {
		assert.Equal(t, ife, DecodeNotificationEvents(ife).Bits())
	}
	for ife2 := 0; ife2 < 4; ife2++ {
		assert.Equal(t, ife2, DecodeExtendedNotificationEvents(ife2).Bits())
	}
}

const optionsJSON = `{
	"fwv":220,"fwm":9,"tz":32,"dhcp":1,
	"ip1":192,"ip2":168,"ip3":1,"ip4":22,
	"gw1":192,"gw2":168,"gw3":1,"gw4":1,
	"dns1":8,"dns2":8,"dns3":8,"dns4":8,
	"subn1":255,"subn2":255,"subn3":255,"subn4":0,
	"ntp":1,"ntp1":129,"ntp2":6,"ntp3":15,"ntp4":28,
	"hp0":144,"hp1":31,"hwv":33,"hwt":172,"ext":1,"sdt":0,
	"mas":1,"mas2":0,"mton":0,"mton2":0,"mtof":0,"mtof2":0,
	"sn1t":1,"sn1o":1,"sn1on":0,"sn1of":0,"sn2t":0,"sn2o":1,"sn2on":0,"sn2of":0,
	"wl":85,"den":1,"ipas":0,"devid":0,"con":150,"lit":100,"dim":50,"bst":320,
	"uwt":1,"lg":1,"fpr0":100,"fpr1":0,"re":0,"dexp":0,"mexp":24,"sar":0,"fwire":0,
	"ife":5,"ife2":2
}`

func TestOptions_Decode(t *testing.T) {
	var o Options
	require.NoError(t, json.Unmarshal([]byte(optionsJSON), &o))

	assert.Equal(t, "192.168.1.22", o.StaticIP())
	assert.Equal(t, "192.168.1.1", o.Gateway())
	assert.Equal(t, "8.8.8.8", o.DNS())
	assert.Equal(t, "255.255.255.0", o.Subnet())
	assert.Equal(t, "129.6.15.28", o.NTPServer())
	assert.Equal(t, 8080, o.HTTPPort())
	assert.Equal(t, 100, o.FlowPulseRate())
	assert.Equal(t, "2.2.0(9)", o.FirmwareVersion())
	assert.Equal(t, "UTC-04:00", o.TimeZoneOffset())
	assert.True(t, o.Notifications().FlowSensorStatusUpdate)
	assert.True(t, o.ExtendedNotifications().FlowAlert)
	assert.Equal(t, 85, o.WaterLevel)
}

const controllerJSON = `{
	"devt":1700000000,"nbrd":2,"en":1,"sn1":0,"sn2":1,"rd":1,"rdst":1700086400,
	"sunrise":390,"sunset":1140,"eip":3232235786,"lwc":1699990000,"lswc":1699990000,
	"lupt":1699000000,"lrbtc":99,"lrun":[3,2,600,1699999000],"RSSI":-61,
	"mac":"AA:BB:CC:DD:EE:FF","loc":"42.36,-71.06","jsp":"https://ui.opensprinkler.com/js",
	"wsp":"weather.opensprinkler.com","wto":{"h":100,"t":100},"wtdata":{"wp":"OWM"},
	"wterr":-3,"ifkey":"","mqtt":{},"curr":142,"sbits":[5,0,0],
	"ps":[[0,0,0,0],[99,120,1700000000,0]],"flwrt":30,"flcrt":12,"pq":0,"pt":0,"nq":1,
	"otc":{},"otcs":0,"dname":"Garden","gpio":[],"email":{}
}`

func TestControllerVariables_Decode(t *testing.T) {
	var cv ControllerVariables
	require.NoError(t, json.Unmarshal([]byte(controllerJSON), &cv))

	assert.Equal(t, time.Unix(1700000000, 0).UTC(), cv.DeviceTime())
	assert.True(t, cv.IsEnabled())
	assert.True(t, cv.RainDelayActive())
	assert.Equal(t, time.Unix(1700086400, 0).UTC(), cv.RainDelayStop())
	assert.False(t, cv.Sensor1Active())
	assert.True(t, cv.Sensor2Active())
	assert.Equal(t, RebootPowerOn, cv.RebootCause)
	assert.Equal(t, WeatherRequestTimeout, cv.WeatherError)
	assert.Equal(t, "192.168.1.10", cv.ExternalIPAddress())
	require.NotNil(t, cv.RSSI)
	assert.Equal(t, -61, *cv.RSSI)
	require.NotNil(t, cv.Current)
	assert.Equal(t, 142, *cv.Current)
	assert.JSONEq(t, `{"h":100,"t":100}`, string(cv.WeatherOpts))

	lr := cv.LastRun()
	assert.Equal(t, 3, lr.StationID)
	assert.Equal(t, 2, lr.ProgramID)
	assert.Equal(t, 10*time.Minute, lr.Duration)

	assert.True(t, cv.StationActive(0))
	assert.False(t, cv.StationActive(1))
	assert.True(t, cv.StationActive(2))

	ps := cv.ProgramStatuses()
	require.Len(t, ps, 2)
	assert.Equal(t, 99, ps[1].ProgramID)
	assert.Equal(t, 2*time.Minute, ps[1].Remaining)
}

func TestControllerVariables_OptionalFieldsAbsent(t *testing.T) {
	var cv ControllerVariables
	require.NoError(t, json.Unmarshal([]byte(`{"devt":1,"en":0,"lrbtc":42,"wterr":404}`), &cv))

	assert.Nil(t, cv.Sensor2)
	assert.False(t, cv.Sensor2Active())
	assert.Nil(t, cv.RSSI)
	assert.True(t, cv.RainDelayStop().IsZero())
	assert.Equal(t, "RebootCause(42)", cv.RebootCause.String())
	assert.Equal(t, "WeatherErrorCode(404)", cv.WeatherError.String())
}

func TestEnumValues(t *testing.T) {
	assert.Equal(t, 99, int(RebootPowerOn))
	assert.Equal(t, 10, int(RebootNtpSync))
	assert.Equal(t, -4, int(WeatherReceivedEmptyReturn))
	assert.Equal(t, 6, int(SpecialRemoteOTC))
	assert.Equal(t, "HTTPS", SpecialHTTPS.String())
}

func TestStationBit(t *testing.T) {
	bits := []int{0x05, 0x80}

	assert.True(t, StationBit(bits, 0))
	assert.False(t, StationBit(bits, 1))
	assert.True(t, StationBit(bits, 2))
	assert.True(t, StationBit(bits, 15))
	assert.False(t, StationBit(bits, 16))
	assert.False(t, StationBit(bits, -1))
}

func TestSetStationBit(t *testing.T) {
	bits := []int{0x05}

	out := SetStationBit(bits, 1, true)
	assert.Equal(t, []int{0x07}, out)
	assert.Equal(t, []int{0x05}, bits, "input must not be modified")

	out = SetStationBit(out, 0, false)
	assert.Equal(t, []int{0x06}, out)

	out = SetStationBit(out, 17, true)
	assert.Equal(t, []int{0x06, 0, 0x02}, out)
}

func TestStationNamesAndAttributes_Decode(t *testing.T) {
	data := `{"snames":["Front","Back","","Drip"],"maxlen":32,"masop":[1],"masop2":[0],
		"ignore_rain":[8],"ignore_sn1":[0],"ignore_sn2":[0],"stn_dis":[4],"stn_spe":[0],
		"stn_grp":[0,0,1,255]}`

	var sn StationNamesAndAttributes
	require.NoError(t, json.Unmarshal([]byte(data), &sn))

	assert.Equal(t, 4, sn.NumStations())
	assert.Equal(t, "S03", sn.Name(2))

	st := sn.Station(3)
	assert.Equal(t, "Drip", st.Name)
	assert.True(t, st.IgnoreRain)
	assert.Equal(t, ParallelGroup, st.Group)
	assert.True(t, sn.Station(2).Disabled)
	assert.True(t, sn.Station(0).Master1)
	assert.Equal(t, "P", GroupName(st.Group))
	assert.Equal(t, "B", GroupName(1))
}

func TestStationStatus(t *testing.T) {
	var st StationStatus
	require.NoError(t, json.Unmarshal([]byte(`{"sn":[0,1,0,1],"nstations":16}`), &st))

	assert.Equal(t, []int{1, 3}, st.ActiveStations())
	assert.True(t, st.Active(1))
	assert.False(t, st.Active(40))
	assert.Equal(t, 16, st.NumStations)
}

func TestSpecialStationData(t *testing.T) {
	var d SpecialStationData
	require.NoError(t, json.Unmarshal([]byte(`{"5":{"st":4,"sd":"host,80,/on,/off"},"2":{"st":1,"sd":"51001A0100"}}`), &d))

	assert.Equal(t, []int{2, 5}, d.StationIDs())
	s, ok := d.Station(5)
	require.True(t, ok)
	assert.Equal(t, SpecialHTTP, s.Type)
	_, ok = d.Station(0)
	assert.False(t, ok)
}

func TestProgram_Decode(t *testing.T) {
	data := `{"nprogs":2,"nboards":1,"mnp":40,"mnst":4,"pnsize":32,"pd":[
		[67,127,0,[360,-1,-1,-1],[600,0,300,0,0,0,0,0],"Lawn",[1,33,318]],
		[2,0,0,[16384,0,0,0],[0,900],"Drip"]
	]}`

	var pd ProgramData
	require.NoError(t, json.Unmarshal([]byte(data), &pd))
	require.Len(t, pd.Programs, 2)

	lawn := pd.Programs[0]
	assert.Equal(t, "Lawn", lawn.Name)
	assert.True(t, lawn.Enabled())
	assert.True(t, lawn.UseWeather())
	assert.True(t, lawn.FixedStartTimes())
	assert.Equal(t, ScheduleWeekly, lawn.ScheduleType())
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, lawn.Weekdays())
	assert.Equal(t, 900, lawn.TotalDuration())
	require.NotNil(t, lawn.DateRange)
	assert.True(t, lawn.DateRange.Enabled)
	m, d := DecodeProgramDate(lawn.DateRange.To)
	assert.Equal(t, 9, m)
	assert.Equal(t, 30, d)

	drip := pd.Programs[1]
	assert.False(t, drip.Enabled())
	assert.Nil(t, drip.DateRange)
	assert.Equal(t, "sunrise", FormatStartTime(drip.Starts[0]))
}

func TestProgram_RoundTrip(t *testing.T) {
	in := `[67,127,0,[360,-1,-1,-1],[600,300],"Lawn",[1,33,318]]`
	var p Program
	require.NoError(t, json.Unmarshal([]byte(in), &p))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	sched, err := json.Marshal(p.Schedule())
	require.NoError(t, err)
	assert.JSONEq(t, `[67,127,0,[360,-1,-1,-1],[600,300]]`, string(sched))
}

func TestProgram_DecodeErrors(t *testing.T) {
	var p Program
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"flag":1}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3,"x",[]]`), &p))
}

func TestFormatStartTime(t *testing.T) {
	assert.Equal(t, "06:00", FormatStartTime(360))
	assert.Equal(t, "-", FormatStartTime(-1))
	assert.Equal(t, "sunset", FormatStartTime(1<<13))
	assert.Equal(t, "sunrise+30m", FormatStartTime(1<<14|30))
	assert.Equal(t, "sunset-15m", FormatStartTime(1<<13|1<<12|15))
}

func TestLogRecord_Decode(t *testing.T) {
	data := `[[1,0,600,1700000600],[99,3,120,1700001000,12.5],[0,"rd",3600,1700004000],[0,"s1",60,1700005000]]`

	var logs LogData
	require.NoError(t, json.Unmarshal([]byte(data), &logs))
	require.Len(t, logs, 4)

	assert.Equal(t, LogRecord{ProgramID: 1, StationID: 0, Duration: 600, End: 1700000600}, logs[0])
	assert.False(t, logs[0].IsSpecialEvent())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), logs[0].StartTime())

	require.NotNil(t, logs[1].Flow)
	assert.InDelta(t, 12.5, *logs[1].Flow, 0.001)

	assert.True(t, logs[2].IsSpecialEvent())
	assert.Equal(t, LogTypeRainDelay, logs[2].EventType)
	assert.Equal(t, -1, logs[2].StationID)

	out, err := json.Marshal(logs)
	require.NoError(t, err)
	assert.JSONEq(t, data, string(out))
}

func TestLogRecord_DecodeErrors(t *testing.T) {
	var r LogRecord
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`[1,true,3,4]`), &r))
}

func TestLogDay(t *testing.T) {
	assert.Equal(t, "all", AllLogDays().String())
	assert.True(t, AllLogDays().IsAll())
	assert.Equal(t, "19675", LogDayOf(19675).String())
	assert.Equal(t, "19675", LogDayFromTime(time.Unix(19675*86400+3600, 0)).String())

	d, err := ParseLogDay("all")
	require.NoError(t, err)
	assert.True(t, d.IsAll())

	d, err = ParseLogDay("19000")
	require.NoError(t, err)
	assert.Equal(t, "19000", d.String())

	_, err = ParseLogDay("yesterday")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	// md5("opendoor"), the factory default
	assert.Equal(t, "a6d82bced638de3def1e9bbb4983225c", HashPassword("opendoor"))
	assert.Equal(t, "a6d82bced638de3def1e9bbb4983225c", NormalizePassword("a6d82bced638de3def1e9bbb4983225c"))
	assert.Equal(t, HashPassword("hunter2"), NormalizePassword("hunter2"))
}
