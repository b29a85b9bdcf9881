package sprinkler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/opensprinkler/internal/transport"
)

func keysWithPrefix(q transport.Query, prefix string) []string {
	var keys []string
	for _, k := range q.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

func value(t *testing.T, q transport.Query, key string) string {
	t.Helper()
	v, ok := q.Get(key)
	require.True(t, ok, "missing %s in %s", key, q.Encode())
	return v
}

func TestControllerVariablesUpdate_EnableAlwaysSent(t *testing.T) {
	q := ControllerVariablesUpdate{}.ToQuery()
	assert.Equal(t, "en=0", q.Encode())

	q = ControllerVariablesUpdate{Enable: true}.ToQuery()
	assert.Equal(t, "en=1", q.Encode())
}

func TestControllerVariablesUpdate_Flags(t *testing.T) {
	q := ControllerVariablesUpdate{
		ResetStations: true,
		Reboot:        true,
		Enable:        true,
		RainDelay:     Int(24),
		RemoteExt:     Int(0),
		APMode:        true,
		Update:        true,
	}.ToQuery()

	assert.Equal(t, "rsn=1&rbt=1&en=1&rd=24&re=0&ap=1&update=1", q.Encode())
}

func TestControllerVariablesUpdate_FalseFlagsOmitted(t *testing.T) {
	q := ControllerVariablesUpdate{RainDelay: Int(0)}.ToQuery()

	assert.False(t, q.Has("rsn"))
	assert.False(t, q.Has("rbt"))
	assert.False(t, q.Has("ap"))
	assert.False(t, q.Has("update"))
	assert.False(t, q.Has("re"))
	assert.Equal(t, "0", value(t, q, "rd"))
	assert.Equal(t, "0", value(t, q, "en"))
}

func TestStationAttributesUpdate_IndexedMaps(t *testing.T) {
	q := StationAttributesUpdate{
		Master1: map[int]int{0: 5, 2: 9},
	}.ToQuery()

	assert.Equal(t, []string{"m0", "m2"}, keysWithPrefix(q, "m"))
	assert.Equal(t, "5", value(t, q, "m0"))
	assert.Equal(t, "9", value(t, q, "m2"))
	assert.Len(t, q, 2)
}

func TestStationAttributesUpdate_AllFields(t *testing.T) {
	u := StationAttributesUpdate{
		Names:            map[int]string{1: "Back Lawn", 0: "Front"},
		Master1:          map[int]int{0: 1},
		Master2:          map[int]int{0: 2},
		IgnoreRain:       map[int]int{1: 3},
		IgnoreSensor1:    map[int]int{0: 4},
		IgnoreSensor2:    map[int]int{0: 5},
		Disabled:         map[int]int{0: 6},
		Special:          map[int]int{0: 7},
		Groups:           map[int]int{3: 255},
		SpecialStationID: Int(4),
		SpecialType:      Int(int(SpecialHTTP)),
		SpecialData:      String("host,80,on,off"),
	}

	q := u.ToQuery()
	assert.Equal(t, []string{
		"s0", "s1", "m0", "n0", "i1", "j0", "k0", "d0", "p0", "g3", "sid", "st", "sd",
	}, q.Keys())
	assert.Equal(t, "Back Lawn", value(t, q, "s1"))
	assert.Equal(t, "255", value(t, q, "g3"))
	assert.Equal(t, "4", value(t, q, "st"))
	assert.False(t, u.IsEmpty())
}

func TestStationAttributesUpdate_Empty(t *testing.T) {
	assert.True(t, StationAttributesUpdate{}.IsEmpty())
	assert.Empty(t, StationAttributesUpdate{Names: map[int]string{}}.ToQuery())
}

func TestStationRun(t *testing.T) {
	tests := []struct {
		name string
		run  StationRun
		want string
	}{
		{
			name: "open sends timer, drops shift",
			run:  StationRun{StationID: 1, Enable: true, Timer: Int(120), Shift: Bool(true)},
			want: "sid=1&en=1&t=120",
		},
		{
			name: "close sends shift, drops timer",
			run:  StationRun{StationID: 1, Enable: false, Timer: Int(120), Shift: Bool(true)},
			want: "sid=1&en=0&ssta=1",
		},
		{
			name: "close without shift",
			run:  StationRun{StationID: 4},
			want: "sid=4&en=0",
		},
		{
			name: "open without timer",
			run:  StationRun{StationID: 0, Enable: true},
			want: "sid=0&en=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.run.ToQuery().Encode())
		})
	}
}

func TestProgramRun(t *testing.T) {
	assert.Equal(t, "pid=3&uwt=1", ProgramRun{ProgramID: 3, UseWeather: true}.ToQuery().Encode())
	assert.Equal(t, "pid=0&uwt=0", ProgramRun{}.ToQuery().Encode())
}

func TestProgramChange_Priority(t *testing.T) {
	t.Run("en wins over everything", func(t *testing.T) {
		q := ProgramChange{ProgramID: 2, Enable: Bool(true), UseWeather: Bool(true), Name: String("x")}.ToQuery()
		assert.Equal(t, []string{"pid", "en"}, q.Keys())
		assert.Equal(t, "1", value(t, q, "en"))
	})

	t.Run("uwt wins over fields", func(t *testing.T) {
		q := ProgramChange{ProgramID: 2, UseWeather: Bool(true), From: Int(10)}.ToQuery()
		assert.Equal(t, []string{"pid", "uwt"}, q.Keys())
	})

	t.Run("disable sends en=0", func(t *testing.T) {
		q := ProgramChange{ProgramID: 0, Enable: Bool(false)}.ToQuery()
		assert.Equal(t, "pid=0&en=0", q.Encode())
	})

	t.Run("fields as present", func(t *testing.T) {
		q := ProgramChange{ProgramID: -1, Name: String("Lawn"), To: Int(EncodeProgramDate(9, 30))}.ToQuery()
		assert.Equal(t, []string{"pid", "name", "to"}, q.Keys())
		assert.Equal(t, "-1", value(t, q, "pid"))
		assert.Equal(t, "318", value(t, q, "to"))
	})
}

func TestProgramChange_ScheduleJSON(t *testing.T) {
	q := ProgramChange{
		ProgramID: 1,
		Schedule: &ProgramSchedule{
			Flag:      3,
			Days0:     127,
			Days1:     0,
			Starts:    [4]int{360, -1, -1, -1},
			Durations: []int{600, 0, 300},
		},
		From: Int(EncodeProgramDate(1, 1)),
	}.ToQuery()

	assert.Equal(t, "[3,127,0,[360,-1,-1,-1],[600,0,300]]", value(t, q, "v"))
	assert.Equal(t, "33", value(t, q, "from"))
	assert.Equal(t, []string{"pid", "v", "from"}, q.Keys())
}

func TestRunOnceProgram(t *testing.T) {
	q := RunOnceProgram{Durations: []int{60, 0, 120}}.ToQuery()
	assert.Equal(t, []string{"t"}, q.Keys())
	assert.Equal(t, "[60,0,120]", value(t, q, "t"))

	q = RunOnceProgram{Durations: []int{30}, Repeat: Int(2), Interval: Int(15), UseWeather: Bool(false)}.ToQuery()
	assert.Equal(t, "t=%5B30%5D&cnt=2&int=15&uwt=0", q.Encode())

	q = RunOnceProgram{}.ToQuery()
	assert.Equal(t, "[]", value(t, q, "t"))
}

func TestQueuePause_Priority(t *testing.T) {
	assert.Equal(t, "repl=60", QueuePause{Duration: Int(30), Replace: Int(60)}.ToQuery().Encode())
	assert.Equal(t, "dur=30", QueuePause{Duration: Int(30)}.ToQuery().Encode())
	assert.Empty(t, QueuePause{}.ToQuery())
}

func TestLogQuery(t *testing.T) {
	assert.Empty(t, LogQuery{}.ToQuery())
	assert.Equal(t, "hist=7", LogHistory(7).ToQuery().Encode())

	// mixing start/end and hist is passed through unchanged
	start, end := int64(1700000000), int64(1700086400)
	q := LogQuery{Start: &start, End: &end, Hist: Int(3), Type: String(LogTypeRainDelay)}.ToQuery()
	assert.Equal(t, "start=1700000000&end=1700086400&hist=3&type=rd", q.Encode())
}
