package sprinkler

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/muurk/opensprinkler/internal/transport"
)

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// ControllerVariablesUpdate holds the /cv parameters.
//
// The boolean actions are sent only when true. Enable is the exception: it
// is always sent, so a zero-value update disables station operation.
type ControllerVariablesUpdate struct {
	ResetStations bool // rsn: stop all stations
	Reboot        bool // rbt
	Enable        bool // en: always sent as 1 or 0
	RainDelay     *int // rd: hours, 0 clears
	RemoteExt     *int // re: remote extension mode
	APMode        bool // ap: reset to AP mode
	Update        bool // update: trigger firmware update
}

// ToQuery encodes the update.
func (u ControllerVariablesUpdate) ToQuery() transport.Query {
	var q transport.Query
	q.AddFlag("rsn", u.ResetStations)
	q.AddFlag("rbt", u.Reboot)
	q.AddBit("en", u.Enable)
	if u.RainDelay != nil {
		q.AddInt("rd", *u.RainDelay)
	}
	if u.RemoteExt != nil {
		q.AddInt("re", *u.RemoteExt)
	}
	q.AddFlag("ap", u.APMode)
	q.AddFlag("update", u.Update)
	return q
}

// StationAttributesUpdate holds the /cs parameters. Each map is keyed by
// station index (Names, Groups) or board index (the bit fields) and is
// encoded as one <letter><index> parameter per entry.
type StationAttributesUpdate struct {
	Names         map[int]string // s
	Master1       map[int]int    // m
	Master2       map[int]int    // n
	IgnoreRain    map[int]int    // i
	IgnoreSensor1 map[int]int    // j
	IgnoreSensor2 map[int]int    // k
	Disabled      map[int]int    // d
	Special       map[int]int    // p
	Groups        map[int]int    // g

	SpecialStationID *int    // sid
	SpecialType      *int    // st
	SpecialData      *string // sd
}

// ToQuery encodes the update. Entries of each map are emitted in ascending
// index order.
func (u StationAttributesUpdate) ToQuery() transport.Query {
	var q transport.Query
	for _, idx := range sortedKeys(u.Names) {
		q.Add("s"+strconv.Itoa(idx), u.Names[idx])
	}
	addIndexed(&q, "m", u.Master1)
	addIndexed(&q, "n", u.Master2)
	addIndexed(&q, "i", u.IgnoreRain)
	addIndexed(&q, "j", u.IgnoreSensor1)
	addIndexed(&q, "k", u.IgnoreSensor2)
	addIndexed(&q, "d", u.Disabled)
	addIndexed(&q, "p", u.Special)
	addIndexed(&q, "g", u.Groups)
	if u.SpecialStationID != nil {
		q.AddInt("sid", *u.SpecialStationID)
	}
	if u.SpecialType != nil {
		q.AddInt("st", *u.SpecialType)
	}
	if u.SpecialData != nil {
		q.Add("sd", *u.SpecialData)
	}
	return q
}

// IsEmpty reports whether the update would change nothing.
func (u StationAttributesUpdate) IsEmpty() bool {
	return len(u.ToQuery()) == 0
}

func addIndexed(q *transport.Query, letter string, m map[int]int) {
	for _, idx := range sortedKeys(m) {
		q.AddInt(letter+strconv.Itoa(idx), m[idx])
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// StationRun holds the /cm parameters.
type StationRun struct {
	StationID int
	Enable    bool  // en: 1 opens the station, 0 closes it
	Timer     *int  // t: seconds, sent only when Enable is true
	Shift     *bool // ssta: shift remaining stations in the group, sent only when Enable is false
}

// ToQuery encodes the run. Timer and Shift are dropped when they do not
// apply to the direction given by Enable.
func (r StationRun) ToQuery() transport.Query {
	var q transport.Query
	q.AddInt("sid", r.StationID)
	q.AddBit("en", r.Enable)
	if r.Enable && r.Timer != nil {
		q.AddInt("t", *r.Timer)
	}
	if !r.Enable && r.Shift != nil {
		q.AddBit("ssta", *r.Shift)
	}
	return q
}

// ProgramRun holds the /mp parameters.
type ProgramRun struct {
	ProgramID  int
	UseWeather bool
}

// ToQuery encodes the run.
func (r ProgramRun) ToQuery() transport.Query {
	var q transport.Query
	q.AddInt("pid", r.ProgramID)
	q.AddBit("uwt", r.UseWeather)
	return q
}

// ProgramChange holds the /cp parameters. ProgramID -1 adds a new program.
//
// The firmware treats en and uwt as standalone toggles: when Enable is set
// only pid and en are sent, otherwise when UseWeather is set only pid and
// uwt are sent. The remaining fields are sent only when neither toggle is
// set.
type ProgramChange struct {
	ProgramID  int
	Enable     *bool
	UseWeather *bool
	Name       *string
	Schedule   *ProgramSchedule
	From       *int
	To         *int
}

// ToQuery encodes the change.
func (c ProgramChange) ToQuery() transport.Query {
	var q transport.Query
	q.AddInt("pid", c.ProgramID)

	switch {
	case c.Enable != nil:
		q.AddBit("en", *c.Enable)
	case c.UseWeather != nil:
		q.AddBit("uwt", *c.UseWeather)
	default:
		if c.Name != nil {
			q.Add("name", *c.Name)
		}
		if c.Schedule != nil {
			v, _ := json.Marshal(c.Schedule)
			q.Add("v", string(v))
		}
		if c.From != nil {
			q.AddInt("from", *c.From)
		}
		if c.To != nil {
			q.AddInt("to", *c.To)
		}
	}
	return q
}

// RunOnceProgram holds the /cr parameters.
type RunOnceProgram struct {
	Durations  []int // t: seconds per station, always sent
	Repeat     *int  // cnt
	Interval   *int  // int: minutes between repeats
	UseWeather *bool // uwt
}

// ToQuery encodes the run-once program. Durations are sent as a JSON array.
func (r RunOnceProgram) ToQuery() transport.Query {
	durations := r.Durations
	if durations == nil {
		durations = []int{}
	}
	t, _ := json.Marshal(durations)

	var q transport.Query
	q.Add("t", string(t))
	if r.Repeat != nil {
		q.AddInt("cnt", *r.Repeat)
	}
	if r.Interval != nil {
		q.AddInt("int", *r.Interval)
	}
	if r.UseWeather != nil {
		q.AddBit("uwt", *r.UseWeather)
	}
	return q
}

// QueuePause holds the /pq parameters. Replace takes priority over Duration.
// With neither set the controller toggles the pause state.
type QueuePause struct {
	Duration *int // dur: seconds
	Replace  *int // repl: replace the current pause, seconds
}

// ToQuery encodes the pause.
func (p QueuePause) ToQuery() transport.Query {
	var q transport.Query
	switch {
	case p.Replace != nil:
		q.AddInt("repl", *p.Replace)
	case p.Duration != nil:
		q.AddInt("dur", *p.Duration)
	}
	return q
}
