package sprinkler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/muurk/opensprinkler/internal/transport"
)

// Log type filters accepted by /jl.
const (
	LogTypeSensor1    = "s1"
	LogTypeSensor2    = "s2"
	LogTypeRainDelay  = "rd"
	LogTypeFlow       = "fl"
	LogTypeWaterLevel = "wl"
)

// LogRecord is one /jl entry. Three shapes exist on the wire:
//
//	[pid, sid, dur, end]          station run
//	[pid, sid, dur, end, flow]    station run with flow sensor
//	[0, "type", dur, end]         special event (s1, s2, rd, fl, wl)
//
// For special events EventType is set and StationID is -1.
type LogRecord struct {
	ProgramID int
	StationID int
	EventType string
	Duration  int
	End       int64
	Flow      *float64
}

// LogData is the /jl response.
type LogData []LogRecord

// UnmarshalJSON decodes any of the three log record shapes.
func (r *LogRecord) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("log record: %w", err)
	}
	if len(parts) < 4 {
		return fmt.Errorf("log record: expected at least 4 elements, got %d", len(parts))
	}

	rec := LogRecord{StationID: -1}
	if err := json.Unmarshal(parts[0], &rec.ProgramID); err != nil {
		return fmt.Errorf("log record pid: %w", err)
	}

	// second element is a station index or an event type string
	if err := json.Unmarshal(parts[1], &rec.StationID); err != nil {
		if err := json.Unmarshal(parts[1], &rec.EventType); err != nil {
			return fmt.Errorf("log record sid: %w", err)
		}
		rec.StationID = -1
	}

	if err := json.Unmarshal(parts[2], &rec.Duration); err != nil {
		return fmt.Errorf("log record dur: %w", err)
	}
	if err := json.Unmarshal(parts[3], &rec.End); err != nil {
		return fmt.Errorf("log record end: %w", err)
	}

	if len(parts) > 4 {
		var flow float64
		if err := json.Unmarshal(parts[4], &flow); err != nil {
			return fmt.Errorf("log record flow: %w", err)
		}
		rec.Flow = &flow
	}

	*r = rec
	return nil
}

// MarshalJSON encodes the record back to its wire shape.
func (r LogRecord) MarshalJSON() ([]byte, error) {
	if r.IsSpecialEvent() {
		return json.Marshal([]any{r.ProgramID, r.EventType, r.Duration, r.End})
	}
	tuple := []any{r.ProgramID, r.StationID, r.Duration, r.End}
	if r.Flow != nil {
		tuple = append(tuple, *r.Flow)
	}
	return json.Marshal(tuple)
}

// IsSpecialEvent reports whether the record is a sensor, rain delay, flow or
// water level event rather than a station run.
func (r *LogRecord) IsSpecialEvent() bool {
	return r.EventType != ""
}

// EndTime returns the end timestamp (controller local time, as UTC).
func (r *LogRecord) EndTime() time.Time {
	return time.Unix(r.End, 0).UTC()
}

// StartTime returns End minus Duration.
func (r *LogRecord) StartTime() time.Time {
	return time.Unix(r.End-int64(r.Duration), 0).UTC()
}

// LogQuery selects /jl records. Either Start/End or Hist is normally used;
// the controller decides what happens if both are sent.
type LogQuery struct {
	Start *int64  // epoch seconds
	End   *int64  // epoch seconds
	Hist  *int    // days back from today
	Type  *string // one of the LogType constants
}

// ToQuery encodes the log selection.
func (q LogQuery) ToQuery() transport.Query {
	var query transport.Query
	if q.Start != nil {
		query.AddInt64("start", *q.Start)
	}
	if q.End != nil {
		query.AddInt64("end", *q.End)
	}
	if q.Hist != nil {
		query.AddInt("hist", *q.Hist)
	}
	if q.Type != nil {
		query.Add("type", *q.Type)
	}
	return query
}

// LogRange returns a LogQuery covering [start, end].
func LogRange(start, end time.Time) LogQuery {
	s, e := start.Unix(), end.Unix()
	return LogQuery{Start: &s, End: &e}
}

// LogHistory returns a LogQuery for the last days days.
func LogHistory(days int) LogQuery {
	return LogQuery{Hist: &days}
}

// LogDay selects what /dl deletes: one epoch day or every log file.
type LogDay struct {
	day int64
	all bool
}

// AllLogDays selects every log file.
func AllLogDays() LogDay {
	return LogDay{all: true}
}

// LogDayOf selects the log file for an epoch day (days since 1970-01-01).
func LogDayOf(epochDay int64) LogDay {
	return LogDay{day: epochDay}
}

// LogDayFromTime selects the log file containing t.
func LogDayFromTime(t time.Time) LogDay {
	return LogDay{day: t.Unix() / 86400}
}

// IsAll reports whether every log file is selected.
func (d LogDay) IsAll() bool {
	return d.all
}

// String returns the value sent as day.
func (d LogDay) String() string {
	if d.all {
		return "all"
	}
	return strconv.FormatInt(d.day, 10)
}

// ParseLogDay accepts "all" or an epoch day number.
func ParseLogDay(s string) (LogDay, error) {
	if s == "all" {
		return AllLogDays(), nil
	}
	day, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return LogDay{}, NewValidationError(fmt.Sprintf("log day must be \"all\" or an epoch day, got %q", s))
	}
	return LogDayOf(day), nil
}
