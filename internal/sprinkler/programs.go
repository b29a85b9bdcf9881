package sprinkler

import (
	"encoding/json"
	"fmt"
)

// Program flag bits (first element of a program tuple).
const (
	ProgramFlagEnabled    = 1 << 0
	ProgramFlagUseWeather = 1 << 1
	ProgramFlagOddDays    = 1 << 2
	ProgramFlagEvenDays   = 1 << 3
	ProgramFlagFixedStart = 1 << 6
)

// ScheduleType is encoded in bits 4-5 of the program flag.
type ScheduleType int

const (
	ScheduleWeekly   ScheduleType = 0
	ScheduleSingle   ScheduleType = 2
	ScheduleInterval ScheduleType = 3
)

func (s ScheduleType) String() string {
	switch s {
	case ScheduleWeekly:
		return "weekly"
	case ScheduleSingle:
		return "single run"
	case ScheduleInterval:
		return "interval"
	default:
		return fmt.Sprintf("ScheduleType(%d)", int(s))
	}
}

// ProgramData is the /jp snapshot.
type ProgramData struct {
	NumPrograms   int       `json:"nprogs"`
	NumBoards     int       `json:"nboards"`
	MaxPrograms   int       `json:"mnp"`
	MaxStartTimes int       `json:"mnst"`
	MaxNameLength int       `json:"pnsize"`
	Programs      []Program `json:"pd"`
}

// DateRange is the optional [endr, from, to] element of a program. From and
// To use the (month<<5)+day encoding, see EncodeProgramDate.
type DateRange struct {
	Enabled bool
	From    int
	To      int
}

// Program is one positional pd entry:
//
//	[flag, days0, days1, [start0, start1, start2, start3], [dur...], name, [endr, from, to]]
//
// Older firmware omits the date range.
type Program struct {
	Flag      int
	Days0     int
	Days1     int
	Starts    [4]int
	Durations []int
	Name      string
	DateRange *DateRange
}

// ProgramSchedule is the 5-element program value sent as v to /cp:
// [flag, days0, days1, [4]starts, durations]. Name and date range travel in
// their own parameters.
type ProgramSchedule struct {
	Flag      int
	Days0     int
	Days1     int
	Starts    [4]int
	Durations []int
}

// UnmarshalJSON decodes the positional program tuple.
func (p *Program) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("program: %w", err)
	}
	if len(parts) < 5 {
		return fmt.Errorf("program: expected at least 5 elements, got %d", len(parts))
	}

	var prog Program
	fields := []any{&prog.Flag, &prog.Days0, &prog.Days1, &prog.Starts, &prog.Durations}
	for i, f := range fields {
		if err := json.Unmarshal(parts[i], f); err != nil {
			return fmt.Errorf("program element %d: %w", i, err)
		}
	}

	if len(parts) > 5 {
		if err := json.Unmarshal(parts[5], &prog.Name); err != nil {
			return fmt.Errorf("program name: %w", err)
		}
	}

	if len(parts) > 6 {
		var dr [3]int
		if err := json.Unmarshal(parts[6], &dr); err != nil {
			return fmt.Errorf("program date range: %w", err)
		}
		prog.DateRange = &DateRange{Enabled: dr[0] == 1, From: dr[1], To: dr[2]}
	}

	*p = prog
	return nil
}

// MarshalJSON encodes the program in the firmware's positional form.
func (p Program) MarshalJSON() ([]byte, error) {
	durations := p.Durations
	if durations == nil {
		durations = []int{}
	}
	tuple := []any{p.Flag, p.Days0, p.Days1, p.Starts, durations, p.Name}
	if p.DateRange != nil {
		endr := 0
		if p.DateRange.Enabled {
			endr = 1
		}
		tuple = append(tuple, [3]int{endr, p.DateRange.From, p.DateRange.To})
	}
	return json.Marshal(tuple)
}

// MarshalJSON encodes the schedule as the 5-element array /cp expects.
func (s ProgramSchedule) MarshalJSON() ([]byte, error) {
	durations := s.Durations
	if durations == nil {
		durations = []int{}
	}
	return json.Marshal([]any{s.Flag, s.Days0, s.Days1, s.Starts, durations})
}

// UnmarshalJSON decodes a 5-element schedule array.
func (s *ProgramSchedule) UnmarshalJSON(data []byte) error {
	var p Program
	if err := p.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = p.Schedule()
	return nil
}

// Schedule returns the part of the program sent as v when editing it.
func (p *Program) Schedule() ProgramSchedule {
	return ProgramSchedule{
		Flag:      p.Flag,
		Days0:     p.Days0,
		Days1:     p.Days1,
		Starts:    p.Starts,
		Durations: append([]int(nil), p.Durations...),
	}
}

// Enabled reports whether the program runs on schedule.
func (p *Program) Enabled() bool {
	return p.Flag&ProgramFlagEnabled != 0
}

// UseWeather reports whether the weather adjustment applies.
func (p *Program) UseWeather() bool {
	return p.Flag&ProgramFlagUseWeather != 0
}

// ScheduleType decodes bits 4-5 of the flag.
func (p *Program) ScheduleType() ScheduleType {
	return ScheduleType((p.Flag >> 4) & 0x3)
}

// FixedStartTimes reports whether the four start times are independent
// (true) or start/repeat/interval (false).
func (p *Program) FixedStartTimes() bool {
	return p.Flag&ProgramFlagFixedStart != 0
}

// TotalDuration sums the per-station durations in seconds.
func (p *Program) TotalDuration() int {
	total := 0
	for _, d := range p.Durations {
		total += d
	}
	return total
}

// Weekdays returns the day names a weekly program runs on. days0 bit 0 is
// Monday.
func (p *Program) Weekdays() []string {
	if p.ScheduleType() != ScheduleWeekly {
		return nil
	}
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	var days []string
	for i, n := range names {
		if p.Days0&(1<<i) != 0 {
			days = append(days, n)
		}
	}
	return days
}

// EncodeProgramDate packs a month and day into the from/to encoding.
func EncodeProgramDate(month, day int) int {
	return month<<5 | day
}

// DecodeProgramDate unpacks a from/to value.
func DecodeProgramDate(v int) (month, day int) {
	return v >> 5, v & 0x1f
}

// FormatStartTime renders a start time value. Values with bit 14 or 13 set
// are offsets from sunrise or sunset; otherwise minutes after midnight.
// -1 marks an unused slot.
func FormatStartTime(v int) string {
	if v < 0 {
		return "-"
	}
	const (
		sunriseBit = 1 << 14
		sunsetBit  = 1 << 13
		signBit    = 1 << 12
	)
	var ref string
	switch {
	case v&sunriseBit != 0:
		ref = "sunrise"
	case v&sunsetBit != 0:
		ref = "sunset"
	default:
		return fmt.Sprintf("%02d:%02d", v/60, v%60)
	}
	offset := v & 0x7ff
	if offset == 0 {
		return ref
	}
	sign := "+"
	if v&signBit != 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s%dm", ref, sign, offset)
}
