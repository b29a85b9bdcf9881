package sprinkler

import (
	"fmt"
	"sort"
	"strconv"
)

// StationsPerBoard is the number of stations addressed by one bit-field byte.
const StationsPerBoard = 8

// ParallelGroup is the stn_grp value for stations that run in parallel
// instead of in a sequential group.
const ParallelGroup = 255

// StationNamesAndAttributes is the /jn snapshot. Each attribute slice holds
// one byte per 8-station board; bit n of byte b refers to station b*8+n.
type StationNamesAndAttributes struct {
	Names         []string `json:"snames"`
	MaxNameLength int      `json:"maxlen"`
	Master1       []int    `json:"masop"`
	Master2       []int    `json:"masop2"`
	IgnoreRain    []int    `json:"ignore_rain"`
	IgnoreSensor1 []int    `json:"ignore_sn1"`
	IgnoreSensor2 []int    `json:"ignore_sn2"`
	Disabled      []int    `json:"stn_dis"`
	Special       []int    `json:"stn_spe"`
	Groups        []int    `json:"stn_grp"`
}

// StationBit reports whether the bit for station sid is set in a per-board
// bit field. Stations beyond the end of bits read as unset.
func StationBit(bits []int, sid int) bool {
	if sid < 0 {
		return false
	}
	board := sid / StationsPerBoard
	if board >= len(bits) {
		return false
	}
	return bits[board]&(1<<(sid%StationsPerBoard)) != 0
}

// SetStationBit returns a copy of bits with the bit for sid set or cleared,
// grown with zero bytes if sid lies beyond the last board.
func SetStationBit(bits []int, sid int, on bool) []int {
	board := sid / StationsPerBoard
	size := len(bits)
	if board >= size {
		size = board + 1
	}
	out := make([]int, size)
	copy(out, bits)

	mask := 1 << (sid % StationsPerBoard)
	if on {
		out[board] |= mask
	} else {
		out[board] &^= mask
	}
	return out
}

// NumStations returns the number of named stations.
func (s *StationNamesAndAttributes) NumStations() int {
	return len(s.Names)
}

// Name returns the name of station sid, or "S<nn>" when unnamed.
func (s *StationNamesAndAttributes) Name(sid int) string {
	if sid >= 0 && sid < len(s.Names) && s.Names[sid] != "" {
		return s.Names[sid]
	}
	return fmt.Sprintf("S%02d", sid+1)
}

// StationAttributes is the decoded attribute set of one station.
type StationAttributes struct {
	StationID     int
	Name          string
	Master1       bool
	Master2       bool
	IgnoreRain    bool
	IgnoreSensor1 bool
	IgnoreSensor2 bool
	Disabled      bool
	Special       bool
	Group         int
}

// Station decodes every attribute of station sid.
func (s *StationNamesAndAttributes) Station(sid int) StationAttributes {
	group := 0
	if sid >= 0 && sid < len(s.Groups) {
		group = s.Groups[sid]
	}
	return StationAttributes{
		StationID:     sid,
		Name:          s.Name(sid),
		Master1:       StationBit(s.Master1, sid),
		Master2:       StationBit(s.Master2, sid),
		IgnoreRain:    StationBit(s.IgnoreRain, sid),
		IgnoreSensor1: StationBit(s.IgnoreSensor1, sid),
		IgnoreSensor2: StationBit(s.IgnoreSensor2, sid),
		Disabled:      StationBit(s.Disabled, sid),
		Special:       StationBit(s.Special, sid),
		Group:         group,
	}
}

// GroupName renders a stn_grp value: "A".."Z" style letters for sequential
// groups and "P" for parallel.
func GroupName(group int) string {
	if group == ParallelGroup {
		return "P"
	}
	if group >= 0 && group < 26 {
		return string(rune('A' + group))
	}
	return strconv.Itoa(group)
}

// StationStatus is the /js snapshot: one on/off value per station.
type StationStatus struct {
	Status      []int `json:"sn"`
	NumStations int   `json:"nstations"`
}

// Active reports whether station sid is open.
func (s *StationStatus) Active(sid int) bool {
	return sid >= 0 && sid < len(s.Status) && s.Status[sid] == 1
}

// ActiveStations returns the indexes of all open stations.
func (s *StationStatus) ActiveStations() []int {
	var active []int
	for sid, v := range s.Status {
		if v == 1 {
			active = append(active, sid)
		}
	}
	return active
}

// SpecialStationType identifies how a special station is driven (st).
type SpecialStationType int

const (
	SpecialStandard  SpecialStationType = 0
	SpecialRF        SpecialStationType = 1
	SpecialRemoteIP  SpecialStationType = 2
	SpecialGPIO      SpecialStationType = 3
	SpecialHTTP      SpecialStationType = 4
	SpecialHTTPS     SpecialStationType = 5
	SpecialRemoteOTC SpecialStationType = 6
)

func (t SpecialStationType) String() string {
	switch t {
	case SpecialStandard:
		return "Standard"
	case SpecialRF:
		return "RF"
	case SpecialRemoteIP:
		return "Remote (IP)"
	case SpecialGPIO:
		return "GPIO"
	case SpecialHTTP:
		return "HTTP"
	case SpecialHTTPS:
		return "HTTPS"
	case SpecialRemoteOTC:
		return "Remote (OTC)"
	default:
		return fmt.Sprintf("SpecialStationType(%d)", int(t))
	}
}

// SpecialStation is one /je entry. The format of Data depends on Type.
type SpecialStation struct {
	Type SpecialStationType `json:"st"`
	Data string             `json:"sd"`
}

// SpecialStationData is the /je snapshot keyed by station index.
type SpecialStationData map[string]SpecialStation

// Station returns the special station entry for sid.
func (d SpecialStationData) Station(sid int) (SpecialStation, bool) {
	s, ok := d[strconv.Itoa(sid)]
	return s, ok
}

// StationIDs returns the numeric station indexes in ascending order.
// Keys that are not integers are skipped.
func (d SpecialStationData) StationIDs() []int {
	ids := make([]int, 0, len(d))
	for k := range d {
		if id, err := strconv.Atoi(k); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
