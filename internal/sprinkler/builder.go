package sprinkler

import (
	"fmt"
)

type attrField int

const (
	attrMaster1 attrField = iota
	attrMaster2
	attrIgnoreRain
	attrIgnoreSensor1
	attrIgnoreSensor2
	attrDisabled
	attrSpecial
	numAttrFields
)

// StationAttributesBuilder provides a fluent API for building /cs updates.
// It starts from the controller's current /jn snapshot, flips individual
// station bits inside the per-board bytes and sends only the boards that
// changed.
//
// Example usage:
//
//	current, _ := client.GetStationNamesAndAttributes(ctx, pw)
//	update, err := sprinkler.NewStationAttributesBuilder(current).
//	    SetName(3, "Roses").
//	    SetIgnoreRain(3, true).
//	    SetGroup(3, sprinkler.ParallelGroup).
//	    Build()
type StationAttributesBuilder struct {
	current *StationNamesAndAttributes

	bits    [numAttrFields][]int
	changed [numAttrFields]map[int]bool

	names  map[int]string
	groups map[int]int

	// station indexes rejected by setters, reported by Validate
	invalid []int
}

// NewStationAttributesBuilder creates a builder using current as baseline.
// With a nil baseline every changed board is sent with only the bits set
// through the builder.
func NewStationAttributesBuilder(current *StationNamesAndAttributes) *StationAttributesBuilder {
	b := &StationAttributesBuilder{current: current}
	b.Reset()
	return b
}

func (b *StationAttributesBuilder) baseline(f attrField) []int {
	if b.current == nil {
		return nil
	}
	switch f {
	case attrMaster1:
		return b.current.Master1
	case attrMaster2:
		return b.current.Master2
	case attrIgnoreRain:
		return b.current.IgnoreRain
	case attrIgnoreSensor1:
		return b.current.IgnoreSensor1
	case attrIgnoreSensor2:
		return b.current.IgnoreSensor2
	case attrDisabled:
		return b.current.Disabled
	case attrSpecial:
		return b.current.Special
	}
	return nil
}

func (b *StationAttributesBuilder) setBit(f attrField, sid int, on bool) *StationAttributesBuilder {
	if sid < 0 {
		b.invalid = append(b.invalid, sid)
		return b
	}
	b.bits[f] = SetStationBit(b.bits[f], sid, on)
	b.changed[f][sid/StationsPerBoard] = true
	return b
}

// SetName sets the name of station sid.
func (b *StationAttributesBuilder) SetName(sid int, name string) *StationAttributesBuilder {
	if sid < 0 {
		b.invalid = append(b.invalid, sid)
		return b
	}
	b.names[sid] = name
	return b
}

// SetMaster1 sets whether station sid activates master station 1.
func (b *StationAttributesBuilder) SetMaster1(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrMaster1, sid, on)
}

// SetMaster2 sets whether station sid activates master station 2.
func (b *StationAttributesBuilder) SetMaster2(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrMaster2, sid, on)
}

// SetIgnoreRain sets whether station sid ignores rain delay.
func (b *StationAttributesBuilder) SetIgnoreRain(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrIgnoreRain, sid, on)
}

// SetIgnoreSensor1 sets whether station sid ignores sensor 1.
func (b *StationAttributesBuilder) SetIgnoreSensor1(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrIgnoreSensor1, sid, on)
}

// SetIgnoreSensor2 sets whether station sid ignores sensor 2.
func (b *StationAttributesBuilder) SetIgnoreSensor2(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrIgnoreSensor2, sid, on)
}

// SetDisabled enables or disables station sid.
func (b *StationAttributesBuilder) SetDisabled(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrDisabled, sid, on)
}

// SetSpecial marks station sid as special. The special type and data are
// set separately through StationAttributesUpdate.SpecialType/SpecialData.
func (b *StationAttributesBuilder) SetSpecial(sid int, on bool) *StationAttributesBuilder {
	return b.setBit(attrSpecial, sid, on)
}

// SetGroup assigns station sid to a sequential group or ParallelGroup.
func (b *StationAttributesBuilder) SetGroup(sid int, group int) *StationAttributesBuilder {
	if sid < 0 {
		b.invalid = append(b.invalid, sid)
		return b
	}
	b.groups[sid] = group
	return b
}

// HasChanges returns true if any attribute has been set.
func (b *StationAttributesBuilder) HasChanges() bool {
	if len(b.names) > 0 || len(b.groups) > 0 {
		return true
	}
	for f := attrField(0); f < numAttrFields; f++ {
		if len(b.changed[f]) > 0 {
			return true
		}
	}
	return false
}

// Validate checks station indexes, names and groups.
func (b *StationAttributesBuilder) Validate() error {
	if len(b.invalid) > 0 {
		return NewValidationError(fmt.Sprintf("station index must be >= 0, got %d", b.invalid[0]))
	}

	nstations, maxlen := 0, 0
	if b.current != nil {
		nstations = b.current.NumStations()
		maxlen = b.current.MaxNameLength
	}

	for _, sid := range sortedKeys(b.names) {
		if err := ValidateStationIndex(sid, nstations); err != nil {
			return err
		}
		if err := ValidateName(b.names[sid], maxlen); err != nil {
			return fmt.Errorf("station %d: %w", sid, err)
		}
	}
	for _, sid := range sortedKeys(b.groups) {
		if err := ValidateStationIndex(sid, nstations); err != nil {
			return err
		}
		if err := ValidateGroup(b.groups[sid]); err != nil {
			return fmt.Errorf("station %d: %w", sid, err)
		}
	}
	if nstations > 0 {
		for f := attrField(0); f < numAttrFields; f++ {
			for board := range b.changed[f] {
				if board*StationsPerBoard >= nstations {
					return NewValidationError(fmt.Sprintf("board %d out of range (%d stations)", board, nstations))
				}
			}
		}
	}
	return nil
}

// Build creates the update. Only changed boards and stations are included.
func (b *StationAttributesBuilder) Build() (StationAttributesUpdate, error) {
	if err := b.Validate(); err != nil {
		return StationAttributesUpdate{}, err
	}

	var update StationAttributesUpdate
	if len(b.names) > 0 {
		update.Names = make(map[int]string, len(b.names))
		for sid, name := range b.names {
			update.Names[sid] = name
		}
	}
	if len(b.groups) > 0 {
		update.Groups = make(map[int]int, len(b.groups))
		for sid, g := range b.groups {
			update.Groups[sid] = g
		}
	}

	update.Master1 = b.boards(attrMaster1)
	update.Master2 = b.boards(attrMaster2)
	update.IgnoreRain = b.boards(attrIgnoreRain)
	update.IgnoreSensor1 = b.boards(attrIgnoreSensor1)
	update.IgnoreSensor2 = b.boards(attrIgnoreSensor2)
	update.Disabled = b.boards(attrDisabled)
	update.Special = b.boards(attrSpecial)

	return update, nil
}

func (b *StationAttributesBuilder) boards(f attrField) map[int]int {
	if len(b.changed[f]) == 0 {
		return nil
	}
	out := make(map[int]int, len(b.changed[f]))
	for board := range b.changed[f] {
		out[board] = b.bits[f][board]
	}
	return out
}

// Reset clears all changes and restores the baseline.
func (b *StationAttributesBuilder) Reset() *StationAttributesBuilder {
	for f := attrField(0); f < numAttrFields; f++ {
		b.bits[f] = append([]int(nil), b.baseline(f)...)
		b.changed[f] = map[int]bool{}
	}
	b.names = map[int]string{}
	b.groups = map[int]int{}
	b.invalid = nil
	return b
}
