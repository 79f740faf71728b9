package grid

import (
	"github.com/pkg/errors"

	"github.com/lixenwraith/parksim/core"
)

// Kind tags the tile variant for switches that only need the type
type Kind uint8

const (
	KindWall Kind = iota
	KindPath
	KindParking
	KindEntry
	KindExit
	KindDestination
	kindCount
)

var kindNames = [kindCount]string{"wall", "path", "parking", "entry", "exit", "destination"}

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// SpotType classifies a parking cell
type SpotType uint8

const (
	SpotStandard SpotType = iota
	SpotCompact
	SpotEV
	SpotDisabled
	SpotReserved
	spotTypeCount
)

var spotNames = [spotTypeCount]string{"standard", "compact", "ev", "disabled", "reserved"}

func (s SpotType) String() string {
	if s >= spotTypeCount {
		return "unknown"
	}
	return spotNames[s]
}

// ParseSpotType is the inverse of SpotType.String
func ParseSpotType(s string) (SpotType, bool) {
	for i, name := range spotNames {
		if name == s {
			return SpotType(i), true
		}
	}
	return SpotStandard, false
}

// MarshalText implements encoding.TextMarshaler
func (s SpotType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *SpotType) UnmarshalText(b []byte) error {
	st, ok := ParseSpotType(string(b))
	if !ok {
		return errors.Errorf("unknown spot type %q", b)
	}
	*s = st
	return nil
}

// Tile is the sealed sum of cell variants
// Only the variant that needs an attribute carries it
type Tile interface {
	Kind() Kind
	isTile()
}

// Wall blocks movement and walking distance
type Wall struct{}

// Path is a drivable cell, Flow is DirNone when no one-way rule is active
type Path struct {
	Flow core.Direction
}

// Parking is a spot a vehicle may only enter when it is the vehicle's target
type Parking struct {
	Spot SpotType
}

// Entry is where vehicles spawn
type Entry struct{}

// Exit is where exiting vehicles leave the facility
type Exit struct{}

// Destination is the pedestrian goal used for walking distance
type Destination struct{}

func (Wall) Kind() Kind        { return KindWall }
func (Path) Kind() Kind        { return KindPath }
func (Parking) Kind() Kind     { return KindParking }
func (Entry) Kind() Kind       { return KindEntry }
func (Exit) Kind() Kind        { return KindExit }
func (Destination) Kind() Kind { return KindDestination }

func (Wall) isTile()        {}
func (Path) isTile()        {}
func (Parking) isTile()     {}
func (Entry) isTile()       {}
func (Exit) isTile()        {}
func (Destination) isTile() {}

// Flowing reports whether the path carries an active flow rotation
func (p Path) Flowing() bool {
	return p.Flow.Valid()
}

// FlowPath returns a path with the given flow direction
func FlowPath(d core.Direction) Path {
	return Path{Flow: d}
}

// OpenPath returns a path without flow
func OpenPath() Path {
	return Path{Flow: core.DirNone}
}
