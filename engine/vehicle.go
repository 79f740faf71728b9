package engine

import (
	"github.com/pkg/errors"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/parking"
)

// State is a vehicle lifecycle stage; transitions only move forward
type State uint8

const (
	StateEntering State = iota
	StateParking
	StateExiting
)

var stateNames = [...]string{"entering", "parking", "exiting"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return errors.Errorf("unknown vehicle state %q", b)
}

// DriverProfile is fixed at spawn
// Patience in [0,1], WalkingPreference in [0.3,1] weights destination distance,
// ParkingDurationBias in [0.5,2] scales dwell time
type DriverProfile struct {
	Patience            float64 `json:"patience"`
	WalkingPreference   float64 `json:"walkingPreference"`
	ParkingDurationBias float64 `json:"parkingDurationBias"`
}

// Vehicle is one simulated car
type Vehicle struct {
	ID          int
	Pos         core.Point
	State       State
	Target      *core.Point // nil while parked
	ParkingTime int         // Remaining dwell ticks
	Preference  parking.Preference
	EntryTick   int64
	Profile     DriverProfile
	Color       string
	Path        []core.Point // Remaining route, kept only with showDebug
}

var standardPalette = [...]string{"#4f83cc", "#e0a030", "#7cb342", "#c2185b", "#8d6e63", "#00897b"}

// vehicleColor derives the display tag without touching the random source
func vehicleColor(id int, pref parking.Preference) string {
	switch pref {
	case grid.SpotEV:
		return "#2ecc71"
	case grid.SpotDisabled:
		return "#3498db"
	}
	return standardPalette[id%len(standardPalette)]
}
