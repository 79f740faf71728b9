package parking

import "github.com/lixenwraith/parksim/grid"

// Preference is the spot type a vehicle asks for
// Only Standard, EV and Disabled are meaningful as preferences
type Preference = grid.SpotType

// compatible maps a preference to the physical spot types it may occupy
var compatible = map[Preference][]grid.SpotType{
	grid.SpotEV:       {grid.SpotEV, grid.SpotStandard},
	grid.SpotDisabled: {grid.SpotDisabled},
	grid.SpotStandard: {grid.SpotStandard, grid.SpotCompact},
}

// Compatible reports whether a vehicle with preference pref may park in a spot of type spot
// Unknown preferences fall back to the Standard row; Reserved spots match nothing
func Compatible(pref Preference, spot grid.SpotType) bool {
	allowed, ok := compatible[pref]
	if !ok {
		allowed = compatible[grid.SpotStandard]
	}
	for _, s := range allowed {
		if s == spot {
			return true
		}
	}
	return false
}
