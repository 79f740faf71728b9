package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/parking"
)

// Dwell and spawn tuning
const (
	dwellBase       = 20.0
	dwellSpread     = 40.0
	spawnRateScale  = 200.0 // spawnRate/spawnRateScale is the per-tick spawn probability
	evShare         = 0.10
	disabledShare   = 0.05
	walkPrefMin     = 0.3
	durationBiasMin = 0.5
	durationBiasMax = 2.0
)

// resolveSeed maps seed 0 to a time-based seed
func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

func newProfile(rng *rand.Rand) DriverProfile {
	return DriverProfile{
		Patience:            rng.Float64(),
		WalkingPreference:   walkPrefMin + (1-walkPrefMin)*rng.Float64(),
		ParkingDurationBias: durationBiasMin + (durationBiasMax-durationBiasMin)*rng.Float64(),
	}
}

func rollPreference(rng *rand.Rand) parking.Preference {
	r := rng.Float64()
	switch {
	case r < evShare:
		return grid.SpotEV
	case r < evShare+disabledShare:
		return grid.SpotDisabled
	default:
		return grid.SpotStandard
	}
}

func rollDwell(rng *rand.Rand, bias float64) int {
	return int(math.Floor((dwellBase + rng.Float64()*dwellSpread) * bias))
}
