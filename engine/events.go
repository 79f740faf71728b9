package engine

import "github.com/lixenwraith/parksim/core"

// EventKind names a lifecycle event emitted during a tick
type EventKind string

const (
	EventSpawned       EventKind = "spawned"
	EventParked        EventKind = "parked"
	EventDeparted      EventKind = "departed" // Parking -> Exiting, spot released
	EventExited        EventKind = "exited"
	EventSpawnRejected EventKind = "spawn_rejected"
	EventAbandoned     EventKind = "abandoned" // Dropped after a grid swap left it stranded
)

// Spawn rejection reasons
const (
	ReasonEntryBlocked = "entry_blocked"
	ReasonNoSpot       = "no_spot"
)

// Event is one observable change of the last tick
type Event struct {
	Kind      EventKind   `json:"kind"`
	Tick      int64       `json:"tick"`
	VehicleID int         `json:"vehicleId,omitempty"`
	Pos       core.Point  `json:"pos"`
	Spot      *core.Point `json:"spot,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}
