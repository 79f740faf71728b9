package engine

import (
	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/parking"
)

// VehicleView is the exported per-vehicle state
type VehicleView struct {
	ID         int                `json:"id"`
	X          int                `json:"x"`
	Y          int                `json:"y"`
	State      State              `json:"state"`
	Target     *core.Point        `json:"target,omitempty"`
	Color      string             `json:"color"`
	Preference parking.Preference `json:"preference"`
	Path       []core.Point       `json:"path,omitempty"`
}

// Analytics summarises facility usage
type Analytics struct {
	TotalParked  int64   `json:"totalParked"`
	TotalExited  int64   `json:"totalExited"`
	Active       int     `json:"active"`
	Occupied     int     `json:"occupied"`
	ParkingCells int     `json:"parkingCells"`
	OccupancyPct float64 `json:"occupancyPct"`
	AvgStayTicks float64 `json:"avgStayTicks"`
}

// Snapshot is the complete observable state after a tick
type Snapshot struct {
	RunID     string            `json:"runId"`
	Tick      int64             `json:"tick"`
	Vehicles  []VehicleView     `json:"vehicles"`
	Occupied  []core.Point      `json:"occupied"`
	Analytics Analytics         `json:"analytics"`
	Events    []Event           `json:"events"`
	Config    config.Simulation `json:"config"`
}

// Count returns how many vehicles are in state st
func (s *Snapshot) Count(st State) int {
	n := 0
	for i := range s.Vehicles {
		if s.Vehicles[i].State == st {
			n++
		}
	}
	return n
}

// EventsOf returns events of the given kind
func (s *Snapshot) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range s.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
