package parking

import (
	"slices"

	"github.com/samber/lo"

	"github.com/lixenwraith/parksim/core"
)

// Occupancy is the set of parking cells held by parked or en-route vehicles
// Single owner; not safe for concurrent mutation
type Occupancy struct {
	spots map[core.Point]struct{}
}

// NewOccupancy creates an empty set
func NewOccupancy() *Occupancy {
	return &Occupancy{spots: make(map[core.Point]struct{})}
}

// Add marks p occupied, returns false if it already was
func (o *Occupancy) Add(p core.Point) bool {
	if _, ok := o.spots[p]; ok {
		return false
	}
	o.spots[p] = struct{}{}
	return true
}

// Remove frees p, returns false if it was not occupied
func (o *Occupancy) Remove(p core.Point) bool {
	if _, ok := o.spots[p]; !ok {
		return false
	}
	delete(o.spots, p)
	return true
}

// Has reports whether p is occupied
func (o *Occupancy) Has(p core.Point) bool {
	_, ok := o.spots[p]
	return ok
}

// Len returns the number of occupied spots
func (o *Occupancy) Len() int {
	return len(o.spots)
}

// Clear frees every spot
func (o *Occupancy) Clear() {
	clear(o.spots)
}

// Points returns occupied spots in row-major order
func (o *Occupancy) Points() []core.Point {
	pts := lo.Keys(o.spots)
	slices.SortFunc(pts, func(a, b core.Point) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return pts
}

// Retain drops every spot for which keep returns false
func (o *Occupancy) Retain(keep func(core.Point) bool) int {
	dropped := 0
	for p := range o.spots {
		if !keep(p) {
			delete(o.spots, p)
			dropped++
		}
	}
	return dropped
}
