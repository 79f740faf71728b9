package navigation

import (
	"sync/atomic"

	"github.com/lixenwraith/parksim/grid"
)

// DistanceCache reuses the distance field until the grid revision changes
type DistanceCache struct {
	field *DistanceField

	// PendingUpdate latches true on MarkDirty, cleared after compute
	PendingUpdate bool

	recomputes atomic.Int64
}

// NewDistanceCache creates an empty cache; the first Get computes
func NewDistanceCache() *DistanceCache {
	return &DistanceCache{PendingUpdate: true}
}

// Get returns the field for g, recomputing when g is a different revision or the cache is dirty
// Returns true as second value if the field was recomputed by this call
func (c *DistanceCache) Get(g *grid.Grid) (*DistanceField, bool) {
	if c.field != nil && !c.PendingUpdate && c.field.Revision == g.Revision() {
		return c.field, false
	}
	c.field = BuildDistanceField(g)
	c.PendingUpdate = false
	c.recomputes.Add(1)
	return c.field, true
}

// MarkDirty forces recomputation on the next Get
func (c *DistanceCache) MarkDirty() {
	c.PendingUpdate = true
}

// Recomputes returns how many times the field has been built
func (c *DistanceCache) Recomputes() int64 {
	return c.recomputes.Load()
}
