package navigation

import (
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
)

// Legal reports whether a vehicle routing from start to target may move cur -> next
// next must be orthogonally adjacent to cur
func Legal(g *grid.Grid, cur, next, start, target core.Point, strictFlow bool) bool {
	d := core.DirectionBetween(cur, next)
	if d == core.DirNone || !g.In(cur) || !g.In(next) {
		return false
	}
	curCell, _ := g.At(cur)
	nextCell, _ := g.At(next)

	// Flow-as-law on the source cell
	if p, ok := curCell.Tile.(grid.Path); ok {
		if p.Flowing() {
			if d != p.Flow {
				return false
			}
		} else if strictFlow && cur != start {
			return false
		}
	}

	// Entering against a one-way rule; perpendicular flows are allowed
	if p, ok := nextCell.Tile.(grid.Path); ok && p.Flowing() && p.Flow == d.Opposite() {
		return false
	}

	// Edge walls are checked on both sides
	if curCell.Edges.Blocks(d) || nextCell.Edges.Blocks(d.Opposite()) {
		return false
	}

	if nextCell.Mask.Blocked() {
		return false
	}

	return walkable(nextCell.Tile, next, target, strictFlow)
}

func walkable(t grid.Tile, p, target core.Point, strictFlow bool) bool {
	switch v := t.(type) {
	case grid.Entry, grid.Exit:
		return true
	case grid.Parking:
		return p == target
	case grid.Path:
		return v.Flowing() || !strictFlow
	default:
		return false
	}
}

// Router runs breadth-first route searches, reusing its buffers across calls
// Not safe for concurrent use
type Router struct {
	prev  []int32 // Predecessor index, -1 unvisited, self for start
	queue []int32
}

// NewRouter creates a router with empty buffers
func NewRouter() *Router {
	return &Router{}
}

func (r *Router) reset(size int) {
	if cap(r.prev) < size {
		r.prev = make([]int32, size)
		r.queue = make([]int32, 0, size)
	} else {
		r.prev = r.prev[:size]
		r.queue = r.queue[:0]
	}
	for i := range r.prev {
		r.prev[i] = -1
	}
}

// Find returns the shortest legal route from start to target inclusive
// Returns [start] when start == target and nil when no legal route exists
func (r *Router) Find(g *grid.Grid, start, target core.Point, strictFlow bool) []core.Point {
	if g.Size() == 0 || !g.In(start) || !g.In(target) {
		return nil
	}
	if start == target {
		return []core.Point{start}
	}

	r.reset(g.Size())
	startIdx := int32(g.Index(start))
	targetIdx := int32(g.Index(target))
	r.prev[startIdx] = startIdx
	r.queue = append(r.queue, startIdx)

	for head := 0; head < len(r.queue); head++ {
		idx := r.queue[head]
		cur := g.PointAt(int(idx))

		for _, d := range core.Directions {
			next := cur.Step(d)
			if !g.In(next) {
				continue
			}
			nIdx := int32(g.Index(next))
			if r.prev[nIdx] != -1 {
				continue
			}
			if !Legal(g, cur, next, start, target, strictFlow) {
				continue
			}
			r.prev[nIdx] = idx
			if nIdx == targetIdx {
				return r.trace(g, startIdx, targetIdx)
			}
			r.queue = append(r.queue, nIdx)
		}
	}
	return nil
}

func (r *Router) trace(g *grid.Grid, startIdx, targetIdx int32) []core.Point {
	n := 1
	for i := targetIdx; i != startIdx; i = r.prev[i] {
		n++
	}
	route := make([]core.Point, n)
	for i, k := targetIdx, n-1; ; i, k = r.prev[i], k-1 {
		route[k] = g.PointAt(int(i))
		if i == startIdx {
			break
		}
	}
	return route
}

// FindRoute is a one-shot Router.Find
func FindRoute(g *grid.Grid, start, target core.Point, strictFlow bool) []core.Point {
	return NewRouter().Find(g, start, target, strictFlow)
}
