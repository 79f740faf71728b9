package grid

import "github.com/lixenwraith/parksim/core"

// Edges is a bit set of solid walls on the sides of a cell
type Edges uint8

const (
	EdgeNorth Edges = 1 << iota
	EdgeEast
	EdgeSouth
	EdgeWest
)

// edgeFor maps a travel direction to the side of the cell it crosses
var edgeFor = [core.DirCount]Edges{EdgeNorth, EdgeEast, EdgeSouth, EdgeWest}

// EdgeFor returns the edge crossed when leaving a cell in direction d
func EdgeFor(d core.Direction) Edges {
	if !d.Valid() {
		return 0
	}
	return edgeFor[d]
}

// Blocks reports whether a wall sits on the side faced when travelling in d
func (e Edges) Blocks(d core.Direction) bool {
	return e&EdgeFor(d) != 0
}

// SubGridSize is the side of the fixed sub-cell occupancy grid
const SubGridSize = 4

// SubMask subdivides a cell into SubGridSize×SubGridSize solid/free sub-cells
type SubMask [SubGridSize * SubGridSize]bool

// Solid counts solid sub-cells
func (m *SubMask) Solid() int {
	n := 0
	for _, s := range m {
		if s {
			n++
		}
	}
	return n
}

// Blocked is true when more than half the sub-cells are solid
func (m *SubMask) Blocked() bool {
	if m == nil {
		return false
	}
	return m.Solid()*2 > len(m)
}

// Set marks sub-cell (sx, sy) solid or free, out of range is ignored
func (m *SubMask) Set(sx, sy int, solid bool) {
	if sx < 0 || sy < 0 || sx >= SubGridSize || sy >= SubGridSize {
		return
	}
	m[sy*SubGridSize+sx] = solid
}

// Cell is the atomic map unit
type Cell struct {
	Tile  Tile
	Edges Edges
	Mask  *SubMask // nil when the cell has no sub-cell data
}

// Kind returns the tile kind, treating a missing tile as wall
func (c Cell) Kind() Kind {
	if c.Tile == nil {
		return KindWall
	}
	return c.Tile.Kind()
}
