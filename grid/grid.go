package grid

import (
	"sync/atomic"

	"github.com/lixenwraith/parksim/core"
)

var revisionSeq atomic.Uint64

// Grid is an immutable rectangular array of cells, arena-indexed y*width+x
type Grid struct {
	width    int
	height   int
	cells    []Cell
	revision uint64
}

// Empty returns a zero-size grid
func Empty() *Grid {
	return &Grid{revision: revisionSeq.Add(1)}
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Size returns width*height
func (g *Grid) Size() int { return len(g.cells) }

// Revision identifies this grid value; every Build yields a new revision
func (g *Grid) Revision() uint64 { return g.revision }

// In reports whether p lies inside the grid
func (g *Grid) In(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Index returns the flat arena index of p, callers check In first
func (g *Grid) Index(p core.Point) int {
	return p.Y*g.width + p.X
}

// PointAt is the inverse of Index
func (g *Grid) PointAt(idx int) core.Point {
	return core.Point{X: idx % g.width, Y: idx / g.width}
}

// At returns the cell at p, false when out of bounds
func (g *Grid) At(p core.Point) (Cell, bool) {
	if !g.In(p) {
		return Cell{Tile: Wall{}}, false
	}
	return g.cells[g.Index(p)], true
}

// CellAt returns the cell at flat index idx
func (g *Grid) CellAt(idx int) Cell {
	return g.cells[idx]
}

// Tile returns the tile at p, Wall when out of bounds
func (g *Grid) Tile(p core.Point) Tile {
	c, _ := g.At(p)
	if c.Tile == nil {
		return Wall{}
	}
	return c.Tile
}

// Points returns all cells of the given kind in row-major scan order
func (g *Grid) Points(kind Kind) []core.Point {
	var pts []core.Point
	for i, c := range g.cells {
		if c.Kind() == kind {
			pts = append(pts, g.PointAt(i))
		}
	}
	return pts
}

// Count returns the number of cells of the given kind
func (g *Grid) Count(kind Kind) int {
	n := 0
	for _, c := range g.cells {
		if c.Kind() == kind {
			n++
		}
	}
	return n
}

// First returns the first cell of the given kind in scan order
func (g *Grid) First(kind Kind) (core.Point, bool) {
	for i, c := range g.cells {
		if c.Kind() == kind {
			return g.PointAt(i), true
		}
	}
	return core.Point{}, false
}

// SpotType returns the spot type at p, false when p is not a parking cell
func (g *Grid) SpotType(p core.Point) (SpotType, bool) {
	if pk, ok := g.Tile(p).(Parking); ok {
		return pk.Spot, true
	}
	return SpotStandard, false
}

// Edit returns a builder over a copy of this grid
func (g *Grid) Edit() *Builder {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	for i := range cells {
		if cells[i].Mask != nil {
			m := *cells[i].Mask
			cells[i].Mask = &m
		}
	}
	return &Builder{width: g.width, height: g.height, cells: cells}
}

// Builder accumulates cell writes and produces an immutable Grid
type Builder struct {
	width  int
	height int
	cells  []Cell
}

// NewBuilder returns a builder for a width×height grid filled with walls
func NewBuilder(width, height int) *Builder {
	if width <= 0 || height <= 0 {
		return &Builder{}
	}
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i].Tile = Wall{}
	}
	return &Builder{width: width, height: height, cells: cells}
}

func (b *Builder) in(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.width && p.Y < b.height
}

// Set replaces the tile at p, out of bounds is ignored
func (b *Builder) Set(p core.Point, t Tile) *Builder {
	if b.in(p) && t != nil {
		b.cells[p.Y*b.width+p.X].Tile = t
	}
	return b
}

// Fill sets every cell in the inclusive rectangle a..c to t
func (b *Builder) Fill(a, c core.Point, t Tile) *Builder {
	x0, x1 := min(a.X, c.X), max(a.X, c.X)
	y0, y1 := min(a.Y, c.Y), max(a.Y, c.Y)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			b.Set(core.Pt(x, y), t)
		}
	}
	return b
}

// SetEdges replaces the edge walls at p
func (b *Builder) SetEdges(p core.Point, e Edges) *Builder {
	if b.in(p) {
		b.cells[p.Y*b.width+p.X].Edges = e
	}
	return b
}

// AddEdges adds edge walls at p
func (b *Builder) AddEdges(p core.Point, e Edges) *Builder {
	if b.in(p) {
		b.cells[p.Y*b.width+p.X].Edges |= e
	}
	return b
}

// SetMask attaches a sub-cell mask at p, nil removes it
func (b *Builder) SetMask(p core.Point, m *SubMask) *Builder {
	if b.in(p) {
		if m != nil {
			cp := *m
			m = &cp
		}
		b.cells[p.Y*b.width+p.X].Mask = m
	}
	return b
}

// Build snapshots the builder into a new immutable Grid
func (b *Builder) Build() *Grid {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	for i := range cells {
		if cells[i].Mask != nil {
			m := *cells[i].Mask
			cells[i].Mask = &m
		}
	}
	return &Grid{
		width:    b.width,
		height:   b.height,
		cells:    cells,
		revision: revisionSeq.Add(1),
	}
}
