package navigation

import (
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
)

// Unreachable is returned for cells with no path to any destination
const Unreachable = -1

// DistanceField stores hop distance from every cell to the nearest Destination
type DistanceField struct {
	Width, Height int
	Revision      uint64 // Grid revision this field was computed for

	dist    []int // Unreachable for blocked or disconnected cells
	sources int
}

// BuildDistanceField runs a multi-source BFS seeded with all Destination cells
// Only Wall cells are impassable; edge walls and flows do not affect walking distance
func BuildDistanceField(g *grid.Grid) *DistanceField {
	f := &DistanceField{
		Width:    g.Width(),
		Height:   g.Height(),
		Revision: g.Revision(),
	}
	size := g.Size()
	if size == 0 {
		return f
	}

	f.dist = make([]int, size)
	queue := make([]int, 0, size)
	for i := 0; i < size; i++ {
		f.dist[i] = Unreachable
		if g.CellAt(i).Kind() == grid.KindDestination {
			f.dist[i] = 0
			queue = append(queue, i)
		}
	}
	f.sources = len(queue)

	w := f.Width
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		cur := core.Pt(idx%w, idx/w)
		next := f.dist[idx] + 1

		for _, d := range core.Directions {
			np := cur.Step(d)
			if !g.In(np) {
				continue
			}
			nIdx := g.Index(np)
			if g.CellAt(nIdx).Kind() == grid.KindWall {
				continue
			}
			if f.dist[nIdx] == Unreachable || next < f.dist[nIdx] {
				f.dist[nIdx] = next
				queue = append(queue, nIdx)
			}
		}
	}
	return f
}

// HasSources reports whether the grid had at least one Destination cell
func (f *DistanceField) HasSources() bool {
	return f != nil && f.sources > 0
}

// At returns hop distance at p, Unreachable if out of bounds or disconnected
func (f *DistanceField) At(p core.Point) int {
	if f == nil || p.X < 0 || p.Y < 0 || p.X >= f.Width || p.Y >= f.Height || len(f.dist) == 0 {
		return Unreachable
	}
	return f.dist[p.Y*f.Width+p.X]
}

// Rows returns the field as a row-major matrix for export
func (f *DistanceField) Rows() [][]int {
	rows := make([][]int, f.Height)
	for y := 0; y < f.Height; y++ {
		rows[y] = make([]int, f.Width)
		copy(rows[y], f.dist[y*f.Width:(y+1)*f.Width])
	}
	return rows
}
