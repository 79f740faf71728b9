package navigation

import (
	"math/rand"
	"testing"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
)

// randomGrid builds a w×h grid with the given wall ratio and up to dests destination cells
func randomGrid(rng *rand.Rand, w, h int, wallRatio float64, dests int) *grid.Grid {
	b := grid.NewBuilder(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := core.Pt(x, y)
			r := rng.Float64()
			switch {
			case r < wallRatio:
				b.Set(p, grid.Wall{})
			case r < wallRatio+0.1:
				b.Set(p, grid.Parking{Spot: grid.SpotType(rng.Intn(5))})
			case r < wallRatio+0.25:
				b.Set(p, grid.FlowPath(core.Direction(rng.Intn(4))))
			default:
				b.Set(p, grid.OpenPath())
			}
		}
	}
	for i := 0; i < dests; i++ {
		b.Set(core.Pt(rng.Intn(w), rng.Intn(h)), grid.Destination{})
	}
	return b.Build()
}

// singleSourceBFS is an independent baseline: plain BFS from one destination
func singleSourceBFS(g *grid.Grid, src core.Point) map[core.Point]int {
	dist := map[core.Point]int{src: 0}
	queue := []core.Point{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range core.Directions {
			np := cur.Step(d)
			if !g.In(np) || g.Tile(np).Kind() == grid.KindWall {
				continue
			}
			if _, seen := dist[np]; seen {
				continue
			}
			dist[np] = dist[cur] + 1
			queue = append(queue, np)
		}
	}
	return dist
}

func TestDistanceFieldMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 60; trial++ {
		w, h := 2+rng.Intn(12), 2+rng.Intn(12)
		g := randomGrid(rng, w, h, 0.3, rng.Intn(4))
		f := BuildDistanceField(g)

		var baselines []map[core.Point]int
		for _, d := range g.Points(grid.KindDestination) {
			baselines = append(baselines, singleSourceBFS(g, d))
		}

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := core.Pt(x, y)
				want := Unreachable
				for _, b := range baselines {
					if d, ok := b[p]; ok && (want == Unreachable || d < want) {
						want = d
					}
				}
				if got := f.At(p); got != want {
					t.Fatalf("trial %d: At(%v) = %d, want %d\n%s", trial, p, got, want, g)
				}
			}
		}
	}
}

func TestDistanceFieldDestinationsAreZero(t *testing.T) {
	g := grid.MustParse(
		"M..#",
		"..#M",
		"####",
	)
	f := BuildDistanceField(g)
	if f.At(core.Pt(0, 0)) != 0 || f.At(core.Pt(3, 1)) != 0 {
		t.Error("destination cells must be 0")
	}
	if f.At(core.Pt(1, 1)) != 2 {
		t.Errorf("At(1,1) = %d, want 2", f.At(core.Pt(1, 1)))
	}
	if f.At(core.Pt(0, 2)) != Unreachable {
		t.Error("wall cell must be unreachable")
	}
	if f.At(core.Pt(-1, 0)) != Unreachable || f.At(core.Pt(4, 0)) != Unreachable {
		t.Error("out of bounds must be unreachable")
	}
	if !f.HasSources() {
		t.Error("HasSources = false with destinations present")
	}
}

func TestDistanceFieldNoDestinations(t *testing.T) {
	g := grid.MustParse("E..X")
	f := BuildDistanceField(g)
	if f.HasSources() {
		t.Error("HasSources = true without destinations")
	}
	for x := 0; x < 4; x++ {
		if f.At(core.Pt(x, 0)) != Unreachable {
			t.Errorf("At(%d,0) = %d, want unreachable", x, f.At(core.Pt(x, 0)))
		}
	}
}

func TestDistanceFieldZeroSize(t *testing.T) {
	f := BuildDistanceField(grid.Empty())
	if f.Width != 0 || f.Height != 0 || f.HasSources() {
		t.Errorf("zero-size field = %+v", f)
	}
	if f.At(core.Pt(0, 0)) != Unreachable {
		t.Error("zero-size At must be unreachable")
	}
	if len(f.Rows()) != 0 {
		t.Error("zero-size Rows must be empty")
	}
}

func TestDistanceCacheRecomputesOnRevision(t *testing.T) {
	g := grid.MustParse("M.P")
	c := NewDistanceCache()

	f1, recomputed := c.Get(g)
	if !recomputed {
		t.Fatal("first Get must compute")
	}
	f2, recomputed := c.Get(g)
	if recomputed || f2 != f1 {
		t.Error("same revision must reuse the cached field")
	}

	g2 := g.Edit().Set(core.Pt(1, 0), grid.Wall{}).Build()
	f3, recomputed := c.Get(g2)
	if !recomputed || f3.At(core.Pt(2, 0)) != Unreachable {
		t.Error("new revision must recompute")
	}

	c.MarkDirty()
	if _, recomputed := c.Get(g2); !recomputed {
		t.Error("MarkDirty must force recompute")
	}
	if c.Recomputes() != 3 {
		t.Errorf("Recomputes = %d, want 3", c.Recomputes())
	}
}
