// Package layout generates seeded demo parking facilities
package layout

import (
	"math/rand"
	"slices"
	"time"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/navigation"
)

// Size limits
const (
	MinWidth  = 8
	MinAisles = 1
	rowStride = 3 // spot row, aisle, spot row
)

type Config struct {
	Width  int
	Aisles int

	// Share of non-disabled spots per type, remainder is standard
	EVRatio       float64
	CompactRatio  float64
	ReservedRatio float64

	// Disabled spots placed on the first row closest to the destination
	Disabled int

	// Chance an aisle cell carries a light (non-blocking) obstruction mask
	MaskRatio float64

	Seed int64 // Optional (0 = Random)
}

// DefaultConfig returns a mid-sized lot
func DefaultConfig() Config {
	return Config{
		Width:         24,
		Aisles:        3,
		EVRatio:       0.1,
		CompactRatio:  0.15,
		ReservedRatio: 0.03,
		Disabled:      2,
		MaskRatio:     0.08,
		Seed:          1,
	}
}

type Result struct {
	Grid         *grid.Grid
	Entry, Exit  core.Point
	Destinations []core.Point
	Mix          map[grid.SpotType]int
}

// Generate builds a facility of horizontal two-way aisles flanked by spot rows
// Layout per aisle k: spot row at 1+3k, aisle at 2+3k, spot row at 3+3k
// Intended for strictFlow=false; only the entry and exit lanes carry flow
func Generate(cfg Config) Result {
	w := max(cfg.Width, MinWidth)
	n := max(cfg.Aisles, MinAisles)
	h := rowStride*n + 2

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	b := grid.NewBuilder(w, h)

	// Destination centred on the top wall
	mid := w / 2
	dests := []core.Point{core.Pt(mid-1, 0), core.Pt(mid, 0)}
	for _, p := range dests {
		b.Set(p, grid.Destination{})
	}

	// Side connectors through every spot row
	b.Fill(core.Pt(1, 1), core.Pt(1, h-2), grid.OpenPath())
	b.Fill(core.Pt(w-2, 1), core.Pt(w-2, h-2), grid.OpenPath())

	var spots []core.Point
	for k := 0; k < n; k++ {
		top, aisle, bottom := 1+rowStride*k, 2+rowStride*k, 3+rowStride*k
		b.Fill(core.Pt(1, aisle), core.Pt(w-2, aisle), grid.OpenPath())
		for x := 2; x <= w-3; x++ {
			spots = append(spots, core.Pt(x, top), core.Pt(x, bottom))
		}

		// Back-to-back rows with the previous aisle get a wall between them
		if k > 0 {
			for x := 2; x <= w-3; x++ {
				b.AddEdges(core.Pt(x, top-1), grid.EdgeSouth)
				b.AddEdges(core.Pt(x, top), grid.EdgeNorth)
			}
		}

		for x := 2; x <= w-3; x++ {
			if rng.Float64() < cfg.MaskRatio {
				b.SetMask(core.Pt(x, aisle), lightMask(rng))
			}
		}
	}

	// One-way lanes: entry on the first aisle from the west, exit on the last aisle to the east
	entry := core.Pt(0, 2)
	exit := core.Pt(w-1, 2+rowStride*(n-1))
	b.Set(entry, grid.Entry{})
	b.Set(entry.Step(core.DirRight), grid.FlowPath(core.DirRight))
	b.Set(exit, grid.Exit{})
	b.Set(exit.Step(core.DirLeft), grid.FlowPath(core.DirRight))

	mix := assignSpotTypes(b, spots, cfg, rng, core.Pt(mid, 0))

	return Result{
		Grid:         b.Build(),
		Entry:        entry,
		Exit:         exit,
		Destinations: dests,
		Mix:          mix,
	}
}

// lightMask obstructs one corner of the cell, well under the blocking threshold
func lightMask(rng *rand.Rand) *grid.SubMask {
	var m grid.SubMask
	ox := rng.Intn(2) * (grid.SubGridSize - 2)
	oy := rng.Intn(2) * (grid.SubGridSize - 2)
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			m.Set(ox+dx, oy+dy, true)
		}
	}
	return &m
}

func assignSpotTypes(b *grid.Builder, spots []core.Point, cfg Config, rng *rand.Rand, anchor core.Point) map[grid.SpotType]int {
	mix := make(map[grid.SpotType]int)

	// Disabled spots go to the front row, nearest the destination first
	front := slices.Clone(spots)
	slices.SortStableFunc(front, func(a, c core.Point) int {
		return a.Manhattan(anchor) - c.Manhattan(anchor)
	})
	disabled := make(map[core.Point]bool)
	for _, p := range front {
		if len(disabled) >= cfg.Disabled {
			break
		}
		if p.Y == 1 {
			disabled[p] = true
		}
	}

	for _, p := range spots {
		st := grid.SpotStandard
		if disabled[p] {
			st = grid.SpotDisabled
		} else {
			r := rng.Float64()
			switch {
			case r < cfg.EVRatio:
				st = grid.SpotEV
			case r < cfg.EVRatio+cfg.CompactRatio:
				st = grid.SpotCompact
			case r < cfg.EVRatio+cfg.CompactRatio+cfg.ReservedRatio:
				st = grid.SpotReserved
			}
		}
		b.Set(p, grid.Parking{Spot: st})
		mix[st]++
	}
	return mix
}

// Reachability counts spots with a legal route from the entry and a legal route on to the exit
func Reachability(g *grid.Grid, strictFlow bool) (reachable, total int) {
	entry, okEntry := g.First(grid.KindEntry)
	exit, okExit := g.First(grid.KindExit)
	router := navigation.NewRouter()
	for _, spot := range g.Points(grid.KindParking) {
		total++
		if !okEntry || !okExit {
			continue
		}
		if len(router.Find(g, entry, spot, strictFlow)) == 0 {
			continue
		}
		if len(router.Find(g, spot, exit, strictFlow)) == 0 {
			continue
		}
		reachable++
	}
	return reachable, total
}
