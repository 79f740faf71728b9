package parking

import (
	"math/rand"
	"testing"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/navigation"
)

func TestCompatibleTable(t *testing.T) {
	all := []grid.SpotType{grid.SpotStandard, grid.SpotCompact, grid.SpotEV, grid.SpotDisabled, grid.SpotReserved}
	tests := []struct {
		pref    Preference
		allowed []grid.SpotType
	}{
		{grid.SpotEV, []grid.SpotType{grid.SpotEV, grid.SpotStandard}},
		{grid.SpotDisabled, []grid.SpotType{grid.SpotDisabled}},
		{grid.SpotStandard, []grid.SpotType{grid.SpotStandard, grid.SpotCompact}},
	}
	for _, tt := range tests {
		t.Run(tt.pref.String(), func(t *testing.T) {
			for _, spot := range all {
				want := false
				for _, a := range tt.allowed {
					if a == spot {
						want = true
					}
				}
				if got := Compatible(tt.pref, spot); got != want {
					t.Errorf("Compatible(%v, %v) = %v, want %v", tt.pref, spot, got, want)
				}
			}
		})
	}
}

// Scenario B: EV vehicle when only a Disabled spot is free gets nothing
func TestSelectEVWithOnlyDisabledFree(t *testing.T) {
	g := grid.MustParse(
		"E.X",
		"e.d",
		"M..",
	)
	occ := NewOccupancy()
	occ.Add(core.Pt(0, 1)) // EV spot taken

	s := NewSelector(rand.New(rand.NewSource(1)))
	if p, ok := s.Select(Request{
		Grid:              g,
		Occupied:          occ,
		Entry:             core.Pt(0, 0),
		Preference:        grid.SpotEV,
		WalkingPreference: 0.5,
		Distances:         navigation.BuildDistanceField(g),
	}); ok {
		t.Errorf("Select = %v, want no assignment", p)
	}
}

func TestSelectNeverOccupiedOrIncompatible(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := NewSelector(rng)
	prefs := []Preference{grid.SpotStandard, grid.SpotEV, grid.SpotDisabled}

	for trial := 0; trial < 300; trial++ {
		b := grid.NewBuilder(6, 6)
		for y := 0; y < 6; y++ {
			for x := 0; x < 6; x++ {
				if rng.Intn(2) == 0 {
					b.Set(core.Pt(x, y), grid.Parking{Spot: grid.SpotType(rng.Intn(5))})
				} else {
					b.Set(core.Pt(x, y), grid.OpenPath())
				}
			}
		}
		b.Set(core.Pt(0, 0), grid.Entry{})
		if rng.Intn(2) == 0 {
			b.Set(core.Pt(5, 5), grid.Destination{})
		}
		g := b.Build()

		occ := NewOccupancy()
		for _, p := range g.Points(grid.KindParking) {
			if rng.Intn(3) == 0 {
				occ.Add(p)
			}
		}
		req := Request{
			Grid:              g,
			Occupied:          occ,
			Entry:             core.Pt(0, 0),
			Preference:        prefs[rng.Intn(len(prefs))],
			WalkingPreference: 0.3 + rng.Float64()*0.7,
			Distances:         navigation.BuildDistanceField(g),
		}
		p, ok := s.Select(req)
		if !ok {
			for _, c := range g.Points(grid.KindParking) {
				st, _ := g.SpotType(c)
				if !occ.Has(c) && Compatible(req.Preference, st) {
					t.Fatalf("trial %d: no selection but %v is free and compatible", trial, c)
				}
			}
			continue
		}
		if occ.Has(p) {
			t.Fatalf("trial %d: selected occupied spot %v", trial, p)
		}
		st, isSpot := g.SpotType(p)
		if !isSpot || !Compatible(req.Preference, st) {
			t.Fatalf("trial %d: selected incompatible %v (%v) for %v", trial, p, st, req.Preference)
		}
	}
}

// zeroSource makes the noise term zero so scores are exact
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func TestSelectWalkingPreferenceWeighting(t *testing.T) {
	// Spot A is next to the entry, spot B is next to the destination
	g := grid.MustParse(
		"EP.......PM",
	)
	field := navigation.BuildDistanceField(g)
	s := NewSelector(rand.New(zeroSource{}))
	req := Request{Grid: g, Occupied: NewOccupancy(), Entry: core.Pt(0, 0), Preference: grid.SpotStandard, Distances: field}

	// High walking preference pulls toward the destination
	req.WalkingPreference = 1.0
	if p, _ := s.Select(req); p != core.Pt(9, 0) {
		t.Errorf("walk=1.0 picked %v, want spot near destination", p)
	}

	// Without a destination signal only entry proximity remains
	req.Distances = nil
	req.WalkingPreference = 0.3
	if p, _ := s.Select(req); p != core.Pt(1, 0) {
		t.Errorf("no field picked %v, want spot near entry", p)
	}
}

func TestSelectTieBreaksInScanOrder(t *testing.T) {
	g := grid.MustParse(
		"P.P",
		".E.",
		"P.P",
	)
	s := NewSelector(rand.New(zeroSource{}))
	p, ok := s.Select(Request{Grid: g, Occupied: NewOccupancy(), Entry: core.Pt(1, 1), Preference: grid.SpotStandard, WalkingPreference: 0.5})
	if !ok || p != core.Pt(0, 0) {
		t.Errorf("tie break picked %v, want first spot in scan order", p)
	}
}

func TestSelectNoDestinationIsNeutral(t *testing.T) {
	g := grid.MustParse("EP.P")
	field := navigation.BuildDistanceField(g)
	s := NewSelector(rand.New(zeroSource{}))
	cands := s.Candidates(Request{Grid: g, Entry: core.Pt(0, 0), Preference: grid.SpotStandard, WalkingPreference: 0.5, Distances: field})
	if len(cands) != 2 {
		t.Fatalf("candidates = %v", cands)
	}
	// Only the entry term contributes: 0.5 * 0.5 * manhattan
	if cands[0].Score != 0.25 || cands[1].Score != 0.75 {
		t.Errorf("scores = %v, want [0.25 0.75]", cands)
	}
}

func TestSelectUnreachableSpotRanksLast(t *testing.T) {
	g := grid.MustParse(
		"EP#P",
		"...M",
	)
	// (1,0) reaches M through the lower row, (3,0) is adjacent to M
	g = g.Edit().Set(core.Pt(3, 1), grid.Wall{}).Set(core.Pt(2, 1), grid.Destination{}).Build()
	// Now (3,0) is boxed in by walls and unreachable for walking
	s := NewSelector(rand.New(zeroSource{}))
	p, ok := s.Select(Request{Grid: g, Occupied: NewOccupancy(), Entry: core.Pt(0, 0), Preference: grid.SpotStandard, WalkingPreference: 1.0, Distances: navigation.BuildDistanceField(g)})
	if !ok || p != core.Pt(1, 0) {
		t.Errorf("picked %v, want reachable spot", p)
	}
}

func TestOccupancySet(t *testing.T) {
	o := NewOccupancy()
	if !o.Add(core.Pt(2, 1)) || o.Add(core.Pt(2, 1)) {
		t.Error("Add must report first insertion only")
	}
	o.Add(core.Pt(5, 0))
	o.Add(core.Pt(0, 1))
	pts := o.Points()
	want := []core.Point{core.Pt(5, 0), core.Pt(0, 1), core.Pt(2, 1)}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("Points = %v, want %v", pts, want)
		}
	}
	if !o.Remove(core.Pt(5, 0)) || o.Remove(core.Pt(5, 0)) {
		t.Error("Remove must report first removal only")
	}
	if dropped := o.Retain(func(p core.Point) bool { return p.X == 0 }); dropped != 1 || o.Len() != 1 {
		t.Errorf("Retain dropped %d, len %d", dropped, o.Len())
	}
	o.Clear()
	if o.Len() != 0 {
		t.Error("Clear left spots behind")
	}
}
