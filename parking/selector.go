package parking

import (
	"math/rand"

	"github.com/samber/lo"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/navigation"
)

// Scoring weights
const (
	mallWeightScale  = 2.0
	entryWeightScale = 0.5
	noiseRange       = 10.0
	noiseWeight      = 0.2
)

// Request describes one spot search
type Request struct {
	Grid              *grid.Grid
	Occupied          *Occupancy
	Entry             core.Point
	Preference        Preference
	WalkingPreference float64
	Distances         *navigation.DistanceField // nil for no walking-distance signal
}

// Candidate is a scored spot, exposed for debugging
type Candidate struct {
	Spot  core.Point `json:"spot"`
	Score float64    `json:"score"`
}

// Selector picks the best free compatible spot for an arriving vehicle
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector drawing score noise from rng
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Candidates scores every free compatible spot in scan order
func (s *Selector) Candidates(req Request) []Candidate {
	g := req.Grid
	spots := lo.Filter(g.Points(grid.KindParking), func(p core.Point, _ int) bool {
		if req.Occupied != nil && req.Occupied.Has(p) {
			return false
		}
		st, _ := g.SpotType(p)
		return Compatible(req.Preference, st)
	})

	wMall := mallWeightScale * req.WalkingPreference
	wEntry := entryWeightScale * (1 - req.WalkingPreference)
	useField := req.Distances.HasSources()
	unreachable := float64(g.Size())

	return lo.Map(spots, func(p core.Point, _ int) Candidate {
		dist := 0.0
		if useField {
			if d := req.Distances.At(p); d == navigation.Unreachable {
				dist = unreachable
			} else {
				dist = float64(d)
			}
		}
		noise := s.rng.Float64() * noiseRange
		score := dist*wMall + float64(p.Manhattan(req.Entry))*wEntry + noise*noiseWeight
		return Candidate{Spot: p, Score: score}
	})
}

// Select returns the lowest scoring candidate, earliest in scan order on ties
func (s *Selector) Select(req Request) (core.Point, bool) {
	cands := s.Candidates(req)
	if len(cands) == 0 {
		return core.Point{}, false
	}
	best := lo.MinBy(cands, func(a, b Candidate) bool {
		return a.Score < b.Score
	})
	return best.Spot, true
}
