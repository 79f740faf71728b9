package engine

import (
	"io"
	"math/rand"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/navigation"
	"github.com/lixenwraith/parksim/parking"
	"github.com/lixenwraith/parksim/status"
)

// Simulation advances vehicle lifecycles over a facility grid one tick at a time
// Not safe for concurrent use; the Scheduler serialises access
type Simulation struct {
	log *logrus.Entry

	grid    *grid.Grid
	exit    core.Point
	hasExit bool

	cfg  config.Simulation
	seed int64
	rng  *rand.Rand

	selector  *parking.Selector
	router    *navigation.Router
	distances *navigation.DistanceCache
	occupied  *parking.Occupancy

	vehicles []*Vehicle
	nextID   int
	tick     int64
	runID    string
	events   []Event

	totalParked int64
	totalExited int64
	stayTicks   int64

	// Cached metric pointers
	statusReg         *status.Registry
	statTicks         *atomic.Int64
	statSpawned       *atomic.Int64
	statParked        *atomic.Int64
	statExited        *atomic.Int64
	statActive        *atomic.Int64
	statRejectedEntry *atomic.Int64
	statRejectedSpot  *atomic.Int64
	statStalled       *atomic.Int64
	statRecomputes    *atomic.Int64
	statOccupancy     *status.AtomicFloat
	statAvgStay       *status.AtomicFloat
	statPaused        *atomic.Bool
	statStrict        *atomic.Bool
	statRunID         *status.AtomicString
}

// Option configures a Simulation
type Option func(*Simulation)

// WithLogger sets the structured logger
func WithLogger(l *logrus.Entry) Option {
	return func(s *Simulation) { s.log = l }
}

// WithRegistry publishes metrics into reg instead of a private registry
func WithRegistry(reg *status.Registry) Option {
	return func(s *Simulation) { s.statusReg = reg }
}

// New creates a simulation over g; a nil grid is treated as zero-size
func New(g *grid.Grid, cfg config.Simulation, opts ...Option) *Simulation {
	if g == nil {
		g = grid.Empty()
	}
	s := &Simulation{
		cfg:       cfg,
		router:    navigation.NewRouter(),
		distances: navigation.NewDistanceCache(),
		occupied:  parking.NewOccupancy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = logrus.NewEntry(l)
	}
	if s.statusReg == nil {
		s.statusReg = status.NewRegistry()
	}
	s.bindMetrics()
	s.setGrid(g)
	s.restart()
	return s
}

func (s *Simulation) bindMetrics() {
	reg := s.statusReg
	s.statTicks = reg.Ints.Get(status.KeyTicks)
	s.statSpawned = reg.Ints.Get(status.KeySpawned)
	s.statParked = reg.Ints.Get(status.KeyParkedTotal)
	s.statExited = reg.Ints.Get(status.KeyExitedTotal)
	s.statActive = reg.Ints.Get(status.KeyActive)
	s.statRejectedEntry = reg.Ints.Get(status.KeyRejectedEntry)
	s.statRejectedSpot = reg.Ints.Get(status.KeyRejectedNoSpot)
	s.statStalled = reg.Ints.Get(status.KeyRouteStalled)
	s.statRecomputes = reg.Ints.Get(status.KeyDistanceRecomputes)
	s.statOccupancy = reg.Floats.Get(status.KeyOccupancyPct)
	s.statAvgStay = reg.Floats.Get(status.KeyAvgStayTicks)
	s.statPaused = reg.Bools.Get(status.KeyPaused)
	s.statStrict = reg.Bools.Get(status.KeyStrictFlow)
	s.statRunID = reg.Strings.Get(status.KeyRunID)
}

// restart begins a fresh run: new id, reseeded source, no vehicles
func (s *Simulation) restart() {
	s.seed = resolveSeed(s.cfg.Seed)
	s.rng = rand.New(rand.NewSource(s.seed))
	s.selector = parking.NewSelector(s.rng)
	s.runID = uuid.NewString()
	s.vehicles = nil
	s.occupied.Clear()
	s.nextID = 0
	s.tick = 0
	s.events = nil
	s.totalParked = 0
	s.totalExited = 0
	s.stayTicks = 0

	s.statusReg.Zero()
	s.statRecomputes.Store(s.distances.Recomputes())
	s.statPaused.Store(s.cfg.IsPaused)
	s.statStrict.Store(s.cfg.StrictFlow)
	s.statRunID.Store(s.runID)

	s.log = s.log.WithField("run", s.runID)
	s.log.WithField("seed", s.seed).Info("simulation started")
}

// Reset clears vehicles, occupancy and counters and reseeds from the config
func (s *Simulation) Reset() {
	s.restart()
}

// RunID identifies the current run
func (s *Simulation) RunID() string { return s.runID }

// Seed returns the effective seed of the current run
func (s *Simulation) Seed() int64 { return s.seed }

// TickCount returns the number of completed ticks
func (s *Simulation) TickCount() int64 { return s.tick }

// Grid returns the current facility grid
func (s *Simulation) Grid() *grid.Grid { return s.grid }

// Config returns the current configuration
func (s *Simulation) Config() config.Simulation { return s.cfg }

// Registry returns the metrics registry
func (s *Simulation) Registry() *status.Registry { return s.statusReg }

// Vehicles returns the active vehicles; callers must not mutate them
func (s *Simulation) Vehicles() []*Vehicle { return s.vehicles }

// Occupied returns the occupancy set; callers must not mutate it
func (s *Simulation) Occupied() *parking.Occupancy { return s.occupied }

// Events returns the events of the last tick
func (s *Simulation) Events() []Event { return s.events }

// Distances returns the distance field for the current grid
func (s *Simulation) Distances() *navigation.DistanceField {
	field, recomputed := s.distances.Get(s.grid)
	if recomputed {
		s.statRecomputes.Store(s.distances.Recomputes())
	}
	return field
}

// SetConfig applies cfg; a changed seed takes effect on the next Reset
func (s *Simulation) SetConfig(cfg config.Simulation) {
	s.cfg = cfg
	s.statPaused.Store(cfg.IsPaused)
	s.statStrict.Store(cfg.StrictFlow)
	if !cfg.ShowDebug {
		for _, v := range s.vehicles {
			v.Path = nil
		}
	}
	s.log.WithFields(logrus.Fields{
		"timeScale":  cfg.TimeScale,
		"spawnRate":  cfg.SpawnRate,
		"strictFlow": cfg.StrictFlow,
		"paused":     cfg.IsPaused,
	}).Info("config updated")
}

func (s *Simulation) setGrid(g *grid.Grid) {
	s.grid = g
	s.exit, s.hasExit = g.First(grid.KindExit)
}

// SetGrid swaps the facility between ticks
// Reservations on cells that are no longer Parking are dropped: entering vehicles are
// reassigned or abandoned, parked vehicles start exiting
func (s *Simulation) SetGrid(g *grid.Grid) {
	if g == nil {
		g = grid.Empty()
	}
	s.setGrid(g)
	s.events = s.events[:0]

	isSpot := func(p core.Point) bool { return g.Tile(p).Kind() == grid.KindParking }
	dropped := s.occupied.Retain(isSpot)

	kept := s.vehicles[:0]
	for _, v := range s.vehicles {
		if !g.In(v.Pos) || g.Tile(v.Pos).Kind() == grid.KindWall {
			s.abandon(v)
			continue
		}
		switch v.State {
		case StateEntering:
			if isSpot(*v.Target) {
				break
			}
			spot, ok := s.selector.Select(parking.Request{
				Grid:              g,
				Occupied:          s.occupied,
				Entry:             v.Pos,
				Preference:        v.Preference,
				WalkingPreference: v.Profile.WalkingPreference,
				Distances:         s.Distances(),
			})
			if !ok {
				s.abandon(v)
				continue
			}
			s.occupied.Add(spot)
			v.Target = &spot
			v.Path = nil
		case StateParking:
			if isSpot(v.Pos) {
				break
			}
			if !s.hasExit {
				s.abandon(v)
				continue
			}
			exit := s.exit
			spot := v.Pos
			v.State = StateExiting
			v.Target = &exit
			v.ParkingTime = 0
			s.emit(Event{Kind: EventDeparted, VehicleID: v.ID, Pos: v.Pos, Spot: &spot})
		case StateExiting:
			if !s.hasExit {
				s.abandon(v)
				continue
			}
			exit := s.exit
			v.Target = &exit
			v.Path = nil
		}
		kept = append(kept, v)
	}
	clear(s.vehicles[len(kept):])
	s.vehicles = kept
	s.statActive.Store(int64(len(s.vehicles)))

	s.log.WithFields(logrus.Fields{
		"width":    g.Width(),
		"height":   g.Height(),
		"revision": g.Revision(),
		"dropped":  dropped,
	}).Info("grid replaced")
}

func (s *Simulation) abandon(v *Vehicle) {
	if v.State == StateEntering && v.Target != nil {
		s.occupied.Remove(*v.Target)
	}
	if v.State == StateParking {
		s.occupied.Remove(v.Pos)
	}
	s.events = append(s.events, Event{Kind: EventAbandoned, Tick: s.tick, VehicleID: v.ID, Pos: v.Pos})
	s.log.WithField("vehicle", v.ID).Warn("vehicle abandoned after grid change")
}

// action is the per-vehicle decision computed in the first pass of a tick
type action uint8

const (
	actWait action = iota
	actMove
	actPark
	actCountdown
	actDepart
	actExit
)

type decision struct {
	act   action
	route []core.Point
	dwell int
}

// Tick advances the simulation by one step and returns the resulting snapshot
// All vehicle decisions read the state at tick start; mutations apply afterwards, then spawning
func (s *Simulation) Tick() Snapshot {
	s.tick++
	s.events = s.events[:0]
	field := s.Distances()

	decisions := make([]decision, len(s.vehicles))
	for i, v := range s.vehicles {
		decisions[i] = s.decide(v)
	}
	s.apply(decisions)
	s.spawn(field)

	s.statTicks.Store(s.tick)
	return s.Snapshot()
}

func (s *Simulation) decide(v *Vehicle) decision {
	switch v.State {
	case StateEntering, StateExiting:
		if v.Target == nil {
			return decision{act: actWait}
		}
		route := s.router.Find(s.grid, v.Pos, *v.Target, s.cfg.StrictFlow)
		switch {
		case len(route) > 1:
			return decision{act: actMove, route: route}
		case len(route) == 1 && v.State == StateEntering:
			return decision{act: actPark, dwell: rollDwell(s.rng, v.Profile.ParkingDurationBias)}
		case len(route) == 1:
			return decision{act: actExit}
		}
		return decision{act: actWait}
	case StateParking:
		if v.ParkingTime-1 > 0 {
			return decision{act: actCountdown}
		}
		return decision{act: actDepart}
	}
	return decision{act: actWait}
}

func (s *Simulation) apply(decisions []decision) {
	kept := s.vehicles[:0]
	for i, v := range s.vehicles {
		d := decisions[i]
		switch d.act {
		case actMove:
			v.Pos = d.route[1]
			if s.cfg.ShowDebug {
				v.Path = d.route[1:]
			}

		case actPark:
			v.State = StateParking
			v.ParkingTime = d.dwell
			v.Target = nil
			v.Path = nil
			s.occupied.Add(v.Pos)
			s.totalParked++
			s.statParked.Add(1)
			s.emit(Event{Kind: EventParked, VehicleID: v.ID, Pos: v.Pos})
			s.log.WithFields(logrus.Fields{"tick": s.tick, "vehicle": v.ID, "spot": v.Pos.String(), "dwell": d.dwell}).Debug("vehicle parked")

		case actCountdown:
			v.ParkingTime--
			s.occupied.Add(v.Pos)

		case actDepart:
			v.ParkingTime = 0
			s.occupied.Remove(v.Pos)
			spot := v.Pos
			s.emit(Event{Kind: EventDeparted, VehicleID: v.ID, Pos: v.Pos, Spot: &spot})
			if !s.hasExit {
				s.remove(v)
				continue
			}
			exit := s.exit
			v.State = StateExiting
			v.Target = &exit
			s.log.WithFields(logrus.Fields{"tick": s.tick, "vehicle": v.ID, "spot": spot.String()}).Debug("vehicle departing")

		case actExit:
			s.remove(v)
			continue

		case actWait:
			s.statStalled.Add(1)
		}
		kept = append(kept, v)
	}
	clear(s.vehicles[len(kept):])
	s.vehicles = kept
}

// remove records a vehicle leaving the facility
func (s *Simulation) remove(v *Vehicle) {
	s.totalExited++
	s.stayTicks += s.tick - v.EntryTick
	s.statExited.Add(1)
	s.emit(Event{Kind: EventExited, VehicleID: v.ID, Pos: v.Pos})
	s.log.WithFields(logrus.Fields{"tick": s.tick, "vehicle": v.ID, "stay": s.tick - v.EntryTick}).Debug("vehicle exited")
}

func (s *Simulation) emit(e Event) {
	e.Tick = s.tick
	s.events = append(s.events, e)
}

func (s *Simulation) spawn(field *navigation.DistanceField) {
	if s.rng.Float64() >= s.cfg.SpawnRate/spawnRateScale {
		return
	}
	entries := s.grid.Points(grid.KindEntry)
	if len(entries) == 0 {
		return
	}
	entry := entries[s.rng.Intn(len(entries))]
	pref := rollPreference(s.rng)

	if slices.ContainsFunc(s.vehicles, func(v *Vehicle) bool { return v.Pos == entry }) {
		s.statRejectedEntry.Add(1)
		s.emit(Event{Kind: EventSpawnRejected, Pos: entry, Reason: ReasonEntryBlocked})
		s.log.WithFields(logrus.Fields{"tick": s.tick, "entry": entry.String()}).Trace("spawn rejected: entry blocked")
		return
	}

	profile := newProfile(s.rng)
	spot, ok := s.selector.Select(parking.Request{
		Grid:              s.grid,
		Occupied:          s.occupied,
		Entry:             entry,
		Preference:        pref,
		WalkingPreference: profile.WalkingPreference,
		Distances:         field,
	})
	if !ok {
		s.statRejectedSpot.Add(1)
		s.emit(Event{Kind: EventSpawnRejected, Pos: entry, Reason: ReasonNoSpot})
		s.log.WithFields(logrus.Fields{"tick": s.tick, "preference": pref.String()}).Trace("spawn rejected: no spot")
		return
	}

	s.nextID++
	v := &Vehicle{
		ID:         s.nextID,
		Pos:        entry,
		State:      StateEntering,
		Target:     &spot,
		Preference: pref,
		EntryTick:  s.tick,
		Profile:    profile,
		Color:      vehicleColor(s.nextID, pref),
	}
	s.occupied.Add(spot)
	s.vehicles = append(s.vehicles, v)
	s.statSpawned.Add(1)
	s.emit(Event{Kind: EventSpawned, VehicleID: v.ID, Pos: entry, Spot: &spot})
	s.log.WithFields(logrus.Fields{"tick": s.tick, "vehicle": v.ID, "spot": spot.String(), "preference": pref.String()}).Debug("vehicle spawned")
}

// Spawn places a vehicle at entry targeting spot directly, bypassing the selector
// Returns false when entry is not an Entry cell, spot is not a free Parking cell, or entry is occupied
func (s *Simulation) Spawn(entry, spot core.Point, pref parking.Preference, profile DriverProfile) (int, bool) {
	if s.grid.Tile(entry).Kind() != grid.KindEntry || s.grid.Tile(spot).Kind() != grid.KindParking {
		return 0, false
	}
	if s.occupied.Has(spot) || slices.ContainsFunc(s.vehicles, func(v *Vehicle) bool { return v.Pos == entry }) {
		return 0, false
	}
	s.nextID++
	target := spot
	s.vehicles = append(s.vehicles, &Vehicle{
		ID:         s.nextID,
		Pos:        entry,
		State:      StateEntering,
		Target:     &target,
		Preference: pref,
		EntryTick:  s.tick,
		Profile:    profile,
		Color:      vehicleColor(s.nextID, pref),
	})
	s.occupied.Add(spot)
	s.statSpawned.Add(1)
	s.statActive.Store(int64(len(s.vehicles)))
	return s.nextID, true
}

// Snapshot captures the current state without advancing
func (s *Simulation) Snapshot() Snapshot {
	views := make([]VehicleView, len(s.vehicles))
	for i, v := range s.vehicles {
		view := VehicleView{
			ID:         v.ID,
			X:          v.Pos.X,
			Y:          v.Pos.Y,
			State:      v.State,
			Color:      v.Color,
			Preference: v.Preference,
		}
		if v.Target != nil {
			t := *v.Target
			view.Target = &t
		}
		if len(v.Path) > 0 {
			view.Path = slices.Clone(v.Path)
		}
		views[i] = view
	}

	a := s.analytics()
	s.statActive.Store(int64(a.Active))
	s.statOccupancy.Set(a.OccupancyPct)
	s.statAvgStay.Set(a.AvgStayTicks)

	return Snapshot{
		RunID:     s.runID,
		Tick:      s.tick,
		Vehicles:  views,
		Occupied:  s.occupied.Points(),
		Analytics: a,
		Events:    slices.Clone(s.events),
		Config:    s.cfg,
	}
}

func (s *Simulation) analytics() Analytics {
	a := Analytics{
		TotalParked:  s.totalParked,
		TotalExited:  s.totalExited,
		Active:       len(s.vehicles),
		Occupied:     s.occupied.Len(),
		ParkingCells: s.grid.Count(grid.KindParking),
	}
	if a.ParkingCells > 0 {
		a.OccupancyPct = float64(a.Occupied) / float64(a.ParkingCells) * 100
	}
	if s.totalExited > 0 {
		a.AvgStayTicks = float64(s.stayTicks) / float64(s.totalExited)
	}
	return a
}
