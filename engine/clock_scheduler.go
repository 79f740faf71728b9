package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/status"
)

// BaseTickInterval is the tick period at time-scale 1
const BaseTickInterval = 300 * time.Millisecond

// Sink receives every published snapshot, called outside the simulation lock
type Sink interface {
	Publish(Snapshot)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Snapshot)

func (f SinkFunc) Publish(s Snapshot) { f(s) }

// ClockScheduler owns a Simulation and ticks it on a pause-aware timer
// All access to the simulation goes through the scheduler mutex
type ClockScheduler struct {
	mu  sync.Mutex
	sim *Simulation
	log *logrus.Entry

	clock  *PausableClock
	paused atomic.Bool

	latest atomic.Pointer[Snapshot]

	sinkMu    sync.RWMutex
	sinks     []Sink
	publishMu sync.Mutex

	// Control channels
	stopChan chan struct{}
	stopOnce sync.Once
	wakeChan chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool

	tickCount   atomic.Uint64
	statRunning *status.AtomicFloat
}

// NewClockScheduler wraps sim; clock may be nil for the system clock
func NewClockScheduler(sim *Simulation, clock *PausableClock, log *logrus.Entry) *ClockScheduler {
	if clock == nil {
		clock = NewPausableClock(nil)
	}
	if log == nil {
		log = sim.log
	}
	cs := &ClockScheduler{
		sim:         sim,
		log:         log,
		clock:       clock,
		stopChan:    make(chan struct{}),
		wakeChan:    make(chan struct{}, 1),
		statRunning: sim.Registry().Floats.Get(status.KeyRunningSeconds),
	}
	cs.setPaused(sim.Config().IsPaused)
	snap := sim.Snapshot()
	cs.latest.Store(&snap)
	return cs
}

// AddSink registers a snapshot consumer
func (cs *ClockScheduler) AddSink(s Sink) {
	cs.sinkMu.Lock()
	defer cs.sinkMu.Unlock()
	cs.sinks = append(cs.sinks, s)
}

// Start begins the scheduler loop
func (cs *ClockScheduler) Start() {
	if cs.running.CompareAndSwap(false, true) {
		cs.wg.Add(1)
		core.Go(cs.schedulerLoop)
	}
}

// Stop halts the scheduler loop and waits for it to exit
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
		if cs.running.CompareAndSwap(true, false) {
			cs.wg.Wait()
		}
	})
}

// Interval returns the current tick period
func (cs *ClockScheduler) Interval() time.Duration {
	cs.mu.Lock()
	scale := cs.sim.Config().TimeScale
	cs.mu.Unlock()
	return intervalFor(scale)
}

func intervalFor(timeScale float64) time.Duration {
	if timeScale <= 0 {
		timeScale = 1
	}
	return time.Duration(float64(BaseTickInterval) / timeScale)
}

// TickCount returns ticks run by the loop or Step since start
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

// Uptime returns running time excluding pauses
func (cs *ClockScheduler) Uptime() time.Duration {
	return cs.clock.Elapsed()
}

func (cs *ClockScheduler) setPaused(p bool) {
	cs.paused.Store(p)
	if p {
		cs.clock.Pause()
	} else {
		cs.clock.Resume()
	}
}

func (cs *ClockScheduler) wake() {
	select {
	case cs.wakeChan <- struct{}{}:
	default:
	}
}

// schedulerLoop ticks with drift correction, sleeping longer while paused
func (cs *ClockScheduler) schedulerLoop() {
	defer cs.wg.Done()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	interval := cs.Interval()
	nextTickDeadline := cs.clock.Now().Add(interval)

	for {
		select {
		case <-cs.stopChan:
			return
		default:
		}

		var sleepDuration time.Duration
		if cs.paused.Load() {
			sleepDuration = interval * 2
		} else {
			now := cs.clock.Now()
			if !now.Before(nextTickDeadline) {
				cs.Step()

				nextTickDeadline = nextTickDeadline.Add(interval)
				if now.Sub(nextTickDeadline) > interval*2 {
					nextTickDeadline = now.Add(interval)
				}
			}
			sleepDuration = nextTickDeadline.Sub(cs.clock.Now())
			if sleepDuration < 0 {
				sleepDuration = 0
			}
		}

		timer.Reset(sleepDuration)
		select {
		case <-timer.C:
		case <-cs.wakeChan:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			interval = cs.Interval()
			nextTickDeadline = cs.clock.Now().Add(interval)
		case <-cs.stopChan:
			return
		}
	}
}

// Step runs one tick regardless of pause state and publishes the snapshot
func (cs *ClockScheduler) Step() Snapshot {
	return cs.mutate(func(sim *Simulation) Snapshot {
		snap := sim.Tick()
		cs.tickCount.Add(1)
		return snap
	})
}

// mutate runs fn under the lock, stores the snapshot and publishes it in order
func (cs *ClockScheduler) mutate(fn func(*Simulation) Snapshot) Snapshot {
	cs.mu.Lock()
	snap := fn(cs.sim)
	cs.latest.Store(&snap)
	cs.statRunning.Set(cs.clock.Elapsed().Seconds())
	cs.publishMu.Lock()
	cs.mu.Unlock()

	defer cs.publishMu.Unlock()
	cs.sinkMu.RLock()
	sinks := cs.sinks
	cs.sinkMu.RUnlock()
	for _, s := range sinks {
		s.Publish(snap)
	}
	return snap
}

// Latest returns the most recent snapshot without locking
func (cs *ClockScheduler) Latest() Snapshot {
	return *cs.latest.Load()
}

// Config returns the simulation configuration
func (cs *ClockScheduler) Config() config.Simulation {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.sim.Config()
}

// UpdateConfig validates and applies cfg between ticks
func (cs *ClockScheduler) UpdateConfig(cfg config.Simulation) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.sim.SetConfig(cfg)
	cs.mu.Unlock()
	cs.setPaused(cfg.IsPaused)
	cs.wake()
	return nil
}

// ReplaceGrid swaps the facility between ticks
func (cs *ClockScheduler) ReplaceGrid(g *grid.Grid) Snapshot {
	return cs.mutate(func(sim *Simulation) Snapshot {
		sim.SetGrid(g)
		return sim.Snapshot()
	})
}

// Reset restarts the run
func (cs *ClockScheduler) Reset() Snapshot {
	snap := cs.mutate(func(sim *Simulation) Snapshot {
		sim.Reset()
		return sim.Snapshot()
	})
	cs.tickCount.Store(0)
	cs.clock.Restart()
	cs.wake()
	cs.log.WithField("run", snap.RunID).Info("simulation reset")
	return snap
}

// View runs fn with exclusive read access to the simulation
func (cs *ClockScheduler) View(fn func(*Simulation)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	fn(cs.sim)
}
