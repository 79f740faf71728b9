package viewer

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/grid"
)

// Time-scale bounds for the +/- keys
const (
	minTimeScale = 0.25
	maxTimeScale = 20
)

// Viewer renders scheduler snapshots and maps keys to scheduler commands
type Viewer struct {
	screen tcell.Screen
	sched  *engine.ClockScheduler
	chimes *Chimes
	log    *logrus.Entry
	redraw chan struct{}
}

// New registers the viewer as a scheduler sink; chimes may be nil
func New(screen tcell.Screen, sched *engine.ClockScheduler, chimes *Chimes, log *logrus.Entry) *Viewer {
	v := &Viewer{
		screen: screen,
		sched:  sched,
		chimes: chimes,
		log:    log,
		redraw: make(chan struct{}, 1),
	}
	sched.AddSink(v)
	if chimes != nil {
		sched.AddSink(chimes)
	}
	return v
}

// Publish requests a redraw without blocking the scheduler
func (v *Viewer) Publish(engine.Snapshot) {
	select {
	case v.redraw <- struct{}{}:
	default:
	}
}

// Run processes input and redraws until quit; the caller owns screen Init/Fini
func (v *Viewer) Run() {
	events := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	})

	v.Draw()
	for {
		select {
		case <-v.redraw:
			v.Draw()
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if v.HandleKey(ev.Key(), ev.Rune()) {
					return
				}
				v.Draw()
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw()
			}
		}
	}
}

// Draw renders the latest snapshot
func (v *Viewer) Draw() {
	var g *grid.Grid
	v.sched.View(func(sim *engine.Simulation) { g = sim.Grid() })
	v.screen.Clear()
	Render(v.screen, g, v.sched.Latest(), v.sched.Uptime().Seconds())
	v.screen.Show()
}

// HandleKey applies a key press and reports whether the viewer should quit
func (v *Viewer) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	cfg := v.sched.Config()
	switch r {
	case 'q':
		return true
	case ' ':
		cfg.IsPaused = !cfg.IsPaused
	case '+', '=':
		cfg.TimeScale = math.Min(cfg.TimeScale*2, maxTimeScale)
	case '-':
		cfg.TimeScale = math.Max(cfg.TimeScale/2, minTimeScale)
	case 'f':
		cfg.StrictFlow = !cfg.StrictFlow
	case 'd':
		cfg.ShowDebug = !cfg.ShowDebug
	case 'm':
		if v.chimes != nil {
			v.chimes.Toggle()
		}
		return false
	case 'r':
		v.sched.Reset()
		return false
	case 's':
		v.sched.Step()
		return false
	default:
		return false
	}
	if err := v.sched.UpdateConfig(cfg); err != nil {
		v.log.WithError(err).Warn("viewer config change rejected")
	}
	return false
}
