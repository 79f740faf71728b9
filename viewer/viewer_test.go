package viewer

import (
	"io"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/grid"
)

type fakeCanvas struct {
	w, h  int
	cells map[core.Point]rune
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{w: w, h: h, cells: make(map[core.Point]rune)}
}

func (f *fakeCanvas) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	f.cells[core.Pt(x, y)] = r
}

func (f *fakeCanvas) Size() (int, int) { return f.w, f.h }

func (f *fakeCanvas) row(y int) string {
	var sb strings.Builder
	for x := 0; x < f.w; x++ {
		if r, ok := f.cells[core.Pt(x, y)]; ok {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRenderTilesAndVehicles(t *testing.T) {
	g := grid.MustParse(
		"#M#",
		"E>P",
		"#X#",
	)
	snap := engine.Snapshot{
		Tick: 4,
		Vehicles: []engine.VehicleView{
			{ID: 1, X: 2, Y: 1, State: engine.StateParking, Color: "#2ecc71"},
		},
		Analytics: engine.Analytics{Active: 1, Occupied: 1, ParkingCells: 1, OccupancyPct: 100},
		Config:    config.Default(),
	}
	cv := newFakeCanvas(80, 10)
	Render(cv, g, snap, 12)

	if got := cv.row(0); got != "█M█" {
		t.Errorf("row 0 = %q", got)
	}
	if got := cv.row(1); got != "E→■" {
		t.Errorf("row 1 = %q", got)
	}
	if got := cv.row(2); got != "█X█" {
		t.Errorf("row 2 = %q", got)
	}
	status := cv.row(4)
	if !strings.HasPrefix(status, "tick 4") || !strings.Contains(status, "occ 1/1") {
		t.Errorf("status = %q", status)
	}
}

func TestRenderDebugTrail(t *testing.T) {
	g := grid.MustParse("E...")
	snap := engine.Snapshot{
		Vehicles: []engine.VehicleView{{
			ID: 1, X: 1, Y: 0, State: engine.StateEntering, Color: "#4f83cc",
			Path: []core.Point{core.Pt(2, 0), core.Pt(3, 0)},
		}},
		Config: config.Default(),
	}
	cv := newFakeCanvas(10, 3)
	Render(cv, g, snap, 0)
	if got := cv.row(0); got != "E●∙∙" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestStatusLineFlags(t *testing.T) {
	cfg := config.Default()
	cfg.StrictFlow = true
	cfg.IsPaused = true
	line := StatusLine(engine.Snapshot{Config: cfg}, 0)
	if !strings.Contains(line, "STRICT") || !strings.Contains(line, "PAUSED") || strings.Contains(line, "DEBUG") {
		t.Errorf("status = %q", line)
	}
}

func TestHandleKey(t *testing.T) {
	sim := engine.New(grid.MustParse("E.PM"), config.Default())
	sched := engine.NewClockScheduler(sim, nil, nil)
	v := New(tcell.NewSimulationScreen("UTF-8"), sched, nil, quietLog())

	tests := []struct {
		name  string
		key   tcell.Key
		r     rune
		quit  bool
		check func(config.Simulation) bool
	}{
		{"pause", tcell.KeyRune, ' ', false, func(c config.Simulation) bool { return c.IsPaused }},
		{"faster", tcell.KeyRune, '+', false, func(c config.Simulation) bool { return c.TimeScale == 2 }},
		{"slower", tcell.KeyRune, '-', false, func(c config.Simulation) bool { return c.TimeScale == 1 }},
		{"strict", tcell.KeyRune, 'f', false, func(c config.Simulation) bool { return c.StrictFlow }},
		{"debug", tcell.KeyRune, 'd', false, func(c config.Simulation) bool { return c.ShowDebug }},
		{"unbound", tcell.KeyRune, 'z', false, nil},
		{"quit", tcell.KeyRune, 'q', true, nil},
		{"escape", tcell.KeyEscape, 0, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if quit := v.HandleKey(tt.key, tt.r); quit != tt.quit {
				t.Fatalf("quit = %v, want %v", quit, tt.quit)
			}
			if tt.check != nil && !tt.check(sched.Config()) {
				t.Errorf("config = %+v", sched.Config())
			}
		})
	}

	sched.Step()
	v.HandleKey(tcell.KeyRune, 'r')
	if sched.Latest().Tick != 0 {
		t.Error("reset key did not reset")
	}
}

func TestTimeScaleClamped(t *testing.T) {
	cfg := config.Default()
	cfg.TimeScale = maxTimeScale
	sched := engine.NewClockScheduler(engine.New(nil, cfg), nil, nil)
	v := New(tcell.NewSimulationScreen("UTF-8"), sched, nil, quietLog())
	v.HandleKey(tcell.KeyRune, '+')
	if got := sched.Config().TimeScale; got != maxTimeScale {
		t.Errorf("TimeScale = %v", got)
	}
}

func TestChimeFor(t *testing.T) {
	tests := []struct {
		name   string
		events []engine.Event
		freq   float64
		ok     bool
	}{
		{"none", nil, 0, false},
		{"spawn only", []engine.Event{{Kind: engine.EventSpawned}}, 0, false},
		{"park", []engine.Event{{Kind: engine.EventParked}}, parkFreq, true},
		{"exit wins", []engine.Event{{Kind: engine.EventParked}, {Kind: engine.EventExited}}, exitFreq, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq, ok := ChimeFor(tt.events)
			if freq != tt.freq || ok != tt.ok {
				t.Errorf("ChimeFor = %v,%v want %v,%v", freq, ok, tt.freq, tt.ok)
			}
		})
	}

	// Uninitialised chimes stay silent
	NewChimes().Publish(engine.Snapshot{Events: []engine.Event{{Kind: engine.EventParked}}})
}
