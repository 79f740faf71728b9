package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/grid"
)

// recordingSink collects published snapshots
type recordingSink struct {
	mu    sync.Mutex
	ticks []int64
}

func (r *recordingSink) Publish(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, s.Tick)
}

func (r *recordingSink) Ticks() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ticks...)
}

func TestSchedulerStepPublishes(t *testing.T) {
	sched := NewClockScheduler(New(smallLot(), quietConfig(1)), nil, nil)
	sink := &recordingSink{}
	sched.AddSink(sink)

	if sched.Latest().Tick != 0 {
		t.Fatal("initial snapshot should be tick 0")
	}
	for i := 0; i < 3; i++ {
		sched.Step()
	}
	if got := sched.Latest().Tick; got != 3 {
		t.Errorf("Latest().Tick = %d, want 3", got)
	}
	ticks := sink.Ticks()
	if len(ticks) != 3 || ticks[0] != 1 || ticks[2] != 3 {
		t.Errorf("published ticks = %v", ticks)
	}
	if sched.TickCount() != 3 {
		t.Errorf("TickCount = %d", sched.TickCount())
	}
}

func TestSchedulerUpdateConfigValidates(t *testing.T) {
	sched := NewClockScheduler(New(smallLot(), quietConfig(1)), nil, nil)

	bad := config.Default()
	bad.TimeScale = 0
	if err := sched.UpdateConfig(bad); err == nil {
		t.Fatal("expected validation error")
	}

	good := config.Default()
	good.TimeScale = 2
	good.IsPaused = true
	if err := sched.UpdateConfig(good); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if sched.Interval() != BaseTickInterval/2 {
		t.Errorf("Interval = %v", sched.Interval())
	}
	if !sched.Config().IsPaused {
		t.Error("pause not applied")
	}
	// Manual steps still run while paused
	if snap := sched.Step(); snap.Tick != 1 {
		t.Errorf("Step while paused tick = %d", snap.Tick)
	}
}

func TestSchedulerLoopTicks(t *testing.T) {
	cfg := quietConfig(1)
	cfg.TimeScale = 20
	sched := NewClockScheduler(New(smallLot(), cfg), nil, nil)
	sched.Start()
	sched.Start()
	defer sched.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for sched.TickCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler ran %d ticks before deadline", sched.TickCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	sched.Stop()
	stopped := sched.TickCount()
	time.Sleep(50 * time.Millisecond)
	if sched.TickCount() != stopped {
		t.Error("ticks continued after Stop")
	}
}

func TestSchedulerReplaceGridAndReset(t *testing.T) {
	sim := New(eastFlowGrid(), quietConfig(1))
	sched := NewClockScheduler(sim, nil, nil)
	sched.View(func(s *Simulation) {
		s.Spawn(core.Pt(0, 2), core.Pt(3, 2), grid.SpotStandard, steadyDriver)
	})
	sched.Step()

	snap := sched.ReplaceGrid(smallLot())
	if snap.Analytics.ParkingCells != 8 {
		t.Errorf("parking cells = %d after replace", snap.Analytics.ParkingCells)
	}

	runID := sched.Latest().RunID
	snap = sched.Reset()
	if snap.RunID == runID || snap.Tick != 0 || len(snap.Vehicles) != 0 {
		t.Errorf("reset snapshot = %+v", snap)
	}
	if sched.TickCount() != 0 {
		t.Error("tick count not cleared")
	}
}

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		scale float64
		want  time.Duration
	}{
		{1, 300 * time.Millisecond},
		{3, 100 * time.Millisecond},
		{0.5, 600 * time.Millisecond},
		{0, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := intervalFor(tt.scale); got != tt.want {
			t.Errorf("intervalFor(%v) = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestPausableClock(t *testing.T) {
	mock := NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	clock := NewPausableClock(mock)

	mock.Advance(2 * time.Second)
	if got := clock.Elapsed(); got != 2*time.Second {
		t.Fatalf("Elapsed = %v, want 2s", got)
	}

	clock.Pause()
	clock.Pause()
	mock.Advance(5 * time.Second)
	if got := clock.Elapsed(); got != 2*time.Second {
		t.Errorf("Elapsed while paused = %v, want 2s", got)
	}

	clock.Resume()
	mock.Advance(time.Second)
	if got := clock.Elapsed(); got != 3*time.Second {
		t.Errorf("Elapsed after resume = %v, want 3s", got)
	}

	clock.Restart()
	if got := clock.Elapsed(); got != 0 {
		t.Errorf("Elapsed after restart = %v", got)
	}
}
