package engine

import (
	"sync"
	"time"
)

// TimeSource supplies wall-clock readings; swapped for a mock in tests
type TimeSource interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// PausableClock measures simulated running time, frozen while the simulation is paused
type PausableClock struct {
	mu sync.RWMutex

	source     TimeSource
	start      time.Time
	paused     bool
	pauseStart time.Time
	pausedFor  time.Duration
}

// NewPausableClock creates a running clock over source; nil selects the system clock
func NewPausableClock(source TimeSource) *PausableClock {
	if source == nil {
		source = systemTime{}
	}
	return &PausableClock{source: source, start: source.Now()}
}

// Now returns clock time: start plus running time
func (pc *PausableClock) Now() time.Time {
	return pc.start.Add(pc.Elapsed())
}

// Elapsed returns running time excluding pauses
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	end := pc.source.Now()
	if pc.paused {
		end = pc.pauseStart
	}
	return end.Sub(pc.start) - pc.pausedFor
}

// Pause freezes the clock; no-op if already paused
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.paused {
		return
	}
	pc.paused = true
	pc.pauseStart = pc.source.Now()
}

// Resume continues the clock; no-op if running
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.paused {
		return
	}
	pc.pausedFor += pc.source.Now().Sub(pc.pauseStart)
	pc.paused = false
	pc.pauseStart = time.Time{}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.paused
}

// Restart zeroes elapsed time, keeping the pause state
func (pc *PausableClock) Restart() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.start = pc.source.Now()
	pc.pausedFor = 0
	if pc.paused {
		pc.pauseStart = pc.start
	}
}
