package viewer

import (
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/parksim/engine"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chimeDuration = 60 * time.Millisecond
	parkFreq      = 660
	exitFreq      = 440
)

// Chimes plays a short tone on park and exit events; implements engine.Sink
type Chimes struct {
	ready   atomic.Bool
	enabled atomic.Bool
}

var _ engine.Sink = (*Chimes)(nil)

// NewChimes returns muted chimes; call Init to open the speaker
func NewChimes() *Chimes {
	return &Chimes{}
}

// Init opens the audio device; failure leaves the chimes silent
func (c *Chimes) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	c.ready.Store(true)
	c.enabled.Store(true)
	return nil
}

// Toggle flips muting and returns the new state
func (c *Chimes) Toggle() bool {
	on := !c.enabled.Load()
	c.enabled.Store(on)
	return on
}

// ChimeFor picks the tone for a tick, exits win over parks
func ChimeFor(events []engine.Event) (float64, bool) {
	freq, ok := 0.0, false
	for _, e := range events {
		switch e.Kind {
		case engine.EventExited:
			return exitFreq, true
		case engine.EventParked:
			freq, ok = parkFreq, true
		}
	}
	return freq, ok
}

// Publish plays at most one chime per snapshot
func (c *Chimes) Publish(snap engine.Snapshot) {
	if !c.ready.Load() || !c.enabled.Load() {
		return
	}
	freq, ok := ChimeFor(snap.Events)
	if !ok {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(chimeDuration), sine))
}
