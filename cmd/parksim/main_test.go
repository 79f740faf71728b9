package main

import (
	"bytes"
	"slices"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/status"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestBuildGrid(t *testing.T) {
	tests := []struct {
		name   string
		layout config.Layout
		w, h   int
	}{
		{"explicit rows", config.Layout{Rows: []string{"E.PX", "#..M"}}, 4, 2},
		{"generated", config.Layout{Width: 16, Aisles: 2, Seed: 7}, 16, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := buildGrid(tt.layout, quietLog())
			if err != nil {
				t.Fatalf("buildGrid: %v", err)
			}
			if g.Width() != tt.w || g.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", g.Width(), g.Height(), tt.w, tt.h)
			}
		})
	}
}

func TestBuildGridLogsSpotCount(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	g, err := buildGrid(config.Layout{Width: 20, Aisles: 3, Seed: 4}, logrus.NewEntry(logger))
	if err != nil {
		t.Fatalf("buildGrid: %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry for generated layout")
	}
	if got, want := entry.Data["spots"], g.Count(grid.KindParking); got != want {
		t.Errorf("logged spots = %v, want %d parking cells", got, want)
	}
}

func TestRunHeadlessSummary(t *testing.T) {
	g := grid.MustParse("E.PP.X", "##..M#")
	cfg := config.Default()
	cfg.Seed = 11
	reg := status.NewRegistry()
	sim := engine.New(g, cfg, engine.WithRegistry(reg))
	sched := engine.NewClockScheduler(sim, engine.NewPausableClock(engine.NewMockTimeProvider(time.Unix(0, 0))), quietLog())

	var ticks int
	sched.AddSink(engine.SinkFunc(func(engine.Snapshot) { ticks++ }))

	var buf bytes.Buffer
	runHeadless(sched, reg, 25, &buf)

	if ticks != 25 {
		t.Errorf("sink saw %d ticks, want 25", ticks)
	}
	out := buf.String()
	for _, want := range []string{"25 ticks", "occupancy", status.KeyTicks} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	var keys []string
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); strings.HasPrefix(line, "  ") && len(fields) > 0 {
			keys = append(keys, fields[0])
		}
	}
	if len(keys) != reg.TotalCount() {
		t.Errorf("summary lists %d metrics, registry has %d", len(keys), reg.TotalCount())
	}
	if !slices.IsSorted(keys) {
		t.Errorf("metric keys not sorted: %v", keys)
	}
}
