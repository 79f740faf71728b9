package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/grid"
	"github.com/lixenwraith/parksim/layout"
	"github.com/lixenwraith/parksim/publish"
	"github.com/lixenwraith/parksim/server"
	"github.com/lixenwraith/parksim/service"
	"github.com/lixenwraith/parksim/status"
	"github.com/lixenwraith/parksim/viewer"
)

const defaultHeadlessTicks = 600

var (
	configPath = flag.String("config", "", "Config file (.toml, .yaml)")
	seedFlag   = flag.Int64("seed", 0, "Simulation seed override (0 = config/random)")
	ticksFlag  = flag.Int("ticks", 0, "Run N ticks headless and print a summary")
	serveFlag  = flag.String("serve", "", "HTTP listen address, overrides server.addr")
	viewFlag   = flag.Bool("view", false, "Terminal viewer")
	audioFlag  = flag.Bool("audio", false, "Chimes on park and exit (viewer only)")
	debugFlag  = flag.Bool("debug", false, "Debug logging to file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *seedFlag != 0 {
		cfg.Simulation.Seed = *seedFlag
	}
	if *serveFlag != "" {
		cfg.Server.Addr = *serveFlag
	}

	logDir = cfg.Log.Dir
	if logFile := setupLogging(*debugFlag || cfg.Log.Debug); logFile != nil {
		defer logFile.Close()
	}
	log := logrus.WithField("component", "parksim")

	g, err := buildGrid(cfg.Layout, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "layout: %v\n", err)
		os.Exit(1)
	}

	reg := status.NewRegistry()
	sim := engine.New(g, cfg.Simulation,
		engine.WithLogger(log.WithField("component", "simulation")),
		engine.WithRegistry(reg),
	)
	sched := engine.NewClockScheduler(sim, engine.NewPausableClock(nil), log.WithField("component", "scheduler"))
	hub := service.NewHub(log.WithField("component", "services"))
	sched.AddSink(engine.SinkFunc(func(snap engine.Snapshot) {
		for _, e := range snap.Events {
			log.WithFields(logrus.Fields{"tick": e.Tick, "vehicle": e.VehicleID, "kind": e.Kind}).Debug("event")
		}
	}))

	var schedDeps []string
	if cfg.NATS.URL != "" {
		if pub, err := publish.Connect(cfg.NATS, log.WithField("component", "nats")); err != nil {
			log.WithError(err).Warn("nats unavailable, continuing without publisher")
		} else {
			sched.AddSink(pub)
			hub.Register(&natsService{pub: pub})
			schedDeps = append(schedDeps, "nats")
		}
	}

	if !*viewFlag && cfg.Server.Addr == "" {
		n := *ticksFlag
		if n <= 0 {
			n = defaultHeadlessTicks
		}
		if err := hub.StartAll(); err != nil {
			fmt.Fprintf(os.Stderr, "start: %v\n", err)
			os.Exit(1)
		}
		runHeadless(sched, reg, n, os.Stdout)
		hub.StopAll()
		return
	}

	hub.Register(&schedulerService{sched: sched, deps: schedDeps})
	if cfg.Server.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv := server.New(sched, reg, cfg.Server, log.WithField("component", "http"))
		hub.Register(&httpService{srv: srv, addr: cfg.Server.Addr})
	}

	if *viewFlag {
		runViewer(sched, hub, log)
		return
	}

	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutting down")
	hub.StopAll()
}

// buildGrid parses configured rows or generates a facility
func buildGrid(lc config.Layout, log *logrus.Entry) (*grid.Grid, error) {
	if len(lc.Rows) > 0 {
		return grid.ParseRows(lc.Rows)
	}
	gen := layout.DefaultConfig()
	gen.Width = lc.Width
	gen.Aisles = lc.Aisles
	gen.Seed = lc.Seed
	res := layout.Generate(gen)
	log.WithFields(logrus.Fields{
		"width":  res.Grid.Width(),
		"height": res.Grid.Height(),
		"spots":  lo.Sum(lo.Values(res.Mix)),
	}).Info("generated layout")
	return res.Grid, nil
}

// runHeadless steps the scheduler synchronously so every sink sees each tick
func runHeadless(sched *engine.ClockScheduler, reg *status.Registry, ticks int, w io.Writer) {
	var snap engine.Snapshot
	for range ticks {
		snap = sched.Step()
	}
	printSummary(w, snap, reg)
}

// printSummary writes final analytics followed by every registry metric
func printSummary(w io.Writer, snap engine.Snapshot, reg *status.Registry) {
	a := snap.Analytics
	fmt.Fprintf(w, "run %s: %d ticks\n", snap.RunID, snap.Tick)
	fmt.Fprintf(w, "active %d (entering %d, parking %d, exiting %d)\n",
		a.Active, snap.Count(engine.StateEntering), snap.Count(engine.StateParking), snap.Count(engine.StateExiting))
	fmt.Fprintf(w, "parked %d, exited %d, occupancy %d/%d (%.1f%%), avg stay %.1f ticks\n",
		a.TotalParked, a.TotalExited, a.Occupied, a.ParkingCells, a.OccupancyPct, a.AvgStayTicks)

	metrics := reg.Snapshot()
	keys := lo.Keys(metrics)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-24s %v\n", k, metrics[k])
	}
}

func runViewer(sched *engine.ClockScheduler, hub *service.Hub, log *logrus.Entry) {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen init: %v\n", err)
		os.Exit(1)
	}

	// Restore the terminal before any crash report reaches stderr
	core.SetCrashHook(screen.Fini)
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\nPARKSIM CRASHED: %v\nStack Trace:\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	var chimes *viewer.Chimes
	if *audioFlag {
		chimes = viewer.NewChimes()
		if err := chimes.Init(); err != nil {
			log.WithError(err).Warn("audio unavailable, continuing silent")
		}
	}
	v := viewer.New(screen, sched, chimes, log.WithField("component", "viewer"))

	if err := hub.StartAll(); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	v.Run()
	hub.StopAll()
	screen.Fini()
}
