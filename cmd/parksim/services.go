package main

import (
	"context"
	"time"

	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/publish"
	"github.com/lixenwraith/parksim/server"
	"github.com/lixenwraith/parksim/service"
)

const shutdownTimeout = 3 * time.Second

// schedulerService drives the tick loop
type schedulerService struct {
	sched *engine.ClockScheduler
	deps  []string // Sinks backed by services must be up before the first tick
}

func (s *schedulerService) Name() string           { return "scheduler" }
func (s *schedulerService) Dependencies() []string { return s.deps }

func (s *schedulerService) Start() error {
	s.sched.Start()
	return nil
}

func (s *schedulerService) Stop() error {
	s.sched.Stop()
	return nil
}

// httpService serves the API; starts after the scheduler so the first stream frame is live
type httpService struct {
	srv  *server.Server
	addr string
}

func (h *httpService) Name() string           { return "http" }
func (h *httpService) Dependencies() []string { return []string{"scheduler"} }

func (h *httpService) Start() error {
	h.srv.Start(h.addr)
	return nil
}

func (h *httpService) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.srv.Shutdown(ctx)
}

// natsService closes the publisher after the scheduler stops feeding it
type natsService struct {
	pub *publish.Publisher
}

func (n *natsService) Name() string           { return "nats" }
func (n *natsService) Dependencies() []string { return nil }
func (n *natsService) Start() error           { return nil }

func (n *natsService) Stop() error {
	n.pub.Close()
	return nil
}

var (
	_ service.Service = (*schedulerService)(nil)
	_ service.Service = (*httpService)(nil)
	_ service.Service = (*natsService)(nil)
)
