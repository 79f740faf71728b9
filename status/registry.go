package status

import "sync/atomic"

// Metric keys published by the simulation
const (
	KeyTicks              = "sim.ticks"
	KeySpawned            = "sim.vehicles.spawned"
	KeyParkedTotal        = "sim.vehicles.parked_total"
	KeyExitedTotal        = "sim.vehicles.exited_total"
	KeyActive             = "sim.vehicles.active"
	KeyRejectedEntry      = "sim.spawn.rejected.entry_blocked"
	KeyRejectedNoSpot     = "sim.spawn.rejected.no_spot"
	KeyRouteStalled       = "sim.route.stalled"
	KeyDistanceRecomputes = "nav.distance.recomputes"
	KeyOccupancyPct       = "sim.occupancy.pct"
	KeyAvgStayTicks       = "sim.stay.avg_ticks"
	KeyPaused             = "sim.paused"
	KeyStrictFlow         = "sim.strict_flow"
	KeyRunID              = "sim.run_id"
	KeyRunningSeconds     = "sim.running_seconds"
)

// Registry is the central metrics facade
// The simulation caches pointers at construction; the tick loop writes directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot flattens every metric into a plain map for export
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.TotalCount())
	r.Bools.Range(func(k string, v *atomic.Bool) { out[k] = v.Load() })
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = v.Load() })
	r.Floats.Range(func(k string, v *AtomicFloat) { out[k] = v.Get() })
	r.Strings.Range(func(k string, v *AtomicString) { out[k] = v.Load() })
	return out
}

// Zero resets every numeric metric and clears strings, keys stay registered
func (r *Registry) Zero() {
	r.Bools.Range(func(_ string, v *atomic.Bool) { v.Store(false) })
	r.Ints.Range(func(_ string, v *atomic.Int64) { v.Store(0) })
	r.Floats.Range(func(_ string, v *AtomicFloat) { v.Set(0) })
	r.Strings.Range(func(_ string, v *AtomicString) { v.Store("") })
}
