package service

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Hub owns registered services and starts/stops them in dependency order
type Hub struct {
	mu       sync.Mutex
	log      *logrus.Entry
	services map[string]Service
	started  []string // Services that completed Start(), for rollback
}

// NewHub creates an empty service hub
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		log:      log,
		services: make(map[string]Service),
	}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return errors.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.services[name]
	return svc, ok
}

// StartAll starts every service in topological order
// On failure, already-started services are stopped in reverse order
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, err := h.topologicalSort()
	if err != nil {
		return err
	}

	h.started = nil
	for _, name := range order {
		if err := h.services[name].Start(); err != nil {
			h.stopStarted()
			return errors.Wrapf(err, "service %s start failed", name)
		}
		h.started = append(h.started, name)
		h.log.WithField("service", name).Debug("service started")
	}
	return nil
}

// StopAll stops started services in reverse order, logging errors
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopStarted()
}

func (h *Hub) stopStarted() {
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			h.log.WithError(err).WithField("service", name).Warn("service stop failed")
		}
	}
	h.started = nil
}

// topologicalSort orders services with Kahn's algorithm, ties broken by name
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string) // dep -> services that depend on it

	for name := range h.services {
		inDegree[name] = 0
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, errors.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		next := dependents[name]
		sort.Strings(next)
		for _, dependent := range next {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(h.services) {
		return nil, errors.New("circular dependency detected in services")
	}
	return result, nil
}

// Names returns registered service names sorted
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
