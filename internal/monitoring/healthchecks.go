package monitoring

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_TIMER   = 15 * time.Second
	HEALTHCHECK_TIMEOUT = 5 * time.Second
)

type Check func(ctx context.Context) bool

// Monitor runs registered checks on a ticker and keeps the latest result of
// each. Checks that have not run yet report healthy.
type Monitor struct {
	interval time.Duration

	mu     sync.RWMutex
	checks map[string]Check
	status map[string]*atomic.Bool
}

func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	return &Monitor{
		interval: interval,
		checks:   make(map[string]Check),
		status:   make(map[string]*atomic.Bool),
	}
}

func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()

	healthy := &atomic.Bool{}
	healthy.Store(true)
	m.checks[name] = check
	m.status[name] = healthy
}

// Run checks once immediately, then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckNow(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

func (m *Monitor) CheckNow(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, check := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
		isHealthy := check(checkCtx)
		cancel()

		m.status[name].Store(isHealthy)
		if !isHealthy {
			slog.Warn("[HealthCheck] Dependency is unhealthy",
				slog.String("dependency", name))
		}
	}
}

func (m *Monitor) Status() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.status))
	for name, healthy := range m.status {
		out[name] = healthy.Load()
	}
	return out
}

// Healthy reports whether every check last passed. Unhealthy lists the
// failing checks in name order.
func (m *Monitor) Healthy() (bool, []string) {
	var unhealthy []string
	for name, ok := range m.Status() {
		if !ok {
			unhealthy = append(unhealthy, name)
		}
	}
	sort.Strings(unhealthy)
	return len(unhealthy) == 0, unhealthy
}
