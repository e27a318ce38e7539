package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// Connectivity reports whether the backend is believed reachable.
type Connectivity interface {
	Online() bool
}

// Pinger probes backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks backend reachability by pinging it periodically. A new
// Monitor assumes the backend is online until a probe says otherwise.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	online atomic.Bool

	mu       sync.Mutex
	onChange []func(online bool)
}

func NewMonitor(p Pinger, interval time.Duration, log logging.Logger) *Monitor {
	m := &Monitor{pinger: p, interval: interval, log: log.With("service", "monitor")}
	m.online.Store(true)
	return m
}

func (m *Monitor) Online() bool { return m.online.Load() }

// OnChange registers fn to be called whenever reachability flips.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// Check probes the backend once and records the outcome. Only an
// unreachable or failing backend counts as offline; an authorization or
// validation answer still proves the backend is up.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := ctx, context.CancelFunc(func() {})
	if m.interval > 0 {
		probeCtx, cancel = context.WithTimeout(ctx, m.interval)
	}
	defer cancel()

	err := m.pinger.Ping(probeCtx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return m.Online()
	}
	online := err == nil || !client.IsTransient(err)
	m.set(ctx, online, err)
	return online
}

func (m *Monitor) set(ctx context.Context, online bool, cause error) {
	if m.online.Swap(online) == online {
		return
	}
	if online {
		m.log.Info(ctx, "backend is reachable again")
	} else {
		m.log.Warn(ctx, "backend went offline", "error", cause)
	}

	m.mu.Lock()
	hooks := append([]func(bool){}, m.onChange...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(online)
	}
}

// Run probes the backend every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		return
	}
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
