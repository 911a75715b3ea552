// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

// Package netmon tracks backend reachability for the sync engine.
//
// The monitor starts optimistic (online) and flips state from periodic
// probes against the backend health endpoint. State changes are
// edge-triggered: subscribers are notified only when the online flag
// actually flips, never on every probe.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/fitsync/fitsync/internal/logger"
)

// Prober is the reachability check the monitor runs on every tick. The
// remote adapter's Ping satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor holds the current connectivity state and fans out transitions to
// subscribers.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]chan bool
}

// NewMonitor constructs a Monitor probing via prober every interval. The
// monitor assumes online until a probe proves otherwise, so a fresh start
// never blocks an immediate sync attempt.
func NewMonitor(prober Prober, interval time.Duration, logger *logger.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger,
		online:   true,
		subs:     make(map[int]chan bool),
	}
}

// Online reports the last known connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a connectivity observation. Callers outside the probe
// loop (e.g. a request path that just failed with a transport error) may
// feed state in directly. Subscribers are notified only when the value
// flips.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	for _, ch := range m.subs {
		// latest-wins delivery: a stale unconsumed value is replaced, never
		// the other way round, so a fast offline-online flap still delivers
		// the restore edge. Holding the lock keeps the drain-and-send pair
		// atomic against unsubscribe closing the channel.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- online:
		default:
		}
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "Monitor.SetOnline").
		Bool("online", online).
		Msg("connectivity state changed")
}

// Subscribe registers for connectivity transitions. The returned channel
// receives the new state on every flip; the second return value
// unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan bool, 1)
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
}

// Start runs the probe loop until ctx is cancelled. The first probe fires
// immediately so startup state reflects reality within one round trip.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info().
		Str("func", "Monitor.Start").
		Dur("interval", m.interval).
		Msg("starting connectivity probes")

	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Str("func", "Monitor.Start").Msg("stopping connectivity probes")
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.prober.Ping(probeCtx)
	if err != nil && ctx.Err() != nil {
		// shutdown, not an observation
		return
	}

	m.SetOnline(err == nil)
}
