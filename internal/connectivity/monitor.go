// Package connectivity tracks backend reachability and fans out
// online/offline transitions to subscribers.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Prober answers "is the backend reachable right now". Satisfied by the
// gateway client's Ping.
type Prober interface {
	Ping(ctx context.Context) error
}

// Transition is one observed reachability change.
type Transition struct {
	Online bool
	At     time.Time
}

// Monitor maintains the current online flag and notifies subscribers of
// transitions. An offline->online transition is announced only after the
// settle delay: if the link drops again inside the delay, no announcement
// is made. Offline transitions are announced immediately.
type Monitor struct {
	probe    Prober
	interval time.Duration
	settle   time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	online  bool
	seq     uint64 // bumped on every state change; stale settle timers check it
	subs    map[int]chan Transition
	nextSub int
}

// NewMonitor builds a monitor. probe may be nil, in which case only
// Observe drives state (tests, or a platform-level notification source).
// A non-positive interval falls back to 15s; Run's ticker needs a
// positive period.
func NewMonitor(probe Prober, interval, settle time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		settle:   settle,
		logger:   logger,
		subs:     make(map[int]chan Transition),
	}
}

// IsOnline is the current reachability snapshot.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a transition listener. The returned cancel func
// unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (<-chan Transition, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Transition, 4)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Observe feeds one reachability observation into the monitor. Gateway
// call outcomes and platform notifications both land here.
func (m *Monitor) Observe(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if online == m.online {
		return
	}
	m.online = online
	m.seq++

	if !online {
		m.logger.Info("backend unreachable, entering offline mode")
		m.broadcastLocked(Transition{Online: false, At: time.Now()})
		return
	}

	m.logger.Info("backend reachable again, settling", "delay", m.settle)
	if m.settle <= 0 {
		m.broadcastLocked(Transition{Online: true, At: time.Now()})
		return
	}

	seq := m.seq
	time.AfterFunc(m.settle, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Announce only if no newer observation changed the picture.
		if m.seq == seq && m.online {
			m.broadcastLocked(Transition{Online: true, At: time.Now()})
		}
	})
}

func (m *Monitor) broadcastLocked(tr Transition) {
	for _, ch := range m.subs {
		select {
		case ch <- tr:
		default:
			// Subscriber is not draining; drop rather than block.
		}
	}
}

// Run probes the backend until ctx is done. The first probe fires
// immediately so startup state is known before the first tick.
func (m *Monitor) Run(ctx context.Context) {
	if m.probe == nil {
		<-ctx.Done()
		return
	}

	m.probeOnce(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeOnce(ctx)
		}
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	m.Observe(m.probe.Ping(probeCtx) == nil)
}
