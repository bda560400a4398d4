package runloop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests. Posted tasks run
// immediately on the posting goroutine (re-entrant posts are queued and
// drained in order), and timers only fire when the test advances the
// logical clock. Posts may arrive from transport goroutines; Advance and
// Now are meant to be driven from the test goroutine.
type Manual struct {
	mu       sync.Mutex
	now      time.Duration
	queue    []func()
	draining bool

	timers []*manualTimer
	seq    int
}

type manualTimer struct {
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

// NewManual creates a manual scheduler with the clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post runs fn synchronously, queueing re-entrant posts so FIFO order is
// preserved exactly as on the production loop.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		next()
		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}

// After registers a timer at now+d. The timer fires only via Advance.
func (m *Manual) After(d time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.canceled = true
	}
}

// Advance moves the logical clock forward by d, firing due timers in
// (deadline, registration) order. Timers registered by fired callbacks are
// honored within the same advance when they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		t := m.nextDueLocked(target)
		if t == nil {
			break
		}
		m.now = t.at
		m.mu.Unlock()
		m.Post(t.fn)
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Now returns the current logical clock reading.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.timers = live

	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})

	if len(m.timers) == 0 || m.timers[0].at > target {
		return nil
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	return t
}
