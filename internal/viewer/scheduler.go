package viewer

import (
	"sync"
	"time"
)

// DefaultHz is the frame rate of a TickerScheduler built with hz <= 0.
const DefaultHz = 60

// TickerScheduler calls tick from its own goroutine at a fixed rate, optionally stopping
// by itself after MaxTicks frames. It runs one loop at a time and can be started again
// after a loop ends, so a Viewer can hand it to every session it builds.
type TickerScheduler struct {
	Interval time.Duration
	MaxTicks uint64

	mu   sync.Mutex
	done chan struct{}
	stop func()
}

// NewTickerScheduler returns a scheduler running at hz frames per second. maxTicks 0
// runs until stopped.
func NewTickerScheduler(hz int, maxTicks uint64) *TickerScheduler {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &TickerScheduler{
		Interval: time.Second / time.Duration(hz),
		MaxTicks: maxTicks,
		done:     make(chan struct{}),
	}
}

// Done is closed when the most recently started loop has exited, either stopped or
// after MaxTicks frames. Before the first Start it is never closed.
func (t *TickerScheduler) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Start runs a new loop calling tick. A loop still running is stopped first.
func (t *TickerScheduler) Start(tick func()) (stop func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		t.stop()
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() { close(quit) })
		<-done
	}
	t.done, t.stop = done, stop
	go t.run(tick, quit, done)
	return stop
}

// Stop ends the current loop, if any, and waits for it to exit.
func (t *TickerScheduler) Stop() {
	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (t *TickerScheduler) run(tick func(), quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	tk := time.NewTicker(t.Interval)
	defer tk.Stop()
	var n uint64
	for {
		select {
		case <-quit:
			return
		case <-tk.C:
			tick()
			n++
			if t.MaxTicks > 0 && n >= t.MaxTicks {
				return
			}
		}
	}
}

// ManualScheduler runs ticks only when Step is called. Hosts that own their own loop,
// such as a window event loop, use it to drive the session from that loop.
type ManualScheduler struct {
	mu   sync.Mutex
	tick func()
}

// Start records tick; stop forgets it.
func (m *ManualScheduler) Start(tick func()) (stop func()) {
	m.mu.Lock()
	m.tick = tick
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.tick = nil
		m.mu.Unlock()
	}
}

// Step runs n ticks and reports whether a loop is running.
func (m *ManualScheduler) Step(n int) bool {
	m.mu.Lock()
	tick := m.tick
	m.mu.Unlock()
	if tick == nil {
		return false
	}
	for i := 0; i < n; i++ {
		tick()
	}
	return true
}

// Running reports whether a loop is started and not stopped.
func (m *ManualScheduler) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick != nil
}
