package session

import (
	"sync"
	"time"
)

// Autoplay fires an advance callback on a fixed delay while enabled. At most
// one timer loop exists at a time, and stopping cancels deterministically: a
// tick that loses the race to Stop never invokes the callback.
type Autoplay struct {
	mu      sync.Mutex
	delay   time.Duration
	advance func()
	cancel  chan struct{}
}

func NewAutoplay(delay time.Duration, advance func()) *Autoplay {
	return &Autoplay{delay: delay, advance: advance}
}

// Start begins the timer loop. Calling Start while already running is a
// no-op, never a second timer.
func (a *Autoplay) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	cancel := make(chan struct{})
	a.cancel = cancel
	go a.loop(cancel, a.delay)
}

// Stop cancels the outstanding timer. Safe to call when not running.
func (a *Autoplay) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return
	}
	close(a.cancel)
	a.cancel = nil
}

// Running reports whether a timer loop is active.
func (a *Autoplay) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// SetDelay changes the interval used by subsequent ticks.
func (a *Autoplay) SetDelay(delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = delay
}

func (a *Autoplay) loop(cancel chan struct{}, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-timer.C:
			// Re-check the token: Stop may have won the race with the tick.
			a.mu.Lock()
			if a.cancel != cancel {
				a.mu.Unlock()
				return
			}
			next := a.delay
			a.mu.Unlock()
			a.advance()
			timer.Reset(next)
		}
	}
}
