package review

import (
	"sync"
	"time"
)

// Countdown ticks a remaining duration down to exactly zero, once per
// interval. Values on C are non-increasing and never negative; the
// channel closes after the zero value is delivered.
type Countdown struct {
	C <-chan time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewCountdown starts a countdown from remaining, ticking every second
func NewCountdown(remaining time.Duration) *Countdown {
	return newCountdown(remaining, time.Second)
}

func newCountdown(remaining, interval time.Duration) *Countdown {
	ch := make(chan time.Duration, 1)
	c := &Countdown{C: ch, stop: make(chan struct{})}

	// Round up so a 299.5s cooldown shows 300 rather than flashing past
	steps := int64((remaining + interval - 1) / interval)
	if steps < 0 {
		steps = 0
	}

	go func() {
		defer close(ch)

		current := time.Duration(steps) * interval
		ch <- current
		if current == 0 {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current -= interval
				select {
				case ch <- current:
				case <-c.stop:
					return
				}
				if current == 0 {
					return
				}
			case <-c.stop:
				return
			}
		}
	}()
	return c
}

// Stop halts the countdown and releases its ticker. Safe to call more
// than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
