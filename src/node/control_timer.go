package node

import (
	"sync"
	"time"
)

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer is the timer producer of the event loop. It pushes a tick into
// the node's event channel every interval until Shutdown.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan<- event  //the node's event channel
	shutdownCh   chan struct{} //receives instruction to exit Run loop
	shutdownOnce sync.Once
}

// NewControlTimer ...
func NewControlTimer(timerFactory timerFactory, tickCh chan<- event) *ControlTimer {
	return &ControlTimer{
		timerFactory: timerFactory,
		tickCh:       tickCh,
		shutdownCh:   make(chan struct{}),
	}
}

// NewPeriodicControlTimer returns a ControlTimer that ticks at a fixed
// interval. A zero interval never ticks.
func NewPeriodicControlTimer(tickCh chan<- event) *ControlTimer {
	fixedTimeout := func(d time.Duration) <-chan time.Time {
		if d <= 0 {
			return nil
		}
		return time.After(d)
	}
	return NewControlTimer(fixedTimeout, tickCh)
}

// Run blocks until Shutdown is called.
func (c *ControlTimer) Run(interval time.Duration) {
	timer := c.timerFactory(interval)
	for {
		select {
		case <-timer:
			select {
			case c.tickCh <- event{tick: true}:
			case <-c.shutdownCh:
				return
			}
			timer = c.timerFactory(interval)
		case <-c.shutdownCh:
			return
		}
	}
}

// Shutdown stops Run. It may be called more than once.
func (c *ControlTimer) Shutdown() {
	c.shutdownOnce.Do(func() { close(c.shutdownCh) })
}
