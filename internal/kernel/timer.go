package kernel

import (
	"sync/atomic"
	"time"
)

// Timer is the interrupt source: it raises one IRQ per tick and counts
// ticks atomically. The tick count doubles as the kernel clock used for
// first-scheduled timestamps and the trace.
type Timer struct {
	IRQ   chan struct{}
	count atomic.Int64
	stop  chan struct{}
}

// NewTimer creates a timer that buffers up to buffer pending IRQs.
func NewTimer(buffer int) *Timer {
	return &Timer{
		IRQ:  make(chan struct{}, buffer),
		stop: make(chan struct{}),
	}
}

// Start begins raising IRQs at the given interval.
func (t *Timer) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.count.Add(1)
				select {
				case t.IRQ <- struct{}{}:
				default:
					// coalesce when the handler lags; the tick count
					// still advances
				}
			case <-t.stop:
				close(t.IRQ)
				return
			}
		}
	}()
}

// Stop silences the timer and releases its goroutine.
func (t *Timer) Stop() {
	close(t.stop)
}

// Now returns the current tick count.
func (t *Timer) Now() int64 {
	return t.count.Load()
}
