package utils

import (
	"time"
)

// InstaTicker behaves like [time.Ticker], except that the first tick arrives
// immediately instead of one full period after creation.
type InstaTicker struct {
	C <-chan time.Time

	stop   chan struct{}
	ticker *time.Ticker
}

func NewInstaTicker(d time.Duration) *InstaTicker {
	it := &InstaTicker{
		stop:   make(chan struct{}),
		ticker: time.NewTicker(d),
	}
	c := make(chan time.Time)
	it.C = c

	go func() {
		next := time.Now()
		for {
			// Every send is guarded by stop so Stop never leaks this
			// goroutine, even mid-send.
			select {
			case <-it.stop:
				return
			case c <- next:
			}

			select {
			case <-it.stop:
				return
			case next = <-it.ticker.C:
			}
		}
	}()

	return it
}

// Stop shuts the ticker down and releases its goroutine. Calling Stop more
// than once will panic.
func (it *InstaTicker) Stop() {
	it.ticker.Stop()
	close(it.stop)
}
