package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstaTicker(t *testing.T) {
	t.Run("first tick is immediate", func(t *testing.T) {
		it := NewInstaTicker(time.Hour)
		defer it.Stop()

		select {
		case <-it.C:
		case <-time.After(time.Second):
			assert.Fail(t, "expected a tick right away")
		}
	})
	t.Run("ticks keep coming at the period", func(t *testing.T) {
		it := NewInstaTicker(time.Millisecond * 200)
		var ticks []time.Time
		go func() {
			for tick := range it.C {
				ticks = append(ticks, tick)
			}
		}()
		time.Sleep(time.Millisecond * 500)
		assert.Len(t, ticks, 3)

		it.Stop()
		time.Sleep(time.Millisecond * 500)
		assert.Len(t, ticks, 3)

		select {
		case <-it.C:
			assert.Fail(t, "no more ticks should be received after stop")
		default:
		}
	})
	t.Run("stop never leaks", func(t *testing.T) {
		t.Run("never consumed a tick", func(t *testing.T) {
			it := NewInstaTicker(time.Second * 100)
			it.Stop()
		})
		t.Run("consumed initial tick", func(t *testing.T) {
			it := NewInstaTicker(time.Millisecond * 50)
			<-it.C
			it.Stop()
		})
		t.Run("stopped with a send pending", func(t *testing.T) {
			it := NewInstaTicker(time.Millisecond * 10)
			<-it.C
			// Let a ticker tick queue up with nobody reading.
			time.Sleep(time.Millisecond * 50)
			it.Stop()
		})
	})
}
