// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cache

import (
	"time"

	"github.com/juju/clock"
)

// debouncer owns the fetch timer that batches change notifications.
// It is only used from the pipeline goroutine.
type debouncer struct {
	clock clock.Clock
	timer clock.Timer
	armed bool

	// postponedAt is when the first change not yet fetched was reported,
	// or zero.
	postponedAt time.Time
}

// channel returns the timer channel, or nil if the timer is not armed.
func (d *debouncer) channel() <-chan time.Time {
	if !d.armed {
		return nil
	}
	return d.timer.Chan()
}

func (d *debouncer) start(after time.Duration) {
	if d.timer == nil {
		d.timer = d.clock.NewTimer(after)
	} else {
		// See the docs on Timer.Reset() that says it isn't safe to call
		// on a non-stopped channel, and if it is stopped, you need to check
		// if the channel needs to be drained anyway.
		if !d.timer.Stop() {
			select {
			case <-d.timer.Chan():
			default:
			}
		}
		d.timer.Reset(after)
	}
	d.armed = true
}

// reset stops the timer and forgets any postponement.
func (d *debouncer) reset() {
	if d.timer != nil && d.armed {
		if !d.timer.Stop() {
			select {
			case <-d.timer.Chan():
			default:
			}
		}
	}
	d.armed = false
	d.postponedAt = time.Time{}
}

// postpone pushes the fetch back by DebounceWindow, unless changes have
// already been waiting for DebounceCeiling.
func (d *debouncer) postpone() {
	if d.postponedAt.IsZero() {
		d.postponedAt = d.clock.Now()
		d.start(DebounceWindow)
		return
	}
	remainder := DebounceCeiling - d.clock.Now().Sub(d.postponedAt)
	if remainder <= 0 {
		return
	}
	if remainder > DebounceWindow {
		remainder = DebounceWindow
	}
	d.start(remainder)
}

// FetchTimer returns the channel the pending refetch fires on, or nil when
// none is pending. The pipeline goroutine should call FetchTimerFired on
// receipt.
func (c *Cache) FetchTimer() <-chan time.Time {
	return c.debounce.channel()
}

// FetchTimerFired issues the batched refetch, or waits a little longer if a
// request is still outstanding.
func (c *Cache) FetchTimerFired() {
	c.debounce.armed = false
	if c.active != nil {
		c.debounce.start(BusyRetryDelay)
		return
	}
	c.debounce.reset()
	if c.contactsUpdated {
		c.contactsUpdated = false
		c.refreshRequired = true
	}
	c.requestUpdate()
}
