// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a Clock that only moves when Advance is called. Timer functions
// run synchronously on the goroutine calling Advance, in deadline order.
// Tickers drop ticks when nobody is reading, like time.Ticker.
type Fake struct {
	mut     sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (c *Fake) Now() time.Time {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mut.Lock()
	defer c.mut.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("non-positive interval for NewTicker")
	}
	c.mut.Lock()
	defer c.mut.Unlock()
	t := &fakeTicker{clock: c, period: d, next: c.now.Add(d), c: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer and ticker that
// comes due on the way.
func (c *Fake) Advance(d time.Duration) {
	c.mut.Lock()
	target := c.now.Add(d)
	c.mut.Unlock()

	for {
		c.mut.Lock()
		timer, ticker, when := c.nextLocked(target)
		if timer == nil && ticker == nil {
			c.now = target
			c.mut.Unlock()
			return
		}
		c.now = when
		if timer != nil {
			c.removeTimerLocked(timer)
			c.mut.Unlock()
			timer.fn()
			continue
		}
		ticker.next = ticker.next.Add(ticker.period)
		c.mut.Unlock()
		select {
		case ticker.c <- when:
		default:
		}
	}
}

// Pending returns the time left on every unfired timer, shortest first.
func (c *Fake) Pending() []time.Duration {
	c.mut.Lock()
	defer c.mut.Unlock()
	res := make([]time.Duration, 0, len(c.timers))
	for _, t := range c.timers {
		res = append(res, t.when.Sub(c.now))
	}
	sort.Slice(res, func(a, b int) bool { return res[a] < res[b] })
	return res
}

// nextLocked returns the earliest timer or ticker due at or before target.
// Timers win ties.
func (c *Fake) nextLocked(target time.Time) (*fakeTimer, *fakeTicker, time.Time) {
	var (
		timer  *fakeTimer
		ticker *fakeTicker
		when   time.Time
		found  bool
	)
	for _, t := range c.timers {
		if !t.when.After(target) && (!found || t.when.Before(when)) {
			timer, when, found = t, t.when, true
		}
	}
	for _, t := range c.tickers {
		if !t.next.After(target) && (!found || t.next.Before(when)) {
			timer, ticker, when, found = nil, t, t.next, true
		}
	}
	return timer, ticker, when
}

func (c *Fake) removeTimerLocked(t *fakeTimer) bool {
	for i, cand := range c.timers {
		if cand == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type fakeTimer struct {
	clock *Fake
	when  time.Time
	fn    func()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mut.Lock()
	defer t.clock.mut.Unlock()
	return t.clock.removeTimerLocked(t)
}

type fakeTicker struct {
	clock  *Fake
	period time.Duration
	next   time.Time
	c      chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.c
}

func (t *fakeTicker) Stop() {
	t.clock.mut.Lock()
	defer t.clock.mut.Unlock()
	for i, cand := range t.clock.tickers {
		if cand == t {
			t.clock.tickers = append(t.clock.tickers[:i], t.clock.tickers[i+1:]...)
			return
		}
	}
}
