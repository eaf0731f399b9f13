// Package window keeps a rolling, time-bounded buffer of price ticks and
// exposes the high/low extremes over the trailing interval.
package window

import (
	"fmt"
	"time"
)

// OutOfOrderError reports a tick whose timestamp precedes the latest one
// already recorded. The window is left untouched; the caller decides
// whether to drop or re-sequence the tick.
type OutOfOrderError struct {
	Last time.Time
	Got  time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("out-of-order tick: got %s, latest is %s",
		e.Got.Format(time.RFC3339Nano), e.Last.Format(time.RFC3339Nano))
}

type tick struct {
	ts    time.Time
	price float64
}

// Window is a rolling buffer of ticks within the trailing span ending at
// the latest tick. High/low are maintained with monotonic deques so an
// update costs amortized O(1) regardless of how many ticks the span holds.
// Not safe for concurrent use; the owner serializes access per symbol.
type Window struct {
	span  time.Duration
	ticks []tick
	// maxq is price-decreasing, minq price-increasing; the fronts are the
	// current high and low.
	maxq []tick
	minq []tick
}

func New(span time.Duration) *Window {
	if span <= 0 {
		span = time.Minute
	}
	return &Window{span: span}
}

// Update appends a tick, evicts everything older than span before it, and
// returns the high/low of what remains. The just-appended tick is always
// included, so a lone tick yields high == low == price.
func (w *Window) Update(ts time.Time, price float64) (high, low float64, err error) {
	if n := len(w.ticks); n > 0 && ts.Before(w.ticks[n-1].ts) {
		return 0, 0, &OutOfOrderError{Last: w.ticks[n-1].ts, Got: ts}
	}

	cutoff := ts.Add(-w.span)
	i := 0
	for i < len(w.ticks) && w.ticks[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.ticks = append(w.ticks[:0], w.ticks[i:]...)
	}
	for len(w.maxq) > 0 && w.maxq[0].ts.Before(cutoff) {
		w.maxq = w.maxq[1:]
	}
	for len(w.minq) > 0 && w.minq[0].ts.Before(cutoff) {
		w.minq = w.minq[1:]
	}

	t := tick{ts: ts, price: price}
	w.ticks = append(w.ticks, t)
	for len(w.maxq) > 0 && w.maxq[len(w.maxq)-1].price <= price {
		w.maxq = w.maxq[:len(w.maxq)-1]
	}
	w.maxq = append(w.maxq, t)
	for len(w.minq) > 0 && w.minq[len(w.minq)-1].price >= price {
		w.minq = w.minq[:len(w.minq)-1]
	}
	w.minq = append(w.minq, t)

	return w.maxq[0].price, w.minq[0].price, nil
}

// High returns the maximum price currently in the window, zero when empty.
func (w *Window) High() float64 {
	if len(w.maxq) == 0 {
		return 0
	}
	return w.maxq[0].price
}

// Low returns the minimum price currently in the window, zero when empty.
func (w *Window) Low() float64 {
	if len(w.minq) == 0 {
		return 0
	}
	return w.minq[0].price
}

// Last returns the most recent price, zero when empty.
func (w *Window) Last() float64 {
	if len(w.ticks) == 0 {
		return 0
	}
	return w.ticks[len(w.ticks)-1].price
}

// LastTime returns the most recent timestamp, the zero time when empty.
func (w *Window) LastTime() time.Time {
	if len(w.ticks) == 0 {
		return time.Time{}
	}
	return w.ticks[len(w.ticks)-1].ts
}

func (w *Window) Len() int { return len(w.ticks) }

// Span returns the trailing interval the window covers.
func (w *Window) Span() time.Duration { return w.span }
