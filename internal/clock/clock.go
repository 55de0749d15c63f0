// Package clock provides the monotonic time source and jitter generator
// used by the control plane (spec.md §4.E). It deliberately never touches
// wall-clock time: every duration measured in this system is relative to
// process start, consistent with "No wall-clock dependency" in spec.md.
package clock

import (
	"math/rand"
	"time"
)

// Clock is a monotonic nanosecond time source. Production code uses
// SystemClock; tests substitute a FakeClock for deterministic timing.
type Clock interface {
	NowNano() int64
}

// SystemClock reads the runtime's monotonic clock via time.Now(), whose
// internal monotonic reading is preserved across Sub/Since regardless of
// wall-clock adjustments.
type SystemClock struct{ start time.Time }

// NewSystemClock returns a Clock anchored at the current instant; NowNano
// returns nanoseconds elapsed since that instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowNano() int64 {
	return time.Since(c.start).Nanoseconds()
}

// FakeClock is a manually-advanced Clock for deterministic tests.
type FakeClock struct{ nanos int64 }

// NewFakeClock returns a FakeClock starting at nanos.
func NewFakeClock(nanos int64) *FakeClock { return &FakeClock{nanos: nanos} }

func (c *FakeClock) NowNano() int64 { return c.nanos }

// Advance moves the fake clock forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.nanos += int64(d) }

// Set pins the fake clock to an absolute nanosecond value.
func (c *FakeClock) Set(nanos int64) { c.nanos = nanos }

// JitterNanos draws a uniform random duration from [min, max) in
// nanoseconds. If max <= min, it returns min (no jitter window).
func JitterNanos(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int64(max - min)
	return min + time.Duration(rand.Int63n(span))
}
