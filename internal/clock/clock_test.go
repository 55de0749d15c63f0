package clock

import (
	"testing"
	"time"
)

func TestFakeClockAdvance(t *testing.T) {
	c := NewFakeClock(100)
	if c.NowNano() != 100 {
		t.Fatalf("expected 100, got %d", c.NowNano())
	}
	c.Advance(50 * time.Nanosecond)
	if c.NowNano() != 150 {
		t.Fatalf("expected 150, got %d", c.NowNano())
	}
	c.Set(9)
	if c.NowNano() != 9 {
		t.Fatalf("expected 9, got %d", c.NowNano())
	}
}

func TestJitterNanosBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 20*time.Millisecond
	for i := 0; i < 200; i++ {
		j := JitterNanos(min, max)
		if j < min || j >= max {
			t.Fatalf("jitter %v out of bounds [%v, %v)", j, min, max)
		}
	}
}

func TestJitterNanosDegenerate(t *testing.T) {
	if got := JitterNanos(5, 5); got != 5 {
		t.Fatalf("expected degenerate jitter to return min, got %v", got)
	}
	if got := JitterNanos(5, 3); got != 5 {
		t.Fatalf("expected max<min to return min, got %v", got)
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.NowNano()
	time.Sleep(time.Millisecond)
	b := c.NowNano()
	if b <= a {
		t.Fatalf("expected SystemClock to advance, got a=%d b=%d", a, b)
	}
}
