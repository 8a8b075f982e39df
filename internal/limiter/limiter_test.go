package limiter

import (
	"testing"
	"time"
)

func TestEnabledBounds(t *testing.T) {
	tests := []struct {
		pct  float64
		want bool
	}{
		{0, false},
		{-1, false},
		{100, false},
		{250, false},
		{0.5, true},
		{50, true},
		{99.9, true},
	}

	for _, tt := range tests {
		if got := NewCPULimiter(tt.pct).Enabled(); got != tt.want {
			t.Errorf("NewCPULimiter(%v).Enabled() = %v, want %v", tt.pct, got, tt.want)
		}
	}

	var nilLimiter *CPULimiter
	if nilLimiter.Enabled() {
		t.Error("nil limiter should be disabled")
	}
	nilLimiter.Throttle() // must not panic
}

func TestSleepPerSlice(t *testing.T) {
	tests := []struct {
		pct  float64
		want time.Duration
	}{
		{50, 10 * time.Millisecond},
		{25, 30 * time.Millisecond},
		{100, 0},
	}

	for _, tt := range tests {
		if got := NewCPULimiter(tt.pct).SleepPerSlice(); got != tt.want {
			t.Errorf("SleepPerSlice(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestThrottleSleepsAfterWorkSlice(t *testing.T) {
	l := NewCPULimiter(50)
	var slept []time.Duration
	l.sleep = func(d time.Duration) { slept = append(slept, d) }

	// Inside the first work slice nothing happens
	l.Throttle()
	if len(slept) != 0 {
		t.Fatalf("slept %v inside the first slice", slept)
	}

	// Pretend the slice elapsed
	l.lastSleep = time.Now().Add(-time.Second)
	l.Throttle()
	if len(slept) != 1 || slept[0] != 10*time.Millisecond {
		t.Errorf("slept %v, want [10ms]", slept)
	}
}

func TestThrottleDisabledNeverSleeps(t *testing.T) {
	l := NewCPULimiter(0)
	l.sleep = func(time.Duration) { t.Fatal("disabled limiter slept") }
	l.lastSleep = time.Now().Add(-time.Second)
	l.Throttle()
}
