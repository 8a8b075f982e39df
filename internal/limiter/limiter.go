package limiter

import (
	"runtime"
	"time"
)

// CPULimiter throttles a sequential sweep to roughly maxPercent of one CPU
type CPULimiter struct {
	maxPercent float64
	workSlice  time.Duration
	lastSleep  time.Time
	sleep      func(time.Duration)
}

// NewCPULimiter creates a new CPU limiter. A maxPercent outside (0, 100)
// disables throttling.
func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		workSlice:  10 * time.Millisecond,
		lastSleep:  time.Now(),
		sleep:      time.Sleep,
	}
}

// Enabled reports whether Throttle can ever sleep
func (l *CPULimiter) Enabled() bool {
	return l != nil && l.maxPercent > 0 && l.maxPercent < 100
}

// Throttle is called once per examined entry. After each work slice it sleeps
// long enough that work/(work+sleep) stays near maxPercent.
func (l *CPULimiter) Throttle() {
	if !l.Enabled() {
		return
	}

	if time.Since(l.lastSleep) > l.workSlice {
		l.sleep(l.SleepPerSlice())
		l.lastSleep = time.Now()
	}

	runtime.Gosched()
}

// SleepPerSlice is the pause inserted after each work slice
func (l *CPULimiter) SleepPerSlice() time.Duration {
	if !l.Enabled() {
		return 0
	}
	return time.Duration(float64(l.workSlice) * ((100.0 - l.maxPercent) / l.maxPercent))
}
